package dto

import (
	"time"

	"tillbook/internal/core/types"
	"tillbook/internal/domain/settings"
)

// SettingsResponse represents store settings in API responses.
type SettingsResponse struct {
	ReturnWindowDays int        `json:"returnWindowDays"`
	ClosedUntil      *time.Time `json:"closedUntil,omitempty"`
	DefaultDebtLimit *string    `json:"defaultDebtLimit,omitempty"`
}

// FromSettings maps domain settings.
func FromSettings(s settings.Settings) *SettingsResponse {
	resp := &SettingsResponse{
		ReturnWindowDays: s.ReturnWindowDays,
	}
	if !s.ClosedUntil.IsZero() {
		t := s.ClosedUntil
		resp.ClosedUntil = &t
	}
	if s.DefaultDebtLimit != nil {
		v := types.RoundMoney(*s.DefaultDebtLimit).String()
		resp.DefaultDebtLimit = &v
	}
	return resp
}

// UpdateSettingsRequest replaces the store settings.
type UpdateSettingsRequest struct {
	ReturnWindowDays int        `json:"returnWindowDays" binding:"min=0"`
	ClosedUntil      *time.Time `json:"closedUntil,omitempty"`
	DefaultDebtLimit *string    `json:"defaultDebtLimit,omitempty"`
}

// ToSettings maps the request to domain settings.
func (r *UpdateSettingsRequest) ToSettings() (settings.Settings, error) {
	s := settings.Settings{
		ReturnWindowDays: r.ReturnWindowDays,
	}
	if r.ClosedUntil != nil {
		s.ClosedUntil = r.ClosedUntil.UTC()
	}
	if r.DefaultDebtLimit != nil && *r.DefaultDebtLimit != "" {
		limit, err := types.NewMoneyFromString(*r.DefaultDebtLimit)
		if err != nil {
			return s, err
		}
		s.DefaultDebtLimit = &limit
	}
	return s, nil
}
