// Package dto provides data transfer objects for HTTP API.
package dto

import (
	"time"

	"tillbook/internal/domain/auth"
)

// --- Request DTOs ---

// RegisterRequest for operator registration.
type RegisterRequest struct {
	Login    string `json:"login" binding:"required,min=3"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

// ToAuthRequest converts to domain request.
func (r *RegisterRequest) ToAuthRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		Login:    r.Login,
		Name:     r.Name,
		Password: r.Password,
		Role:     r.Role,
	}
}

// LoginRequest for operator login.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{
		Login:    r.Login,
		Password: r.Password,
	}
}

// RefreshTokenRequest for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// SetActiveRequest enables or disables an operator account.
type SetActiveRequest struct {
	IsActive bool `json:"isActive"`
}

// --- Response DTOs ---

// TokenResponse represents token pair response.
type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// FromTokenPair creates response from domain token pair.
func FromTokenPair(tp *auth.TokenPair) *TokenResponse {
	return &TokenResponse{
		AccessToken:  tp.AccessToken,
		RefreshToken: tp.RefreshToken,
		ExpiresAt:    tp.ExpiresAt,
		TokenType:    tp.TokenType,
	}
}

// OperatorResponse represents an operator in API responses.
type OperatorResponse struct {
	ID          string     `json:"id"`
	Login       string     `json:"login"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	IsActive    bool       `json:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// FromOperator creates response from domain operator.
func FromOperator(op *auth.Operator) *OperatorResponse {
	return &OperatorResponse{
		ID:          op.ID.String(),
		Login:       op.Login,
		Name:        op.Name,
		Role:        op.Role,
		IsActive:    op.IsActive,
		LastLoginAt: op.LastLoginAt,
		CreatedAt:   op.CreatedAt,
	}
}

// LoginResponse includes tokens and operator info.
type LoginResponse struct {
	Tokens   *TokenResponse    `json:"tokens"`
	Operator *OperatorResponse `json:"operator"`
}
