package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillbook/internal/domain/settings"
	"tillbook/internal/infrastructure/http/v1/dto"
)

// SettingsHandler handles the store-wide settings endpoints. Both routes are
// supervisor-gated: operators never see or change the ledger knobs.
type SettingsHandler struct {
	*BaseHandler
	repo     settings.Repository
	provider settings.Provider
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(base *BaseHandler, repo settings.Repository, provider settings.Provider) *SettingsHandler {
	return &SettingsHandler{
		BaseHandler: base,
		repo:        repo,
		provider:    provider,
	}
}

// Get handles GET /settings
func (h *SettingsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	s, err := h.provider.Get(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSettings(s))
}

// Update handles PUT /settings
func (h *SettingsHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.UpdateSettingsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s, err := req.ToSettings()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.repo.Save(ctx, s); err != nil {
		h.Error(c, err)
		return
	}

	// The local cache invalidates immediately; remote instances catch the
	// NOTIFY from the save.
	h.provider.Invalidate()

	c.JSON(http.StatusOK, dto.FromSettings(s))
}
