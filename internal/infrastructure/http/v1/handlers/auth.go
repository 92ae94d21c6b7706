// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillbook/internal/core/apperror"
	appctx "tillbook/internal/core/context"
	"tillbook/internal/core/id"
	"tillbook/internal/domain/auth"
	"tillbook/internal/infrastructure/http/v1/dto"
	"tillbook/internal/infrastructure/http/v1/middleware"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	op, err := h.service.Register(ctx, req.ToAuthRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromOperator(op))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, op, err := h.service.Login(ctx, req.ToCredentials())
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Tokens:   dto.FromTokenPair(tokens),
		Operator: dto.FromOperator(op),
	})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, err := h.service.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTokenPair(tokens))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	op := appctx.GetOperator(ctx)
	if op == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	operatorID, err := id.Parse(op.OperatorID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid operator id"))
		return
	}

	if err := h.service.Logout(ctx, operatorID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	opCtx := appctx.GetOperator(ctx)
	if opCtx == nil {
		h.Error(c, apperror.NewUnauthorized("not authenticated"))
		return
	}

	operatorID, err := id.Parse(opCtx.OperatorID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid operator id"))
		return
	}

	op, err := h.service.GetOperatorByID(ctx, operatorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromOperator(op))
}

// ListOperators handles GET /auth/operators
func (h *AuthHandler) ListOperators(c *gin.Context) {
	ctx := c.Request.Context()

	filter := auth.OperatorFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if isActive := c.Query("isActive"); isActive != "" {
		val := isActive == "true"
		filter.IsActive = &val
	}

	ops, total, err := h.service.ListOperators(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.OperatorResponse, len(ops))
	for i := range ops {
		items[i] = dto.FromOperator(&ops[i])
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: int64(total),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// SetActive handles POST /auth/operators/:id/active
func (h *AuthHandler) SetActive(c *gin.Context) {
	ctx := c.Request.Context()

	operatorID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SetActiveRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetActive(ctx, operatorID, req.IsActive); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "operator updated")
}

// RegisterRoutes registers auth routes.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	// Public routes (no auth required)
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)

	// Protected routes (auth required)
	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.Me)
	// Account management is supervisor-only.
	protected.POST("/register", middleware.RequireSupervisor(), h.Register)
	protected.GET("/operators", middleware.RequireSupervisor(), h.ListOperators)
	protected.POST("/operators/:id/active", middleware.RequireSupervisor(), h.SetActive)
}
