package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/domain/reports"
	"tillbook/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetBalanceVerification handles GET /reports/balance-verification — the
// sweep comparing every stored balance against the recomputed ledger.
func (h *ReportsHandler) GetBalanceVerification(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.BalanceVerificationRequest
	if !h.BindQuery(c, &req) {
		return
	}

	filter := reports.BalanceVerificationFilter{
		OnlyMismatched: req.OnlyMismatched,
		Limit:          req.Limit,
		Offset:         req.Offset,
	}

	for _, cStr := range req.CustomerIDs {
		cID, err := id.Parse(cStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customer id").
				WithDetail("customerId", cStr))
			return
		}
		filter.CustomerIDs = append(filter.CustomerIDs, cID)
	}

	report, err := h.service.GetBalanceVerification(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromBalanceVerificationReport(report))
}

// GetTakings handles GET /reports/takings — per-day totals by kind.
func (h *ReportsHandler) GetTakings(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TakingsReportRequest
	if !h.BindQuery(c, &req) {
		return
	}

	fromDate, err := time.Parse("2006-01-02", req.FromDate)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid fromDate, expected YYYY-MM-DD"))
		return
	}

	toDate, err := time.Parse("2006-01-02", req.ToDate)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid toDate, expected YYYY-MM-DD"))
		return
	}

	if toDate.Before(fromDate) {
		h.Error(c, apperror.NewValidation("toDate must not precede fromDate"))
		return
	}

	report, err := h.service.GetTakings(ctx, reports.TakingsReportFilter{
		FromDate: fromDate,
		ToDate:   toDate,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTakingsReport(report))
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/balance-verification", h.GetBalanceVerification)
	rg.GET("/takings", h.GetTakings)
}
