package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/domain"
	"tillbook/internal/domain/documents/transaction"
	"tillbook/internal/domain/ledger"
	"tillbook/internal/infrastructure/http/v1/dto"
)

// TransactionHandler handles ledger transaction endpoints. The ledger is
// append-only, so there are no generic update or unpost routes: the only
// destructive edits are payment deletion and sale line resave, both
// supervisor-gated.
type TransactionHandler struct {
	*BaseHandler
	service *transaction.Service
	ledger  *ledger.Service
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(base *BaseHandler, service *transaction.Service, ledgerService *ledger.Service) *TransactionHandler {
	return &TransactionHandler{
		BaseHandler: base,
		service:     service,
		ledger:      ledgerService,
	}
}

// Create handles POST /transactions
func (h *TransactionHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := req.ToTransaction()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromTransaction(doc)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTransaction(doc))
}

// GetByCode handles GET /transactions/by-code/:code
func (h *TransactionHandler) GetByCode(c *gin.Context) {
	ctx := c.Request.Context()

	code := c.Param("code")
	if code == "" {
		h.Error(c, apperror.NewValidation("code is required"))
		return
	}

	doc, err := h.service.GetByCode(ctx, code)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTransaction(doc))
}

// List handles GET /transactions
func (h *TransactionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := transaction.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "date")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if kind := c.Query("kind"); kind != "" {
		k := transaction.Kind(kind)
		if !k.Valid() {
			h.Error(c, apperror.NewValidation("unknown transaction kind").
				WithDetail("kind", kind))
			return
		}
		filter.Kind = &k
	}

	if customerID := c.Query("customerId"); customerID != "" {
		parsed, err := id.Parse(customerID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customer id"))
			return
		}
		filter.CustomerID = &parsed
	}

	if posted := c.Query("posted"); posted != "" {
		val := posted == "true"
		filter.Posted = &val
	}

	if from, ok := parseDateQuery(c, "fromDate"); ok {
		filter.DateFrom = &from
	} else if c.Query("fromDate") != "" {
		h.Error(c, apperror.NewValidation("invalid fromDate, expected YYYY-MM-DD"))
		return
	}
	if to, ok := parseDateQuery(c, "toDate"); ok {
		filter.DateTo = &to
	} else if c.Query("toDate") != "" {
		h.Error(c, apperror.NewValidation("invalid toDate, expected YYYY-MM-DD"))
		return
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromTransaction(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// GetReturnable handles GET /transactions/:id/returnable — the per-line view
// of what is still returnable on a sale.
func (h *TransactionHandler) GetReturnable(c *gin.Context) {
	ctx := c.Request.Context()

	saleID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	lines, err := h.ledger.ReturnableLines(ctx, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

// SubmitReturn handles POST /transactions/:id/returns
func (h *TransactionHandler) SubmitReturn(c *gin.Context) {
	ctx := c.Request.Context()

	saleID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SubmitReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ret, err := h.ledger.SubmitReturn(ctx, saleID, req.ToReturnRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromTransaction(ret)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// DeletePayment handles DELETE /transactions/:id — payments only, supervisor.
func (h *TransactionHandler) DeletePayment(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.DeletePayment(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UpdateSaleLines handles PUT /transactions/:id/lines — replaces the lines
// of a committed sale, supervisor.
func (h *TransactionHandler) UpdateSaleLines(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateSaleLinesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lines, err := req.ToLines()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.UpdateSaleLines(ctx, docID, lines); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTransaction(doc))
}
