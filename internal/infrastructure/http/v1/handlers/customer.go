package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/domain/catalogs/customer"
	"tillbook/internal/domain/ledger"
	"tillbook/internal/infrastructure/http/v1/dto"
)

// CustomerHandler handles customer catalog endpoints plus the per-customer
// ledger view.
type CustomerHandler struct {
	*CatalogHandler[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]
	service *customer.Service
	ledger  *ledger.Service
}

// NewCustomerHandler creates a new customer handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service, ledgerService *ledger.Service) *CustomerHandler {
	return &CustomerHandler{
		CatalogHandler: NewCatalogHandler(base, CatalogHandlerConfig[*customer.Customer, dto.CreateCustomerRequest, dto.UpdateCustomerRequest]{
			Service:    service.CatalogService,
			EntityName: "customer",
			MapCreateDTO: func(req dto.CreateCustomerRequest) *customer.Customer {
				return req.ToCustomer()
			},
			MapUpdateDTO: func(req dto.UpdateCustomerRequest, existing *customer.Customer) *customer.Customer {
				return req.Apply(existing)
			},
			MapToDTO: func(c *customer.Customer) any {
				return dto.FromCustomer(c)
			},
		}),
		service: service,
		ledger:  ledgerService,
	}
}

// FindByPhone handles GET /customers/by-phone/:phone
func (h *CustomerHandler) FindByPhone(c *gin.Context) {
	ctx := c.Request.Context()

	phone := c.Param("phone")
	if phone == "" {
		h.Error(c, apperror.NewValidation("phone is required"))
		return
	}

	cust, err := h.service.FindByPhone(ctx, phone)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromCustomer(cust))
}

// GetLedger handles GET /customers/:id/ledger — the recomputed per-customer
// ledger view with running balance and integrity warnings.
func (h *CustomerHandler) GetLedger(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	view, err := h.ledger.Ledger(ctx, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetDebtLimit handles GET /customers/:id/debt-limit — the effective limit.
func (h *CustomerHandler) GetDebtLimit(c *gin.Context) {
	ctx := c.Request.Context()

	customerID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	limit, err := h.service.GetDebtLimit(ctx, customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if limit == nil {
		c.JSON(http.StatusOK, gin.H{"debtLimit": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"debtLimit": limit.String()})
}
