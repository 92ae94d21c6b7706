package dto

import (
	"tillbook/internal/core/types"
	"tillbook/internal/domain/catalogs/customer"
)

// CustomerResponse is a customer in API responses.
type CustomerResponse struct {
	CatalogResponse
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	Balance   string  `json:"balance"`
	DebtLimit *string `json:"debtLimit,omitempty"`
	Comment   *string `json:"comment,omitempty"`
}

// FromCustomer creates a response from a domain customer.
func FromCustomer(c *customer.Customer) *CustomerResponse {
	resp := &CustomerResponse{
		CatalogResponse: FromCatalog(c.Catalog),
		Phone:           c.Phone,
		Email:           c.Email,
		Balance:         types.RoundMoney(c.Balance).String(),
		Comment:         c.Comment,
	}
	if c.DebtLimit != nil {
		s := types.RoundMoney(*c.DebtLimit).String()
		resp.DebtLimit = &s
	}
	return resp
}

// CreateCustomerRequest creates a new customer.
type CreateCustomerRequest struct {
	Code      string  `json:"code"`
	Name      string  `json:"name" binding:"required"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	DebtLimit *string `json:"debtLimit,omitempty"`
	Comment   *string `json:"comment,omitempty"`
}

// ToCustomer maps the request to a new domain customer. The stored balance
// always starts at zero; opening debt is entered as a manual debit so it
// shows in the ledger.
func (r *CreateCustomerRequest) ToCustomer() *customer.Customer {
	c := customer.NewCustomer(r.Code, r.Name)
	c.Phone = r.Phone
	c.Email = r.Email
	c.Comment = r.Comment
	if r.DebtLimit != nil {
		if limit, err := types.NewMoneyFromString(*r.DebtLimit); err == nil {
			c.DebtLimit = &limit
		}
	}
	return c
}

// UpdateCustomerRequest updates customer fields. The balance is not
// updatable through this endpoint.
type UpdateCustomerRequest struct {
	Name      *string `json:"name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	DebtLimit *string `json:"debtLimit,omitempty"`
	Comment   *string `json:"comment,omitempty"`
	Version   int     `json:"version" binding:"required,min=1"`
}

// Apply maps the update onto the existing customer.
func (r *UpdateCustomerRequest) Apply(existing *customer.Customer) *customer.Customer {
	if r.Name != nil {
		existing.Name = *r.Name
	}
	if r.Phone != nil {
		existing.Phone = r.Phone
	}
	if r.Email != nil {
		existing.Email = r.Email
	}
	if r.Comment != nil {
		existing.Comment = r.Comment
	}
	if r.DebtLimit != nil {
		if *r.DebtLimit == "" {
			existing.DebtLimit = nil
		} else if limit, err := types.NewMoneyFromString(*r.DebtLimit); err == nil {
			existing.DebtLimit = &limit
		}
	}
	existing.Version = r.Version
	return existing
}
