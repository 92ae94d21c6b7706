package dto

import (
	"time"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
	"tillbook/internal/domain/documents/transaction"
	"tillbook/internal/domain/ledger"
)

// --- Request DTOs ---

// TransactionLineRequest is one priced line of a sale.
type TransactionLineRequest struct {
	ProductID    *string        `json:"productId,omitempty"`
	ProductRef   string         `json:"productRef" binding:"required"`
	ProductName  string         `json:"productName"`
	UnitPrice    string         `json:"unitPrice" binding:"required"`
	Quantity     types.Quantity `json:"quantity" binding:"required"`
	DiscountRate string         `json:"discountRate"`
}

// CreateTransactionRequest creates a new ledger transaction. Lines are
// required for sales; payments and manual debits carry only the amount.
type CreateTransactionRequest struct {
	Kind       string                   `json:"kind" binding:"required"`
	CustomerID *string                  `json:"customerId,omitempty"`
	Date       *time.Time               `json:"date,omitempty"`
	Total      string                   `json:"total,omitempty"`
	Comment    string                   `json:"comment,omitempty"`
	Lines      []TransactionLineRequest `json:"lines,omitempty"`
}

// ToTransaction maps the request onto a new domain document.
func (r *CreateTransactionRequest) ToTransaction() (*transaction.Transaction, error) {
	var customerID *id.ID
	if r.CustomerID != nil && *r.CustomerID != "" {
		parsed, err := id.Parse(*r.CustomerID)
		if err != nil {
			return nil, apperror.NewValidation("invalid customer id").
				WithDetail("field", "customerId")
		}
		customerID = &parsed
	}

	doc := transaction.New(transaction.Kind(r.Kind), customerID)
	if r.Date != nil {
		doc.Date = r.Date.UTC()
	}
	doc.Comment = r.Comment

	if doc.Kind.HasLines() {
		for _, lr := range r.Lines {
			line, err := lr.toLine()
			if err != nil {
				return nil, err
			}
			doc.AddLine(line.ProductID, line.ProductRef, line.ProductName,
				line.UnitPrice, line.Quantity, line.DiscountRate)
		}
	} else if r.Total != "" {
		total, err := types.NewMoneyFromString(r.Total)
		if err != nil {
			return nil, apperror.NewValidation("invalid total").
				WithDetail("field", "total")
		}
		doc.Total = total
	}

	return doc, nil
}

func (lr *TransactionLineRequest) toLine() (*transaction.Line, error) {
	price, err := types.NewMoneyFromString(lr.UnitPrice)
	if err != nil {
		return nil, apperror.NewValidation("invalid unit price").
			WithDetail("productRef", lr.ProductRef)
	}

	discount := types.Zero()
	if lr.DiscountRate != "" {
		discount, err = types.NewMoneyFromString(lr.DiscountRate)
		if err != nil {
			return nil, apperror.NewValidation("invalid discount rate").
				WithDetail("productRef", lr.ProductRef)
		}
	}

	var productID *id.ID
	if lr.ProductID != nil && *lr.ProductID != "" {
		parsed, err := id.Parse(*lr.ProductID)
		if err != nil {
			return nil, apperror.NewValidation("invalid product id").
				WithDetail("productRef", lr.ProductRef)
		}
		productID = &parsed
	}

	name := lr.ProductName
	if name == "" {
		name = lr.ProductRef
	}

	return &transaction.Line{
		ProductID:    productID,
		ProductRef:   lr.ProductRef,
		ProductName:  name,
		UnitPrice:    price,
		Quantity:     lr.Quantity,
		DiscountRate: discount,
	}, nil
}

// UpdateSaleLinesRequest replaces the lines of a committed sale.
type UpdateSaleLinesRequest struct {
	Lines []TransactionLineRequest `json:"lines" binding:"required"`
}

// ToLines maps the request lines to domain lines.
func (r *UpdateSaleLinesRequest) ToLines() ([]transaction.Line, error) {
	lines := make([]transaction.Line, 0, len(r.Lines))
	for _, lr := range r.Lines {
		line, err := lr.toLine()
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, nil
}

// ReturnLineRequest requests returning a quantity of one sale line.
type ReturnLineRequest struct {
	ProductRef string         `json:"productRef" binding:"required"`
	Quantity   types.Quantity `json:"quantity" binding:"required"`
}

// SubmitReturnRequest submits a return against one sale.
type SubmitReturnRequest struct {
	Lines   []ReturnLineRequest `json:"lines" binding:"required"`
	Comment string              `json:"comment,omitempty"`
}

// ToReturnRequest maps to the domain return request.
func (r *SubmitReturnRequest) ToReturnRequest() ledger.ReturnRequest {
	lines := make([]ledger.ReturnRequestLine, len(r.Lines))
	for i, lr := range r.Lines {
		lines[i] = ledger.ReturnRequestLine{
			ProductRef: lr.ProductRef,
			Quantity:   lr.Quantity,
		}
	}
	return ledger.ReturnRequest{Lines: lines, Comment: r.Comment}
}

// --- Response DTOs ---

// TransactionLineResponse is one line of a transaction document.
type TransactionLineResponse struct {
	LineID           string         `json:"lineId"`
	LineNo           int            `json:"lineNo"`
	ProductID        *string        `json:"productId,omitempty"`
	ProductRef       string         `json:"productRef"`
	ProductName      string         `json:"productName"`
	UnitPrice        string         `json:"unitPrice"`
	Quantity         types.Quantity `json:"quantity"`
	DiscountRate     string         `json:"discountRate"`
	Amount           string         `json:"amount"`
	OriginalSaleCode *string        `json:"originalSaleCode,omitempty"`
}

// TransactionResponse is a transaction document in API responses.
type TransactionResponse struct {
	DocumentResponse
	Kind       string                    `json:"kind"`
	CustomerID *string                   `json:"customerId,omitempty"`
	Total      string                    `json:"total"`
	Lines      []TransactionLineResponse `json:"lines,omitempty"`
}

// FromTransaction creates a response from a domain transaction.
func FromTransaction(t *transaction.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		DocumentResponse: FromDocument(t.Document),
		Kind:             string(t.Kind),
		Total:            types.RoundMoney(t.Total).String(),
	}
	if t.CustomerID != nil {
		s := t.CustomerID.String()
		resp.CustomerID = &s
	}

	for _, line := range t.Lines {
		lr := TransactionLineResponse{
			LineID:           line.LineID.String(),
			LineNo:           line.LineNo,
			ProductRef:       line.ProductRef,
			ProductName:      line.ProductName,
			UnitPrice:        line.UnitPrice.String(),
			Quantity:         line.Quantity,
			DiscountRate:     line.DiscountRate.String(),
			Amount:           line.Amount.String(),
			OriginalSaleCode: line.OriginalSaleCode,
		}
		if line.ProductID != nil {
			s := line.ProductID.String()
			lr.ProductID = &s
		}
		resp.Lines = append(resp.Lines, lr)
	}

	return resp
}

// FromTransactions maps a slice of transactions.
func FromTransactions(txns []*transaction.Transaction) []*TransactionResponse {
	out := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		out[i] = FromTransaction(t)
	}
	return out
}
