// Package reports provides report generation services.
package reports

import (
	"time"

	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
)

// --- Balance Verification ---

// BalanceVerificationFilter defines filter for the balance verification sweep.
type BalanceVerificationFilter struct {
	// CustomerIDs limits the sweep to specific customers (empty = all).
	CustomerIDs []id.ID

	// OnlyMismatched keeps only rows where stored and recomputed diverge.
	OnlyMismatched bool

	// Pagination
	Limit  int
	Offset int
}

// BalanceVerificationRow compares a customer's stored balance against the
// balance recomputed from their posted transactions.
type BalanceVerificationRow struct {
	CustomerID   id.ID       `db:"customer_id" json:"customerId"`
	CustomerCode string      `db:"customer_code" json:"customerCode"`
	CustomerName string      `db:"customer_name" json:"customerName"`
	Stored       types.Money `db:"stored" json:"stored"`
	Recomputed   types.Money `db:"recomputed" json:"recomputed"`
	Delta        types.Money `db:"delta" json:"delta"`
}

// Mismatched reports whether the stored balance diverges from the ledger.
func (r BalanceVerificationRow) Mismatched() bool {
	return !r.Delta.IsZero()
}

// BalanceVerificationReport is the full sweep result.
type BalanceVerificationReport struct {
	GeneratedAt time.Time                `json:"generatedAt"`
	Rows        []BalanceVerificationRow `json:"rows"`
	TotalRows   int                      `json:"totalRows"`
	Mismatches  int                      `json:"mismatches"`
}

// --- Daily Takings ---

// TakingsReportFilter defines filter for the daily takings report.
type TakingsReportFilter struct {
	// Period (required)
	FromDate time.Time
	ToDate   time.Time
}

// TakingsRow is one day's totals broken down by transaction kind.
type TakingsRow struct {
	Day         time.Time   `db:"day" json:"day"`
	CashSales   types.Money `db:"cash_sales" json:"cashSales"`
	CardSales   types.Money `db:"card_sales" json:"cardSales"`
	CreditSales types.Money `db:"credit_sales" json:"creditSales"`
	Payments    types.Money `db:"payments" json:"payments"`
	Refunds     types.Money `db:"refunds" json:"refunds"`
}

// TakingsReport represents the full daily takings report.
type TakingsReport struct {
	FromDate time.Time    `json:"fromDate"`
	ToDate   time.Time    `json:"toDate"`
	Rows     []TakingsRow `json:"rows"`

	TotalSales    types.Money `json:"totalSales"`
	TotalPayments types.Money `json:"totalPayments"`
	TotalRefunds  types.Money `json:"totalRefunds"`
}
