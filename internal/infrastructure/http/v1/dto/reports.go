package dto

import (
	"time"

	"tillbook/internal/core/types"
	"tillbook/internal/domain/reports"
)

// --- Balance Verification ---

// BalanceVerificationRequest filters the balance verification sweep.
type BalanceVerificationRequest struct {
	CustomerIDs    []string `form:"customerId"`
	OnlyMismatched bool     `form:"onlyMismatched"`
	Limit          int      `form:"limit"`
	Offset         int      `form:"offset"`
}

// BalanceVerificationRowResponse is one customer in the sweep result.
type BalanceVerificationRowResponse struct {
	CustomerID   string `json:"customerId"`
	CustomerCode string `json:"customerCode"`
	CustomerName string `json:"customerName"`
	Stored       string `json:"stored"`
	Recomputed   string `json:"recomputed"`
	Delta        string `json:"delta"`
	Mismatched   bool   `json:"mismatched"`
}

// BalanceVerificationResponse represents the sweep report.
type BalanceVerificationResponse struct {
	GeneratedAt time.Time                        `json:"generatedAt"`
	Rows        []BalanceVerificationRowResponse `json:"rows"`
	TotalRows   int                              `json:"totalRows"`
	Mismatches  int                              `json:"mismatches"`
}

// FromBalanceVerificationReport maps the domain report.
func FromBalanceVerificationReport(r *reports.BalanceVerificationReport) *BalanceVerificationResponse {
	resp := &BalanceVerificationResponse{
		GeneratedAt: r.GeneratedAt,
		Rows:        make([]BalanceVerificationRowResponse, len(r.Rows)),
		TotalRows:   r.TotalRows,
		Mismatches:  r.Mismatches,
	}
	for i, row := range r.Rows {
		resp.Rows[i] = BalanceVerificationRowResponse{
			CustomerID:   row.CustomerID.String(),
			CustomerCode: row.CustomerCode,
			CustomerName: row.CustomerName,
			Stored:       types.RoundMoney(row.Stored).String(),
			Recomputed:   types.RoundMoney(row.Recomputed).String(),
			Delta:        types.RoundMoney(row.Delta).String(),
			Mismatched:   row.Mismatched(),
		}
	}
	return resp
}

// --- Daily Takings ---

// TakingsReportRequest filters the daily takings report.
type TakingsReportRequest struct {
	FromDate string `form:"fromDate" binding:"required"`
	ToDate   string `form:"toDate" binding:"required"`
}

// TakingsRowResponse is one day's totals.
type TakingsRowResponse struct {
	Day         string `json:"day"`
	CashSales   string `json:"cashSales"`
	CardSales   string `json:"cardSales"`
	CreditSales string `json:"creditSales"`
	Payments    string `json:"payments"`
	Refunds     string `json:"refunds"`
}

// TakingsReportResponse represents the daily takings report.
type TakingsReportResponse struct {
	FromDate      time.Time            `json:"fromDate"`
	ToDate        time.Time            `json:"toDate"`
	Rows          []TakingsRowResponse `json:"rows"`
	TotalSales    string               `json:"totalSales"`
	TotalPayments string               `json:"totalPayments"`
	TotalRefunds  string               `json:"totalRefunds"`
}

// FromTakingsReport maps the domain report.
func FromTakingsReport(r *reports.TakingsReport) *TakingsReportResponse {
	resp := &TakingsReportResponse{
		FromDate:      r.FromDate,
		ToDate:        r.ToDate,
		Rows:          make([]TakingsRowResponse, len(r.Rows)),
		TotalSales:    types.RoundMoney(r.TotalSales).String(),
		TotalPayments: types.RoundMoney(r.TotalPayments).String(),
		TotalRefunds:  types.RoundMoney(r.TotalRefunds).String(),
	}
	for i, row := range r.Rows {
		resp.Rows[i] = TakingsRowResponse{
			Day:         row.Day.Format("2006-01-02"),
			CashSales:   types.RoundMoney(row.CashSales).String(),
			CardSales:   types.RoundMoney(row.CardSales).String(),
			CreditSales: types.RoundMoney(row.CreditSales).String(),
			Payments:    types.RoundMoney(row.Payments).String(),
			Refunds:     types.RoundMoney(row.Refunds).String(),
		}
	}
	return resp
}
