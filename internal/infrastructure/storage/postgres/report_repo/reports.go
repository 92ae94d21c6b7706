// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tillbook/internal/domain/reports"
	"tillbook/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReportRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return r.txm
}

// balanceEffectSQL recomputes a customer's ledger net from posted
// transactions. It mirrors the classifier: credit sales and manual debits
// add debt, payments add credit, returns carry a negative total, settled
// sales and anything unrecognized net to zero.
const balanceEffectSQL = `
	SELECT customer_id,
		SUM(CASE
			WHEN kind IN ('credit_sale', 'manual_debit', 'return') THEN total
			WHEN kind = 'payment' THEN -total
			ELSE 0
		END) AS net
	FROM doc_transactions
	WHERE posted = true AND deletion_mark = false AND customer_id IS NOT NULL
	GROUP BY customer_id
`

// GetBalanceVerification compares stored customer balances with balances
// recomputed from the transaction ledger.
func (r *ReportRepo) GetBalanceVerification(ctx context.Context, filter reports.BalanceVerificationFilter) (*reports.BalanceVerificationReport, error) {
	query := fmt.Sprintf(`
		SELECT
			c.id AS customer_id,
			c.code AS customer_code,
			c.name AS customer_name,
			c.balance AS stored,
			COALESCE(t.net, 0) AS recomputed,
			COALESCE(t.net, 0) - c.balance AS delta
		FROM cat_customers c
		LEFT JOIN (%s) t ON t.customer_id = c.id
		WHERE c.deletion_mark = false AND c.is_folder = false
	`, balanceEffectSQL)

	args := []any{}
	argIndex := 1

	if len(filter.CustomerIDs) > 0 {
		placeholders := make([]string, len(filter.CustomerIDs))
		for i, customerID := range filter.CustomerIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, customerID)
			argIndex++
		}
		query += fmt.Sprintf(" AND c.id IN (%s)", strings.Join(placeholders, ","))
	}

	if filter.OnlyMismatched {
		query += " AND COALESCE(t.net, 0) <> c.balance"
	}

	query += " ORDER BY c.code"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var rows []reports.BalanceVerificationRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("balance verification: %w", err)
	}

	mismatches := 0
	for _, row := range rows {
		if row.Mismatched() {
			mismatches++
		}
	}

	return &reports.BalanceVerificationReport{
		GeneratedAt: time.Now().UTC(),
		Rows:        rows,
		TotalRows:   len(rows),
		Mismatches:  mismatches,
	}, nil
}

// GetTakingsReport aggregates posted transactions by day and kind.
func (r *ReportRepo) GetTakingsReport(ctx context.Context, filter reports.TakingsReportFilter) (*reports.TakingsReport, error) {
	query := `
		SELECT
			date_trunc('day', date) AS day,
			COALESCE(SUM(total) FILTER (WHERE kind = 'cash_sale'), 0) AS cash_sales,
			COALESCE(SUM(total) FILTER (WHERE kind = 'card_sale'), 0) AS card_sales,
			COALESCE(SUM(total) FILTER (WHERE kind = 'credit_sale'), 0) AS credit_sales,
			COALESCE(SUM(total) FILTER (WHERE kind = 'payment'), 0) AS payments,
			COALESCE(SUM(-total) FILTER (WHERE kind = 'return'), 0) AS refunds
		FROM doc_transactions
		WHERE posted = true AND deletion_mark = false
		  AND date >= $1 AND date < $2
		GROUP BY date_trunc('day', date)
		ORDER BY day
	`

	var rows []reports.TakingsRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, query, filter.FromDate, filter.ToDate); err != nil {
		return nil, fmt.Errorf("takings report: %w", err)
	}

	report := &reports.TakingsReport{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
		Rows:     rows,
	}

	for _, row := range rows {
		report.TotalSales = report.TotalSales.
			Add(row.CashSales).
			Add(row.CardSales).
			Add(row.CreditSales)
		report.TotalPayments = report.TotalPayments.Add(row.Payments)
		report.TotalRefunds = report.TotalRefunds.Add(row.Refunds)
	}

	return report, nil
}

// Ensure interface compliance
var _ reports.Repository = (*ReportRepo)(nil)
