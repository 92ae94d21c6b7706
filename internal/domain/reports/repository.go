package reports

import (
	"context"
)

// Repository defines report data access interface.
type Repository interface {
	// GetBalanceVerification recomputes customer balances from posted
	// transactions and compares them with stored balances.
	GetBalanceVerification(ctx context.Context, filter BalanceVerificationFilter) (*BalanceVerificationReport, error)

	// GetTakingsReport aggregates posted transactions by day and kind.
	GetTakingsReport(ctx context.Context, filter TakingsReportFilter) (*TakingsReport, error)
}
