package reports

import (
	"context"
	"fmt"
	"time"

	"tillbook/pkg/logger"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetBalanceVerification runs the stored-vs-recomputed balance sweep.
// Mismatches are reported, never corrected: the stored balance stays
// authoritative until someone investigates.
func (s *Service) GetBalanceVerification(ctx context.Context, filter BalanceVerificationFilter) (*BalanceVerificationReport, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetBalanceVerification(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get balance verification: %w", err)
	}

	if report.Mismatches > 0 {
		logger.Warn(ctx, "balance verification found mismatches",
			"mismatches", report.Mismatches,
			"total_rows", report.TotalRows,
		)
	}

	return report, nil
}

// GetTakings generates the daily takings report.
func (s *Service) GetTakings(ctx context.Context, filter TakingsReportFilter) (*TakingsReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("fromDate and toDate are required")
	}

	if filter.FromDate.After(filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	// Cap the range at a year to keep the query bounded.
	if filter.ToDate.Sub(filter.FromDate) > 366*24*time.Hour {
		return nil, fmt.Errorf("report range must not exceed one year")
	}

	report, err := s.repo.GetTakingsReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get takings report: %w", err)
	}

	return report, nil
}
