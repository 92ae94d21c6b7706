package transaction

import (
	"context"
	"fmt"
	"time"

	"tillbook/internal/core/apperror"
	appcontext "tillbook/internal/core/context"
	"tillbook/internal/core/id"
	"tillbook/internal/core/tx"
	"tillbook/internal/core/types"
	"tillbook/internal/domain"
	"tillbook/internal/domain/audit"
	"tillbook/internal/domain/catalogs/customer"
	"tillbook/internal/domain/posting"
	"tillbook/internal/domain/settings"
	"tillbook/pkg/logger"
	"tillbook/pkg/numerator"
)

// Service provides business operations for transaction documents: the
// non-return kinds are created here (returns go through the ledger return
// flow, which owns resolution and clamping).
type Service struct {
	repo          Repository
	customers     customer.Repository
	settings      settings.Provider
	policy        settings.PostingPolicy
	postingEngine *posting.Engine
	numerator     *numerator.Service
	txManager     tx.Manager
	auditor       audit.Recorder
}

// NewService creates a new transaction service.
func NewService(
	repo Repository,
	customers customer.Repository,
	settingsProvider settings.Provider,
	policy settings.PostingPolicy,
	postingEngine *posting.Engine,
	num *numerator.Service,
	txManager tx.Manager,
	auditor audit.Recorder,
) *Service {
	return &Service{
		repo:          repo,
		customers:     customers,
		settings:      settingsProvider,
		policy:        policy,
		postingEngine: postingEngine,
		numerator:     num,
		txManager:     txManager,
		auditor:       auditor,
	}
}

// Create validates, codes and commits a new transaction document in one
// transaction: document rows, register movements and the customer balance
// move together or not at all. Returns are rejected here; they are built by
// the return flow from a resolved sale, never submitted free-form.
func (s *Service) Create(ctx context.Context, doc *Transaction) error {
	if doc.Kind == KindReturn {
		return apperror.NewValidation("returns are created through the return flow of the original sale")
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if err := s.ensureCode(ctx, doc); err != nil {
		return err
	}

	audit.EnrichCreatedByDirect(ctx, &doc.CreatedBy, &doc.UpdatedBy)

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.applyBalanceEffect(ctx, doc, doc.BalanceEffect()); err != nil {
			return err
		}

		createDoc := func(ctx context.Context) error {
			if err := s.repo.Create(ctx, doc); err != nil {
				return fmt.Errorf("create document: %w", err)
			}
			if len(doc.Lines) > 0 {
				if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
					return fmt.Errorf("save lines: %w", err)
				}
			}
			return nil
		}
		if err := s.postingEngine.Post(ctx, doc, createDoc); err != nil {
			return err
		}

		if err := s.auditor.RecordChange(ctx, doc.GetDocumentType(), doc.ID, audit.ActionCreate, map[string]any{
			"kind":  string(doc.Kind),
			"code":  doc.Code,
			"total": doc.Total.String(),
		}); err != nil {
			return fmt.Errorf("audit: %w", err)
		}

		logger.Info(ctx, "transaction created",
			"id", doc.ID, "code", doc.Code, "kind", doc.Kind, "total", doc.Total)
		return nil
	})
}

// GetByID retrieves a transaction with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Transaction, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if doc.Kind.HasLines() {
		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return nil, fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines
	}

	return doc, nil
}

// GetByCode retrieves a transaction by document code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Transaction, error) {
	doc, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, doc.ID)
}

// List retrieves transactions with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Transaction], error) {
	return s.repo.List(ctx, filter)
}

// DeletePayment soft-deletes a payment and restores the debt it had settled.
// Supervisor-gated: this is one of the two sanctioned destructive edits on a
// committed ledger.
func (s *Service) DeletePayment(ctx context.Context, docID id.ID) error {
	if !appcontext.IsSupervisor(ctx) {
		return apperror.NewForbidden("deleting a payment requires a supervisor")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if doc.Kind != KindPayment {
			return apperror.NewValidation("only payments can be deleted").
				WithDetail("kind", string(doc.Kind))
		}
		if doc.DeletionMark {
			return apperror.NewValidation("payment is already deleted")
		}
		if err := s.policy.CanModify(ctx, doc.Date); err != nil {
			return err
		}

		// Removing the payment puts its amount back on the balance.
		if err := s.applyBalanceEffect(ctx, doc, doc.BalanceEffect().Neg()); err != nil {
			return err
		}

		unpostDoc := func(ctx context.Context) error {
			doc.MarkDeleted()
			return s.repo.Update(ctx, doc)
		}
		if err := s.postingEngine.Unpost(ctx, doc, unpostDoc); err != nil {
			return err
		}

		if err := s.auditor.RecordChange(ctx, doc.GetDocumentType(), doc.ID, audit.ActionDelete, map[string]any{
			"kind":  string(doc.Kind),
			"code":  doc.Code,
			"total": doc.Total.String(),
		}); err != nil {
			return fmt.Errorf("audit: %w", err)
		}

		logger.Warn(ctx, "payment deleted",
			"id", doc.ID, "code", doc.Code, "total", doc.Total,
			"operator", appcontext.GetOperatorLogin(ctx))
		return nil
	})
}

// UpdateSaleLines replaces the lines of a committed sale and recomputes its
// total. Supervisor-gated. The returns register is deliberately untouched:
// a shrunk sale with prior returns shows up as a clamped returnable view and
// an integrity warning, not as silently rewritten history.
func (s *Service) UpdateSaleLines(ctx context.Context, docID id.ID, lines []Line) error {
	if !appcontext.IsSupervisor(ctx) {
		return apperror.NewForbidden("editing a committed sale requires a supervisor")
	}
	if len(lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			return err
		}
		if !doc.Kind.IsSale() {
			return apperror.NewValidation("only sales can be resaved").
				WithDetail("kind", string(doc.Kind))
		}
		if err := s.policy.CanModify(ctx, doc.Date); err != nil {
			return err
		}

		oldEffect := doc.BalanceEffect()
		oldTotal := doc.Total

		doc.Lines = normalizeLines(lines)
		doc.RecalculateTotals()
		if err := doc.Validate(ctx); err != nil {
			return err
		}
		audit.EnrichUpdatedByDirect(ctx, &doc.UpdatedBy)

		if err := s.applyBalanceEffect(ctx, doc, doc.BalanceEffect().Sub(oldEffect)); err != nil {
			return err
		}

		updateDoc := func(ctx context.Context) error {
			if err := s.repo.Update(ctx, doc); err != nil {
				return fmt.Errorf("update document: %w", err)
			}
			return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
		}
		if err := s.postingEngine.Post(ctx, doc, updateDoc); err != nil {
			return err
		}

		if err := s.auditor.RecordChange(ctx, doc.GetDocumentType(), doc.ID, audit.ActionUpdate, map[string]any{
			"code":      doc.Code,
			"old_total": oldTotal.String(),
			"new_total": doc.Total.String(),
		}); err != nil {
			return fmt.Errorf("audit: %w", err)
		}

		logger.Warn(ctx, "sale lines resaved",
			"id", doc.ID, "code", doc.Code,
			"old_total", oldTotal, "new_total", doc.Total,
			"operator", appcontext.GetOperatorLogin(ctx))
		return nil
	})
}

// ensureCode assigns the next document code for the kind.
func (s *Service) ensureCode(ctx context.Context, doc *Transaction) error {
	if doc.Code != "" {
		return nil
	}
	cfg := numerator.DefaultConfig(NumeratorPrefix(doc.Kind))
	code, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	doc.Code = code
	return nil
}

// applyBalanceEffect moves the customer's stored balance by delta, enforcing
// the debt limit when the delta increases debt. No-op for documents without
// a customer or with zero effect.
func (s *Service) applyBalanceEffect(ctx context.Context, doc *Transaction, delta types.Money) error {
	if doc.CustomerID == nil || delta.IsZero() {
		return nil
	}

	cust, err := s.customers.GetForUpdate(ctx, *doc.CustomerID)
	if err != nil {
		return err
	}

	if delta.IsPositive() {
		limit, err := s.effectiveDebtLimit(ctx, cust)
		if err != nil {
			return err
		}
		if limit != nil {
			resulting := cust.Balance.Add(delta)
			if resulting.GreaterThan(*limit) {
				return apperror.NewDebtLimitExceeded(
					cust.ID.String(),
					types.RoundMoney(resulting).String(),
					types.RoundMoney(*limit).String(),
				)
			}
		}
	}

	if err := s.customers.AdjustBalance(ctx, cust.ID, delta); err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}
	return nil
}

func (s *Service) effectiveDebtLimit(ctx context.Context, cust *customer.Customer) (*types.Money, error) {
	if cust.DebtLimit != nil {
		return cust.DebtLimit, nil
	}
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "settings")
	}
	return cfg.DefaultDebtLimit, nil
}

// normalizeLines renumbers lines and recomputes committed amounts.
func normalizeLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	for i := range out {
		if id.IsNil(out[i].LineID) {
			out[i].LineID = id.New()
		}
		out[i].LineNo = i + 1
		out[i].Amount = types.LineAmount(out[i].UnitPrice, out[i].Quantity, out[i].DiscountRate)
	}
	return out
}
