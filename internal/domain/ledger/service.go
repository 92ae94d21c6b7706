package ledger

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/core/tx"
	"tillbook/internal/domain/audit"
	"tillbook/internal/domain/catalogs/customer"
	"tillbook/internal/domain/documents/transaction"
	"tillbook/internal/domain/posting"
	"tillbook/internal/domain/registers/returns"
	"tillbook/internal/domain/settings"
	"tillbook/pkg/logger"
	"tillbook/pkg/numerator"
)

// Service orchestrates the ledger read and return flows around the pure core:
// fresh reads, policy checks, register locking and the posting transaction.
type Service struct {
	transactions  transaction.Repository
	customers     customer.Repository
	returnsReg    *returns.Service
	policy        settings.PostingPolicy
	postingEngine *posting.Engine
	numerator     *numerator.Service
	txManager     tx.Manager
	auditor       audit.Recorder

	// flight serializes return submissions per sale. A duplicate submit
	// racing the first one gets the same outcome instead of a double
	// return.
	flight singleflight.Group
}

// NewService creates a ledger service.
func NewService(
	transactions transaction.Repository,
	customers customer.Repository,
	returnsReg *returns.Service,
	policy settings.PostingPolicy,
	postingEngine *posting.Engine,
	num *numerator.Service,
	txManager tx.Manager,
	auditor audit.Recorder,
) *Service {
	return &Service{
		transactions:  transactions,
		customers:     customers,
		returnsReg:    returnsReg,
		policy:        policy,
		postingEngine: postingEngine,
		numerator:     num,
		txManager:     txManager,
		auditor:       auditor,
	}
}

// Ledger computes the per-customer ledger view from a fresh read of the
// customer's transactions. A balance mismatch is reported in the view and
// logged; stored data is never corrected from here.
func (s *Service) Ledger(ctx context.Context, customerID id.ID) (*Ledger, error) {
	cust, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	txns, err := s.transactions.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	led := ComputeLedger(txns, cust.Balance)
	for _, row := range led.Rows {
		if row.Flagged {
			logger.Warn(ctx, "transaction fell back to settled-sale classification",
				"transaction_id", row.TransactionID, "code", row.Code, "kind", row.Kind)
		}
	}
	if led.HasMismatch() {
		logger.Warn(ctx, "stored balance disagrees with recomputed ledger",
			"customer_id", customerID,
			"stored", cust.Balance,
			"recomputed", led.Net)
	}

	return led, nil
}

// ReturnableLines resolves the current returnable view of a sale from a
// fresh read. The view is advisory: submission re-reads and re-checks under
// locks.
func (s *Service) ReturnableLines(ctx context.Context, saleID id.ID) ([]ReturnableLine, error) {
	sale, err := s.loadSale(ctx, saleID, false)
	if err != nil {
		return nil, err
	}

	rets, err := s.transactions.ListReturnsForSale(ctx, sale.Code)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}

	return ResolveReturnableLines(sale, NewReturnIndex(rets)), nil
}

// SubmitReturn validates and commits a return against one sale. The whole
// flow runs in a single database transaction over a fresh read of the sale
// and its returns; nothing from earlier screens is trusted. Concurrent
// submissions for the same sale are single-flighted in-process and
// serialized on the register rows across processes.
func (s *Service) SubmitReturn(ctx context.Context, saleID id.ID, req ReturnRequest) (*transaction.Transaction, error) {
	v, err, shared := s.flight.Do(saleID.String(), func() (any, error) {
		return s.submitReturn(ctx, saleID, req)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Warn(ctx, "duplicate return submission coalesced", "sale_id", saleID)
	}
	return v.(*transaction.Transaction), nil
}

func (s *Service) submitReturn(ctx context.Context, saleID id.ID, req ReturnRequest) (*transaction.Transaction, error) {
	var draft *transaction.Transaction

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		sale, err := s.loadSale(ctx, saleID, true)
		if err != nil {
			return err
		}
		if err := s.policy.CanReturn(ctx, sale.Date); err != nil {
			return err
		}

		rets, err := s.transactions.ListReturnsForSale(ctx, sale.Code)
		if err != nil {
			return fmt.Errorf("list returns: %w", err)
		}
		resolved := ResolveReturnableLines(sale, NewReturnIndex(rets))

		draft, err = BuildReturn(sale, resolved, req)
		if err != nil {
			return err
		}

		if err := s.ensureCode(ctx, draft); err != nil {
			return err
		}
		audit.EnrichCreatedByDirect(ctx, &draft.CreatedBy, &draft.UpdatedBy)

		// Store-side recheck under row locks: the authoritative guard
		// against concurrent over-returns.
		soldByRef := make(map[string]*ReturnableLine, len(resolved))
		for i := range resolved {
			soldByRef[resolved[i].ProductRef] = &resolved[i]
		}
		reserve := make([]returns.SoldQuantity, 0, len(draft.Lines))
		for _, line := range draft.Lines {
			reserve = append(reserve, returns.SoldQuantity{
				SaleCode:   sale.Code,
				ProductRef: line.ProductRef,
				Sold:       soldByRef[line.ProductRef].Sold,
				Requested:  line.Quantity,
			})
		}
		if err := s.returnsReg.CheckAndReserve(ctx, reserve); err != nil {
			return err
		}

		if draft.CustomerID != nil {
			if err := s.customers.AdjustBalance(ctx, *draft.CustomerID, draft.BalanceEffect()); err != nil {
				return fmt.Errorf("adjust balance: %w", err)
			}
		}

		createDoc := func(ctx context.Context) error {
			if err := s.transactions.Create(ctx, draft); err != nil {
				return fmt.Errorf("create return: %w", err)
			}
			return s.transactions.SaveLines(ctx, draft.ID, draft.Lines)
		}
		if err := s.postingEngine.Post(ctx, draft, createDoc); err != nil {
			return err
		}

		return s.auditor.RecordChange(ctx, draft.GetDocumentType(), draft.ID, audit.ActionCreate, map[string]any{
			"kind":      string(transaction.KindReturn),
			"code":      draft.Code,
			"sale_code": sale.Code,
			"refund":    draft.RefundTotal().String(),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "return committed",
		"id", draft.ID, "code", draft.Code, "refund", draft.RefundTotal())
	return draft, nil
}

// loadSale fetches a sale with lines, optionally locking the document row.
func (s *Service) loadSale(ctx context.Context, saleID id.ID, forUpdate bool) (*transaction.Transaction, error) {
	var (
		sale *transaction.Transaction
		err  error
	)
	if forUpdate {
		sale, err = s.transactions.GetForUpdate(ctx, saleID)
	} else {
		sale, err = s.transactions.GetByID(ctx, saleID)
	}
	if err != nil {
		return nil, err
	}

	if !sale.Kind.IsSale() {
		return nil, apperror.NewValidation("transaction is not a sale").
			WithDetail("kind", string(sale.Kind))
	}
	if sale.DeletionMark {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	if !sale.Posted {
		return nil, apperror.NewValidation("sale is not committed yet")
	}

	lines, err := s.transactions.GetLines(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	sale.Lines = lines
	return sale, nil
}

func (s *Service) ensureCode(ctx context.Context, doc *transaction.Transaction) error {
	if doc.Code != "" {
		return nil
	}
	cfg := numerator.DefaultConfig(transaction.NumeratorPrefix(doc.Kind))
	code, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: transaction.NumeratorStrategy}, time.Now())
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	doc.Code = code
	return nil
}
