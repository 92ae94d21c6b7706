package posting

import (
	"context"
	"fmt"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/tx"
	"tillbook/internal/domain/registers/returns"
	"tillbook/internal/domain/settings"
	"tillbook/pkg/logger"
)

// Engine commits documents: it persists the document, replaces its register
// movements and flips the posted flag, all in one transaction. Nested calls
// reuse the caller's transaction via savepoints.
type Engine struct {
	txManager tx.Manager
	returns   *returns.Service
	policy    settings.PostingPolicy
}

// NewEngine creates a posting engine.
func NewEngine(txManager tx.Manager, returnsRegister *returns.Service, policy settings.PostingPolicy) *Engine {
	return &Engine{
		txManager: txManager,
		returns:   returnsRegister,
		policy:    policy,
	}
}

// Post commits the document. updateDoc persists the document rows (create or
// update, caller's choice); the engine wraps it with movement replacement.
func (e *Engine) Post(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if err := doc.CanPost(ctx); err != nil {
		return err
	}
	if e.policy != nil {
		if err := e.policy.CanPost(ctx, doc.GetDate()); err != nil {
			return err
		}
	}

	movements, err := doc.GenerateMovements(ctx)
	if err != nil {
		return fmt.Errorf("generate movements: %w", err)
	}

	doc.MarkPosted()

	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := updateDoc(ctx); err != nil {
			return err
		}
		// Movements of earlier posting iterations become stale once the
		// new version is written.
		if err := e.returns.ReverseMovements(ctx, doc.GetID(), doc.GetPostedVersion()); err != nil {
			return err
		}
		return e.returns.RecordMovements(ctx, movements.Returns)
	})
	if err != nil {
		doc.MarkUnposted()
		return err
	}

	logger.Info(ctx, "document posted",
		"type", doc.GetDocumentType(),
		"id", doc.GetID(),
		"posted_version", doc.GetPostedVersion(),
	)
	return nil
}

// Unpost reverses the document's movements and clears the posted flag.
func (e *Engine) Unpost(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if !doc.IsPosted() {
		return apperror.NewValidation("document is not posted").
			WithDetail("document_id", doc.GetID().String())
	}
	if e.policy != nil {
		if err := e.policy.CanModify(ctx, doc.GetDate()); err != nil {
			return err
		}
	}

	doc.MarkUnposted()

	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := updateDoc(ctx); err != nil {
			return err
		}
		return e.returns.ReverseMovements(ctx, doc.GetID(), doc.GetPostedVersion()+1)
	})
	if err != nil {
		doc.MarkPosted()
		return err
	}

	logger.Info(ctx, "document unposted",
		"type", doc.GetDocumentType(),
		"id", doc.GetID(),
	)
	return nil
}
