package audit_test

import (
	"context"
	"testing"

	appcontext "tillbook/internal/core/context"
	"tillbook/internal/domain/audit"
	"tillbook/internal/domain/documents/transaction"
)

func operatorCtx(operatorID string) context.Context {
	return appcontext.WithOperator(context.Background(), &appcontext.OperatorContext{
		OperatorID: operatorID,
		Login:      "till1",
		Role:       appcontext.RoleOperator,
	})
}

// Author stamps land on document audit fields. Catalogs have none, so
// enrichment is wired into the document services only.
func TestEnrichCreatedByDirect_StampsDocument(t *testing.T) {
	doc := transaction.New(transaction.KindPayment, nil)

	audit.EnrichCreatedByDirect(operatorCtx("op-1"), &doc.CreatedBy, &doc.UpdatedBy)

	if doc.CreatedBy != "op-1" {
		t.Errorf("CreatedBy = %q, want op-1", doc.CreatedBy)
	}
	if doc.UpdatedBy != "op-1" {
		t.Errorf("UpdatedBy = %q, want op-1", doc.UpdatedBy)
	}
}

func TestEnrichCreatedByDirect_NoOperator(t *testing.T) {
	doc := transaction.New(transaction.KindPayment, nil)

	audit.EnrichCreatedByDirect(context.Background(), &doc.CreatedBy, &doc.UpdatedBy)

	if doc.CreatedBy != "" || doc.UpdatedBy != "" {
		t.Errorf("expected empty stamps without operator, got %q / %q", doc.CreatedBy, doc.UpdatedBy)
	}
}

func TestEnrichUpdatedByDirect_LeavesCreatedBy(t *testing.T) {
	doc := transaction.New(transaction.KindManualDebit, nil)
	doc.CreatedBy = "op-1"
	doc.UpdatedBy = "op-1"

	audit.EnrichUpdatedByDirect(operatorCtx("op-2"), &doc.UpdatedBy)

	if doc.CreatedBy != "op-1" {
		t.Errorf("CreatedBy = %q, want op-1", doc.CreatedBy)
	}
	if doc.UpdatedBy != "op-2" {
		t.Errorf("UpdatedBy = %q, want op-2", doc.UpdatedBy)
	}
}
