// Package entity provides core domain entities.
package entity

import (
	"time"

	"tillbook/internal/core/id"
	"tillbook/internal/core/types"
)

// RecordType defines movement direction for accumulation registers.
type RecordType string

const (
	// RecordTypeReceipt increases balance
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases balance
	RecordTypeExpense RecordType = "expense"
)

// RegisterKind defines the type of register.
type RegisterKind string

const (
	// RegisterKindAccumulation - tracks quantities and amounts
	RegisterKindAccumulation RegisterKind = "accumulation"
	// RegisterKindInformation - stores dimensional data
	RegisterKindInformation RegisterKind = "information"
)

// MovementBase contains common fields for all register movements.
// Movements are immutable - they are never updated, only deleted and recreated.
type MovementBase struct {
	// LineID is unique identifier for this movement line (UUIDv7)
	// Used instead of hash for deterministic tracking
	LineID id.ID `db:"line_id" json:"lineId"`

	// RecorderID is the document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document type (e.g., "Return", "Payment")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// RecorderVersion tracks which posting iteration created this movement
	// Allows efficient cleanup: DELETE WHERE recorder_id = X AND recorder_version < Y
	RecorderVersion int `db:"recorder_version" json:"recorderVersion"`

	// Period is the business date for the movement (for period-based queries)
	Period time.Time `db:"period" json:"period"`

	// RecordType: receipt or expense
	RecordType RecordType `db:"record_type" json:"recordType"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovementBase creates a new movement base with generated LineID.
func NewMovementBase(recorderID id.ID, recorderType string, recorderVersion int, period time.Time, recordType RecordType) MovementBase {
	return MovementBase{
		LineID:          id.New(),
		RecorderID:      recorderID,
		RecorderType:    recorderType,
		RecorderVersion: recorderVersion,
		Period:          period,
		RecordType:      recordType,
		CreatedAt:       time.Now().UTC(),
	}
}

// ReturnMovement is a movement in the returned-quantity accumulation register.
// Each posted return writes one receipt movement per line, dimensioned by the
// original sale code and the product reference the line was matched on.
type ReturnMovement struct {
	MovementBase

	// Dimensions
	SaleCode   string `db:"sale_code" json:"saleCode"`
	ProductRef string `db:"product_ref" json:"productRef"`

	// Resources
	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// NewReturnMovement creates a returned-quantity movement.
func NewReturnMovement(
	recorderID id.ID,
	recorderType string,
	recorderVersion int,
	period time.Time,
	saleCode, productRef string,
	quantity types.Quantity,
) ReturnMovement {
	return ReturnMovement{
		MovementBase: NewMovementBase(recorderID, recorderType, recorderVersion, period, RecordTypeReceipt),
		SaleCode:     saleCode,
		ProductRef:   productRef,
		Quantity:     quantity,
	}
}

// SignedQuantity returns quantity with sign based on record type.
// Receipt = positive, Expense = negative.
func (m *ReturnMovement) SignedQuantity() types.Quantity {
	if m.RecordType == RecordTypeExpense {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// ReturnBalance is the materialized balance of the returns register: the total
// quantity already returned against one sale line key. Committing a return
// locks and re-checks these rows so concurrent submissions cannot overshoot
// the sold quantity.
type ReturnBalance struct {
	// Dimensions
	SaleCode   string `db:"sale_code" json:"saleCode"`
	ProductRef string `db:"product_ref" json:"productRef"`

	// Balances
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Metadata
	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
