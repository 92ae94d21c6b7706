// Package posting defines the contract between documents and the register
// layer. A document that affects registers implements Postable and describes
// its effect as a MovementSet; the register services persist the set and
// maintain materialized balances inside the posting transaction.
package posting

import (
	"context"
	"time"

	"tillbook/internal/core/entity"
	"tillbook/internal/core/id"
)

// Postable is implemented by documents that write register movements.
type Postable interface {
	GetID() id.ID
	GetDocumentType() string
	GetDate() time.Time
	GetPostedVersion() int
	IsPosted() bool
	MarkPosted()
	MarkUnposted()

	// CanPost validates the document before movements are generated.
	CanPost(ctx context.Context) error

	// GenerateMovements describes the register effect of this document.
	// Pure: no database access.
	GenerateMovements(ctx context.Context) (*MovementSet, error)
}

// MovementSet collects the movements one document produces, grouped by
// register.
type MovementSet struct {
	Returns []entity.ReturnMovement
}

// NewMovementSet creates an empty movement set.
func NewMovementSet() *MovementSet {
	return &MovementSet{}
}

// AddReturn appends a returned-quantity movement.
func (s *MovementSet) AddReturn(m entity.ReturnMovement) {
	s.Returns = append(s.Returns, m)
}

// IsEmpty reports whether the set contains no movements.
func (s *MovementSet) IsEmpty() bool {
	return len(s.Returns) == 0
}
