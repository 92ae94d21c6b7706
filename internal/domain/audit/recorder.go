package audit

import (
	"context"

	"tillbook/internal/core/id"
)

// Audit actions recorded by the domain services.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionPost   = "post"
	ActionUnpost = "unpost"
)

// Recorder records domain mutations for the audit trail. The storage layer
// provides the implementation; services depend on this interface.
type Recorder interface {
	RecordChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error
}

// NopRecorder discards audit records. Used in tests.
type NopRecorder struct{}

func (NopRecorder) RecordChange(ctx context.Context, entityType string, entityID id.ID, action string, changes map[string]any) error {
	return nil
}

var _ Recorder = NopRecorder{}
