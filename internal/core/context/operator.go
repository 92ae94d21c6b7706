// Package context provides request-scoped values extraction.
package context

import (
	"context"
)

// Operator roles.
const (
	RoleOperator   = "operator"
	RoleSupervisor = "supervisor"
)

// OperatorContext contains the authenticated back-office operator.
type OperatorContext struct {
	OperatorID string
	Login      string
	Name       string
	Role       string
	SessionID  string
}

type operatorContextKey struct{}

// WithOperator adds OperatorContext to context.
func WithOperator(ctx context.Context, op *OperatorContext) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, op)
}

// GetOperator returns OperatorContext from context.
func GetOperator(ctx context.Context) *OperatorContext {
	if v, ok := ctx.Value(operatorContextKey{}).(*OperatorContext); ok {
		return v
	}
	return nil
}

// GetOperatorID returns operator ID from context or empty string.
func GetOperatorID(ctx context.Context) string {
	if op := GetOperator(ctx); op != nil {
		return op.OperatorID
	}
	return ""
}

// GetOperatorLogin returns operator login from context or empty string.
func GetOperatorLogin(ctx context.Context) string {
	if op := GetOperator(ctx); op != nil {
		return op.Login
	}
	return ""
}

// IsSupervisor reports whether the context operator carries the supervisor
// role. Payment deletion and committed-sale edits require it.
func IsSupervisor(ctx context.Context) bool {
	if op := GetOperator(ctx); op != nil {
		return op.Role == RoleSupervisor
	}
	return false
}
