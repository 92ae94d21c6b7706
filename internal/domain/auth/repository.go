// Package auth provides operator authentication for the back office.
package auth

import (
	"context"

	"tillbook/internal/core/id"
)

// OperatorRepository defines operator account storage operations.
type OperatorRepository interface {
	// Create creates a new operator.
	Create(ctx context.Context, op *Operator) error

	// GetByID retrieves operator by ID.
	GetByID(ctx context.Context, operatorID id.ID) (*Operator, error)

	// GetByLogin retrieves operator by login.
	GetByLogin(ctx context.Context, login string) (*Operator, error)

	// Update updates operator data.
	Update(ctx context.Context, op *Operator) error

	// Delete soft-deletes an operator.
	Delete(ctx context.Context, operatorID id.ID) error

	// List retrieves operators with filtering.
	List(ctx context.Context, filter OperatorFilter) ([]Operator, int, error)

	// Exists checks if login is taken.
	Exists(ctx context.Context, login string) (bool, error)
}

// TokenRepository defines token storage operations.
type TokenRepository interface {
	// SaveRefreshToken saves a refresh token.
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error

	// GetRefreshToken retrieves refresh token by hash.
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// RevokeRefreshToken revokes a refresh token.
	RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error

	// RevokeAllOperatorTokens revokes all tokens for an operator.
	RevokeAllOperatorTokens(ctx context.Context, operatorID id.ID, reason string) error

	// CleanupExpiredTokens removes expired tokens.
	CleanupExpiredTokens(ctx context.Context) (int, error)
}

// OperatorFilter for listing operators.
type OperatorFilter struct {
	Search   string
	IsActive *bool
	Role     string
	Limit    int
	Offset   int
}
