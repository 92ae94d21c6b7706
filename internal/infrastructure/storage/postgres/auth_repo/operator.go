// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tillbook/internal/core/apperror"
	"tillbook/internal/core/id"
	"tillbook/internal/domain/auth"
	"tillbook/internal/infrastructure/storage/postgres"
)

// OperatorRepo implements auth.OperatorRepository.
type OperatorRepo struct {
	txm *postgres.TxManager
}

// NewOperatorRepo creates a new operator repository.
func NewOperatorRepo(txm *postgres.TxManager) *OperatorRepo {
	return &OperatorRepo{txm: txm}
}

func (r *OperatorRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return r.txm
}

const operatorCols = `id, login, name, password_hash, role, is_active,
	last_login_at, failed_login_attempts, locked_until,
	created_at, updated_at, deleted_at, version`

func scanOperator(row pgx.Row) (*auth.Operator, error) {
	var op auth.Operator
	err := row.Scan(
		&op.ID, &op.Login, &op.Name, &op.PasswordHash, &op.Role, &op.IsActive,
		&op.LastLoginAt, &op.FailedLoginAttempts, &op.LockedUntil,
		&op.CreatedAt, &op.UpdatedAt, &op.DeletedAt, &op.Version,
	)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// Create creates a new operator.
func (r *OperatorRepo) Create(ctx context.Context, op *auth.Operator) error {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	query := `
		INSERT INTO sys_operators (
			id, login, name, password_hash, role, is_active,
			created_at, updated_at, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := q.Exec(ctx, query,
		op.ID, op.Login, op.Name, op.PasswordHash, op.Role, op.IsActive,
		op.CreatedAt, op.UpdatedAt, op.Version,
	)
	if err != nil {
		return fmt.Errorf("insert operator: %w", err)
	}

	return nil
}

// GetByID retrieves operator by ID.
func (r *OperatorRepo) GetByID(ctx context.Context, operatorID id.ID) (*auth.Operator, error) {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	query := fmt.Sprintf(`
		SELECT %s FROM sys_operators
		WHERE id = $1 AND deleted_at IS NULL
	`, operatorCols)

	op, err := scanOperator(q.QueryRow(ctx, query, operatorID))
	if err == pgx.ErrNoRows {
		return nil, apperror.NewNotFound("operator", operatorID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("query operator: %w", err)
	}

	return op, nil
}

// GetByLogin retrieves operator by login.
func (r *OperatorRepo) GetByLogin(ctx context.Context, login string) (*auth.Operator, error) {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	query := fmt.Sprintf(`
		SELECT %s FROM sys_operators
		WHERE login = $1 AND deleted_at IS NULL
	`, operatorCols)

	op, err := scanOperator(q.QueryRow(ctx, query, login))
	if err == pgx.ErrNoRows {
		return nil, apperror.NewNotFound("operator", login)
	}
	if err != nil {
		return nil, fmt.Errorf("query operator: %w", err)
	}

	return op, nil
}

// Update updates operator data with optimistic locking.
func (r *OperatorRepo) Update(ctx context.Context, op *auth.Operator) error {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	query := `
		UPDATE sys_operators SET
			name = $2,
			role = $3,
			is_active = $4,
			last_login_at = $5,
			failed_login_attempts = $6,
			locked_until = $7,
			updated_at = NOW(),
			version = version + 1
		WHERE id = $1 AND deleted_at IS NULL AND version = $8
	`

	result, err := q.Exec(ctx, query,
		op.ID, op.Name, op.Role, op.IsActive,
		op.LastLoginAt, op.FailedLoginAttempts, op.LockedUntil,
		op.Version,
	)
	if err != nil {
		return fmt.Errorf("update operator: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("operator", op.ID)
	}

	op.Version++
	return nil
}

// Delete soft-deletes an operator.
func (r *OperatorRepo) Delete(ctx context.Context, operatorID id.ID) error {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	query := `UPDATE sys_operators SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	result, err := q.Exec(ctx, query, operatorID)
	if err != nil {
		return fmt.Errorf("delete operator: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("operator", operatorID.String())
	}

	return nil
}

// List retrieves operators with filtering.
func (r *OperatorRepo) List(ctx context.Context, filter auth.OperatorFilter) ([]auth.Operator, int, error) {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	query := fmt.Sprintf(`
		SELECT %s FROM sys_operators
		WHERE deleted_at IS NULL
	`, operatorCols)
	countQuery := `SELECT COUNT(*) FROM sys_operators WHERE deleted_at IS NULL`

	var args []interface{}
	argIdx := 1

	if filter.Search != "" {
		cond := fmt.Sprintf(" AND (login ILIKE $%d OR name ILIKE $%d)", argIdx, argIdx)
		query += cond
		countQuery += cond
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	if filter.IsActive != nil {
		cond := fmt.Sprintf(" AND is_active = $%d", argIdx)
		query += cond
		countQuery += cond
		args = append(args, *filter.IsActive)
		argIdx++
	}

	if filter.Role != "" {
		cond := fmt.Sprintf(" AND role = $%d", argIdx)
		query += cond
		countQuery += cond
		args = append(args, filter.Role)
		argIdx++
	}

	var total int
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count operators: %w", err)
	}

	query += " ORDER BY login ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query operators: %w", err)
	}
	defer rows.Close()

	var ops []auth.Operator
	for rows.Next() {
		op, err := scanOperator(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan operator: %w", err)
		}
		ops = append(ops, *op)
	}

	return ops, total, nil
}

// Exists checks if login is taken.
func (r *OperatorRepo) Exists(ctx context.Context, login string) (bool, error) {
	q := r.getTxManager(ctx).GetQuerier(ctx)

	query := `SELECT EXISTS(SELECT 1 FROM sys_operators WHERE login = $1 AND deleted_at IS NULL)`

	var exists bool
	if err := q.QueryRow(ctx, query, login).Scan(&exists); err != nil {
		return false, fmt.Errorf("check exists: %w", err)
	}

	return exists, nil
}

// Ensure interface compliance
var _ auth.OperatorRepository = (*OperatorRepo)(nil)
