// Package register_repo provides PostgreSQL implementations for register repositories.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tillbook/internal/core/entity"
	"tillbook/internal/core/id"
	"tillbook/internal/domain/registers/returns"
	"tillbook/internal/infrastructure/storage/postgres"
)

const (
	returnMovementsTable = "reg_return_movements"
	returnBalancesTable  = "reg_return_balances"
)

// ReturnsRepo implements returns.Repository.
type ReturnsRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewReturnsRepo creates a new returns register repository.
func NewReturnsRepo(txm *postgres.TxManager) *ReturnsRepo {
	return &ReturnsRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *ReturnsRepo) getTxManager(ctx context.Context) *postgres.TxManager {
	return r.txm
}

var returnMovementCols = []string{
	"line_id", "recorder_id", "recorder_type", "recorder_version",
	"period", "record_type",
	"sale_code", "product_ref", "quantity", "created_at",
}

// CreateMovements batch inserts movements and applies them to the balance
// table. Must run inside the posting transaction.
func (r *ReturnsRepo) CreateMovements(ctx context.Context, movements []entity.ReturnMovement) error {
	if len(movements) == 0 {
		return nil
	}

	txm := r.getTxManager(ctx)

	// Fast path: COPY when inside a transaction.
	if tx := txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(txm)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
				m.Period, m.RecordType,
				m.SaleCode, m.ProductRef, m.Quantity, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, returnMovementsTable, returnMovementCols, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return r.applyToBalances(ctx, movements, 1)
	}

	q := r.builder.Insert(returnMovementsTable).Columns(returnMovementCols...)
	for _, m := range movements {
		q = q.Values(
			m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
			m.Period, m.RecordType,
			m.SaleCode, m.ProductRef, m.Quantity, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return r.applyToBalances(ctx, movements, 1)
}

// DeleteMovementsByRecorder removes movements for a document version and
// backs them out of the balance table.
func (r *ReturnsRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	// Read what is about to be deleted so balances can be adjusted.
	selQ := r.builder.Select(returnMovementCols...).
		From(returnMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		Where(squirrel.Lt{"recorder_version": beforeVersion})

	selSQL, selArgs, err := selQ.ToSql()
	if err != nil {
		return fmt.Errorf("build select: %w", err)
	}

	var removed []entity.ReturnMovement
	if err := pgxscan.Select(ctx, querier, &removed, selSQL, selArgs...); err != nil {
		return fmt.Errorf("select movements: %w", err)
	}
	if len(removed) == 0 {
		return nil
	}

	delQ := r.builder.Delete(returnMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		Where(squirrel.Lt{"recorder_version": beforeVersion})

	delSQL, delArgs, err := delQ.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := querier.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	return r.applyToBalances(ctx, removed, -1)
}

// applyToBalances upserts the aggregated movement quantities into the
// balance table. sign is +1 for recording, -1 for reversal.
func (r *ReturnsRepo) applyToBalances(ctx context.Context, movements []entity.ReturnMovement, sign int64) error {
	type key struct{ saleCode, productRef string }
	deltas := make(map[key]int64, len(movements))
	order := make([]key, 0, len(movements))
	for _, m := range movements {
		k := key{m.SaleCode, m.ProductRef}
		if _, ok := deltas[k]; !ok {
			order = append(order, k)
		}
		deltas[k] += sign * int64(m.Quantity)
	}

	sql := `
		INSERT INTO reg_return_balances (sale_code, product_ref, quantity, last_movement_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (sale_code, product_ref) DO UPDATE
		SET quantity = reg_return_balances.quantity + EXCLUDED.quantity,
		    last_movement_at = NOW(),
		    updated_at = NOW()
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	for _, k := range order {
		if deltas[k] == 0 {
			continue
		}
		if _, err := querier.Exec(ctx, sql, k.saleCode, k.productRef, deltas[k]); err != nil {
			return fmt.Errorf("apply balance %s/%s: %w", k.saleCode, k.productRef, err)
		}
	}

	return nil
}

// GetMovementsByRecorder retrieves movements for a document.
func (r *ReturnsRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.ReturnMovement, error) {
	q := r.builder.Select(returnMovementCols...).
		From(returnMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.ReturnMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// GetBalance returns the returned quantity for one sale line key.
func (r *ReturnsRepo) GetBalance(ctx context.Context, saleCode, productRef string) (entity.ReturnBalance, error) {
	var balance entity.ReturnBalance

	q := r.builder.Select(
		"sale_code", "product_ref",
		"quantity", "last_movement_at", "updated_at",
	).From(returnBalancesTable).
		Where(squirrel.Eq{
			"sale_code":   saleCode,
			"product_ref": productRef,
		}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return balance, fmt.Errorf("build query: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity.ReturnBalance{
				SaleCode:   saleCode,
				ProductRef: productRef,
				Quantity:   0,
			}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalanceForUpdate returns the balance with a pessimistic lock.
// A zero row is materialized first so that two concurrent first returns on
// the same key still serialize on the row lock.
func (r *ReturnsRepo) GetBalanceForUpdate(ctx context.Context, saleCode, productRef string) (entity.ReturnBalance, error) {
	var balance entity.ReturnBalance

	querier := r.getTxManager(ctx).GetQuerier(ctx)

	seedSQL := `
		INSERT INTO reg_return_balances (sale_code, product_ref, quantity, updated_at)
		VALUES ($1, $2, 0, NOW())
		ON CONFLICT (sale_code, product_ref) DO NOTHING
	`
	if _, err := querier.Exec(ctx, seedSQL, saleCode, productRef); err != nil {
		return balance, fmt.Errorf("seed balance row: %w", err)
	}

	sql := `
		SELECT sale_code, product_ref, quantity, last_movement_at, updated_at
		FROM reg_return_balances
		WHERE sale_code = $1 AND product_ref = $2
		FOR UPDATE
	`

	if err := pgxscan.Get(ctx, querier, &balance, sql, saleCode, productRef); err != nil {
		return balance, fmt.Errorf("get balance for update: %w", err)
	}

	return balance, nil
}

// GetBalancesBySale returns all returned quantities against one sale.
func (r *ReturnsRepo) GetBalancesBySale(ctx context.Context, saleCode string) ([]entity.ReturnBalance, error) {
	q := r.builder.Select(
		"sale_code", "product_ref",
		"quantity", "last_movement_at", "updated_at",
	).From(returnBalancesTable).
		Where(squirrel.Eq{"sale_code": saleCode}).
		Where(squirrel.NotEq{"quantity": int64(0)}).
		OrderBy("product_ref")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.ReturnBalance
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// RecalculateBalances rebuilds the balance table from movements, for one
// sale or for everything. The integrity worker runs the full rebuild.
func (r *ReturnsRepo) RecalculateBalances(ctx context.Context, saleCode *string) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	scope := ""
	args := []any{}
	if saleCode != nil {
		scope = "WHERE sale_code = $1"
		args = append(args, *saleCode)
	}

	deleteSQL := fmt.Sprintf("DELETE FROM reg_return_balances %s", scope)
	if _, err := querier.Exec(ctx, deleteSQL, args...); err != nil {
		return fmt.Errorf("clear balances: %w", err)
	}

	rebuildSQL := fmt.Sprintf(`
		INSERT INTO reg_return_balances (sale_code, product_ref, quantity, last_movement_at, updated_at)
		SELECT sale_code, product_ref, SUM(quantity), MAX(period), NOW()
		FROM reg_return_movements
		%s
		GROUP BY sale_code, product_ref
	`, scope)
	if _, err := querier.Exec(ctx, rebuildSQL, args...); err != nil {
		return fmt.Errorf("rebuild balances: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ returns.Repository = (*ReturnsRepo)(nil)
