package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tillbook/internal/core/id"
	"tillbook/internal/domain"
	"tillbook/internal/domain/documents/transaction"
	"tillbook/internal/infrastructure/storage/postgres"
)

const (
	transactionsTable     = "doc_transactions"
	transactionLinesTable = "doc_transaction_lines"
)

// TransactionRepo implements transaction.Repository.
type TransactionRepo struct {
	*BaseDocumentRepo[*transaction.Transaction]
}

// NewTransactionRepo creates a new transaction repository.
func NewTransactionRepo(txm *postgres.TxManager) *TransactionRepo {
	return &TransactionRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*transaction.Transaction](
			txm,
			transactionsTable,
			postgres.ExtractDBColumns[transaction.Transaction](),
			func() *transaction.Transaction { return &transaction.Transaction{} },
		),
	}
}

var transactionLineCols = []string{
	"line_id", "line_no", "product_id", "product_ref", "product_name",
	"unit_price", "quantity", "discount_rate", "amount", "original_sale_code",
}

func (r *TransactionRepo) GetLines(ctx context.Context, docID id.ID) ([]transaction.Line, error) {
	q := r.Builder().
		Select(transactionLineCols...).
		From(transactionLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []transaction.Line
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

func (r *TransactionRepo) SaveLines(ctx context.Context, docID id.ID, lines []transaction.Line) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + transactionLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(transactionLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "product_id", "product_ref", "product_name",
			"unit_price", "quantity", "discount_rate", "amount", "original_sale_code",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ProductID, line.ProductRef, line.ProductName,
			line.UnitPrice, line.Quantity, line.DiscountRate, line.Amount, line.OriginalSaleCode,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

func (r *TransactionRepo) List(ctx context.Context, filter transaction.ListFilter) (domain.ListResult[*transaction.Transaction], error) {
	result := domain.ListResult[*transaction.Transaction]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect(ctx)

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"code": "%" + filter.Search + "%"})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy := "date DESC"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	q = q.OrderBy(orderBy)

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}

// ListByCustomer returns the customer's posted transactions with lines,
// ordered by (date, id). Documents marked for deletion are excluded so the
// ledger never counts a voided payment.
func (r *TransactionRepo) ListByCustomer(ctx context.Context, customerID id.ID) ([]*transaction.Transaction, error) {
	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"customer_id": customerID}).
		Where(squirrel.Eq{"posted": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("date ASC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var docs []*transaction.Transaction
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &docs, sql, args...); err != nil {
		return nil, fmt.Errorf("list by customer: %w", err)
	}

	return docs, r.loadLines(ctx, docs)
}

// ListReturnsForSale returns posted return documents with at least one line
// referencing the given sale code, lines included.
func (r *TransactionRepo) ListReturnsForSale(ctx context.Context, saleCode string) ([]*transaction.Transaction, error) {
	sub := fmt.Sprintf(
		"id IN (SELECT document_id FROM %s WHERE original_sale_code = ?)",
		transactionLinesTable,
	)

	q := r.baseSelect(ctx).
		Where(squirrel.Eq{"kind": transaction.KindReturn}).
		Where(squirrel.Eq{"posted": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.Expr(sub, saleCode)).
		OrderBy("date ASC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var docs []*transaction.Transaction
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &docs, sql, args...); err != nil {
		return nil, fmt.Errorf("list returns for sale: %w", err)
	}

	return docs, r.loadLines(ctx, docs)
}

// loadLines fetches lines for every document in one query and attaches them.
func (r *TransactionRepo) loadLines(ctx context.Context, docs []*transaction.Transaction) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]id.ID, 0, len(docs))
	byID := make(map[id.ID]*transaction.Transaction, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
		byID[doc.ID] = doc
	}

	cols := append([]string{"document_id"}, transactionLineCols...)
	q := r.Builder().
		Select(cols...).
		From(transactionLinesTable).
		Where(squirrel.Eq{"document_id": ids}).
		OrderBy("document_id", "line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build lines query: %w", err)
	}

	type lineRow struct {
		DocumentID id.ID `db:"document_id"`
		transaction.Line
	}

	var rows []lineRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return fmt.Errorf("load lines: %w", err)
	}

	for _, row := range rows {
		doc := byID[row.DocumentID]
		if doc != nil {
			doc.Lines = append(doc.Lines, row.Line)
		}
	}

	return nil
}
