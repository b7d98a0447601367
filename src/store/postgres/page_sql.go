package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Chixide1/ZenWealth-sub001/src/ledger"
	"github.com/Chixide1/ZenWealth-sub001/src/models"
)

func (s *Store) PageTransactions(ctx context.Context, userID int64, q ledger.Query) ([]models.Transaction, error) {
	query, args := buildPageSQL(userID, q)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(
			&t.ID,
			&t.AccountID,
			&t.TransactionID,
			&t.Name,
			&t.Amount,
			&t.Date,
			&t.Category,
			&t.MerchantName,
			&t.Currency,
			&t.AccountName,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// buildPageSQL translates a page query into one bounded, totally-ordered
// SELECT. The cursor boundary is a row-constructor comparison on
// (sort key, id), which is exactly "key strictly beyond OR (key equal AND id
// strictly beyond)" and lets Postgres walk the matching (key, id) index.
func buildPageSQL(userID int64, q ledger.Query) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT t.id, t.account_id, t.transaction_id, t.name, t.amount, t.date, t.category, t.merchant_name, t.currency, a.name AS account_name, t.created_at, t.updated_at
		FROM transactions t
		JOIN accounts a ON t.account_id = a.id
		JOIN connections c ON a.connection_id = c.id
		WHERE c.user_id = $1`)
	args := []any{userID}

	next := func(arg any) string {
		args = append(args, arg)
		return fmt.Sprintf("$%d", len(args))
	}

	f := q.Filters
	if f.NamePrefix != "" {
		sb.WriteString(" AND t.name ILIKE " + next(f.NamePrefix+"%"))
	}
	if f.MinAmount != nil {
		sb.WriteString(" AND t.amount >= " + next(*f.MinAmount))
	}
	if f.MaxAmount != nil {
		sb.WriteString(" AND t.amount <= " + next(*f.MaxAmount))
	}
	if f.DateFrom != nil {
		sb.WriteString(" AND t.date >= " + next(*f.DateFrom))
	}
	if f.DateTo != nil {
		sb.WriteString(" AND t.date <= " + next(*f.DateTo))
	}
	if len(f.ExcludeCategories) > 0 {
		sb.WriteString(" AND t.category <> ALL(" + next(f.ExcludeCategories) + ")")
	}
	if len(f.ExcludeAccounts) > 0 {
		sb.WriteString(" AND a.name <> ALL(" + next(f.ExcludeAccounts) + ")")
	}

	sortCol := "t.date"
	var cursorKey any
	if q.After != nil {
		cursorKey = q.After.Date
	}
	switch q.Sort {
	case ledger.SortAmountAsc, ledger.SortAmountDesc:
		sortCol = "t.amount"
		if q.After != nil {
			cursorKey = q.After.Amount
		}
	}

	op, dir := ">", "ASC"
	switch q.Sort {
	case ledger.SortDateDesc, ledger.SortAmountDesc:
		op, dir = "<", "DESC"
	}

	if q.After != nil {
		sb.WriteString(fmt.Sprintf(" AND (%s, t.id) %s (%s, %s)", sortCol, op, next(cursorKey), next(q.After.ID)))
	}

	sb.WriteString(fmt.Sprintf(" ORDER BY %s %s, t.id %s", sortCol, dir, dir))
	sb.WriteString(" LIMIT " + next(q.Limit))

	return sb.String(), args
}
