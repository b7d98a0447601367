package postgres

import (
	"testing"
	"time"

	"github.com/Chixide1/ZenWealth-sub001/src/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPageSQLDefaultOrdering(t *testing.T) {
	sql, args := buildPageSQL(7, ledger.Query{Sort: ledger.SortDateDesc, Limit: 26})

	assert.Contains(t, sql, "WHERE c.user_id = $1")
	assert.Contains(t, sql, "ORDER BY t.date DESC, t.id DESC")
	assert.Contains(t, sql, "LIMIT $2")
	assert.NotContains(t, sql, "(t.date, t.id)")
	require.Equal(t, []any{int64(7), 26}, args)
}

func TestBuildPageSQLCursorBoundaryFollowsDirection(t *testing.T) {
	after := &ledger.Cursor{ID: 42, Date: "2024-01-05", Sort: ledger.SortDateDesc}
	sql, args := buildPageSQL(7, ledger.Query{Sort: ledger.SortDateDesc, After: after, Limit: 26})

	assert.Contains(t, sql, "AND (t.date, t.id) < ($2, $3)")
	assert.Contains(t, sql, "ORDER BY t.date DESC, t.id DESC")
	require.Equal(t, []any{int64(7), "2024-01-05", int64(42), 26}, args)

	after = &ledger.Cursor{ID: 42, Date: "2024-01-05", Sort: ledger.SortDateAsc}
	sql, _ = buildPageSQL(7, ledger.Query{Sort: ledger.SortDateAsc, After: after, Limit: 26})

	assert.Contains(t, sql, "AND (t.date, t.id) > ($2, $3)")
	assert.Contains(t, sql, "ORDER BY t.date ASC, t.id ASC")
}

func TestBuildPageSQLAmountSortSwitchesKey(t *testing.T) {
	after := &ledger.Cursor{ID: 9, Amount: 12.5, Sort: ledger.SortAmountAsc}
	sql, args := buildPageSQL(1, ledger.Query{Sort: ledger.SortAmountAsc, After: after, Limit: 11})

	assert.Contains(t, sql, "AND (t.amount, t.id) > ($2, $3)")
	assert.Contains(t, sql, "ORDER BY t.amount ASC, t.id ASC")
	assert.NotContains(t, sql, "t.date DESC")
	require.Equal(t, []any{int64(1), 12.5, int64(9), 11}, args)

	after.Sort = ledger.SortAmountDesc
	sql, _ = buildPageSQL(1, ledger.Query{Sort: ledger.SortAmountDesc, After: after, Limit: 11})
	assert.Contains(t, sql, "AND (t.amount, t.id) < ($2, $3)")
	assert.Contains(t, sql, "ORDER BY t.amount DESC, t.id DESC")
}

func TestBuildPageSQLFilterPlaceholders(t *testing.T) {
	min, max := 10.0, 500.0
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	q := ledger.Query{
		Sort: ledger.SortDateDesc,
		Filters: ledger.Filters{
			NamePrefix:        "star",
			MinAmount:         &min,
			MaxAmount:         &max,
			DateFrom:          &from,
			DateTo:            &to,
			ExcludeCategories: []string{"TRANSFER_IN", "TRANSFER_OUT"},
			ExcludeAccounts:   []string{"Savings"},
		},
		After: &ledger.Cursor{ID: 3, Date: "2024-03-01", Sort: ledger.SortDateDesc},
		Limit: 26,
	}
	sql, args := buildPageSQL(7, q)

	assert.Contains(t, sql, "t.name ILIKE $2")
	assert.Contains(t, sql, "t.amount >= $3")
	assert.Contains(t, sql, "t.amount <= $4")
	assert.Contains(t, sql, "t.date >= $5")
	assert.Contains(t, sql, "t.date <= $6")
	assert.Contains(t, sql, "t.category <> ALL($7)")
	assert.Contains(t, sql, "a.name <> ALL($8)")
	assert.Contains(t, sql, "AND (t.date, t.id) < ($9, $10)")
	assert.Contains(t, sql, "LIMIT $11")

	require.Len(t, args, 11)
	assert.Equal(t, "star%", args[1])
	assert.Equal(t, []string{"TRANSFER_IN", "TRANSFER_OUT"}, args[6])
	assert.Equal(t, "2024-03-01", args[8])
	assert.Equal(t, int64(3), args[9])
	assert.Equal(t, 26, args[10])
}
