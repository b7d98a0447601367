package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/Chixide1/ZenWealth-sub001/src/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	lastQuery Query
	rows      []models.Transaction
}

func (s *stubStore) PageTransactions(ctx context.Context, userID int64, q Query) ([]models.Transaction, error) {
	s.lastQuery = q
	if q.Limit < len(s.rows) {
		return s.rows[:q.Limit], nil
	}
	return s.rows, nil
}

func txnRows(n int) []models.Transaction {
	rows := make([]models.Transaction, n)
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range rows {
		rows[i] = models.Transaction{ID: int64(n - i), Date: date}
	}
	return rows
}

func TestPagerFetchesOneExtraRow(t *testing.T) {
	stub := &stubStore{rows: txnRows(10)}
	pager := NewPager(stub, 25, 100)

	page, err := pager.Page(context.Background(), 1, Filters{}, SortDateDesc, "", 3)
	require.NoError(t, err)

	assert.Equal(t, 4, stub.lastQuery.Limit)
	assert.Len(t, page.Items, 3)
	require.NotEmpty(t, page.NextCursor)

	// The cursor points at the last row actually returned, not the probe row.
	decoded := DecodeCursor(page.NextCursor, SortDateDesc)
	require.NotNil(t, decoded)
	assert.Equal(t, page.Items[2].ID, decoded.ID)
}

func TestPagerNoCursorOnFinalPage(t *testing.T) {
	stub := &stubStore{rows: txnRows(2)}
	pager := NewPager(stub, 25, 100)

	page, err := pager.Page(context.Background(), 1, Filters{}, SortDateDesc, "", 3)
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.Empty(t, page.NextCursor)
}

func TestPagerClampsPageSize(t *testing.T) {
	stub := &stubStore{}
	pager := NewPager(stub, 25, 100)

	_, err := pager.Page(context.Background(), 1, Filters{}, SortDateDesc, "", 0)
	require.NoError(t, err)
	assert.Equal(t, 26, stub.lastQuery.Limit, "zero size falls back to the default")

	_, err = pager.Page(context.Background(), 1, Filters{}, SortDateDesc, "", 5000)
	require.NoError(t, err)
	assert.Equal(t, 101, stub.lastQuery.Limit, "oversized requests clamp to the maximum")
}

func TestPagerEmptyLedger(t *testing.T) {
	stub := &stubStore{}
	pager := NewPager(stub, 25, 100)

	page, err := pager.Page(context.Background(), 1, Filters{}, SortAmountAsc, "", 10)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Empty(t, page.NextCursor)
}
