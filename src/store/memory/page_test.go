package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Chixide1/ZenWealth-sub001/src/ledger"
	"github.com/Chixide1/ZenWealth-sub001/src/models"
	"github.com/Chixide1/ZenWealth-sub001/src/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, s *Store, entries ...models.DeltaEntry) *models.Connection {
	t.Helper()
	ctx := context.Background()

	conn := &models.Connection{UserID: 1, AccessToken: "token", ItemID: "item-1"}
	require.NoError(t, s.SaveConnection(ctx, conn))

	seen := map[string]bool{}
	var snapshot []models.AccountSnapshot
	for _, e := range entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			snapshot = append(snapshot, models.AccountSnapshot{AccountID: e.AccountID, Name: "Account " + e.AccountID})
		}
	}
	_, err := s.UpsertAccounts(ctx, conn.ID, snapshot)
	require.NoError(t, err)

	require.NoError(t, s.ApplyDelta(ctx, conn.ID, func(tx store.DeltaTx) error {
		for _, e := range entries {
			accountID, ok, err := tx.AccountRef(ctx, e.AccountID)
			if err != nil || !ok {
				t.Fatalf("account %s not seeded", e.AccountID)
			}
			if _, err := tx.UpsertTransaction(ctx, accountID, e); err != nil {
				return err
			}
		}
		return tx.SetSyncCursor(ctx, "seeded")
	}))
	return conn
}

// Ties on the primary sort key break by id in the same direction as the sort,
// so a page boundary inside a tie run does not drop or repeat rows.
func TestPageTieBreakOnSharedDate(t *testing.T) {
	s := New()
	s.nextTransactionID = 9 // rows get ids 10, 11, 12 in insert order
	seed(t, s,
		models.DeltaEntry{TransactionID: "t10", AccountID: "a1", Amount: 1, Date: date(5)},
		models.DeltaEntry{TransactionID: "t11", AccountID: "a1", Amount: 2, Date: date(5)},
		models.DeltaEntry{TransactionID: "t12", AccountID: "a1", Amount: 3, Date: date(3)},
	)
	pager := ledger.NewPager(s, 25, 100)

	first, err := pager.Page(context.Background(), 1, ledger.Filters{}, ledger.SortDateDesc, "", 2)
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	assert.Equal(t, int64(11), first.Items[0].ID)
	assert.Equal(t, int64(10), first.Items[1].ID)
	require.NotEmpty(t, first.NextCursor)

	second, err := pager.Page(context.Background(), 1, ledger.Filters{}, ledger.SortDateDesc, first.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, int64(12), second.Items[0].ID)
	assert.Empty(t, second.NextCursor)
}

// Iterating full pages from an empty cursor must yield every row exactly
// once, in order, for every sort mode, even with heavy sort-key ties.
func TestKeysetTotalityAllSortModes(t *testing.T) {
	s := New()
	var entries []models.DeltaEntry
	for i := 0; i < 17; i++ {
		entries = append(entries, models.DeltaEntry{
			TransactionID: fmt.Sprintf("t%d", i),
			AccountID:     "a1",
			Name:          fmt.Sprintf("Txn %d", i),
			Amount:        float64(i % 3), // many amount ties
			Date:          date(1 + i%4), // many date ties
		})
	}
	seed(t, s, entries...)
	pager := ledger.NewPager(s, 25, 100)

	for _, mode := range []ledger.SortMode{
		ledger.SortDateDesc, ledger.SortDateAsc, ledger.SortAmountAsc, ledger.SortAmountDesc,
	} {
		t.Run(string(mode), func(t *testing.T) {
			var collected []models.Transaction
			cursor := ""
			for pages := 0; ; pages++ {
				require.Less(t, pages, 10, "pagination must terminate")
				page, err := pager.Page(context.Background(), 1, ledger.Filters{}, mode, cursor, 4)
				require.NoError(t, err)
				collected = append(collected, page.Items...)
				if page.NextCursor == "" {
					break
				}
				cursor = page.NextCursor
			}

			require.Len(t, collected, len(entries), "every row exactly once")
			seenIDs := map[int64]bool{}
			for i := range collected {
				assert.False(t, seenIDs[collected[i].ID], "duplicate id %d", collected[i].ID)
				seenIDs[collected[i].ID] = true
				if i > 0 {
					assert.True(t, ledger.Less(mode, &collected[i-1], &collected[i]),
						"rows out of order at index %d", i)
				}
			}
		})
	}
}

func TestPageFiltersNarrowBeforeOrdering(t *testing.T) {
	s := New()
	seed(t, s,
		models.DeltaEntry{TransactionID: "t1", AccountID: "a1", Name: "Starbucks", Amount: 5, Date: date(1), Category: "FOOD_AND_DRINK"},
		models.DeltaEntry{TransactionID: "t2", AccountID: "a1", Name: "Steam", Amount: 60, Date: date(2), Category: "ENTERTAINMENT"},
		models.DeltaEntry{TransactionID: "t3", AccountID: "a2", Name: "Starlink", Amount: 120, Date: date(3), Category: "UTILITIES"},
	)
	pager := ledger.NewPager(s, 25, 100)

	page, err := pager.Page(context.Background(), 1, ledger.Filters{NamePrefix: "sta"}, ledger.SortDateAsc, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Starbucks", page.Items[0].Name)
	assert.Equal(t, "Starlink", page.Items[1].Name)

	max := 100.0
	page, err = pager.Page(context.Background(), 1, ledger.Filters{MaxAmount: &max}, ledger.SortAmountDesc, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 60.0, page.Items[0].Amount)

	page, err = pager.Page(context.Background(), 1, ledger.Filters{ExcludeCategories: []string{"ENTERTAINMENT"}}, ledger.SortDateAsc, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	page, err = pager.Page(context.Background(), 1, ledger.Filters{ExcludeAccounts: []string{"Account a2"}}, ledger.SortDateAsc, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	for _, item := range page.Items {
		assert.Equal(t, "Account a1", item.AccountName)
	}
}

func TestMalformedCursorServesFirstPage(t *testing.T) {
	s := New()
	seed(t, s,
		models.DeltaEntry{TransactionID: "t1", AccountID: "a1", Amount: 1, Date: date(1)},
		models.DeltaEntry{TransactionID: "t2", AccountID: "a1", Amount: 2, Date: date(2)},
	)
	pager := ledger.NewPager(s, 25, 100)

	fresh, err := pager.Page(context.Background(), 1, ledger.Filters{}, ledger.SortDateDesc, "", 10)
	require.NoError(t, err)
	garbled, err := pager.Page(context.Background(), 1, ledger.Filters{}, ledger.SortDateDesc, "!!not-a-cursor!!", 10)
	require.NoError(t, err)

	assert.Equal(t, fresh.Items, garbled.Items)
}

func TestPageScopedToUser(t *testing.T) {
	s := New()
	seed(t, s, models.DeltaEntry{TransactionID: "t1", AccountID: "a1", Amount: 1, Date: date(1)})

	other := &models.Connection{UserID: 2, AccessToken: "token2", ItemID: "item-2"}
	require.NoError(t, s.SaveConnection(context.Background(), other))

	rows, err := s.PageTransactions(context.Background(), 2, ledger.Query{Sort: ledger.SortDateDesc, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
