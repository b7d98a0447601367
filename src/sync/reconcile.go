package sync

import (
	"context"
	"fmt"
	"log"

	"github.com/Chixide1/ZenWealth-sub001/src/models"
	"github.com/Chixide1/ZenWealth-sub001/src/store"
)

// Reconciler merges provider delta batches into the ledger store
// idempotently: re-applying the same batch yields the same store state.
type Reconciler struct {
	store store.LedgerStore
}

func NewReconciler(s store.LedgerStore) *Reconciler {
	return &Reconciler{store: s}
}

// Apply applies one delta batch inside one atomic unit of work and advances
// the connection's cursor to the batch's continuation cursor. If anything in
// the batch fails, nothing is applied and the cursor is left untouched, so
// the batch will be re-fetched. Returns the number of rows added, updated and
// removed.
func (r *Reconciler) Apply(ctx context.Context, conn *models.Connection, batch *models.DeltaBatch) (store.ApplyStats, error) {
	var stats store.ApplyStats

	err := r.store.ApplyDelta(ctx, conn.ID, func(tx store.DeltaTx) error {
		for _, entry := range batch.Added {
			created, err := r.upsert(ctx, tx, entry)
			if err != nil {
				return err
			}
			if created {
				stats.Added++
			} else {
				// Redelivered on a retry; overwriting mutable fields again is
				// a no-op.
				stats.Updated++
			}
		}

		for _, entry := range batch.Modified {
			created, err := r.upsert(ctx, tx, entry)
			if err != nil {
				return err
			}
			if created {
				// Upstream ordering between delta types is not guaranteed, so
				// a modification of an unseen transaction is an implicit add.
				log.Printf("INFO: Modified transaction %s not found, treating as add", entry.TransactionID)
				stats.Added++
			} else {
				stats.Updated++
			}
		}

		removed, err := tx.DeleteTransactions(ctx, batch.Removed)
		if err != nil {
			return err
		}
		stats.Removed += removed

		return tx.SetSyncCursor(ctx, batch.NextCursor)
	})
	if err != nil {
		return store.ApplyStats{}, err
	}

	conn.SyncCursor = batch.NextCursor
	return stats, nil
}

func (r *Reconciler) upsert(ctx context.Context, tx store.DeltaTx, entry models.DeltaEntry) (bool, error) {
	accountID, ok, err := tx.AccountRef(ctx, entry.AccountID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: transaction %s references account %s",
			store.ErrUnknownAccount, entry.TransactionID, entry.AccountID)
	}
	return tx.UpsertTransaction(ctx, accountID, entry)
}
