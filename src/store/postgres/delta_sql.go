package postgres

import (
	"context"
	"errors"

	"github.com/Chixide1/ZenWealth-sub001/src/models"
	"github.com/Chixide1/ZenWealth-sub001/src/store"
	"github.com/jackc/pgx/v5"
)

// ApplyDelta runs fn inside one pgx transaction. The sync cursor written by
// fn only becomes visible if the whole batch commits, so a crash mid-batch is
// safe to retry from the old cursor.
func (s *Store) ApplyDelta(ctx context.Context, connectionID int64, fn func(store.DeltaTx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&deltaTx{tx: tx, connectionID: connectionID}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type deltaTx struct {
	tx           pgx.Tx
	connectionID int64
}

func (d *deltaTx) AccountRef(ctx context.Context, externalAccountID string) (int64, bool, error) {
	query := `SELECT id FROM accounts WHERE connection_id = $1 AND account_id = $2`

	var id int64
	err := d.tx.QueryRow(ctx, query, d.connectionID, externalAccountID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (d *deltaTx) UpsertTransaction(ctx context.Context, accountID int64, e models.DeltaEntry) (bool, error) {
	// The external transaction id is the idempotency key: on conflict only
	// mutable fields are overwritten, never the id itself. The account
	// linkage may move because providers occasionally re-master accounts.
	query := `
		INSERT INTO transactions (account_id, transaction_id, name, amount, date, category, merchant_name, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (transaction_id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			name = EXCLUDED.name,
			amount = EXCLUDED.amount,
			date = EXCLUDED.date,
			category = EXCLUDED.category,
			merchant_name = EXCLUDED.merchant_name,
			currency = EXCLUDED.currency,
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted
	`
	var inserted bool
	err := d.tx.QueryRow(ctx, query,
		accountID,
		e.TransactionID,
		e.Name,
		e.Amount,
		e.Date,
		e.Category,
		e.MerchantName,
		e.Currency,
	).Scan(&inserted)
	if err != nil {
		return false, err
	}
	return inserted, nil
}

func (d *deltaTx) DeleteTransactions(ctx context.Context, externalIDs []string) (int, error) {
	if len(externalIDs) == 0 {
		return 0, nil
	}
	query := `
		DELETE FROM transactions t
		USING accounts a
		WHERE t.account_id = a.id AND a.connection_id = $1 AND t.transaction_id = ANY($2)
	`
	cmd, err := d.tx.Exec(ctx, query, d.connectionID, externalIDs)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func (d *deltaTx) SetSyncCursor(ctx context.Context, cursor string) error {
	query := `UPDATE connections SET sync_cursor = $1 WHERE id = $2`
	_, err := d.tx.Exec(ctx, query, cursor, d.connectionID)
	return err
}
