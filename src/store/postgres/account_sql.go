package postgres

import (
	"context"
	"errors"
	"log"

	"github.com/Chixide1/ZenWealth-sub001/src/models"
	"github.com/jackc/pgx/v5"
)

func (s *Store) UpsertAccounts(ctx context.Context, connectionID int64, snapshot []models.AccountSnapshot) (int, error) {
	upserted := 0
	for _, acc := range snapshot {
		var existingID int64
		var hasBalance bool
		err := s.pool.QueryRow(ctx,
			`SELECT id, current_balance IS NOT NULL FROM accounts WHERE connection_id = $1 AND account_id = $2`,
			connectionID, acc.AccountID,
		).Scan(&existingID, &hasBalance)

		if errors.Is(err, pgx.ErrNoRows) {
			// Not seen before: insert.
			query := `
				INSERT INTO accounts (connection_id, account_id, name, official_name, mask, type, subtype, current_balance, available_balance)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (connection_id, account_id) DO NOTHING
			`
			if _, err := s.pool.Exec(ctx, query,
				connectionID,
				acc.AccountID,
				acc.Name,
				acc.OfficialName,
				acc.Mask,
				acc.Type,
				acc.Subtype,
				acc.CurrentBalance,
				acc.AvailableBalance,
			); err != nil {
				return upserted, err
			}
			upserted++
			continue
		}
		if err != nil {
			return upserted, err
		}

		if acc.CurrentBalance == nil && hasBalance {
			// A null upstream balance must never clobber a known good one.
			log.Printf("WARN: Skipping balance update for account %s: snapshot has no current balance", acc.AccountID)
			continue
		}

		query := `
			UPDATE accounts
			SET name = $1, official_name = $2, current_balance = $3, available_balance = $4, updated_at = NOW()
			WHERE id = $5
		`
		if _, err := s.pool.Exec(ctx, query,
			acc.Name,
			acc.OfficialName,
			acc.CurrentBalance,
			acc.AvailableBalance,
			existingID,
		); err != nil {
			return upserted, err
		}
		upserted++
	}
	return upserted, nil
}

func (s *Store) AccountsForConnection(ctx context.Context, userID, connectionID int64) ([]models.Account, error) {
	query := `
		SELECT a.id, a.connection_id, a.account_id, a.name, a.official_name, a.mask, a.type, a.subtype, a.current_balance, a.available_balance, a.created_at
		FROM accounts a
		JOIN connections c ON a.connection_id = c.id
		WHERE c.user_id = $1 AND c.id = $2
		ORDER BY a.id
	`
	rows, err := s.pool.Query(ctx, query, userID, connectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(
			&account.ID,
			&account.ConnectionID,
			&account.AccountID,
			&account.Name,
			&account.OfficialName,
			&account.Mask,
			&account.Type,
			&account.Subtype,
			&account.CurrentBalance,
			&account.AvailableBalance,
			&account.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}
