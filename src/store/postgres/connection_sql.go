package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Chixide1/ZenWealth-sub001/src/models"
	"github.com/Chixide1/ZenWealth-sub001/src/store"
	"github.com/jackc/pgx/v5"
)

const connectionColumns = `id, user_id, access_token, item_id, institution_id, institution_name, COALESCE(sync_cursor, ''), last_synced_at, status, created_at`

func scanConnection(row pgx.Row, conn *models.Connection) error {
	return row.Scan(
		&conn.ID,
		&conn.UserID,
		&conn.AccessToken,
		&conn.ItemID,
		&conn.InstitutionID,
		&conn.InstitutionName,
		&conn.SyncCursor,
		&conn.LastSyncedAt,
		&conn.Status,
		&conn.CreatedAt,
	)
}

func (s *Store) SaveConnection(ctx context.Context, conn *models.Connection) error {
	query := `
		INSERT INTO connections (user_id, access_token, item_id, institution_id, institution_name, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (item_id) DO NOTHING
		RETURNING id, created_at
	`
	err := s.pool.QueryRow(ctx, query,
		conn.UserID,
		conn.AccessToken,
		conn.ItemID,
		conn.InstitutionID,
		conn.InstitutionName,
		models.ConnectionActive,
	).Scan(&conn.ID, &conn.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Already linked; re-linking hands back the existing row.
		existing, lookErr := s.ConnectionByItemID(ctx, conn.ItemID)
		if lookErr != nil {
			return fmt.Errorf("save connection: %w", lookErr)
		}
		*conn = *existing
		return nil
	}
	if err != nil {
		return fmt.Errorf("save connection: %w", err)
	}
	conn.Status = models.ConnectionActive
	return nil
}

func (s *Store) ConnectionsForUser(ctx context.Context, userID int64) ([]models.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE user_id = $1 ORDER BY id`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []models.Connection
	for rows.Next() {
		var conn models.Connection
		if err := scanConnection(rows, &conn); err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}
	return conns, rows.Err()
}

func (s *Store) ConnectionByItemID(ctx context.Context, itemID string) (*models.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE item_id = $1`

	var conn models.Connection
	err := scanConnection(s.pool.QueryRow(ctx, query, itemID), &conn)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (s *Store) EligibleConnections(ctx context.Context, userID int64, syncedBefore time.Time) ([]models.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE user_id = $1 AND (last_synced_at IS NULL OR last_synced_at < $2)
		ORDER BY id
	`
	rows, err := s.pool.Query(ctx, query, userID, syncedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []models.Connection
	for rows.Next() {
		var conn models.Connection
		if err := scanConnection(rows, &conn); err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}
	return conns, rows.Err()
}

func (s *Store) DeleteConnection(ctx context.Context, userID, connectionID int64) error {
	// Accounts and transactions cascade with the connection row.
	query := `DELETE FROM connections WHERE id = $1 AND user_id = $2`
	cmd, err := s.pool.Exec(ctx, query, connectionID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) MarkConnectionStatus(ctx context.Context, connectionID int64, status string) error {
	query := `UPDATE connections SET status = $1 WHERE id = $2`
	_, err := s.pool.Exec(ctx, query, status, connectionID)
	return err
}

func (s *Store) TouchLastSynced(ctx context.Context, connectionID int64, at time.Time) error {
	query := `UPDATE connections SET last_synced_at = $1 WHERE id = $2`
	_, err := s.pool.Exec(ctx, query, at, connectionID)
	return err
}
