package store

import (
	"context"
	"errors"
	"time"

	"github.com/Chixide1/ZenWealth-sub001/src/ledger"
	"github.com/Chixide1/ZenWealth-sub001/src/models"
)

// ErrUnknownAccount is a data-integrity fault: a delta entry references an
// account id the connection has never reported. The whole batch is rejected
// so it can be re-fetched from the unchanged cursor.
var ErrUnknownAccount = errors.New("transaction references unknown account")

var ErrNotFound = errors.New("not found")

// ApplyStats counts the rows a delta batch touched.
type ApplyStats struct {
	Added   int
	Updated int
	Removed int
}

func (s ApplyStats) Total() int {
	return s.Added + s.Updated + s.Removed
}

// DeltaTx is the atomic unit of work one delta batch is applied in. All of
// its operations are scoped to the connection passed to ApplyDelta and either
// commit together or not at all, cursor advancement included.
type DeltaTx interface {
	// AccountRef resolves the provider's account id to the local row id.
	AccountRef(ctx context.Context, externalAccountID string) (int64, bool, error)
	// UpsertTransaction inserts by external transaction id or, if the id is
	// already stored, overwrites the mutable fields only. Redelivery safe.
	UpsertTransaction(ctx context.Context, accountID int64, e models.DeltaEntry) (created bool, err error)
	// DeleteTransactions hard-deletes by external id; missing ids are not an
	// error. Returns the number of rows actually removed.
	DeleteTransactions(ctx context.Context, externalIDs []string) (int, error)
	// SetSyncCursor advances the connection's cursor; it only takes effect if
	// the whole batch commits.
	SetSyncCursor(ctx context.Context, cursor string) error
}

// LedgerStore is the persistence layer for connections, accounts and the
// transaction ledger.
type LedgerStore interface {
	SaveConnection(ctx context.Context, conn *models.Connection) error
	ConnectionsForUser(ctx context.Context, userID int64) ([]models.Connection, error)
	ConnectionByItemID(ctx context.Context, itemID string) (*models.Connection, error)
	// EligibleConnections returns the user's connections that have never been
	// synced or were last synced before the given instant.
	EligibleConnections(ctx context.Context, userID int64, syncedBefore time.Time) ([]models.Connection, error)
	DeleteConnection(ctx context.Context, userID, connectionID int64) error
	MarkConnectionStatus(ctx context.Context, connectionID int64, status string) error
	TouchLastSynced(ctx context.Context, connectionID int64, at time.Time) error

	// UpsertAccounts applies a fresh snapshot: unseen accounts are inserted,
	// known accounts have their balances overwritten unless the snapshot's
	// current balance is null, which must never clobber a stored balance.
	UpsertAccounts(ctx context.Context, connectionID int64, snapshot []models.AccountSnapshot) (int, error)
	AccountsForConnection(ctx context.Context, userID, connectionID int64) ([]models.Account, error)

	// ApplyDelta runs fn inside one atomic unit of work scoped to the
	// connection. If fn returns an error nothing is applied.
	ApplyDelta(ctx context.Context, connectionID int64, fn func(DeltaTx) error) error

	// PageTransactions serves the keyset pagination engine's bounded read.
	PageTransactions(ctx context.Context, userID int64, q ledger.Query) ([]models.Transaction, error)
}
