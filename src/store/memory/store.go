// Package memory implements store.LedgerStore entirely in process. It backs
// the test suite and local development without a database; semantics mirror
// the postgres implementation, including atomic batch application.
package memory

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Chixide1/ZenWealth-sub001/src/models"
	"github.com/Chixide1/ZenWealth-sub001/src/store"
)

type Store struct {
	mu sync.RWMutex

	nextConnectionID  int64
	nextAccountID     int64
	nextTransactionID int64

	connections  map[int64]*models.Connection
	accounts     map[int64]*models.Account
	transactions map[int64]*models.Transaction
	byExternalID map[string]int64 // external transaction id -> local id
}

func New() *Store {
	return &Store{
		connections:  make(map[int64]*models.Connection),
		accounts:     make(map[int64]*models.Account),
		transactions: make(map[int64]*models.Transaction),
		byExternalID: make(map[string]int64),
	}
}

func (s *Store) SaveConnection(ctx context.Context, conn *models.Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.connections {
		if existing.ItemID == conn.ItemID {
			*conn = *existing
			return nil
		}
	}
	s.nextConnectionID++
	conn.ID = s.nextConnectionID
	conn.Status = models.ConnectionActive
	conn.CreatedAt = time.Now()
	stored := *conn
	s.connections[conn.ID] = &stored
	return nil
}

func (s *Store) ConnectionsForUser(ctx context.Context, userID int64) ([]models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conns []models.Connection
	for _, conn := range s.connections {
		if conn.UserID == userID {
			conns = append(conns, *conn)
		}
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].ID < conns[j].ID })
	return conns, nil
}

func (s *Store) ConnectionByItemID(ctx context.Context, itemID string) (*models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, conn := range s.connections {
		if conn.ItemID == itemID {
			copied := *conn
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) EligibleConnections(ctx context.Context, userID int64, syncedBefore time.Time) ([]models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conns []models.Connection
	for _, conn := range s.connections {
		if conn.UserID != userID {
			continue
		}
		if conn.LastSyncedAt == nil || conn.LastSyncedAt.Before(syncedBefore) {
			conns = append(conns, *conn)
		}
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].ID < conns[j].ID })
	return conns, nil
}

func (s *Store) DeleteConnection(ctx context.Context, userID, connectionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.connections[connectionID]
	if !ok || conn.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.connections, connectionID)
	for id, acc := range s.accounts {
		if acc.ConnectionID != connectionID {
			continue
		}
		for txnID, txn := range s.transactions {
			if txn.AccountID == id {
				delete(s.byExternalID, txn.TransactionID)
				delete(s.transactions, txnID)
			}
		}
		delete(s.accounts, id)
	}
	return nil
}

func (s *Store) MarkConnectionStatus(ctx context.Context, connectionID int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.connections[connectionID]
	if !ok {
		return store.ErrNotFound
	}
	conn.Status = status
	return nil
}

func (s *Store) TouchLastSynced(ctx context.Context, connectionID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.connections[connectionID]
	if !ok {
		return store.ErrNotFound
	}
	conn.LastSyncedAt = &at
	return nil
}

func (s *Store) UpsertAccounts(ctx context.Context, connectionID int64, snapshot []models.AccountSnapshot) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	upserted := 0
	for _, entry := range snapshot {
		existing := s.findAccount(connectionID, entry.AccountID)
		if existing == nil {
			s.nextAccountID++
			s.accounts[s.nextAccountID] = &models.Account{
				ID:               s.nextAccountID,
				ConnectionID:     connectionID,
				AccountID:        entry.AccountID,
				Name:             entry.Name,
				OfficialName:     entry.OfficialName,
				Mask:             entry.Mask,
				Type:             entry.Type,
				Subtype:          entry.Subtype,
				CurrentBalance:   entry.CurrentBalance,
				AvailableBalance: entry.AvailableBalance,
				CreatedAt:        time.Now(),
			}
			upserted++
			continue
		}
		if entry.CurrentBalance == nil && existing.CurrentBalance != nil {
			log.Printf("WARN: Skipping balance update for account %s: snapshot has no current balance", entry.AccountID)
			continue
		}
		existing.Name = entry.Name
		existing.OfficialName = entry.OfficialName
		existing.CurrentBalance = entry.CurrentBalance
		existing.AvailableBalance = entry.AvailableBalance
		upserted++
	}
	return upserted, nil
}

func (s *Store) AccountsForConnection(ctx context.Context, userID, connectionID int64) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.connections[connectionID]
	if !ok || conn.UserID != userID {
		return nil, store.ErrNotFound
	}
	var accounts []models.Account
	for _, acc := range s.accounts {
		if acc.ConnectionID == connectionID {
			accounts = append(accounts, *acc)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (s *Store) findAccount(connectionID int64, externalID string) *models.Account {
	for _, acc := range s.accounts {
		if acc.ConnectionID == connectionID && acc.AccountID == externalID {
			return acc
		}
	}
	return nil
}
