package memory

import (
	"context"
	"time"

	"github.com/Chixide1/ZenWealth-sub001/src/models"
	"github.com/Chixide1/ZenWealth-sub001/src/store"
)

// ApplyDelta mirrors the postgres transaction semantics: fn runs against a
// staged copy of the ledger which replaces the live state only if fn returns
// nil. On error nothing is applied, cursor included.
func (s *Store) ApplyDelta(ctx context.Context, connectionID int64, fn func(store.DeltaTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := &deltaTx{
		store:        s,
		connectionID: connectionID,
		transactions: make(map[int64]*models.Transaction, len(s.transactions)),
		byExternalID: make(map[string]int64, len(s.byExternalID)),
		nextID:       s.nextTransactionID,
		cursor:       nil,
	}
	for id, txn := range s.transactions {
		copied := *txn
		staged.transactions[id] = &copied
	}
	for ext, id := range s.byExternalID {
		staged.byExternalID[ext] = id
	}

	if err := fn(staged); err != nil {
		return err
	}

	s.transactions = staged.transactions
	s.byExternalID = staged.byExternalID
	s.nextTransactionID = staged.nextID
	if staged.cursor != nil {
		if conn, ok := s.connections[connectionID]; ok {
			conn.SyncCursor = *staged.cursor
		}
	}
	return nil
}

type deltaTx struct {
	store        *Store
	connectionID int64
	transactions map[int64]*models.Transaction
	byExternalID map[string]int64
	nextID       int64
	cursor       *string
}

func (d *deltaTx) AccountRef(ctx context.Context, externalAccountID string) (int64, bool, error) {
	acc := d.store.findAccount(d.connectionID, externalAccountID)
	if acc == nil {
		return 0, false, nil
	}
	return acc.ID, true, nil
}

func (d *deltaTx) UpsertTransaction(ctx context.Context, accountID int64, e models.DeltaEntry) (bool, error) {
	if id, ok := d.byExternalID[e.TransactionID]; ok {
		existing := d.transactions[id]
		existing.AccountID = accountID
		existing.Name = e.Name
		existing.Amount = e.Amount
		existing.Date = e.Date
		existing.Category = e.Category
		existing.MerchantName = e.MerchantName
		existing.Currency = e.Currency
		existing.UpdatedAt = time.Now()
		return false, nil
	}

	d.nextID++
	now := time.Now()
	d.transactions[d.nextID] = &models.Transaction{
		ID:            d.nextID,
		AccountID:     accountID,
		TransactionID: e.TransactionID,
		Name:          e.Name,
		Amount:        e.Amount,
		Date:          e.Date,
		Category:      e.Category,
		MerchantName:  e.MerchantName,
		Currency:      e.Currency,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	d.byExternalID[e.TransactionID] = d.nextID
	return true, nil
}

func (d *deltaTx) DeleteTransactions(ctx context.Context, externalIDs []string) (int, error) {
	removed := 0
	for _, ext := range externalIDs {
		id, ok := d.byExternalID[ext]
		if !ok {
			continue
		}
		delete(d.transactions, id)
		delete(d.byExternalID, ext)
		removed++
	}
	return removed, nil
}

func (d *deltaTx) SetSyncCursor(ctx context.Context, cursor string) error {
	d.cursor = &cursor
	return nil
}
