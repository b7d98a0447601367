package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/Chixide1/ZenWealth-sub001/src/ledger"
	"github.com/Chixide1/ZenWealth-sub001/src/models"
)

func (s *Store) PageTransactions(ctx context.Context, userID int64, q ledger.Query) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Transaction
	for _, txn := range s.transactions {
		acc, ok := s.accounts[txn.AccountID]
		if !ok {
			continue
		}
		conn, ok := s.connections[acc.ConnectionID]
		if !ok || conn.UserID != userID {
			continue
		}
		if !matchesFilters(txn, acc, q.Filters) {
			continue
		}
		if q.After != nil && !ledger.Beyond(q.Sort, *q.After, txn) {
			continue
		}
		copied := *txn
		copied.AccountName = acc.Name
		matched = append(matched, copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		return ledger.Less(q.Sort, &matched[i], &matched[j])
	})
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func matchesFilters(t *models.Transaction, acc *models.Account, f ledger.Filters) bool {
	if f.NamePrefix != "" && !strings.HasPrefix(strings.ToLower(t.Name), strings.ToLower(f.NamePrefix)) {
		return false
	}
	if f.MinAmount != nil && t.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && t.Amount > *f.MaxAmount {
		return false
	}
	if f.DateFrom != nil && t.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && t.Date.After(*f.DateTo) {
		return false
	}
	for _, category := range f.ExcludeCategories {
		if t.Category == category {
			return false
		}
	}
	for _, name := range f.ExcludeAccounts {
		if acc.Name == name {
			return false
		}
	}
	return true
}
