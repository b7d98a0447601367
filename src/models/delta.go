package models

import "time"

// DeltaEntry is one added or modified transaction record from the provider's
// delta stream. AccountID is the provider's account id, resolved to a local
// account row at apply time.
type DeltaEntry struct {
	TransactionID string
	AccountID     string
	Name          string
	Amount        float64
	Date          time.Time
	Category      string
	MerchantName  *string
	Currency      *string
}

// DeltaBatch is one fetch's worth of the provider's delta stream. It is
// transient: fully consumed by reconciliation, never persisted.
type DeltaBatch struct {
	Added      []DeltaEntry
	Modified   []DeltaEntry
	Removed    []string
	NextCursor string
	HasMore    bool
}
