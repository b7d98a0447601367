package models

import "time"

// Transaction is one ledger row. TransactionID is the provider's id and the
// idempotency key: globally unique, immutable once assigned. The local ID is
// only used for ordering and pagination.
type Transaction struct {
	ID            int64     `json:"id"`
	AccountID     int64     `json:"-"`
	TransactionID string    `json:"transaction_id"`
	Name          string    `json:"name"`
	Amount        float64   `json:"amount"`
	Date          time.Time `json:"date"`
	Category      string    `json:"category"`
	MerchantName  *string   `json:"merchant_name"`
	Currency      *string   `json:"currency"`
	AccountName   string    `json:"account_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
