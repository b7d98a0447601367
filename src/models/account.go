package models

import "time"

// Account belongs to exactly one Connection. AccountID is the provider's
// stable identifier, unique within the connection. Balances are overwritten
// in place on every snapshot fetch.
type Account struct {
	ID               int64     `json:"id"`
	ConnectionID     int64     `json:"connection_id"`
	AccountID        string    `json:"account_id"`
	Name             string    `json:"name"`
	OfficialName     string    `json:"official_name"`
	Mask             string    `json:"mask"`
	Type             string    `json:"type"`
	Subtype          string    `json:"subtype"`
	CurrentBalance   *float64  `json:"current_balance"`
	AvailableBalance *float64  `json:"available_balance"`
	CreatedAt        time.Time `json:"created_at"`
}

// AccountSnapshot is one entry of a fresh provider account fetch. A nil
// CurrentBalance means the institution did not report one; it must never
// overwrite a known balance.
type AccountSnapshot struct {
	AccountID        string
	Name             string
	OfficialName     string
	Mask             string
	Type             string
	Subtype          string
	CurrentBalance   *float64
	AvailableBalance *float64
}
