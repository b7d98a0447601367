package models

import "time"

const (
	ConnectionActive       = "active"
	ConnectionReauthNeeded = "reauth_required"
)

// Connection is one linked institution (a Plaid Item) plus its sync state.
// SyncCursor is the provider's opaque continuation token; empty string means
// no sync has been performed yet.
type Connection struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	AccessToken     string     `json:"-"`
	ItemID          string     `json:"item_id"`
	InstitutionID   string     `json:"institution_id"`
	InstitutionName string     `json:"institution_name"`
	SyncCursor      string     `json:"-"`
	LastSyncedAt    *time.Time `json:"last_synced_at"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}
