package provider

import (
	"context"
	"errors"

	"github.com/Chixide1/ZenWealth-sub001/src/models"
)

// ErrReauthRequired marks a permanent upstream failure: the institution
// revoked the credential and the user has to relink. The connection is marked
// but never deleted.
var ErrReauthRequired = errors.New("reauthentication required")

// LinkedItem is the result of exchanging a public token.
type LinkedItem struct {
	AccessToken     string
	ItemID          string
	InstitutionID   string
	InstitutionName string
}

// Provider is the upstream aggregation API, treated as a black box. All calls
// are blocking I/O and carry a bounded timeout.
type Provider interface {
	CreateLinkToken(ctx context.Context, userID int64) (string, error)
	ExchangeToken(ctx context.Context, publicToken string) (*LinkedItem, error)
	FetchAccountSnapshot(ctx context.Context, accessToken string) ([]models.AccountSnapshot, error)
	FetchTransactionDelta(ctx context.Context, accessToken, cursor string) (*models.DeltaBatch, error)
	RemoveItem(ctx context.Context, accessToken string) error
}
