package sync

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Chixide1/ZenWealth-sub001/src/models"
	"github.com/Chixide1/ZenWealth-sub001/src/provider"
	"github.com/Chixide1/ZenWealth-sub001/src/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	snapshotCalls int64
	deltaCalls    int64

	SnapshotFunc func(ctx context.Context, accessToken string) ([]models.AccountSnapshot, error)
	DeltaFunc    func(ctx context.Context, accessToken, cursor string) (*models.DeltaBatch, error)
}

func (f *fakeProvider) CreateLinkToken(ctx context.Context, userID int64) (string, error) {
	return "", nil
}

func (f *fakeProvider) ExchangeToken(ctx context.Context, publicToken string) (*provider.LinkedItem, error) {
	return nil, nil
}

func (f *fakeProvider) FetchAccountSnapshot(ctx context.Context, accessToken string) ([]models.AccountSnapshot, error) {
	atomic.AddInt64(&f.snapshotCalls, 1)
	if f.SnapshotFunc != nil {
		return f.SnapshotFunc(ctx, accessToken)
	}
	return nil, nil
}

func (f *fakeProvider) FetchTransactionDelta(ctx context.Context, accessToken, cursor string) (*models.DeltaBatch, error) {
	atomic.AddInt64(&f.deltaCalls, 1)
	if f.DeltaFunc != nil {
		return f.DeltaFunc(ctx, accessToken, cursor)
	}
	return &models.DeltaBatch{NextCursor: cursor}, nil
}

func (f *fakeProvider) RemoveItem(ctx context.Context, accessToken string) error {
	return nil
}

func newConnection(t *testing.T, s *memory.Store, itemID string) *models.Connection {
	t.Helper()
	conn := &models.Connection{UserID: 1, AccessToken: "token-" + itemID, ItemID: itemID}
	require.NoError(t, s.SaveConnection(context.Background(), conn))
	return conn
}

func singleAccount(id string) []models.AccountSnapshot {
	return []models.AccountSnapshot{{AccountID: id, Name: "Checking"}}
}

func TestSyncChainsDeltaPages(t *testing.T) {
	s := memory.New()
	newConnection(t, s, "item-1")

	p := &fakeProvider{
		SnapshotFunc: func(ctx context.Context, accessToken string) ([]models.AccountSnapshot, error) {
			return singleAccount("a1"), nil
		},
		DeltaFunc: func(ctx context.Context, accessToken, cursor string) (*models.DeltaBatch, error) {
			// Two pages: the second must be fetched with the first's
			// continuation cursor.
			switch cursor {
			case "":
				return &models.DeltaBatch{
					Added:      []models.DeltaEntry{{TransactionID: "t1", AccountID: "a1", Name: "One", Amount: 1, Date: date(1)}},
					NextCursor: "c1",
					HasMore:    true,
				}, nil
			case "c1":
				return &models.DeltaBatch{
					Added:      []models.DeltaEntry{{TransactionID: "t2", AccountID: "a1", Name: "Two", Amount: 2, Date: date(2)}},
					NextCursor: "c2",
				}, nil
			default:
				return nil, fmt.Errorf("unexpected cursor %q", cursor)
			}
		},
	}

	o := NewOrchestrator(s, p, 24*time.Hour)
	result, err := o.SyncDueConnections(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalApplied)
	require.Len(t, result.Connections, 1)
	assert.Empty(t, result.Connections[0].Error)
	assert.Equal(t, int64(2), p.deltaCalls)

	stored, err := s.ConnectionByItemID(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, "c2", stored.SyncCursor)
	require.NotNil(t, stored.LastSyncedAt)
}

func TestFreshnessGateSkipsRecentlySynced(t *testing.T) {
	s := memory.New()
	conn := newConnection(t, s, "item-1")
	require.NoError(t, s.TouchLastSynced(context.Background(), conn.ID, time.Now()))

	p := &fakeProvider{}
	o := NewOrchestrator(s, p, 24*time.Hour)

	result, err := o.SyncDueConnections(context.Background(), 1)
	require.NoError(t, err)

	assert.Empty(t, result.Connections, "a fresh connection is skipped entirely")
	assert.Zero(t, p.snapshotCalls)
}

func TestConnectionFailureIsolation(t *testing.T) {
	s := memory.New()
	newConnection(t, s, "item-bad")
	newConnection(t, s, "item-good")

	p := &fakeProvider{
		SnapshotFunc: func(ctx context.Context, accessToken string) ([]models.AccountSnapshot, error) {
			if accessToken == "token-item-bad" {
				return nil, errors.New("upstream 500")
			}
			return singleAccount("a1"), nil
		},
		DeltaFunc: func(ctx context.Context, accessToken, cursor string) (*models.DeltaBatch, error) {
			return &models.DeltaBatch{
				Added:      []models.DeltaEntry{{TransactionID: "t1", AccountID: "a1", Name: "One", Amount: 1, Date: date(1)}},
				NextCursor: "c1",
			}, nil
		},
	}

	o := NewOrchestrator(s, p, 24*time.Hour)
	result, err := o.SyncDueConnections(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, result.Connections, 2)
	assert.NotEmpty(t, result.Connections[0].Error, "first connection failed")
	assert.Empty(t, result.Connections[1].Error, "second connection unaffected")
	assert.Equal(t, 1, result.TotalApplied)

	bad, err := s.ConnectionByItemID(context.Background(), "item-bad")
	require.NoError(t, err)
	assert.Nil(t, bad.LastSyncedAt, "failed connection stays eligible for retry")
	assert.Equal(t, "", bad.SyncCursor)

	good, err := s.ConnectionByItemID(context.Background(), "item-good")
	require.NoError(t, err)
	require.NotNil(t, good.LastSyncedAt)
	assert.Equal(t, "c1", good.SyncCursor)
}

func TestRevokedCredentialMarksConnection(t *testing.T) {
	s := memory.New()
	newConnection(t, s, "item-1")

	p := &fakeProvider{
		SnapshotFunc: func(ctx context.Context, accessToken string) ([]models.AccountSnapshot, error) {
			return nil, fmt.Errorf("%w: ITEM_LOGIN_REQUIRED", provider.ErrReauthRequired)
		},
	}

	o := NewOrchestrator(s, p, 24*time.Hour)
	result, err := o.SyncDueConnections(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, result.Connections, 1)
	assert.NotEmpty(t, result.Connections[0].Error)

	stored, err := s.ConnectionByItemID(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionReauthNeeded, stored.Status, "marked but not deleted")
}

func TestSnapshotBalanceNeverClobberedByNull(t *testing.T) {
	s := memory.New()
	conn := newConnection(t, s, "item-1")

	balance := 100.0
	snapshots := [][]models.AccountSnapshot{
		{{AccountID: "a1", Name: "Checking", CurrentBalance: &balance}},
		{{AccountID: "a1", Name: "Checking"}}, // institution reported no balance
	}
	call := 0
	p := &fakeProvider{
		SnapshotFunc: func(ctx context.Context, accessToken string) ([]models.AccountSnapshot, error) {
			snap := snapshots[call]
			call++
			return snap, nil
		},
	}

	// Zero freshness keeps the connection eligible for the second pass.
	o := NewOrchestrator(s, p, 0)
	_, err := o.SyncDueConnections(context.Background(), 1)
	require.NoError(t, err)
	_, err = o.SyncDueConnections(context.Background(), 1)
	require.NoError(t, err)

	accounts, err := s.AccountsForConnection(context.Background(), 1, conn.ID)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.NotNil(t, accounts[0].CurrentBalance)
	assert.Equal(t, 100.0, *accounts[0].CurrentBalance)
}

func TestWebhookSyncBypassesFreshnessGate(t *testing.T) {
	s := memory.New()
	conn := newConnection(t, s, "item-1")
	require.NoError(t, s.TouchLastSynced(context.Background(), conn.ID, time.Now()))

	p := &fakeProvider{
		SnapshotFunc: func(ctx context.Context, accessToken string) ([]models.AccountSnapshot, error) {
			return singleAccount("a1"), nil
		},
		DeltaFunc: func(ctx context.Context, accessToken, cursor string) (*models.DeltaBatch, error) {
			return &models.DeltaBatch{
				Added:      []models.DeltaEntry{{TransactionID: "t1", AccountID: "a1", Name: "One", Amount: 1, Date: date(1)}},
				NextCursor: "c1",
			}, nil
		},
	}

	o := NewOrchestrator(s, p, 24*time.Hour)
	applied, err := o.SyncConnectionByItemID(context.Background(), "item-1")
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
}
