package sync

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/Chixide1/ZenWealth-sub001/src/events"
	"github.com/Chixide1/ZenWealth-sub001/src/models"
	"github.com/Chixide1/ZenWealth-sub001/src/provider"
	"github.com/Chixide1/ZenWealth-sub001/src/store"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// EventPublisher receives one event per completed connection sync. A nil
// publisher disables event emission.
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Invalidator drops cached pages for a user after a sync changed the ledger.
type Invalidator interface {
	InvalidateUser(userID int64)
}

// Outcome is the structured result of one connection's sync attempt.
type Outcome struct {
	ConnectionID int64  `json:"connection_id"`
	ItemID       string `json:"item_id"`
	Applied      int    `json:"applied"`
	Error        string `json:"error,omitempty"`
}

// Result collects per-connection outcomes for one user's sync pass. One
// connection's failure never aborts another's sync.
type Result struct {
	UserID       int64     `json:"user_id"`
	TotalApplied int       `json:"total_applied"`
	Connections  []Outcome `json:"connections"`
}

// Orchestrator drives the per-user sync pipeline: gate on freshness, refresh
// account balances, then chain delta fetches per connection until the
// provider reports no more pages.
type Orchestrator struct {
	store      store.LedgerStore
	provider   provider.Provider
	reconciler *Reconciler
	events     EventPublisher
	cache      Invalidator
	freshness  time.Duration
	group      singleflight.Group
	now        func() time.Time
}

func NewOrchestrator(s store.LedgerStore, p provider.Provider, freshness time.Duration) *Orchestrator {
	return &Orchestrator{
		store:      s,
		provider:   p,
		reconciler: NewReconciler(s),
		freshness:  freshness,
		now:        time.Now,
	}
}

// WithEvents wires an event publisher; WithCache wires page-cache
// invalidation. Both are optional.
func (o *Orchestrator) WithEvents(p EventPublisher) *Orchestrator {
	o.events = p
	return o
}

func (o *Orchestrator) WithCache(c Invalidator) *Orchestrator {
	o.cache = c
	return o
}

// SyncDueConnections syncs every connection of the user whose last sync is
// older than the freshness window (or that has never synced). Failures are
// recorded per connection; the pass itself only fails if eligible
// connections cannot even be listed.
func (o *Orchestrator) SyncDueConnections(ctx context.Context, userID int64) (*Result, error) {
	conns, err := o.store.EligibleConnections(ctx, userID, o.now().Add(-o.freshness))
	if err != nil {
		return nil, err
	}

	result := &Result{UserID: userID, Connections: make([]Outcome, 0, len(conns))}
	for i := range conns {
		conn := &conns[i]
		outcome := Outcome{ConnectionID: conn.ID, ItemID: conn.ItemID}

		applied, err := o.syncConnection(ctx, conn)
		outcome.Applied = applied
		if err != nil {
			outcome.Error = err.Error()
			o.recordFailure(ctx, conn, err)
			result.Connections = append(result.Connections, outcome)
			continue
		}

		if err := o.store.TouchLastSynced(ctx, conn.ID, o.now()); err != nil {
			log.Printf("ERROR: Failed to update last_synced_at for connection %d: %v", conn.ID, err)
		}
		result.TotalApplied += applied
		result.Connections = append(result.Connections, outcome)

		if applied > 0 {
			if o.cache != nil {
				o.cache.InvalidateUser(userID)
			}
			o.publish(ctx, conn, applied)
		}
	}
	return result, nil
}

// SyncConnectionByItemID syncs one connection immediately, bypassing the
// freshness gate. Used by the provider webhook.
func (o *Orchestrator) SyncConnectionByItemID(ctx context.Context, itemID string) (int, error) {
	conn, err := o.store.ConnectionByItemID(ctx, itemID)
	if err != nil {
		return 0, err
	}
	applied, err := o.syncConnection(ctx, conn)
	if err != nil {
		o.recordFailure(ctx, conn, err)
		return applied, err
	}
	if err := o.store.TouchLastSynced(ctx, conn.ID, o.now()); err != nil {
		log.Printf("ERROR: Failed to update last_synced_at for connection %d: %v", conn.ID, err)
	}
	if applied > 0 {
		if o.cache != nil {
			o.cache.InvalidateUser(conn.UserID)
		}
		o.publish(ctx, conn, applied)
	}
	return applied, nil
}

// syncConnection runs one connection's pipeline. Concurrent attempts for the
// same connection collapse into a single flight so two callers cannot read
// the same cursor and double-apply overlapping deltas.
func (o *Orchestrator) syncConnection(ctx context.Context, conn *models.Connection) (int, error) {
	v, err, _ := o.group.Do(conn.ItemID, func() (any, error) {
		snapshot, err := o.provider.FetchAccountSnapshot(ctx, conn.AccessToken)
		if err != nil {
			return 0, err
		}
		if _, err := o.store.UpsertAccounts(ctx, conn.ID, snapshot); err != nil {
			return 0, err
		}

		applied := 0
		for {
			batch, err := o.provider.FetchTransactionDelta(ctx, conn.AccessToken, conn.SyncCursor)
			if err != nil {
				return applied, err
			}
			stats, err := o.reconciler.Apply(ctx, conn, batch)
			if err != nil {
				return applied, err
			}
			applied += stats.Total()
			if !batch.HasMore {
				break
			}
		}
		return applied, nil
	})
	applied, _ := v.(int)
	return applied, err
}

func (o *Orchestrator) recordFailure(ctx context.Context, conn *models.Connection, err error) {
	// The cursor is untouched on failure, so the next eligible window
	// re-fetches from the same point.
	log.Printf("ERROR: Sync failed for connection %d (item %s): %v", conn.ID, conn.ItemID, err)
	if errors.Is(err, provider.ErrReauthRequired) {
		if markErr := o.store.MarkConnectionStatus(ctx, conn.ID, models.ConnectionReauthNeeded); markErr != nil {
			log.Printf("ERROR: Failed to mark connection %d for reauth: %v", conn.ID, markErr)
		}
	}
}

func (o *Orchestrator) publish(ctx context.Context, conn *models.Connection, applied int) {
	if o.events == nil {
		return
	}
	event := events.ConnectionSynced{
		EventID:    uuid.NewString(),
		UserID:     conn.UserID,
		ItemID:     conn.ItemID,
		Applied:    applied,
		OccurredAt: o.now(),
	}
	if err := o.events.Publish(ctx, event); err != nil {
		log.Printf("ERROR: Failed to publish sync event for connection %d: %v", conn.ID, err)
	}
}
