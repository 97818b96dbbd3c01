// Package txcache keeps the local, eventually-consistent mirror of in-flight
// payment requests. The backend is authoritative for status; the cache only
// guarantees read availability and never clears good entries on a failed sync.
package txcache

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AlexZinkM/pocket-wallet/internal/common"
	"github.com/AlexZinkM/pocket-wallet/internal/logger"
	"github.com/AlexZinkM/pocket-wallet/internal/model"
)

// Lister is the slice of the backend client the cache needs.
type Lister interface {
	ListPayments(ctx context.Context, partyAddress string) ([]model.PaymentRequest, error)
}

// Entry is one cached payment request plus sync bookkeeping. LocalOnly marks
// entries created locally that the backend has not yet acknowledged.
type Entry struct {
	model.PaymentRequest
	LastSyncedAt time.Time `json:"last_synced_at"`
	LocalOnly    bool      `json:"local_only"`
}

// Staleness classifies the entry's age for UI signaling.
func (e Entry) Staleness(now time.Time) common.StalenessTier {
	return common.ClassifyStaleness(common.NormalizeCreatedAt(e.CreatedAt), now)
}

// Cache is the pending-transaction cache for one wallet identity. At most one
// entry per payment_id; last sync wins.
type Cache struct {
	mu            sync.Mutex
	walletAddress string
	entries       map[string]Entry
	backend       Lister
	now           func() time.Time
}

// New creates a cache scoped to one wallet address. now may be nil for the
// real clock (injectable for tests).
func New(walletAddress string, backend Lister, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		walletAddress: walletAddress,
		entries:       make(map[string]Entry),
		backend:       backend,
		now:           now,
	}
}

// Put inserts or replaces a locally created request before any sync has
// confirmed it.
func (c *Cache) Put(req model.PaymentRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[req.PaymentID] = Entry{
		PaymentRequest: req,
		LastSyncedAt:   c.now(),
		LocalOnly:      true,
	}
}

// Remove drops one entry, e.g. after an explicit cancel.
func (c *Cache) Remove(paymentID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, paymentID)
}

// ApplyStatus records a status observed for a cached payment (from polling).
// Terminal statuses are monotonic: a non-terminal update never reverts one.
func (c *Cache) ApplyStatus(paymentID string, status model.PaymentStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[paymentID]
	if !ok {
		return
	}
	if entry.Status.Terminal() && !status.Terminal() {
		return
	}
	entry.Status = status
	entry.LastSyncedAt = c.now()
	c.entries[paymentID] = entry
}

// SyncTransactions fetches the authoritative in-flight list and merges it in.
// The merge is idempotent and commutative over identical snapshots: backend
// status wins over local copies, unacknowledged local-only entries survive
// until confirmed or superseded, and previously synced entries missing from
// the snapshot are dropped as settled elsewhere. A failed fetch leaves the
// cache untouched (fail-open for reads).
func (c *Cache) SyncTransactions(ctx context.Context) error {
	payments, err := c.backend.ListPayments(ctx, c.walletAddress)
	if err != nil {
		logger.Warn("pending cache sync failed, keeping last known good state",
			zap.String("wallet", c.walletAddress), zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	seen := make(map[string]bool, len(payments))

	for _, req := range payments {
		if !c.matchesWallet(req) {
			continue
		}
		seen[req.PaymentID] = true

		if existing, ok := c.entries[req.PaymentID]; ok {
			// Terminal statuses never regress, even if the backend briefly
			// reports an older non-terminal state for the same payment_id.
			if existing.Status.Terminal() && !req.Status.Terminal() {
				existing.LastSyncedAt = now
				c.entries[req.PaymentID] = existing
				continue
			}
		}

		c.entries[req.PaymentID] = Entry{
			PaymentRequest: req,
			LastSyncedAt:   now,
			LocalOnly:      false,
		}
	}

	// Entries the backend has confirmed before but no longer reports are
	// superseded. Local-only entries stay until a sync acknowledges them or
	// they age out of the active view.
	for id, entry := range c.entries {
		if !seen[id] && !entry.LocalOnly {
			delete(c.entries, id)
		}
	}

	return nil
}

// Active returns the relevant in-flight entries: matching this wallet,
// non-terminal, younger than the 1-hour implicit expiry, newest first.
func (c *Cache) Active() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	result := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		if entry.Status.Terminal() {
			continue
		}
		if entry.Staleness(now) == common.TierExpired {
			continue
		}
		result = append(result, entry)
	}

	sort.Slice(result, func(i, j int) bool {
		ti := common.NormalizeCreatedAt(result[i].CreatedAt)
		tj := common.NormalizeCreatedAt(result[j].CreatedAt)
		return ti.After(tj)
	})

	return result
}

// Get returns one entry by payment_id.
func (c *Cache) Get(paymentID string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[paymentID]
	return entry, ok
}

// Has reports whether a payment_id is cached (any status).
func (c *Cache) Has(paymentID string) bool {
	_, ok := c.Get(paymentID)
	return ok
}

// ClearAll wipes the pending cache for this wallet identity. History is a
// separate store and is deliberately not touched.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}

// matchesWallet keeps only requests this wallet is a party to.
func (c *Cache) matchesWallet(req model.PaymentRequest) bool {
	return req.VendorAddress == c.walletAddress || req.CustomerAddress == c.walletAddress
}
