// Package history exposes the read-only settled-activity feed. It never
// mutates backend state; it only fetches, merges and deduplicates.
package history

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/AlexZinkM/pocket-wallet/internal/common"
	"github.com/AlexZinkM/pocket-wallet/internal/model"
	"github.com/AlexZinkM/pocket-wallet/internal/txcache"
)

// ActivityFetcher is the slice of the backend client the store needs.
type ActivityFetcher interface {
	GetActivity(ctx context.Context, address string, limit int) (*model.ActivityPage, error)
}

// Store reads the settled history for one wallet and reconciles it against
// the pending cache so a settled payment never shows up twice.
type Store struct {
	walletAddress string
	backend       ActivityFetcher
	pending       *txcache.Cache
}

// NewStore creates a history store for one wallet address. pending may be nil
// when no dedup against in-flight requests is wanted.
func NewStore(walletAddress string, backend ActivityFetcher, pending *txcache.Cache) *Store {
	return &Store{
		walletAddress: walletAddress,
		backend:       backend,
		pending:       pending,
	}
}

// LoadTransactionHistory fetches settled transactions and deposits, merges
// them reverse-chronologically and bounds the result by limit. When a settled
// payment_id still lingers in the pending cache, the history record wins and
// the pending copy is dropped from the cache.
func (s *Store) LoadTransactionHistory(ctx context.Context, limit int) ([]model.HistoryActivity, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	page, err := s.backend.GetActivity(ctx, s.walletAddress, limit)
	if err != nil {
		return nil, err
	}

	activities := make([]model.HistoryActivity, 0, len(page.Transactions)+len(page.Deposits))
	seen := make(map[string]bool, len(page.Transactions))

	for _, tx := range page.Transactions {
		// payment_id is the join key across caches; duplicates within one
		// page keep the first (newest) record.
		if tx.PaymentID == "" || seen[tx.PaymentID] {
			continue
		}
		seen[tx.PaymentID] = true

		counterparty := tx.VendorAddress
		if counterparty == s.walletAddress {
			counterparty = tx.CustomerAddress
		}

		activities = append(activities, model.HistoryActivity{
			Key:          tx.PaymentID,
			Kind:         model.ActivityTransaction,
			PaymentID:    tx.PaymentID,
			Counterparty: counterparty,
			VendorName:   tx.VendorName,
			AmountUSD:    tx.PriceUSD,
			Status:       string(tx.Status),
			Timestamp:    common.NormalizeCreatedAt(tx.CreatedAt),
		})
	}

	for _, dep := range page.Deposits {
		// Deposits carry no backend key; a synthetic one keeps the feed
		// addressable without ever colliding with a payment_id.
		activities = append(activities, model.HistoryActivity{
			Key:          "deposit-" + uuid.NewString(),
			Kind:         model.ActivityDeposit,
			Counterparty: dep.FromAddress,
			AmountUSD:    dep.AmountUSD,
			Status:       string(model.StatusCompleted),
			Timestamp:    common.NormalizeCreatedAt(dep.CreatedAt),
		})
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Timestamp.After(activities[j].Timestamp)
	})

	if len(activities) > limit {
		activities = activities[:limit]
	}

	// The history record is authoritative for settled payments: drop any
	// lingering pending copy so the union view shows each payment_id once.
	if s.pending != nil {
		for id := range seen {
			if s.pending.Has(id) {
				s.pending.Remove(id)
			}
		}
	}

	return activities, nil
}
