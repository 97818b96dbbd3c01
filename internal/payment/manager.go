// Package payment drives the active payment request lifecycle:
// Idle -> Creating -> Active{status} -> Terminal. One active request per
// wallet session; status comes from backend polling and is never guessed.
package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AlexZinkM/pocket-wallet/internal/client"
	"github.com/AlexZinkM/pocket-wallet/internal/common"
	"github.com/AlexZinkM/pocket-wallet/internal/logger"
	"github.com/AlexZinkM/pocket-wallet/internal/model"
	"github.com/AlexZinkM/pocket-wallet/internal/txcache"
)

var (
	// ErrInvalidAmount means the requested USD amount failed validation.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrCreateFailed wraps a backend rejection of a create call.
	ErrCreateFailed = errors.New("failed to create payment request")

	// ErrDeleteFailed wraps a backend rejection of a cancel call. Local state
	// is already cleared by then and is not resurrected.
	ErrDeleteFailed = errors.New("failed to cancel payment request")

	// ErrNoActiveRequest means there is nothing to act on.
	ErrNoActiveRequest = errors.New("no active payment request")
)

// StatusFetcher is the slice of the backend client polling needs.
type StatusFetcher interface {
	CreatePayment(ctx context.Context, req client.CreatePaymentRequest) (string, error)
	CancelPayment(ctx context.Context, paymentID string) error
	GetPayment(ctx context.Context, paymentID string) (*model.PaymentRequest, error)
}

// Manager owns the wallet session's active payment request and its polling
// loop. All mutation happens under one mutex; polling runs on its own
// goroutine with an explicit cancel handle.
type Manager struct {
	mu sync.Mutex

	backend       StatusFetcher
	cache         *txcache.Cache
	walletAddress string
	vendorName    string
	pollInterval  time.Duration
	now           func() time.Time

	active     *model.PaymentRequest
	completed  bool
	cancelPoll context.CancelFunc
	pollDone   chan struct{}

	// onTerminal, if set, fires once when polling observes a terminal status.
	onTerminal func(model.PaymentRequest)
}

// NewManager creates a payment request manager for one wallet session.
// now may be nil for the real clock.
func NewManager(backend StatusFetcher, cache *txcache.Cache, walletAddress, vendorName string, pollInterval time.Duration, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Manager{
		backend:       backend,
		cache:         cache,
		walletAddress: walletAddress,
		vendorName:    vendorName,
		pollInterval:  pollInterval,
		now:           now,
	}
}

// OnTerminal registers a completion callback. Must be set before CreateRequest.
func (m *Manager) OnTerminal(fn func(model.PaymentRequest)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTerminal = fn
}

// CreateRequest validates the amount, registers a payment request with the
// backend, caches it locally and starts polling its status.
func (m *Manager) CreateRequest(ctx context.Context, amountUSD string) (*model.PaymentRequest, error) {
	amount, err := common.ParseUSDAmount(amountUSD)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	price := common.FormatUSD(amount)

	paymentID, err := m.backend.CreatePayment(ctx, client.CreatePaymentRequest{
		VendorAddress: m.walletAddress,
		VendorName:    m.vendorName,
		PriceUSD:      price,
	})
	if err != nil {
		if client.IsNetworkError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCreateFailed, err)
	}

	req := model.PaymentRequest{
		PaymentID:     paymentID,
		VendorAddress: m.walletAddress,
		VendorName:    m.vendorName,
		PriceUSD:      price,
		Status:        model.StatusPending,
		CreatedAt:     m.now().Unix(),
	}

	m.mu.Lock()
	m.stopPollingLocked()
	m.active = &req
	m.completed = false
	m.startPollingLocked(paymentID)
	m.mu.Unlock()

	if m.cache != nil {
		m.cache.Put(req)
	}

	logger.Info("payment request created",
		zap.String("payment_id", paymentID),
		zap.String("price_usd", price))
	return &req, nil
}

// DeleteRequest cancels a payment request. Local state is cleared immediately
// (local-first cancel): whatever the backend round-trip returns, the request
// does not come back.
func (m *Manager) DeleteRequest(ctx context.Context, paymentID string) error {
	m.mu.Lock()
	if m.active != nil && m.active.PaymentID == paymentID {
		m.stopPollingLocked()
		m.active = nil
		m.completed = false
	}
	m.mu.Unlock()

	if m.cache != nil {
		m.cache.Remove(paymentID)
	}

	if err := m.backend.CancelPayment(ctx, paymentID); err != nil {
		logger.Warn("backend cancel failed after local clear",
			zap.String("payment_id", paymentID), zap.Error(err))
		if client.IsNetworkError(err) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

// ClearActiveRequest resets to Idle without any backend call. Cancellation of
// the polling loop is idempotent.
func (m *Manager) ClearActiveRequest() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopPollingLocked()
	m.active = nil
	m.completed = false
}

// Active returns a copy of the active request, its staleness tier, and the
// completion flag.
func (m *Manager) Active() (*model.PaymentRequest, common.StalenessTier, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil, "", m.completed
	}
	req := *m.active
	tier := common.ClassifyStaleness(common.NormalizeCreatedAt(req.CreatedAt), m.now())
	return &req, tier, m.completed
}

// Close tears the manager down, cancelling any polling loop so no stale
// writes happen after the session ends.
func (m *Manager) Close() {
	m.ClearActiveRequest()
}

// startPollingLocked launches the polling goroutine. Caller holds m.mu.
func (m *Manager) startPollingLocked(paymentID string) {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelPoll = cancel
	done := make(chan struct{})
	m.pollDone = done

	go m.pollLoop(ctx, paymentID, done)
}

// stopPollingLocked cancels the polling loop. Safe to call repeatedly.
// Caller holds m.mu; the loop re-checks its context under the same mutex
// before any write, so no stale update can land after cancellation.
func (m *Manager) stopPollingLocked() {
	if m.cancelPoll != nil {
		m.cancelPoll()
		m.cancelPoll = nil
		m.pollDone = nil
	}
}

// pollLoop periodically fetches the request status until a terminal status
// arrives or the loop is cancelled.
func (m *Manager) pollLoop(ctx context.Context, paymentID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		fetchCtx, cancel := context.WithTimeout(ctx, m.pollInterval)
		req, err := m.backend.GetPayment(fetchCtx, paymentID)
		cancel()
		if err != nil {
			// Transient poll failures are invisible to the user; the next
			// tick retries.
			logger.Debug("payment status poll failed",
				zap.String("payment_id", paymentID), zap.Error(err))
			continue
		}

		if m.applyPolled(ctx, paymentID, req) {
			return
		}
	}
}

// applyPolled records a polled status. Returns true when polling should stop.
func (m *Manager) applyPolled(ctx context.Context, paymentID string, req *model.PaymentRequest) bool {
	m.mu.Lock()

	// The session may have cleared or replaced the request while the fetch
	// was in flight; a cancelled loop must not write.
	if ctx.Err() != nil || m.active == nil || m.active.PaymentID != paymentID {
		m.mu.Unlock()
		return true
	}

	m.active.Status = req.Status
	if req.PaymentBundle != nil {
		m.active.PaymentBundle = req.PaymentBundle
	}
	if req.CustomerAddress != "" {
		m.active.CustomerAddress = req.CustomerAddress
	}

	terminal := req.Status.Terminal()
	var snapshot model.PaymentRequest
	var notify func(model.PaymentRequest)
	if terminal {
		m.completed = req.Status == model.StatusCompleted
		m.stopPollingLocked()
		snapshot = *m.active
		notify = m.onTerminal
	}
	m.mu.Unlock()

	if m.cache != nil {
		m.cache.ApplyStatus(paymentID, req.Status)
	}

	if terminal {
		logger.Info("payment request reached terminal status",
			zap.String("payment_id", paymentID),
			zap.String("status", string(req.Status)))
		if notify != nil {
			notify(snapshot)
		}
	}
	return terminal
}
