package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AlexZinkM/pocket-wallet/internal/client"
	"github.com/AlexZinkM/pocket-wallet/internal/common"
	"github.com/AlexZinkM/pocket-wallet/internal/model"
	"github.com/AlexZinkM/pocket-wallet/internal/txcache"
)

const walletAddr = "4fYNw3dojWmQ4dXtSGE9epjRGy9pFSx62YypT7avPYvA"

type fakeBackend struct {
	mu sync.Mutex

	createID  string
	createErr error

	cancelErr   error
	cancelCalls int

	status    model.PaymentStatus
	getErr    error
	getCalls  int
	bundle    []byte
	customer  string
	lastGetID string
}

func (f *fakeBackend) CreatePayment(ctx context.Context, req client.CreatePaymentRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.createID, nil
}

func (f *fakeBackend) CancelPayment(ctx context.Context, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	return f.cancelErr
}

func (f *fakeBackend) GetPayment(ctx context.Context, paymentID string) (*model.PaymentRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	f.lastGetID = paymentID
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &model.PaymentRequest{
		PaymentID:       paymentID,
		VendorAddress:   walletAddr,
		Status:          f.status,
		CustomerAddress: f.customer,
		PaymentBundle:   f.bundle,
	}, nil
}

func (f *fakeBackend) setStatus(s model.PaymentStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

func newTestManager(t *testing.T, backend *fakeBackend) (*Manager, *txcache.Cache) {
	t.Helper()
	cache := txcache.New(walletAddr, nil, nil)
	m := NewManager(backend, cache, walletAddr, "Corner Cafe", 10*time.Millisecond, nil)
	t.Cleanup(m.Close)
	return m, cache
}

func TestCreateRequestValidation(t *testing.T) {
	m, _ := newTestManager(t, &fakeBackend{createID: "p1"})

	for _, amount := range []string{"", "abc", "0", "-3.50", "0.00"} {
		if _, err := m.CreateRequest(context.Background(), amount); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %q: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestCreateRequest(t *testing.T) {
	backend := &fakeBackend{createID: "p1", status: model.StatusPending}
	m, cache := newTestManager(t, backend)

	req, err := m.CreateRequest(context.Background(), "12.5")
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if req.PaymentID != "p1" {
		t.Fatalf("payment_id %q", req.PaymentID)
	}
	if req.PriceUSD != "12.50" {
		t.Fatalf("price %q, want normalized 12.50", req.PriceUSD)
	}
	if req.Status != model.StatusPending {
		t.Fatalf("status %s", req.Status)
	}

	if !cache.Has("p1") {
		t.Fatal("created request must land in the pending cache")
	}

	active, tier, completed := m.Active()
	if active == nil || active.PaymentID != "p1" {
		t.Fatal("created request must become the active request")
	}
	if tier != common.TierWaiting {
		t.Fatalf("fresh request tier %s", tier)
	}
	if completed {
		t.Fatal("completed flag set on a fresh request")
	}
}

func TestCreateRequestBackendFailure(t *testing.T) {
	backend := &fakeBackend{createErr: errors.New("rejected")}
	m, _ := newTestManager(t, backend)

	if _, err := m.CreateRequest(context.Background(), "5.00"); !errors.Is(err, ErrCreateFailed) {
		t.Fatalf("expected ErrCreateFailed, got %v", err)
	}
	if active, _, _ := m.Active(); active != nil {
		t.Fatal("failed create left an active request behind")
	}
}

func TestPollingReachesTerminal(t *testing.T) {
	backend := &fakeBackend{createID: "p1", status: model.StatusPending}
	m, cache := newTestManager(t, backend)

	terminal := make(chan model.PaymentRequest, 1)
	m.OnTerminal(func(req model.PaymentRequest) { terminal <- req })

	if _, err := m.CreateRequest(context.Background(), "5.00"); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	backend.setStatus(model.StatusCompleted)

	select {
	case req := <-terminal:
		if req.Status != model.StatusCompleted {
			t.Fatalf("terminal callback status %s", req.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("polling never observed the terminal status")
	}

	active, _, completed := m.Active()
	if active == nil || active.Status != model.StatusCompleted {
		t.Fatal("active request should carry the terminal status")
	}
	if !completed {
		t.Fatal("completed flag not set")
	}

	entry, _ := cache.Get("p1")
	if entry.Status != model.StatusCompleted {
		t.Fatalf("cache status %s, want completed", entry.Status)
	}

	// Polling stops at terminal: the call count settles.
	time.Sleep(50 * time.Millisecond)
	backend.mu.Lock()
	calls := backend.getCalls
	backend.mu.Unlock()
	time.Sleep(50 * time.Millisecond)
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.getCalls != calls {
		t.Fatal("polling continued after terminal status")
	}
}

func TestPollingSurvivesTransientErrors(t *testing.T) {
	backend := &fakeBackend{createID: "p1", getErr: errors.New("timeout")}
	m, _ := newTestManager(t, backend)

	if _, err := m.CreateRequest(context.Background(), "5.00"); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	// Let a few failing polls pass, then recover with a terminal status.
	time.Sleep(50 * time.Millisecond)
	backend.mu.Lock()
	backend.getErr = nil
	backend.status = model.StatusFailed
	backend.mu.Unlock()

	deadline := time.After(2 * time.Second)
	for {
		active, _, _ := m.Active()
		if active != nil && active.Status == model.StatusFailed {
			break
		}
		select {
		case <-deadline:
			t.Fatal("polling never recovered after transient errors")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestDeleteRequestLocalFirst(t *testing.T) {
	backend := &fakeBackend{createID: "p1", status: model.StatusPending, cancelErr: errors.New("backend down")}
	m, cache := newTestManager(t, backend)

	if _, err := m.CreateRequest(context.Background(), "5.00"); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	err := m.DeleteRequest(context.Background(), "p1")
	if !errors.Is(err, ErrDeleteFailed) {
		t.Fatalf("expected ErrDeleteFailed, got %v", err)
	}

	// Backend failure or not, the request is gone locally and stays gone.
	if active, _, _ := m.Active(); active != nil {
		t.Fatal("active request survived a delete")
	}
	if cache.Has("p1") {
		t.Fatal("cache entry survived a delete")
	}
}

func TestClearActiveRequest(t *testing.T) {
	backend := &fakeBackend{createID: "p1", status: model.StatusPending}
	m, _ := newTestManager(t, backend)

	if _, err := m.CreateRequest(context.Background(), "5.00"); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	m.ClearActiveRequest()
	if active, _, _ := m.Active(); active != nil {
		t.Fatal("active request survived ClearActiveRequest")
	}
	backend.mu.Lock()
	defer backend.mu.Unlock()
	if backend.cancelCalls != 0 {
		t.Fatal("ClearActiveRequest must not call the backend")
	}

	// Safe to call again on an idle manager.
	m.ClearActiveRequest()
}

func TestCreateReplacesActive(t *testing.T) {
	backend := &fakeBackend{createID: "p1", status: model.StatusPending}
	m, _ := newTestManager(t, backend)

	if _, err := m.CreateRequest(context.Background(), "5.00"); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	backend.mu.Lock()
	backend.createID = "p2"
	backend.mu.Unlock()

	if _, err := m.CreateRequest(context.Background(), "6.00"); err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	active, _, _ := m.Active()
	if active == nil || active.PaymentID != "p2" {
		t.Fatal("second create must replace the active request")
	}
}
