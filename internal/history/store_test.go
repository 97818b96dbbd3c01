package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/AlexZinkM/pocket-wallet/internal/model"
	"github.com/AlexZinkM/pocket-wallet/internal/txcache"
)

const walletAddr = "4fYNw3dojWmQ4dXtSGE9epjRGy9pFSx62YypT7avPYvA"

type fakeActivity struct {
	page *model.ActivityPage
	err  error
}

func (f *fakeActivity) GetActivity(ctx context.Context, address string, limit int) (*model.ActivityPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

func settledTx(id string, createdAt time.Time) model.PaymentRequest {
	return model.PaymentRequest{
		PaymentID:       id,
		VendorAddress:   "9aE476sH92Vz7DMPyq5WLPkrKWivxeuTKEFKd2sZZcde",
		VendorName:      "Corner Cafe",
		CustomerAddress: walletAddr,
		PriceUSD:        "7.25",
		Status:          model.StatusCompleted,
		CreatedAt:       createdAt.Unix(),
	}
}

func TestLoadTransactionHistory(t *testing.T) {
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	backend := &fakeActivity{page: &model.ActivityPage{
		Transactions: []model.PaymentRequest{
			settledTx("tx-old", base.Add(-2*time.Hour)),
			settledTx("tx-new", base.Add(-10*time.Minute)),
		},
		Deposits: []model.Deposit{
			{FromAddress: "depositor", AmountUSD: "100.00", CreatedAt: base.Add(-time.Hour).Unix()},
		},
	}}

	s := NewStore(walletAddr, backend, nil)
	activities, err := s.LoadTransactionHistory(context.Background(), 10)
	if err != nil {
		t.Fatalf("LoadTransactionHistory: %v", err)
	}

	if len(activities) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(activities))
	}

	t.Run("reverse chronological", func(t *testing.T) {
		for i := 1; i < len(activities); i++ {
			if activities[i].Timestamp.After(activities[i-1].Timestamp) {
				t.Fatalf("activities out of order at %d", i)
			}
		}
		if activities[0].PaymentID != "tx-new" {
			t.Fatalf("newest first should be tx-new, got %s", activities[0].PaymentID)
		}
	})

	t.Run("deposit interleaved", func(t *testing.T) {
		if activities[1].Kind != model.ActivityDeposit {
			t.Fatalf("middle activity should be the deposit, got %s", activities[1].Kind)
		}
		if !strings.HasPrefix(activities[1].Key, "deposit-") {
			t.Fatalf("deposit key %q lacks synthetic prefix", activities[1].Key)
		}
		if activities[1].Counterparty != "depositor" {
			t.Fatalf("deposit counterparty %q", activities[1].Counterparty)
		}
	})

	t.Run("counterparty is the other side", func(t *testing.T) {
		// This wallet is the customer, so the counterparty is the vendor.
		if activities[0].Counterparty != "9aE476sH92Vz7DMPyq5WLPkrKWivxeuTKEFKd2sZZcde" {
			t.Fatalf("counterparty %q", activities[0].Counterparty)
		}
	})
}

func TestLoadTransactionHistoryDedupes(t *testing.T) {
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	backend := &fakeActivity{page: &model.ActivityPage{
		Transactions: []model.PaymentRequest{
			settledTx("dup", base),
			settledTx("dup", base.Add(-time.Minute)),
			settledTx("other", base.Add(-2*time.Minute)),
		},
	}}

	s := NewStore(walletAddr, backend, nil)
	activities, err := s.LoadTransactionHistory(context.Background(), 10)
	if err != nil {
		t.Fatalf("LoadTransactionHistory: %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("expected duplicate payment_id collapsed to one, got %d activities", len(activities))
	}
}

func TestLoadTransactionHistoryLimit(t *testing.T) {
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	page := &model.ActivityPage{}
	for i := 0; i < 5; i++ {
		page.Transactions = append(page.Transactions,
			settledTx("tx-"+string(rune('a'+i)), base.Add(-time.Duration(i)*time.Minute)))
	}
	s := NewStore(walletAddr, &fakeActivity{page: page}, nil)

	activities, err := s.LoadTransactionHistory(context.Background(), 3)
	if err != nil {
		t.Fatalf("LoadTransactionHistory: %v", err)
	}
	if len(activities) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(activities))
	}
	if activities[0].PaymentID != "tx-a" {
		t.Fatalf("truncation must keep the newest, got %s first", activities[0].PaymentID)
	}

	if _, err := s.LoadTransactionHistory(context.Background(), 0); err == nil {
		t.Fatal("expected error for non-positive limit")
	}
}

func TestLoadTransactionHistoryReconcilesPending(t *testing.T) {
	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return base }

	pending := txcache.New(walletAddr, nil, now)
	pending.Put(model.PaymentRequest{
		PaymentID:     "settled",
		VendorAddress: walletAddr,
		Status:        model.StatusPending,
		CreatedAt:     base.Unix(),
	})
	pending.Put(model.PaymentRequest{
		PaymentID:     "still-pending",
		VendorAddress: walletAddr,
		Status:        model.StatusPending,
		CreatedAt:     base.Unix(),
	})

	backend := &fakeActivity{page: &model.ActivityPage{
		Transactions: []model.PaymentRequest{settledTx("settled", base)},
	}}
	s := NewStore(walletAddr, backend, pending)

	activities, err := s.LoadTransactionHistory(context.Background(), 10)
	if err != nil {
		t.Fatalf("LoadTransactionHistory: %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(activities))
	}

	if pending.Has("settled") {
		t.Fatal("settled payment must be dropped from the pending cache")
	}
	if !pending.Has("still-pending") {
		t.Fatal("unsettled payment must stay in the pending cache")
	}
}

func TestLoadTransactionHistoryBackendError(t *testing.T) {
	s := NewStore(walletAddr, &fakeActivity{err: errors.New("boom")}, nil)
	if _, err := s.LoadTransactionHistory(context.Background(), 10); err == nil {
		t.Fatal("expected backend error to propagate")
	}
}
