package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/AlexZinkM/pocket-wallet/internal/client"
	"github.com/AlexZinkM/pocket-wallet/internal/crypto"
	"github.com/AlexZinkM/pocket-wallet/internal/history"
	"github.com/AlexZinkM/pocket-wallet/internal/logger"
	"github.com/AlexZinkM/pocket-wallet/internal/model"
	"github.com/AlexZinkM/pocket-wallet/internal/payment"
	"github.com/AlexZinkM/pocket-wallet/internal/sign"
	"github.com/AlexZinkM/pocket-wallet/internal/txcache"
)

// PasswordFunc supplies the wallet password on demand. The session zeroes the
// returned slice after each use.
type PasswordFunc func() ([]byte, error)

// SessionConfig carries the injected dependencies for one wallet session.
// Everything is explicit so tests can build isolated sessions - no hidden
// singletons beyond config and the logger.
type SessionConfig struct {
	WalletFilePath string
	Backend        *client.Backend
	Password       PasswordFunc
	VendorName     string
	PollInterval   time.Duration
	SyncInterval   time.Duration
	Clock          func() time.Time
}

// Session is the engine for one unlocked wallet: pending cache, payment
// request manager, history store and transaction signer wired to a single
// wallet identity. Create on unlock, Close on logout.
type Session struct {
	address  string
	filePath string
	password PasswordFunc

	Cache   *txcache.Cache
	Manager *payment.Manager
	History *history.Store
	Signer  *sign.Signer

	cancelSync context.CancelFunc
	closeOnce  sync.Once
}

// NewSession opens a session for the wallet stored at cfg.WalletFilePath.
// The wallet file must already exist; the address is read without decryption.
func NewSession(cfg SessionConfig) (*Session, error) {
	address, err := crypto.ReadWalletAddress(cfg.WalletFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet address: %w", err)
	}
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return nil, fmt.Errorf("wallet file holds an invalid address: %w", err)
	}

	s := &Session{
		address:  address,
		filePath: cfg.WalletFilePath,
		password: cfg.Password,
	}

	s.Cache = txcache.New(address, cfg.Backend, cfg.Clock)
	s.Manager = payment.NewManager(cfg.Backend, s.Cache, address, cfg.VendorName, cfg.PollInterval, cfg.Clock)
	s.History = history.NewStore(address, cfg.Backend, s.Cache)
	s.Signer = sign.NewSigner(cfg.Backend, &fileKeySource{filePath: cfg.WalletFilePath, password: cfg.Password})

	// A finished request should show up in the pending cache promptly, not
	// only on the next periodic tick.
	s.Manager.OnTerminal(func(req model.PaymentRequest) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Cache.SyncTransactions(ctx)
	})

	syncInterval := cfg.SyncInterval
	if syncInterval <= 0 {
		syncInterval = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelSync = cancel
	go s.syncLoop(ctx, syncInterval)

	logger.Info("wallet session opened", zap.String("address", address))
	return s, nil
}

// Address returns the wallet address (base58 public key).
func (s *Session) Address() string {
	return s.address
}

// Close tears the session down: payment polling and the periodic cache sync
// are cancelled, not just abandoned. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.Manager.Close()
		if s.cancelSync != nil {
			s.cancelSync()
		}
		s.Cache.ClearAll()
		logger.Info("wallet session closed", zap.String("address", s.address))
	})
}

// syncLoop refreshes the pending cache until the session closes. Failures
// keep the last known good cache and are retried on the next tick.
func (s *Session) syncLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		syncCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		_ = s.Cache.SyncTransactions(syncCtx)
		cancel()
	}
}

// fileKeySource decrypts the wallet file on demand to resolve the private
// key. The password copy and the decrypted mnemonic are wiped per call.
type fileKeySource struct {
	filePath string
	password PasswordFunc
}

func (f *fileKeySource) PrivateKey() (solana.PrivateKey, error) {
	passwordBytes, err := f.password()
	if err != nil {
		return nil, err
	}
	defer clear(passwordBytes)

	_, walletData, err := crypto.DecryptWallet(f.filePath, passwordBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt wallet: %w", err)
	}
	clearString(&walletData.Mnemonic)

	if len(walletData.PrivateKey) != 64 {
		clear(walletData.PrivateKey)
		return nil, fmt.Errorf("invalid private key length")
	}

	return solana.PrivateKey(walletData.PrivateKey), nil
}

// clearString drops the string's backing reference; Go strings are immutable
// so this is best-effort hygiene, not a guaranteed wipe.
func clearString(s *string) {
	*s = ""
}
