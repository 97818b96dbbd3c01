package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/AlexZinkM/pocket-wallet/internal/client"
	"github.com/AlexZinkM/pocket-wallet/internal/config"
	"github.com/AlexZinkM/pocket-wallet/internal/model"
	"github.com/AlexZinkM/pocket-wallet/wallet"
)

// Handler serves the local wallet API. The session is opened lazily: wallet
// generation/restore must work before any wallet file exists.
type Handler struct {
	filePath string
	backend  *client.Backend

	mu   sync.Mutex
	sess *wallet.Session
}

// New creates a Handler with config values.
func New() (*Handler, error) {
	filePath := config.GetWalletFilePath()
	if filePath == "" {
		return nil, errors.New("WALLET_FILE_PATH not set")
	}

	h := &Handler{
		filePath: filePath,
		backend:  client.NewBackend(config.GetBackendAPIURL(), config.GetHTTPTimeout()),
	}

	// Open eagerly when a wallet already exists so polling/sync start at boot.
	if info, err := os.Stat(filePath); err == nil && info.Size() > 0 {
		if _, err := h.session(); err != nil {
			return nil, err
		}
	}

	return h, nil
}

// session returns the open wallet session, opening it on first use.
func (h *Handler) session() (*wallet.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sess != nil {
		return h.sess, nil
	}

	sess, err := wallet.NewSession(wallet.SessionConfig{
		WalletFilePath: h.filePath,
		Backend:        h.backend,
		Password:       config.GetWalletPasswordBytes,
		VendorName:     config.GetVendorName(),
		PollInterval:   config.GetPollInterval(),
		SyncInterval:   config.GetSyncInterval(),
	})
	if err != nil {
		return nil, err
	}

	h.sess = sess
	return sess, nil
}

// Close shuts down the wallet session, cancelling polling and sync loops.
func (h *Handler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sess != nil {
		h.sess.Close()
		h.sess = nil
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError writes the consistent JSON error envelope.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}
