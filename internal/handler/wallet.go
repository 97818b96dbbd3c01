package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/pocket-wallet/internal/config"
	"github.com/AlexZinkM/pocket-wallet/internal/crypto"
	"github.com/AlexZinkM/pocket-wallet/internal/identity"
	"github.com/AlexZinkM/pocket-wallet/internal/model"
	"github.com/AlexZinkM/pocket-wallet/wallet"
)

// Generate handles POST /wallet/generate
// @Summary      Generate new wallet
// @Description  Generates a new mnemonic wallet and saves it encrypted to a .pwt file
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Success      200  {object}  model.GenerateWalletResponse
// @Router       /wallet/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	// Get password as []byte, use it, then zero it immediately
	passwordBytes, err := config.GetWalletPasswordBytes()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer clear(passwordBytes) // Always clear password from memory

	address, mnemonic, err := wallet.GenerateWallet(h.filePath, passwordBytes)
	if err != nil {
		if wallet.IsFileExistsError(err) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, model.GenerateWalletResponse{
		Success:  true,
		Message:  "Wallet generated successfully. Back up the mnemonic now - it is not shown again.",
		Address:  address,
		Mnemonic: mnemonic,
	})
}

// Restore handles POST /wallet/restore
// @Summary      Restore wallet from mnemonic
// @Description  Derives the key pair from a 12-word phrase and saves it encrypted to a .pwt file
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.RestoreWalletRequest  true  "Mnemonic phrase"
// @Success      200      {object}  model.GenerateWalletResponse
// @Router       /wallet/restore [post]
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.RestoreWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Mnemonic == "" {
		writeError(w, http.StatusBadRequest, errors.New("mnemonic is required"))
		return
	}

	passwordBytes, err := config.GetWalletPasswordBytes()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer clear(passwordBytes) // Always clear password from memory

	address, err := wallet.RestoreWallet(h.filePath, req.Mnemonic, passwordBytes)
	if err != nil {
		switch {
		case wallet.IsFileExistsError(err):
			writeError(w, http.StatusConflict, err)
		case errors.Is(err, identity.ErrInvalidMnemonic):
			writeError(w, http.StatusBadRequest, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, model.GenerateWalletResponse{
		Success: true,
		Message: "Wallet restored successfully",
		Address: address,
	})
}

// Address handles GET /wallet/address
// @Summary      Get wallet address
// @Description  Reads the wallet address and its QR code without decryption
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.AddressResponse
// @Router       /wallet/address [get]
func (h *Handler) Address(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	address, err := crypto.ReadWalletAddress(h.filePath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	qr, err := crypto.ReadWalletQR(h.filePath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AddressResponse{
		Address: address,
		QR:      qr,
	})
}
