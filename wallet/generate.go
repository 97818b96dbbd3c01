package wallet

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/skip2/go-qrcode"

	"github.com/AlexZinkM/pocket-wallet/internal/crypto"
	"github.com/AlexZinkM/pocket-wallet/internal/identity"
	"github.com/AlexZinkM/pocket-wallet/internal/model"
)

const (
	networkName = "pocket"
)

// FileExistsError is an error when file already exists and is not empty
type FileExistsError struct {
	Message string
}

func (e *FileExistsError) Error() string {
	return e.Message
}

// IsFileExistsError checks if error is FileExistsError
func IsFileExistsError(err error) bool {
	_, ok := err.(*FileExistsError)
	return ok
}

// GenerateWallet creates a new mnemonic, derives the key pair and saves the
// encrypted wallet to a .pwt file. Returns the address and the mnemonic -
// the only time the phrase is handed out.
// password must be []byte for security (caller should zero it after use)
func GenerateWallet(filePath string, password []byte) (address, mnemonic string, err error) {
	mnemonic, err = identity.GenerateMnemonic()
	if err != nil {
		return "", "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	address, err = writeWalletFile(filePath, mnemonic, password)
	if err != nil {
		return "", "", err
	}
	return address, mnemonic, nil
}

// RestoreWallet derives the key pair from an existing mnemonic and saves the
// encrypted wallet to a .pwt file.
// password must be []byte for security (caller should zero it after use)
func RestoreWallet(filePath, mnemonic string, password []byte) (address string, err error) {
	if !identity.ValidateMnemonic(mnemonic) {
		return "", identity.ErrInvalidMnemonic
	}
	return writeWalletFile(filePath, mnemonic, password)
}

// writeWalletFile derives keys from the mnemonic and encrypts everything into
// the wallet file, refusing to overwrite a non-empty file.
func writeWalletFile(filePath, mnemonic string, password []byte) (string, error) {
	// Check file extension (.pwt)
	ext := filepath.Ext(filePath) // e.g. "wallet.pwt" -> ".pwt"
	if ext != ".pwt" {
		return "", fmt.Errorf("file must have .pwt extension")
	}

	// Check file existence
	if fileInfo, err := os.Stat(filePath); err == nil {
		if fileInfo.Size() > 0 {
			return "", &FileExistsError{Message: "file is not empty"}
		}
	}

	keyPair, err := identity.DeriveKeyPair(mnemonic)
	if err != nil {
		return "", err
	}
	defer clear(keyPair.PrivateKey)

	address := keyPair.Address()

	// Generate QR code
	qrCode, err := generateQRCode(address)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	// Prepare wallet data - PrivateKey stored as []byte (will be base64 encoded in JSON)
	walletData := &model.WalletData{
		Mnemonic:   mnemonic,
		PrivateKey: keyPair.PrivateKey,
		CreatedAt:  time.Now().Format(time.RFC3339),
	}

	// Encrypt and write to file
	if err := crypto.EncryptWallet(filePath, networkName, address, qrCode, walletData, password); err != nil {
		return "", fmt.Errorf("failed to encrypt wallet: %w", err)
	}

	return address, nil
}

// generateQRCode generates QR code of address in base64
func generateQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	// Get PNG image
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	// Encode to base64
	return base64.StdEncoding.EncodeToString(png), nil
}
