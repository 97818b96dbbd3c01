package wallet

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/AlexZinkM/pocket-wallet/internal/crypto"
	"github.com/AlexZinkM/pocket-wallet/internal/identity"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestGenerateWallet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.pwt")
	password := []byte("pw")

	address, mnemonic, err := GenerateWallet(path, password)
	if err != nil {
		t.Fatalf("GenerateWallet: %v", err)
	}
	if got := len(strings.Fields(mnemonic)); got != 12 {
		t.Fatalf("expected 12-word mnemonic, got %d words", got)
	}
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		t.Fatalf("address %q is not a valid base58 pubkey: %v", address, err)
	}

	// The address and QR are readable without the password.
	stored, err := crypto.ReadWalletAddress(path)
	if err != nil {
		t.Fatalf("ReadWalletAddress: %v", err)
	}
	if stored != address {
		t.Fatalf("stored address %q, want %q", stored, address)
	}
	qr, err := crypto.ReadWalletQR(path)
	if err != nil {
		t.Fatalf("ReadWalletQR: %v", err)
	}
	if qr == "" {
		t.Fatal("empty QR code")
	}

	// The mnemonic round-trips to the same address.
	keyPair, err := identity.DeriveKeyPair(mnemonic)
	if err != nil {
		t.Fatalf("DeriveKeyPair: %v", err)
	}
	if keyPair.Address() != address {
		t.Fatal("returned mnemonic does not derive the stored address")
	}
}

func TestGenerateWalletRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.pwt")
	if _, _, err := GenerateWallet(path, []byte("pw")); err != nil {
		t.Fatalf("GenerateWallet: %v", err)
	}

	_, _, err := GenerateWallet(path, []byte("pw"))
	if !IsFileExistsError(err) {
		t.Fatalf("expected FileExistsError, got %v", err)
	}
}

func TestGenerateWalletExtension(t *testing.T) {
	if _, _, err := GenerateWallet(filepath.Join(t.TempDir(), "wallet.json"), []byte("pw")); err == nil {
		t.Fatal("non-.pwt path accepted")
	}
}

func TestRestoreWallet(t *testing.T) {
	dir := t.TempDir()

	address, err := RestoreWallet(filepath.Join(dir, "a.pwt"), testMnemonic, []byte("pw"))
	if err != nil {
		t.Fatalf("RestoreWallet: %v", err)
	}

	// Restoring the same phrase elsewhere yields the same identity.
	again, err := RestoreWallet(filepath.Join(dir, "b.pwt"), testMnemonic, []byte("other"))
	if err != nil {
		t.Fatalf("RestoreWallet: %v", err)
	}
	if address != again {
		t.Fatalf("same mnemonic restored to different addresses: %s vs %s", address, again)
	}
}

func TestRestoreWalletInvalidMnemonic(t *testing.T) {
	bad := strings.Replace(testMnemonic, "about", "abandon", 1)
	_, err := RestoreWallet(filepath.Join(t.TempDir(), "wallet.pwt"), bad, []byte("pw"))
	if !errors.Is(err, identity.ErrInvalidMnemonic) {
		t.Fatalf("expected ErrInvalidMnemonic, got %v", err)
	}
}
