package crypto

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/AlexZinkM/pocket-wallet/internal/model"
)

func testWalletData() *model.WalletData {
	return &model.WalletData{
		Mnemonic:   "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about",
		PrivateKey: bytes.Repeat([]byte{0x42}, 64),
		CreatedAt:  "2026-08-28T12:00:00Z",
	}
}

func TestEncryptDecryptRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.pwt")
	password := []byte("correct horse")
	data := testWalletData()

	if err := EncryptWallet(path, "mainnet", "addr123", "qr-base64", data, password); err != nil {
		t.Fatalf("EncryptWallet: %v", err)
	}

	pwt, decrypted, err := DecryptWallet(path, password)
	if err != nil {
		t.Fatalf("DecryptWallet: %v", err)
	}

	if pwt.Network != "mainnet" || pwt.Address != "addr123" || pwt.QR != "qr-base64" {
		t.Fatalf("plaintext metadata mismatch: %+v", pwt)
	}
	if decrypted.Mnemonic != data.Mnemonic {
		t.Fatal("mnemonic did not survive the roundtrip")
	}
	if !bytes.Equal(decrypted.PrivateKey, data.PrivateKey) {
		t.Fatal("private key did not survive the roundtrip")
	}
	if decrypted.CreatedAt != data.CreatedAt {
		t.Fatal("createdAt did not survive the roundtrip")
	}
}

func TestDecryptWrongPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.pwt")
	if err := EncryptWallet(path, "mainnet", "addr123", "", testWalletData(), []byte("right")); err != nil {
		t.Fatalf("EncryptWallet: %v", err)
	}

	if _, _, err := DecryptWallet(path, []byte("wrong")); err == nil {
		t.Fatal("wrong password accepted")
	}
}

func TestReadWalletAddressWithoutPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallet.pwt")
	if err := EncryptWallet(path, "mainnet", "addr123", "qr-data", testWalletData(), []byte("pw")); err != nil {
		t.Fatalf("EncryptWallet: %v", err)
	}

	addr, err := ReadWalletAddress(path)
	if err != nil {
		t.Fatalf("ReadWalletAddress: %v", err)
	}
	if addr != "addr123" {
		t.Fatalf("address %q", addr)
	}

	qr, err := ReadWalletQR(path)
	if err != nil {
		t.Fatalf("ReadWalletQR: %v", err)
	}
	if qr != "qr-data" {
		t.Fatalf("qr %q", qr)
	}
}

func TestReadWalletFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		if _, err := readWalletFile(filepath.Join(dir, "nope.pwt")); err == nil {
			t.Fatal("missing file accepted")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.pwt")
		if err := os.WriteFile(path, nil, 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := readWalletFile(path); err == nil {
			t.Fatal("empty file accepted")
		}
	})

	t.Run("BOM stripped", func(t *testing.T) {
		path := filepath.Join(dir, "bom.pwt")
		content := append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"address":"a"}`)...)
		if err := os.WriteFile(path, content, 0600); err != nil {
			t.Fatal(err)
		}
		data, err := readWalletFile(path)
		if err != nil {
			t.Fatalf("readWalletFile: %v", err)
		}
		if !bytes.Equal(data, []byte(`{"address":"a"}`)) {
			t.Fatalf("BOM not stripped: %q", data)
		}
	})
}
