// Package identity derives the wallet's single ed25519 key pair from a BIP39
// mnemonic. Derivation is pure: the same phrase always yields the same keys.
// There is no HD tree - exactly one key pair per mnemonic.
package identity

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/tyler-smith/go-bip39"
)

const (
	// 128 bits of entropy = 12 words
	mnemonicEntropyBits = 128
)

var (
	// ErrInvalidMnemonic means the phrase failed wordlist or checksum
	// validation. Fatal: never substitute a placeholder key.
	ErrInvalidMnemonic = errors.New("invalid mnemonic")

	// ErrDerivation means the phrase passed validation but seed derivation
	// still failed (malformed input).
	ErrDerivation = errors.New("key derivation failed")
)

// KeyPair holds the wallet's ed25519 keys. PrivateKey is the full 64-byte
// expanded key; callers must clear it after use.
type KeyPair struct {
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
}

// Address returns the wallet address: the base58-encoded public key.
func (k KeyPair) Address() string {
	return k.PublicKey.String()
}

// GenerateMnemonic generates a new CSPRNG-backed 12-word BIP39 phrase.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	return mnemonic, nil
}

// ValidateMnemonic checks the phrase against the wordlist and checksum.
func ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// DeriveKeyPair deterministically derives the wallet key pair from a
// mnemonic: compute the 512-bit BIP39 seed (empty passphrase), take the first
// 32 bytes as the ed25519 seed, expand to the full key pair.
func DeriveKeyPair(mnemonic string) (KeyPair, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return KeyPair{}, ErrInvalidMnemonic
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return KeyPair{}, fmt.Errorf("%w: %v", ErrDerivation, err)
	}
	defer clear(seed)

	if len(seed) < ed25519.SeedSize {
		return KeyPair{}, fmt.Errorf("%w: seed too short", ErrDerivation)
	}

	priv := ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])
	keyPair := KeyPair{
		PrivateKey: solana.PrivateKey(priv),
	}
	keyPair.PublicKey = keyPair.PrivateKey.PublicKey()

	return keyPair, nil
}
