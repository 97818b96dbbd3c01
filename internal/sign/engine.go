// Package sign implements the signing engine: ed25519 signature primitives,
// the canonical transaction codec, and the signer that turns a payment bundle
// into a backend-ready signed envelope.
//
// The signature scheme is RFC 8032 Ed25519. SHA-512 is fixed by the scheme
// itself, so the binding is a property of the package, not runtime state.
package sign

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrSignatureFailure means the signing primitive itself failed.
var ErrSignatureFailure = errors.New("signature failure")

// Sign signs message with the full 64-byte ed25519 private key.
func Sign(message []byte, privateKey solana.PrivateKey) ([]byte, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: invalid private key length %d", ErrSignatureFailure, len(privateKey))
	}

	sig, err := privateKey.Sign(message)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureFailure, err)
	}
	return sig[:], nil
}

// Verify reports whether sig is a valid signature of message by the holder
// of publicKey. Any flipped byte in message, signature or key fails.
func Verify(message, sig []byte, publicKey solana.PublicKey) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey[:]), message, sig)
}
