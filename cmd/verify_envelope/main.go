// One-off: check a signed transaction envelope offline. Reads the envelope
// JSON from a file, re-serializes the payload and verifies the ed25519
// signature against the embedded pubkey.
// Usage: go run ./cmd/verify_envelope <envelope.json>
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AlexZinkM/pocket-wallet/internal/model"
	"github.com/AlexZinkM/pocket-wallet/internal/sign"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: verify_envelope <envelope.json>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var envelope model.SignedTransactionEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		fmt.Fprintln(os.Stderr, "invalid envelope JSON:", err)
		os.Exit(1)
	}

	message, err := sign.Serialize(envelope.Payload)
	if err != nil {
		fmt.Fprintln(os.Stderr, "serialize failed:", err)
		os.Exit(1)
	}

	pubkey, err := solana.PublicKeyFromBase58(envelope.Signature.Ed25519.Pubkey)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid pubkey:", err)
		os.Exit(1)
	}

	sig, err := base58.Decode(envelope.Signature.Ed25519.Signature)
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid signature encoding:", err)
		os.Exit(1)
	}

	if !sign.Verify(message, sig, pubkey) {
		fmt.Fprintln(os.Stderr, "signature INVALID")
		os.Exit(1)
	}

	fmt.Printf("signature OK (payment_id=%s, debited=%s)\n",
		envelope.Payload.PaymentID, envelope.Payload.Debited)
}
