package sign

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"github.com/AlexZinkM/pocket-wallet/internal/client"
	"github.com/AlexZinkM/pocket-wallet/internal/logger"
	"github.com/AlexZinkM/pocket-wallet/internal/model"
)

var (
	// ErrNoPrivateKey means no override was supplied and secure storage has
	// no key. Hard failure: there is no fallback key in production.
	ErrNoPrivateKey = errors.New("no private key available")

	// ErrInvalidTransactionData means the payment bundle is empty or does not
	// normalize to a single payload object.
	ErrInvalidTransactionData = errors.New("invalid transaction data")
)

// KeySource resolves the wallet's private key from secure storage.
// Implementations decrypt on demand; the signer clears the key after use.
type KeySource interface {
	PrivateKey() (solana.PrivateKey, error)
}

// Signer builds and submits signed transaction envelopes. It mutates no local
// state; callers update caches after a successful submission.
type Signer struct {
	backend *client.Backend
	keys    KeySource
}

// NewSigner creates a signer backed by the given backend and key source.
func NewSigner(backend *client.Backend, keys KeySource) *Signer {
	return &Signer{backend: backend, keys: keys}
}

// SignAndSend signs the payment bundle for paymentID and submits the envelope:
//  1. resolve the private key (override wins, else secure storage)
//  2. normalize rawData (object or single-element array)
//  3. sign: primary strict encode+sign, then a lenient parse->serialize->sign
//     as a sequential fallback (tolerates payload-shape drift)
//  4. build the envelope with the pubkey taken from the payload's debited address
//  5. submit envelope plus request context to the backend
func (s *Signer) SignAndSend(ctx context.Context, paymentID string, rawData json.RawMessage, details model.PaymentDetails, payerAddress string, privateKeyOverride solana.PrivateKey) (*client.SignAck, error) {
	privateKey := privateKeyOverride
	if privateKey == nil {
		if s.keys == nil {
			return nil, ErrNoPrivateKey
		}
		stored, err := s.keys.PrivateKey()
		if err != nil || len(stored) == 0 {
			return nil, fmt.Errorf("%w: %v", ErrNoPrivateKey, err)
		}
		privateKey = stored
		defer clear(privateKey)
	}

	raw, err := normalizeRawData(rawData)
	if err != nil {
		return nil, err
	}

	payload, sig, err := s.signPayload(raw, privateKey)
	if err != nil {
		return nil, err
	}

	// Envelope pubkey comes from the payload's debited address, not from the
	// resolved key - a mismatch must fail backend verification, not be papered
	// over locally.
	debitedPubkey, err := solana.PublicKeyFromBase58(payload.Debited)
	if err != nil {
		return nil, fmt.Errorf("%w: debited address is not a valid pubkey: %v", ErrInvalidTransactionData, err)
	}

	envelope := model.SignedTransactionEnvelope{
		Payload: payload,
		Signature: model.EnvelopeSignature{
			Ed25519: model.Ed25519Signature{
				Pubkey:    debitedPubkey.String(),
				Signature: base58.Encode(sig),
			},
		},
	}

	ack, err := s.backend.SubmitSignedTransaction(ctx, client.SignSubmission{
		PaymentID:         paymentID,
		SignedTransaction: []model.SignedTransactionEnvelope{envelope},
		VendorAddress:     details.VendorAddress,
		VendorName:        details.VendorName,
		PriceUSD:          details.PriceUSD,
		PaymentBundle:     raw,
		PayerAddress:      payerAddress,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("signed transaction submitted",
		zap.String("payment_id", paymentID),
		zap.String("payer", payerAddress))
	return ack, nil
}

// signPayload runs the dual signing path. Primary: strict decode of the
// bundle, Borsh-encode+sign in one step. Fallback, only after the primary
// fails: lenient decode that tolerates fields this client does not know
// about, then explicit Parse of re-encoded canonical bytes, Serialize, Sign.
// The fallback exists because backend payload shapes have drifted before -
// a backend that grows its bundle must not block signing until the app
// updates. Strictly sequential, never concurrent.
func (s *Signer) signPayload(raw json.RawMessage, privateKey solana.PrivateKey) (model.DebitAllowancePayload, []byte, error) {
	payload, sig, primaryErr := encodeAndSign(raw, privateKey)
	if primaryErr == nil {
		return payload, sig, nil
	}

	logger.Warn("primary signing path failed, trying lenient codec path",
		zap.Error(primaryErr))

	payload, err := decodePayloadLenient(raw)
	if err != nil {
		return model.DebitAllowancePayload{}, nil, err
	}

	canonical, err := Serialize(payload)
	if err != nil {
		return model.DebitAllowancePayload{}, nil, err
	}

	parsed, err := Parse(canonical)
	if err != nil {
		return model.DebitAllowancePayload{}, nil, err
	}

	canonical, err = Serialize(parsed)
	if err != nil {
		return model.DebitAllowancePayload{}, nil, err
	}

	sig, err = Sign(canonical, privateKey)
	if err != nil {
		return model.DebitAllowancePayload{}, nil, err
	}

	return parsed, sig, nil
}

// encodeAndSign is the primary path: JSON-decoded payload straight to Borsh
// bytes and signature in a single step.
func encodeAndSign(raw json.RawMessage, privateKey solana.PrivateKey) (model.DebitAllowancePayload, []byte, error) {
	payload, err := decodePayload(raw)
	if err != nil {
		return model.DebitAllowancePayload{}, nil, err
	}

	canonical, err := bin.MarshalBorsh(&payload)
	if err != nil {
		return model.DebitAllowancePayload{}, nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	sig, err := Sign(canonical, privateKey)
	if err != nil {
		return model.DebitAllowancePayload{}, nil, err
	}
	return payload, sig, nil
}

// decodePayload strictly decodes a payment bundle into a payload. Unknown
// fields fail here and push the signer onto the fallback path.
func decodePayload(raw json.RawMessage) (model.DebitAllowancePayload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var payload model.DebitAllowancePayload
	if err := dec.Decode(&payload); err != nil {
		return model.DebitAllowancePayload{}, fmt.Errorf("%w: %v", ErrInvalidTransactionData, err)
	}
	return requirePayloadIdentity(payload)
}

// decodePayloadLenient decodes a payment bundle ignoring fields this client
// does not know. Fallback use only; the canonical bytes still cover exactly
// the fields the codec defines.
func decodePayloadLenient(raw json.RawMessage) (model.DebitAllowancePayload, error) {
	var payload model.DebitAllowancePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return model.DebitAllowancePayload{}, fmt.Errorf("%w: %v", ErrInvalidTransactionData, err)
	}
	return requirePayloadIdentity(payload)
}

func requirePayloadIdentity(payload model.DebitAllowancePayload) (model.DebitAllowancePayload, error) {
	if payload.PaymentID == "" || payload.Debited == "" {
		return model.DebitAllowancePayload{}, fmt.Errorf("%w: missing payment_id or debited address", ErrInvalidTransactionData)
	}
	return payload, nil
}

// normalizeRawData accepts either a payload object or a single-element array
// wrapping one (both shapes have been observed from the backend).
func normalizeRawData(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payment bundle", ErrInvalidTransactionData)
	}

	if trimmed[0] != '[' {
		return trimmed, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransactionData, err)
	}
	if len(items) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one payload, got %d", ErrInvalidTransactionData, len(items))
	}
	return items[0], nil
}
