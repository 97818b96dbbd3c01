package sign

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"

	"github.com/AlexZinkM/pocket-wallet/internal/model"
)

// ErrMalformedPayload means the bytes do not decode into a valid
// DebitAllowancePayload. Never attempt to repair a malformed payload.
var ErrMalformedPayload = errors.New("malformed payload")

// Serialize produces the canonical byte encoding of a payload: Borsh, with
// the struct's fixed field order and integer widths. Signatures are computed
// over exactly these bytes, and the backend recomputes them to verify, so the
// encoding must never change shape silently.
func Serialize(payload model.DebitAllowancePayload) ([]byte, error) {
	data, err := bin.MarshalBorsh(&payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize payload: %w", err)
	}
	return data, nil
}

// Parse decodes canonical payload bytes. Parse(Serialize(x)) == x for all
// valid x.
func Parse(data []byte) (model.DebitAllowancePayload, error) {
	if len(data) == 0 {
		return model.DebitAllowancePayload{}, fmt.Errorf("%w: empty input", ErrMalformedPayload)
	}

	var payload model.DebitAllowancePayload
	if err := bin.UnmarshalBorsh(&payload, data); err != nil {
		return model.DebitAllowancePayload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if payload.PaymentID == "" || payload.Debited == "" {
		return model.DebitAllowancePayload{}, fmt.Errorf("%w: missing payment_id or debited address", ErrMalformedPayload)
	}

	return payload, nil
}
