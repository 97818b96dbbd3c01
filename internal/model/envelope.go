package model

// TokenAmount is a single per-token debit amount inside an allowance payload.
// Amounts are kept in the token's smallest unit to avoid float precision loss.
type TokenAmount struct {
	Token  string `json:"token"`
	Amount uint64 `json:"amount"`
}

// DebitAllowancePayload is the unsigned transfer authorization. The signature
// is computed over its canonical Borsh serialization (fixed field order and
// integer widths), NOT over the JSON form - the backend recomputes the exact
// same bytes to verify.
//
// Field order is part of the wire format. Do not reorder.
type DebitAllowancePayload struct {
	Debited   string        `json:"debited_address"`  // payer, base58
	Credited  string        `json:"credited_address"` // vendor, base58
	Amounts   []TokenAmount `json:"token_amounts"`
	PriceUSD  string        `json:"price_usd"`
	PaymentID string        `json:"payment_id"`
	Timestamp int64         `json:"timestamp"`
}

// Ed25519Signature carries the signer's public key and the signature over the
// canonical payload bytes. Both are base58 encoded on the wire.
type Ed25519Signature struct {
	Pubkey    string `json:"pubkey"`
	Signature string `json:"signature"`
}

// EnvelopeSignature wraps the signature scheme tag the backend expects.
type EnvelopeSignature struct {
	Ed25519 Ed25519Signature `json:"Ed25519"`
}

// SignedTransactionEnvelope is the backend-ready signed authorization.
type SignedTransactionEnvelope struct {
	Payload   DebitAllowancePayload `json:"payload"`
	Signature EnvelopeSignature     `json:"signature"`
}

// PaymentDetails is the request context forwarded alongside the envelope when
// submitting a signed transaction.
type PaymentDetails struct {
	VendorAddress string `json:"vendor_address"`
	VendorName    string `json:"vendor_name"`
	PriceUSD      string `json:"price_usd"`
}
