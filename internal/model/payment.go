package model

import (
	"encoding/json"
	"strings"
)

// PaymentStatus is the backend-reported lifecycle status of a payment request.
// Backends are inconsistent about casing ("Completed" vs "completed"), so
// always go through ParseStatus instead of comparing raw strings.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusCalculated PaymentStatus = "calculated"
	StatusCompleted  PaymentStatus = "completed"
	StatusFailed     PaymentStatus = "failed"
	StatusCancelled  PaymentStatus = "cancelled"
	StatusExpired    PaymentStatus = "expired"
)

// ParseStatus normalizes a backend status string (case-insensitive).
// Unknown values are passed through lowercased so they can still be displayed.
func ParseStatus(s string) PaymentStatus {
	return PaymentStatus(strings.ToLower(strings.TrimSpace(s)))
}

// Terminal reports whether the status is final. Terminal statuses never
// regress: once a cached request is terminal, later syncs cannot revive it.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// PaymentRequest is a vendor-initiated, backend-tracked invoice awaiting
// payment. payment_id is the join key across the pending cache and history.
type PaymentRequest struct {
	PaymentID       string          `json:"payment_id"`
	VendorAddress   string          `json:"vendor_address"`
	VendorName      string          `json:"vendor_name,omitempty"`
	CustomerAddress string          `json:"customer_address,omitempty"`
	PriceUSD        string          `json:"price_usd"`
	Status          PaymentStatus   `json:"status"`
	CreatedAt       int64           `json:"created_at"` // raw backend value: epoch seconds OR milliseconds
	PaymentBundle   json.RawMessage `json:"payment_bundle,omitempty"`
}

// UnmarshalJSON normalizes the status casing on the way in.
func (p *PaymentRequest) UnmarshalJSON(data []byte) error {
	type alias PaymentRequest
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	a.Status = ParseStatus(string(a.Status))
	*p = PaymentRequest(a)
	return nil
}

// CreatePaymentRequest is the body for POST /payments
type CreatePaymentRequest struct {
	AmountUSD string `json:"amount_usd"`
}

// CreatePaymentResponse is the response for POST /payments
type CreatePaymentResponse struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

// ActivePaymentResponse is the response for GET /payments/active
type ActivePaymentResponse struct {
	Active    bool            `json:"active"`
	Request   *PaymentRequest `json:"request,omitempty"`
	Staleness string          `json:"staleness,omitempty"`
	Completed bool            `json:"completed"`
}
