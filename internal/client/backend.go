package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/AlexZinkM/pocket-wallet/internal/model"
)

const defaultTimeout = 10 * time.Second

// Backend is a client for the payment backend API. All calls are bounded by
// the client timeout and the caller's context; failures map to NetworkError
// (transport) or SubmissionError (backend rejection).
type Backend struct {
	baseURL string
	client  *http.Client
}

// NewBackend creates a new backend client. timeout <= 0 falls back to the
// recommended 10s bound.
func NewBackend(baseURL string, timeout time.Duration) *Backend {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Backend{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreatePaymentRequest is the body for POST /api/payments
type CreatePaymentRequest struct {
	VendorAddress string `json:"vendor_address"`
	VendorName    string `json:"vendor_name,omitempty"`
	PriceUSD      string `json:"price_usd"`
}

type createPaymentResponse struct {
	PaymentID string `json:"payment_id"`
}

// CreatePayment registers a new payment request and returns its payment_id.
func (b *Backend) CreatePayment(ctx context.Context, req CreatePaymentRequest) (string, error) {
	var resp createPaymentResponse
	if err := b.do(ctx, http.MethodPost, "/api/payments", nil, req, &resp); err != nil {
		return "", err
	}
	if resp.PaymentID == "" {
		return "", &SubmissionError{StatusCode: http.StatusOK, Message: "backend returned empty payment_id"}
	}
	return resp.PaymentID, nil
}

// CancelPayment requests backend cancellation of an existing payment_id.
func (b *Backend) CancelPayment(ctx context.Context, paymentID string) error {
	path := fmt.Sprintf("/api/payments/%s", url.PathEscape(paymentID))
	return b.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// GetPayment fetches the current state of one payment request.
func (b *Backend) GetPayment(ctx context.Context, paymentID string) (*model.PaymentRequest, error) {
	path := fmt.Sprintf("/api/payments/%s", url.PathEscape(paymentID))
	var resp model.PaymentRequest
	if err := b.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPayments fetches the authoritative in-flight list for a party address.
func (b *Backend) ListPayments(ctx context.Context, partyAddress string) ([]model.PaymentRequest, error) {
	query := url.Values{"address": {partyAddress}}
	var resp struct {
		Payments []model.PaymentRequest `json:"payments"`
	}
	if err := b.do(ctx, http.MethodGet, "/api/payments", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Payments, nil
}

// SignSubmission is the body for POST /api/payments/{id}/sign.
// SignedTransaction is a JSON array containing exactly one envelope - the
// backend's expected shape.
type SignSubmission struct {
	PaymentID         string                            `json:"payment_id"`
	SignedTransaction []model.SignedTransactionEnvelope `json:"signed_transaction"`
	VendorAddress     string                            `json:"vendor_address"`
	VendorName        string                            `json:"vendor_name"`
	PriceUSD          string                            `json:"price_usd"`
	PaymentBundle     json.RawMessage                   `json:"payment_bundle"`
	PayerAddress      string                            `json:"payer_address"`
}

// SignAck is the backend's acknowledgement of a submitted envelope.
type SignAck struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

// SubmitSignedTransaction submits a signed envelope with its request context.
func (b *Backend) SubmitSignedTransaction(ctx context.Context, sub SignSubmission) (*SignAck, error) {
	path := fmt.Sprintf("/api/payments/%s/sign", url.PathEscape(sub.PaymentID))
	var ack SignAck
	if err := b.do(ctx, http.MethodPost, path, nil, sub, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// GetActivity fetches settled transactions and deposits for a wallet,
// bounded by limit.
func (b *Backend) GetActivity(ctx context.Context, address string, limit int) (*model.ActivityPage, error) {
	path := fmt.Sprintf("/wallet/%s/activity", url.PathEscape(address))
	query := url.Values{"limit": {fmt.Sprintf("%d", limit)}}
	var page model.ActivityPage
	if err := b.do(ctx, http.MethodGet, path, query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// do performs one JSON request/response round-trip against the backend.
func (b *Backend) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	reqURL := b.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &SubmissionError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// readErrorMessage extracts the backend's error message from a non-2xx body.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	var errResp model.ErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
		return errResp.Error
	}
	return string(data)
}
