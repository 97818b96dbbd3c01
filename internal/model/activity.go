package model

import "time"

// ActivityKind discriminates the settled-activity union.
type ActivityKind string

const (
	ActivityTransaction ActivityKind = "transaction"
	ActivityDeposit     ActivityKind = "deposit"
)

// HistoryActivity is one immutable entry of the settled-activity feed.
// Transactions are keyed by payment_id; deposits get a synthetic key because
// the backend does not assign them one.
type HistoryActivity struct {
	Key          string       `json:"key"`
	Kind         ActivityKind `json:"kind"`
	PaymentID    string       `json:"payment_id,omitempty"`
	Counterparty string       `json:"counterparty,omitempty"`
	VendorName   string       `json:"vendor_name,omitempty"`
	AmountUSD    string       `json:"amount_usd"`
	Status       string       `json:"status"`
	Timestamp    time.Time    `json:"timestamp"`
}

// Deposit is a settled inbound top-up as the backend reports it. Deposits
// carry no payment_id.
type Deposit struct {
	FromAddress string `json:"from_address"`
	AmountUSD   string `json:"amount_usd"`
	CreatedAt   int64  `json:"created_at"` // raw backend value: epoch seconds OR milliseconds
}

// ActivityPage is the backend's settled-activity response for one wallet.
type ActivityPage struct {
	Transactions []PaymentRequest `json:"transactions"`
	Deposits     []Deposit        `json:"deposits"`
}

// HistoryResponse is the response for GET /transactions
type HistoryResponse struct {
	Address    string            `json:"address"`
	Activities []HistoryActivity `json:"activities"`
}
