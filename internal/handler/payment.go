package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AlexZinkM/pocket-wallet/internal/client"
	"github.com/AlexZinkM/pocket-wallet/internal/model"
	"github.com/AlexZinkM/pocket-wallet/internal/payment"
	"github.com/AlexZinkM/pocket-wallet/internal/sign"
)

// CreatePayment handles POST /payments
// @Summary      Create payment request
// @Description  Registers a payment request with the backend and starts status polling
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      model.CreatePaymentRequest  true  "Requested amount"
// @Success      200      {object}  model.CreatePaymentResponse
// @Router       /payments [post]
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess, err := h.session()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	created, err := sess.Manager.CreateRequest(r.Context(), req.AmountUSD)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, err)
		case client.IsNetworkError(err):
			writeError(w, http.StatusBadGateway, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, model.CreatePaymentResponse{
		PaymentID: created.PaymentID,
		Status:    string(created.Status),
	})
}

// ActiveOrCancel dispatches /payments/active by method.
func (h *Handler) ActiveOrCancel(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.ActivePayment(w, r)
	case http.MethodDelete:
		h.CancelActivePayment(w, r)
	default:
		http.Error(w, "Method not allowed. Should be GET or DELETE", http.StatusMethodNotAllowed)
	}
}

// ActivePayment handles GET /payments/active
// @Summary      Get active payment request
// @Description  Returns the active request, its staleness tier and the completion flag
// @Tags         payments
// @Produce      json
// @Success      200  {object}  model.ActivePaymentResponse
// @Router       /payments/active [get]
func (h *Handler) ActivePayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	sess, err := h.session()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	req, tier, completed := sess.Manager.Active()
	resp := model.ActivePaymentResponse{
		Active:    req != nil,
		Request:   req,
		Completed: completed,
	}
	if req != nil {
		resp.Staleness = string(tier)
	}
	writeJSON(w, http.StatusOK, resp)
}

// CancelActivePayment handles DELETE /payments/active
// @Summary      Cancel active payment request
// @Description  Clears local state immediately and requests backend cancellation
// @Tags         payments
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Router       /payments/active [delete]
func (h *Handler) CancelActivePayment(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	req, _, _ := sess.Manager.Active()
	if req == nil {
		writeError(w, http.StatusNotFound, payment.ErrNoActiveRequest)
		return
	}

	// Local state is already gone whatever the backend says; the error is
	// reported but nothing is resurrected.
	if err := sess.Manager.DeleteRequest(r.Context(), req.PaymentID); err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

// PendingPayments handles GET /payments/pending
// @Summary      List pending payment requests
// @Description  Syncs the pending cache on demand and returns the relevant in-flight entries
// @Tags         payments
// @Produce      json
// @Success      200  {array}  txcache.Entry
// @Router       /payments/pending [get]
func (h *Handler) PendingPayments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	sess, err := h.session()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	// Sync failures degrade to the last known good cache (fail-open reads).
	_ = sess.Cache.SyncTransactions(r.Context())

	writeJSON(w, http.StatusOK, sess.Cache.Active())
}

// SignPaymentRequest is the body for POST /payments/sign
type SignPaymentRequest struct {
	PaymentID     string          `json:"payment_id"`
	PaymentBundle json.RawMessage `json:"payment_bundle,omitempty"`
}

// SignPayment handles POST /payments/sign
// @Summary      Sign and submit a payment
// @Description  Signs the payment bundle with the wallet key and submits the envelope
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      SignPaymentRequest  true  "Payment to sign"
// @Success      200      {object}  client.SignAck
// @Router       /payments/sign [post]
func (h *Handler) SignPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req SignPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.PaymentID == "" {
		writeError(w, http.StatusBadRequest, errors.New("payment_id is required"))
		return
	}

	sess, err := h.session()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	bundle := req.PaymentBundle
	details := model.PaymentDetails{}
	if entry, ok := sess.Cache.Get(req.PaymentID); ok {
		if bundle == nil {
			bundle = entry.PaymentBundle
		}
		details = model.PaymentDetails{
			VendorAddress: entry.VendorAddress,
			VendorName:    entry.VendorName,
			PriceUSD:      entry.PriceUSD,
		}
	}
	if bundle == nil {
		writeError(w, http.StatusBadRequest, errors.New("no payment bundle available for this payment_id"))
		return
	}

	ack, err := sess.Signer.SignAndSend(r.Context(), req.PaymentID, bundle, details, sess.Address(), nil)
	if err != nil {
		switch {
		case errors.Is(err, sign.ErrNoPrivateKey):
			writeError(w, http.StatusUnauthorized, err)
		case errors.Is(err, sign.ErrInvalidTransactionData), errors.Is(err, sign.ErrMalformedPayload):
			writeError(w, http.StatusBadRequest, err)
		case client.IsNetworkError(err):
			writeError(w, http.StatusBadGateway, err)
		case client.IsSubmissionError(err):
			writeError(w, http.StatusUnprocessableEntity, err)
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	// The signer never touches local state; reflect the submission here.
	sess.Cache.ApplyStatus(req.PaymentID, model.ParseStatus(ack.Status))

	writeJSON(w, http.StatusOK, ack)
}
