package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AlexZinkM/pocket-wallet/internal/client"
	"github.com/AlexZinkM/pocket-wallet/internal/model"
)

const defaultHistoryLimit = 20

var errInvalidLimit = errors.New("limit must be a positive integer")

// TransactionHistory handles GET /transactions
// @Summary      Get transaction history
// @Description  Returns settled transactions and deposits merged into one reverse-chronological feed
// @Tags         transactions
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of activities (default 20)"
// @Success      200    {object}  model.HistoryResponse
// @Router       /transactions [get]
func (h *Handler) TransactionHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, errInvalidLimit)
			return
		}
		limit = n
	}

	sess, err := h.session()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	activities, err := sess.History.LoadTransactionHistory(r.Context(), limit)
	if err != nil {
		if client.IsNetworkError(err) {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, model.HistoryResponse{
		Address:    sess.Address(),
		Activities: activities,
	})
}
