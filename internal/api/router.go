package api

import (
	"net/http"

	"github.com/AlexZinkM/pocket-wallet/internal/handler"

	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter() (http.Handler, *handler.Handler, error) {
	walletHandler, err := handler.New()
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Wallet endpoints
	mux.HandleFunc("/wallet/generate", walletHandler.Generate)
	mux.HandleFunc("/wallet/restore", walletHandler.Restore)
	mux.HandleFunc("/wallet/address", walletHandler.Address)

	// Payment endpoints
	mux.HandleFunc("/payments", walletHandler.CreatePayment)
	mux.HandleFunc("/payments/active", walletHandler.ActiveOrCancel)
	mux.HandleFunc("/payments/pending", walletHandler.PendingPayments)
	mux.HandleFunc("/payments/sign", walletHandler.SignPayment)

	// Transaction history
	mux.HandleFunc("/transactions", walletHandler.TransactionHistory)

	return mux, walletHandler, nil
}
