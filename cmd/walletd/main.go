package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexZinkM/pocket-wallet/internal/api"
	"github.com/AlexZinkM/pocket-wallet/internal/config"
	"github.com/AlexZinkM/pocket-wallet/internal/logger"

	"go.uber.org/zap"
)

// @title        Pocket Wallet API
// @version      1.0
// @description  Local wallet daemon: key storage, payment requests, signing and history.
// @BasePath     /
func main() {
	if err := config.Init(); err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Init(config.GetEnv())
	defer logger.Sync()

	if err := config.PromptForPassword(); err != nil {
		logger.Fatal("wallet password required", zap.Error(err))
	}

	router, walletHandler, err := api.SetupRouter()
	if err != nil {
		logger.Fatal("failed to set up router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + config.GetPort(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("wallet daemon listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	// Stops polling and sync loops after in-flight requests drain.
	walletHandler.Close()
}
