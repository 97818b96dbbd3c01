package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Note: Password is prompted at runtime and stored in memory - use GetWalletPasswordBytes()
type Config struct {
	Env            string        `envconfig:"ENV" default:"development"`
	Port           string        `envconfig:"PORT" default:"8080"`
	WalletFilePath string        `envconfig:"WALLET_FILE_PATH" required:"true"`
	BackendAPIURL  string        `envconfig:"BACKEND_API_URL" required:"true"`
	HTTPTimeout    time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	PollInterval   time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	SyncInterval   time.Duration `envconfig:"SYNC_INTERVAL" default:"30s"`
	VendorName     string        `envconfig:"VENDOR_NAME" default:""`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	cfg = &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetEnv returns environment name from configuration
func GetEnv() string {
	return Get().Env
}

// GetPort returns port from configuration
func GetPort() string {
	return Get().Port
}

// GetWalletFilePath returns path to the .pwt wallet file from configuration
func GetWalletFilePath() string {
	return Get().WalletFilePath
}

// GetBackendAPIURL returns the payment backend base URL from configuration
func GetBackendAPIURL() string {
	return Get().BackendAPIURL
}

// GetHTTPTimeout returns the per-request timeout for backend calls
func GetHTTPTimeout() time.Duration {
	return Get().HTTPTimeout
}

// GetPollInterval returns the payment status polling interval
func GetPollInterval() time.Duration {
	return Get().PollInterval
}

// GetSyncInterval returns the pending cache sync interval
func GetSyncInterval() time.Duration {
	return Get().SyncInterval
}

// GetVendorName returns the display name sent with created payment requests
func GetVendorName() string {
	return Get().VendorName
}

var passwordBytes []byte

// PromptForPassword prompts the user for the wallet password in the terminal.
// The password is read without echoing (hidden input) and stored in memory.
// Call this at startup before the server begins handling requests.
func PromptForPassword() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, "Enter wallet password: ")
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return errors.New("password cannot be empty")
	}

	passwordBytes = make([]byte, len(raw))
	copy(passwordBytes, raw)
	clear(raw)
	return nil
}

// GetWalletPasswordBytes returns the password stored in memory (from PromptForPassword).
// Returns an error if the password was not set.
// Caller must zero the returned slice after use for security.
func GetWalletPasswordBytes() ([]byte, error) {
	if len(passwordBytes) == 0 {
		return nil, errors.New("password not set: call PromptForPassword at startup")
	}
	out := make([]byte, len(passwordBytes))
	copy(out, passwordBytes)
	return out, nil
}
