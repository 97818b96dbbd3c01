package model

// PWTFile represents the .pwt wallet file structure. Address and QR are kept
// in plaintext so read-only paths never need the password.
type PWTFile struct {
	Network    string `json:"network"`
	Address    string `json:"address"`
	QR         string `json:"QR"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// WalletData represents decrypted wallet data.
// PrivateKey is the full 64-byte ed25519 key (stored as base64 in JSON);
// Mnemonic is kept so the key pair can be re-derived and the phrase re-shown
// during backup flows. Callers must clear both after use.
type WalletData struct {
	Mnemonic   string `json:"mnemonic"`
	PrivateKey []byte `json:"privateKey"`
	CreatedAt  string `json:"createdAt"`
}

// GenerateWalletResponse represents response for POST /wallet/generate and /wallet/restore.
// Mnemonic is returned exactly once, at creation time.
type GenerateWalletResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Address  string `json:"address,omitempty"`
	Mnemonic string `json:"mnemonic,omitempty"`
}

// RestoreWalletRequest represents request for POST /wallet/restore
type RestoreWalletRequest struct {
	Mnemonic string `json:"mnemonic" binding:"required"`
}

// AddressResponse represents response for GET /wallet/address
type AddressResponse struct {
	Address string `json:"address"`
	QR      string `json:"qr,omitempty"`
}
