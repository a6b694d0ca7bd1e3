package keystore

import (
	"context"

	"github.com/pkg/errors"
)

var (
	ErrInvalidPassphrase = errors.New("invalid keystore passphrase")
	ErrKeystoreExists    = errors.New("keystore already exists")
	ErrKeystoreNotFound  = errors.New("keystore not found")
)

// Service stores the mnemonic backing the local signer in an encrypted keystore file
type Service interface {
	// Create encrypts mnemonic with password and writes the keystore file
	Create(ctx context.Context, mnemonic string, password string) (*KeystoreJSON, error)

	// Load reads the keystore file and decrypts the mnemonic
	Load(ctx context.Context, password string) (string, error)

	// Exists checks if the keystore file exists
	Exists() (bool, error)
}

// KeystoreJSON mirrors the Ethereum keystore v3 JSON structure
//
//nolint:revive // KeystoreJSON is the standard name for Ethereum keystore JSON structure
type KeystoreJSON struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	Crypto  struct {
		Ciphertext   string `json:"ciphertext"`
		CipherParams struct {
			IV string `json:"iv"`
		} `json:"cipherparams"`
		Cipher    string `json:"cipher"`
		KDF       string `json:"kdf"`
		KDFParams struct {
			DKLen int    `json:"dklen"`
			Salt  string `json:"salt"`
			N     int    `json:"n"`
			R     int    `json:"r"`
			P     int    `json:"p"`
		} `json:"kdfparams"`
		MAC string `json:"mac"`
	} `json:"crypto"`
}

// ScryptParams defines scrypt KDF parameters
type ScryptParams struct {
	DKLen int // Derived key length (32 bytes)
	N     int // CPU/memory cost parameter
	R     int // Block size parameter
	P     int // Parallelization parameter
}

// DefaultScryptParams returns default scrypt parameters for Ethereum keystore v3
func DefaultScryptParams() ScryptParams {
	const (
		scryptDKLen = 32
		scryptN     = 262144 // 2^18
		scryptR     = 8
		scryptP     = 1
	)

	return ScryptParams{
		DKLen: scryptDKLen,
		N:     scryptN,
		R:     scryptR,
		P:     scryptP,
	}
}

// LightScryptParams trades KDF strength for speed (tests, dev keystores)
func LightScryptParams() ScryptParams {
	//nolint:mnd // go-ethereum's LightScryptN / LightScryptP
	return ScryptParams{DKLen: 32, N: 4096, R: 8, P: 6}
}
