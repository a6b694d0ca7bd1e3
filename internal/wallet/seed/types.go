package seed

import "github.com/pkg/errors"

var ErrInvalidMnemonic = errors.New("invalid BIP39 mnemonic")

// Manager holds the BIP39 seed that backs local key derivation
type Manager interface {
	// Initialize validates the mnemonic and derives the seed (called at startup)
	Initialize(mnemonic string, passphrase string) error

	// GetSeed returns a copy of the seed, nil when not initialized
	GetSeed() []byte

	// IsInitialized checks if seed is initialized
	IsInitialized() bool

	// Clear wipes the seed from memory
	Clear()
}
