package seed

import (
	"crypto/sha512"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
)

const mnemonicEntropyBits = 256

// manager implements seed management with thread-safe access
type manager struct {
	seed        []byte
	mu          sync.RWMutex
	initialized bool
}

// NewManager creates a new seed Manager
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewManager() Manager {
	return &manager{}
}

// GenerateMnemonic returns a fresh 24 word BIP39 mnemonic.
func GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate entropy")
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate mnemonic")
	}

	return mnemonic, nil
}

// Initialize validates the mnemonic against the BIP39 word list and converts it to a seed
func (m *manager) Initialize(mnemonic string, passphrase string) error {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return ErrInvalidMnemonic
	}

	// BIP39: seed = PBKDF2(mnemonic, "mnemonic" + passphrase, 2048, 64, SHA512)
	const (
		pbkdf2Iterations = 2048
		pbkdf2KeyLength  = 64
	)

	seed := pbkdf2.Key(
		[]byte(mnemonic),
		[]byte("mnemonic"+passphrase),
		pbkdf2Iterations,
		pbkdf2KeyLength,
		sha512.New,
	)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.wipe()
	m.seed = seed
	m.initialized = true

	return nil
}

// GetSeed gets the seed (returns a copy to prevent external modification)
func (m *manager) GetSeed() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized || m.seed == nil {
		return nil
	}

	seedCopy := make([]byte, len(m.seed))
	copy(seedCopy, m.seed)
	return seedCopy
}

// IsInitialized checks if seed is initialized
func (m *manager) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.initialized
}

// Clear clears the seed from memory
func (m *manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.wipe()
	m.initialized = false
}

func (m *manager) wipe() {
	for i := range m.seed {
		m.seed[i] = 0
	}
	m.seed = nil
}
