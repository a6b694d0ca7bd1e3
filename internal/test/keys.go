package test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github/chapool/chainswap/internal/wallet/keys"
	"github/chapool/chainswap/internal/wallet/seed"
)

// Mnemonic is the well known BIP39 test vector, never fund its addresses.
const Mnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// NewLocalSigner returns a seed backed signer initialized with Mnemonic.
func NewLocalSigner(t *testing.T) *keys.LocalSigner {
	t.Helper()

	m := seed.NewManager()
	require.NoError(t, m.Initialize(Mnemonic, ""))

	return keys.NewLocalSigner(m)
}

// NewKeyStore returns a key store in front of signer, or of NewLocalSigner when signer is nil.
//
//nolint:ireturn
func NewKeyStore(t *testing.T, signer keys.Signer) keys.Service {
	t.Helper()

	if signer == nil {
		signer = NewLocalSigner(t)
	}

	return keys.NewService(signer)
}
