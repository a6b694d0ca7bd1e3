package address

import (
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

const ed25519PublicKeyLength = 32

func solanaAddress(pub []byte) (string, error) {
	if len(pub) != ed25519PublicKeyLength {
		return "", errors.Wrapf(ErrMalformedPublicKey, "ed25519 key has %d bytes", len(pub))
	}

	return solana.PublicKeyFromBytes(pub).String(), nil
}

func validateSolana(addr string) error {
	if _, err := solana.PublicKeyFromBase58(addr); err != nil {
		return errors.Wrapf(ErrInvalidAddress, "solana address %q", addr)
	}

	return nil
}
