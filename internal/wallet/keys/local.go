package keys

import (
	"context"
	"crypto/ed25519"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/seed"
)

// LocalSigner derives keys from an in-memory BIP39 seed. It stands in for a remote
// threshold signer in development and tests.
type LocalSigner struct {
	seeds seed.Manager
}

func NewLocalSigner(seeds seed.Manager) *LocalSigner {
	return &LocalSigner{seeds: seeds}
}

func (l *LocalSigner) PublicKey(_ context.Context, owner string, purpose string, scheme Scheme) ([]byte, error) {
	priv, err := l.privateKey(owner, purpose, scheme)
	if err != nil {
		return nil, err
	}
	defer clear(priv)

	switch scheme {
	case SchemeSecp256k1:
		ecdsaKey, err := crypto.ToECDSA(priv)
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert to ECDSA private key")
		}
		return crypto.FromECDSAPub(&ecdsaKey.PublicKey), nil
	case SchemeEd25519:
		pub, ok := ed25519.NewKeyFromSeed(priv).Public().(ed25519.PublicKey)
		if !ok {
			return nil, errors.New("failed to cast ed25519 public key")
		}
		return []byte(pub), nil
	default:
		return nil, ErrUnsupportedScheme
	}
}

func (l *LocalSigner) Sign(_ context.Context, owner string, purpose string, scheme Scheme, payload []byte) ([]byte, error) {
	priv, err := l.privateKey(owner, purpose, scheme)
	if err != nil {
		return nil, err
	}
	defer clear(priv)

	switch scheme {
	case SchemeSecp256k1:
		ecdsaKey, err := crypto.ToECDSA(priv)
		if err != nil {
			return nil, errors.Wrap(err, "failed to convert to ECDSA private key")
		}

		sig, err := crypto.Sign(payload, ecdsaKey)
		if err != nil {
			return nil, errors.Wrap(err, "failed to sign digest")
		}

		// drop the recovery id, callers recover it themselves
		return sig[:Secp256k1SignatureLength], nil
	case SchemeEd25519:
		return ed25519.Sign(ed25519.NewKeyFromSeed(priv), payload), nil
	default:
		return nil, ErrUnsupportedScheme
	}
}

func (l *LocalSigner) privateKey(owner string, purpose string, scheme Scheme) ([]byte, error) {
	s := l.seeds.GetSeed()
	if s == nil {
		return nil, ErrSeedNotInitialized
	}
	defer clear(s)

	path, err := DerivationPath(owner, purpose, scheme)
	if err != nil {
		return nil, err
	}

	if scheme == SchemeEd25519 {
		return DeriveEd25519(s, path)
	}

	return DeriveSecp256k1(s, path)
}
