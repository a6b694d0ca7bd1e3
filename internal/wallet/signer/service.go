package signer

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/util"
	"github/chapool/chainswap/internal/wallet/keys"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

type service struct {
	keys keys.Service
}

// NewService creates a SignerService on top of the key store
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(keyStore keys.Service) Service {
	return &service{keys: keyStore}
}

func (s *service) SignAndEncode(ctx context.Context, tx *txbuilder.UnsignedTransaction, owner string, purpose string) (*SignedTransaction, error) {
	var (
		signed *SignedTransaction
		err    error
	)

	switch {
	case tx == nil:
		return nil, errors.Wrap(ErrUnsupportedTransaction, "nil transaction")
	case tx.EVM != nil:
		signed, err = s.signEVM(ctx, tx.EVM, owner, purpose)
	case tx.Solana != nil:
		signed, err = s.signSolana(ctx, tx.Solana, owner, purpose)
	case tx.Tron != nil:
		signed, err = s.signTron(ctx, tx.Tron, owner, purpose)
	default:
		return nil, errors.Wrap(ErrUnsupportedTransaction, "empty transaction")
	}

	if err != nil {
		if errors.Is(err, ErrRecoveryFailed) || errors.Is(err, ErrSignatureMismatch) {
			util.LogFromContext(ctx).Error().Err(err).
				Str("owner", owner).
				Str("purpose", purpose).
				Str("kind", string(tx.Kind())).
				Msg("Signature does not match derived key")
		}
		return nil, err
	}

	util.LogFromContext(ctx).Debug().
		Str("kind", string(signed.Kind)).
		Str("tx_hash_out", signed.Hash).
		Msg("Signed transaction")

	return signed, nil
}
