package adapter

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/address"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/keys"
	"github/chapool/chainswap/internal/wallet/signer"
	"github/chapool/chainswap/internal/wallet/submit"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

// SchemeFor returns the signature scheme of a chain family.
func SchemeFor(kind chain.Kind) keys.Scheme {
	if kind == chain.KindSolana {
		return keys.SchemeEd25519
	}

	return keys.SchemeSecp256k1
}

// base carries the pipeline stages shared by all adapters
type base struct {
	network   *chain.Network
	keys      keys.Service
	builder   txbuilder.Service
	signer    signer.Service
	submitter submit.Service
}

func (b *base) Kind() chain.Kind {
	return b.network.Kind
}

func (b *base) Network() *chain.Network {
	return b.network
}

func (b *base) Address(ctx context.Context, owner string, purpose string) (string, error) {
	key, err := b.keys.GetOrDeriveKey(ctx, owner, purpose, SchemeFor(b.network.Kind))
	if err != nil {
		return "", errors.Wrap(err, "failed to derive key")
	}

	addr, err := address.ToAddress(key.PublicKey, b.network.Kind)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode address")
	}

	return addr, nil
}

func (b *base) SignAndEncode(ctx context.Context, tx *txbuilder.UnsignedTransaction, owner string, purpose string) (*signer.SignedTransaction, error) {
	return b.signer.SignAndEncode(ctx, tx, owner, purpose)
}

func (b *base) Submit(ctx context.Context, signed *signer.SignedTransaction) (*submit.Result, error) {
	return b.submitter.Submit(ctx, signed)
}

func validateRequest(req *TransferRequest) error {
	if req == nil || req.Owner == "" || req.To == "" {
		return errors.Wrap(txbuilder.ErrInvalidRequest, "owner and recipient are required")
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return errors.Wrap(txbuilder.ErrInvalidAmount, "amount must be positive")
	}

	return nil
}
