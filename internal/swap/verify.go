package swap

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/util"
	"github/chapool/chainswap/internal/wallet/adapter"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

func (s *service) VerifyInbound(ctx context.Context, network string, txHash string) (*VerifiedDeposit, error) {
	a, err := s.adapters.Get(network)
	if err != nil {
		return nil, err
	}

	hash := normalizeHash(a.Kind(), txHash)
	ctx = util.WithLogger(ctx, util.LogFromContext(ctx).With().Str("chain", network).Str("tx_hash", hash).Logger())

	return s.verify(ctx, a, hash)
}

func (s *service) verify(ctx context.Context, a adapter.ChainAdapter, hash string) (*VerifiedDeposit, error) {
	network := a.Network()
	logger := util.LogFromContext(ctx)

	receipt, err := a.ParseReceipt(ctx, hash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load inbound transaction")
	}
	if !receipt.Success {
		return nil, errors.Wrapf(ErrTransactionFailed, "%s on %s", hash, network.Name)
	}

	pool, err := a.Address(ctx, s.cfg.Owner, s.cfg.Purpose)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive pool address")
	}
	if !chain.SameAddress(network.Kind, pool, receipt.To) {
		return nil, errors.Wrapf(ErrNotOurDeposit, "recipient %s", receipt.To)
	}

	token, err := s.chains.LookupToken(network.Name, receipt.TokenAddress)
	if errors.Is(err, chain.ErrUnknownToken) {
		return nil, errors.Wrapf(ErrUnsupportedPair, "token %s on %s", receipt.TokenAddress, network.Name)
	}
	if err != nil {
		return nil, err
	}

	if receipt.Amount == nil || receipt.Amount.Sign() <= 0 {
		return nil, errors.Wrapf(ErrEmptyDeposit, "%s on %s", hash, network.Name)
	}

	dep := &VerifiedDeposit{
		Network:      network.Name,
		Token:        token,
		TokenAddress: receipt.TokenAddress,
		Amount:       txbuilder.FromBaseUnits(receipt.Amount, token.Decimals),
		AmountBase:   receipt.Amount,
		Sender:       receipt.From,
		Recipient:    receipt.To,
		TxHash:       hash,
	}

	if len(receipt.Data) > 0 {
		meta, err := txbuilder.DecodeMetadata(receipt.Data)
		if err != nil {
			// the deposit stays valid, it will be returned for lack of a target token
			logger.Debug().Err(err).Msg("Ignoring undecodable metadata")
		} else {
			dep.TokenOut = meta.TokenOut
			dep.AmountOut = meta.AmountOut
		}
	}

	logger.Info().
		Str("token", token.Symbol).
		Str("amount", dep.Amount.String()).
		Str("sender", dep.Sender).
		Str("token_out", dep.TokenOut).
		Msg("Inbound deposit verified")

	return dep, nil
}

// normalizeHash gives hex hashes one canonical spelling so history lookups match.
func normalizeHash(kind chain.Kind, hash string) string {
	hash = strings.TrimSpace(hash)

	switch kind {
	case chain.KindEVM:
		return "0x" + strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(hash, "0x"), "0X"))
	case chain.KindTron:
		return strings.ToLower(strings.TrimPrefix(hash, "0x"))
	default:
		return hash
	}
}
