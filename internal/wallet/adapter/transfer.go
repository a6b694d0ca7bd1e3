package adapter

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/util"
)

// Transfer runs build, sign and submit strictly in that order.
// If the submission fails the result still carries the signed transaction, so the
// caller can resubmit the same bytes instead of building a second transaction.
func Transfer(ctx context.Context, a ChainAdapter, req *TransferRequest) (*TransferResult, error) {
	if req == nil {
		return nil, errors.New("nil transfer request")
	}

	tx, err := a.BuildTx(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build transaction")
	}

	signed, err := a.SignAndEncode(ctx, tx, req.Owner, req.Purpose)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	logger := util.LogFromContext(ctx).With().
		Str("tx_hash_out", signed.Hash).
		Str("to", req.To).
		Str("amount", req.Amount.String()).
		Logger()

	res, err := a.Submit(ctx, signed)
	if err != nil {
		logger.Warn().Err(err).Msg("Transfer was not accepted")
		return &TransferResult{Hash: signed.Hash, Signed: signed}, err
	}

	logger.Info().Bool("idempotent", res.Idempotent).Msg("Transfer submitted")

	return &TransferResult{
		Hash:   res.Hash,
		Signed: signed,
		Submit: res,
	}, nil
}
