package swaps

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/api/httperrors"
	"github/chapool/chainswap/internal/swap"
	"github/chapool/chainswap/internal/swap/history"
	"github/chapool/chainswap/internal/swap/price"
	"github/chapool/chainswap/internal/wallet/adapter"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/rpc"
)

// fromSwapError maps errors of the swap pipeline to API errors. Errors it does not know are
// returned as internal server errors.
func fromSwapError(err error) *httperrors.HTTPError {
	var critical *swap.CriticalError

	switch {
	case errors.As(err, &critical):
		return httperrors.ErrInternalUnresolved.Wrap(err)
	case errors.Is(err, swap.ErrAlreadyProcessed):
		return httperrors.ErrConflictProcessed.Wrap(err)
	case errors.Is(err, swap.ErrNotOurDeposit):
		return httperrors.ErrUnprocessableNotOurs.Wrap(err)
	case errors.Is(err, swap.ErrTransactionFailed):
		return httperrors.ErrUnprocessableFailed.Wrap(err)
	case errors.Is(err, swap.ErrEmptyDeposit):
		return httperrors.ErrUnprocessableEmpty.Wrap(err)
	case errors.Is(err, adapter.ErrUnknownNetwork), errors.Is(err, chain.ErrUnknownNetwork):
		return httperrors.ErrNotFoundNetwork.Wrap(err)
	case errors.Is(err, adapter.ErrUnsupportedToken), errors.Is(err, adapter.ErrUnsupportedChain):
		return httperrors.ErrUnprocessableNoPipeline.Wrap(err)
	case errors.Is(err, history.ErrNotFound):
		return httperrors.ErrNotFoundSwap.Wrap(err)
	case errors.Is(err, price.ErrUnknownSymbol), errors.Is(err, price.ErrInvalidPrice):
		return httperrors.ErrServiceUnavailable.Wrap(err)
	case errors.Is(err, context.DeadlineExceeded):
		return httperrors.ErrServiceUnavailable.Wrap(err)
	}

	switch rpc.KindOf(err) {
	case rpc.KindNotFound:
		return httperrors.ErrNotFoundTransaction.Wrap(err)
	case rpc.KindTransient, rpc.KindConsensusUnreachable:
		return httperrors.ErrServiceUnavailable.Wrap(err)
	default:
		return httperrors.ErrInternalServer.Wrap(err)
	}
}
