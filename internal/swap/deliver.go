package swap

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/util"
	"github/chapool/chainswap/internal/wallet/adapter"
	"github/chapool/chainswap/internal/wallet/rpc"
	"github/chapool/chainswap/internal/wallet/signer"
)

// deliveryError is returned by deliver after the last attempt
type deliveryError struct {
	signed   *signer.SignedTransaction // nil unless the last transaction may have been broadcast
	attempts int
	err      error
}

func (e *deliveryError) Error() string {
	return e.err.Error()
}

func (e *deliveryError) Unwrap() error {
	return e.err
}

// inFlight reports whether the last transaction may have reached the network.
func (e *deliveryError) inFlight() bool {
	return e.signed != nil
}

func (e *deliveryError) hash() string {
	if e.signed == nil {
		return ""
	}

	return e.signed.Hash
}

// deliver transfers req, trying up to attempts times with wait between tries.
// A transaction whose fate is unknown is resubmitted byte for byte so the node's
// idempotency markers resolve it; only definitive rejections lead to a new transaction.
func deliver(ctx context.Context, a adapter.ChainAdapter, req *adapter.TransferRequest, attempts int, wait time.Duration) (*adapter.TransferResult, error) {
	logger := util.LogFromContext(ctx).With().Str("to", req.To).Logger()

	var (
		signed *signer.SignedTransaction
		err    error
	)

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if waitErr := sleep(ctx, wait); waitErr != nil {
				return nil, &deliveryError{signed: signed, attempts: attempt - 1, err: errors.Wrap(waitErr, err.Error())}
			}
		}

		if signed != nil {
			var res *adapter.TransferResult
			res, err = resubmit(ctx, a, signed)
			if err == nil {
				return res, nil
			}
		} else {
			var res *adapter.TransferResult
			res, err = adapter.Transfer(ctx, a, req)
			if err == nil {
				return res, nil
			}
			if isFatal(err) {
				logger.Error().Err(err).Int("attempt", attempt).Msg("Signature check failed, not retrying")
				return nil, &deliveryError{attempts: attempt, err: err}
			}
			if res != nil {
				signed = res.Signed
			}
		}

		if !ambiguous(ctx, err) {
			signed = nil
		}

		logger.Warn().Err(err).Int("attempt", attempt).Bool("resubmit", signed != nil).Msg("Transfer attempt failed")
	}

	return nil, &deliveryError{signed: signed, attempts: attempts, err: err}
}

func resubmit(ctx context.Context, a adapter.ChainAdapter, signed *signer.SignedTransaction) (*adapter.TransferResult, error) {
	res, err := a.Submit(ctx, signed)
	if err != nil {
		return nil, err
	}

	return &adapter.TransferResult{Hash: res.Hash, Signed: signed, Submit: res}, nil
}

// isFatal is true for signatures that do not belong to the derived key. Such a pipeline
// must stop, so no further transaction is built or signed.
func isFatal(err error) bool {
	return errors.Is(err, signer.ErrRecoveryFailed) || errors.Is(err, signer.ErrSignatureMismatch)
}

// ambiguous is true when a submission error leaves open whether the node got the transaction.
func ambiguous(ctx context.Context, err error) bool {
	switch rpc.KindOf(err) {
	case rpc.KindConsensusUnreachable, rpc.KindTransient:
		return true
	}

	return ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// sleep suspends for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
