package swap

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github/chapool/chainswap/internal/swap/history"
	"github/chapool/chainswap/internal/util"
	"github/chapool/chainswap/internal/wallet/adapter"
)

const (
	// payoutAttempts is one: a rejected payout is answered by returning the deposit
	payoutAttempts = 1
	recordAttempts = 3
)

// ProcessInbound keeps the claim and puts a hold on the inbound hash whenever it fails
// with a CriticalError, so an unresolved deposit is never processed a second time.
func (s *service) ProcessInbound(ctx context.Context, network string, txHash string) (_ *history.SwapRecord, err error) {
	a, err := s.adapters.Get(network)
	if err != nil {
		return nil, err
	}

	hash := normalizeHash(a.Kind(), txHash)
	swapID := uuid.NewString()

	logger := util.LogFromContext(ctx).With().
		Str("swap_id", swapID).
		Str("chain", network).
		Str("tx_hash", hash).
		Logger()
	ctx = util.WithLogger(ctx, logger)

	release, err := s.history.Claim(ctx, hash)
	if errors.Is(err, history.ErrDuplicate) || errors.Is(err, history.ErrClaimed) {
		logger.Info().Err(err).Msg("Inbound transaction already processed")
		return nil, errors.Wrap(ErrAlreadyProcessed, err.Error())
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to claim inbound transaction")
	}

	defer func() {
		if isCritical(err) {
			s.hold(ctx, hash, err)
			return
		}
		release()
	}()

	dep, err := s.verify(ctx, a, hash)
	if err != nil {
		return nil, err
	}

	plan, err := s.plan(ctx, a, dep)
	if err != nil {
		if !mustReturnDeposit(err) {
			return nil, err
		}

		logger.Warn().Err(err).Msg("Deposit cannot be swapped, returning it")
		rec, revertErr := s.revert(ctx, a, swapID, dep, err)
		if revertErr != nil {
			return nil, revertErr
		}
		return s.record(ctx, logger, rec)
	}

	res, err := deliver(ctx, a, &adapter.TransferRequest{
		Owner:   s.cfg.Owner,
		Purpose: s.cfg.Purpose,
		To:      dep.Sender,
		Token:   plan.Token.Address,
		Amount:  plan.AmountBase,
	}, payoutAttempts, 0)
	if err != nil {
		if isFatal(err) {
			critical := &CriticalError{
				Network:  network,
				TxHashIn: hash,
				Sender:   dep.Sender,
				Amount:   dep.Amount,
				Attempts: 1,
				Err:      errors.Wrap(err, "signing pipeline failed, payout aborted"),
			}
			logger.Error().Err(critical).Msg("Signature check failed, deposit not returned")
			return nil, critical
		}

		var de *deliveryError
		if errors.As(err, &de) && de.inFlight() {
			critical := &CriticalError{
				Network:  network,
				TxHashIn: hash,
				Sender:   dep.Sender,
				Amount:   dep.Amount,
				TxHash:   de.hash(),
				Attempts: de.attempts,
				Err:      errors.Wrap(err, "payout may have been broadcast"),
			}
			logger.Error().Err(critical).Msg("Payout outcome unknown, deposit not returned")
			return nil, critical
		}

		logger.Warn().Err(err).Msg("Payout rejected, returning deposit")
		rec, revertErr := s.revert(ctx, a, swapID, dep, err)
		if revertErr != nil {
			return nil, revertErr
		}
		return s.record(ctx, logger, rec)
	}

	return s.record(ctx, logger, &history.SwapRecord{
		SwapID:    swapID,
		Network:   network,
		WalletIn:  dep.Sender,
		WalletOut: dep.Sender,
		TokenIn:   tokenRef(dep.Token),
		TokenOut:  tokenRef(plan.Token),
		AmountIn:  dep.Amount,
		AmountOut: plan.Amount,
		TxHashIn:  hash,
		TxHashOut: res.Hash,
		Status:    plan.Status,
		Timestamp: time.Now().UTC(),
	})
}

// revert returns the deposit to its sender, retrying up to the configured attempts.
func (s *service) revert(ctx context.Context, a adapter.ChainAdapter, swapID string, dep *VerifiedDeposit, reason error) (*history.SwapRecord, error) {
	res, err := deliver(ctx, a, &adapter.TransferRequest{
		Owner:   s.cfg.Owner,
		Purpose: s.cfg.Purpose,
		To:      dep.Sender,
		Token:   dep.TokenAddress,
		Amount:  dep.AmountBase,
	}, s.cfg.RevertAttempts, s.cfg.RevertWait)
	if err != nil {
		critical := &CriticalError{
			Network:  dep.Network,
			TxHashIn: dep.TxHash,
			Sender:   dep.Sender,
			Amount:   dep.Amount,
			Attempts: s.cfg.RevertAttempts,
			Err:      errors.Wrapf(err, "revert after %v", reason),
		}

		var de *deliveryError
		if errors.As(err, &de) {
			critical.TxHash = de.hash()
			critical.Attempts = de.attempts
		}

		util.LogFromContext(ctx).Error().Err(critical).Msg("Deposit could not be returned, manual intervention required")
		return nil, critical
	}

	return &history.SwapRecord{
		SwapID:    swapID,
		Network:   dep.Network,
		WalletIn:  dep.Sender,
		WalletOut: dep.Sender,
		TokenIn:   tokenRef(dep.Token),
		TokenOut:  tokenRef(dep.Token),
		AmountIn:  dep.Amount,
		AmountOut: dep.Amount,
		TxHashIn:  dep.TxHash,
		TxHashOut: res.Hash,
		Status:    history.StatusReverted,
		Reason:    reason.Error(),
		Timestamp: time.Now().UTC(),
	}, nil
}

// record appends rec and announces it. Funds have moved at this point: the append outlives
// a cancelled request and is retried, a record that cannot be stored is a CriticalError,
// and a failed publish is only logged.
func (s *service) record(ctx context.Context, logger zerolog.Logger, rec *history.SwapRecord) (*history.SwapRecord, error) {
	ctx = context.WithoutCancel(ctx)

	var err error
	for attempt := 1; attempt <= recordAttempts; attempt++ {
		if err = s.history.Append(ctx, rec); err == nil || errors.Is(err, history.ErrDuplicate) {
			break
		}

		logger.Warn().Err(err).Int("attempt", attempt).Str("tx_hash_out", rec.TxHashOut).Msg("Failed to append swap record")
		if attempt < recordAttempts {
			_ = sleep(ctx, s.cfg.RevertWait)
		}
	}
	if err != nil {
		critical := &CriticalError{
			Network:  rec.Network,
			TxHashIn: rec.TxHashIn,
			Sender:   rec.WalletIn,
			Amount:   rec.AmountIn,
			TxHash:   rec.TxHashOut,
			Attempts: recordAttempts,
			Err:      errors.Wrapf(err, "%s sent but swap record not stored", rec.Status),
		}
		logger.Error().Err(critical).Msg("Swap record lost, manual intervention required")
		return nil, critical
	}

	s.metrics.SwapRecorded(rec.Network, string(rec.Status))

	if err := s.publisher.Publish(ctx, rec); err != nil {
		logger.Warn().Err(err).Msg("Failed to publish swap event")
	}

	logger.Info().
		Str("status", string(rec.Status)).
		Str("amount_in", rec.AmountIn.String()).
		Str("amount_out", rec.AmountOut.String()).
		Str("tx_hash_out", rec.TxHashOut).
		Msg("Swap recorded")

	return rec, nil
}

// hold keeps hash from being claimed again after the claim expires.
func (s *service) hold(ctx context.Context, hash string, cause error) {
	ctx = context.WithoutCancel(ctx)

	if err := s.history.Hold(ctx, hash, cause.Error()); err != nil {
		util.LogFromContext(ctx).Error().Err(err).Msg("Failed to hold unresolved deposit, it is processed again once the claim expires")
		return
	}

	util.LogFromContext(ctx).Warn().Msg("Inbound transaction held for manual review")
}

func isCritical(err error) bool {
	var critical *CriticalError
	return errors.As(err, &critical)
}
