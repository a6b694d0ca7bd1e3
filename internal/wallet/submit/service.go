package submit

import (
	"bytes"
	"context"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/metrics"
	"github/chapool/chainswap/internal/util"
	"github/chapool/chainswap/internal/wallet/rpc"
	"github/chapool/chainswap/internal/wallet/signer"
)

type service struct {
	network     string
	broadcaster Broadcaster
	metrics     *metrics.Service
}

type Option func(*service)

func WithMetrics(m *metrics.Service) Option {
	return func(s *service) { s.metrics = m }
}

// NewService creates a submitter for one network
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(network string, broadcaster Broadcaster, opts ...Option) Service {
	s := &service{
		network:     network,
		broadcaster: broadcaster,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *service) Submit(ctx context.Context, signed *signer.SignedTransaction) (*Result, error) {
	if signed == nil || signed.Hash == "" {
		return nil, &Error{Reason: "missing precomputed hash", Err: errors.New("invalid signed transaction")}
	}

	logger := util.LogFromContext(ctx).With().Str("network", s.network).Str("tx_hash_out", signed.Hash).Logger()
	logger.Debug().Str("state", string(StateBuilt)).Msg("Broadcasting transaction")

	returned, err := s.broadcaster.Broadcast(ctx, signed)

	switch {
	case err == nil:
		hash := signed.Hash
		if returned != "" && !sameHash(returned, signed.Hash) {
			logger.Warn().Str("returned_hash", returned).Msg("Node reported a different transaction hash")
			hash = returned
		}

		s.metrics.SubmitOutcome(string(signed.Kind), string(StateConfirmed), false)
		logger.Info().Str("state", string(StateConfirmed)).Msg("Transaction accepted")

		return &Result{State: StateConfirmed, Hash: hash}, nil

	case rpc.IsIdempotent(err):
		s.metrics.SubmitOutcome(string(signed.Kind), string(StateConfirmed), true)
		logger.Info().Err(err).Str("state", string(StateConfirmed)).Msg("Transaction already known to node")

		return &Result{State: StateConfirmed, Hash: signed.Hash, Idempotent: true}, nil

	default:
		s.metrics.SubmitOutcome(string(signed.Kind), string(StateFailed), false)
		logger.Error().Err(err).Str("state", string(StateFailed)).Msg("Transaction submission failed")

		return nil, &Error{Hash: signed.Hash, Reason: err.Error(), Err: err}
	}
}

// sameHash compares hex hashes ignoring case and 0x prefix, other encodings exactly.
func sameHash(a string, b string) bool {
	if a == b {
		return true
	}

	ab, errA := hex.DecodeString(strings.TrimPrefix(a, "0x"))
	bb, errB := hex.DecodeString(strings.TrimPrefix(b, "0x"))
	if errA != nil || errB != nil {
		return false
	}

	return bytes.Equal(ab, bb)
}
