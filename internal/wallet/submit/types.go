package submit

import (
	"context"

	"github/chapool/chainswap/internal/wallet/rpc"
	"github/chapool/chainswap/internal/wallet/signer"
)

// State of a submission
type State string

const (
	StateBuilt     State = "built"
	StateConfirmed State = "confirmed"
	StateFailed    State = "failed"
)

// Result of a submission that reached the Confirmed state. "Confirmed" means the node
// accepted (or already knew) the transaction, not that it was mined.
type Result struct {
	State      State
	Hash       string
	Idempotent bool
}

// Error is returned when a submission ends in the Failed state
type Error struct {
	Hash   string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	return "submit " + e.Hash + " failed: " + e.Reason
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Broadcaster sends one signed transaction and returns the hash the node reports
type Broadcaster interface {
	Broadcast(ctx context.Context, signed *signer.SignedTransaction) (string, error)
}

type EVMSender interface {
	SendRawTransaction(ctx context.Context, rawHex string) (string, error)
}

type SolanaSender interface {
	SendTransaction(ctx context.Context, encoded string) (string, error)
}

type TronSender interface {
	BroadcastTransaction(ctx context.Context, tx *rpc.TronTransaction) (*rpc.TronBroadcastResult, error)
}

// Service submits signed transactions idempotently
type Service interface {
	// Submit broadcasts signed. A node answer saying the transaction is already known
	// counts as success with the locally computed hash.
	Submit(ctx context.Context, signed *signer.SignedTransaction) (*Result, error)
}
