package swap

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github/chapool/chainswap/internal/swap/history"
	"github/chapool/chainswap/internal/wallet/chain"
)

var (
	ErrAlreadyProcessed      = errors.New("inbound transaction already processed")
	ErrNotOurDeposit         = errors.New("transaction does not pay the pool address")
	ErrTransactionFailed     = errors.New("inbound transaction failed on chain")
	ErrUnsupportedPair       = errors.New("unsupported token pair")
	ErrSlippageExceeded      = errors.New("quote below requested minimum amount out")
	ErrInsufficientLiquidity = errors.New("pool balance too low for payout")
	ErrEmptyDeposit          = errors.New("inbound transaction carries no value")
)

// CriticalError means funds of a depositor could not be paid out nor returned.
// It needs manual intervention.
type CriticalError struct {
	Network  string
	TxHashIn string
	Sender   string
	Amount   decimal.Decimal
	TxHash   string // last outbound transaction signed, if any
	Attempts int
	Err      error
}

func (e *CriticalError) Error() string {
	return fmt.Sprintf("critical: %s deposit %s of %s from %s unresolved after %d attempts: %v",
		e.Network, e.TxHashIn, e.Amount, e.Sender, e.Attempts, e.Err)
}

func (e *CriticalError) Unwrap() error {
	return e.Err
}

// VerifiedDeposit is an inbound transfer to the pool address that succeeded on chain
type VerifiedDeposit struct {
	Network      string
	Token        *chain.Token
	TokenAddress string // empty for the native asset
	Amount       decimal.Decimal
	AmountBase   *big.Int
	Sender       string
	Recipient    string
	TxHash       string

	// Swap parameters from the transaction metadata, both optional
	TokenOut  string
	AmountOut string
}

type Config struct {
	Owner          string
	Purpose        string
	FeeBps         int64
	RevertAttempts int
	RevertWait     time.Duration
}

// Service turns verified deposits into payouts, or returns them to the sender
type Service interface {
	// PoolAddress is the deposit address of the pool on network
	PoolAddress(ctx context.Context, network string) (string, error)

	// VerifyInbound checks a deposit without paying out
	VerifyInbound(ctx context.Context, network string, txHash string) (*VerifiedDeposit, error)

	// ProcessInbound verifies the deposit, pays out the quoted amount and records the swap.
	// Each inbound hash is processed at most once, later calls fail with ErrAlreadyProcessed.
	ProcessInbound(ctx context.Context, network string, txHash string) (*history.SwapRecord, error)

	History(ctx context.Context, page int, size int) ([]*history.SwapRecord, int, error)
	FindByHash(ctx context.Context, network string, hash string) (*history.SwapRecord, error)
}
