package history

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrDuplicate = errors.New("transaction hash already recorded")
	ErrClaimed   = errors.New("transaction hash is being processed")
	ErrNotFound  = errors.New("swap record not found")
)

// Status is the outcome of a swap
type Status string

const (
	StatusBuy      Status = "buy"      // native in, token out
	StatusSell     Status = "sell"     // token in, native out
	StatusSwap     Status = "swap"     // token in, token out
	StatusReverted Status = "reverted" // deposit returned to the sender
)

// SwapRecord is appended once per completed or reverted swap and never changed afterwards.
// Amounts are in token units, not base units.
type SwapRecord struct {
	SwapID    string          `json:"swap_id"`
	Network   string          `json:"network"`
	WalletIn  string          `json:"wallet_in"`
	WalletOut string          `json:"wallet_out"`
	TokenIn   string          `json:"token_in"`
	TokenOut  string          `json:"token_out"`
	AmountIn  decimal.Decimal `json:"amount_in"`
	AmountOut decimal.Decimal `json:"amount_out"`
	TxHashIn  string          `json:"tx_hash_in"`
	TxHashOut string          `json:"tx_hash_out"`
	Status    Status          `json:"status"`
	Reason    string          `json:"reason,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Hashes returns the non-empty transaction hashes of the record.
func (r *SwapRecord) Hashes() []string {
	out := make([]string, 0, 2) //nolint:mnd
	if r.TxHashIn != "" {
		out = append(out, r.TxHashIn)
	}
	if r.TxHashOut != "" && r.TxHashOut != r.TxHashIn {
		out = append(out, r.TxHashOut)
	}

	return out
}

// Log is the append-only swap history. A transaction hash appears in at most one record.
type Log interface {
	// Append stores rec unless one of its hashes is already recorded (ErrDuplicate).
	// The check and the write are one atomic step.
	Append(ctx context.Context, rec *SwapRecord) error

	// FindByHash returns the record holding hash as inbound or outbound transaction
	FindByHash(ctx context.Context, hash string) (*SwapRecord, error)

	// Paginate returns records newest first together with the total count
	Paginate(ctx context.Context, offset int, limit int) ([]*SwapRecord, int, error)

	// Claim reserves hash for in-flight processing. It fails with ErrDuplicate if the hash
	// is already recorded or held and with ErrClaimed if another caller holds the reservation.
	// The returned func releases the reservation.
	Claim(ctx context.Context, hash string) (func(), error)

	// Hold marks hash as unresolved. Unlike a claim a hold never expires, so the hash
	// cannot be claimed again until an operator recorded or released it.
	Hold(ctx context.Context, hash string, reason string) error

	// Unhold removes the hold of hash. It does not fail for hashes that are not held.
	Unhold(ctx context.Context, hash string) error

	Close() error
}

func heldError(hash string, reason string) error {
	return errors.Wrapf(ErrDuplicate, "hash %s held for manual review: %s", hash, reason)
}

func validate(rec *SwapRecord) error {
	if rec == nil {
		return errors.New("nil swap record")
	}
	if rec.TxHashIn == "" {
		return errors.New("swap record without inbound hash")
	}
	if rec.SwapID == "" {
		return errors.New("swap record without id")
	}

	return nil
}

func clampPage(offset int, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	return offset, limit
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 200

	DefaultClaimTTL = 10 * time.Minute
)
