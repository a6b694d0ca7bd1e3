package signer

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/rpc"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

var (
	// ErrRecoveryFailed means the signer returned a signature that does not verify against the derived key.
	// The pipeline must stop, retrying with another digest is not allowed.
	ErrRecoveryFailed = errors.New("signature recovery failed")
	// ErrSignatureMismatch means the encoded transaction would be sent from another account than ours
	ErrSignatureMismatch      = errors.New("signed transaction does not belong to the derived key")
	ErrUnsupportedTransaction = errors.New("unsupported transaction")
)

// SignedTransaction is ready for broadcast. Hash is computed locally before broadcasting.
type SignedTransaction struct {
	Kind    chain.Kind
	Raw     []byte // RLP (EVM), wire bytes (Solana), raw_data (Tron)
	Encoded string // 0x hex (EVM), base64 (Solana), JSON (Tron)
	Hash    string // 0x tx hash (EVM), base58 signature (Solana), hex txID (Tron)
	From    string // sending address in the chain's own format

	// Tron broadcasts take the JSON transaction object rather than bytes
	Tron *rpc.TronTransaction
}

// Service signs built transactions with keys derived for (owner, purpose)
type Service interface {
	SignAndEncode(ctx context.Context, tx *txbuilder.UnsignedTransaction, owner string, purpose string) (*SignedTransaction, error)
}
