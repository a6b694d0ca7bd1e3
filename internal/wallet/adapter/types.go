package adapter

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/signer"
	"github/chapool/chainswap/internal/wallet/submit"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

var (
	ErrUnsupportedToken = errors.New("token transfers are not supported on this network")
	ErrUnknownNetwork   = errors.New("no adapter registered for network")
	ErrAmountRange      = errors.New("amount does not fit the chain's integer type")
)

// TransferRequest pays Amount (base units) of Token ("" for the native asset) to To,
// signed by the key derived for (Owner, Purpose).
type TransferRequest struct {
	Owner    string
	Purpose  string
	To       string
	Token    string
	Amount   *big.Int
	Metadata []byte
}

// Receipt is the chain independent view of an executed transfer.
// To is the receiver of the value, i.e. the token recipient for token transfers.
type Receipt struct {
	Network      string
	Hash         string
	Success      bool
	From         string
	To           string
	TokenAddress string // empty for the native asset
	Amount       *big.Int
	Data         []byte // calldata after the transfer arguments (EVM) or memo bytes
	Memo         string
}

// ChainAdapter runs the signed transaction pipeline for one network
type ChainAdapter interface {
	Kind() chain.Kind
	Network() *chain.Network

	// Address returns the derived address of (owner, purpose) on this network
	Address(ctx context.Context, owner string, purpose string) (string, error)

	BuildTx(ctx context.Context, req *TransferRequest) (*txbuilder.UnsignedTransaction, error)
	SignAndEncode(ctx context.Context, tx *txbuilder.UnsignedTransaction, owner string, purpose string) (*signer.SignedTransaction, error)
	Submit(ctx context.Context, signed *signer.SignedTransaction) (*submit.Result, error)

	// NativeBalance returns the native asset balance of (owner, purpose) in base units.
	// Accounts the node has never seen have a zero balance.
	NativeBalance(ctx context.Context, owner string, purpose string) (*big.Int, error)

	// TokenBalance returns the balance of (owner, purpose) in token, in base units.
	// Networks without token transfers return ErrUnsupportedToken.
	TokenBalance(ctx context.Context, owner string, purpose string, token string) (*big.Int, error)

	// ParseReceipt fetches an executed transaction. Pending transactions return an rpc.KindNotFound error.
	ParseReceipt(ctx context.Context, hash string) (*Receipt, error)
}

// TransferResult is returned by Transfer once the node accepted the transaction
type TransferResult struct {
	Hash   string
	Signed *signer.SignedTransaction
	Submit *submit.Result
}
