package txbuilder

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/rpc"
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrMissingFeeParams  = errors.New("incomplete fee parameters")
	ErrMalformedMetadata = errors.New("malformed metadata")
	ErrUnsupportedChain  = errors.New("unsupported chain")
	ErrInvalidRequest    = errors.New("invalid transfer request")
	ErrUnexpectedPayload = errors.New("node returned a transaction that does not match the request")
)

// UnsignedTransaction holds exactly one chain specific transaction. It must not be modified after Build.
type UnsignedTransaction struct {
	EVM    *EVMTx
	Solana *SolanaTx
	Tron   *TronTx
}

func (u *UnsignedTransaction) Kind() chain.Kind {
	switch {
	case u == nil:
		return ""
	case u.EVM != nil:
		return chain.KindEVM
	case u.Solana != nil:
		return chain.KindSolana
	case u.Tron != nil:
		return chain.KindTron
	default:
		return ""
	}
}

// EVMTx is an EIP-1559 transaction before signing
type EVMTx struct {
	ChainID              *big.Int
	From                 common.Address
	Nonce                uint64
	GasLimit             uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	To                   common.Address
	Value                *big.Int
	Data                 []byte
}

// SolanaTx is a legacy message with one required signature, the fee payer
type SolanaTx struct {
	Transaction     *solana.Transaction
	FeePayer        solana.PublicKey
	RecentBlockhash solana.Hash
}

// TronTx is a node created TRX transfer. RawData is the protobuf encoded raw_data.
type TronTx struct {
	OwnerAddress string
	ToAddress    string
	Amount       int64
	RawData      []byte
	TxID         string
	Node         *rpc.TronTransaction
}

// EVMRequest describes a native or ERC20 transfer. Amount is in base units.
// Nil fee fields are filled from eth_gasPrice, a zero GasLimit gets the default for the transfer type.
type EVMRequest struct {
	ChainID              int64
	From                 string
	To                   string
	Token                string
	Amount               *big.Int
	Metadata             []byte
	GasLimit             uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

type SolanaRequest struct {
	From     string
	To       string
	Lamports uint64
	Memo     []byte
}

// TronRequest uses base58check addresses and an amount in sun.
type TronRequest struct {
	From   string
	To     string
	Amount int64
}

// EVMNode is the part of the EVM RPC client the builder needs
type EVMNode interface {
	GetTransactionCount(ctx context.Context, addr string, block string) (uint64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
}

type SolanaNode interface {
	GetLatestBlockhash(ctx context.Context) (*rpc.SolanaBlockhash, error)
}

type TronNode interface {
	CreateTransaction(ctx context.Context, ownerHex string, toHex string, amount int64) (*rpc.TronTransaction, error)
}

// Service builds unsigned transactions for one network
type Service interface {
	// BuildEVM builds an EIP-1559 native or ERC20 transfer
	BuildEVM(ctx context.Context, req *EVMRequest) (*UnsignedTransaction, error)

	// BuildSolana builds a system transfer with an optional memo instruction
	BuildSolana(ctx context.Context, req *SolanaRequest) (*UnsignedTransaction, error)

	// BuildTron asks the node for a TRX transfer and checks it matches the request
	BuildTron(ctx context.Context, req *TronRequest) (*UnsignedTransaction, error)

	// ResetNonce drops the tracked nonce of addr after a rejected broadcast
	ResetNonce(addr string)

	// ReleaseNonce returns nonce of addr when its transaction could not be signed
	ReleaseNonce(addr string, nonce uint64)
}
