package adapter_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/fbsobreira/gotron-sdk/pkg/proto/core"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainswap/internal/test"
	"github/chapool/chainswap/internal/wallet/adapter"
	"github/chapool/chainswap/internal/wallet/address"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/keys"
	"github/chapool/chainswap/internal/wallet/rpc"
	"github/chapool/chainswap/internal/wallet/submit"
	"github/chapool/chainswap/internal/wallet/txbuilder"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

const (
	owner     = "pool"
	purpose   = "swap"
	recipient = "0x6fac4d18c912343bf86fa7049364dd4e424ab9c0"
)

func network(t *testing.T, name string) *chain.Network {
	t.Helper()

	n, err := chain.NewService(nil).GetNetwork(name)
	require.NoError(t, err)

	return n
}

func newAdapter(t *testing.T, name string, stub *test.RPCStub) adapter.ChainAdapter {
	t.Helper()

	gw, err := rpc.NewGateway(rpc.Config{Network: name, URLs: []string{stub.URL()}, FlatRetryMax: 0})
	require.NoError(t, err)

	a, err := adapter.New(network(t, name), gw, test.NewKeyStore(t, nil))
	require.NoError(t, err)

	return a
}

func TestEVMTransfer(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("eth_getTransactionCount", "0x4")
	stub.HandleResult("eth_gasPrice", "0x3b9aca00")
	stub.EchoRawTransactions()

	a := newAdapter(t, "sepolia", stub)
	assert.Equal(t, chain.KindEVM, a.Kind())

	res, err := adapter.Transfer(context.Background(), a, &adapter.TransferRequest{
		Owner:   owner,
		Purpose: purpose,
		To:      recipient,
		Amount:  big.NewInt(10_000_000_000_000_000),
	})
	require.NoError(t, err)
	assert.Equal(t, submit.StateConfirmed, res.Submit.State)
	assert.Equal(t, res.Signed.Hash, res.Hash)
	assert.False(t, res.Submit.Idempotent)

	from, err := a.Address(context.Background(), owner, purpose)
	require.NoError(t, err)
	assert.True(t, chain.SameAddress(chain.KindEVM, from, res.Signed.From))
}

func TestEVMTransferIdempotent(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("eth_getTransactionCount", "0x0")
	stub.HandleResult("eth_gasPrice", "0x1")
	stub.HandleError("eth_sendRawTransaction", -32000, "already known")

	a := newAdapter(t, "sepolia", stub)

	res, err := adapter.Transfer(context.Background(), a, &adapter.TransferRequest{
		Owner: owner, Purpose: purpose, To: recipient, Amount: big.NewInt(1),
	})
	require.NoError(t, err)
	assert.True(t, res.Submit.Idempotent)
	assert.Equal(t, res.Signed.Hash, res.Hash)
}

func TestEVMRejectedSubmitReleasesNonce(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("eth_getTransactionCount", "0x0")
	stub.HandleResult("eth_gasPrice", "0x1")
	stub.HandleError("eth_sendRawTransaction", -32000, "insufficient funds for gas * price + value")

	a := newAdapter(t, "sepolia", stub)
	req := &adapter.TransferRequest{Owner: owner, Purpose: purpose, To: recipient, Amount: big.NewInt(1)}

	res, err := adapter.Transfer(context.Background(), a, req)
	var submitErr *submit.Error
	require.ErrorAs(t, err, &submitErr)
	require.NotNil(t, res)
	assert.Equal(t, submitErr.Hash, res.Signed.Hash)
	assert.Nil(t, res.Submit)

	tx, err := a.BuildTx(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), tx.EVM.Nonce)
}

// flakySigner fails the first failures signing requests
type flakySigner struct {
	keys.Signer
	failures int
}

func (s *flakySigner) Sign(ctx context.Context, owner string, purpose string, scheme keys.Scheme, payload []byte) ([]byte, error) {
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("signer offline")
	}

	return s.Signer.Sign(ctx, owner, purpose, scheme, payload)
}

func TestEVMFailedSigningReleasesNonce(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("eth_getTransactionCount", "0x4")
	stub.HandleResult("eth_gasPrice", "0x1")
	stub.EchoRawTransactions()

	gw, err := rpc.NewGateway(rpc.Config{Network: "sepolia", URLs: []string{stub.URL()}, FlatRetryMax: 0})
	require.NoError(t, err)

	signer := &flakySigner{Signer: test.NewLocalSigner(t), failures: 1}
	a, err := adapter.New(network(t, "sepolia"), gw, test.NewKeyStore(t, signer))
	require.NoError(t, err)

	req := &adapter.TransferRequest{Owner: owner, Purpose: purpose, To: recipient, Amount: big.NewInt(1)}

	_, err = adapter.Transfer(context.Background(), a, req)
	require.Error(t, err)
	assert.Zero(t, stub.Calls("eth_sendRawTransaction"))

	res, err := adapter.Transfer(context.Background(), a, req)
	require.NoError(t, err)

	var tx types.Transaction
	require.NoError(t, tx.UnmarshalBinary(res.Signed.Raw))
	assert.Equal(t, uint64(4), tx.Nonce())
}

func TestEVMParseNativeReceipt(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("eth_getTransactionByHash", map[string]any{
		"hash":  "0xAA",
		"from":  "0x9858EfFD232B4033E47d90003D41EC34EcaEda94",
		"to":    "0x6Fac4D18c912343BF86fa7049364Dd4E424Ab9C0",
		"value": "0x2386f26fc10000",
		"input": "0x",
		"nonce": "0x1",
	})
	stub.HandleResult("eth_getTransactionReceipt", map[string]any{
		"transactionHash": "0xAA",
		"status":          "0x1",
		"logs":            []any{},
	})

	r, err := newAdapter(t, "sepolia", stub).ParseReceipt(context.Background(), "0xAA")
	require.NoError(t, err)
	assert.True(t, r.Success)
	assert.Equal(t, "0xaa", r.Hash)
	assert.Equal(t, "0x9858effd232b4033e47d90003d41ec34ecaeda94", r.From)
	assert.Equal(t, recipient, r.To)
	assert.Empty(t, r.TokenAddress)
	assert.Equal(t, "10000000000000000", r.Amount.String())
}

func TestEVMParseERC20Receipt(t *testing.T) {
	meta, err := txbuilder.EncodeMetadata("ETH", "")
	require.NoError(t, err)
	input := append(txbuilder.EncodeTransfer(common.HexToAddress(recipient), big.NewInt(25_000_000)), meta...)

	stub := test.NewRPCStub(t)
	stub.HandleResult("eth_getTransactionByHash", map[string]any{
		"hash":  "0xbb",
		"from":  "0x9858effd232b4033e47d90003d41ec34ecaeda94",
		"to":    "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		"value": "0x0",
		"input": hexutil.Encode(input),
	})
	stub.HandleResult("eth_getTransactionReceipt", map[string]any{"status": "0x0", "logs": []any{}})

	r, err := newAdapter(t, "ethereum", stub).ParseReceipt(context.Background(), "0xbb")
	require.NoError(t, err)
	assert.False(t, r.Success)
	assert.Equal(t, "0xdac17f958d2ee523a2206206994597c13d831ec7", r.TokenAddress)
	assert.Equal(t, recipient, r.To)
	assert.Equal(t, int64(25_000_000), r.Amount.Int64())
	assert.Equal(t, meta, r.Data)
}

func TestEVMParseTransferLog(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("eth_getTransactionByHash", map[string]any{
		"from":  "0x9858effd232b4033e47d90003d41ec34ecaeda94",
		"to":    "0x1111111111111111111111111111111111111111",
		"value": "0x0",
		"input": "0x12345678",
	})
	stub.HandleResult("eth_getTransactionReceipt", map[string]any{
		"status": "0x1",
		"logs": []map[string]any{{
			"address": "0xdAC17F958D2ee523a2206206994597C13D831ec7",
			"topics": []string{
				txbuilder.TransferEventTopic.Hex(),
				common.BytesToHash(common.HexToAddress("0x9858effd232b4033e47d90003d41ec34ecaeda94").Bytes()).Hex(),
				common.BytesToHash(common.HexToAddress(recipient).Bytes()).Hex(),
			},
			"data": common.BigToHash(big.NewInt(500)).Hex(),
		}},
	})

	r, err := newAdapter(t, "ethereum", stub).ParseReceipt(context.Background(), "0xcc")
	require.NoError(t, err)
	assert.Equal(t, recipient, r.To)
	assert.Equal(t, int64(500), r.Amount.Int64())
	assert.Equal(t, "0xdac17f958d2ee523a2206206994597c13d831ec7", r.TokenAddress)
}

func TestEVMParseReceiptPending(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("eth_getTransactionByHash", map[string]any{"from": "0x01", "to": recipient, "value": "0x1", "input": "0x"})
	stub.HandleResult("eth_getTransactionReceipt", nil)

	_, err := newAdapter(t, "sepolia", stub).ParseReceipt(context.Background(), "0xdd")
	assert.Equal(t, rpc.KindNotFound, rpc.KindOf(err))
}

func TestEVMParseReceiptMalformedValue(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("eth_getTransactionByHash", map[string]any{"from": "0x01", "to": recipient, "value": "", "input": "0x"})
	stub.HandleResult("eth_getTransactionReceipt", map[string]any{"status": "0x1"})

	_, err := newAdapter(t, "sepolia", stub).ParseReceipt(context.Background(), "0xdd")
	assert.Equal(t, rpc.KindDecode, rpc.KindOf(err))
}

func TestSolanaParseReceipt(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("getTransaction", map[string]any{
		"slot": 10,
		"meta": map[string]any{"err": nil, "fee": 5000},
		"transaction": map[string]any{
			"signatures": []string{"sig"},
			"message": map[string]any{
				"accountKeys": []map[string]any{},
				"instructions": []map[string]any{
					{
						"program":   "system",
						"programId": "11111111111111111111111111111111",
						"parsed": map[string]any{
							"type": "transfer",
							"info": map[string]any{"source": "Src", "destination": "Dst", "lamports": 1500000000},
						},
					},
					{
						"program":   "spl-memo",
						"programId": "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr",
						"parsed":    "USDC\u000010",
					},
				},
			},
		},
	})

	r, err := newAdapter(t, "solana-devnet", stub).ParseReceipt(context.Background(), "sig")
	require.NoError(t, err)
	assert.True(t, r.Success)
	assert.Equal(t, "Src", r.From)
	assert.Equal(t, "Dst", r.To)
	assert.Equal(t, "1500000000", r.Amount.String())
	assert.Equal(t, []byte("USDC\x0010"), r.Data)
}

func TestSolanaParseFailedReceipt(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("getTransaction", map[string]any{
		"meta":        map[string]any{"err": map[string]any{"InstructionError": []any{0, "Custom"}}},
		"transaction": map[string]any{"message": map[string]any{"instructions": []any{}}},
	})

	r, err := newAdapter(t, "solana", stub).ParseReceipt(context.Background(), "sig")
	require.NoError(t, err)
	assert.False(t, r.Success)
	assert.Equal(t, 0, r.Amount.Sign())
}

func TestSolanaRejectsTokenTransfer(t *testing.T) {
	a := newAdapter(t, "solana", test.NewRPCStub(t))

	_, err := a.BuildTx(context.Background(), &adapter.TransferRequest{
		Owner: owner, Purpose: purpose, To: "Dst", Token: "mint", Amount: big.NewInt(1),
	})
	require.ErrorIs(t, err, adapter.ErrUnsupportedToken)
}

func TestTronParseReceipt(t *testing.T) {
	from, err := address.EVMToTron("0x9858EfFD232B4033E47d90003D41EC34EcaEda94")
	require.NoError(t, err)
	to, err := address.EVMToTron(recipient)
	require.NoError(t, err)

	fromRaw, err := address.ParseTron(from)
	require.NoError(t, err)
	toRaw, err := address.ParseTron(to)
	require.NoError(t, err)

	param, err := anypb.New(&core.TransferContract{OwnerAddress: fromRaw, ToAddress: toRaw, Amount: 2_000_000})
	require.NoError(t, err)
	raw, err := proto.Marshal(&core.TransactionRaw{
		Contract: []*core.Transaction_Contract{{Type: core.Transaction_Contract_TransferContract, Parameter: param}},
		Data:     []byte("USDT\x00"),
	})
	require.NoError(t, err)

	sum := sha256.Sum256(raw)
	txID := hex.EncodeToString(sum[:])

	stub := test.NewRPCStub(t)
	stub.HandleREST("/wallet/gettransactionbyid", func(json.RawMessage) (int, any) {
		return 200, map[string]any{
			"txID":         txID,
			"raw_data_hex": hex.EncodeToString(raw),
			"ret":          []map[string]any{{"contractRet": "SUCCESS"}},
		}
	})
	stub.HandleREST("/wallet/gettransactioninfobyid", func(json.RawMessage) (int, any) {
		return 200, map[string]any{"id": txID, "blockNumber": 100}
	})

	r, err := newAdapter(t, "tron-nile", stub).ParseReceipt(context.Background(), txID)
	require.NoError(t, err)
	assert.True(t, r.Success)
	assert.Equal(t, from, r.From)
	assert.Equal(t, to, r.To)
	assert.Equal(t, int64(2_000_000), r.Amount.Int64())
	assert.Equal(t, []byte("USDT\x00"), r.Data)
}

func TestRegistry(t *testing.T) {
	stub := test.NewRPCStub(t)
	reg := adapter.NewRegistry()

	require.NoError(t, reg.Register(newAdapter(t, "sepolia", stub)))
	require.NoError(t, reg.Register(newAdapter(t, "base", stub)))
	require.Error(t, reg.Register(newAdapter(t, "sepolia", stub)))

	a, err := reg.Get("sepolia")
	require.NoError(t, err)
	assert.Equal(t, "sepolia", a.Network().Name)

	_, err = reg.Get("nope")
	require.ErrorIs(t, err, adapter.ErrUnknownNetwork)

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "base", list[0].Network().Name)
}

func TestNewRejectsBitcoin(t *testing.T) {
	gw, err := rpc.NewGateway(rpc.Config{Network: "bitcoin", URLs: []string{"http://localhost"}})
	require.NoError(t, err)

	_, err = adapter.New(network(t, "bitcoin"), gw, test.NewKeyStore(t, nil))
	require.ErrorIs(t, err, adapter.ErrUnsupportedChain)
}

func TestNativeBalance(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("eth_getBalance", "0xde0b6b3a7640000")
	stub.HandleResult("getAccountInfo", map[string]any{"context": map[string]any{"slot": 1}, "value": nil})

	balance, err := newAdapter(t, "sepolia", stub).NativeBalance(context.Background(), owner, purpose)
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", balance.String())

	balance, err = newAdapter(t, "solana", stub).NativeBalance(context.Background(), owner, purpose)
	require.NoError(t, err)
	assert.Equal(t, 0, balance.Sign())
}

func TestEVMTokenBalance(t *testing.T) {
	usdc := "0x1c7D4B196Cb0C7B01d743Fbc6116a902379C7238"

	stub := test.NewRPCStub(t)

	var call map[string]string
	stub.Handle("eth_call", func(params json.RawMessage) (any, *test.RPCError) {
		var args []json.RawMessage
		if assert.NoError(t, json.Unmarshal(params, &args)) && assert.NotEmpty(t, args) {
			assert.NoError(t, json.Unmarshal(args[0], &call))
		}
		return common.BigToHash(big.NewInt(25_000_000)).Hex(), nil
	})

	a := newAdapter(t, "sepolia", stub)
	pool, err := a.Address(context.Background(), owner, purpose)
	require.NoError(t, err)

	balance, err := a.TokenBalance(context.Background(), owner, purpose, usdc)
	require.NoError(t, err)
	assert.Equal(t, int64(25_000_000), balance.Int64())

	assert.Equal(t, usdc, call["to"])
	assert.Equal(t, hexutil.Encode(txbuilder.EncodeBalanceOf(common.HexToAddress(pool))), call["data"])

	stub.HandleResult("eth_call", "0x01")
	_, err = a.TokenBalance(context.Background(), owner, purpose, usdc)
	assert.Equal(t, rpc.KindDecode, rpc.KindOf(err))

	_, err = a.TokenBalance(context.Background(), owner, purpose, "USDC")
	require.ErrorIs(t, err, txbuilder.ErrInvalidRequest)

	_, err = newAdapter(t, "solana", stub).TokenBalance(context.Background(), owner, purpose, usdc)
	require.ErrorIs(t, err, adapter.ErrUnsupportedToken)
}
