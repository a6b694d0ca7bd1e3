package rpc

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	BlockPending = "pending"
	BlockLatest  = "latest"
)

// EVMClient exposes the Ethereum JSON-RPC methods the pipeline needs
type EVMClient struct {
	gw *Gateway
}

func NewEVMClient(gw *Gateway) *EVMClient {
	return &EVMClient{gw: gw}
}

func (c *EVMClient) Gateway() *Gateway {
	return c.gw
}

// EVMTransaction is the subset of eth_getTransactionByHash we read. Quantities stay hex encoded.
type EVMTransaction struct {
	Hash        string  `json:"hash"`
	From        string  `json:"from"`
	To          *string `json:"to"`
	Value       string  `json:"value"`
	Input       string  `json:"input"`
	Nonce       string  `json:"nonce"`
	BlockNumber *string `json:"blockNumber"`
	Type        string  `json:"type"`
}

type EVMLog struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

// EVMReceipt is the subset of eth_getTransactionReceipt we read
type EVMReceipt struct {
	TransactionHash string   `json:"transactionHash"`
	Status          string   `json:"status"`
	From            string   `json:"from"`
	To              *string  `json:"to"`
	BlockNumber     string   `json:"blockNumber"`
	GasUsed         string   `json:"gasUsed"`
	Logs            []EVMLog `json:"logs"`
}

// GetTransactionCount returns the nonce of addr at block ("pending" for the next usable nonce).
func (c *EVMClient) GetTransactionCount(ctx context.Context, addr string, block string) (uint64, error) {
	const method = "eth_getTransactionCount"

	var result string
	if err := c.gw.Call(ctx, method, []any{addr, block}, &result); err != nil {
		return 0, err
	}

	nonce, err := hexutil.DecodeUint64(result)
	if err != nil {
		return 0, decodeError(method, err)
	}

	return nonce, nil
}

func (c *EVMClient) GasPrice(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "eth_gasPrice")
}

func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	return c.callBig(ctx, "eth_chainId")
}

func (c *EVMClient) GetBalance(ctx context.Context, addr string) (*big.Int, error) {
	const method = "eth_getBalance"

	var result string
	if err := c.gw.Call(ctx, method, []any{addr, BlockLatest}, &result); err != nil {
		return nil, err
	}

	v, err := hexutil.DecodeBig(result)
	if err != nil {
		return nil, decodeError(method, err)
	}

	return v, nil
}

// Call runs eth_call of data against contract to at the latest block and returns the raw result.
func (c *EVMClient) Call(ctx context.Context, to string, data []byte) ([]byte, error) {
	const method = "eth_call"

	msg := map[string]string{"to": to, "data": hexutil.Encode(data)}

	var result string
	if err := c.gw.Call(ctx, method, []any{msg, BlockLatest}, &result); err != nil {
		return nil, err
	}

	out, err := hexutil.Decode(result)
	if err != nil {
		return nil, decodeError(method, err)
	}

	return out, nil
}

// SendRawTransaction broadcasts 0x-prefixed signed bytes and returns the node reported hash.
func (c *EVMClient) SendRawTransaction(ctx context.Context, rawHex string) (string, error) {
	var hash string
	if err := c.gw.Call(ctx, "eth_sendRawTransaction", []any{rawHex}, &hash); err != nil {
		return "", err
	}

	return hash, nil
}

func (c *EVMClient) GetTransactionByHash(ctx context.Context, hash string) (*EVMTransaction, error) {
	const method = "eth_getTransactionByHash"

	var tx *EVMTransaction
	if err := c.gw.Call(ctx, method, []any{hash}, &tx); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, notFound(method, hash)
	}

	return tx, nil
}

func (c *EVMClient) GetTransactionReceipt(ctx context.Context, hash string) (*EVMReceipt, error) {
	const method = "eth_getTransactionReceipt"

	var receipt *EVMReceipt
	if err := c.gw.Call(ctx, method, []any{hash}, &receipt); err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, notFound(method, hash)
	}

	return receipt, nil
}

func (c *EVMClient) callBig(ctx context.Context, method string) (*big.Int, error) {
	var result string
	if err := c.gw.Call(ctx, method, nil, &result); err != nil {
		return nil, err
	}

	v, err := hexutil.DecodeBig(result)
	if err != nil {
		return nil, decodeError(method, err)
	}

	return v, nil
}
