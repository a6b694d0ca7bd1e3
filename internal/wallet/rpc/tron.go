package rpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// TronClient wraps the Tron full node HTTP API
type TronClient struct {
	gw *Gateway
}

func NewTronClient(gw *Gateway) *TronClient {
	return &TronClient{gw: gw}
}

// TronTransaction is the JSON transaction object returned by createtransaction / gettransactionbyid
type TronTransaction struct {
	TxID       string          `json:"txID"`
	RawData    json.RawMessage `json:"raw_data"`
	RawDataHex string          `json:"raw_data_hex"`
	Signature  []string        `json:"signature,omitempty"`
	Visible    bool            `json:"visible"`
	Ret        []struct {
		ContractRet string `json:"contractRet"`
	} `json:"ret,omitempty"`

	// createtransaction reports failures in-band
	Error string `json:"Error,omitempty"`
}

type TronBroadcastResult struct {
	Result  bool   `json:"result"`
	TxID    string `json:"txid"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TronAccount struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

type TronTransactionInfo struct {
	ID          string `json:"id"`
	BlockNumber int64  `json:"blockNumber"`
	Result      string `json:"result"`
	ResMessage  string `json:"resMessage"`
	Receipt     struct {
		Result string `json:"result"`
	} `json:"receipt"`
}

// CreateTransaction asks the node for an unsigned TRX transfer. Addresses are 41-prefixed hex.
func (c *TronClient) CreateTransaction(ctx context.Context, ownerHex string, toHex string, amount int64) (*TronTransaction, error) {
	const path = "/wallet/createtransaction"

	body := map[string]any{
		"owner_address": ownerHex,
		"to_address":    toHex,
		"amount":        amount,
	}

	var tx TronTransaction
	if err := c.gw.Post(ctx, path, body, &tx); err != nil {
		return nil, err
	}
	if tx.Error != "" {
		return nil, &Error{Kind: ClassifyRPCError(tx.Error), Method: path, Message: tx.Error}
	}
	if tx.RawDataHex == "" || tx.TxID == "" {
		return nil, decodeError(path, ErrNotFound)
	}

	return &tx, nil
}

// BroadcastTransaction submits a signed transaction. A rejected broadcast is returned as *Error.
func (c *TronClient) BroadcastTransaction(ctx context.Context, tx *TronTransaction) (*TronBroadcastResult, error) {
	const path = "/wallet/broadcasttransaction"

	var res TronBroadcastResult
	if err := c.gw.Post(ctx, path, tx, &res); err != nil {
		return nil, err
	}

	if !res.Result {
		msg := decodeTronMessage(res.Message)
		text := strings.TrimSpace(res.Code + " " + msg)
		return nil, &Error{Kind: ClassifyRPCError(text), Method: path, Message: text}
	}

	return &res, nil
}

func (c *TronClient) GetAccount(ctx context.Context, addrHex string) (*TronAccount, error) {
	const path = "/wallet/getaccount"

	var acc TronAccount
	if err := c.gw.Post(ctx, path, map[string]any{"address": addrHex}, &acc); err != nil {
		return nil, err
	}
	// unactivated accounts come back as {}
	if acc.Address == "" {
		return nil, notFound(path, addrHex)
	}

	return &acc, nil
}

func (c *TronClient) GetTransactionByID(ctx context.Context, txID string) (*TronTransaction, error) {
	const path = "/wallet/gettransactionbyid"

	var tx TronTransaction
	if err := c.gw.Post(ctx, path, map[string]any{"value": txID}, &tx); err != nil {
		return nil, err
	}
	if tx.TxID == "" {
		return nil, notFound(path, txID)
	}

	return &tx, nil
}

func (c *TronClient) GetTransactionInfoByID(ctx context.Context, txID string) (*TronTransactionInfo, error) {
	const path = "/wallet/gettransactioninfobyid"

	var info TronTransactionInfo
	if err := c.gw.Post(ctx, path, map[string]any{"value": txID}, &info); err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, notFound(path, txID)
	}

	return &info, nil
}

// decodeTronMessage decodes the hex encoded message field of broadcast errors, falling back to the raw text.
func decodeTronMessage(msg string) string {
	b, err := hex.DecodeString(msg)
	if err != nil {
		return msg
	}

	return string(b)
}
