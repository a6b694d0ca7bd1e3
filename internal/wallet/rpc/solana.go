package rpc

import (
	"context"
	"encoding/json"
)

const defaultSolanaCommitment = "confirmed"

// SolanaClient exposes the Solana JSON-RPC methods the pipeline needs
type SolanaClient struct {
	gw *Gateway
}

func NewSolanaClient(gw *Gateway) *SolanaClient {
	return &SolanaClient{gw: gw}
}

type SolanaBlockhash struct {
	Blockhash            string `json:"blockhash"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

type SolanaAccount struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Executable bool   `json:"executable"`
}

type SolanaSignatureStatus struct {
	Slot               uint64          `json:"slot"`
	Confirmations      *uint64         `json:"confirmations"`
	Err                json.RawMessage `json:"err"`
	ConfirmationStatus string          `json:"confirmationStatus"`
}

type SolanaTokenBalance struct {
	AccountIndex  int    `json:"accountIndex"`
	Mint          string `json:"mint"`
	Owner         string `json:"owner"`
	UITokenAmount struct {
		Amount   string `json:"amount"`
		Decimals int32  `json:"decimals"`
	} `json:"uiTokenAmount"`
}

type SolanaInstruction struct {
	Program   string          `json:"program"`
	ProgramID string          `json:"programId"`
	Parsed    json.RawMessage `json:"parsed"`
}

// SolanaTransaction is a jsonParsed getTransaction result
type SolanaTransaction struct {
	Slot uint64 `json:"slot"`
	Meta *struct {
		Err               json.RawMessage      `json:"err"`
		Fee               uint64               `json:"fee"`
		PreTokenBalances  []SolanaTokenBalance `json:"preTokenBalances"`
		PostTokenBalances []SolanaTokenBalance `json:"postTokenBalances"`
	} `json:"meta"`
	Transaction struct {
		Signatures []string `json:"signatures"`
		Message    struct {
			AccountKeys []struct {
				Pubkey string `json:"pubkey"`
				Signer bool   `json:"signer"`
			} `json:"accountKeys"`
			Instructions []SolanaInstruction `json:"instructions"`
		} `json:"message"`
	} `json:"transaction"`
}

type solanaContextValue[T any] struct {
	Context struct {
		Slot uint64 `json:"slot"`
	} `json:"context"`
	Value T `json:"value"`
}

func (c *SolanaClient) GetLatestBlockhash(ctx context.Context) (*SolanaBlockhash, error) {
	var out solanaContextValue[*SolanaBlockhash]
	params := []any{map[string]any{"commitment": "finalized"}}
	if err := c.gw.Call(ctx, "getLatestBlockhash", params, &out); err != nil {
		return nil, err
	}
	if out.Value == nil || out.Value.Blockhash == "" {
		return nil, decodeError("getLatestBlockhash", ErrNotFound)
	}

	return out.Value, nil
}

// SendTransaction submits a base64 encoded transaction and returns its signature.
func (c *SolanaClient) SendTransaction(ctx context.Context, encoded string) (string, error) {
	params := []any{encoded, map[string]any{
		"encoding":            "base64",
		"preflightCommitment": defaultSolanaCommitment,
	}}

	var sig string
	if err := c.gw.Call(ctx, "sendTransaction", params, &sig); err != nil {
		return "", err
	}

	return sig, nil
}

func (c *SolanaClient) GetTransaction(ctx context.Context, signature string) (*SolanaTransaction, error) {
	const method = "getTransaction"

	params := []any{signature, map[string]any{
		"encoding":                       "jsonParsed",
		"commitment":                     defaultSolanaCommitment,
		"maxSupportedTransactionVersion": 0,
	}}

	var tx *SolanaTransaction
	if err := c.gw.Call(ctx, method, params, &tx); err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, notFound(method, signature)
	}

	return tx, nil
}

func (c *SolanaClient) GetAccountInfo(ctx context.Context, addr string) (*SolanaAccount, error) {
	const method = "getAccountInfo"

	var out solanaContextValue[*SolanaAccount]
	params := []any{addr, map[string]any{"encoding": "base64", "commitment": defaultSolanaCommitment}}
	if err := c.gw.Call(ctx, method, params, &out); err != nil {
		return nil, err
	}
	if out.Value == nil {
		return nil, notFound(method, addr)
	}

	return out.Value, nil
}

// GetSignatureStatuses returns one entry per signature, nil for unknown signatures.
func (c *SolanaClient) GetSignatureStatuses(ctx context.Context, signatures []string) ([]*SolanaSignatureStatus, error) {
	var out solanaContextValue[[]*SolanaSignatureStatus]
	params := []any{signatures, map[string]any{"searchTransactionHistory": true}}
	if err := c.gw.Call(ctx, "getSignatureStatuses", params, &out); err != nil {
		return nil, err
	}

	return out.Value, nil
}
