package types

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PostSwapPayload asks the pool to process an inbound transaction
type PostSwapPayload struct {
	Network string `json:"network"`
	TxHash  string `json:"tx_hash"`

	// VerifyOnly checks the deposit without paying out
	VerifyOnly bool `json:"verify_only,omitempty"`
}

func (p *PostSwapPayload) Validate() []*HTTPValidationErrorDetail {
	var details []*HTTPValidationErrorDetail

	if strings.TrimSpace(p.Network) == "" {
		details = append(details, &HTTPValidationErrorDetail{Key: "network", In: "body", Error: "network is required"})
	}
	if strings.TrimSpace(p.TxHash) == "" {
		details = append(details, &HTTPValidationErrorDetail{Key: "tx_hash", In: "body", Error: "tx_hash is required"})
	}

	return details
}

type AddressResponse struct {
	Network string `json:"network"`
	Kind    string `json:"kind"`
	Address string `json:"address"`
}

type DepositResponse struct {
	Network      string          `json:"network"`
	TxHash       string          `json:"tx_hash"`
	Sender       string          `json:"sender"`
	Recipient    string          `json:"recipient"`
	Token        string          `json:"token"`
	TokenAddress string          `json:"token_address,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	TokenOut     string          `json:"token_out,omitempty"`
	AmountOut    string          `json:"amount_out,omitempty"`
}

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
	Status    string          `json:"status"`
	Reason    string          `json:"reason,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type SwapListResponse struct {
	Records []*SwapRecord `json:"records"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	Size    int           `json:"size"`
}

type TokenItem struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Decimals int32  `json:"decimals"`
	IsNative bool   `json:"is_native"`
}

type ChainItem struct {
	Name         string       `json:"name"`
	Kind         string       `json:"kind"`
	ChainID      int64        `json:"chain_id,omitempty"`
	NativeSymbol string       `json:"native_symbol"`
	Testnet      bool         `json:"testnet"`
	Tokens       []*TokenItem `json:"tokens"`
}

type GetChainsResponse struct {
	Chains []*ChainItem `json:"chains"`
}
