package adapter

import (
	"context"
	"encoding/json"
	"math/big"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/keys"
	"github/chapool/chainswap/internal/wallet/rpc"
	"github/chapool/chainswap/internal/wallet/signer"
	"github/chapool/chainswap/internal/wallet/submit"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

const (
	programSystem = "system"
	programMemo   = "spl-memo"
	programToken  = "spl-token"
)

type SolanaNode interface {
	txbuilder.SolanaNode
	submit.SolanaSender
	GetAccountInfo(ctx context.Context, addr string) (*rpc.SolanaAccount, error)
	GetTransaction(ctx context.Context, signature string) (*rpc.SolanaTransaction, error)
}

type solanaAdapter struct {
	base
	node SolanaNode
}

// NewSolana creates the adapter of a Solana cluster. Only native SOL transfers are built.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewSolana(network *chain.Network, node SolanaNode, keyStore keys.Service, opts ...Option) ChainAdapter {
	o := newOptions(opts)

	return &solanaAdapter{
		base: base{
			network:   network,
			keys:      keyStore,
			builder:   txbuilder.NewService(network, txbuilder.WithSolanaNode(node)),
			signer:    signer.NewService(keyStore),
			submitter: submit.NewService(network.Name, submit.NewSolanaBroadcaster(node), submit.WithMetrics(o.metrics)),
		},
		node: node,
	}
}

func (a *solanaAdapter) BuildTx(ctx context.Context, req *TransferRequest) (*txbuilder.UnsignedTransaction, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Token != "" {
		return nil, errors.Wrapf(ErrUnsupportedToken, "%s on %s", req.Token, a.network.Name)
	}
	if !req.Amount.IsUint64() {
		return nil, errors.Wrapf(ErrAmountRange, "%s lamports", req.Amount)
	}

	from, err := a.Address(ctx, req.Owner, req.Purpose)
	if err != nil {
		return nil, err
	}

	return a.builder.BuildSolana(ctx, &txbuilder.SolanaRequest{
		From:     from,
		To:       req.To,
		Lamports: req.Amount.Uint64(),
		Memo:     req.Metadata,
	})
}

type parsedInstruction struct {
	Type string          `json:"type"`
	Info json.RawMessage `json:"info"`
}

type systemTransferInfo struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Lamports    uint64 `json:"lamports"`
}

type tokenTransferInfo struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Authority   string `json:"authority"`
	Mint        string `json:"mint"`
	Amount      string `json:"amount"`
	TokenAmount *struct {
		Amount string `json:"amount"`
	} `json:"tokenAmount"`
}

func (a *solanaAdapter) ParseReceipt(ctx context.Context, hash string) (*Receipt, error) {
	tx, err := a.node.GetTransaction(ctx, hash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch transaction")
	}
	if tx.Meta == nil {
		return nil, &rpc.Error{Kind: rpc.KindDecode, Method: "getTransaction", Message: "missing meta"}
	}

	out := &Receipt{
		Network: a.network.Name,
		Hash:    hash,
		Success: len(tx.Meta.Err) == 0 || string(tx.Meta.Err) == "null",
	}

	for _, ix := range tx.Transaction.Message.Instructions {
		switch ix.Program {
		case programMemo:
			var memo string
			if err := json.Unmarshal(ix.Parsed, &memo); err != nil {
				return nil, &rpc.Error{Kind: rpc.KindDecode, Method: "getTransaction", Message: "memo", Err: err}
			}
			out.Memo = memo
			out.Data = []byte(memo)

		case programSystem, programToken:
			if out.Amount != nil {
				continue
			}
			if err := a.parseTransfer(tx, ix, out); err != nil {
				return nil, err
			}
		}
	}

	if out.Amount == nil {
		out.Amount = new(big.Int)
	}

	return out, nil
}

// parseTransfer fills sender, recipient and amount from the first system or token transfer.
func (a *solanaAdapter) parseTransfer(tx *rpc.SolanaTransaction, ix rpc.SolanaInstruction, out *Receipt) error {
	var parsed parsedInstruction
	if err := json.Unmarshal(ix.Parsed, &parsed); err != nil {
		// unparsed instructions arrive as plain data
		return nil //nolint:nilerr
	}

	switch {
	case ix.Program == programSystem && parsed.Type == "transfer":
		var info systemTransferInfo
		if err := json.Unmarshal(parsed.Info, &info); err != nil {
			return &rpc.Error{Kind: rpc.KindDecode, Method: "getTransaction", Message: "system transfer", Err: err}
		}
		out.From = info.Source
		out.To = info.Destination
		out.Amount = new(big.Int).SetUint64(info.Lamports)

	case ix.Program == programToken && (parsed.Type == "transfer" || parsed.Type == "transferChecked"):
		var info tokenTransferInfo
		if err := json.Unmarshal(parsed.Info, &info); err != nil {
			return &rpc.Error{Kind: rpc.KindDecode, Method: "getTransaction", Message: "token transfer", Err: err}
		}

		raw := info.Amount
		if info.TokenAmount != nil {
			raw = info.TokenAmount.Amount
		}
		amount, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return &rpc.Error{Kind: rpc.KindDecode, Method: "getTransaction", Message: "token amount " + strconv.Quote(raw)}
		}

		owner, mint := tokenAccountOwner(tx, info.Destination)
		if info.Mint != "" {
			mint = info.Mint
		}
		if owner == "" {
			return &rpc.Error{Kind: rpc.KindDecode, Method: "getTransaction", Message: "unknown owner of token account " + info.Destination}
		}

		out.From = info.Authority
		out.To = owner
		out.TokenAddress = mint
		out.Amount = amount
	}

	return nil
}

// tokenAccountOwner resolves a token account to its owner wallet and mint via the post balances.
func tokenAccountOwner(tx *rpc.SolanaTransaction, account string) (string, string) {
	target, err := solana.PublicKeyFromBase58(account)
	if err != nil {
		return "", ""
	}

	accountKeys := tx.Transaction.Message.AccountKeys
	for _, bal := range tx.Meta.PostTokenBalances {
		if bal.AccountIndex < 0 || bal.AccountIndex >= len(accountKeys) {
			continue
		}
		if key, err := solana.PublicKeyFromBase58(accountKeys[bal.AccountIndex].Pubkey); err == nil && key.Equals(target) {
			return bal.Owner, bal.Mint
		}
	}

	return "", ""
}
