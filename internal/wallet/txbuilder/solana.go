package txbuilder

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/chain"
)

func (s *service) BuildSolana(ctx context.Context, req *SolanaRequest) (*UnsignedTransaction, error) {
	if s.network.Kind != chain.KindSolana || s.solana == nil {
		return nil, errors.Wrapf(ErrUnsupportedChain, "no Solana node for %s", s.network.Name)
	}
	if req == nil {
		return nil, errors.Wrap(ErrInvalidRequest, "nil request")
	}

	from, err := solana.PublicKeyFromBase58(req.From)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRequest, "from %q: %v", req.From, err)
	}
	to, err := solana.PublicKeyFromBase58(req.To)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRequest, "to %q: %v", req.To, err)
	}
	if req.Lamports == 0 {
		return nil, errors.Wrap(ErrInvalidAmount, "lamports must be positive")
	}

	latest, err := s.solana.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch latest blockhash")
	}

	blockhash, err := solana.HashFromBase58(latest.Blockhash)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid blockhash %q", latest.Blockhash)
	}

	instructions := []solana.Instruction{
		system.NewTransferInstruction(req.Lamports, from, to).Build(),
	}
	if len(req.Memo) > 0 {
		instructions = append(instructions, solana.NewInstruction(
			solana.MemoProgramID,
			solana.AccountMetaSlice{solana.Meta(from).SIGNER()},
			req.Memo,
		))
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(from))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build solana transaction")
	}

	return &UnsignedTransaction{Solana: &SolanaTx{
		Transaction:     tx,
		FeePayer:        from,
		RecentBlockhash: blockhash,
	}}, nil
}
