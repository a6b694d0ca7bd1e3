package signer

import (
	"context"
	"crypto/ed25519"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/keys"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

func (s *service) signSolana(ctx context.Context, utx *txbuilder.SolanaTx, owner string, purpose string) (*SignedTransaction, error) {
	if utx.Transaction == nil {
		return nil, errors.Wrap(ErrUnsupportedTransaction, "missing solana transaction")
	}

	msg := utx.Transaction.Message
	if msg.Header.NumRequiredSignatures != 1 {
		return nil, errors.Wrapf(ErrUnsupportedTransaction, "%d required signatures", msg.Header.NumRequiredSignatures)
	}

	key, err := s.keys.GetOrDeriveKey(ctx, owner, purpose, keys.SchemeEd25519)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}

	pub := solana.PublicKeyFromBytes(key.PublicKey)
	if !pub.Equals(utx.FeePayer) || len(msg.AccountKeys) == 0 || !msg.AccountKeys[0].Equals(pub) {
		return nil, errors.Wrapf(ErrSignatureMismatch, "fee payer %s is not the derived key", utx.FeePayer)
	}

	payload, err := msg.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize message")
	}

	sig, err := s.keys.SignDigest(ctx, owner, purpose, keys.SchemeEd25519, payload)
	if err != nil {
		return nil, err
	}

	if len(sig) != ed25519.SignatureSize || !ed25519.Verify(ed25519.PublicKey(key.PublicKey), payload, sig) {
		return nil, errors.Wrap(ErrRecoveryFailed, "ed25519 signature does not verify")
	}

	signature := solana.SignatureFromBytes(sig)
	signed := solana.Transaction{
		Signatures: []solana.Signature{signature},
		Message:    msg,
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize transaction")
	}

	encoded, err := signed.ToBase64()
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode transaction")
	}

	return &SignedTransaction{
		Kind:    chain.KindSolana,
		Raw:     raw,
		Encoded: encoded,
		Hash:    signature.String(),
		From:    pub.String(),
	}, nil
}
