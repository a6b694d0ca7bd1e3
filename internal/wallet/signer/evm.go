package signer

import (
	"bytes"
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/keys"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

var (
	secp256k1N     = crypto.S256().Params().N
	secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)
)

// signEVM signs an EIP-1559 transaction
func (s *service) signEVM(ctx context.Context, utx *txbuilder.EVMTx, owner string, purpose string) (*SignedTransaction, error) {
	key, err := s.keys.GetOrDeriveKey(ctx, owner, purpose, keys.SchemeSecp256k1)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}

	pub, err := crypto.UnmarshalPubkey(key.PublicKey)
	if err != nil {
		return nil, errors.Wrap(ErrRecoveryFailed, "derived key is not an uncompressed secp256k1 key")
	}
	if crypto.PubkeyToAddress(*pub) != utx.From {
		return nil, errors.Wrapf(ErrSignatureMismatch, "transaction sender %s is not the derived address", utx.From.Hex())
	}

	to := utx.To

	//nolint:varnamelen // tx is a common abbreviation for transaction
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   utx.ChainID,
		Nonce:     utx.Nonce,
		GasTipCap: utx.MaxPriorityFeePerGas,
		GasFeeCap: utx.MaxFeePerGas,
		Gas:       utx.GasLimit,
		To:        &to,
		Value:     utx.Value,
		Data:      utx.Data,
	})

	signer := types.NewLondonSigner(utx.ChainID)
	digest := signer.Hash(tx).Bytes()

	sig, err := s.keys.SignDigest(ctx, owner, purpose, keys.SchemeSecp256k1, digest)
	if err != nil {
		return nil, err
	}

	full, err := withRecoveryID(digest, sig, key.PublicKey)
	if err != nil {
		return nil, err
	}

	signedTx, err := tx.WithSignature(signer, full)
	if err != nil {
		return nil, errors.Wrap(err, "failed to attach signature")
	}

	sender, err := types.Sender(signer, signedTx)
	if err != nil {
		return nil, errors.Wrap(ErrSignatureMismatch, err.Error())
	}
	if sender != utx.From {
		return nil, errors.Wrapf(ErrSignatureMismatch, "recovered sender %s, expected %s", sender.Hex(), utx.From.Hex())
	}

	raw, err := signedTx.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal transaction")
	}

	return &SignedTransaction{
		Kind:    chain.KindEVM,
		Raw:     raw,
		Encoded: hexutil.Encode(raw),
		Hash:    signedTx.Hash().Hex(),
		From:    sender.Hex(),
	}, nil
}

// withRecoveryID returns r || s || v for a 64 byte signature over digest.
// High-s signatures are normalized first. Exactly one of v = 0, 1 must recover pub.
func withRecoveryID(digest []byte, sig []byte, pub []byte) ([]byte, error) {
	if len(sig) != keys.Secp256k1SignatureLength {
		return nil, errors.Wrapf(ErrRecoveryFailed, "signature has %d bytes", len(sig))
	}

	compact := normalizeS(sig)
	if !crypto.VerifySignature(pub, digest, compact) {
		return nil, errors.Wrap(ErrRecoveryFailed, "signature does not verify against derived key")
	}

	var (
		recovered []byte
		matches   int
	)
	for v := byte(0); v <= 1; v++ {
		candidate := append(append(make([]byte, 0, 65), compact...), v)

		got, err := crypto.Ecrecover(digest, candidate)
		if err != nil {
			continue
		}
		if bytes.Equal(got, pub) {
			recovered = candidate
			matches++
		}
	}

	if matches != 1 {
		return nil, errors.Wrapf(ErrRecoveryFailed, "%d recovery ids match the derived key", matches)
	}

	return recovered, nil
}

func normalizeS(sig []byte) []byte {
	out := append([]byte(nil), sig...)

	sv := new(big.Int).SetBytes(out[32:64])
	if sv.Cmp(secp256k1HalfN) > 0 {
		sv.Sub(secp256k1N, sv)
		sv.FillBytes(out[32:64])
	}

	return out
}
