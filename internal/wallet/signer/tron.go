package signer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github/chapool/chainswap/internal/wallet/address"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/keys"
	"github/chapool/chainswap/internal/wallet/txbuilder"
)

func (s *service) signTron(ctx context.Context, utx *txbuilder.TronTx, owner string, purpose string) (*SignedTransaction, error) {
	if utx.Node == nil || len(utx.RawData) == 0 {
		return nil, errors.Wrap(ErrUnsupportedTransaction, "missing tron raw data")
	}

	key, err := s.keys.GetOrDeriveKey(ctx, owner, purpose, keys.SchemeSecp256k1)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}

	ownAddress, err := address.ToAddress(key.PublicKey, chain.KindTron)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode derived address")
	}
	if ownAddress != utx.OwnerAddress {
		return nil, errors.Wrapf(ErrSignatureMismatch, "owner %s is not the derived address %s", utx.OwnerAddress, ownAddress)
	}

	digest := sha256.Sum256(utx.RawData)
	txID := hex.EncodeToString(digest[:])
	if !strings.EqualFold(txID, utx.TxID) {
		return nil, errors.Wrapf(ErrUnsupportedTransaction, "txID %s does not hash raw data", utx.TxID)
	}

	sig, err := s.keys.SignDigest(ctx, owner, purpose, keys.SchemeSecp256k1, digest[:])
	if err != nil {
		return nil, err
	}

	full, err := withRecoveryID(digest[:], sig, key.PublicKey)
	if err != nil {
		return nil, err
	}

	recovered, err := crypto.Ecrecover(digest[:], full)
	if err != nil {
		return nil, errors.Wrap(ErrRecoveryFailed, err.Error())
	}
	signerAddress, err := address.ToAddress(recovered, chain.KindTron)
	if err != nil || signerAddress != utx.OwnerAddress {
		return nil, errors.Wrapf(ErrSignatureMismatch, "recovered %s, expected %s", signerAddress, utx.OwnerAddress)
	}

	signed := *utx.Node
	signed.Signature = []string{hex.EncodeToString(full)}

	encoded, err := json.Marshal(&signed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode transaction")
	}

	return &SignedTransaction{
		Kind:    chain.KindTron,
		Raw:     utx.RawData,
		Encoded: string(encoded),
		Hash:    txID,
		From:    utx.OwnerAddress,
		Tron:    &signed,
	}, nil
}
