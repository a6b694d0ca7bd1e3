package address

import (
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// parseSecp256k1 accepts 33 byte compressed or 65 byte uncompressed keys.
func parseSecp256k1(pub []byte) (*btcec.PublicKey, error) {
	key, err := btcec.ParsePubKey(pub)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedPublicKey, err.Error())
	}

	return key, nil
}

func evmAddress(pub []byte) (string, error) {
	key, err := parseSecp256k1(pub)
	if err != nil {
		return "", err
	}

	// keccak256(X || Y)[12:]
	return normalizeEVM(common.BytesToAddress(crypto.Keccak256(key.SerializeUncompressed()[1:])[12:]).Hex()), nil
}

func validateEVM(addr string) error {
	if !common.IsHexAddress(addr) || !strings.HasPrefix(addr, "0x") {
		return errors.Wrapf(ErrInvalidAddress, "evm address %q", addr)
	}

	return nil
}

func normalizeEVM(addr string) string {
	return strings.ToLower(addr)
}

// Checksum returns the EIP-55 mixed case form of an EVM address.
func Checksum(addr string) string {
	return common.HexToAddress(addr).Hex()
}
