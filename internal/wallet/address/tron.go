package address

import (
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fbsobreira/gotron-sdk/pkg/address"
	"github.com/pkg/errors"
)

const (
	tronPrefix        = 0x41
	tronAddressLength = 21
)

func tronAddress(pub []byte) (string, error) {
	key, err := parseSecp256k1(pub)
	if err != nil {
		return "", err
	}

	ecdsaKey, err := crypto.UnmarshalPubkey(key.SerializeUncompressed())
	if err != nil {
		return "", errors.Wrap(ErrMalformedPublicKey, err.Error())
	}

	// 0x41 || keccak256(X || Y)[12:], base58check encoded
	return address.PubkeyToAddress(*ecdsaKey).String(), nil
}

// ParseTron decodes a base58check Tron address into its 21 raw bytes.
func ParseTron(addr string) ([]byte, error) {
	raw, err := address.Base58ToAddress(addr)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAddress, "tron address %q: %v", addr, err)
	}
	if len(raw) != tronAddressLength || raw[0] != tronPrefix {
		return nil, errors.Wrapf(ErrInvalidAddress, "tron address %q has wrong prefix or length", addr)
	}

	return raw, nil
}

// TronToHex returns the 41-prefixed hex form used by the Tron HTTP API.
func TronToHex(addr string) (string, error) {
	raw, err := ParseTron(addr)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(raw), nil
}

// TronFromHex converts a 41-prefixed hex address (or raw 21 bytes in hex) to base58check.
func TronFromHex(h string) (string, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(h, "0x"))
	if err != nil || len(raw) != tronAddressLength || raw[0] != tronPrefix {
		return "", errors.Wrapf(ErrInvalidAddress, "tron hex address %q", h)
	}

	return address.Address(raw).String(), nil
}

// TronToEVM drops the 0x41 prefix and returns the 0x-hex EVM form of the same key hash.
func TronToEVM(addr string) (string, error) {
	raw, err := ParseTron(addr)
	if err != nil {
		return "", err
	}

	return "0x" + hex.EncodeToString(raw[1:]), nil
}

// EVMToTron prefixes the 20 byte EVM address with 0x41.
func EVMToTron(addr string) (string, error) {
	if err := validateEVM(addr); err != nil {
		return "", err
	}

	return TronFromHex("41" + strings.TrimPrefix(normalizeEVM(addr), "0x"))
}
