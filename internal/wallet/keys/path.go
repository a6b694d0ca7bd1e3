package keys

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
)

const (
	hardenedOffset = 0x80000000
	accountMask    = 0x7fffffff
)

// AccountIndex maps (owner, purpose) onto a stable hardened BIP44 account index.
func AccountIndex(owner string, purpose string) uint32 {
	h := sha256.Sum256([]byte(owner + "\x00" + purpose))
	return binary.BigEndian.Uint32(h[:4]) & accountMask
}

// DerivationPath returns the HD path used for (owner, purpose, scheme).
func DerivationPath(owner string, purpose string, scheme Scheme) (string, error) {
	account := AccountIndex(owner, purpose)

	switch scheme {
	case SchemeSecp256k1:
		return fmt.Sprintf("m/44'/60'/%d'/0/0", account), nil
	case SchemeEd25519:
		return fmt.Sprintf("m/44'/501'/%d'/0'", account), nil
	default:
		return "", ErrUnsupportedScheme
	}
}

// DeriveSecp256k1 derives a BIP32 private key from seed and path.
// WARNING: Caller must clear the private key after use
func DeriveSecp256k1(seed []byte, path string) ([]byte, error) {
	indices, err := parseBIP44Path(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse BIP44 path")
	}

	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}

	key := masterKey
	for _, index := range indices {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive child key at index %d", index)
		}
	}

	return key.Key, nil
}

// DeriveEd25519 derives a SLIP-0010 ed25519 private key seed. Only hardened segments exist for ed25519.
// WARNING: Caller must clear the returned key after use
func DeriveEd25519(seed []byte, path string) ([]byte, error) {
	indices, err := parseBIP44Path(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse SLIP-0010 path")
	}

	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	key, chainCode := sum[:32], sum[32:]

	for _, index := range indices {
		if index < hardenedOffset {
			return nil, errors.Errorf("ed25519 path segment %d must be hardened", index)
		}

		data := make([]byte, 0, 1+32+4)
		data = append(data, 0x00)
		data = append(data, key...)
		data = binary.BigEndian.AppendUint32(data, index)

		mac = hmac.New(sha512.New, chainCode)
		mac.Write(data)
		sum = mac.Sum(nil)
		key, chainCode = sum[:32], sum[32:]
	}

	out := make([]byte, len(key))
	copy(out, key)

	return out, nil
}

// parseBIP44Path parses a BIP44 path string into indices
// Example: "m/44'/60'/0'/0/0" -> [2147483692, 2147483708, 2147483648, 0, 0]
func parseBIP44Path(path string) ([]uint32, error) {
	if path == "m" {
		return nil, nil
	}
	if !strings.HasPrefix(path, "m/") {
		return nil, fmt.Errorf("invalid BIP44 path: %s", path)
	}

	parts := strings.Split(path[2:], "/")
	indices := make([]uint32, 0, len(parts))

	for _, part := range parts {
		hardened := strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h")
		if hardened {
			part = part[:len(part)-1]
		}

		index, err := strconv.ParseUint(part, 10, 32)
		if err != nil || index >= hardenedOffset {
			return nil, fmt.Errorf("invalid path segment: %s", part)
		}

		if hardened {
			index += hardenedOffset
		}

		indices = append(indices, uint32(index))
	}

	return indices, nil
}
