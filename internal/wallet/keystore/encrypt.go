package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

const (
	keystoreVersion = 3
	cipherName      = "aes-128-ctr"
	kdfName         = "scrypt"
	saltSize        = 32
	ivSize          = 16
)

// encryptMnemonic encrypts a mnemonic using Ethereum keystore v3 format
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func encryptMnemonic(mnemonic string, password string, params ScryptParams) (*KeystoreJSON, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "failed to generate IV")
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}

	ciphertext, err := aes128CTR(derivedKey[:16], iv, []byte(mnemonic))
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt mnemonic")
	}

	ks := &KeystoreJSON{
		Version: keystoreVersion,
		ID:      uuid.New().String(),
	}

	ks.Crypto.Ciphertext = hex.EncodeToString(ciphertext)
	ks.Crypto.CipherParams.IV = hex.EncodeToString(iv)
	ks.Crypto.Cipher = cipherName
	ks.Crypto.KDF = kdfName
	ks.Crypto.KDFParams.DKLen = params.DKLen
	ks.Crypto.KDFParams.Salt = hex.EncodeToString(salt)
	ks.Crypto.KDFParams.N = params.N
	ks.Crypto.KDFParams.R = params.R
	ks.Crypto.KDFParams.P = params.P
	ks.Crypto.MAC = hex.EncodeToString(calculateMAC(derivedKey[16:32], ciphertext))

	return ks, nil
}

// aes128CTR is its own inverse, used for both directions.
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func aes128CTR(key []byte, iv []byte, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)

	return out, nil
}

// calculateMAC is keccak256(derivedKey[16:32] || ciphertext) as in keystore v3
func calculateMAC(macKey []byte, ciphertext []byte) []byte {
	return crypto.Keccak256(macKey, ciphertext)
}
