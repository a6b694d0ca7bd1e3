package address_test

import (
	"crypto/ecdsa"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tyler-smith/go-bip39"
	"github/chapool/chainswap/internal/wallet/address"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/keys"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func pubAt(t *testing.T, path string) []byte {
	t.Helper()

	priv, err := keys.DeriveSecp256k1(bip39.NewSeed(testMnemonic, ""), path)
	require.NoError(t, err)
	key, err := crypto.ToECDSA(priv)
	require.NoError(t, err)

	return crypto.FromECDSAPub(&key.PublicKey)
}

func TestEVMAddress(t *testing.T) {
	pub := pubAt(t, "m/44'/60'/0'/0/0")

	addr, err := address.ToAddress(pub, chain.KindEVM)
	require.NoError(t, err)
	assert.Equal(t, "0x9858effd232b4033e47d90003d41ec34ecaeda94", addr)
	assert.Equal(t, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", address.Checksum(addr))
	require.NoError(t, address.Validate(addr, chain.KindEVM))

	compressed, err := address.ToAddress(crypto.CompressPubkey(mustUnmarshal(t, pub)), chain.KindEVM)
	require.NoError(t, err)
	assert.Equal(t, addr, compressed)

	assert.Equal(t, addr, address.Normalize(address.Checksum(addr), chain.KindEVM))
}

func TestTronAddress(t *testing.T) {
	pub := pubAt(t, "m/44'/60'/0'/0/0")

	addr, err := address.ToAddress(pub, chain.KindTron)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(addr, "T"))
	require.NoError(t, address.Validate(addr, chain.KindTron))

	evm, err := address.TronToEVM(addr)
	require.NoError(t, err)
	assert.Equal(t, "0x9858effd232b4033e47d90003d41ec34ecaeda94", evm)

	back, err := address.EVMToTron(evm)
	require.NoError(t, err)
	assert.Equal(t, addr, back)

	h, err := address.TronToHex(addr)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "41"))
	fromHex, err := address.TronFromHex(h)
	require.NoError(t, err)
	assert.Equal(t, addr, fromHex)

	require.ErrorIs(t, address.Validate("TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6u", chain.KindTron), address.ErrInvalidAddress)
}

func TestBitcoinAddresses(t *testing.T) {
	p2pkh, err := address.ToAddress(pubAt(t, "m/44'/0'/0'/0/0"), chain.KindBitcoin)
	require.NoError(t, err)
	assert.Equal(t, "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA", p2pkh)
	require.NoError(t, address.Validate(p2pkh, chain.KindBitcoin))

	p2tr, err := address.ToAddress(pubAt(t, "m/86'/0'/0'/0/0"), chain.KindBitcoin, address.WithBitcoinFormat(address.BitcoinP2TR))
	require.NoError(t, err)
	assert.Equal(t, "bc1p5cyxnuxmeuwuvkwfem96lqzszd02n6xdcjrs20cac6yqjjwudpxqkedrcr", p2tr)

	testnet, err := address.ToAddress(pubAt(t, "m/44'/0'/0'/0/0"), chain.KindBitcoin, address.WithBitcoinParams(&chaincfg.TestNet3Params))
	require.NoError(t, err)
	assert.NotEqual(t, p2pkh, testnet)
	require.Error(t, address.Validate(testnet, chain.KindBitcoin))
}

func TestSolanaAddress(t *testing.T) {
	pub := make([]byte, 32)
	for i := range pub {
		pub[i] = byte(i)
	}

	addr, err := address.ToAddress(pub, chain.KindSolana)
	require.NoError(t, err)
	require.NoError(t, address.Validate(addr, chain.KindSolana))

	decoded, err := solana.PublicKeyFromBase58(addr)
	require.NoError(t, err)
	assert.Equal(t, pub, decoded.Bytes())

	_, err = address.ToAddress(pub[:31], chain.KindSolana)
	require.ErrorIs(t, err, address.ErrMalformedPublicKey)
}

func TestMalformedInput(t *testing.T) {
	_, err := address.ToAddress([]byte{0x04, 0x01}, chain.KindEVM)
	require.ErrorIs(t, err, address.ErrMalformedPublicKey)

	_, err = address.ToAddress(make([]byte, 65), chain.Kind("cosmos"))
	require.ErrorIs(t, err, address.ErrUnsupportedChain)

	require.ErrorIs(t, address.Validate("0x123", chain.KindEVM), address.ErrInvalidAddress)
}

func mustUnmarshal(t *testing.T, pub []byte) *ecdsa.PublicKey {
	t.Helper()

	key, err := crypto.UnmarshalPubkey(pub)
	require.NoError(t, err)

	return key
}
