package signer_test

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/fbsobreira/gotron-sdk/pkg/proto/core"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainswap/internal/test"
	"github/chapool/chainswap/internal/wallet/address"
	"github/chapool/chainswap/internal/wallet/chain"
	"github/chapool/chainswap/internal/wallet/keys"
	"github/chapool/chainswap/internal/wallet/rpc"
	"github/chapool/chainswap/internal/wallet/signer"
	"github/chapool/chainswap/internal/wallet/txbuilder"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
)

const (
	owner   = "alice"
	purpose = "swap"
)

// tamperingSigner flips a bit of every signature
type tamperingSigner struct {
	keys.Signer
}

func (t tamperingSigner) Sign(ctx context.Context, owner string, purpose string, scheme keys.Scheme, payload []byte) ([]byte, error) {
	sig, err := t.Signer.Sign(ctx, owner, purpose, scheme, payload)
	if err != nil {
		return nil, err
	}
	sig[10] ^= 0x01

	return sig, nil
}

func derivedKey(t *testing.T, store keys.Service, scheme keys.Scheme) []byte {
	t.Helper()

	key, err := store.GetOrDeriveKey(context.Background(), owner, purpose, scheme)
	require.NoError(t, err)

	return key.PublicKey
}

func evmTx(t *testing.T, store keys.Service) *txbuilder.UnsignedTransaction {
	t.Helper()

	pub, err := crypto.UnmarshalPubkey(derivedKey(t, store, keys.SchemeSecp256k1))
	require.NoError(t, err)

	return &txbuilder.UnsignedTransaction{EVM: &txbuilder.EVMTx{
		ChainID:              big.NewInt(11155111),
		From:                 crypto.PubkeyToAddress(*pub),
		Nonce:                7,
		GasLimit:             21000,
		MaxFeePerGas:         big.NewInt(3_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(2_000_000_000),
		To:                   common.HexToAddress("0x6Fac4D18c912343BF86fa7049364Dd4E424Ab9C0"),
		Value:                big.NewInt(10_000_000_000_000_000),
	}}
}

func TestSignEVM(t *testing.T) {
	store := test.NewKeyStore(t, nil)
	svc := signer.NewService(store)
	utx := evmTx(t, store)

	signed, err := svc.SignAndEncode(context.Background(), utx, owner, purpose)
	require.NoError(t, err)
	assert.Equal(t, chain.KindEVM, signed.Kind)
	assert.Equal(t, "0x", signed.Encoded[:2])

	var decoded types.Transaction
	require.NoError(t, decoded.UnmarshalBinary(signed.Raw))
	assert.Equal(t, signed.Hash, decoded.Hash().Hex())
	assert.Equal(t, uint64(7), decoded.Nonce())
	assert.Equal(t, uint8(types.DynamicFeeTxType), decoded.Type())

	sender, err := types.Sender(types.NewLondonSigner(big.NewInt(11155111)), &decoded)
	require.NoError(t, err)
	assert.Equal(t, utx.EVM.From, sender)

	// deterministic signatures give identical hashes for identical input
	again, err := svc.SignAndEncode(context.Background(), utx, owner, purpose)
	require.NoError(t, err)
	assert.Equal(t, signed.Hash, again.Hash)
}

func TestSignEVMRejectsForeignSender(t *testing.T) {
	store := test.NewKeyStore(t, nil)
	utx := evmTx(t, store)
	utx.EVM.From = common.HexToAddress("0x0000000000000000000000000000000000000001")

	_, err := signer.NewService(store).SignAndEncode(context.Background(), utx, owner, purpose)
	require.ErrorIs(t, err, signer.ErrSignatureMismatch)
}

func TestSignEVMRecoveryFailure(t *testing.T) {
	store := test.NewKeyStore(t, tamperingSigner{Signer: test.NewLocalSigner(t)})
	utx := evmTx(t, store)

	_, err := signer.NewService(store).SignAndEncode(context.Background(), utx, owner, purpose)
	require.ErrorIs(t, err, signer.ErrRecoveryFailed)
}

func TestSignSolana(t *testing.T) {
	store := test.NewKeyStore(t, nil)
	pub := solana.PublicKeyFromBytes(derivedKey(t, store, keys.SchemeEd25519))

	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(solana.MemoProgramID,
			solana.AccountMetaSlice{solana.Meta(pub).SIGNER()}, []byte("hello"))},
		solana.Hash{9},
		solana.TransactionPayer(pub),
	)
	require.NoError(t, err)

	utx := &txbuilder.UnsignedTransaction{Solana: &txbuilder.SolanaTx{
		Transaction:     tx,
		FeePayer:        pub,
		RecentBlockhash: solana.Hash{9},
	}}

	signed, err := signer.NewService(store).SignAndEncode(context.Background(), utx, owner, purpose)
	require.NoError(t, err)
	assert.Equal(t, chain.KindSolana, signed.Kind)

	decoded, err := solana.TransactionFromBase64(signed.Encoded)
	require.NoError(t, err)
	require.Len(t, decoded.Signatures, 1)
	assert.Equal(t, signed.Hash, decoded.Signatures[0].String())
	require.NoError(t, decoded.VerifySignatures())

	msg, err := decoded.Message.MarshalBinary()
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(ed25519.PublicKey(pub[:]), msg, decoded.Signatures[0][:]))

	// the unsigned input stays untouched
	assert.Empty(t, tx.Signatures)
}

func TestSignSolanaForeignFeePayer(t *testing.T) {
	store := test.NewKeyStore(t, nil)
	other := solana.NewWallet().PublicKey()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(solana.MemoProgramID,
			solana.AccountMetaSlice{solana.Meta(other).SIGNER()}, []byte("hello"))},
		solana.Hash{9},
		solana.TransactionPayer(other),
	)
	require.NoError(t, err)

	utx := &txbuilder.UnsignedTransaction{Solana: &txbuilder.SolanaTx{Transaction: tx, FeePayer: other}}

	_, err = signer.NewService(store).SignAndEncode(context.Background(), utx, owner, purpose)
	require.ErrorIs(t, err, signer.ErrSignatureMismatch)
}

func tronTx(t *testing.T, from string) *txbuilder.UnsignedTransaction {
	t.Helper()

	ownerRaw, err := address.ParseTron(from)
	require.NoError(t, err)
	to, err := address.EVMToTron("0x6Fac4D18c912343BF86fa7049364Dd4E424Ab9C0")
	require.NoError(t, err)
	toRaw, err := address.ParseTron(to)
	require.NoError(t, err)

	param, err := anypb.New(&core.TransferContract{OwnerAddress: ownerRaw, ToAddress: toRaw, Amount: 1_000_000})
	require.NoError(t, err)

	raw, err := proto.Marshal(&core.TransactionRaw{
		Contract: []*core.Transaction_Contract{{Type: core.Transaction_Contract_TransferContract, Parameter: param}},
	})
	require.NoError(t, err)

	sum := sha256.Sum256(raw)
	txID := hex.EncodeToString(sum[:])

	return &txbuilder.UnsignedTransaction{Tron: &txbuilder.TronTx{
		OwnerAddress: from,
		ToAddress:    to,
		Amount:       1_000_000,
		RawData:      raw,
		TxID:         txID,
		Node: &rpc.TronTransaction{
			TxID:       txID,
			RawData:    json.RawMessage(`{"contract":[]}`),
			RawDataHex: hex.EncodeToString(raw),
		},
	}}
}

func TestSignTron(t *testing.T) {
	store := test.NewKeyStore(t, nil)
	pub := derivedKey(t, store, keys.SchemeSecp256k1)

	from, err := address.ToAddress(pub, chain.KindTron)
	require.NoError(t, err)

	utx := tronTx(t, from)

	signed, err := signer.NewService(store).SignAndEncode(context.Background(), utx, owner, purpose)
	require.NoError(t, err)
	assert.Equal(t, chain.KindTron, signed.Kind)
	assert.Equal(t, utx.Tron.TxID, signed.Hash)
	require.NotNil(t, signed.Tron)
	require.Len(t, signed.Tron.Signature, 1)
	assert.Empty(t, utx.Tron.Node.Signature)

	sig, err := hex.DecodeString(signed.Tron.Signature[0])
	require.NoError(t, err)
	require.Len(t, sig, 65)

	sum := sha256.Sum256(utx.Tron.RawData)
	recovered, err := crypto.Ecrecover(sum[:], sig)
	require.NoError(t, err)
	assert.Equal(t, pub, recovered)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(signed.Encoded), &payload))
	assert.Equal(t, utx.Tron.TxID, payload["txID"])
}

func TestSignTronForeignOwner(t *testing.T) {
	store := test.NewKeyStore(t, nil)

	other, err := address.EVMToTron("0x0000000000000000000000000000000000000001")
	require.NoError(t, err)

	_, err = signer.NewService(store).SignAndEncode(context.Background(), tronTx(t, other), owner, purpose)
	require.ErrorIs(t, err, signer.ErrSignatureMismatch)
}

func TestSignEmptyTransaction(t *testing.T) {
	svc := signer.NewService(test.NewKeyStore(t, nil))

	_, err := svc.SignAndEncode(context.Background(), nil, owner, purpose)
	require.ErrorIs(t, err, signer.ErrUnsupportedTransaction)

	_, err = svc.SignAndEncode(context.Background(), &txbuilder.UnsignedTransaction{}, owner, purpose)
	require.ErrorIs(t, err, signer.ErrUnsupportedTransaction)
}
