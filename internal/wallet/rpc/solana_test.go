package rpc_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/chainswap/internal/test"
	"github/chapool/chainswap/internal/wallet/rpc"
)

func TestSolanaGetLatestBlockhash(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("getLatestBlockhash", map[string]any{
		"context": map[string]any{"slot": 1},
		"value": map[string]any{
			"blockhash":            "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N",
			"lastValidBlockHeight": 3090,
		},
	})

	client := rpc.NewSolanaClient(newGateway(t, stub.URL()))

	bh, err := client.GetLatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N", bh.Blockhash)
	assert.Equal(t, uint64(3090), bh.LastValidBlockHeight)
}

func TestSolanaGetLatestBlockhashEmpty(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("getLatestBlockhash", map[string]any{"context": map[string]any{"slot": 1}, "value": nil})

	client := rpc.NewSolanaClient(newGateway(t, stub.URL()))

	_, err := client.GetLatestBlockhash(context.Background())
	assert.Equal(t, rpc.KindDecode, rpc.KindOf(err))
}

func TestSolanaSendTransactionAlreadyProcessed(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleError("sendTransaction", -32002, "Transaction simulation failed: This transaction has already been processed")

	client := rpc.NewSolanaClient(newGateway(t, stub.URL()))

	_, err := client.SendTransaction(context.Background(), "AQID")
	assert.True(t, rpc.IsIdempotent(err))
}

func TestSolanaGetSignatureStatuses(t *testing.T) {
	stub := test.NewRPCStub(t)
	stub.HandleResult("getSignatureStatuses", map[string]any{
		"context": map[string]any{"slot": 1},
		"value": []any{
			map[string]any{"slot": 72, "confirmations": 10, "err": nil, "confirmationStatus": "confirmed"},
			nil,
		},
	})

	client := rpc.NewSolanaClient(newGateway(t, stub.URL()))

	statuses, err := client.GetSignatureStatuses(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.Equal(t, "confirmed", statuses[0].ConfirmationStatus)
	assert.Nil(t, statuses[1])
}
