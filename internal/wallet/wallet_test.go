package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walletWithServer(t *testing.T, handler http.HandlerFunc) *Wallet {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	w, err := NewWallet(WalletConfig{
		RPCURL:       srv.URL,
		PrivateKey:   key.String(),
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	})
	require.NoError(t, err)
	return w
}

func rpcResult(t *testing.T, w http.ResponseWriter, result interface{}) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"result":  result,
	}))
}

func transferIx(from solana.PublicKey) solana.Instruction {
	return solana.NewInstruction(
		solana.SystemProgramID,
		[]*solana.AccountMeta{
			{PublicKey: from, IsSigner: true, IsWritable: true},
		},
		[]byte{2, 0, 0, 0},
	)
}

func TestBuildTransaction_PayerFallback(t *testing.T) {
	blockhash := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v").String()
	w := walletWithServer(t, func(rw http.ResponseWriter, r *http.Request) {
		rpcResult(t, rw, map[string]interface{}{
			"value": map[string]interface{}{
				"blockhash":            blockhash,
				"lastValidBlockHeight": 100,
			},
		})
	})

	tx, err := w.BuildTransaction(context.Background(), solana.PublicKey{},
		[]solana.Instruction{transferIx(w.PublicKey())})
	require.NoError(t, err)
	assert.Equal(t, blockhash, tx.Message.RecentBlockhash.String())
	assert.Equal(t, w.PublicKey(), tx.Message.AccountKeys[0])
}

func TestAwaitConfirmation_Confirmed(t *testing.T) {
	w := walletWithServer(t, func(rw http.ResponseWriter, r *http.Request) {
		rpcResult(t, rw, map[string]interface{}{
			"value": []interface{}{
				map[string]interface{}{"slot": 1, "confirmationStatus": "confirmed"},
			},
		})
	})

	err := w.AwaitConfirmation(context.Background(), "sig", time.Second, time.Millisecond)
	require.NoError(t, err)
}

func TestAwaitConfirmation_OnChainError(t *testing.T) {
	w := walletWithServer(t, func(rw http.ResponseWriter, r *http.Request) {
		rpcResult(t, rw, map[string]interface{}{
			"value": []interface{}{
				map[string]interface{}{
					"slot":               1,
					"err":                map[string]interface{}{"InstructionError": []interface{}{}},
					"confirmationStatus": "confirmed",
				},
			},
		})
	})

	err := w.AwaitConfirmation(context.Background(), "sig", time.Second, time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed on-chain")
}

func TestAwaitConfirmation_Timeout(t *testing.T) {
	w := walletWithServer(t, func(rw http.ResponseWriter, r *http.Request) {
		rpcResult(t, rw, map[string]interface{}{
			"value": []interface{}{nil},
		})
	})

	err := w.AwaitConfirmation(context.Background(), "sig", 30*time.Millisecond, 10*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfirmationTimeout)
}
