package wallet

import (
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWallet_Validation(t *testing.T) {
	_, err := NewWallet(WalletConfig{})
	assert.Error(t, err)

	_, err = NewWallet(WalletConfig{RPCURL: "http://localhost:8899"})
	assert.Error(t, err)

	_, err = NewWallet(WalletConfig{RPCURL: "http://localhost:8899", PrivateKey: "short"})
	assert.Error(t, err)
}

func TestNewWallet_Base58Key(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	w, err := NewWallet(WalletConfig{
		RPCURL:     "http://localhost:8899",
		PrivateKey: key.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey())
	assert.Equal(t, key.PublicKey().String(), w.Address())
}

func TestNewWallet_JSONArrayKey(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	jsonKey := "["
	for i, b := range []byte(key) {
		if i > 0 {
			jsonKey += ","
		}
		jsonKey += fmt.Sprintf("%d", b)
	}
	jsonKey += "]"

	w, err := NewWallet(WalletConfig{
		RPCURL:     "http://localhost:8899",
		PrivateKey: jsonKey,
	})
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey())
}

func TestSignTx(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	w, err := NewWallet(WalletConfig{
		RPCURL:     "http://localhost:8899",
		PrivateKey: key.String(),
	})
	require.NoError(t, err)

	instr := solana.NewInstruction(
		solana.SystemProgramID,
		[]*solana.AccountMeta{
			{PublicKey: w.PublicKey(), IsSigner: true, IsWritable: true},
		},
		[]byte{0, 0, 0, 0},
	)
	tx, err := solana.NewTransaction(
		[]solana.Instruction{instr},
		solana.Hash{},
		solana.TransactionPayer(w.PublicKey()),
	)
	require.NoError(t, err)

	require.NoError(t, w.SignTx(tx))
	require.Len(t, tx.Signatures, 1)
	assert.NotEqual(t, solana.Signature{}, tx.Signatures[0])
}
