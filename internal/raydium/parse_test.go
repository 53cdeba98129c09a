package raydium

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTokenMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

func swapAccounts() []string {
	accounts := make([]string, swapAccountCount)
	for i := range accounts {
		accounts[i] = fmt.Sprintf("account%d", i)
	}
	accounts[idxPoolCoin] = "poolCoinVault"
	accounts[idxPoolPc] = "poolPcVault"
	return accounts
}

func tokenTransfer(source, destination string, amount uint64) rpc.ParsedInstruction {
	payload := fmt.Sprintf(
		`{"type":"transfer","info":{"source":%q,"destination":%q,"authority":"auth","amount":"%d"}}`,
		source, destination, amount)
	return rpc.ParsedInstruction{
		Program:   "spl-token",
		ProgramID: "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
		Parsed:    json.RawMessage(payload),
	}
}

func raydiumSwapTx(inner ...rpc.ParsedInstruction) (*rpc.TransactionResult, rpc.ParsedInstruction) {
	instr := rpc.ParsedInstruction{
		ProgramID: ProgramID.String(),
		Accounts:  swapAccounts(),
		Data:      base58.Encode([]byte{0x09, 0, 0, 0, 0, 0, 0, 0, 0}),
	}
	tx := &rpc.TransactionResult{
		Meta: &rpc.TransactionMeta{
			InnerInstructions: []rpc.InnerInstructionSet{
				{Index: 0, Instructions: inner},
			},
			PostTokenBalances: []rpc.TokenBalance{
				{Mint: WSOLMint, UITokenAmount: rpc.TokenAmount{Decimals: 9}},
				{Mint: testTokenMint, UITokenAmount: rpc.TokenAmount{Decimals: 6}},
			},
		},
		Transaction: &rpc.Transaction{
			Signatures: []string{"raySig"},
			Message: rpc.TransactionMessage{
				AccountKeys:  []rpc.AccountKey{{Pubkey: "trader", Signer: true}},
				Instructions: []rpc.ParsedInstruction{instr},
			},
		},
	}
	return tx, instr
}

func TestParseSwap_BuyDirection(t *testing.T) {
	// First transfer lands in the pool coin vault: SOL went in.
	tx, instr := raydiumSwapTx(
		tokenTransfer("userWsol", "poolCoinVault", 2_000_000_000),
		tokenTransfer("poolPcVault", "userToken", 50_000_000),
	)

	order, err := ParseSwap(tx, 0, instr)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.OrderBuy, order.Type)
	assert.Equal(t, "2", order.SolAmount)
	assert.Equal(t, "50", order.TokenAmount)
	assert.Equal(t, models.RouterRaydium, order.RouterName)
	assert.Equal(t, testTokenMint, order.TokenAddress)
	assert.Equal(t, "trader", order.User)
	require.NotNil(t, order.Extra)
}

func TestParseSwap_SellDirection(t *testing.T) {
	tx, instr := raydiumSwapTx(
		tokenTransfer("userToken", "poolPcVault", 50_000_000),
		tokenTransfer("poolCoinVault", "userWsol", 2_000_000_000),
	)

	order, err := ParseSwap(tx, 0, instr)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.OrderSell, order.Type)
	assert.Equal(t, "2", order.SolAmount)
	assert.Equal(t, "50", order.TokenAmount)
}

func TestParseSwap_SkipsNonTransferInner(t *testing.T) {
	nonTransfer := rpc.ParsedInstruction{
		Program:   "spl-token",
		ProgramID: "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
		Parsed:    json.RawMessage(`{"type":"closeAccount","info":{"account":"acc"}}`),
	}
	tx, instr := raydiumSwapTx(
		nonTransfer,
		tokenTransfer("userWsol", "poolCoinVault", 1_000_000_000),
		tokenTransfer("poolPcVault", "userToken", 10_000_000),
	)

	order, err := ParseSwap(tx, 0, instr)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.OrderBuy, order.Type)
}

func TestParseSwap_NotASwap(t *testing.T) {
	tx, _ := raydiumSwapTx(
		tokenTransfer("a", "b", 1),
		tokenTransfer("b", "c", 1),
	)
	instr := rpc.ParsedInstruction{
		ProgramID: ProgramID.String(),
		Accounts:  swapAccounts(),
		Data:      base58.Encode([]byte{0x01, 0, 0}),
	}

	order, err := ParseSwap(tx, 0, instr)
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestParseSwap_TooFewTransfers(t *testing.T) {
	tx, instr := raydiumSwapTx(
		tokenTransfer("userWsol", "poolCoinVault", 1),
	)

	order, err := ParseSwap(tx, 0, instr)
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestExtractSwapKeys(t *testing.T) {
	instr := rpc.ParsedInstruction{Accounts: swapAccounts()}

	keys := ExtractSwapKeys(instr)
	require.NotNil(t, keys)
	assert.Equal(t, "account1", keys.AmmID)
	assert.Equal(t, AuthorityV4.String(), keys.AmmAuthority)
	assert.Equal(t, "account3", keys.AmmOpenOrders)
	assert.Equal(t, "account4", keys.AmmTargetOrders)
	assert.Equal(t, "poolCoinVault", keys.PoolCoinTokenAccount)
	assert.Equal(t, "poolPcVault", keys.PoolPcTokenAccount)
	assert.Equal(t, "account8", keys.SerumMarket)
	assert.Equal(t, "account14", keys.SerumVaultSigner)
}

func TestExtractSwapKeys_TooFewAccounts(t *testing.T) {
	keys := ExtractSwapKeys(rpc.ParsedInstruction{Accounts: []string{"a", "b"}})
	assert.Nil(t, keys)
}

func TestParseAddLiquidity(t *testing.T) {
	instr := rpc.ParsedInstruction{
		ProgramID: ProgramID.String(),
		Accounts:  []string{"account0", "ammPool"},
		Data:      base58.Encode([]byte{0x01, 0, 0, 0, 0, 0, 0, 0, 0}),
	}
	tx := &rpc.TransactionResult{
		Meta: &rpc.TransactionMeta{
			InnerInstructions: []rpc.InnerInstructionSet{
				{Index: 0, Instructions: []rpc.ParsedInstruction{
					tokenTransfer("userCoin", "poolCoin", 3_000),
					tokenTransfer("userPc", "poolPc", 9_000),
				}},
			},
		},
		Transaction: &rpc.Transaction{
			Message: rpc.TransactionMessage{Instructions: []rpc.ParsedInstruction{instr}},
		},
	}

	add, err := ParseAddLiquidity(tx, 0, instr)
	require.NoError(t, err)
	require.NotNil(t, add)
	assert.Equal(t, "ammPool", add.AmmID)
	assert.Equal(t, uint64(3_000), add.CoinAmount)
	assert.Equal(t, uint64(9_000), add.PcAmount)
}
