package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aman-zulfiqar/solana-trade-router/internal/codec"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/pumpfun"
	"github.com/aman-zulfiqar/solana-trade-router/internal/raydium"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testMint = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	testUser = solana.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")
)

func eventData(t *testing.T, ev interface{}) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, ag_binary.NewBorshEncoder(&buf).Encode(ev))
	return base58.Encode(append(make([]byte, 16), buf.Bytes()...))
}

func discInstr(programID, disc string) rpc.ParsedInstruction {
	return rpc.ParsedInstruction{
		ProgramID: programID,
		Data:      base58.Encode(codec.MustDiscriminatorBytes(disc)),
	}
}

// tradeTx builds a confirmed transaction whose instruction at index 1
// is a swap on programID, with the event inner instruction attached.
func tradeTx(t *testing.T, programID, disc string, ev *pumpfun.TradeEvent) *rpc.TransactionResult {
	t.Helper()
	blockTime := int64(1_736_000_000)
	return &rpc.TransactionResult{
		BlockTime: &blockTime,
		Meta: &rpc.TransactionMeta{
			Fee: 5_000,
			InnerInstructions: []rpc.InnerInstructionSet{
				{Index: 1, Instructions: []rpc.ParsedInstruction{
					{ProgramID: programID, Data: eventData(t, ev)},
				}},
			},
		},
		Transaction: &rpc.Transaction{
			Signatures: []string{"classifySig"},
			Message: rpc.TransactionMessage{
				AccountKeys: []rpc.AccountKey{{Pubkey: testUser.String(), Signer: true}},
				Instructions: []rpc.ParsedInstruction{
					discInstr("11111111111111111111111111111111", "0000000000000000"),
					discInstr(programID, disc),
				},
			},
		},
	}
}

func TestClassify_PumpFunTrade(t *testing.T) {
	tx := tradeTx(t, pumpfun.ProgramID.String(), pumpfun.DiscBuy, &pumpfun.TradeEvent{
		Mint:        testMint,
		SolAmount:   1_000_000_000,
		TokenAmount: 30_000_000_000,
		IsBuy:       true,
		User:        testUser,
	})

	order, err := Classify(tx)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.RouterPumpFun, order.RouterName)
	assert.Equal(t, models.OrderBuy, order.Type)
	assert.Equal(t, "classifySig", order.TxID)
	assert.Equal(t, int64(1_736_000_000_000), order.Timestamp)
	assert.Equal(t, "0.000005", order.Fee)
	assert.Equal(t, testUser.String(), order.User)
}

func TestClassify_SolFiTrade(t *testing.T) {
	tx := tradeTx(t, SolFiProgramID, solFiDiscSell, &pumpfun.TradeEvent{
		Mint:        testMint,
		SolAmount:   500_000_000,
		TokenAmount: 10_000_000_000,
		IsBuy:       false,
		User:        testUser,
	})

	order, err := Classify(tx)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.RouterSolFi, order.RouterName)
	assert.Equal(t, SolFiProgramID, order.Router)
	assert.Equal(t, models.OrderSell, order.Type)
	assert.Equal(t, "0.5", order.SolAmount)
}

func TestClassify_FailedTransaction(t *testing.T) {
	tx := tradeTx(t, pumpfun.ProgramID.String(), pumpfun.DiscBuy, &pumpfun.TradeEvent{
		Mint: testMint, SolAmount: 1, TokenAmount: 1, IsBuy: true, User: testUser,
	})
	tx.Meta.Err = map[string]interface{}{"InstructionError": []interface{}{}}

	order, err := Classify(tx)
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestClassify_UnknownPrograms(t *testing.T) {
	blockTime := int64(1)
	tx := &rpc.TransactionResult{
		BlockTime: &blockTime,
		Meta:      &rpc.TransactionMeta{Fee: 5_000},
		Transaction: &rpc.Transaction{
			Signatures: []string{"sig"},
			Message: rpc.TransactionMessage{
				Instructions: []rpc.ParsedInstruction{
					discInstr("11111111111111111111111111111111", "0000000000000000"),
				},
			},
		},
	}

	order, err := Classify(tx)
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// Two router instructions in one transaction: the earlier one
	// produces the order.
	first := tradeTx(t, pumpfun.ProgramID.String(), pumpfun.DiscBuy, &pumpfun.TradeEvent{
		Mint:        testMint,
		SolAmount:   1_000_000_000,
		TokenAmount: 1_000_000,
		IsBuy:       true,
		User:        testUser,
	})
	first.Transaction.Message.Instructions = append(
		first.Transaction.Message.Instructions,
		discInstr(SolFiProgramID, solFiDiscBuy),
	)
	first.Meta.InnerInstructions = append(first.Meta.InnerInstructions, rpc.InnerInstructionSet{
		Index: 2,
		Instructions: []rpc.ParsedInstruction{
			{ProgramID: SolFiProgramID, Data: eventData(t, &pumpfun.TradeEvent{
				Mint: testMint, SolAmount: 9, TokenAmount: 9, IsBuy: true, User: testUser,
			})},
		},
	})

	order, err := Classify(first)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.RouterPumpFun, order.RouterName)
}

func TestClassify_EmptyTransaction(t *testing.T) {
	_, err := Classify(nil)
	assert.Error(t, err)

	_, err = Classify(&rpc.TransactionResult{})
	assert.Error(t, err)
}

func TestFindLaunch(t *testing.T) {
	ev := &pumpfun.CreateEvent{
		Name:         "New Token",
		Symbol:       "NEW",
		URI:          "https://example.com/new.json",
		Mint:         testMint,
		BondingCurve: testUser,
		User:         testUser,
	}
	tx := &rpc.TransactionResult{
		Meta: &rpc.TransactionMeta{
			Fee: 5_000,
			InnerInstructions: []rpc.InnerInstructionSet{
				{Index: 0, Instructions: []rpc.ParsedInstruction{
					{ProgramID: pumpfun.ProgramID.String(), Data: eventData(t, ev)},
				}},
			},
		},
		Transaction: &rpc.Transaction{
			Message: rpc.TransactionMessage{
				Instructions: []rpc.ParsedInstruction{
					discInstr(pumpfun.ProgramID.String(), pumpfun.DiscCreate),
				},
			},
		},
	}

	got, err := FindLaunch(tx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "New Token", got.Name)
	assert.Equal(t, testMint, got.Mint)
}

func TestFindLaunch_NotALaunch(t *testing.T) {
	tx := &rpc.TransactionResult{
		Transaction: &rpc.Transaction{
			Message: rpc.TransactionMessage{
				Instructions: []rpc.ParsedInstruction{
					discInstr("11111111111111111111111111111111", "0000000000000000"),
				},
			},
		},
	}

	got, err := FindLaunch(tx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFindMigration(t *testing.T) {
	withdraw := rpc.ParsedInstruction{
		ProgramID: pumpfun.ProgramID.String(),
		Data:      base58.Encode(codec.MustDiscriminatorBytes(pumpfun.DiscWithdraw)),
		Accounts: []string{
			"global", "lastWithdraw", testMint.String(),
			"bondingCurve", "curveAta", "recipientAta", testUser.String(),
		},
	}
	tx := &rpc.TransactionResult{
		Transaction: &rpc.Transaction{
			Message: rpc.TransactionMessage{
				Instructions: []rpc.ParsedInstruction{withdraw},
			},
		},
	}

	got, err := FindMigration(tx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, testMint.String(), got.Mint)
	assert.Equal(t, testUser.String(), got.User)
}

func TestFindLiquidityAdd(t *testing.T) {
	deposit := rpc.ParsedInstruction{
		ProgramID: raydium.ProgramID.String(),
		Data:      base58.Encode([]byte{0x01}),
		Accounts:  []string{"tokenProgram", "ammPool", "ammAuthority"},
	}
	tx := &rpc.TransactionResult{
		Meta: &rpc.TransactionMeta{
			InnerInstructions: []rpc.InnerInstructionSet{
				{Index: 0, Instructions: []rpc.ParsedInstruction{
					splTransfer("userCoin", "poolCoin", 3_000),
					splTransfer("userPc", "poolPc", 9_000),
				}},
			},
		},
		Transaction: &rpc.Transaction{
			Message: rpc.TransactionMessage{
				Instructions: []rpc.ParsedInstruction{deposit},
			},
		},
	}

	got, err := FindLiquidityAdd(tx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ammPool", got.AmmID)
	assert.Equal(t, uint64(3_000), got.CoinAmount)
	assert.Equal(t, uint64(9_000), got.PcAmount)
}

func splTransfer(source, destination string, amount uint64) rpc.ParsedInstruction {
	payload := fmt.Sprintf(
		`{"type":"transfer","info":{"source":%q,"destination":%q,"authority":"auth","amount":"%d"}}`,
		source, destination, amount)
	return rpc.ParsedInstruction{
		Program:   "spl-token",
		ProgramID: "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
		Parsed:    json.RawMessage(payload),
	}
}

func TestClassify_SkipsUndecodableInstruction(t *testing.T) {
	// A swap whose event bytes are truncated sits at index 1; the
	// clean swap at index 2 must still come back.
	tx := tradeTx(t, pumpfun.ProgramID.String(), pumpfun.DiscBuy, &pumpfun.TradeEvent{
		Mint:        testMint,
		SolAmount:   1_000_000_000,
		TokenAmount: 30_000_000_000,
		IsBuy:       true,
		User:        testUser,
	})
	tx.Transaction.Message.Instructions = append(
		tx.Transaction.Message.Instructions,
		discInstr(pumpfun.ProgramID.String(), pumpfun.DiscBuy),
	)
	valid := tx.Meta.InnerInstructions[0].Instructions
	tx.Meta.InnerInstructions = []rpc.InnerInstructionSet{
		{Index: 1, Instructions: []rpc.ParsedInstruction{
			{ProgramID: pumpfun.ProgramID.String(), Data: base58.Encode(make([]byte, 20))},
		}},
		{Index: 2, Instructions: valid},
	}

	order, err := Classify(tx)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.RouterPumpFun, order.RouterName)
	assert.Equal(t, models.OrderBuy, order.Type)
}

func TestClassify_MissingBlockTime(t *testing.T) {
	tx := tradeTx(t, pumpfun.ProgramID.String(), pumpfun.DiscBuy, &pumpfun.TradeEvent{
		Mint: testMint, SolAmount: 1, TokenAmount: 1, IsBuy: true, User: testUser,
	})
	tx.BlockTime = nil

	order, err := Classify(tx)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Zero(t, order.Timestamp)
}
