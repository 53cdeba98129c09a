package jupiter

import (
	"bytes"
	"testing"

	"github.com/aman-zulfiqar/solana-trade-router/internal/codec"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	wsolKey   = solana.MustPublicKeyFromBase58(WSOLMint)
	tokenKey  = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	middleKey = solana.MustPublicKeyFromBase58("DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263")
	ammKey    = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
)

func routeEventInstr(t *testing.T, ev *SwapEvent) rpc.ParsedInstruction {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, ag_binary.NewBorshEncoder(&buf).Encode(ev))
	return rpc.ParsedInstruction{
		ProgramID: ProgramID.String(),
		Accounts:  []string{EventAuthority.String(), ProgramID.String()},
		Data:      base58.Encode(append(make([]byte, 16), buf.Bytes()...)),
	}
}

func routeTx(inner ...rpc.ParsedInstruction) (*rpc.TransactionResult, rpc.ParsedInstruction) {
	instr := rpc.ParsedInstruction{
		ProgramID: ProgramID.String(),
		Data:      base58.Encode(codec.MustDiscriminatorBytes(DiscRoute)),
	}
	tx := &rpc.TransactionResult{
		Meta: &rpc.TransactionMeta{
			InnerInstructions: []rpc.InnerInstructionSet{
				{Index: 0, Instructions: inner},
			},
			PostTokenBalances: []rpc.TokenBalance{
				{Mint: WSOLMint, UITokenAmount: rpc.TokenAmount{Decimals: 9}},
				{Mint: tokenKey.String(), UITokenAmount: rpc.TokenAmount{Decimals: 6}},
			},
		},
		Transaction: &rpc.Transaction{
			Message: rpc.TransactionMessage{
				AccountKeys:  []rpc.AccountKey{{Pubkey: "trader", Signer: true}},
				Instructions: []rpc.ParsedInstruction{instr},
			},
		},
	}
	return tx, instr
}

func TestParseSwap_SingleHopBuy(t *testing.T) {
	tx, instr := routeTx(routeEventInstr(t, &SwapEvent{
		Amm:          ammKey,
		InputMint:    wsolKey,
		InputAmount:  1_000_000_000,
		OutputMint:   tokenKey,
		OutputAmount: 40_000_000,
	}))

	order, err := ParseSwap(tx, 0, instr)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.OrderBuy, order.Type)
	assert.Equal(t, "1", order.SolAmount)
	assert.Equal(t, "40", order.TokenAmount)
	assert.Equal(t, models.RouterJupiter, order.RouterName)
	assert.Equal(t, tokenKey.String(), order.TokenAddress)
	assert.Equal(t, "trader", order.User)
}

func TestParseSwap_MultiHopSell(t *testing.T) {
	// token -> intermediate -> SOL: input from the first hop, output
	// from the last.
	tx, instr := routeTx(
		routeEventInstr(t, &SwapEvent{
			Amm:          ammKey,
			InputMint:    tokenKey,
			InputAmount:  40_000_000,
			OutputMint:   middleKey,
			OutputAmount: 123,
		}),
		routeEventInstr(t, &SwapEvent{
			Amm:          ammKey,
			InputMint:    middleKey,
			InputAmount:  123,
			OutputMint:   wsolKey,
			OutputAmount: 990_000_000,
		}),
	)

	order, err := ParseSwap(tx, 0, instr)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, models.OrderSell, order.Type)
	assert.Equal(t, "0.99", order.SolAmount)
	assert.Equal(t, "40", order.TokenAmount)
	assert.Equal(t, tokenKey.String(), order.TokenAddress)
}

func TestParseSwap_NonSOLRoute(t *testing.T) {
	tx, instr := routeTx(routeEventInstr(t, &SwapEvent{
		Amm:          ammKey,
		InputMint:    tokenKey,
		InputAmount:  1,
		OutputMint:   middleKey,
		OutputAmount: 1,
	}))

	order, err := ParseSwap(tx, 0, instr)
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestParseSwap_IgnoresNonEventInner(t *testing.T) {
	noAuthority := rpc.ParsedInstruction{
		ProgramID: ProgramID.String(),
		Accounts:  []string{ProgramID.String()},
		Data:      base58.Encode([]byte{1, 2, 3}),
	}
	tx, instr := routeTx(
		noAuthority,
		routeEventInstr(t, &SwapEvent{
			Amm:          ammKey,
			InputMint:    wsolKey,
			InputAmount:  2_000_000_000,
			OutputMint:   tokenKey,
			OutputAmount: 80_000_000,
		}),
	)

	order, err := ParseSwap(tx, 0, instr)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, "2", order.SolAmount)
}

func TestParseSwap_NoEvents(t *testing.T) {
	tx, instr := routeTx()

	order, err := ParseSwap(tx, 0, instr)
	require.NoError(t, err)
	assert.Nil(t, order)
}

func TestParseSwap_OtherDiscriminator(t *testing.T) {
	tx, _ := routeTx()
	instr := rpc.ParsedInstruction{
		ProgramID: ProgramID.String(),
		Data:      base58.Encode([]byte{9, 9, 9, 9, 9, 9, 9, 9}),
	}

	order, err := ParseSwap(tx, 0, instr)
	require.NoError(t, err)
	assert.Nil(t, order)
}
