package meteora

import (
	"github.com/aman-zulfiqar/solana-trade-router/internal/codec"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	"github.com/gagliardetto/solana-go"
)

var (
	// ProgramID is the Meteora Pools program
	ProgramID = solana.MustPublicKeyFromBase58("Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB")
)

// Instruction discriminators (first 8 bytes, hex)
const (
	DiscSwap     = "f8c69e91e17587c8"
	DiscDeposit  = "f223c68952e1f2b6"
	DiscWithdraw = "b712469c946da122"
)

// WSOLMint is the wrapped SOL mint address.
const WSOLMint = "So11111111111111111111111111111111111111112"

// ParseSwap decodes the Meteora instruction at index into an order. A
// swap routes both legs through vault sub-instructions: a deposit into
// one vault and a withdraw from the other, each followed immediately by
// the token transfer that moved the leg. A swap missing either
// sub-instruction yields no order rather than an error.
func ParseSwap(tx *rpc.TransactionResult, index int, instr rpc.ParsedInstruction) (*models.Order, error) {
	data, err := codec.DecodeBase58(instr.Data)
	if err != nil {
		return nil, err
	}
	disc, err := codec.Discriminator8(data)
	if err != nil || disc != DiscSwap {
		return nil, nil
	}

	inner, found, err := tx.InnerInstructionsOf(index)
	if err != nil || !found {
		return nil, nil
	}

	depositTransfer, err := transferAfter(inner, DiscDeposit)
	if err != nil {
		return nil, err
	}
	withdrawTransfer, err := transferAfter(inner, DiscWithdraw)
	if err != nil {
		return nil, err
	}
	if depositTransfer == nil || withdrawTransfer == nil {
		return nil, nil
	}

	wsol := wsolAccounts(tx)

	// The deposit leg is what the user paid in. Paying into a wrapped
	// SOL account means SOL went in, a buy.
	var orderType models.OrderType
	var solRaw, tokenRaw uint64
	if wsol[depositTransfer.Destination] || wsol[depositTransfer.Source] {
		orderType = models.OrderBuy
		solRaw, tokenRaw = depositTransfer.Amount, withdrawTransfer.Amount
	} else {
		orderType = models.OrderSell
		tokenRaw, solRaw = depositTransfer.Amount, withdrawTransfer.Amount
	}

	mint, decimals, ok := tradedMint(tx)
	if !ok {
		return nil, nil
	}

	return &models.Order{
		Type:         orderType,
		SolAmount:    models.UnshiftLamports(solRaw),
		TokenAmount:  models.UnshiftAmount(tokenRaw, decimals),
		RouterName:   models.RouterMeteora,
		Router:       ProgramID.String(),
		TokenAddress: mint,
		User:         tx.Signer(),
	}, nil
}

// transferAfter finds the sub-instruction tagged with disc and returns
// the parsed transfer immediately following it. Missing either piece
// returns nil.
func transferAfter(inner []rpc.ParsedInstruction, disc string) (*rpc.TransferInfo, error) {
	for i, instr := range inner {
		if instr.Data == "" {
			continue
		}
		data, err := codec.DecodeBase58(instr.Data)
		if err != nil {
			continue
		}
		got, err := codec.Discriminator8(data)
		if err != nil || got != disc {
			continue
		}
		if i+1 >= len(inner) {
			return nil, nil
		}
		return rpc.ParseTransferInfo(inner[i+1])
	}
	return nil, nil
}

// wsolAccounts collects the transaction's wrapped SOL token accounts
// from the balance records.
func wsolAccounts(tx *rpc.TransactionResult) map[string]bool {
	out := make(map[string]bool)
	if tx.Meta == nil || tx.Transaction == nil {
		return out
	}
	keys := tx.Transaction.Message.AccountKeys
	mark := func(balances []rpc.TokenBalance) {
		for _, bal := range balances {
			if bal.Mint == WSOLMint && bal.AccountIndex < len(keys) {
				out[keys[bal.AccountIndex].Pubkey] = true
			}
		}
	}
	mark(tx.Meta.PreTokenBalances)
	mark(tx.Meta.PostTokenBalances)
	return out
}

// tradedMint finds the non-SOL mint and its decimals from the balance
// records.
func tradedMint(tx *rpc.TransactionResult) (string, int32, bool) {
	if tx.Meta == nil {
		return "", 0, false
	}
	for _, bal := range tx.Meta.PostTokenBalances {
		if bal.Mint != "" && bal.Mint != WSOLMint {
			return bal.Mint, int32(bal.UITokenAmount.Decimals), true
		}
	}
	return "", 0, false
}
