package raydium

import (
	"fmt"

	"github.com/aman-zulfiqar/solana-trade-router/internal/codec"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
)

// ParseSwap decodes the Raydium V4 instruction at index into an order.
// A V4 swap moves value through exactly two inner token transfers: the
// user's deposit into one pool vault, then the pool's payout from the
// other. The coin vault rides at a fixed account position and holds the
// SOL side, so the first transfer landing there means a buy.
func ParseSwap(tx *rpc.TransactionResult, index int, instr rpc.ParsedInstruction) (*models.Order, error) {
	data, err := codec.DecodeBase58(instr.Data)
	if err != nil {
		return nil, err
	}
	disc, err := codec.Discriminator1(data)
	if err != nil || disc != DiscSwap {
		return nil, nil
	}
	if len(instr.Accounts) < swapAccountCount-1 {
		return nil, nil
	}

	inner, found, err := tx.InnerInstructionsOf(index)
	if err != nil || !found {
		return nil, nil
	}

	transfers, err := collectTransfers(inner, 2)
	if err != nil {
		return nil, err
	}
	if len(transfers) < 2 {
		return nil, nil
	}
	in, out := transfers[0], transfers[1]

	poolCoin := instr.Accounts[idxPoolCoin]

	var orderType models.OrderType
	var solRaw, tokenRaw uint64
	if in.Destination == poolCoin {
		orderType = models.OrderBuy
		solRaw, tokenRaw = in.Amount, out.Amount
	} else {
		orderType = models.OrderSell
		tokenRaw, solRaw = in.Amount, out.Amount
	}

	mint, decimals, err := tradedMint(tx)
	if err != nil {
		return nil, err
	}

	return &models.Order{
		Type:         orderType,
		SolAmount:    models.UnshiftLamports(solRaw),
		TokenAmount:  models.UnshiftAmount(tokenRaw, decimals),
		RouterName:   models.RouterRaydium,
		Router:       ProgramID.String(),
		TokenAddress: mint,
		User:         tx.Signer(),
		Extra:        ExtractSwapKeys(instr),
	}, nil
}

// ExtractSwapKeys recovers the pool accounts from a swap instruction's
// account list so follow-up orders can hit the same pool directly.
func ExtractSwapKeys(instr rpc.ParsedInstruction) *models.RaydiumSwapKeys {
	if len(instr.Accounts) < swapAccountCount-1 {
		return nil
	}
	return &models.RaydiumSwapKeys{
		AmmID:                instr.Accounts[idxAmmID],
		AmmAuthority:         AuthorityV4.String(),
		AmmOpenOrders:        instr.Accounts[idxAmmOpenOrders],
		AmmTargetOrders:      instr.Accounts[idxAmmTargetOrders],
		PoolCoinTokenAccount: instr.Accounts[idxPoolCoin],
		PoolPcTokenAccount:   instr.Accounts[idxPoolPc],
		SerumProgram:         instr.Accounts[idxSerumProgram],
		SerumMarket:          instr.Accounts[idxSerumMarket],
		SerumBids:            instr.Accounts[idxSerumBids],
		SerumAsks:            instr.Accounts[idxSerumAsks],
		SerumEventQueue:      instr.Accounts[idxSerumEventQueue],
		SerumCoinVault:       instr.Accounts[idxSerumCoinVault],
		SerumPcVault:         instr.Accounts[idxSerumPcVault],
		SerumVaultSigner:     instr.Accounts[idxSerumVaultSign],
	}
}

// LiquidityAdd is a decoded V4 deposit, the coin and pc legs paired
// with the pool they entered.
type LiquidityAdd struct {
	AmmID      string `json:"amm_id"`
	CoinAmount uint64 `json:"coin_amount"`
	PcAmount   uint64 `json:"pc_amount"`
}

// ParseAddLiquidity decodes a V4 deposit instruction. Non-deposit
// instructions produce nil.
func ParseAddLiquidity(tx *rpc.TransactionResult, index int, instr rpc.ParsedInstruction) (*LiquidityAdd, error) {
	data, err := codec.DecodeBase58(instr.Data)
	if err != nil {
		return nil, err
	}
	disc, err := codec.Discriminator1(data)
	if err != nil || disc != DiscAddLiquidity {
		return nil, nil
	}
	if len(instr.Accounts) < 2 {
		return nil, nil
	}

	inner, found, err := tx.InnerInstructionsOf(index)
	if err != nil || !found {
		return nil, nil
	}
	transfers, err := collectTransfers(inner, 2)
	if err != nil {
		return nil, err
	}
	if len(transfers) < 2 {
		return nil, nil
	}

	return &LiquidityAdd{
		AmmID:      instr.Accounts[idxAmmID],
		CoinAmount: transfers[0].Amount,
		PcAmount:   transfers[1].Amount,
	}, nil
}

// collectTransfers gathers up to max parsed transfers from an inner
// instruction list, in order.
func collectTransfers(inner []rpc.ParsedInstruction, max int) ([]*rpc.TransferInfo, error) {
	var out []*rpc.TransferInfo
	for _, instr := range inner {
		info, err := rpc.ParseTransferInfo(instr)
		if err != nil {
			return nil, err
		}
		if info == nil {
			continue
		}
		out = append(out, info)
		if len(out) == max {
			break
		}
	}
	return out, nil
}

// tradedMint finds the non-SOL mint a transaction touched, with its
// decimal scale, from the post token balances.
func tradedMint(tx *rpc.TransactionResult) (string, int32, error) {
	if tx.Meta == nil {
		return "", 0, fmt.Errorf("transaction has no meta")
	}
	for _, bal := range tx.Meta.PostTokenBalances {
		if bal.Mint != "" && bal.Mint != WSOLMint {
			return bal.Mint, int32(bal.UITokenAmount.Decimals), nil
		}
	}
	return "", 0, fmt.Errorf("no traded token mint in balances")
}

// WSOLMint is the wrapped SOL mint address.
const WSOLMint = "So11111111111111111111111111111111111111112"
