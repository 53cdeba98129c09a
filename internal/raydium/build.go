package raydium

import (
	"context"
	"fmt"

	"github.com/aman-zulfiqar/solana-trade-router/internal/codec"
	"github.com/aman-zulfiqar/solana-trade-router/internal/curve"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/router"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	"github.com/aman-zulfiqar/solana-trade-router/internal/spl"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

const (
	baseComputeUnits      = 30_000
	perAccountCreateUnits = 30_000
)

// Builder assembles Raydium V4 swap instructions. Trades are
// denominated against SOL, with wrapped SOL handled in-line: a buy
// wraps lamports before the swap, a sell always unwraps after.
type Builder struct {
	Client *rpc.Client
	Pools  *PoolsClient
	Logger *logrus.Logger
}

func NewBuilder(client *rpc.Client, pools *PoolsClient, logger *logrus.Logger) *Builder {
	if logger == nil {
		logger = logrus.New()
	}
	return &Builder{Client: client, Pools: pools, Logger: logger}
}

// Build creates the instruction sequence for one pool trade.
func (b *Builder) Build(ctx context.Context, req router.SwapRequest) (*router.BuiltInstructionSet, error) {
	if req.AmountIn == 0 {
		return nil, fmt.Errorf("raydium: amount must be > 0")
	}

	keys := req.PoolKeys
	if keys == nil {
		if b.Pools == nil {
			return nil, fmt.Errorf("raydium: pool keys required and no discovery client is configured")
		}
		discovered, err := b.Pools.PoolKeysForMint(ctx, req.TokenMint.String())
		if err != nil {
			return nil, fmt.Errorf("raydium pool discovery: %w", err)
		}
		keys = discovered
	}

	wsolATA, _, err := spl.FindAssociatedTokenAddress(req.User, spl.WSOLMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive wsol account: %w", err)
	}
	tokenATA, _, err := spl.FindAssociatedTokenAddress(req.User, req.TokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive token account: %w", err)
	}

	accounts, err := b.Client.GetMultipleParsedTokenAccounts(ctx, []string{
		wsolATA.String(),
		tokenATA.String(),
		keys.PoolCoinTokenAccount,
		keys.PoolPcTokenAccount,
	})
	if err != nil {
		return nil, err
	}
	wsolAcct, tokenAcct, poolCoin, poolPc := accounts[0], accounts[1], accounts[2], accounts[3]
	if poolCoin == nil || poolPc == nil {
		return nil, fmt.Errorf("raydium: pool vaults not found for amm %s", keys.AmmID)
	}

	var instructions []solana.Instruction
	computeUnits := uint32(baseComputeUnits)

	createWsol := wsolAcct == nil
	if createWsol {
		instructions = append(instructions,
			spl.NewCreateAssociatedTokenAccountIx(req.User, wsolATA, req.User, spl.WSOLMint))
		computeUnits += perAccountCreateUnits
	}

	switch req.Type {
	case models.OrderBuy:
		if tokenAcct == nil {
			instructions = append(instructions,
				spl.NewCreateAssociatedTokenAccountIx(req.User, tokenATA, req.User, req.TokenMint))
			computeUnits += perAccountCreateUnits
		}

		// Wrap the lamports being spent.
		instructions = append(instructions,
			spl.NewSystemTransferIx(req.User, wsolATA, req.AmountIn),
			spl.NewTokenSyncNativeIx(wsolATA),
		)

		minOut, err := curve.QuoteOutput(req.AmountIn, poolCoin.Amount, poolPc.Amount, req.SlippageBps)
		if err != nil {
			return nil, fmt.Errorf("raydium quote: %w", err)
		}
		swapIx, err := b.swapInstruction(keys, wsolATA, tokenATA, req.User, req.AmountIn, minOut)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, swapIx)

	case models.OrderSell:
		if tokenAcct == nil {
			return nil, fmt.Errorf("raydium: no token account to sell from")
		}
		if req.SellAll && tokenAcct.Amount != req.AmountIn {
			return nil, fmt.Errorf("%w: balance %d, selling %d", router.ErrNonZeroRemainder, tokenAcct.Amount, req.AmountIn)
		}

		minOut, err := curve.QuoteOutput(req.AmountIn, poolPc.Amount, poolCoin.Amount, req.SlippageBps)
		if err != nil {
			return nil, fmt.Errorf("raydium quote: %w", err)
		}
		swapIx, err := b.swapInstruction(keys, tokenATA, wsolATA, req.User, req.AmountIn, minOut)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, swapIx)

		// Unwrap the SOL proceeds.
		instructions = append(instructions,
			spl.NewTokenCloseAccountIx(wsolATA, req.User, req.User))

		if req.SellAll {
			instructions = append(instructions,
				spl.NewTokenCloseAccountIx(tokenATA, req.User, req.User))
		}

	default:
		return nil, fmt.Errorf("raydium: unsupported order type %q", req.Type)
	}

	return &router.BuiltInstructionSet{
		Router:       models.RouterRaydium,
		Instructions: instructions,
		ComputeUnits: computeUnits,
	}, nil
}

func (b *Builder) swapInstruction(
	keys *models.RaydiumSwapKeys,
	source, destination, user solana.PublicKey,
	amountIn, minAmountOut uint64,
) (solana.Instruction, error) {
	var keyErr error
	key := func(field, value string) solana.PublicKey {
		if keyErr != nil {
			return solana.PublicKey{}
		}
		k, err := solana.PublicKeyFromBase58(value)
		if err != nil {
			keyErr = fmt.Errorf("raydium: invalid %s in pool keys: %w", field, err)
		}
		return k
	}
	// AMM-only pools ship without Serum legs; those slots take the
	// WSOL mint as a placeholder the program never dereferences.
	serumKey := func(field, value string) solana.PublicKey {
		if value == "" {
			return spl.WSOLMint
		}
		return key(field, value)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: solana.TokenProgramID},
		{PublicKey: key("ammId", keys.AmmID), IsWritable: true},
		{PublicKey: key("ammAuthority", keys.AmmAuthority)},
		{PublicKey: key("ammOpenOrders", keys.AmmOpenOrders), IsWritable: true},
		{PublicKey: key("ammTargetOrders", keys.AmmTargetOrders), IsWritable: true},
		{PublicKey: key("poolCoinTokenAccount", keys.PoolCoinTokenAccount), IsWritable: true},
		{PublicKey: key("poolPcTokenAccount", keys.PoolPcTokenAccount), IsWritable: true},
		{PublicKey: serumKey("serumProgram", keys.SerumProgram)},
		{PublicKey: serumKey("serumMarket", keys.SerumMarket), IsWritable: true},
		{PublicKey: serumKey("serumBids", keys.SerumBids), IsWritable: true},
		{PublicKey: serumKey("serumAsks", keys.SerumAsks), IsWritable: true},
		{PublicKey: serumKey("serumEventQueue", keys.SerumEventQueue), IsWritable: true},
		{PublicKey: serumKey("serumCoinVault", keys.SerumCoinVault), IsWritable: true},
		{PublicKey: serumKey("serumPcVault", keys.SerumPcVault), IsWritable: true},
		{PublicKey: serumKey("serumVaultSigner", keys.SerumVaultSigner)},
		{PublicKey: source, IsWritable: true},
		{PublicKey: destination, IsWritable: true},
		{PublicKey: user, IsSigner: true, IsWritable: true},
	}
	if keyErr != nil {
		return nil, keyErr
	}

	data := codec.EncodeInstructionData(codec.MustDiscriminatorBytes(DiscSwap), amountIn, minAmountOut)
	return solana.NewInstruction(ProgramID, accounts, data), nil
}
