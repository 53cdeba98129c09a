package jupiter

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/router"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	"github.com/aman-zulfiqar/solana-trade-router/internal/spl"
	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
)

const (
	baseComputeUnits     = 40_000
	perSetupComputeUnits = 40_000
)

// Builder assembles swaps through the Jupiter aggregator API. It is
// also the fallback for tokens that outgrew their launch venue.
type Builder struct {
	API    *Client
	Client *rpc.Client
	Logger *logrus.Logger
}

func NewBuilder(api *Client, client *rpc.Client, logger *logrus.Logger) *Builder {
	if logger == nil {
		logger = logrus.New()
	}
	return &Builder{API: api, Client: client, Logger: logger}
}

// dynamicSlippageWindow widens the requested tolerance into the band
// the aggregator may tune within. The ceiling saturates instead of
// wrapping the uint16.
func dynamicSlippageWindow(bps uint16) *DynamicSlippage {
	ceiling := uint32(bps) * 10
	if ceiling > math.MaxUint16 {
		ceiling = math.MaxUint16
	}
	return &DynamicSlippage{MinBps: bps, MaxBps: uint16(ceiling)}
}

// Build quotes the trade and renders the route into instructions.
func (b *Builder) Build(ctx context.Context, req router.SwapRequest) (*router.BuiltInstructionSet, error) {
	if req.AmountIn == 0 {
		return nil, fmt.Errorf("jupiter: amount must be > 0")
	}

	inputMint, outputMint := WSOLMint, req.TokenMint.String()
	if req.Type == models.OrderSell {
		inputMint, outputMint = req.TokenMint.String(), WSOLMint
	}

	if req.Type == models.OrderSell && req.SellAll {
		ata, _, err := spl.FindAssociatedTokenAddress(req.User, req.TokenMint)
		if err != nil {
			return nil, fmt.Errorf("failed to derive token account: %w", err)
		}
		balance, exists, err := b.Client.GetTokenAccountBalance(ctx, ata.String())
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("jupiter: no token account to sell from")
		}
		if balance != req.AmountIn {
			return nil, fmt.Errorf("%w: balance %d, selling %d", router.ErrNonZeroRemainder, balance, req.AmountIn)
		}
	}

	slippage := req.SlippageBps
	quote, err := b.API.Quote(ctx, QuoteRequest{
		InputMint:   inputMint,
		OutputMint:  outputMint,
		Amount:      strconv.FormatUint(req.AmountIn, 10),
		SlippageBps: &slippage,
	})
	if err != nil {
		return nil, fmt.Errorf("jupiter quote: %w", err)
	}

	rendered, err := b.API.SwapInstructions(ctx, SwapInstructionsRequest{
		UserPublicKey:    req.User.String(),
		QuoteResponse:    quote,
		WrapAndUnwrapSol: true,
		DynamicSlippage:  dynamicSlippageWindow(req.SlippageBps),
	})
	if err != nil {
		return nil, fmt.Errorf("jupiter swap-instructions: %w", err)
	}

	var instructions []solana.Instruction
	for i := range rendered.SetupInstructions {
		ix, err := rendered.SetupInstructions[i].Deserialize()
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, ix)
	}
	swapIx, err := rendered.SwapInstruction.Deserialize()
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, swapIx)
	if rendered.CleanupInstruction != nil {
		cleanupIx, err := rendered.CleanupInstruction.Deserialize()
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, cleanupIx)
	}

	if req.Type == models.OrderSell && req.SellAll {
		ata, _, err := spl.FindAssociatedTokenAddress(req.User, req.TokenMint)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions,
			spl.NewTokenCloseAccountIx(ata, req.User, req.User))
	}

	computeUnits := uint32(baseComputeUnits + perSetupComputeUnits*len(rendered.SetupInstructions))

	b.Logger.WithFields(logrus.Fields{
		"input_mint":  inputMint,
		"output_mint": outputMint,
		"out_amount":  quote.OutAmount,
		"hops":        len(quote.RoutePlan),
	}).Debug("jupiter route rendered")

	return &router.BuiltInstructionSet{
		Router:       models.RouterJupiter,
		Instructions: instructions,
		ComputeUnits: computeUnits,
	}, nil
}
