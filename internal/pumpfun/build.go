package pumpfun

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
	baseComputeUnits      = 40_000
	perAccountCreateUnits = 30_000
)

// Builder assembles PumpFun swap instructions. Tokens that graduated
// off the curve are delegated to Fallback, normally the Jupiter
// builder.
type Builder struct {
	Client   *rpc.Client
	Fallback router.Builder
	Logger   *logrus.Logger
}

func NewBuilder(client *rpc.Client, fallback router.Builder, logger *logrus.Logger) *Builder {
	if logger == nil {
		logger = logrus.New()
	}
	return &Builder{Client: client, Fallback: fallback, Logger: logger}
}

// Build creates the instruction sequence for one curve trade.
func (b *Builder) Build(ctx context.Context, req router.SwapRequest) (*router.BuiltInstructionSet, error) {
	if req.AmountIn == 0 {
		return nil, fmt.Errorf("pumpfun: amount must be > 0")
	}

	acct, curveAddr, err := FetchBondingCurve(ctx, b.Client, req.TokenMint)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("pumpfun: no bonding curve for mint %s", req.TokenMint)
	}
	if acct.Graduated() {
		if b.Fallback == nil {
			return nil, fmt.Errorf("pumpfun: token %s graduated and no fallback builder is configured", req.TokenMint)
		}
		b.Logger.WithFields(logrus.Fields{
			"mint": req.TokenMint.String(),
		}).Info("token graduated off the curve, delegating to fallback router")
		return b.Fallback.Build(ctx, req)
	}

	associatedCurve, _, err := spl.FindAssociatedTokenAddress(curveAddr, req.TokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive curve token account: %w", err)
	}
	userATA, _, err := spl.FindAssociatedTokenAddress(req.User, req.TokenMint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive user token account: %w", err)
	}

	var instructions []solana.Instruction
	computeUnits := uint32(baseComputeUnits)

	// Both directions settle through the user's associated token
	// account, so it is created up front whichever way the trade runs.
	existing, err := b.Client.GetParsedTokenAccount(ctx, userATA.String())
	if err != nil {
		return nil, err
	}
	if existing == nil {
		instructions = append(instructions,
			spl.NewCreateAssociatedTokenAccountIx(req.User, userATA, req.User, req.TokenMint))
		computeUnits += perAccountCreateUnits
	}

	var tokenAmount, solAmount uint64
	var disc []byte

	switch req.Type {
	case models.OrderBuy:
		tokenAmount, err = curve.QuoteOutput(req.AmountIn, acct.VirtualSolReserves, acct.VirtualTokenReserves, req.SlippageBps)
		if err != nil {
			return nil, fmt.Errorf("pumpfun quote: %w", err)
		}
		solAmount = req.AmountIn
		disc = codec.MustDiscriminatorBytes(DiscBuy)

	case models.OrderSell:
		tokenAmount = req.AmountIn
		solAmount, err = curve.QuoteOutput(req.AmountIn, acct.VirtualTokenReserves, acct.VirtualSolReserves, req.SlippageBps)
		if err != nil {
			return nil, fmt.Errorf("pumpfun quote: %w", err)
		}
		disc = codec.MustDiscriminatorBytes(DiscSell)

		if req.SellAll {
			balance, exists, err := b.Client.GetTokenAccountBalance(ctx, userATA.String())
			if err != nil {
				return nil, err
			}
			if !exists {
				return nil, fmt.Errorf("pumpfun: no token account to sell from")
			}
			if balance != req.AmountIn {
				return nil, fmt.Errorf("%w: balance %d, selling %d", router.ErrNonZeroRemainder, balance, req.AmountIn)
			}
		}

	default:
		return nil, fmt.Errorf("pumpfun: unsupported order type %q", req.Type)
	}

	instructions = append(instructions, b.swapInstruction(req, curveAddr, associatedCurve, userATA, disc, tokenAmount, solAmount))

	if req.Type == models.OrderSell && req.SellAll {
		instructions = append(instructions,
			spl.NewTokenCloseAccountIx(userATA, req.User, req.User))
	}

	return &router.BuiltInstructionSet{
		Router:       models.RouterPumpFun,
		Instructions: instructions,
		ComputeUnits: computeUnits,
	}, nil
}

func (b *Builder) swapInstruction(
	req router.SwapRequest,
	curveAddr, associatedCurve, userATA solana.PublicKey,
	disc []byte,
	tokenAmount, solAmount uint64,
) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: GlobalAccount},
		{PublicKey: FeeRecipient, IsWritable: true},
		{PublicKey: req.TokenMint},
		{PublicKey: curveAddr, IsWritable: true},
		{PublicKey: associatedCurve, IsWritable: true},
		{PublicKey: userATA, IsWritable: true},
		{PublicKey: req.User, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID},
	}

	if req.Type == models.OrderBuy {
		accounts = append(accounts,
			&solana.AccountMeta{PublicKey: solana.TokenProgramID},
			&solana.AccountMeta{PublicKey: solana.SysVarRentPubkey},
			&solana.AccountMeta{PublicKey: EventAuthority},
			&solana.AccountMeta{PublicKey: ProgramID},
		)
	} else {
		accounts = append(accounts,
			&solana.AccountMeta{PublicKey: spl.AssociatedTokenProgramID},
			&solana.AccountMeta{PublicKey: solana.TokenProgramID},
			&solana.AccountMeta{PublicKey: EventAuthority},
			&solana.AccountMeta{PublicKey: ProgramID},
		)
	}

	data := codec.EncodeInstructionData(disc, tokenAmount, solAmount)
	return solana.NewInstruction(ProgramID, accounts, data)
}
