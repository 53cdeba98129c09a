package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"

	"github.com/aman-zulfiqar/solana-trade-router/internal/config"
	"github.com/aman-zulfiqar/solana-trade-router/internal/engine"
	"github.com/aman-zulfiqar/solana-trade-router/internal/fees"
	"github.com/aman-zulfiqar/solana-trade-router/internal/jupiter"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/router"
	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

func main() {
	loadEnv()

	mode := flag.String("mode", "classify", "classify | fees | quote | place | balance")
	signature := flag.String("sig", "", "transaction signature (classify, fees)")
	routerName := flag.String("router", "jupiter", "pumpfun | raydium | jupiter (place)")
	orderType := flag.String("type", "buy", "buy | sell (quote, place)")
	token := flag.String("token", "", "token mint address (quote, place)")
	amount := flag.String("amount", "", "human-scaled amount: SOL for buys, tokens for sells (quote, place)")
	slippageBps := flag.Int("slippage-bps", 100, "slippage in bps (e.g. 100 = 1%)")
	sellAll := flag.Bool("sell-all", false, "drain and close the token account after the sell")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	eng, err := engine.NewFromEnv()
	if err != nil {
		fmt.Println("failed to init engine:", err)
		os.Exit(1)
	}
	defer eng.Close()

	switch *mode {
	case "classify":
		requireSignature(*signature)
		order, err := eng.Dispatcher().ClassifySignature(ctx, *signature)
		if err != nil {
			fmt.Println("classify failed:", err)
			os.Exit(1)
		}
		if order == nil {
			fmt.Println("not a recognized swap")
			return
		}
		printJSON(order)
	case "fees":
		requireSignature(*signature)
		tx, err := eng.Client().GetParsedTransaction(ctx, *signature)
		if err != nil {
			fmt.Println("fetch failed:", err)
			os.Exit(1)
		}
		breakdown, err := fees.Reconstruct(tx)
		if err != nil {
			fmt.Println("fee reconstruction failed:", err)
			os.Exit(1)
		}
		printJSON(breakdown)
	case "quote":
		if *token == "" || *amount == "" {
			fmt.Println("missing -token or -amount")
			os.Exit(2)
		}
		amountIn, err := resolveAmount(ctx, eng, *orderType, *token, *amount)
		if err != nil {
			fmt.Println("invalid -amount:", err)
			os.Exit(2)
		}
		cfg := config.Load()
		jup := jupiter.NewClient(cfg.JupiterBaseURL, cfg.JupiterAPIKey)
		inputMint, outputMint := jupiter.WSOLMint, *token
		if *orderType == "sell" {
			inputMint, outputMint = *token, jupiter.WSOLMint
		}
		bps := uint16(*slippageBps)
		quote, err := jup.Quote(ctx, jupiter.QuoteRequest{
			InputMint:   inputMint,
			OutputMint:  outputMint,
			Amount:      strconv.FormatUint(amountIn, 10),
			SlippageBps: &bps,
		})
		if err != nil {
			fmt.Println("quote failed:", err)
			os.Exit(1)
		}
		printJSON(quote)
	case "place":
		if *token == "" || *amount == "" {
			fmt.Println("missing -token or -amount")
			os.Exit(2)
		}
		mint, err := solana.PublicKeyFromBase58(*token)
		if err != nil {
			fmt.Println("invalid -token:", err)
			os.Exit(2)
		}
		rt, ok := models.ParseRouterType(*routerName)
		if !ok {
			fmt.Println("invalid -router (use pumpfun|raydium|jupiter)")
			os.Exit(2)
		}
		amountIn, err := resolveAmount(ctx, eng, *orderType, *token, *amount)
		if err != nil {
			fmt.Println("invalid -amount:", err)
			os.Exit(2)
		}
		res, err := eng.PlaceOrder(ctx, engine.PlaceRequest{
			Router: rt,
			Swap: router.SwapRequest{
				Type:        models.OrderType(*orderType),
				TokenMint:   mint,
				AmountIn:    amountIn,
				SlippageBps: uint16(*slippageBps),
				SellAll:     *sellAll,
			},
		})
		if err != nil {
			fmt.Println("order failed:", err)
			os.Exit(1)
		}
		fmt.Printf("sig=%s duration=%s\n", res.Signature, res.Duration)
		if res.Order != nil {
			printJSON(res.Order)
		}
	case "balance":
		sol, err := eng.Wallet().GetBalanceSOL(ctx)
		if err != nil {
			fmt.Println("balance fetch failed:", err)
			os.Exit(1)
		}
		fmt.Printf("wallet=%s balance=%.9f SOL\n", eng.Wallet().Address(), sol)
	default:
		fmt.Println("invalid -mode (use classify|fees|quote|place|balance)")
		os.Exit(2)
	}
}

// resolveAmount shifts a human-scaled decimal amount into base units.
// Buys spend SOL; sells need the mint's own decimal scale.
func resolveAmount(ctx context.Context, eng *engine.Engine, orderType, token, amount string) (uint64, error) {
	decimals := int32(models.SOLDecimals)
	if orderType == "sell" {
		d, err := eng.Client().GetTokenDecimals(ctx, token)
		if err != nil {
			return 0, err
		}
		decimals = d
	}
	return models.ShiftAmount(amount, decimals)
}

func requireSignature(sig string) {
	if sig == "" {
		fmt.Println("missing -sig")
		os.Exit(2)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println("encode failed:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
