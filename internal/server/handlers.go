package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aman-zulfiqar/solana-trade-router/internal/cache"
	"github.com/aman-zulfiqar/solana-trade-router/internal/engine"
	"github.com/aman-zulfiqar/solana-trade-router/internal/fees"
	"github.com/aman-zulfiqar/solana-trade-router/internal/jupiter"
	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/parser"
	"github.com/aman-zulfiqar/solana-trade-router/internal/raydium"
	"github.com/aman-zulfiqar/solana-trade-router/internal/router"
	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Engine  *engine.Engine    // Order placement orchestrator
	Orders  *cache.RedisStore // Redis-backed recent orders (optional)
	Jupiter *jupiter.Client   // Jupiter Quote API client (optional)
	DevMode bool              // Enable detailed error responses in development
	Logger  *logrus.Logger    // Structured logger
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// RecentOrders returns the most recent confirmed orders with optional limit parameter
// Accepts limit query parameter (default: 100, range: 1-100)
func (h *Handlers) RecentOrders(c echo.Context) error {
	if h.Orders == nil {
		return h.err(c, http.StatusServiceUnavailable, "order cache is not configured", nil)
	}

	limit := 100
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 100 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 100"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.RecentOrders(ctx, limit)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to load orders", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, OrdersResponse{Items: orders})
}

// Order classifies a confirmed transaction by signature
func (h *Handlers) Order(c echo.Context) error {
	signature := c.Param("signature")
	if signature == "" {
		return h.err(c, http.StatusBadRequest, "invalid signature", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	order, err := h.Engine.Dispatcher().ClassifySignature(ctx, signature)
	if err != nil {
		return h.err(c, http.StatusBadGateway, "failed to classify transaction", map[string]any{"err": err.Error()})
	}
	if order == nil {
		return h.err(c, http.StatusNotFound, "transaction is not a recognized swap", nil)
	}
	return c.JSON(http.StatusOK, order)
}

// Fees reconstructs the fee breakdown of a confirmed transaction
func (h *Handlers) Fees(c echo.Context) error {
	signature := c.Param("signature")
	if signature == "" {
		return h.err(c, http.StatusBadRequest, "invalid signature", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	tx, err := h.Engine.Client().GetParsedTransaction(ctx, signature)
	if err != nil {
		return h.err(c, http.StatusBadGateway, "failed to fetch transaction", map[string]any{"err": err.Error()})
	}

	breakdown, err := fees.Reconstruct(tx)
	if err != nil {
		return h.err(c, http.StatusUnprocessableEntity, "failed to reconstruct fees", map[string]any{"err": err.Error()})
	}
	return c.JSON(http.StatusOK, breakdown)
}

// Launch returns the PumpFun token launch in a transaction, if any
func (h *Handlers) Launch(c echo.Context) error {
	signature := c.Param("signature")
	if signature == "" {
		return h.err(c, http.StatusBadRequest, "invalid signature", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	tx, err := h.Engine.Client().GetParsedTransaction(ctx, signature)
	if err != nil {
		return h.err(c, http.StatusBadGateway, "failed to fetch transaction", map[string]any{"err": err.Error()})
	}

	launch, err := parser.FindLaunch(tx)
	if err != nil {
		return h.err(c, http.StatusUnprocessableEntity, "failed to decode launch", map[string]any{"err": err.Error()})
	}
	if launch == nil {
		return h.err(c, http.StatusNotFound, "transaction is not a token launch", nil)
	}
	return c.JSON(http.StatusOK, LaunchResponse{
		Name:         launch.Name,
		Symbol:       launch.Symbol,
		URI:          launch.URI,
		Mint:         launch.Mint.String(),
		BondingCurve: launch.BondingCurve.String(),
		User:         launch.User.String(),
	})
}

// Migration reports whether a transaction withdrew a graduated
// PumpFun curve's liquidity.
func (h *Handlers) Migration(c echo.Context) error {
	signature := c.Param("signature")
	if signature == "" {
		return h.err(c, http.StatusBadRequest, "invalid signature", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	tx, err := h.Engine.Client().GetParsedTransaction(ctx, signature)
	if err != nil {
		return h.err(c, http.StatusBadGateway, "failed to fetch transaction", map[string]any{"err": err.Error()})
	}

	migration, err := parser.FindMigration(tx)
	if err != nil {
		return h.err(c, http.StatusUnprocessableEntity, "failed to decode withdrawal", map[string]any{"err": err.Error()})
	}
	if migration == nil {
		return h.err(c, http.StatusNotFound, "transaction is not a liquidity withdrawal", nil)
	}
	return c.JSON(http.StatusOK, migration)
}

// Liquidity decodes a Raydium V4 deposit from a confirmed transaction.
func (h *Handlers) Liquidity(c echo.Context) error {
	signature := c.Param("signature")
	if signature == "" {
		return h.err(c, http.StatusBadRequest, "invalid signature", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	tx, err := h.Engine.Client().GetParsedTransaction(ctx, signature)
	if err != nil {
		return h.err(c, http.StatusBadGateway, "failed to fetch transaction", map[string]any{"err": err.Error()})
	}

	add, err := parser.FindLiquidityAdd(tx)
	if err != nil {
		return h.err(c, http.StatusUnprocessableEntity, "failed to decode deposit", map[string]any{"err": err.Error()})
	}
	if add == nil {
		return h.err(c, http.StatusNotFound, "transaction is not a liquidity deposit", nil)
	}
	return c.JSON(http.StatusOK, add)
}

// Pool resolves the deepest Raydium SOL pool for a mint and prices it
// off the pool vaults. Falls back to rebuilding the account set from
// recent on-chain swaps when the REST API cannot serve the keys.
func (h *Handlers) Pool(c echo.Context) error {
	mint := c.Param("mint")
	if _, err := solana.PublicKeyFromBase58(mint); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid mint", map[string]any{"mint": mint})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	pools := h.Engine.Pools()
	poolID, err := pools.FindPoolID(ctx, mint)
	if err != nil {
		return h.err(c, http.StatusNotFound, "no pool for mint", map[string]any{"err": err.Error()})
	}

	keys, err := pools.FetchPoolKeys(ctx, poolID)
	if err != nil {
		keys, err = raydium.RecoverPoolKeys(ctx, h.Engine.Client(), poolID, 0)
		if err != nil {
			return h.err(c, http.StatusBadGateway, "failed to resolve pool keys", map[string]any{"err": err.Error()})
		}
	}

	price, err := raydium.PoolPrice(ctx, h.Engine.Client(), keys)
	if err != nil {
		return h.err(c, http.StatusBadGateway, "failed to price pool", map[string]any{"err": err.Error()})
	}

	return c.JSON(http.StatusOK, PoolResponse{Keys: keys, Price: price})
}

// PlaceOrder builds, submits and confirms a swap order
func (h *Handlers) PlaceOrder(c echo.Context) error {
	var req PlaceOrderRequest
	dec := json.NewDecoder(c.Request().Body)
	if err := dec.Decode(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}

	routerType, ok := models.ParseRouterType(req.Router)
	if !ok {
		return h.err(c, http.StatusBadRequest, "invalid router", map[string]any{"router": req.Router})
	}
	orderType := models.OrderType(req.Type)
	if orderType != models.OrderBuy && orderType != models.OrderSell {
		return h.err(c, http.StatusBadRequest, "invalid type", map[string]any{"type": "must be buy or sell"})
	}
	mint, err := solana.PublicKeyFromBase58(req.TokenAddress)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid token_address", map[string]any{"err": err.Error()})
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), 75*time.Second)
	defer cancel()

	// The amount arrives human-scaled: SOL on a buy, tokens on a sell.
	// Sells need the mint's decimal scale to shift into base units.
	decimals := int32(models.SOLDecimals)
	if orderType == models.OrderSell {
		decimals, err = h.Engine.Client().GetTokenDecimals(ctx, mint.String())
		if err != nil {
			return h.err(c, http.StatusBadGateway, "failed to resolve mint decimals", map[string]any{"err": err.Error()})
		}
	}
	amountIn, err := models.ShiftAmount(req.Amount, decimals)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"err": err.Error()})
	}
	if amountIn == 0 {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be > 0"})
	}

	result, err := h.Engine.PlaceOrder(ctx, engine.PlaceRequest{
		Router: routerType,
		Swap: router.SwapRequest{
			Type:        orderType,
			TokenMint:   mint,
			AmountIn:    amountIn,
			SlippageBps: req.SlippageBps,
			SellAll:     req.SellAll,
		},
		ComputeUnitLimit: req.ComputeUnitLimit,
	})
	if err != nil {
		code := http.StatusBadGateway
		switch {
		case errors.Is(err, engine.ErrComputeUnitPriceTooHigh):
			code = http.StatusServiceUnavailable
		case errors.Is(err, router.ErrNonZeroRemainder):
			code = http.StatusConflict
		case errors.Is(err, engine.ErrConfirmationTimeout):
			code = http.StatusGatewayTimeout
		}
		return h.err(c, code, "order failed", map[string]any{"err": err.Error()})
	}

	return c.JSON(http.StatusOK, PlaceOrderResponse{
		Signature: result.Signature,
		Order:     result.Order,
		TookMs:    result.Duration.Milliseconds(),
	})
}
