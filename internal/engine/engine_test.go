package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/router"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBuilder struct {
	built *router.BuiltInstructionSet
	err   error
}

func (s *stubBuilder) Build(ctx context.Context, req router.SwapRequest) (*router.BuiltInstructionSet, error) {
	return s.built, s.err
}

func testEngine(t *testing.T, handler http.HandlerFunc) *Engine {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	eng, err := New(Config{
		RPCURL:     srv.URL,
		PrivateKey: key.String(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func feeSamplesHandler(fees ...uint64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		samples := make([]map[string]uint64, 0, len(fees))
		for i, f := range fees {
			samples = append(samples, map[string]uint64{
				"slot":              uint64(1000 + i),
				"prioritizationFee": f,
			})
		}
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": 1, "result": samples}
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestEstimateComputeUnitPrice_AveragesNonzero(t *testing.T) {
	eng := testEngine(t, feeSamplesHandler(0, 100, 0, 200, 300))

	price, err := eng.EstimateComputeUnitPrice(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), price)
}

func TestEstimateComputeUnitPrice_NoSamples(t *testing.T) {
	eng := testEngine(t, feeSamplesHandler(0, 0, 0))

	price, err := eng.EstimateComputeUnitPrice(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), price)
}

func stubTradeBuilder(eng *Engine) {
	ix := solana.NewInstruction(
		solana.SystemProgramID,
		[]*solana.AccountMeta{
			{PublicKey: eng.Wallet().PublicKey(), IsSigner: true, IsWritable: true},
		},
		[]byte{2, 0, 0, 0},
	)
	eng.builders[models.RouterPumpFun] = &stubBuilder{
		built: &router.BuiltInstructionSet{
			Router:       models.RouterPumpFun,
			Instructions: []solana.Instruction{ix},
		},
	}
}

func TestPlaceOrder_PriceCeiling(t *testing.T) {
	eng := testEngine(t, feeSamplesHandler(MaxComputeUnitPrice+1))
	stubTradeBuilder(eng)

	_, err := eng.PlaceOrder(context.Background(), PlaceRequest{
		Router: models.RouterPumpFun,
		Swap:   router.SwapRequest{Type: models.OrderBuy},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrComputeUnitPriceTooHigh)
}

func TestPlaceOrder_CeilingIgnoresAccelerate(t *testing.T) {
	// The ceiling gates the raw market estimate. A configured
	// accelerator multiplying past it is the operator's own choice and
	// must not trip the breaker.
	eng := testEngine(t, feeSamplesHandler(MaxComputeUnitPrice/2+1))
	eng.cfg.Accelerate = 2
	stubTradeBuilder(eng)

	_, err := eng.PlaceOrder(context.Background(), PlaceRequest{
		Router: models.RouterPumpFun,
		Swap:   router.SwapRequest{Type: models.OrderBuy},
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrComputeUnitPriceTooHigh)
}

func TestPlaceOrder_UnknownRouter(t *testing.T) {
	eng := testEngine(t, feeSamplesHandler())

	_, err := eng.PlaceOrder(context.Background(), PlaceRequest{Router: models.RouterOrca})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no builder")
}

func TestNew_RequiresRPCURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNew_WiresBuilders(t *testing.T) {
	eng := testEngine(t, feeSamplesHandler())

	for _, r := range []models.RouterType{models.RouterPumpFun, models.RouterRaydium, models.RouterJupiter} {
		_, ok := eng.Builder(r)
		assert.True(t, ok, "missing builder for %s", r)
	}
	_, ok := eng.Builder(models.RouterMeteora)
	assert.False(t, ok)
}

// fullNodeHandler fakes the RPC surface of a whole placement round:
// fee sampling, blockhash, submission, status polling and the final
// transaction fetch.
func fullNodeHandler(t *testing.T, confirmedTx map[string]interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var result interface{}
		switch req.Method {
		case "getRecentPrioritizationFees":
			result = []map[string]uint64{}
		case "getLatestBlockhash":
			result = map[string]interface{}{"value": map[string]interface{}{
				"blockhash":            "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
				"lastValidBlockHeight": 100,
			}}
		case "sendTransaction":
			result = "placedSig"
		case "getSignatureStatuses":
			result = map[string]interface{}{"value": []interface{}{
				map[string]interface{}{"slot": 1, "confirmationStatus": "confirmed"},
			}}
		case "getTransaction":
			result = confirmedTx
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": 1, "result": result})
	}
}

func TestPlaceOrder_UnrecognizedConfirmationFails(t *testing.T) {
	// The transaction lands, but carries no instruction any router
	// decoder claims. That must surface as an error, not a success
	// with a missing order.
	confirmedTx := map[string]interface{}{
		"blockTime": 1_736_000_000,
		"meta":      map[string]interface{}{"fee": 5_000},
		"transaction": map[string]interface{}{
			"signatures": []string{"placedSig"},
			"message": map[string]interface{}{
				"accountKeys":  []interface{}{},
				"instructions": []interface{}{},
			},
		},
	}

	srv := httptest.NewServer(fullNodeHandler(t, confirmedTx))
	t.Cleanup(srv.Close)

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	eng, err := New(Config{
		RPCURL:        srv.URL,
		BroadcastURLs: []string{srv.URL},
		PrivateKey:    key.String(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	stubTradeBuilder(eng)

	_, err = eng.PlaceOrder(context.Background(), PlaceRequest{
		Router: models.RouterPumpFun,
		Swap:   router.SwapRequest{Type: models.OrderBuy},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no router decoder recognized")
}
