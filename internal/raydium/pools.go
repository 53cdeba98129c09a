package raydium

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-trade-router/internal/models"
	"github.com/aman-zulfiqar/solana-trade-router/internal/rpc"
	"github.com/shopspring/decimal"
)

// PoolsClient queries the Raydium v3 REST API for pool discovery.
type PoolsClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewPoolsClient(baseURL string) *PoolsClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "https://api-v3.raydium.io"
	}
	return &PoolsClient{
		BaseURL: baseURL,
		HTTP: &http.Client{
			Timeout: 12 * time.Second,
		},
	}
}

type poolInfoResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	} `json:"data"`
}

type poolKeysResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		ID        string `json:"id"`
		Authority string `json:"authority"`
		OpenOrders string `json:"openOrders"`
		TargetOrders string `json:"targetOrders"`
		Vault     struct {
			A string `json:"A"`
			B string `json:"B"`
		} `json:"vault"`
		MarketProgramID  string `json:"marketProgramId"`
		MarketID         string `json:"marketId"`
		MarketBids       string `json:"marketBids"`
		MarketAsks       string `json:"marketAsks"`
		MarketEventQueue string `json:"marketEventQueue"`
		MarketBaseVault  string `json:"marketBaseVault"`
		MarketQuoteVault string `json:"marketQuoteVault"`
		MarketAuthority  string `json:"marketAuthority"`
	} `json:"data"`
}

func (c *PoolsClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("raydium api http %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode raydium api response: %w", err)
	}
	return nil
}

// FindPoolID returns the id of the deepest standard SOL pool for mint.
func (c *PoolsClient) FindPoolID(ctx context.Context, mint string) (string, error) {
	q := url.Values{}
	q.Set("mint1", WSOLMint)
	q.Set("mint2", mint)
	q.Set("poolType", "standard")
	q.Set("poolSortField", "liquidity")
	q.Set("sortType", "desc")
	q.Set("pageSize", "1")
	q.Set("page", "1")

	var resp poolInfoResponse
	if err := c.get(ctx, "/pools/info/mint?"+q.Encode(), &resp); err != nil {
		return "", err
	}
	if !resp.Success || len(resp.Data.Data) == 0 {
		return "", fmt.Errorf("no raydium pool for mint %s", mint)
	}
	return resp.Data.Data[0].ID, nil
}

// FetchPoolKeys resolves the full account set of a pool by its id.
func (c *PoolsClient) FetchPoolKeys(ctx context.Context, poolID string) (*models.RaydiumSwapKeys, error) {
	q := url.Values{}
	q.Set("ids", poolID)

	var resp poolKeysResponse
	if err := c.get(ctx, "/pools/key/ids?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if !resp.Success || len(resp.Data) == 0 {
		return nil, fmt.Errorf("no raydium pool keys for id %s", poolID)
	}
	d := resp.Data[0]

	return &models.RaydiumSwapKeys{
		AmmID:                d.ID,
		AmmAuthority:         d.Authority,
		AmmOpenOrders:        d.OpenOrders,
		AmmTargetOrders:      d.TargetOrders,
		PoolCoinTokenAccount: d.Vault.A,
		PoolPcTokenAccount:   d.Vault.B,
		SerumProgram:         d.MarketProgramID,
		SerumMarket:          d.MarketID,
		SerumBids:            d.MarketBids,
		SerumAsks:            d.MarketAsks,
		SerumEventQueue:      d.MarketEventQueue,
		SerumCoinVault:       d.MarketBaseVault,
		SerumPcVault:         d.MarketQuoteVault,
		SerumVaultSigner:     d.MarketAuthority,
	}, nil
}

// PoolKeysForMint discovers and resolves the pool for a mint in one go.
func (c *PoolsClient) PoolKeysForMint(ctx context.Context, mint string) (*models.RaydiumSwapKeys, error) {
	id, err := c.FindPoolID(ctx, mint)
	if err != nil {
		return nil, err
	}
	return c.FetchPoolKeys(ctx, id)
}

// RecoverPoolKeys rebuilds a pool's account set from its recent
// on-chain history by scanning for a swap against the AMM account.
func RecoverPoolKeys(ctx context.Context, client *rpc.Client, ammID string, maxSignatures int) (*models.RaydiumSwapKeys, error) {
	if maxSignatures <= 0 {
		maxSignatures = 20
	}
	sigs, err := client.GetSignaturesForAddress(ctx, ammID, map[string]interface{}{
		"limit": maxSignatures,
	})
	if err != nil {
		return nil, err
	}

	for _, info := range sigs.Result {
		if info.Err != nil {
			continue
		}
		tx, err := client.TryGetParsedTransaction(ctx, info.Signature)
		if err != nil || tx == nil || tx.Transaction == nil {
			continue
		}
		for _, instr := range tx.Transaction.Message.Instructions {
			if instr.ProgramID != ProgramID.String() {
				continue
			}
			if keys := ExtractSwapKeys(instr); keys != nil && keys.AmmID == ammID {
				return keys, nil
			}
		}
	}
	return nil, fmt.Errorf("no recent swap found for amm %s", ammID)
}

// PoolPrice returns the SOL price of one whole token from the pool's
// vault balances, as a decimal string.
func PoolPrice(ctx context.Context, client *rpc.Client, keys *models.RaydiumSwapKeys) (string, error) {
	accounts, err := client.GetMultipleParsedTokenAccounts(ctx, []string{
		keys.PoolCoinTokenAccount,
		keys.PoolPcTokenAccount,
	})
	if err != nil {
		return "", err
	}
	coin, pc := accounts[0], accounts[1]
	if coin == nil || pc == nil {
		return "", fmt.Errorf("pool vaults not found for amm %s", keys.AmmID)
	}
	if pc.Amount == 0 {
		return "", fmt.Errorf("pool %s has no token reserves", keys.AmmID)
	}

	sol := decimal.NewFromUint64(coin.Amount).Shift(-int32(coin.Decimals))
	token := decimal.NewFromUint64(pc.Amount).Shift(-int32(pc.Decimals))
	return sol.Div(token).String(), nil
}
