package rpc

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
)

// GetSignaturesForAddress fetches transaction signatures for an address
func (c *Client) GetSignaturesForAddress(ctx context.Context, address string, opts map[string]interface{}) (*SignaturesResponse, error) {
	params := []interface{}{address, opts}

	var result SignaturesResponse
	if err := c.Call(ctx, "getSignaturesForAddress", params, &result); err != nil {
		return nil, err
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return &result, nil
}

// TryGetParsedTransaction fetches a transaction once. A transaction the
// node does not know yet comes back as (nil, nil).
func (c *Client) TryGetParsedTransaction(ctx context.Context, signature string) (*TransactionResult, error) {
	params := []interface{}{
		signature,
		map[string]interface{}{
			"encoding":                       "jsonParsed",
			"maxSupportedTransactionVersion": 0,
		},
	}

	var result TransactionResponse
	if err := c.Call(ctx, "getTransaction", params, &result); err != nil {
		return nil, err
	}

	if result.Error != nil {
		return nil, result.Error
	}

	return result.Result, nil
}

// GetParsedTransaction fetches a transaction, retrying while the node
// has no record of the signature yet.
func (c *Client) GetParsedTransaction(ctx context.Context, signature string) (*TransactionResult, error) {
	var tx *TransactionResult
	err := c.CallWithRetryValue(ctx, "getTransaction", func() (bool, error) {
		res, err := c.TryGetParsedTransaction(ctx, signature)
		if err != nil {
			return false, err
		}
		tx = res
		return res != nil, nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

type accountInfoResponse struct {
	Result struct {
		Value *struct {
			Lamports uint64        `json:"lamports"`
			Owner    string        `json:"owner"`
			Data     []interface{} `json:"data"`
		} `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}

// TryGetRawAccountInfo fetches raw account data once. Missing accounts
// come back as (nil, nil).
func (c *Client) TryGetRawAccountInfo(ctx context.Context, pubkey string) ([]byte, error) {
	params := []interface{}{
		pubkey,
		map[string]interface{}{"encoding": "base64"},
	}

	var resp accountInfoResponse
	if err := c.Call(ctx, "getAccountInfo", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Result.Value == nil {
		return nil, nil
	}

	if len(resp.Result.Value.Data) < 1 {
		return nil, fmt.Errorf("account %s has no data field", pubkey)
	}
	encoded, ok := resp.Result.Value.Data[0].(string)
	if !ok {
		return nil, fmt.Errorf("account %s has malformed data field", pubkey)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode account data: %w", err)
	}
	return raw, nil
}

// GetRawAccountInfo fetches raw account data, retrying while the account
// does not exist yet.
func (c *Client) GetRawAccountInfo(ctx context.Context, pubkey string) ([]byte, error) {
	var data []byte
	err := c.CallWithRetryValue(ctx, "getAccountInfo", func() (bool, error) {
		raw, err := c.TryGetRawAccountInfo(ctx, pubkey)
		if err != nil {
			return false, err
		}
		data = raw
		return raw != nil, nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

type parsedAccountValue struct {
	Lamports uint64 `json:"lamports"`
	Owner    string `json:"owner"`
	Data     struct {
		Program string `json:"program"`
		Parsed  struct {
			Type string `json:"type"`
			Info struct {
				Mint        string      `json:"mint"`
				Owner       string      `json:"owner"`
				IsNative    interface{} `json:"isNative"`
				TokenAmount TokenAmount `json:"tokenAmount"`
			} `json:"info"`
		} `json:"parsed"`
	} `json:"data"`
}

func (v *parsedAccountValue) tokenAccount(pubkey string) (*TokenAccountInfo, error) {
	info := v.Data.Parsed.Info
	if info.Mint == "" || info.Owner == "" {
		return nil, fmt.Errorf("account %s is not a parsed token account", pubkey)
	}
	amount, err := strconv.ParseUint(info.TokenAmount.Amount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid token amount for %s: %w", pubkey, err)
	}

	isNative := false
	switch n := info.IsNative.(type) {
	case bool:
		isNative = n
	case float64:
		isNative = n > 0
	}

	return &TokenAccountInfo{
		Pubkey:      pubkey,
		Mint:        info.Mint,
		Owner:       info.Owner,
		Amount:      amount,
		Decimals:    info.TokenAmount.Decimals,
		IsNative:    isNative,
		Lamports:    v.Lamports,
		ProgramName: v.Data.Program,
	}, nil
}

// GetParsedTokenAccount fetches one token account in jsonParsed form.
// Missing accounts come back as (nil, nil).
func (c *Client) GetParsedTokenAccount(ctx context.Context, pubkey string) (*TokenAccountInfo, error) {
	params := []interface{}{
		pubkey,
		map[string]interface{}{"encoding": "jsonParsed"},
	}

	var resp struct {
		Result struct {
			Value *parsedAccountValue `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}
	if err := c.Call(ctx, "getAccountInfo", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.Result.Value == nil {
		return nil, nil
	}
	return resp.Result.Value.tokenAccount(pubkey)
}

// GetMultipleParsedTokenAccounts fetches several token accounts in one
// batched call. The returned slice is positional; entries for accounts
// that do not exist are nil.
func (c *Client) GetMultipleParsedTokenAccounts(ctx context.Context, pubkeys []string) ([]*TokenAccountInfo, error) {
	params := []interface{}{
		pubkeys,
		map[string]interface{}{"encoding": "jsonParsed"},
	}

	var resp struct {
		Result struct {
			Value []*parsedAccountValue `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}
	if err := c.Call(ctx, "getMultipleAccounts", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	out := make([]*TokenAccountInfo, len(pubkeys))
	for i, v := range resp.Result.Value {
		if i >= len(pubkeys) || v == nil {
			continue
		}
		acct, err := v.tokenAccount(pubkeys[i])
		if err != nil {
			return nil, err
		}
		out[i] = acct
	}
	return out, nil
}

// GetTokenAccountBalance returns the raw base-unit balance of a token
// account. Missing accounts come back as (0, false, nil).
func (c *Client) GetTokenAccountBalance(ctx context.Context, pubkey string) (uint64, bool, error) {
	params := []interface{}{pubkey}

	var resp struct {
		Result struct {
			Value *TokenAmount `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}
	if err := c.Call(ctx, "getTokenAccountBalance", params, &resp); err != nil {
		return 0, false, err
	}
	if resp.Error != nil {
		// The node answers with an error for unknown accounts.
		return 0, false, nil
	}
	if resp.Result.Value == nil {
		return 0, false, nil
	}
	amount, err := strconv.ParseUint(resp.Result.Value.Amount, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid balance for %s: %w", pubkey, err)
	}
	return amount, true, nil
}

// GetTokenDecimals returns the decimal scale of a mint, taken from its
// total supply record.
func (c *Client) GetTokenDecimals(ctx context.Context, mint string) (int32, error) {
	params := []interface{}{mint}

	var resp struct {
		Result struct {
			Value *struct {
				Decimals int32 `json:"decimals"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}
	if err := c.Call(ctx, "getTokenSupply", params, &resp); err != nil {
		return 0, err
	}
	if resp.Error != nil {
		return 0, resp.Error
	}
	if resp.Result.Value == nil {
		return 0, fmt.Errorf("no supply record for mint %s", mint)
	}
	return resp.Result.Value.Decimals, nil
}

// GetRecentPrioritizationFees returns recent priority fee samples for
// the given writable accounts.
func (c *Client) GetRecentPrioritizationFees(ctx context.Context, accounts []string) ([]PrioritizationFee, error) {
	params := []interface{}{accounts}

	var resp struct {
		Result []PrioritizationFee `json:"result"`
		Error  *RPCError           `json:"error"`
	}
	if err := c.Call(ctx, "getRecentPrioritizationFees", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

// GetLatestBlockhash fetches the most recent blockhash
func (c *Client) GetLatestBlockhash(ctx context.Context, commitment string) (string, error) {
	if commitment == "" {
		commitment = "processed"
	}

	var resp struct {
		Result struct {
			Value struct {
				Blockhash            string `json:"blockhash"`
				LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
			} `json:"value"`
		} `json:"result"`
		Error *RPCError `json:"error"`
	}

	params := []interface{}{
		map[string]interface{}{"commitment": commitment},
	}

	if err := c.Call(ctx, "getLatestBlockhash", params, &resp); err != nil {
		return "", fmt.Errorf("getLatestBlockhash failed: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("getLatestBlockhash error: %s", resp.Error.Message)
	}
	return resp.Result.Value.Blockhash, nil
}

// SendRawTransaction submits a base64-encoded signed transaction and
// returns its signature.
func (c *Client) SendRawTransaction(ctx context.Context, encodedTx string, skipPreflight bool) (string, error) {
	params := []interface{}{
		encodedTx,
		map[string]interface{}{
			"encoding":      "base64",
			"skipPreflight": skipPreflight,
		},
	}

	var resp struct {
		Result string    `json:"result"`
		Error  *RPCError `json:"error"`
	}
	if err := c.Call(ctx, "sendTransaction", params, &resp); err != nil {
		return "", fmt.Errorf("sendTransaction failed: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("sendTransaction error: code=%d, message=%s",
			resp.Error.Code, resp.Error.Message)
	}
	return resp.Result, nil
}
