package network

import (
	"context"
	"fmt"
	"math"
)

// Compile-time interface check.
var _ ChainService = (*RPCClient)(nil)

// historyPageSize is the number of entries per GetAddressHistory page.
const historyPageSize = 25

// btcToSat converts a BTC float64 amount (as returned by the RPC node) to
// satoshis. It uses math.Round to avoid floating-point truncation issues.
func btcToSat(btc float64) uint64 {
	return uint64(math.Round(btc * 1e8))
}

// listUnspentResult maps the JSON fields returned by the listunspent call.
type listUnspentResult struct {
	TxID          string  `json:"txid"`
	Vout          uint32  `json:"vout"`
	Amount        float64 `json:"amount"`
	ScriptPubKey  string  `json:"scriptPubKey"`
	Address       string  `json:"address"`
	Confirmations int64   `json:"confirmations"`
}

// ListUnspent returns all unspent transaction outputs for the given address.
// It calls `listunspent 0 9999999 ["address"]` and converts BTC amounts to
// satoshis.
func (c *RPCClient) ListUnspent(ctx context.Context, address string) ([]*UTXO, error) {
	params := []interface{}{0, 9999999, []string{address}}
	var results []listUnspentResult
	if err := c.Call(ctx, "listunspent", params, &results); err != nil {
		return nil, err
	}

	utxos := make([]*UTXO, len(results))
	for i, r := range results {
		utxos[i] = &UTXO{
			TxID:          r.TxID,
			Vout:          r.Vout,
			Amount:        btcToSat(r.Amount),
			ScriptPubKey:  r.ScriptPubKey,
			Address:       r.Address,
			Confirmations: r.Confirmations,
		}
	}
	return utxos, nil
}

// estimateSmartFeeResult maps the JSON fields returned by estimatesmartfee.
type estimateSmartFeeResult struct {
	FeeRate *float64 `json:"feerate"` // BTC per kvB; absent when no estimate
	Errors  []string `json:"errors"`
	Blocks  int      `json:"blocks"`
}

// EstimateFeeRate returns a fee rate in satoshis per virtual byte for
// confirmation within targetBlocks blocks. It calls `estimatesmartfee` and
// converts the node's BTC/kvB rate. ErrFeeUnavailable is returned when the
// node has no estimate (e.g. an idle regtest chain).
func (c *RPCClient) EstimateFeeRate(ctx context.Context, targetBlocks int) (float64, error) {
	params := []interface{}{targetBlocks}
	var result estimateSmartFeeResult
	if err := c.Call(ctx, "estimatesmartfee", params, &result); err != nil {
		return 0, err
	}
	if result.FeeRate == nil || *result.FeeRate <= 0 {
		return 0, fmt.Errorf("%w: target %d blocks: %v", ErrFeeUnavailable, targetBlocks, result.Errors)
	}
	// BTC/kvB -> sat/vB.
	return *result.FeeRate * 1e8 / 1000, nil
}

// Broadcast submits a raw transaction hex to the network and returns the
// txid. It calls `sendrawtransaction "hex"`. RPC errors are wrapped with
// ErrBroadcastRejected.
func (c *RPCClient) Broadcast(ctx context.Context, rawTxHex string) (string, error) {
	params := []interface{}{rawTxHex}
	var txid string
	if err := c.Call(ctx, "sendrawtransaction", params, &txid); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBroadcastRejected, err)
	}
	return txid, nil
}

// getRawTransactionResult maps the fields of a verbose getrawtransaction
// response the tracker needs.
type getRawTransactionResult struct {
	TxID          string `json:"txid"`
	Confirmations int64  `json:"confirmations"`
	BlockHash     string `json:"blockhash"`
}

// GetConfirmations returns the confirmation count for a transaction. It
// calls `getrawtransaction "txid" true`; an unconfirmed mempool transaction
// reports zero confirmations.
func (c *RPCClient) GetConfirmations(ctx context.Context, txHash string) (int64, error) {
	params := []interface{}{txHash, true}
	var result getRawTransactionResult
	if err := c.Call(ctx, "getrawtransaction", params, &result); err != nil {
		return 0, err
	}
	return result.Confirmations, nil
}

// GetBalance returns the confirmed and unconfirmed balance of the address,
// computed from its unspent outputs.
func (c *RPCClient) GetBalance(ctx context.Context, address string) (*Balance, error) {
	utxos, err := c.ListUnspent(ctx, address)
	if err != nil {
		return nil, err
	}
	bal := &Balance{}
	for _, u := range utxos {
		if u.Confirmations > 0 {
			bal.Confirmed += u.Amount
		} else {
			bal.Unconfirmed += u.Amount
		}
	}
	return bal, nil
}

// listTransactionsResult maps the JSON fields returned by listtransactions.
type listTransactionsResult struct {
	Address       string  `json:"address"`
	Category      string  `json:"category"`
	Amount        float64 `json:"amount"`
	TxID          string  `json:"txid"`
	Confirmations int64   `json:"confirmations"`
	Time          int64   `json:"time"`
}

// GetAddressHistory returns one page of the address's transaction history.
// It calls `listtransactions "*" count skip true` (watch-only included) and
// filters entries for the address. Pages are numbered from zero.
func (c *RPCClient) GetAddressHistory(ctx context.Context, address string, page int) ([]*HistoryItem, error) {
	if page < 0 {
		page = 0
	}
	params := []interface{}{"*", historyPageSize, page * historyPageSize, true}
	var results []listTransactionsResult
	if err := c.Call(ctx, "listtransactions", params, &results); err != nil {
		return nil, err
	}

	items := make([]*HistoryItem, 0, len(results))
	for _, r := range results {
		if r.Address != address {
			continue
		}
		sats := int64(math.Round(r.Amount * 1e8))
		items = append(items, &HistoryItem{
			TxID:          r.TxID,
			Category:      r.Category,
			Amount:        sats,
			Confirmations: r.Confirmations,
			Time:          r.Time,
		})
	}
	return items, nil
}

// GetChainHeight returns the height of the current chain tip via
// `getblockcount`.
func (c *RPCClient) GetChainHeight(ctx context.Context) (uint64, error) {
	var height uint64
	if err := c.Call(ctx, "getblockcount", nil, &height); err != nil {
		return 0, err
	}
	return height, nil
}

// ImportAddress imports a watch-only address without rescanning, so the
// node's listunspent sees outputs paid to it from now on. Safe to repeat.
func (c *RPCClient) ImportAddress(ctx context.Context, address string) error {
	params := []interface{}{address, "", false}
	return c.Call(ctx, "importaddress", params, nil)
}
