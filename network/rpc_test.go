package network

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rpcHandler builds an httptest handler answering every method from the
// given result table, echoing the request ID back.
func rpcHandler(t *testing.T, results map[string]interface{}) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, ok := results[req.Method]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"id":     req.ID,
				"result": nil,
				"error":  map[string]interface{}{"code": -32601, "message": "Method not found"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     req.ID,
			"result": result,
			"error":  nil,
		})
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *RPCClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRPCClient(RPCConfig{URL: srv.URL, User: "msig", Password: "msig"})
}

func TestCallBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotUser, gotPass, _ = r.BasicAuth()
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": req.ID, "result": "ok", "error": nil,
		})
	})

	var result string
	require.NoError(t, c.Call(context.Background(), "ping", nil, &result))
	assert.Equal(t, "ok", result)
	assert.Equal(t, "msig", gotUser)
	assert.Equal(t, "msig", gotPass)
}

func TestCallRPCError(t *testing.T) {
	// Bitcoin Core style: non-2xx status with a JSON error body.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     req.ID,
			"result": nil,
			"error":  map[string]interface{}{"code": -25, "message": "bad-txns-inputs-missingorspent"},
		})
	})

	err := c.Call(context.Background(), "sendrawtransaction", []interface{}{"00"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-25")
	assert.Contains(t, err.Error(), "bad-txns-inputs-missingorspent")
	assert.NotErrorIs(t, err, ErrConnectionFailed)
}

func TestCallConnectionFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // refuse connections
	c := NewRPCClient(RPCConfig{URL: srv.URL})

	err := c.Call(context.Background(), "getblockcount", nil, nil)
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestCallInvalidResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})

	err := c.Call(context.Background(), "getblockcount", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestCallIDMismatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": 9999, "result": "ok", "error": nil,
		})
	})

	err := c.Call(context.Background(), "getblockcount", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Contains(t, err.Error(), "ID mismatch")
}

func TestListUnspent(t *testing.T) {
	c := newTestClient(t, rpcHandler(t, map[string]interface{}{
		"listunspent": []map[string]interface{}{
			{
				"txid":          "aa11",
				"vout":          1,
				"amount":        0.001, // BTC
				"scriptPubKey":  "0020ab",
				"address":       "bcrt1qexample",
				"confirmations": 6,
			},
		},
	}))

	utxos, err := c.ListUnspent(context.Background(), "bcrt1qexample")
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	assert.Equal(t, "aa11", utxos[0].TxID)
	assert.Equal(t, uint32(1), utxos[0].Vout)
	assert.Equal(t, uint64(100_000), utxos[0].Amount)
	assert.Equal(t, int64(6), utxos[0].Confirmations)
}

func TestEstimateFeeRate(t *testing.T) {
	// 0.00002 BTC/kvB is 2 sat/vB.
	c := newTestClient(t, rpcHandler(t, map[string]interface{}{
		"estimatesmartfee": map[string]interface{}{"feerate": 0.00002, "blocks": 6},
	}))

	rate, err := c.EstimateFeeRate(context.Background(), 6)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, rate, 1e-9)
}

func TestEstimateFeeRateUnavailable(t *testing.T) {
	// An idle regtest node has no estimate: no feerate field, only errors.
	c := newTestClient(t, rpcHandler(t, map[string]interface{}{
		"estimatesmartfee": map[string]interface{}{
			"errors": []string{"Insufficient data or no feerate found"},
			"blocks": 6,
		},
	}))

	_, err := c.EstimateFeeRate(context.Background(), 6)
	assert.ErrorIs(t, err, ErrFeeUnavailable)
}

func TestBroadcast(t *testing.T) {
	c := newTestClient(t, rpcHandler(t, map[string]interface{}{
		"sendrawtransaction": "deadbeef",
	}))

	txid, err := c.Broadcast(context.Background(), "0200...")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", txid)
}

func TestBroadcastRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     req.ID,
			"result": nil,
			"error":  map[string]interface{}{"code": -26, "message": "min relay fee not met"},
		})
	})

	_, err := c.Broadcast(context.Background(), "0200...")
	assert.ErrorIs(t, err, ErrBroadcastRejected)
	assert.Contains(t, err.Error(), "min relay fee not met")
}

func TestGetConfirmations(t *testing.T) {
	c := newTestClient(t, rpcHandler(t, map[string]interface{}{
		"getrawtransaction": map[string]interface{}{
			"txid":          "aa11",
			"confirmations": 3,
			"blockhash":     "00ab",
		},
	}))

	conf, err := c.GetConfirmations(context.Background(), "aa11")
	require.NoError(t, err)
	assert.Equal(t, int64(3), conf)
}

func TestGetBalance(t *testing.T) {
	c := newTestClient(t, rpcHandler(t, map[string]interface{}{
		"listunspent": []map[string]interface{}{
			{"txid": "aa", "vout": 0, "amount": 0.5, "confirmations": 10},
			{"txid": "bb", "vout": 0, "amount": 0.25, "confirmations": 0},
		},
	}))

	bal, err := c.GetBalance(context.Background(), "bcrt1qexample")
	require.NoError(t, err)
	assert.Equal(t, uint64(50_000_000), bal.Confirmed)
	assert.Equal(t, uint64(25_000_000), bal.Unconfirmed)
}

func TestGetAddressHistory(t *testing.T) {
	c := newTestClient(t, rpcHandler(t, map[string]interface{}{
		"listtransactions": []map[string]interface{}{
			{"address": "bcrt1qwallet", "category": "receive", "amount": 0.001, "txid": "aa", "confirmations": 2, "time": 1700000000},
			{"address": "bcrt1qother", "category": "receive", "amount": 0.5, "txid": "bb", "confirmations": 1, "time": 1700000001},
			{"address": "bcrt1qwallet", "category": "send", "amount": -0.0005, "txid": "cc", "confirmations": 1, "time": 1700000002},
		},
	}))

	items, err := c.GetAddressHistory(context.Background(), "bcrt1qwallet", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "aa", items[0].TxID)
	assert.Equal(t, int64(100_000), items[0].Amount)
	assert.Equal(t, "send", items[1].Category)
	assert.Equal(t, int64(-50_000), items[1].Amount)
}

func TestGetChainHeight(t *testing.T) {
	c := newTestClient(t, rpcHandler(t, map[string]interface{}{
		"getblockcount": 812345,
	}))

	height, err := c.GetChainHeight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(812345), height)
}

func TestImportAddress(t *testing.T) {
	var gotParams []interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotParams = req.Params
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": req.ID, "result": nil, "error": nil,
		})
	})

	require.NoError(t, c.ImportAddress(context.Background(), "bcrt1qwatch"))
	require.Len(t, gotParams, 3)
	assert.Equal(t, "bcrt1qwatch", gotParams[0])
	assert.Equal(t, false, gotParams[2]) // no rescan
}

func TestResolveConfig(t *testing.T) {
	// Preset only.
	cfg, err := ResolveConfig(nil, nil, "regtest")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:18443", cfg.URL)
	assert.Equal(t, "msig", cfg.User)
	assert.Equal(t, "regtest", cfg.Network)

	// Environment overrides the preset.
	cfg, err = ResolveConfig(nil, map[string]string{"MSIG_RPC_URL": "http://node:18443"}, "regtest")
	require.NoError(t, err)
	assert.Equal(t, "http://node:18443", cfg.URL)
	assert.Equal(t, "msig", cfg.User)

	// Explicit overrides everything.
	cfg, err = ResolveConfig(
		&RPCConfig{URL: "http://explicit:8332", User: "alice"},
		map[string]string{"MSIG_RPC_URL": "http://node:18443", "MSIG_RPC_PASS": "hunter2"},
		"regtest",
	)
	require.NoError(t, err)
	assert.Equal(t, "http://explicit:8332", cfg.URL)
	assert.Equal(t, "alice", cfg.User)
	assert.Equal(t, "hunter2", cfg.Password)

	// Mainnet has no preset: explicit URL required.
	_, err = ResolveConfig(nil, nil, "mainnet")
	assert.Error(t, err)

	cfg, err = ResolveConfig(&RPCConfig{URL: "http://mainnet-node:8332", User: "u", Password: "p"}, nil, "mainnet")
	require.NoError(t, err)
	assert.Equal(t, "http://mainnet-node:8332", cfg.URL)
}
