// Package network talks to a Bitcoin node over JSON-RPC on behalf of the
// multisig lifecycle core: unspent outputs, fee estimates, broadcast and
// confirmation tracking.
package network

import "context"

// ChainService is the blockchain capability the lifecycle core depends on.
type ChainService interface {
	// ListUnspent returns all unspent transaction outputs for the address.
	ListUnspent(ctx context.Context, address string) ([]*UTXO, error)

	// EstimateFeeRate returns a fee rate in satoshis per virtual byte for
	// confirmation within targetBlocks blocks.
	EstimateFeeRate(ctx context.Context, targetBlocks int) (float64, error)

	// Broadcast submits a raw transaction hex and returns its hash.
	Broadcast(ctx context.Context, rawTxHex string) (string, error)

	// GetConfirmations returns the confirmation count for a transaction,
	// zero while it sits in the mempool.
	GetConfirmations(ctx context.Context, txHash string) (int64, error)

	// GetBalance returns the confirmed and unconfirmed balance of the
	// address.
	GetBalance(ctx context.Context, address string) (*Balance, error)

	// GetAddressHistory returns a page of simplified transaction
	// summaries involving the address. Pages are numbered from zero.
	GetAddressHistory(ctx context.Context, address string, page int) ([]*HistoryItem, error)

	// GetChainHeight returns the height of the current chain tip.
	GetChainHeight(ctx context.Context) (uint64, error)

	// ImportAddress imports a watch-only address into the node's wallet so
	// ListUnspent can find its outputs. Safe to call repeatedly.
	ImportAddress(ctx context.Context, address string) error
}

// UTXO represents an unspent transaction output.
type UTXO struct {
	TxID          string `json:"txid"`
	Vout          uint32 `json:"vout"`
	Amount        uint64 `json:"amount"` // satoshis
	ScriptPubKey  string `json:"script_pubkey"`
	Address       string `json:"address"`
	Confirmations int64  `json:"confirmations"`
}

// Balance holds an address balance split by confirmation state, in satoshis.
type Balance struct {
	Confirmed   uint64 `json:"confirmed"`
	Unconfirmed uint64 `json:"unconfirmed"`
}

// HistoryItem is a simplified entry in an address's transaction history.
type HistoryItem struct {
	TxID          string `json:"txid"`
	Category      string `json:"category"` // "send" or "receive"
	Amount        int64  `json:"amount"`   // satoshis, negative for sends
	Confirmations int64  `json:"confirmations"`
	Time          int64  `json:"time"` // unix seconds
}
