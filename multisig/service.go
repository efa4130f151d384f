// Package multisig implements the m-of-n multisig transaction lifecycle:
// wallet registration, unsigned transaction construction, collection of
// partial signatures up to the wallet threshold, finalization, broadcast
// and confirmation tracking.
//
// The key-value store is the single source of truth. Each operation loads
// the record it needs, mutates it, and writes it back; mutations of one
// transaction record are serialized by a per-ID lock.
package multisig

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bitvaultorg/libmultisig-go/network"
	"github.com/bitvaultorg/libmultisig-go/script"
	"github.com/bitvaultorg/libmultisig-go/store"
)

// Key namespaces in the store.
const (
	walletKeyPrefix = "wallet:"
	txKeyPrefix     = "tx:"
)

// defaultFeeTargetBlocks is the confirmation target used for node fee
// estimates when the service is constructed without one.
const defaultFeeTargetBlocks = 6

// Service is the multisig lifecycle engine. All public operations are
// synchronous from the caller's perspective and run to completion,
// suspending only on store or upstream I/O.
type Service struct {
	store     store.Store
	script    script.Engine
	chain     network.ChainService
	feeTarget int
	log       zerolog.Logger
	txLocks   *keyedMutex
}

// Options tunes optional Service behavior.
type Options struct {
	// FeeTargetBlocks is the confirmation target for node fee estimates.
	// Zero means the default of 6 blocks.
	FeeTargetBlocks int

	// Log receives structured operation logs. Zero value disables logging.
	Log zerolog.Logger
}

// New creates a lifecycle engine over the given store, script engine and
// blockchain client.
func New(st store.Store, eng script.Engine, chain network.ChainService, opts Options) *Service {
	feeTarget := opts.FeeTargetBlocks
	if feeTarget <= 0 {
		feeTarget = defaultFeeTargetBlocks
	}
	return &Service{
		store:     st,
		script:    eng,
		chain:     chain,
		feeTarget: feeTarget,
		log:       opts.Log,
		txLocks:   newKeyedMutex(),
	}
}

func walletKey(id string) string { return walletKeyPrefix + id }
func txKey(id string) string     { return txKeyPrefix + id }

// loadWallet reads and decodes a wallet record.
func (s *Service) loadWallet(id string) (*Wallet, error) {
	data, err := s.store.Get(walletKey(id))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrWalletNotFound, id)
		}
		return nil, fmt.Errorf("multisig: load wallet %q: %w", id, err)
	}
	var w Wallet
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("multisig: decode wallet %q: %w", id, err)
	}
	return &w, nil
}

// saveWallet encodes and writes a wallet record.
func (s *Service) saveWallet(w *Wallet) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("multisig: encode wallet %q: %w", w.ID, err)
	}
	return s.store.Put(walletKey(w.ID), data)
}

// loadTx reads and decodes a transaction record.
func (s *Service) loadTx(id string) (*Transaction, error) {
	data, err := s.store.Get(txKey(id))
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrTransactionNotFound, id)
		}
		return nil, fmt.Errorf("multisig: load transaction %q: %w", id, err)
	}
	var t Transaction
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("multisig: decode transaction %q: %w", id, err)
	}
	return &t, nil
}

// saveTx encodes and writes a transaction record.
func (s *Service) saveTx(t *Transaction) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("multisig: encode transaction %q: %w", t.ID, err)
	}
	return s.store.Put(txKey(t.ID), data)
}
