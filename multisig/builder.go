package multisig

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/bitvaultorg/libmultisig-go/script"
	"github.com/bitvaultorg/libmultisig-go/store"
	"github.com/bitvaultorg/libmultisig-go/txsize"
)

// fallbackFeeRate is the sat/vB rate used when the request carries no fee
// rate and the node cannot produce an estimate.
const fallbackFeeRate = 1.0

// InitiateTransaction assembles an unsigned multisig spend from the
// wallet's unspent outputs and persists it in state pending. Every fetched
// unspent output becomes an input; a change output back to the wallet
// address is added when the remainder after amount and fee is positive.
//
// The transaction ID is a deterministic double-SHA256 of the serialized
// unsigned artifact, so a structurally identical resubmission maps to the
// same ID and is rejected with ErrDuplicateTransaction.
func (s *Service) InitiateTransaction(ctx context.Context, walletID string, req InitiateRequest) (*TxSummary, error) {
	if req.Recipient == "" {
		return nil, fmt.Errorf("%w: empty recipient address", ErrInvalidParameter)
	}
	if req.Amount == 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidParameter)
	}
	if req.FeeRate < 0 {
		return nil, fmt.Errorf("%w: fee rate %v must be positive", ErrInvalidParameter, req.FeeRate)
	}

	w, err := s.loadWallet(walletID)
	if err != nil {
		return nil, err
	}

	recipientClass, err := s.script.ClassifyAddress(req.Recipient)
	if err != nil {
		return nil, fmt.Errorf("%w: recipient: %w", ErrInvalidParameter, err)
	}

	utxos, err := s.chain.ListUnspent(ctx, w.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: listing unspent outputs: %w", ErrUpstream, err)
	}
	if len(utxos) == 0 {
		return nil, fmt.Errorf("%w: address %s", ErrNoFunds, w.Address)
	}

	feeRate := req.FeeRate
	if feeRate == 0 {
		feeRate = s.estimateFeeRate(ctx)
	}

	artifact, err := s.script.NewUnsigned(w.M, w.pubKeys())
	if err != nil {
		return nil, fmt.Errorf("multisig: new unsigned artifact: %w", err)
	}
	var totalInput uint64
	for _, u := range utxos {
		in := script.Utxo{TxID: u.TxID, Vout: u.Vout, Amount: u.Amount}
		if err := s.script.AddInput(artifact, in); err != nil {
			return nil, fmt.Errorf("multisig: add input %s:%d: %w", u.TxID, u.Vout, err)
		}
		totalInput += u.Amount
	}

	// Virtual size covers all inputs, the recipient output and the
	// provisional change output the estimator always accounts for.
	vsize, err := txsize.Estimate(w.M, w.N,
		map[txsize.ScriptClass]int{txsize.P2WSH: len(utxos)}, nil, recipientClass)
	if err != nil {
		return nil, fmt.Errorf("multisig: size estimate: %w", err)
	}
	fee := uint64(math.Ceil(float64(vsize) * feeRate))

	if totalInput < req.Amount+fee {
		return nil, fmt.Errorf("%w: have %d sat, need %d sat (%d + %d fee)",
			ErrInsufficientFunds, totalInput, req.Amount+fee, req.Amount, fee)
	}

	if err := s.script.AddOutput(artifact, req.Recipient, req.Amount); err != nil {
		return nil, fmt.Errorf("%w: recipient output: %w", ErrInvalidParameter, err)
	}
	if change := totalInput - req.Amount - fee; change > 0 {
		if err := s.script.AddOutput(artifact, w.Address, change); err != nil {
			return nil, fmt.Errorf("multisig: change output: %w", err)
		}
	}

	psbtBytes, err := s.script.Serialize(artifact)
	if err != nil {
		return nil, fmt.Errorf("multisig: serialize artifact: %w", err)
	}
	txID := hex.EncodeToString(chainhash.DoubleHashB(psbtBytes))

	if _, err := s.store.Get(txKey(txID)); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTransaction, txID)
	} else if !errors.Is(err, store.ErrKeyNotFound) {
		return nil, fmt.Errorf("multisig: check transaction %q: %w", txID, err)
	}

	t := &Transaction{
		ID:                 txID,
		WalletID:           w.ID,
		Recipient:          req.Recipient,
		Amount:             req.Amount,
		Note:               req.Note,
		Status:             StatusPending,
		PSBT:               psbtBytes,
		InputCount:         len(utxos),
		RequiredSignatures: w.M,
		Signatures:         make(map[string][]string),
		SignaturesReceived: 0,
		InitiatedAt:        time.Now().UTC(),
	}
	if err := s.saveTx(t); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("transaction_id", t.ID).
		Str("wallet_id", w.ID).
		Uint64("amount", req.Amount).
		Uint64("fee", fee).
		Int("inputs", t.InputCount).
		Msg("transaction initiated")
	return t.summary(), nil
}

// estimateFeeRate asks the node for a rate at the configured confirmation
// target, falling back to the floor rate when no estimate is available.
func (s *Service) estimateFeeRate(ctx context.Context) float64 {
	rate, err := s.chain.EstimateFeeRate(ctx, s.feeTarget)
	if err != nil || rate <= 0 {
		s.log.Debug().Err(err).Msg("fee estimate unavailable, using fallback rate")
		return fallbackFeeRate
	}
	return rate
}

// UnsignedDigests returns the ordered per-input digests a co-signer must
// sign for the transaction. Read-only.
func (s *Service) UnsignedDigests(ctx context.Context, transactionID string) ([]string, error) {
	t, err := s.loadTx(transactionID)
	if err != nil {
		return nil, err
	}
	artifact, err := s.script.Deserialize(t.PSBT)
	if err != nil {
		return nil, fmt.Errorf("multisig: decode artifact for %q: %w", transactionID, err)
	}

	digests := make([]string, t.InputCount)
	for i := 0; i < t.InputCount; i++ {
		digest, err := s.script.SignableDigest(artifact, i)
		if err != nil {
			return nil, fmt.Errorf("multisig: digest for input %d: %w", i, err)
		}
		digests[i] = hex.EncodeToString(digest)
	}
	return digests, nil
}

// PendingTransactions returns summaries of the wallet's transactions still
// awaiting signatures, in no particular order.
func (s *Service) PendingTransactions(ctx context.Context, walletID string) ([]*TxSummary, error) {
	if _, err := s.loadWallet(walletID); err != nil {
		return nil, err
	}

	var pending []*TxSummary
	err := s.store.Iterate(txKeyPrefix, func(key string, value []byte) error {
		var t Transaction
		if err := json.Unmarshal(value, &t); err != nil {
			return fmt.Errorf("multisig: decode transaction at %q: %w", key, err)
		}
		if t.WalletID == walletID && t.Status == StatusPending {
			pending = append(pending, t.summary())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pending, nil
}

// CancelTransaction moves a pending transaction to the terminal cancelled
// state. Nothing mutates a cancelled transaction afterwards.
func (s *Service) CancelTransaction(ctx context.Context, transactionID string) (*StatusView, error) {
	s.txLocks.lock(transactionID)
	defer s.txLocks.unlock(transactionID)

	t, err := s.loadTx(transactionID)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusPending {
		return nil, fmt.Errorf("%w: cannot cancel %q in state %q, want %q",
			ErrInvalidStateTransition, transactionID, t.Status, StatusPending)
	}

	t.Status = StatusCancelled
	if err := s.saveTx(t); err != nil {
		return nil, err
	}

	s.log.Info().Str("transaction_id", t.ID).Msg("transaction cancelled")
	return t.statusView(), nil
}
