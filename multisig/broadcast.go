package multisig

import (
	"context"
	"fmt"
	"time"
)

// BroadcastTransaction submits a fully signed transaction to the network
// and records its hash. Broadcast is not retried on failure; the record
// stays allsigned and the caller may retry.
func (s *Service) BroadcastTransaction(ctx context.Context, transactionID string) (*StatusView, error) {
	s.txLocks.lock(transactionID)
	defer s.txLocks.unlock(transactionID)

	t, err := s.loadTx(transactionID)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusAllSigned {
		return nil, fmt.Errorf("%w: cannot broadcast %q in state %q, want %q",
			ErrInvalidStateTransition, transactionID, t.Status, StatusAllSigned)
	}

	txHash, err := s.chain.Broadcast(ctx, t.SignedTx)
	if err != nil {
		return nil, fmt.Errorf("%w: broadcast: %w", ErrUpstream, err)
	}

	now := time.Now().UTC()
	t.Status = StatusBroadcasted
	t.TxHash = txHash
	t.BroadcastAt = &now
	if err := s.saveTx(t); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("transaction_id", t.ID).
		Str("tx_hash", txHash).
		Msg("transaction broadcast")
	return t.statusView(), nil
}

// TransactionStatus returns the transaction's status projection. For a
// broadcasted transaction it polls the node for confirmations and advances
// the record to finished on the first confirmation. A failed poll never
// fails the call: the last persisted status is returned unchanged.
func (s *Service) TransactionStatus(ctx context.Context, transactionID string) (*StatusView, error) {
	s.txLocks.lock(transactionID)
	defer s.txLocks.unlock(transactionID)

	t, err := s.loadTx(transactionID)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusBroadcasted {
		return t.statusView(), nil
	}

	confirmations, err := s.chain.GetConfirmations(ctx, t.TxHash)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("transaction_id", t.ID).
			Str("tx_hash", t.TxHash).
			Msg("confirmation poll failed, returning persisted status")
		return t.statusView(), nil
	}
	if confirmations > 0 {
		t.Status = StatusFinished
		if err := s.saveTx(t); err != nil {
			return nil, err
		}
		s.log.Info().
			Str("transaction_id", t.ID).
			Int64("confirmations", confirmations).
			Msg("transaction confirmed")
	}
	return t.statusView(), nil
}
