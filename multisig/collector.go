package multisig

import (
	"context"
	"fmt"
)

// SubmitSignature applies one co-signer's batch of per-input signatures to
// a pending transaction: the i-th signature to the i-th input. The batch is
// atomic -- if any signature fails script-engine validation, nothing from
// the submission is recorded and the persisted record is untouched.
//
// When the distinct-signer count reaches the wallet threshold the
// transaction transitions to allsigned and the artifact is finalized into
// the broadcast-ready raw transaction. The threshold check guarantees
// finalization runs exactly once per transaction.
func (s *Service) SubmitSignature(ctx context.Context, transactionID string, sub SignatureSubmission) (*SubmitResult, error) {
	if sub.PublicKey == "" {
		return nil, fmt.Errorf("%w: empty signer public key", ErrInvalidParameter)
	}

	s.txLocks.lock(transactionID)
	defer s.txLocks.unlock(transactionID)

	t, err := s.loadTx(transactionID)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusPending {
		return nil, fmt.Errorf("%w: cannot sign %q in state %q, want %q",
			ErrInvalidStateTransition, transactionID, t.Status, StatusPending)
	}

	// Defensive: referential integrity should make this impossible.
	if _, err := s.loadWallet(t.WalletID); err != nil {
		return nil, err
	}

	if _, signed := t.Signatures[sub.PublicKey]; signed {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSigner, sub.PublicKey)
	}
	if len(sub.Signatures) != t.InputCount {
		return nil, fmt.Errorf("%w: got %d signatures for %d inputs",
			ErrInvalidParameter, len(sub.Signatures), t.InputCount)
	}

	artifact, err := s.script.Deserialize(t.PSBT)
	if err != nil {
		return nil, fmt.Errorf("multisig: decode artifact for %q: %w", transactionID, err)
	}

	// The artifact only exists in memory here; a failure part way through
	// discards it without persisting, so no partial application survives.
	for i, sig := range sub.Signatures {
		if err := s.script.ApplySignature(artifact, i, sub.PublicKey, sig); err != nil {
			return nil, fmt.Errorf("%w: input %d: %w", ErrSignatureRejected, i, err)
		}
	}

	t.Signatures[sub.PublicKey] = sub.Signatures
	t.SignaturesReceived = len(t.Signatures)

	if t.SignaturesReceived >= t.RequiredSignatures {
		rawTx, err := s.script.FinalizeAndExtract(artifact)
		if err != nil {
			return nil, fmt.Errorf("multisig: finalize %q: %w", transactionID, err)
		}
		t.Status = StatusAllSigned
		t.SignedTx = rawTx
	}

	psbtBytes, err := s.script.Serialize(artifact)
	if err != nil {
		return nil, fmt.Errorf("multisig: serialize artifact for %q: %w", transactionID, err)
	}
	t.PSBT = psbtBytes

	if err := s.saveTx(t); err != nil {
		return nil, err
	}

	remaining := t.RequiredSignatures - t.SignaturesReceived
	if remaining < 0 {
		remaining = 0
	}
	s.log.Info().
		Str("transaction_id", t.ID).
		Str("signer", sub.PublicKey).
		Int("received", t.SignaturesReceived).
		Int("required", t.RequiredSignatures).
		Str("status", string(t.Status)).
		Msg("signature applied")

	return &SubmitResult{
		TransactionID:      t.ID,
		Status:             t.Status,
		SignaturesReceived: t.SignaturesReceived,
		Remaining:          remaining,
	}, nil
}
