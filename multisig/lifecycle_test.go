package multisig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFullLifecycle walks a 2-of-3 spend through the whole state machine:
// create wallet, initiate, collect two signatures (third signer first),
// finalize, broadcast, confirm.
func TestFullLifecycle(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	w, err := f.svc.CreateWallet(ctx, 2, 3, "ops treasury", f.participants)
	require.NoError(t, err)

	summary, err := f.svc.InitiateTransaction(ctx, w.ID, InitiateRequest{
		Recipient: newRecipientAddress(t),
		Amount:    500,
		FeeRate:   1.5,
		Note:      "supplier invoice",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, summary.Status)

	// Signer #3 first.
	res, err := f.svc.SubmitSignature(ctx, summary.ID, f.signAll(t, summary.ID, f.keys[2]))
	require.NoError(t, err)
	assert.Equal(t, 1, res.SignaturesReceived)
	assert.Equal(t, StatusPending, res.Status)

	// Signer #2 reaches the threshold.
	res, err = f.svc.SubmitSignature(ctx, summary.ID, f.signAll(t, summary.ID, f.keys[1]))
	require.NoError(t, err)
	assert.Equal(t, 2, res.SignaturesReceived)
	assert.Equal(t, StatusAllSigned, res.Status)

	stored, err := f.svc.loadTx(summary.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.SignedTx)

	f.chain.BroadcastFn = func(ctx context.Context, rawTxHex string) (string, error) {
		assert.Equal(t, stored.SignedTx, rawTxHex)
		return "feedface", nil
	}
	view, err := f.svc.BroadcastTransaction(ctx, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusBroadcasted, view.Status)
	assert.Equal(t, "feedface", view.TxHash)

	// The broadcast transaction no longer shows up as pending.
	pending, err := f.svc.PendingTransactions(ctx, w.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)

	f.chain.GetConfirmationsFn = func(ctx context.Context, txHash string) (int64, error) {
		return 2, nil
	}
	view, err = f.svc.TransactionStatus(ctx, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, view.Status)
}

// TestCancelOnlyFromPending exercises the two cancellation edges: pending
// transactions cancel, allsigned ones do not.
func TestCancelOnlyFromPending(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	w := f.createWallet(t, 2)

	summary := f.initiate(t, w.ID)
	_, err := f.svc.SubmitSignature(ctx, summary.ID, f.signAll(t, summary.ID, f.keys[0]))
	require.NoError(t, err)
	_, err = f.svc.SubmitSignature(ctx, summary.ID, f.signAll(t, summary.ID, f.keys[1]))
	require.NoError(t, err)

	// allsigned: cancellation is forbidden.
	_, err = f.svc.CancelTransaction(ctx, summary.ID)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
}
