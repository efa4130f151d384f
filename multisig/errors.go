package multisig

import "errors"

var (
	// ErrInvalidParameter indicates a request field failed validation.
	ErrInvalidParameter = errors.New("multisig: invalid parameter")

	// ErrInvalidThreshold indicates m and n do not satisfy 0 < m <= n.
	ErrInvalidThreshold = errors.New("multisig: invalid signature threshold")

	// ErrParticipantCount indicates the participant list length is not n.
	ErrParticipantCount = errors.New("multisig: participant count mismatch")

	// ErrDuplicateParticipant indicates two participants share a public key.
	ErrDuplicateParticipant = errors.New("multisig: duplicate participant public key")

	// ErrWalletNotFound indicates the wallet does not exist.
	ErrWalletNotFound = errors.New("multisig: wallet not found")

	// ErrTransactionNotFound indicates the transaction does not exist.
	ErrTransactionNotFound = errors.New("multisig: transaction not found")

	// ErrInvalidStateTransition indicates the operation is not permitted
	// in the transaction's current state.
	ErrInvalidStateTransition = errors.New("multisig: invalid state transition")

	// ErrDuplicateSigner indicates the public key already contributed
	// signatures to the transaction.
	ErrDuplicateSigner = errors.New("multisig: signer already submitted signatures")

	// ErrDuplicateTransaction indicates a structurally identical pending
	// transaction already exists (same content-derived ID).
	ErrDuplicateTransaction = errors.New("multisig: identical transaction already exists")

	// ErrNoFunds indicates the wallet address has no unspent outputs.
	ErrNoFunds = errors.New("multisig: no funds available")

	// ErrInsufficientFunds indicates the unspent outputs cannot cover the
	// amount plus the estimated fee.
	ErrInsufficientFunds = errors.New("multisig: insufficient funds")

	// ErrSignatureRejected indicates the script engine refused a submitted
	// signature; nothing from the submission was applied.
	ErrSignatureRejected = errors.New("multisig: signature rejected")

	// ErrUpstream indicates the blockchain client failed.
	ErrUpstream = errors.New("multisig: upstream node unavailable")
)
