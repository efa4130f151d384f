package network

import "errors"

var (
	// ErrConnectionFailed indicates the node could not be reached.
	ErrConnectionFailed = errors.New("network: connection to node failed")

	// ErrInvalidResponse indicates the node returned a malformed response.
	ErrInvalidResponse = errors.New("network: invalid response from node")

	// ErrBroadcastRejected indicates the node rejected the raw transaction.
	ErrBroadcastRejected = errors.New("network: broadcast rejected")

	// ErrFeeUnavailable indicates the node could not produce a fee estimate.
	ErrFeeUnavailable = errors.New("network: fee estimate unavailable")

	// ErrTxNotFound indicates the node does not know the transaction.
	ErrTxNotFound = errors.New("network: transaction not found")
)
