package store

import "errors"

var (
	// ErrKeyNotFound indicates the requested key does not exist.
	ErrKeyNotFound = errors.New("store: key not found")

	// ErrEmptyKey indicates an empty key was passed to a store operation.
	ErrEmptyKey = errors.New("store: key must not be empty")

	// ErrNilValue indicates a nil value was passed to Put.
	ErrNilValue = errors.New("store: value must not be nil")
)
