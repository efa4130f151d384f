package txsize

import "errors"

var (
	// ErrUnsupportedClass indicates a script class the estimator cannot size.
	ErrUnsupportedClass = errors.New("txsize: unsupported script class")

	// ErrInvalidParams indicates invalid estimator parameters.
	ErrInvalidParams = errors.New("txsize: invalid parameters")
)
