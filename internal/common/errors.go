// Package common provides shared utilities used across all features
package common

import (
	"errors"
	"fmt"
)

// Error kinds. Every component wraps lower-level failures with the operation
// name that failed exactly once per boundary crossing, preserving the cause.
var (
	// ErrConfiguration: missing endpoint or key. Fatal, never retried.
	ErrConfiguration = errors.New("configuration error")

	// ErrPoolNotFound: no pool exists for the pair on the venue.
	ErrPoolNotFound = errors.New("pool not found")

	// ErrNoRoute: pair resolution failed while building a trade.
	ErrNoRoute = errors.New("no route")

	// ErrQuoteUnavailable: the simulated quote call reverted or returned no
	// data. The caller may retry with a different size.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrSubmission: the network rejected the transaction after the
	// configured retry bound.
	ErrSubmission = errors.New("transaction submission failed")

	// ErrConfirmationTimeout: no receipt within the poll bound. The
	// transaction may still land; callers must not treat this as failure.
	ErrConfirmationTimeout = errors.New("confirmation timed out")

	// ErrInvalidSlippage: slippage at or above 100%.
	ErrInvalidSlippage = errors.New("invalid slippage")
)

// WrapOp tags err with the failing operation and an error kind, keeping the
// kind matchable via errors.Is. Use once per component boundary.
func WrapOp(op string, kind error, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w: %v", op, kind, err)
}
