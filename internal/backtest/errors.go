package backtest

import "errors"

var (
	// ErrShapeMismatch reports a signal array that is not aligned with the price index.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrDetectorFailure reports a pattern detector that returned an error or panicked.
	ErrDetectorFailure = errors.New("detector failure")
)
