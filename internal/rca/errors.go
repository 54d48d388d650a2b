package rca

import "errors"

var (
	// ErrNoTracebacks means a report fetched fine but contained no
	// recognizable failure rows. Callers surface this as not-found rather
	// than an empty success.
	ErrNoTracebacks = errors.New("no tracebacks found in report")

	// ErrInvalidSettings marks a request whose model or profile selection
	// does not match what the engine currently serves.
	ErrInvalidSettings = errors.New("invalid model settings")
)
