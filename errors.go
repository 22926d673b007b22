package apifuzz

import "errors"

// Configuration errors (returned by [Fuzzer.Run]).
var (
	// ErrNoSpec indicates Run was called with a nil Spec.
	ErrNoSpec = errors.New("apifuzz: spec is required")
)
