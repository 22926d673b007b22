package apifuzz

import (
	"github.com/talav/apifuzz/debug"
	"github.com/talav/apifuzz/internal/model"
)

// Result is the outcome of a fuzzing run: one CallResult slice per
// collected operation, in GETs-then-POSTs document order, plus any
// non-fatal warnings raised while collecting or executing operations.
type Result struct {
	Operations [][]model.CallResult

	// Warnings contains informational, non-fatal issues.
	// These are advisory only and do not indicate failure.
	Warnings debug.Warnings
}
