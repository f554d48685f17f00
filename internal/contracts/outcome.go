package contracts

import (
	"context"
	"errors"
)

// FaultReason classifies why a per-ticker result degraded
type FaultReason string

const (
	FaultNone                   FaultReason = ""
	FaultDataUnavailable        FaultReason = "data_unavailable"
	FaultInsufficientHistory    FaultReason = "insufficient_history"
	FaultUndefinedRatio         FaultReason = "undefined_ratio"
	FaultIncompleteFundamentals FaultReason = "incomplete_fundamentals"
)

// String returns the reason label
func (r FaultReason) String() string {
	if r == FaultNone {
		return "none"
	}
	return string(r)
}

// Sentinel errors
var (
	ErrNotFound      = errors.New("ticker not found")
	ErrTimeout       = errors.New("call timed out")
	ErrNoHistory     = errors.New("no price history")
	ErrEmptyUniverse = errors.New("ticker list is empty")
)

// Outcome is the per-ticker result of one stage.
// Value is always usable; Reason and Err say why it may be degraded.
type Outcome[T any] struct {
	Ticker string
	Value  T
	Reason FaultReason
	Err    error
}

// OK reports whether the outcome carries no fault
func (o Outcome[T]) OK() bool {
	return o.Reason == FaultNone && o.Err == nil
}

// Succeeded builds a clean outcome
func Succeeded[T any](ticker string, v T) Outcome[T] {
	return Outcome[T]{Ticker: ticker, Value: v}
}

// Failed builds a faulted outcome
func Failed[T any](ticker string, v T, reason FaultReason, err error) Outcome[T] {
	return Outcome[T]{Ticker: ticker, Value: v, Reason: reason, Err: err}
}

// IsTimeout reports whether err is a call timeout
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
