package contracts

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	ok := Succeeded("PETR4.SA", 1.5)
	assert.True(t, ok.OK())
	assert.Equal(t, 1.5, ok.Value)

	failed := Failed("PETR4.SA", 0.0, FaultDataUnavailable, ErrNotFound)
	assert.False(t, failed.OK())
	assert.Equal(t, FaultDataUnavailable, failed.Reason)
	assert.ErrorIs(t, failed.Err, ErrNotFound)

	reasonOnly := Failed("VALE3.SA", "", FaultInsufficientHistory, nil)
	assert.False(t, reasonOnly.OK())
}

func TestFaultReason_String(t *testing.T) {
	assert.Equal(t, "none", FaultNone.String())
	assert.Equal(t, "undefined_ratio", FaultUndefinedRatio.String())
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, IsTimeout(fmt.Errorf("snapshot: %w", ErrTimeout)))
	assert.True(t, IsTimeout(fmt.Errorf("chart: %w", context.DeadlineExceeded)))
	assert.False(t, IsTimeout(errors.New("boom")))
	assert.False(t, IsTimeout(nil))
}
