package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errDown = errors.New("down")

func fail(context.Context) error { return errDown }
func ok(context.Context) error   { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	var transitions []State
	cb := CareAPIBreaker(2, time.Hour, nil, func(_ string, _, to State) {
		transitions = append(transitions, to)
	})

	ctx := context.Background()
	assert.ErrorIs(t, cb.Execute(ctx, fail), errDown)
	assert.True(t, cb.IsClosed())
	assert.ErrorIs(t, cb.Execute(ctx, fail), errDown)
	assert.True(t, cb.IsOpen())

	assert.ErrorIs(t, cb.Execute(ctx, ok), ErrCircuitOpen)
	assert.Equal(t, []State{StateOpen}, transitions)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := CareAPIBreaker(1, time.Millisecond, nil, nil)
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(5 * time.Millisecond)
	assert.NoError(t, cb.Execute(ctx, ok))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_IgnoresNonFailures(t *testing.T) {
	cb := CareAPIBreaker(1, time.Hour, func(err error) bool { return !errors.Is(err, errDown) }, nil)

	_ = cb.Execute(context.Background(), fail)
	assert.True(t, cb.IsClosed())
	assert.Equal(t, 1, cb.Counts().TotalSuccesses)
}
