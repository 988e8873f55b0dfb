package perrors

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker("generator", WithMaxFailures(2), WithResetTimeout(time.Minute))
	boom := errors.New("boom")

	assert.Error(t, cb.Execute(func() error { return boom }))
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Error(t, cb.Execute(func() error { return boom }))
	assert.Equal(t, CircuitOpen, cb.State())

	err := cb.Execute(func() error {
		t.Fatal("fn must not run while circuit is open")
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreakerRecoversOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker("generator", WithMaxFailures(1), WithResetTimeout(time.Millisecond))
	assert.Error(t, cb.Execute(func() error { return errors.New("boom") }))
	assert.Equal(t, CircuitOpen, cb.State())

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, CircuitHalfOpen, cb.State())

	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, CircuitClosed, cb.State())
}
