package httpx

import (
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCircuitBreaker(t *testing.T) {
	tests := []struct {
		name        string
		breakerName string
		timeout     time.Duration
		maxFailures uint32
	}{
		{name: "valid breaker", breakerName: "classifier", timeout: 30 * time.Second, maxFailures: 3},
		{name: "zero timeout", breakerName: "vision", timeout: 0, maxFailures: 1},
		{name: "zero max failures", breakerName: "zero", timeout: 10 * time.Second, maxFailures: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker := NewCircuitBreaker(tt.breakerName, tt.timeout, tt.maxFailures, nil)

			require.NotNil(t, breaker)
			wrapper, ok := breaker.(*circuitBreakerWrapper)
			require.True(t, ok)
			assert.Equal(t, tt.breakerName, wrapper.breaker.Name())
		})
	}
}

func TestCircuitBreaker_ExecuteSuccess(t *testing.T) {
	breaker := NewCircuitBreaker("success", 30*time.Second, 3, nil)

	called := false
	err := breaker.Execute(func() error {
		called = true
		return nil
	})

	assert.NoError(t, err)
	assert.True(t, called)
}

func TestCircuitBreaker_ExecuteWrapsError(t *testing.T) {
	breaker := NewCircuitBreaker("failing", 30*time.Second, 3, nil)
	boom := errors.New("upstream down")

	err := breaker.Execute(func() error { return boom })

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "breaker (failing)")
	assert.False(t, IsOpen(err))
}

func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	logger, hook := test.NewNullLogger()
	breaker := NewCircuitBreaker("tripping", time.Minute, 2, logger)
	boom := errors.New("timeout")

	for i := 0; i < 2; i++ {
		_ = breaker.Execute(func() error { return boom }) //nolint:errcheck
	}

	called := false
	err := breaker.Execute(func() error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called)
	assert.True(t, IsOpen(err))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "open", entry.Data["to"])
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	breaker := NewCircuitBreaker("recovering", 20*time.Millisecond, 1, nil)

	_ = breaker.Execute(func() error { return errors.New("fail") }) //nolint:errcheck
	assert.True(t, IsOpen(breaker.Execute(func() error { return nil })))

	time.Sleep(40 * time.Millisecond)

	assert.NoError(t, breaker.Execute(func() error { return nil }))
	assert.NoError(t, breaker.Execute(func() error { return nil }))
}

func TestCircuitBreaker_RecoversPanic(t *testing.T) {
	breaker := NewCircuitBreaker("panicky", time.Minute, 5, nil)

	err := breaker.Execute(func() error {
		panic("nil map")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic recovered: nil map")
}
