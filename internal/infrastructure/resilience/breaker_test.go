package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOpen = errors.New("open failed")

func fail() error    { return errOpen }
func succeed() error { return nil }

func TestBreakerStateTransitions(t *testing.T) {
	tests := []struct {
		name          string
		settings      Settings
		calls         []bool // true = success, false = failure
		expectedState State
	}{
		{
			name:          "stays closed on successes",
			settings:      Settings{FailureThreshold: 2, Cooldown: time.Minute},
			calls:         []bool{true, true, true},
			expectedState: StateClosed,
		},
		{
			name:          "stays closed below threshold",
			settings:      Settings{FailureThreshold: 3, Cooldown: time.Minute},
			calls:         []bool{false, false, true, false, false},
			expectedState: StateClosed,
		},
		{
			name:          "opens after consecutive failures",
			settings:      Settings{FailureThreshold: 3, Cooldown: time.Minute},
			calls:         []bool{false, false, false},
			expectedState: StateOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breaker := New("test", tt.settings)

			for _, ok := range tt.calls {
				fn := fail
				if ok {
					fn = succeed
				}
				_ = breaker.Do(fn)
			}

			assert.Equal(t, tt.expectedState, breaker.State())
		})
	}
}

func TestBreakerCounts(t *testing.T) {
	breaker := New("test", Settings{FailureThreshold: 5})

	require.NoError(t, breaker.Do(succeed))
	counts := breaker.Counts()
	assert.Equal(t, uint32(1), counts.Calls)
	assert.Equal(t, uint32(1), counts.TotalSuccesses)
	assert.Equal(t, uint32(1), counts.ConsecutiveSuccesses)

	assert.ErrorIs(t, breaker.Do(fail), errOpen)
	counts = breaker.Counts()
	assert.Equal(t, uint32(2), counts.Calls)
	assert.Equal(t, uint32(1), counts.TotalFailures)
	assert.Equal(t, uint32(1), counts.ConsecutiveFailures)
	assert.Equal(t, uint32(0), counts.ConsecutiveSuccesses)
}

func TestBreakerFailsFastWhenOpen(t *testing.T) {
	breaker := New("test", Settings{FailureThreshold: 2, Cooldown: time.Minute})
	_ = breaker.Do(fail)
	_ = breaker.Do(fail)

	called := false
	err := breaker.Do(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreakerRecovers(t *testing.T) {
	breaker := New("test", Settings{FailureThreshold: 1, Cooldown: 20 * time.Millisecond})
	_ = breaker.Do(fail)
	require.Equal(t, StateOpen, breaker.State())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, breaker.State())

	require.NoError(t, breaker.Do(succeed))
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	breaker := New("test", Settings{FailureThreshold: 1, Cooldown: 20 * time.Millisecond})
	_ = breaker.Do(fail)

	time.Sleep(30 * time.Millisecond)
	assert.ErrorIs(t, breaker.Do(fail), errOpen)
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreakerCallbacks(t *testing.T) {
	var (
		mu          sync.Mutex
		transitions []string
	)

	breaker := New("pipes", Settings{
		FailureThreshold: 2,
		Cooldown:         10 * time.Millisecond,
		OnStateChange: func(name string, from State, to State) {
			mu.Lock()
			defer mu.Unlock()
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	})

	_ = breaker.Do(fail)
	_ = breaker.Do(fail)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, breaker.State())

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, transitions, "pipes:closed->open")
	assert.Contains(t, transitions, "pipes:open->half-open")
}

func TestNilBreakerRunsCall(t *testing.T) {
	var breaker *Breaker
	assert.ErrorIs(t, breaker.Do(fail), errOpen)
	assert.NoError(t, breaker.Do(succeed))
}

func TestBreakerRepanics(t *testing.T) {
	breaker := New("test", Settings{FailureThreshold: 1, Cooldown: time.Minute})

	assert.Panics(t, func() {
		_ = breaker.Do(func() error { panic("boom") })
	})
	assert.Equal(t, StateOpen, breaker.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}
