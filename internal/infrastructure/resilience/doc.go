/*
Package resilience provides the circuit breaker that guards pipe opens.

# Overview

When the named pipes disappear or become unusable, every spawned handler
would otherwise fail the same way twice a second. The breaker counts
consecutive open failures and, once tripped, makes handlers fail fast for a
cooldown period. The server hooks OnStateChange to recreate the pipes.

# Usage

	breaker := resilience.New("pipes", resilience.Settings{
		FailureThreshold: 5,
		Cooldown:         5 * time.Second,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("breaker", zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})

	err := breaker.Do(func() error {
		r, err = pipes.OpenRequestReader()
		return err
	})

# States

	Closed --[failures]-> Open --[cooldown]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
