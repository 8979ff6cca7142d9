// Package config provides 12-factor configuration for the pipe filter server
// and client.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags in cmd/server can override environment variables.
//
// Configuration Sections:
//   - Pipes: request/response FIFO paths and mode
//   - Server: spawn cadence, registry bound, drain and I/O timeouts
//   - Breaker: circuit breaker around pipe opens
//   - Logging: log level and output format
//   - Admin: optional health/metrics listener
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("serving on %s / %s\n", cfg.Pipes.RequestPath, cfg.Pipes.ResponsePath)
//
// Environment Variables:
//   - PIPE_REQUEST_PATH, PIPE_RESPONSE_PATH, PIPE_PERM
//   - SPAWN_INTERVAL, MAX_PENDING, DRAIN_TIMEOUT, IO_TIMEOUT
//   - BREAKER_FAILURES, BREAKER_COOLDOWN
//   - LOG_LEVEL, LOG_DEV
//   - ADMIN_ADDR
package config
