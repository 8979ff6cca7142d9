// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Logs go to stderr by default so that the server's own status lines on
// stdout stay readable.
//
// Example Usage:
//
//	logger, err := logging.New(logging.DefaultConfig())
//	logger.Info("Pipes ready", zap.String("request", "input_fifo"))
//	logger.Named("handler").Warn("Dropped request", zap.Error(err))
package logging
