// Package main is the entry point for the pipe filter server.
//
// The server creates two named pipes and answers "<string>:<filter>"
// requests written to the request pipe with the filtered string on the
// response pipe. Supported filters are upper, lower and null; any other name
// returns the string unchanged.
//
// Configuration:
//   - Environment variables (PIPE_REQUEST_PATH, SPAWN_INTERVAL, ...)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Defaults: ./input_fifo and ./output_fifo
//	./server
//
//	# Development logging plus an admin endpoint
//	./server -dev -admin 127.0.0.1:9090
//
// Signals:
//   - SIGINT, SIGTERM: remove the pipes and exit
package main
