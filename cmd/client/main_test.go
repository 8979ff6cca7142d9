package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/pipefilter/internal/infrastructure/config"
	"github.com/GriffinCanCode/pipefilter/internal/pipeserver"
)

func TestRunRejectsBadInvocations(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no flags", []string{"client"}, "Usage: client -s <string> -f <filter>"},
		{"missing filter", []string{"client", "-s", "hi"}, "Usage:"},
		{"too many args", []string{"client", "-s", "hi", "-f", "upper", "x"}, "Usage:"},
		{"unknown flag", []string{"client", "-x", "hi"}, "Usage:"},
		{"empty string", []string{"client", "-s", "", "-f", "upper"}, "Error: The string is empty."},
		{"invalid filter", []string{"client", "-s", "hi", "-f", "title"}, "Error: Invalid filter type 'title'."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, 1, run(tt.args, &out))
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestRunAgainstServer(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PIPE_REQUEST_PATH", filepath.Join(dir, "input_fifo"))
	t.Setenv("PIPE_RESPONSE_PATH", filepath.Join(dir, "output_fifo"))

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Server.SpawnInterval = 5 * time.Millisecond

	srv := pipeserver.New(cfg, nil, nil).WithOutput(new(bytes.Buffer))
	require.NoError(t, srv.Start())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
		_ = srv.Shutdown(context.Background())
	}()

	var out bytes.Buffer
	require.Equal(t, 0, run([]string{"client", "-s", "HeLLo World", "-f", "lower"}, &out))
	assert.Equal(t, "Processed string: hello world\n", out.String())
}
