package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/pipefilter/internal/client"
	"github.com/GriffinCanCode/pipefilter/internal/fifo"
	"github.com/GriffinCanCode/pipefilter/internal/pipeserver"
)

// syncBuffer is a bytes.Buffer safe to read while run writes to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunRemovesPipesWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	pair := fifo.Pair{
		RequestPath:  filepath.Join(dir, "input_fifo"),
		ResponsePath: filepath.Join(dir, "output_fifo"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := new(syncBuffer)
	code := make(chan int, 1)
	go func() {
		code <- run(ctx, []string{
			"-request", pair.RequestPath,
			"-response", pair.ResponsePath,
			"-interval", "5ms",
		}, out)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), pipeserver.ReadyMessage)
	}, 5*time.Second, 5*time.Millisecond)
	assert.True(t, pair.Exists())

	callCtx, callCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer callCancel()
	got, err := client.Call(callCtx, pair, "hello", "upper")
	require.NoError(t, err)
	assert.Equal(t, "HELLO", got)

	cancel()

	select {
	case c := <-code:
		assert.Equal(t, 0, c)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancellation")
	}

	assert.NoFileExists(t, pair.RequestPath)
	assert.NoFileExists(t, pair.ResponsePath)
	assert.Equal(t, pipeserver.ReadyMessage+"\n"+pipeserver.ShutdownMessage+"\n", out.String())
}

func TestRunCancelledBeforeStartStillCleansUp(t *testing.T) {
	dir := t.TempDir()
	pair := fifo.Pair{
		RequestPath:  filepath.Join(dir, "input_fifo"),
		ResponsePath: filepath.Join(dir, "output_fifo"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code := run(ctx, []string{"-request", pair.RequestPath, "-response", pair.ResponsePath}, new(syncBuffer))
	assert.Equal(t, 0, code)
	assert.NoFileExists(t, pair.RequestPath)
	assert.NoFileExists(t, pair.ResponsePath)
}

func TestRunRejectsBadFlags(t *testing.T) {
	assert.Equal(t, 2, run(context.Background(), []string{"-bogus"}, new(syncBuffer)))
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	same := filepath.Join(dir, "fifo")

	code := run(context.Background(), []string{"-request", same, "-response", same}, new(syncBuffer))
	assert.Equal(t, 1, code)
	assert.NoFileExists(t, same)
}
