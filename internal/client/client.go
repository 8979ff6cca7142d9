// Package client sends one request to a running pipe server and returns its
// response.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/GriffinCanCode/pipefilter/internal/fifo"
	"github.com/GriffinCanCode/pipefilter/internal/protocol"
)

// ErrNoResponse means the server closed the response pipe without writing,
// which it does for requests it cannot parse.
var ErrNoResponse = errors.New("no response from server")

// Call sends payload with filterName over pair and returns the transformed
// string. Concurrent callers on the same pair take turns on an advisory lock
// file so their messages never interleave.
//
// ctx bounds the lock wait and the pipe opens. When ctx has a deadline it also
// bounds the response read.
func Call(ctx context.Context, pair fifo.Pair, payload, filterName string) (string, error) {
	msg, err := protocol.EncodeRequest(payload, filterName)
	if err != nil {
		return "", err
	}

	lock, err := pair.LockTx(ctx)
	if err != nil {
		return "", fmt.Errorf("acquire transaction lock: %w", err)
	}
	defer lock.Unlock()

	if err := send(ctx, pair, msg); err != nil {
		return "", err
	}
	return receive(ctx, pair)
}

func send(ctx context.Context, pair fifo.Pair, msg []byte) error {
	w, err := openCtx(ctx, pair.OpenRequestWriter)
	if err != nil {
		return fmt.Errorf("open request pipe: %w", err)
	}
	defer w.Close()

	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("write request: %w", err)
	}
	return nil
}

func receive(ctx context.Context, pair fifo.Pair) (string, error) {
	r, err := openCtx(ctx, pair.OpenResponseReader)
	if err != nil {
		return "", fmt.Errorf("open response pipe: %w", err)
	}
	defer r.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if d, ok := r.(interface{ SetReadDeadline(time.Time) error }); ok {
			_ = d.SetReadDeadline(deadline)
		}
	}

	raw, err := bufio.NewReader(r).ReadBytes(0)
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		if len(raw) == 0 {
			return "", ErrNoResponse
		}
	default:
		return "", fmt.Errorf("read response: %w", err)
	}
	return protocol.DecodeResponse(raw), nil
}

// openCtx runs a blocking FIFO open and gives up when ctx is done. An open
// that completes after that is closed straight away.
func openCtx[T io.Closer](ctx context.Context, open func() (T, error)) (T, error) {
	type result struct {
		c   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		c, err := open()
		ch <- result{c, err}
	}()

	select {
	case r := <-ch:
		return r.c, r.err
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.err == nil {
				r.c.Close()
			}
		}()
		var zero T
		return zero, ctx.Err()
	}
}
