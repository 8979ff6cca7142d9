package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/pipefilter/internal/filter"
	"github.com/GriffinCanCode/pipefilter/internal/infrastructure/logging"
	"github.com/GriffinCanCode/pipefilter/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/pipefilter/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/pipefilter/internal/protocol"
	"github.com/GriffinCanCode/pipefilter/internal/shared/id"
)

var (
	ErrPipeOpen = errors.New("pipe open failed")
	ErrRead     = errors.New("request read failed")
	ErrWrite    = errors.New("response write failed")
)

// Pipes opens the server's ends of the pipe pair. Both opens may block until
// the peer opens the other end.
type Pipes interface {
	OpenRequestReader() (io.ReadCloser, error)
	OpenResponseWriter() (io.WriteCloser, error)
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

// Options tunes a Handler. Zero values are usable.
type Options struct {
	// IOTimeout bounds the read and the write once both pipes are open.
	// Zero leaves them fully blocking.
	IOTimeout time.Duration
	Breaker   *resilience.Breaker
	Metrics   *monitoring.Metrics
	Logger    *logging.Logger
}

// Result describes one served request.
type Result struct {
	RequestID id.RequestID
	Request   protocol.Request
	Response  string
	Duration  time.Duration
}

// Handler services exactly one request/response cycle per Handle call. All
// handlers sharing a Lock run their pipe transactions one at a time.
type Handler struct {
	pipes   Pipes
	lock    *Lock
	timeout time.Duration
	breaker *resilience.Breaker
	metrics *monitoring.Metrics
	logger  *logging.Logger
}

// New creates a handler over pipes, serialised by lock.
func New(pipes Pipes, lock *Lock, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		pipes:   pipes,
		lock:    lock,
		timeout: opts.IOTimeout,
		breaker: opts.Breaker,
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// transaction holds whatever pipe ends have been opened so far.
type transaction struct {
	r io.ReadCloser
	w io.WriteCloser
}

func (tx *transaction) closeReader(log *logging.Logger) {
	if tx.r == nil {
		return
	}
	if err := tx.r.Close(); err != nil {
		log.Debug("Closing request pipe", zap.Error(err))
	}
	tx.r = nil
}

func (tx *transaction) close(log *logging.Logger) {
	tx.closeReader(log)
	if tx.w != nil {
		if err := tx.w.Close(); err != nil {
			log.Debug("Closing response pipe", zap.Error(err))
		}
		tx.w = nil
	}
}

// Handle waits for the lock, then opens both pipes, reads one request,
// applies its filter and writes the NUL-terminated response. The lock is
// released and opened pipes are closed on every return path.
//
// ctx only interrupts the wait for the lock; blocked opens, reads and writes
// are bounded by IOTimeout alone.
func (h *Handler) Handle(ctx context.Context) (*Result, error) {
	reqID := id.NewRequestID()
	log := h.logger.With(zap.String("request_id", reqID.String()))

	if err := h.lock.Acquire(ctx); err != nil {
		monitoring.NewTimer(h.metrics).Stop(monitoring.OutcomeCancelled, "", 0)
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	timer := monitoring.NewTimer(h.metrics)
	tx := &transaction{}
	defer func() {
		tx.close(log)
		h.lock.Release()
	}()

	if err := h.open(tx); err != nil {
		log.Error("Error opening pipes", zap.Error(err))
		timer.Stop(monitoring.OutcomePipeOpen, "", 0)
		return nil, err
	}

	if h.timeout > 0 {
		deadline := time.Now().Add(h.timeout)
		setDeadline(tx.r, deadline)
		setDeadline(tx.w, deadline)
	}

	raw, err := read(tx.r)
	// The request pipe must be closed before the response is written.
	tx.closeReader(log)
	if err != nil {
		log.Error("Error reading request", zap.Error(err))
		timer.Stop(monitoring.OutcomeRead, "", 0)
		return nil, err
	}
	log.Debug("Received request", zap.Int("bytes", len(raw)))

	req, err := protocol.ParseRequest(raw)
	if err != nil {
		log.Warn("Dropping malformed request", zap.Error(err))
		timer.Stop(monitoring.OutcomeMalformed, "", 0)
		return nil, err
	}

	resp := filter.Apply(req.Filter, req.Payload)

	if _, err := tx.w.Write(protocol.EncodeResponse(resp)); err != nil {
		err = fmt.Errorf("%w: %w", ErrWrite, err)
		log.Error("Error writing response", zap.Error(err))
		timer.Stop(monitoring.OutcomeWrite, req.Filter.String(), 0)
		return nil, err
	}

	elapsed := timer.Stop(monitoring.OutcomeOK, req.Filter.String(), len(req.Payload))
	log.Info("Response sent",
		zap.String("filter", req.FilterName),
		zap.Stringer("resolved", req.Filter),
		zap.Int("bytes", len(req.Payload)),
		zap.Duration("duration", elapsed),
	)

	return &Result{
		RequestID: reqID,
		Request:   req,
		Response:  resp,
		Duration:  elapsed,
	}, nil
}

// open opens the request pipe for reading, then the response pipe for
// writing, through the breaker.
func (h *Handler) open(tx *transaction) error {
	err := h.breaker.Do(func() error {
		r, err := h.pipes.OpenRequestReader()
		if err != nil {
			return err
		}
		tx.r = r

		w, err := h.pipes.OpenResponseWriter()
		if err != nil {
			return err
		}
		tx.w = w
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPipeOpen, err)
	}
	return nil
}

// read performs a single read of up to protocol.BufferSize bytes. A short
// read is accepted as the whole message.
func read(r io.Reader) ([]byte, error) {
	buf := make([]byte, protocol.BufferSize)
	n, err := r.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty request", ErrRead)
	}
	return nil, fmt.Errorf("%w: %w", ErrRead, err)
}

func setDeadline(v any, t time.Time) {
	if d, ok := v.(deadliner); ok {
		_ = d.SetDeadline(t)
	}
}

// Outcome classifies an error returned by Handle into a metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return monitoring.OutcomeOK
	case errors.Is(err, ErrPipeOpen):
		return monitoring.OutcomePipeOpen
	case errors.Is(err, ErrRead):
		return monitoring.OutcomeRead
	case errors.Is(err, protocol.ErrMalformedRequest):
		return monitoring.OutcomeMalformed
	case errors.Is(err, ErrWrite):
		return monitoring.OutcomeWrite
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return monitoring.OutcomeCancelled
	default:
		return "unknown"
	}
}
