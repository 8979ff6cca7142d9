package pipeserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/pipefilter/internal/fifo"
	"github.com/GriffinCanCode/pipefilter/internal/handler"
	"github.com/GriffinCanCode/pipefilter/internal/infrastructure/config"
	"github.com/GriffinCanCode/pipefilter/internal/infrastructure/logging"
	"github.com/GriffinCanCode/pipefilter/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/pipefilter/internal/infrastructure/resilience"
)

const (
	ReadyMessage    = "Server is running. Press Ctrl+C to stop."
	ShutdownMessage = "Server shutting down."
)

// ErrDrainTimeout is returned by Shutdown when handlers were still running
// after the drain timeout.
var ErrDrainTimeout = errors.New("handlers still running after drain timeout")

// Stats are the spawn loop counters.
type Stats struct {
	Spawned     int64 `json:"spawned"`
	Active      int64 `json:"active"`
	Completed   int64 `json:"completed"`
	Skipped     int64 `json:"skipped"`
	PipesExist  bool  `json:"pipes_exist"`
	BreakerOpen bool  `json:"breaker_open"`
}

// Server owns the pipe pair and spawns one handler per tick.
type Server struct {
	cfg     config.ServerConfig
	pair    fifo.Pair
	lock    *handler.Lock
	breaker *resilience.Breaker
	handler *handler.Handler
	logger  *logging.Logger
	metrics *monitoring.Metrics
	out     io.Writer

	group          *errgroup.Group
	handlerCtx     context.Context
	cancelHandlers context.CancelFunc

	spawned   atomic.Int64
	active    atomic.Int64
	completed atomic.Int64
	skipped   atomic.Int64
}

// New creates a server from cfg. A nil logger or metrics disables them.
func New(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("pipeserver")

	s := &Server{
		cfg: cfg.Server,
		pair: fifo.Pair{
			RequestPath:  cfg.Pipes.RequestPath,
			ResponsePath: cfg.Pipes.ResponsePath,
			Perm:         cfg.Pipes.Perm,
		},
		lock:    handler.NewLock(),
		logger:  logger,
		metrics: metrics,
		out:     os.Stdout,
		group:   new(errgroup.Group),
	}

	s.breaker = resilience.New("pipes", resilience.Settings{
		FailureThreshold: cfg.Breaker.Failures,
		Cooldown:         cfg.Breaker.Cooldown,
		OnStateChange:    s.onBreakerChange,
	})

	s.handler = handler.New(s.pair, s.lock, handler.Options{
		IOTimeout: cfg.Server.IOTimeout,
		Breaker:   s.breaker,
		Metrics:   metrics,
		Logger:    logger.Named("handler"),
	})

	if cfg.Server.MaxPending > 0 {
		s.group.SetLimit(cfg.Server.MaxPending)
	}
	s.handlerCtx, s.cancelHandlers = context.WithCancel(context.Background())

	return s
}

// WithOutput redirects the ready and shutdown status lines.
func (s *Server) WithOutput(w io.Writer) *Server {
	s.out = w
	return s
}

// Pair returns the pipe pair the server owns.
func (s *Server) Pair() fifo.Pair {
	return s.pair
}

// Start creates both pipes and prints the ready message. Pipes that already
// exist are reused.
func (s *Server) Start() error {
	if err := s.pair.Create(); err != nil {
		return fmt.Errorf("failed to create pipes: %w", err)
	}
	s.logger.Info("Pipes ready",
		zap.String("request", s.pair.RequestPath),
		zap.String("response", s.pair.ResponsePath),
	)
	fmt.Fprintln(s.out, ReadyMessage)
	return nil
}

// Run spawns a detached handler every SpawnInterval until ctx is done. It
// never waits for the handlers it spawns.
func (s *Server) Run(ctx context.Context) error {
	limiter := rate.NewLimiter(rate.Every(s.cfg.SpawnInterval), 1)

	s.logger.Info("Spawn loop started",
		zap.Duration("interval", s.cfg.SpawnInterval),
		zap.Int("max_pending", s.cfg.MaxPending),
	)

	for {
		if err := limiter.Wait(ctx); err != nil {
			// The next tick would fall past ctx's deadline.
			<-ctx.Done()
			return nil
		}
		s.spawn()
	}
}

func (s *Server) spawn() {
	ok := s.group.TryGo(func() error {
		s.spawned.Add(1)
		s.active.Add(1)
		if s.metrics != nil {
			s.metrics.HandlerStarted()
		}
		defer func() {
			s.active.Add(-1)
			s.completed.Add(1)
			if s.metrics != nil {
				s.metrics.HandlerFinished()
			}
		}()

		// Failures are logged by the handler and only drop this request.
		_, _ = s.handler.Handle(s.handlerCtx)
		return nil
	})
	if ok {
		return
	}

	s.skipped.Add(1)
	if s.metrics != nil {
		s.metrics.SpawnSkipped()
	}
	s.logger.Debug("Handler registry full, skipping spawn",
		zap.Int64("active", s.active.Load()),
	)
}

// Shutdown removes both pipes and prints the shutdown message. With a zero
// DrainTimeout it returns at once, leaving in-flight handlers to die with
// the process. Otherwise it cancels handlers still waiting for the lock and
// waits up to DrainTimeout for the rest. Call it after Run has returned.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.pair.Remove(); err != nil {
		s.logger.Warn("Failed to remove pipes", zap.Error(err))
	}
	fmt.Fprintln(s.out, ShutdownMessage)

	if s.cfg.DrainTimeout <= 0 {
		s.logger.Info("Shutdown without drain", zap.Int64("abandoned", s.active.Load()))
		return nil
	}

	s.cancelHandlers()

	done := make(chan struct{})
	go func() {
		_ = s.group.Wait()
		close(done)
	}()

	timer := time.NewTimer(s.cfg.DrainTimeout)
	defer timer.Stop()

	select {
	case <-done:
		s.logger.Info("Handlers drained")
		return nil
	case <-timer.C:
		s.logger.Warn("Drain timed out", zap.Int64("abandoned", s.active.Load()))
		return ErrDrainTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns the current loop counters.
func (s *Server) Stats() Stats {
	return Stats{
		Spawned:     s.spawned.Load(),
		Active:      s.active.Load(),
		Completed:   s.completed.Load(),
		Skipped:     s.skipped.Load(),
		PipesExist:  s.pair.Exists(),
		BreakerOpen: s.breaker.State() == resilience.StateOpen,
	}
}

// onBreakerChange recreates the pipes when repeated open failures trip the
// breaker, in case they were removed from under the server.
func (s *Server) onBreakerChange(name string, from, to resilience.State) {
	s.logger.Warn("Pipe breaker state changed",
		zap.String("breaker", name),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
	if to != resilience.StateOpen {
		return
	}
	if s.metrics != nil {
		s.metrics.BreakerTripped()
	}
	if err := s.pair.Create(); err != nil {
		s.logger.Error("Failed to recreate pipes", zap.Error(err))
	}
}
