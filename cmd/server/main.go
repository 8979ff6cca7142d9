package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/pipefilter/internal/api/http"
	"github.com/GriffinCanCode/pipefilter/internal/api/middleware"
	"github.com/GriffinCanCode/pipefilter/internal/infrastructure/config"
	"github.com/GriffinCanCode/pipefilter/internal/infrastructure/logging"
	"github.com/GriffinCanCode/pipefilter/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/pipefilter/internal/pipeserver"
)

func main() {
	// Handle graceful shutdown. Installed before the pipes exist so a signal
	// never leaves them behind.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()

	// Handlers still blocked on the pipes end with the process.
	os.Exit(code)
}

// run serves until ctx is cancelled, then removes the pipes.
func run(ctx context.Context, args []string, stdout io.Writer) int {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Default()
	}

	// Parse flags; env values are the defaults
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	request := fs.String("request", cfg.Pipes.RequestPath, "Request pipe path")
	response := fs.String("response", cfg.Pipes.ResponsePath, "Response pipe path")
	interval := fs.Duration("interval", cfg.Server.SpawnInterval, "Handler spawn interval")
	maxPending := fs.Int("max-pending", cfg.Server.MaxPending, "Maximum pending handlers (0 = unbounded)")
	drain := fs.Duration("drain", cfg.Server.DrainTimeout, "Wait this long for handlers on shutdown (0 = exit at once)")
	ioTimeout := fs.Duration("io-timeout", cfg.Server.IOTimeout, "Pipe read/write deadline (0 = none)")
	admin := fs.String("admin", cfg.Admin.Addr, "Admin HTTP listen address (empty disables)")
	logLevel := fs.String("log-level", cfg.Logging.Level, "Log level")
	dev := fs.Bool("dev", cfg.Logging.Development, "Development logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg.Pipes.RequestPath = *request
	cfg.Pipes.ResponsePath = *response
	cfg.Server.SpawnInterval = *interval
	cfg.Server.MaxPending = *maxPending
	cfg.Server.DrainTimeout = *drain
	cfg.Server.IOTimeout = *ioTimeout
	cfg.Admin.Addr = *admin
	cfg.Logging.Level = *logLevel
	cfg.Logging.Development = *dev

	logCfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		logCfg = logging.DevelopmentConfig()
	}
	logCfg.Level = cfg.Logging.Level

	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if cfgErr != nil {
		logger.Warn("Invalid environment config, using defaults", zap.Error(cfgErr))
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return 1
	}

	metrics := monitoring.NewMetrics()
	srv := pipeserver.New(cfg, logger, metrics).WithOutput(stdout)
	if err := srv.Start(); err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		return 1
	}

	var adminSrv *apihttp.Server
	if cfg.Admin.Addr != "" {
		router := apihttp.NewRouter(apihttp.NewHandlers(srv, metrics), logger, apihttp.RouterConfig{
			Development: cfg.Logging.Development,
			RateLimit: middleware.RateLimitConfig{
				RequestsPerSecond: cfg.Admin.RequestsPerSecond,
				Burst:             cfg.Admin.Burst,
			},
		})
		adminSrv = apihttp.NewServer(cfg.Admin.Addr, router, logger)
		go func() {
			if err := adminSrv.Run(); err != nil {
				logger.Error("Admin server error", zap.Error(err))
			}
		}()
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server loop error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.DrainTimeout+5*time.Second)
	defer cancel()

	if adminSrv != nil {
		if err := adminSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down admin server", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Shutdown incomplete", zap.Error(err))
	}

	return 0
}
