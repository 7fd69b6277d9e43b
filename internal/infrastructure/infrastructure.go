// Package infrastructure provides core service initialization for application startup.
// It assembles the dependencies (logging, lifecycle, the analysis service client)
// that session and workflow systems require.
package infrastructure

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/JaimeStill/plagiat/internal/checker"
	"github.com/JaimeStill/plagiat/internal/config"
	"github.com/JaimeStill/plagiat/pkg/lifecycle"
)

const probeTimeout = 5 * time.Second

// Infrastructure holds the core systems required by all modules.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Checker   checker.Client

	logSink io.Closer
}

// New creates an Infrastructure from the application configuration, logging
// to stderr and the configured file sink. It initializes all systems but
// does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New with console log output sent to w.
func NewWithOutput(cfg *config.Config, w io.Writer) (*Infrastructure, error) {
	logger, sink := NewLogger(&cfg.Logging, w)

	client := checker.Limit(
		checker.New(&cfg.Service, logger),
		cfg.Service.MaxConcurrent,
	)

	return &Infrastructure{
		Lifecycle: lifecycle.New(),
		Logger:    logger,
		Checker:   client,
		logSink:   sink,
	}, nil
}

// Start registers the analysis service readiness probe and the startup and
// shutdown hooks. An unreachable service is logged at startup but does not
// prevent the process from starting; readiness reports it instead.
func (i *Infrastructure) Start() error {
	i.Lifecycle.OnProbe("analysis_service", i.Checker.Health)

	i.Lifecycle.OnStartup(func() {
		ctx, cancel := context.WithTimeout(i.Lifecycle.Context(), probeTimeout)
		defer cancel()

		if err := i.Checker.Health(ctx); err != nil {
			i.Logger.Warn("analysis service unreachable", "error", err)
			return
		}
		i.Logger.Info("analysis service reachable")
	})

	i.Lifecycle.OnShutdown(func() {
		<-i.Lifecycle.Context().Done()
		if err := i.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "close log sink:", err)
		}
	})

	return nil
}

// Close releases the log file sink, if any.
func (i *Infrastructure) Close() error {
	if i.logSink == nil {
		return nil
	}
	return i.logSink.Close()
}
