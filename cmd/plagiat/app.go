package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/JaimeStill/plagiat/internal/analysis"
	"github.com/JaimeStill/plagiat/internal/checker"
	"github.com/JaimeStill/plagiat/internal/config"
	"github.com/JaimeStill/plagiat/internal/documents"
	"github.com/JaimeStill/plagiat/internal/infrastructure"
	"github.com/JaimeStill/plagiat/internal/reformulation"
	"github.com/JaimeStill/plagiat/internal/workflow"
)

const pingTimeout = 5 * time.Second

var errInterrupted = errors.New("interrupted")

type app struct {
	checker  checker.Client
	workflow *workflow.Config
	baseURL  string
	logger   *slog.Logger
	render   *renderer
}

func newApp(cfg *config.Config, infra *infrastructure.Infrastructure, r *renderer) *app {
	return &app{
		checker:  infra.Checker,
		workflow: &cfg.Workflow,
		baseURL:  cfg.Service.BaseURL,
		logger:   infra.Logger.With("module", "cli"),
		render:   r,
	}
}

func (a *app) run(ctx context.Context, opts options) error {
	if opts.ping {
		return a.ping(ctx)
	}

	ctl := workflow.New(a.checker, a.workflow, a.logger)
	defer ctl.Close()

	events := ctl.Subscribe(ctx)

	if err := a.submit(ctl, opts); err != nil {
		a.render.failure("submit", err)
		return err
	}

	if _, err := a.awaitAnalysis(ctx, events); err != nil {
		return err
	}

	if opts.reformulate == "" {
		return nil
	}

	if !ctl.RequestReformulation(opts.reformulate == "ai") {
		err := errors.New("reformulation refused")
		a.render.failure("reformulate", err)
		return err
	}

	if _, err := a.awaitReformulation(ctx, events); err != nil {
		return err
	}

	if !opts.adopt {
		return nil
	}

	if !ctl.AdoptReformulation() {
		err := errors.New("no reformulation to adopt")
		a.render.failure("adopt", err)
		return err
	}
	a.render.success("Reformulation adopted. Checking the new text.")

	if !ctl.SubmitText(ctl.Snapshot().InputText) {
		err := errors.New("check refused")
		a.render.failure("check", err)
		return err
	}

	_, err := a.awaitAnalysis(ctx, events)
	return err
}

func (a *app) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.checker.Health(ctx); err != nil {
		a.render.failure("ping "+a.baseURL, err)
		return err
	}

	a.render.success("analysis service reachable at %s", a.baseURL)
	return nil
}

func (a *app) submit(ctl *workflow.Controller, opts options) error {
	if opts.file == "" {
		if !ctl.SubmitText(opts.text) {
			return errors.New("text is empty")
		}
		return nil
	}

	data, err := os.ReadFile(opts.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", opts.file, err)
	}

	name := filepath.Base(opts.file)
	a.render.document(documents.Describe(a.logger, name, "", data))

	if !ctl.SubmitFile(name, data) {
		return errors.New("check refused")
	}
	return nil
}

// awaitAnalysis renders progress until the submitted check settles.
func (a *app) awaitAnalysis(ctx context.Context, events <-chan workflow.Event) (*analysis.Result, error) {
	for {
		select {
		case <-ctx.Done():
			a.render.endProgress()
			return nil, errInterrupted
		case ev, ok := <-events:
			if !ok {
				a.render.endProgress()
				return nil, errInterrupted
			}

			switch {
			case ev.Kind == workflow.EventProgress:
				a.render.progress(ev.Session.Progress)
			case ev.Kind == workflow.EventFailed && ev.Op != workflow.OpReformulate:
				a.render.endProgress()
				a.render.failure("check", ev.Err)
				return nil, ev.Err
			case ev.Kind == workflow.EventChanged && ev.Session.Phase == workflow.PhaseResultReady:
				a.render.endProgress()
				a.render.result(ev.Session.Analysis)
				return ev.Session.Analysis, nil
			}
		}
	}
}

// awaitReformulation waits for the requested rewrite and renders it.
func (a *app) awaitReformulation(ctx context.Context, events <-chan workflow.Event) (reformulation.State, error) {
	for {
		select {
		case <-ctx.Done():
			return reformulation.State{}, errInterrupted
		case ev, ok := <-events:
			if !ok {
				return reformulation.State{}, errInterrupted
			}

			state := ev.Session.Reformulation
			switch {
			case ev.Kind == workflow.EventFailed && ev.Op == workflow.OpReformulate:
				a.render.failure("reformulate", ev.Err)
				return reformulation.State{}, ev.Err
			case ev.Kind == workflow.EventChanged && state.Status == reformulation.StatusReady && state.Visible:
				a.render.reformulation(state)
				return state, nil
			}
		}
	}
}
