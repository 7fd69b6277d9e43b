// Package workflow sequences analysis submission, progress feedback, result
// installation, and the reformulation sub-flow for one user session.
//
// Controller operations never block on the network. Each accepted
// operation starts its remote call on a goroutine and returns; the call
// settles by mutating the Session under the controller's lock and
// notifying subscribers. Failures never propagate to the caller: they reset
// the affected flow and surface as EventFailed.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/JaimeStill/plagiat/internal/analysis"
	"github.com/JaimeStill/plagiat/internal/checker"
	"github.com/JaimeStill/plagiat/internal/progress"
	"github.com/JaimeStill/plagiat/internal/reformulation"
)

const subscriberBuffer = 16

// Controller owns one Session and drives it through the analysis and
// reformulation flows. It is safe for concurrent use.
type Controller struct {
	client      checker.Client
	estimator   *progress.Estimator
	settleDelay time.Duration
	logger      *slog.Logger

	mu      sync.Mutex
	session Session
	refm    *reformulation.Manager
	run     *progress.Run
	subs    map[int]chan Event
	nextSub int
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}

// Option customizes a Controller.
type Option func(*Controller)

// WithEstimator replaces the progress estimator built from Config.
func WithEstimator(e *progress.Estimator) Option {
	return func(c *Controller) {
		c.estimator = e
	}
}

// New creates a Controller in the idle phase. cfg is expected to have been
// finalized.
func New(client checker.Client, cfg *Config, logger *slog.Logger, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		client:      client,
		estimator:   progress.New(cfg.Progress()),
		settleDelay: cfg.SettleDelayDuration(),
		logger:      logger.With("system", "workflow"),
		session:     Session{Phase: PhaseIdle},
		refm:        reformulation.NewManager(),
		subs:        make(map[int]chan Event),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current session.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SetText replaces the input text without affecting the current analysis
// or reformulation.
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.InputText == text {
		return
	}
	c.session.InputText = text
	c.notifyLocked(EventChanged, "", nil)
}

// SubmitText starts an analysis of text. It returns false without issuing
// a request when text is blank, an analysis is already in flight, or the
// controller is closed.
func (c *Controller) SubmitText(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	return c.submit(OpCheckText,
		func(s *Session) { s.InputText = text },
		func(ctx context.Context) (*analysis.Result, error) {
			return c.client.CheckText(ctx, text)
		},
	)
}

// SubmitFile starts an analysis of a document. The filename is recorded on
// the session before the submission is considered, so it is shown even when
// an analysis already in flight refuses the request. The input text is left
// as is. Document type is validated by the analysis service.
func (c *Controller) SubmitFile(filename string, data []byte) bool {
	if filename == "" {
		return false
	}

	c.selectFile(filename)

	return c.submit(OpCheckFile,
		func(*Session) {},
		func(ctx context.Context) (*analysis.Result, error) {
			return c.client.CheckFile(ctx, filename, data)
		},
	)
}

func (c *Controller) selectFile(filename string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.session.SelectedFileName == filename {
		return
	}
	c.session.SelectedFileName = filename
	c.notifyLocked(EventChanged, "", nil)
}

// RequestReformulation asks the service to rewrite the current input text.
// It returns false when the text is blank, a rewrite is already pending, or
// the controller is closed. The current analysis is not affected.
func (c *Controller) RequestReformulation(useAI bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	text := c.session.InputText
	if !c.refm.Begin(text) {
		return false
	}

	c.wg.Add(1)
	c.notifyLocked(EventChanged, "", nil)

	go c.reformulate(text, useAI)
	return true
}

// AdoptReformulation replaces the input text with the visible rewrite and
// clears the analysis, which no longer describes the text. No new analysis
// is started.
func (c *Controller) AdoptReformulation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	text, ok := c.refm.Adopt()
	if !ok {
		return false
	}

	c.session.InputText = text
	c.session.Analysis = nil
	if c.session.Phase == PhaseResultReady {
		c.session.Phase = PhaseIdle
	}

	c.notifyLocked(EventChanged, "", nil)
	return true
}

// DismissReformulation hides the rewrite. The rewrite text, the input text,
// and the analysis are kept.
func (c *Controller) DismissReformulation() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.refm.State().Visible {
		return
	}
	c.refm.Hide()
	c.notifyLocked(EventChanged, "", nil)
}

// ShowReformulation reopens a dismissed rewrite.
func (c *Controller) ShowReformulation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refm.State().Visible {
		return true
	}
	if !c.refm.Show() {
		return false
	}
	c.notifyLocked(EventChanged, "", nil)
	return true
}

// Subscribe returns a channel of state notifications. The channel is closed
// when ctx ends or the controller is closed. Slow subscribers lose their
// oldest undelivered events, never the most recent.
func (c *Controller) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, subscriberBuffer)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-c.done:
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}()

	return ch
}

// Wait blocks until every in-flight remote call has settled.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Closed reports whether Close has been called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close cancels in-flight calls, stops the estimator, waits for all
// settlement to finish, and closes subscriber channels. Operations on a
// closed controller are refused. Close is safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		<-c.done
		return
	}
	c.closed = true
	run := c.run
	c.mu.Unlock()

	c.cancel()
	if run != nil {
		run.Stop()
	}
	c.wg.Wait()

	c.mu.Lock()
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
	c.mu.Unlock()

	close(c.done)
	c.logger.Debug("controller closed")
}

func (c *Controller) submit(op Operation, prepare func(*Session), call func(context.Context) (*analysis.Result, error)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.session.Phase == PhaseSubmitting {
		return false
	}

	prepare(&c.session)
	c.session.Analysis = nil
	c.session.Phase = PhaseSubmitting
	c.session.Progress = 0

	run := c.estimator.Start(c.tick)
	c.run = run
	c.wg.Add(1)
	c.notifyLocked(EventChanged, "", nil)

	go c.analyze(op, run, call)
	return true
}

func (c *Controller) tick(value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Phase != PhaseSubmitting || value <= c.session.Progress {
		return
	}
	c.session.Progress = value
	c.notifyLocked(EventProgress, "", nil)
}

func (c *Controller) analyze(op Operation, run *progress.Run, call func(context.Context) (*analysis.Result, error)) {
	defer c.wg.Done()

	result, err := call(c.ctx)
	if err == nil && result == nil {
		err = fmt.Errorf("%w: empty result", checker.ErrShape)
	}

	// Stop blocks on the tick goroutine, which takes c.mu.
	run.Stop()

	c.mu.Lock()
	c.run = nil

	if err != nil {
		c.resetLocked()
		c.failLocked(op, err)
		c.mu.Unlock()
		return
	}

	c.session.Progress = 100
	c.notifyLocked(EventProgress, "", nil)
	c.mu.Unlock()

	timer := time.NewTimer(c.settleDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-c.ctx.Done():
		c.mu.Lock()
		c.resetLocked()
		c.notifyLocked(EventChanged, "", nil)
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.session.Analysis = result
	c.session.Phase = PhaseResultReady
	c.session.Progress = 0

	c.logger.Info("analysis complete",
		"op", op,
		"score", result.Score,
		"tier", result.Tier(),
		"sources", len(result.Sources),
	)
	c.notifyLocked(EventChanged, "", nil)
}

func (c *Controller) reformulate(text string, useAI bool) {
	defer c.wg.Done()

	rw, err := c.client.Reformulate(c.ctx, text, useAI)
	if err == nil && rw == nil {
		err = fmt.Errorf("%w: empty rewrite", checker.ErrShape)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.refm.Fail()
		c.failLocked(OpReformulate, err)
		return
	}

	c.refm.Complete(*rw, useAI)
	c.logger.Info("reformulation ready", "method", c.refm.State().Method)
	c.notifyLocked(EventChanged, "", nil)
}

func (c *Controller) resetLocked() {
	c.session.Phase = PhaseIdle
	c.session.Progress = 0
}

func (c *Controller) failLocked(op Operation, err error) {
	if errors.Is(err, context.Canceled) && c.ctx.Err() != nil {
		c.logger.Debug("request cancelled", "op", op)
	} else {
		c.logger.Warn("request failed", "op", op, "error", err)
	}
	c.notifyLocked(EventFailed, op, err)
}

func (c *Controller) snapshotLocked() Session {
	s := c.session
	s.Analysis = s.Analysis.Clone()
	s.Reformulation = c.refm.State()
	return s
}

func (c *Controller) notifyLocked(kind EventKind, op Operation, err error) {
	if len(c.subs) == 0 {
		return
	}

	ev := Event{
		Kind:    kind,
		Op:      op,
		Err:     err,
		Session: c.snapshotLocked(),
	}

	for _, ch := range c.subs {
		select {
		case ch <- ev:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}
