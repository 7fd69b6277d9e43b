// Package progress simulates completion feedback for long-running remote
// calls whose real progress is unknown. An Estimator emits a monotonically
// increasing value on a fixed tick until the caller stops it.
package progress

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Config holds the estimator's scheduling and numeric policy.
type Config struct {
	Interval time.Duration
	MaxStep  float64
	Ceiling  float64
}

// DefaultConfig returns a 200ms tick adding up to 15 points per tick, held below 95.
func DefaultConfig() Config {
	return Config{
		Interval: 200 * time.Millisecond,
		MaxStep:  15,
		Ceiling:  95,
	}
}

// Estimator produces simulated progress values.
type Estimator struct {
	cfg  Config
	rand func() float64
}

// Option customizes an Estimator.
type Option func(*Estimator)

// WithRand replaces the random source. fn must return values in [0, 1).
func WithRand(fn func() float64) Option {
	return func(e *Estimator) {
		e.rand = fn
	}
}

// New creates an Estimator. Zero config fields fall back to DefaultConfig.
func New(cfg Config, opts ...Option) *Estimator {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxStep <= 0 {
		cfg.MaxStep = def.MaxStep
	}
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = def.Ceiling
	}

	e := &Estimator{
		cfg:  cfg,
		rand: rand.Float64,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the estimator's effective configuration.
func (e *Estimator) Config() Config {
	return e.cfg
}

// Next returns the value following prev. The increment is drawn from
// [0, MaxStep); a step that would reach the ceiling is replaced by half the
// remaining distance, so the result stays strictly below Ceiling.
func (e *Estimator) Next(prev float64) float64 {
	next := prev + e.rand()*e.cfg.MaxStep
	if next < e.cfg.Ceiling {
		return next
	}

	next = prev + (e.cfg.Ceiling-prev)/2
	if next >= e.cfg.Ceiling {
		return prev
	}
	return next
}

// Start begins ticking from zero. onTick runs on the estimator's goroutine
// and must not call Stop on the returned Run.
func (e *Estimator) Start(onTick func(float64)) *Run {
	r := &Run{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go r.loop(e, onTick)
	return r
}

// Run is one live estimation.
type Run struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Stop halts the run and blocks until its goroutine has exited. Once Stop
// returns, onTick will not be called again. Stop is safe to call more than once.
func (r *Run) Stop() {
	r.once.Do(func() {
		close(r.stop)
	})
	<-r.done
}

func (r *Run) loop(e *Estimator, onTick func(float64)) {
	defer close(r.done)

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	value := 0.0
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			select {
			case <-r.stop:
				return
			default:
			}
			value = e.Next(value)
			onTick(value)
		}
	}
}
