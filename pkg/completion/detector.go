package completion

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrGenerationTimeout is returned when the ceiling elapses before the
// response stabilizes.
var ErrGenerationTimeout = errors.New("generation timed out")

// Sampler reads the target UI once per poll.
type Sampler interface {
	Observe(ctx context.Context) (Observation, error)
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(ctx context.Context) (Observation, error)

// Observe calls f.
func (f SamplerFunc) Observe(ctx context.Context) (Observation, error) {
	return f(ctx)
}

// Logger is the subset of the logging API the detector needs.
type Logger interface {
	Debugf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
}

// Outcome summarizes a finished observation.
type Outcome struct {
	State   State
	Text    string
	Polls   int
	Elapsed time.Duration
}

// Detector drives a Machine against a Sampler on a fixed cadence.
type Detector struct {
	cfg          Config
	logger       Logger
	now          func() time.Time
	onTransition TransitionFunc
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithLogger sets the detector logger.
func WithLogger(l Logger) DetectorOption {
	return func(d *Detector) {
		d.logger = l
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) DetectorOption {
	return func(d *Detector) {
		d.now = now
	}
}

// WithTransitionHook registers a hook called on every state change.
func WithTransitionHook(fn TransitionFunc) DetectorOption {
	return func(d *Detector) {
		d.onTransition = fn
	}
}

// NewDetector creates a detector with the given configuration.
func NewDetector(cfg Config, opts ...DetectorOption) *Detector {
	d := &Detector{
		cfg: cfg.withDefaults(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the effective configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// Await observes the UI after a prompt was submitted and blocks until the
// generation is Done, the ceiling elapses, or ctx is canceled. The caller must
// have issued the submit action before calling Await.
func (d *Detector) Await(ctx context.Context, sampler Sampler, prompt string) (Outcome, error) {
	m := NewMachine(d.cfg, prompt)
	m.OnTransition(func(from, to State) {
		if d.logger != nil {
			d.logger.Debugf("completion: %s -> %s", from, to)
		}
		if d.onTransition != nil {
			d.onTransition(from, to)
		}
	})

	started := d.now()
	m.Submit(started)

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	var lastText string
	for {
		select {
		case <-ctx.Done():
			return d.outcome(m, lastText, started), ctx.Err()
		case <-ticker.C:
		}

		if m.Expire(d.now()) == TimedOut {
			return d.timedOut(m, lastText, started)
		}

		obs, err := sampler.Observe(ctx)
		now := d.now()
		if err != nil {
			if ctx.Err() != nil {
				return d.outcome(m, lastText, started), ctx.Err()
			}
			if d.logger != nil {
				d.logger.Warnf("completion: poll %d failed: %v", m.Polls()+1, err)
			}
			m.Interrupt(now)
		} else {
			lastText = obs.Text
			m.Observe(obs, now)
		}

		switch m.State() {
		case Done:
			return d.outcome(m, lastText, started), nil
		case TimedOut:
			return d.timedOut(m, lastText, started)
		}
	}
}

func (d *Detector) timedOut(m *Machine, text string, started time.Time) (Outcome, error) {
	return d.outcome(m, text, started), fmt.Errorf("%w after %s", ErrGenerationTimeout, d.cfg.Ceiling)
}

func (d *Detector) outcome(m *Machine, text string, started time.Time) Outcome {
	return Outcome{
		State:   m.State(),
		Text:    text,
		Polls:   m.Polls(),
		Elapsed: d.now().Sub(started),
	}
}
