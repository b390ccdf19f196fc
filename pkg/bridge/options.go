package bridge

import (
	"time"

	"github.com/entrhq/studiobridge/pkg/completion"
	"github.com/entrhq/studiobridge/pkg/logging"
	"github.com/entrhq/studiobridge/pkg/tokens"
	"github.com/entrhq/studiobridge/pkg/types"
	"github.com/entrhq/studiobridge/pkg/upload"
)

// DefaultExtractionInstruction is sent after a file is attached.
const DefaultExtractionInstruction = "Extract all text content from the attached file verbatim. " +
	"Do not summarize. Do not add markdown unless it is in the source. Just output the raw text."

// Timeouts bounds how long callers wait and how long attach steps may take.
type Timeouts struct {
	Prompt   time.Duration
	Extract  time.Duration
	Reset    time.Duration
	Models   time.Duration
	SetModel time.Duration
	State    time.Duration
	Launch   time.Duration

	// AttachChip bounds the wait for the filename chip. A miss only warns.
	AttachChip time.Duration
	// Processing bounds the wait for the upload progress indicator to clear.
	Processing time.Duration
}

// DefaultTimeouts returns the standard caller and attach timeouts.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Prompt:     300 * time.Second,
		Extract:    300 * time.Second,
		Reset:      60 * time.Second,
		Models:     60 * time.Second,
		SetModel:   60 * time.Second,
		State:      60 * time.Second,
		Launch:     120 * time.Second,
		AttachChip: 40 * time.Second,
		Processing: 120 * time.Second,
	}
}

func (t Timeouts) withDefaults() Timeouts {
	d := DefaultTimeouts()
	fill := func(v *time.Duration, def time.Duration) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&t.Prompt, d.Prompt)
	fill(&t.Extract, d.Extract)
	fill(&t.Reset, d.Reset)
	fill(&t.Models, d.Models)
	fill(&t.SetModel, d.SetModel)
	fill(&t.State, d.State)
	fill(&t.Launch, d.Launch)
	fill(&t.AttachChip, d.AttachChip)
	fill(&t.Processing, d.Processing)
	return t
}

// EventSink receives lifecycle events. It is called from the worker
// goroutine and must not block.
type EventSink func(*types.Event)

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the bridge logger.
func WithLogger(l *logging.Logger) Option {
	return func(b *Bridge) {
		b.logger = l
	}
}

// WithEventSink registers a lifecycle event sink.
func WithEventSink(sink EventSink) Option {
	return func(b *Bridge) {
		b.sink = sink
	}
}

// WithTimeouts overrides timeouts; zero fields keep their defaults.
func WithTimeouts(t Timeouts) Option {
	return func(b *Bridge) {
		b.timeouts = t.withDefaults()
	}
}

// WithDetectorConfig tunes completion detection.
func WithDetectorConfig(cfg completion.Config) Option {
	return func(b *Bridge) {
		b.detectorCfg = cfg
	}
}

// WithMaxQueueDepth bounds the command queue. Zero means unbounded.
func WithMaxQueueDepth(n int) Option {
	return func(b *Bridge) {
		b.queue.max = n
	}
}

// WithUploadPolicy sets the policy applied before a file is attached.
func WithUploadPolicy(p *upload.Policy) Option {
	return func(b *Bridge) {
		b.policy = p
	}
}

// WithTokenCounter enables token accounting in logs.
func WithTokenCounter(c *tokens.Counter) Option {
	return func(b *Bridge) {
		b.counter = c
	}
}

// WithExtractionInstruction replaces the instruction sent after an upload.
func WithExtractionInstruction(s string) Option {
	return func(b *Bridge) {
		if s != "" {
			b.instruction = s
		}
	}
}
