// Package tui provides a terminal chat view over the bridge.
//
// The TUI codebase is split into multiple files:
// - executor.go: program lifecycle and event forwarding
// - model.go: model state and messages
// - update.go: Bubble Tea Update function and input handling
// - commands.go: bridge calls run as tea.Cmds
// - events.go: bridge event processing
// - view.go: rendering
// - helpers.go, styles.go: formatting and colors
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/studiobridge/pkg/bridge"
	"github.com/entrhq/studiobridge/pkg/executor/cli"
	"github.com/entrhq/studiobridge/pkg/logging"
	"github.com/entrhq/studiobridge/pkg/tokens"
	"github.com/entrhq/studiobridge/pkg/types"
)

// eventBuffer is how many bridge events may wait for the program.
const eventBuffer = 64

// Executor runs the chat view.
type Executor struct {
	client  cli.Client
	program *tea.Program
	events  chan *types.Event
	logger  *logging.Logger
	counter *tokens.Counter
	rich    bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithRich requests markdown answers.
func WithRich(rich bool) Option {
	return func(e *Executor) {
		e.rich = rich
	}
}

// WithLogger sets the logger for UI diagnostics.
func WithLogger(l *logging.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithTokenCounter shows token counts in the status bar.
func WithTokenCounter(c *tokens.Counter) Option {
	return func(e *Executor) {
		e.counter = c
	}
}

// NewExecutor creates a TUI executor for client. Pass Sink to
// bridge.WithEventSink so the status line follows the worker.
func NewExecutor(client cli.Client, opts ...Option) *Executor {
	e := &Executor{
		client: client,
		events: make(chan *types.Event, eventBuffer),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetClient replaces the client. It lets the bridge be built with this
// executor's Sink before the executor starts.
func (e *Executor) SetClient(client cli.Client) {
	e.client = client
}

// Sink returns an event sink feeding this executor. Events are dropped
// rather than blocking the worker when the UI falls behind.
func (e *Executor) Sink() bridge.EventSink {
	return func(ev *types.Event) {
		select {
		case e.events <- ev:
		default:
			e.logger.Debugf("dropped %s event: ui is behind", ev.Type)
		}
	}
}

// Run starts the TUI and blocks until the user exits or ctx is done.
func (e *Executor) Run(ctx context.Context) error {
	if e.client == nil {
		return fmt.Errorf("tui executor has no client")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(ctx, e.client, e.rich)
	m.counter = e.counter
	m.logger = e.logger

	e.program = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	go func() {
		for {
			select {
			case ev := <-e.events:
				e.program.Send(ev)
			case <-ctx.Done():
				return
			}
		}
	}()

	if _, err := e.program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run TUI program: %w", err)
	}
	return nil
}
