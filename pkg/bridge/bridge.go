package bridge

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/entrhq/studiobridge/pkg/completion"
	"github.com/entrhq/studiobridge/pkg/extract"
	"github.com/entrhq/studiobridge/pkg/logging"
	"github.com/entrhq/studiobridge/pkg/tokens"
	"github.com/entrhq/studiobridge/pkg/types"
	"github.com/entrhq/studiobridge/pkg/upload"
)

// Bridge owns one browser session and the worker goroutine that drives it.
type Bridge struct {
	launcher    Launcher
	logger      *logging.Logger
	sink        EventSink
	timeouts    Timeouts
	detectorCfg completion.Config
	policy      *upload.Policy
	counter     *tokens.Counter
	instruction string
	queue       *commandQueue

	startMu sync.Mutex
	started bool
	done    chan struct{}

	// runCtx parents every session call; canceling it aborts in-flight work.
	runCtx    context.Context
	runCancel context.CancelFunc

	fatalMu sync.RWMutex
	fatal   error

	closeOnce sync.Once
	closeErr  error

	// Worker-owned.
	session Session
}

// New creates a bridge. The session is launched lazily by the worker on
// the first command.
func New(launcher Launcher, opts ...Option) *Bridge {
	runCtx, runCancel := context.WithCancel(context.Background())
	b := &Bridge{
		launcher:    launcher,
		logger:      logging.Discard(),
		timeouts:    DefaultTimeouts(),
		detectorCfg: completion.DefaultConfig(),
		instruction: DefaultExtractionInstruction,
		queue:       newCommandQueue(),
		done:        make(chan struct{}),
		runCtx:      runCtx,
		runCancel:   runCancel,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start spins up the worker goroutine. It is idempotent and is called by
// every public operation.
func (b *Bridge) Start() {
	b.startMu.Lock()
	defer b.startMu.Unlock()
	if b.started {
		return
	}
	b.started = true
	go b.run()
}

// Pending returns the number of queued commands not yet picked up.
func (b *Bridge) Pending() int {
	return b.queue.len()
}

// Done is closed when the worker has exited.
func (b *Bridge) Done() <-chan struct{} {
	return b.done
}

// Close stops the worker and closes the session. Commands still queued are
// answered with ErrClosed. If ctx expires first, in-flight work is canceled.
func (b *Bridge) Close(ctx context.Context) error {
	b.closeOnce.Do(func() {
		b.startMu.Lock()
		started := b.started
		b.started = true
		b.startMu.Unlock()

		if !started {
			b.queue.close()
			b.runCancel()
			close(b.done)
			return
		}

		stop := types.NewStopCommand()
		if err := b.queue.push(stop); err != nil {
			b.closeErr = err
			return
		}

		select {
		case <-b.done:
		case <-ctx.Done():
			b.logger.Warnf("close deadline reached, canceling in-flight work")
			b.runCancel()
			<-b.done
			b.closeErr = ctx.Err()
		}
		b.runCancel()
	})
	return b.closeErr
}

func (b *Bridge) run() {
	defer close(b.done)
	defer b.closeSession()

	b.logger.Infof("worker started")
	for {
		cmd, err := b.queue.pop(b.runCtx)
		if err != nil {
			b.logger.Infof("worker canceled: %v", err)
			b.failQueued(ErrClosed)
			return
		}

		if b.runCtx.Err() != nil {
			cmd.Resolve(types.Result{Err: ErrClosed})
			b.failQueued(ErrClosed)
			return
		}

		if cmd.IsStop() {
			b.logger.Infof("worker stopping")
			b.queue.close()
			b.failQueued(ErrClosed)
			cmd.Resolve(types.Result{Value: true})
			return
		}

		b.handle(cmd)
	}
}

// handle answers exactly one command.
func (b *Bridge) handle(cmd *types.Command) {
	if cmd.Abandoned() {
		b.logger.Debugf("skipping abandoned command %s (%s)", cmd.ID, cmd.Kind)
		cmd.Resolve(types.Result{Err: ErrTimeout})
		b.emit(types.NewCommandEvent(types.EventTypeCommandSkipped, cmd, nil))
		return
	}

	if err := b.fatalErr(); err != nil {
		cmd.Resolve(types.Result{Err: err})
		b.emit(types.NewCommandEvent(types.EventTypeCommandDone, cmd, err))
		return
	}

	if b.session == nil {
		if err := b.launch(); err != nil {
			cmd.Resolve(types.Result{Err: err})
			b.emit(types.NewCommandEvent(types.EventTypeCommandDone, cmd, err))
			return
		}
	}

	b.logger.Infof("running %s command %s (queued %s)", cmd.Kind, cmd.ID, time.Since(cmd.EnqueuedAt).Round(time.Millisecond))
	b.emit(types.NewCommandEvent(types.EventTypeCommandStart, cmd, nil))

	res := b.execute(cmd)
	if res.Err != nil {
		b.logger.Warnf("%s command %s failed: %v", cmd.Kind, cmd.ID, res.Err)
	}
	if !cmd.Resolve(res) {
		b.logger.Warnf("%s command %s was already resolved", cmd.Kind, cmd.ID)
	}
	if cmd.Abandoned() {
		b.logger.Debugf("caller no longer waiting for %s command %s, result discarded", cmd.Kind, cmd.ID)
	}
	b.emit(types.NewCommandEvent(types.EventTypeCommandDone, cmd, res.Err))
}

func (b *Bridge) launch() error {
	ctx, cancel := context.WithTimeout(b.runCtx, b.timeouts.Launch)
	defer cancel()

	b.logger.Infof("launching browser session")
	session, err := b.launcher(ctx)
	if err != nil {
		fatal := fatalError(err)
		b.fatalMu.Lock()
		b.fatal = fatal
		b.fatalMu.Unlock()

		b.logger.Errorf("browser session failed to start: %v", err)
		b.emit(types.NewSessionEvent(types.EventTypeSessionFailed, fatal))
		return fatal
	}

	b.session = session
	b.logger.Infof("browser session ready")
	b.emit(types.NewSessionEvent(types.EventTypeSessionReady, nil))
	return nil
}

func (b *Bridge) fatalErr() error {
	b.fatalMu.RLock()
	defer b.fatalMu.RUnlock()
	return b.fatal
}

// execute runs cmd inside the failure boundary: nothing escapes as a panic
// and every error is classified.
func (b *Bridge) execute(cmd *types.Command) (res types.Result) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("panic in %s command %s: %v\n%s", cmd.Kind, cmd.ID, r, debug.Stack())
			res = types.Result{Err: internalError(fmt.Errorf("panic: %v", r))}
		}
	}()

	ctx, cancel := context.WithTimeout(b.runCtx, b.commandTimeout(cmd.Kind))
	defer cancel()

	value, err := b.dispatch(ctx, cmd)
	if err != nil {
		return types.Result{Err: classify(err)}
	}
	return types.Result{Value: value}
}

func (b *Bridge) dispatch(ctx context.Context, cmd *types.Command) (interface{}, error) {
	switch cmd.Kind {
	case types.CommandPrompt:
		p, ok := cmd.Payload.(types.PromptPayload)
		if !ok {
			return nil, payloadError(cmd)
		}
		return b.runPrompt(ctx, cmd, p.Text, extract.FormatFor(p.Rich), true)

	case types.CommandUploadExtract:
		p, ok := cmd.Payload.(types.UploadPayload)
		if !ok {
			return nil, payloadError(cmd)
		}
		return b.runUpload(ctx, cmd, p)

	case types.CommandReset:
		return true, b.resetSession(ctx)

	case types.CommandGetModels:
		return b.listModels(ctx)

	case types.CommandSetModel:
		p, ok := cmd.Payload.(types.SetModelPayload)
		if !ok {
			return nil, payloadError(cmd)
		}
		return true, b.selectModel(ctx, p.Name)

	case types.CommandGetState:
		return b.snapshot(ctx), nil

	case types.CommandLastResponse:
		p, _ := cmd.Payload.(types.LastResponsePayload)
		return b.readLatest(ctx, extract.FormatFor(p.Rich))
	}
	return nil, internalError(fmt.Errorf("unknown command kind %q", cmd.Kind))
}

func payloadError(cmd *types.Command) error {
	return internalError(fmt.Errorf("invalid payload %T for %s command", cmd.Payload, cmd.Kind))
}

// commandTimeout bounds the worker's own execution of a command.
func (b *Bridge) commandTimeout(kind types.CommandKind) time.Duration {
	switch kind {
	case types.CommandPrompt, types.CommandLastResponse:
		return b.timeouts.Prompt
	case types.CommandUploadExtract:
		return b.timeouts.Extract
	case types.CommandReset:
		return b.timeouts.Reset
	case types.CommandGetModels:
		return b.timeouts.Models
	case types.CommandSetModel:
		return b.timeouts.SetModel
	default:
		return b.timeouts.State
	}
}

// classify turns an arbitrary error into a *Error. Errors that are already
// classified pass through; anything else came from the page.
func classify(err error) error {
	switch {
	case KindOf(err) != "":
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return timeoutError(err)
	}
	return browserError(err)
}

// failQueued answers every queued command with err.
func (b *Bridge) failQueued(err error) {
	for _, cmd := range b.queue.drain() {
		if cmd.IsStop() {
			cmd.Resolve(types.Result{Value: true})
			continue
		}
		cmd.Resolve(types.Result{Err: err})
		b.emit(types.NewCommandEvent(types.EventTypeCommandDone, cmd, err))
	}
}

func (b *Bridge) closeSession() {
	if b.session == nil {
		return
	}
	if err := b.session.Close(); err != nil {
		b.logger.Warnf("failed to close browser session: %v", err)
	}
	b.session = nil
	b.logger.Infof("browser session closed")
}

func (b *Bridge) emit(e *types.Event) {
	if b.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("event sink panicked: %v", r)
		}
	}()
	b.sink(e)
}
