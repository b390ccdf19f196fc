package bridge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/studiobridge/pkg/types"
)

// submit enqueues cmd and waits for its reply. When the caller stops
// waiting, the command is marked abandoned so the worker skips it if it has
// not started yet.
func (b *Bridge) submit(ctx context.Context, cmd *types.Command, timeout time.Duration, onTimeout error) (interface{}, error) {
	if err := b.fatalErr(); err != nil {
		return nil, err
	}

	b.Start()
	if err := b.queue.push(cmd); err != nil {
		return nil, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-cmd.Reply():
		return r.Value, r.Err
	case <-timer.C:
		cmd.Abandon()
		b.logger.Warnf("caller timed out waiting for %s command %s after %s", cmd.Kind, cmd.ID, timeout)
		return nil, onTimeout
	case <-ctx.Done():
		cmd.Abandon()
		return nil, timeoutError(ctx.Err())
	}
}

// SendPrompt submits text in a fresh conversation and returns the answer.
// rich selects markdown output.
func (b *Bridge) SendPrompt(ctx context.Context, text string, rich bool) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", newError(KindRejected, PrefixError, nil, "prompt is empty.")
	}
	v, err := b.submit(ctx, types.NewPromptCommand(text, rich), b.timeouts.Prompt, ErrTimeout)
	if err != nil {
		return "", err
	}
	return asString(v)
}

// ExtractTextFromFile uploads the file at path and returns the text the
// model extracted from it. A missing file fails without touching the
// session.
func (b *Bridge) ExtractTextFromFile(ctx context.Context, path string) (string, error) {
	ok, err := fileExists(path)
	if err != nil {
		return "", attachError(err)
	}
	if !ok {
		return "", ErrFileNotFound
	}

	v, err := b.submit(ctx, types.NewUploadCommand(path, b.instruction), b.timeouts.Extract, ErrExtractionTimeout)
	if err != nil {
		return "", err
	}
	return asString(v)
}

// Reset opens a fresh conversation and blocks until it has loaded.
func (b *Bridge) Reset(ctx context.Context) error {
	_, err := b.submit(ctx, types.NewCommand(types.CommandReset, nil), b.timeouts.Reset, ErrTimeout)
	return err
}

// GetModels returns the distinct model names in selector order. Failures
// are reported alongside an empty, non-nil list.
func (b *Bridge) GetModels(ctx context.Context) ([]string, error) {
	v, err := b.submit(ctx, types.NewCommand(types.CommandGetModels, nil), b.timeouts.Models, ErrTimeout)
	if err != nil {
		return []string{}, err
	}
	models, ok := v.([]string)
	if !ok {
		return []string{}, internalError(fmt.Errorf("unexpected result %T", v))
	}
	return models, nil
}

// SetModel selects the model whose display name is exactly name.
func (b *Bridge) SetModel(ctx context.Context, name string) (bool, error) {
	name = normalizeName(name)
	if name == "" {
		return false, newError(KindRejected, PrefixError, nil, "model name is empty.")
	}
	_, err := b.submit(ctx, types.NewSetModelCommand(name), b.timeouts.SetModel, ErrTimeout)
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetBridgeState returns the model list and the active model. On timeout it
// returns an empty snapshot together with the error.
func (b *Bridge) GetBridgeState(ctx context.Context) (Snapshot, error) {
	v, err := b.submit(ctx, types.NewCommand(types.CommandGetState, nil), b.timeouts.State, ErrTimeout)
	if err != nil {
		return EmptySnapshot(), err
	}
	snap, ok := v.(Snapshot)
	if !ok {
		return EmptySnapshot(), internalError(fmt.Errorf("unexpected result %T", v))
	}
	return snap, nil
}

// LastResponse re-extracts the latest answer on screen without submitting
// anything.
func (b *Bridge) LastResponse(ctx context.Context, rich bool) (string, error) {
	cmd := types.NewCommand(types.CommandLastResponse, types.LastResponsePayload{Rich: rich})
	v, err := b.submit(ctx, cmd, b.timeouts.Prompt, ErrTimeout)
	if err != nil {
		return "", err
	}
	return asString(v)
}

func asString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", internalError(fmt.Errorf("unexpected result %T", v))
	}
	return s, nil
}
