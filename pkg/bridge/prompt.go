package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/entrhq/studiobridge/pkg/completion"
	"github.com/entrhq/studiobridge/pkg/extract"
	"github.com/entrhq/studiobridge/pkg/types"
)

// runPrompt is the shared prompt path: optional fresh conversation, submit,
// wait for completion, extract.
func (b *Bridge) runPrompt(ctx context.Context, cmd *types.Command, text string, format extract.Format, fresh bool) (string, error) {
	if fresh {
		b.logger.Debugf("forcing a new chat")
		if err := b.session.NewChat(ctx); err != nil {
			return "", fmt.Errorf("failed to open a new chat: %w", err)
		}
	}

	b.logTokens("prompt", cmd, text)
	if err := b.session.Submit(ctx, text); err != nil {
		return "", fmt.Errorf("failed to submit prompt: %w", err)
	}

	detector := completion.NewDetector(b.detectorCfg,
		completion.WithLogger(b.logger),
		completion.WithTransitionHook(func(from, to completion.State) {
			b.emit(types.NewTransitionEvent(cmd, from.String(), to.String()))
		}),
	)

	out, err := detector.Await(ctx, completion.SamplerFunc(b.session.Observe), text)
	switch {
	case errors.Is(err, completion.ErrGenerationTimeout):
		b.logger.Warnf("generation did not settle after %d polls (%s), %d chars on screen", out.Polls, out.Elapsed, len(out.Text))
		return "", generationTimeoutError(err)
	case err != nil:
		return "", timeoutError(err)
	}
	b.logger.Debugf("generation complete after %d polls (%s)", out.Polls, out.Elapsed)

	resp, err := b.chain().Extract(ctx, format)
	if err != nil {
		if ctx.Err() != nil {
			return "", timeoutError(ctx.Err())
		}
		return "", extractionError(err)
	}

	b.logger.Infof("extracted response via %s (%s)", resp.Strategy, resp.Method)
	b.logTokens("response", cmd, resp.Text)
	return resp.Text, nil
}

// readLatest extracts the answer already on screen without submitting.
func (b *Bridge) readLatest(ctx context.Context, format extract.Format) (string, error) {
	resp, err := b.chain().Extract(ctx, format)
	if err != nil {
		return "", extractionError(err)
	}
	return resp.Text, nil
}

func (b *Bridge) resetSession(ctx context.Context) error {
	if err := b.session.NewChat(ctx); err != nil {
		return fmt.Errorf("failed to open a new chat: %w", err)
	}
	return nil
}

func (b *Bridge) chain() *extract.Chain {
	return extract.NewChain(b.logger, extract.DefaultStrategies(b.session)...)
}

func (b *Bridge) logTokens(label string, cmd *types.Command, text string) {
	if b.counter == nil {
		return
	}
	b.logger.Debugf("%s %s: %d tokens", cmd.ID, label, b.counter.Count(text))
}

func timeoutError(err error) *Error {
	return &Error{Kind: KindTimeout, Prefix: PrefixError, Message: ErrTimeout.Message, Err: err}
}

func generationTimeoutError(err error) *Error {
	return &Error{Kind: KindTimeout, Prefix: PrefixError, Message: ErrGenerationTimeout.Message, Err: err}
}
