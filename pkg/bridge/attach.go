package bridge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/entrhq/studiobridge/pkg/extract"
	"github.com/entrhq/studiobridge/pkg/types"
	"github.com/entrhq/studiobridge/pkg/upload"
)

// runUpload attaches a local file to a fresh conversation and asks the model
// for its text.
func (b *Bridge) runUpload(ctx context.Context, cmd *types.Command, p types.UploadPayload) (string, error) {
	b.logger.Infof("extracting text from %s", p.Path)

	if err := b.session.NewChat(ctx); err != nil {
		// Attaching to an old conversation is still better than failing.
		b.logger.Warnf("failed to open a new chat before upload: %v", err)
	}

	if err := b.checkFile(p.Path); err != nil {
		return "", err
	}

	if err := b.session.ChooseFile(ctx, p.Path); err != nil {
		b.dismiss(ctx)
		return "", attachError(err)
	}

	name := filepath.Base(p.Path)
	chipCtx, cancel := context.WithTimeout(ctx, b.timeouts.AttachChip)
	err := b.session.WaitAttached(chipCtx, name)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return "", timeoutError(ctx.Err())
		}
		b.logger.Warnf("attachment chip for %s not detected, proceeding anyway: %v", name, err)
	}

	procCtx, cancel := context.WithTimeout(ctx, b.timeouts.Processing)
	err = b.session.WaitProcessing(procCtx)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return "", timeoutError(ctx.Err())
		}
		b.logger.Warnf("upload processing indicator did not clear: %v", err)
	}

	instruction := p.Instruction
	if instruction == "" {
		instruction = b.instruction
	}
	return b.runPrompt(ctx, cmd, instruction, extract.Plain, false)
}

// checkFile verifies the file exists and passes the upload policy.
func (b *Bridge) checkFile(path string) error {
	if b.policy == nil {
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return ErrFileNotFound
			}
			return attachError(err)
		}
		return nil
	}

	info, err := b.policy.Check(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return ErrFileNotFound
	case errors.Is(err, upload.ErrRejected):
		return rejectedError(err)
	case err != nil:
		return attachError(err)
	}

	if info.Pages > 0 {
		b.logger.Infof("attaching %s (%d bytes, %d pages)", info.Name, info.Size, info.Pages)
	} else {
		b.logger.Infof("attaching %s (%d bytes)", info.Name, info.Size)
	}
	return nil
}

func (b *Bridge) dismiss(ctx context.Context) {
	if err := b.session.Dismiss(ctx); err != nil {
		b.logger.Debugf("dismiss failed: %v", err)
	}
}

// fileExists is the caller-side check done before a command is enqueued.
func fileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return !info.IsDir(), nil
}
