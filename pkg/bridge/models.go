package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Snapshot is the model list and the active model, read fresh on every call.
type Snapshot struct {
	Models []string `json:"models"`
	Active *string  `json:"active"`
}

// EmptySnapshot is returned when the state could not be read.
func EmptySnapshot() Snapshot {
	return Snapshot{Models: []string{}}
}

// unknownModel is what a page reports when no label could be read.
const unknownModel = "unknown"

func (b *Bridge) listModels(ctx context.Context) ([]string, error) {
	if err := b.session.EnsureApp(ctx); err != nil {
		return nil, fmt.Errorf("failed to load the app: %w", err)
	}
	names, err := b.session.ModelNames(ctx)
	if err != nil {
		b.dismiss(ctx)
		return nil, fmt.Errorf("failed to read model list: %w", err)
	}
	return dedupeNames(names), nil
}

func (b *Bridge) activeModel(ctx context.Context) (*string, error) {
	name, err := b.session.ActiveModel(ctx)
	if err != nil {
		return nil, err
	}
	name = normalizeName(name)
	if name == "" || strings.EqualFold(name, unknownModel) {
		return nil, nil
	}
	return &name, nil
}

func (b *Bridge) selectModel(ctx context.Context, name string) error {
	if err := b.session.EnsureApp(ctx); err != nil {
		return fmt.Errorf("failed to load the app: %w", err)
	}
	if err := b.session.SelectModel(ctx, name); err != nil {
		b.dismiss(ctx)
		if errors.Is(err, ErrModelNotFound) {
			return modelNotFoundError(name)
		}
		return err
	}
	b.logger.Infof("selected model %q", name)
	return nil
}

// snapshot never fails: each half degrades to its empty value.
func (b *Bridge) snapshot(ctx context.Context) Snapshot {
	snap := EmptySnapshot()

	models, err := b.listModels(ctx)
	if err != nil {
		b.logger.Warnf("state: %v", err)
	} else {
		snap.Models = models
	}

	active, err := b.activeModel(ctx)
	if err != nil {
		b.logger.Warnf("state: failed to read active model: %v", err)
	}
	snap.Active = active
	return snap
}

// dedupeNames trims and collapses whitespace, drops blanks and removes
// duplicates keeping the first occurrence.
func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = normalizeName(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
