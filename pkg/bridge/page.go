package bridge

import (
	"context"

	"github.com/entrhq/studiobridge/pkg/completion"
	"github.com/entrhq/studiobridge/pkg/extract"
)

// Page is the set of UI actions the worker needs from the target chat app.
// Implementations are only ever called from the worker goroutine.
type Page interface {
	// NewChat navigates to a fresh conversation and waits for it to load.
	NewChat(ctx context.Context) error
	// EnsureApp makes sure the app shell is loaded without resetting the
	// current conversation.
	EnsureApp(ctx context.Context) error
	// Submit fills the prompt box with text and presses run.
	Submit(ctx context.Context, text string) error
	// Observe samples the latest answer text and the in-progress indicator.
	Observe(ctx context.Context) (completion.Observation, error)

	extract.Copier
	extract.Scraper

	// ChooseFile opens the attach menu and hands path to the file chooser.
	ChooseFile(ctx context.Context, path string) error
	// WaitAttached waits for the attachment chip showing name.
	WaitAttached(ctx context.Context, name string) error
	// WaitProcessing waits for any upload progress indicator to clear.
	// It returns immediately when none is visible.
	WaitProcessing(ctx context.Context) error

	// ModelNames opens the model selector, reads every option label and
	// closes it again.
	ModelNames(ctx context.Context) ([]string, error)
	// ActiveModel reads the label of the selected model.
	ActiveModel(ctx context.Context) (string, error)
	// SelectModel selects the option whose label is exactly name. It returns
	// ErrModelNotFound when there is none.
	SelectModel(ctx context.Context, name string) error

	// Dismiss closes any open menu or overlay.
	Dismiss(ctx context.Context) error
}

// Session is a launched browser session.
type Session interface {
	Page
	Close() error
}

// Launcher starts the browser session. It is called at most once per Bridge.
type Launcher func(ctx context.Context) (Session, error)
