package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/studiobridge/pkg/logging"
)

// Session is a launched persistent browser context and its working page.
type Session struct {
	// Context is the persistent browser context
	Context playwright.BrowserContext

	// Page is the tab every operation runs on
	Page playwright.Page

	ProfileDir string
	Headless   bool

	CreatedAt  time.Time
	LastUsedAt time.Time

	// CurrentURL is the URL after the last navigation or click
	CurrentURL string

	logger    *logging.Logger
	closeOnce sync.Once
	closeErr  error
}

// UpdateLastUsed updates the LastUsedAt timestamp to the current time.
func (s *Session) UpdateLastUsed() {
	s.LastUsedAt = time.Now()
}

// Navigate loads url in the session's page.
func (s *Session) Navigate(ctx context.Context, url string, opts NavigateOptions) error {
	s.UpdateLastUsed()
	if err := ctx.Err(); err != nil {
		return err
	}

	gotoOpts := playwright.PageGotoOptions{
		Timeout: playwright.Float(TimeoutMs(ctx, opts.Timeout)),
	}
	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		gotoOpts.WaitUntil = &waitUntil
	}

	if _, err := s.Page.Goto(url, gotoOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", ContextErr(ctx, err))
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// Wait waits for a selector to reach a state.
func (s *Session) Wait(ctx context.Context, opts WaitOptions) error {
	s.UpdateLastUsed()

	if opts.Selector == "" {
		return fmt.Errorf("selector is required for wait")
	}

	waitOpts := playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(TimeoutMs(ctx, opts.Timeout)),
	}
	if opts.State != "" {
		state := playwright.WaitForSelectorState(opts.State)
		waitOpts.State = &state
	}

	if err := s.Page.Locator(opts.Selector).First().WaitFor(waitOpts); err != nil {
		return fmt.Errorf("wait for %s failed: %w", opts.Selector, ContextErr(ctx, err))
	}
	return nil
}

// Click clicks the first element matching the selector.
func (s *Session) Click(ctx context.Context, opts ClickOptions) error {
	s.UpdateLastUsed()

	loc := s.Page.Locator(opts.Selector)
	if opts.HasText != "" {
		loc = loc.Filter(playwright.LocatorFilterOptions{HasText: opts.HasText})
	}

	clickOpts := playwright.LocatorClickOptions{
		Timeout: playwright.Float(TimeoutMs(ctx, opts.Timeout)),
	}
	if opts.Force {
		clickOpts.Force = playwright.Bool(true)
	}

	if err := loc.First().Click(clickOpts); err != nil {
		return fmt.Errorf("click %s failed: %w", opts.Selector, ContextErr(ctx, err))
	}

	s.CurrentURL = s.Page.URL()
	return nil
}

// Fill fills an input element with the specified value.
func (s *Session) Fill(ctx context.Context, opts FillOptions) error {
	s.UpdateLastUsed()

	err := s.Page.Locator(opts.Selector).First().Fill(opts.Value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(TimeoutMs(ctx, opts.Timeout)),
	})
	if err != nil {
		return fmt.Errorf("fill %s failed: %w", opts.Selector, ContextErr(ctx, err))
	}
	return nil
}

// Evaluate runs a JavaScript expression in the page.
func (s *Session) Evaluate(ctx context.Context, expression string, arg ...interface{}) (interface{}, error) {
	s.UpdateLastUsed()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.Page.Evaluate(expression, arg...)
	if err != nil {
		return nil, fmt.Errorf("evaluate failed: %w", ContextErr(ctx, err))
	}
	return result, nil
}

// PressKey presses a key on the page keyboard, e.g. "Escape".
func (s *Session) PressKey(ctx context.Context, key string) error {
	s.UpdateLastUsed()
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.Page.Keyboard().Press(key); err != nil {
		return fmt.Errorf("press %s failed: %w", key, err)
	}
	return nil
}

// Sleep waits for d or until ctx is done.
func (s *Session) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// URL returns the page's current URL.
func (s *Session) URL() string {
	return s.Page.URL()
}

// Close closes the page's browser context. Safe to call multiple times.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if s.Context != nil {
			s.closeErr = s.Context.Close()
		}
		if s.logger != nil {
			s.logger.Infof("browser context closed (profile=%s)", s.ProfileDir)
		}
	})
	return s.closeErr
}
