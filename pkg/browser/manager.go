package browser

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/studiobridge/pkg/logging"
)

// Manager owns the Playwright driver and launches persistent sessions.
type Manager struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	initialized bool
	logger      *logging.Logger

	// SkipInstall skips the driver and browser download, for hosts where
	// Playwright is provisioned separately.
	SkipInstall bool
	// Browsers limits which bundled browsers are installed.
	Browsers []string
}

// NewManager creates a manager. Initialize must be called before launching.
func NewManager(logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		logger:   logger,
		Browsers: []string{"chromium"},
	}
}

// Initialize installs (if needed) and starts the Playwright driver.
// It is idempotent.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Keep driver chatter off the terminal; a TUI may own it.
	opts := &playwright.RunOptions{
		Browsers: m.Browsers,
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}

	if !m.SkipInstall {
		m.logger.Infof("installing playwright driver")
		if err := playwright.Install(opts); err != nil {
			return fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// LaunchPersistent starts Chromium on opts.ProfileDir and returns the
// session over its first page.
func (m *Manager) LaunchPersistent(ctx context.Context, opts LaunchOptions) (*Session, error) {
	if opts.ProfileDir == "" {
		return nil, fmt.Errorf("profile directory is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, fmt.Errorf("browser manager not initialized")
	}

	opts = opts.withDefaults()

	if err := os.MkdirAll(opts.ProfileDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}
	removed, err := RemoveStaleLocks(opts.ProfileDir)
	if err != nil {
		m.logger.Warnf("stale lock cleanup: %v", err)
	}
	for _, name := range removed {
		m.logger.Infof("removed stale lock file %s", name)
	}

	launchOpts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:          playwright.Bool(opts.Headless),
		Args:              opts.args(),
		IgnoreDefaultArgs: IgnoredDefaultArgs,
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
		Timeout: playwright.Float(TimeoutMs(ctx, 0)),
	}
	if opts.Channel != "" {
		launchOpts.Channel = playwright.String(opts.Channel)
	}
	if opts.ExecutablePath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.ExecutablePath)
	}

	m.logger.Infof("launching chromium (profile=%s headless=%t channel=%q)", opts.ProfileDir, opts.Headless, opts.Channel)
	bctx, err := m.playwright.Chromium.LaunchPersistentContext(opts.ProfileDir, launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", ContextErr(ctx, err))
	}

	session, err := m.prepare(bctx, opts)
	if err != nil {
		_ = bctx.Close()
		return nil, err
	}
	return session, nil
}

// prepare grants permissions, installs routing and init scripts, and picks
// the page.
func (m *Manager) prepare(bctx playwright.BrowserContext, opts LaunchOptions) (*Session, error) {
	if opts.ClipboardOrigin != "" {
		err := bctx.GrantPermissions([]string{"clipboard-read", "clipboard-write"}, playwright.BrowserContextGrantPermissionsOptions{
			Origin: playwright.String(opts.ClipboardOrigin),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to grant clipboard permissions: %w", err)
		}
	}

	for _, script := range InitScripts {
		content := script
		if err := bctx.AddInitScript(playwright.Script{Content: &content}); err != nil {
			return nil, fmt.Errorf("failed to add init script: %w", err)
		}
	}

	if len(opts.BlockedResources) > 0 {
		blocked := make(map[string]bool, len(opts.BlockedResources))
		for _, r := range opts.BlockedResources {
			blocked[r] = true
		}
		err := bctx.Route("**/*", func(route playwright.Route) {
			if blocked[route.Request().ResourceType()] {
				_ = route.Abort()
				return
			}
			_ = route.Continue()
		})
		if err != nil {
			return nil, fmt.Errorf("failed to install resource router: %w", err)
		}
	}

	var page playwright.Page
	if pages := bctx.Pages(); len(pages) > 0 {
		page = pages[0]
	} else {
		p, err := bctx.NewPage()
		if err != nil {
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
		page = p
	}

	timeout := float64(opts.Timeout.Milliseconds())
	page.SetDefaultTimeout(timeout)
	page.SetDefaultNavigationTimeout(timeout)

	now := time.Now()
	return &Session{
		Context:    bctx,
		Page:       page,
		ProfileDir: opts.ProfileDir,
		Headless:   opts.Headless,
		CreatedAt:  now,
		LastUsedAt: now,
		CurrentURL: page.URL(),
		logger:     m.logger,
	}, nil
}

// Shutdown stops the Playwright driver. Sessions must be closed first.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
		m.playwright = nil
	}
	return nil
}
