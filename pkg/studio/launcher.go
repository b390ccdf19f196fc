package studio

import (
	"context"
	"errors"
	"net/url"

	"github.com/entrhq/studiobridge/pkg/bridge"
	"github.com/entrhq/studiobridge/pkg/browser"
	"github.com/entrhq/studiobridge/pkg/logging"
)

// NewLauncher returns a bridge.Launcher that starts Playwright, opens the
// persistent profile and wraps the page in a Driver. Closing the driver
// also shuts the Playwright driver down.
func NewLauncher(manager *browser.Manager, opts browser.LaunchOptions, sel Selectors, waits Waits, logger *logging.Logger) bridge.Launcher {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.ClipboardOrigin == "" {
		opts.ClipboardOrigin = origin(sel.NewChatURL)
	}

	return func(ctx context.Context) (bridge.Session, error) {
		if err := manager.Initialize(); err != nil {
			return nil, err
		}
		session, err := manager.LaunchPersistent(ctx, opts)
		if err != nil {
			return nil, errors.Join(err, manager.Shutdown())
		}
		d := NewDriver(session, sel, waits, logger)
		d.onClose = manager.Shutdown
		return d, nil
	}
}

// origin returns the scheme and host of raw, or "" when raw is not an
// absolute URL.
func origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
