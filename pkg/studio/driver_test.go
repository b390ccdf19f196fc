package studio

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/studiobridge/pkg/bridge"
	"github.com/entrhq/studiobridge/pkg/browser"
)

const fakeStudioPage = `<!doctype html>
<html><body>
<textarea placeholder="Start typing a prompt"></textarea>
<ms-run-button><button onclick="window.sent = document.querySelector('textarea').value">Run</button></ms-run-button>

<ms-model-selector><button onclick="window.opened = (window.opened || 0) + 1"><span class="title">Gemini Pro</span></button></ms-model-selector>
<h2>Gemini Ultra</h2>
<div role="listbox">
  <div class="model-title-text" onclick="window.picked = 'Gemini Pro'">Gemini Pro</div>
  <div class="model-title-text" onclick="window.picked = 'Gemini Flash'">Gemini Flash</div>
</div>
</body></html>`

// newPageDriver launches headless Chromium with fakeStudioPage loaded. It
// needs a Playwright install, so it only runs when STUDIOBRIDGE_BROWSER_TESTS
// is set.
func newPageDriver(t *testing.T) *Driver {
	t.Helper()
	if testing.Short() || os.Getenv("STUDIOBRIDGE_BROWSER_TESTS") == "" {
		t.Skip("Skipping browser test; set STUDIOBRIDGE_BROWSER_TESTS=1 to run")
	}

	manager := browser.NewManager(nil)
	require.NoError(t, manager.Initialize())

	session, err := manager.LaunchPersistent(context.Background(), browser.LaunchOptions{
		ProfileDir: t.TempDir(),
		Headless:   true,
	})
	if err != nil {
		_ = manager.Shutdown()
		require.NoError(t, err)
	}
	require.NoError(t, session.Page.SetContent(fakeStudioPage))

	d := NewDriver(session, DefaultSelectors(), Waits{Label: 500 * time.Millisecond, Menu: time.Second}, nil)
	d.onClose = manager.Shutdown
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func evalString(t *testing.T, d *Driver, expr string) string {
	t.Helper()
	v, err := d.session.Evaluate(context.Background(), expr)
	require.NoError(t, err)
	s, _ := v.(string)
	return s
}

func TestDriverSubmitFillsPromptBox(t *testing.T) {
	d := newPageDriver(t)

	require.NoError(t, d.Submit(context.Background(), "What is 2+2?"))
	assert.Equal(t, "What is 2+2?", evalString(t, d, "() => window.sent || ''"))
}

func TestDriverSelectModelClicksOption(t *testing.T) {
	d := newPageDriver(t)

	// The active label shows the same name and comes first in the DOM.
	require.NoError(t, d.SelectModel(context.Background(), "Gemini Pro"))
	assert.Equal(t, "Gemini Pro", evalString(t, d, "() => window.picked || ''"))
	assert.Equal(t, "1", evalString(t, d, "() => String(window.opened || 0)"))
}

func TestDriverSelectModelIgnoresTextOutsideOptions(t *testing.T) {
	d := newPageDriver(t)

	err := d.SelectModel(context.Background(), "Gemini Ultra")
	require.Error(t, err)
	assert.True(t, errors.Is(err, bridge.ErrModelNotFound))
	assert.Empty(t, evalString(t, d, "() => window.picked || ''"))
}
