package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/studiobridge/pkg/bridge"
	"github.com/entrhq/studiobridge/pkg/browser"
	"github.com/entrhq/studiobridge/pkg/completion"
	"github.com/entrhq/studiobridge/pkg/extract"
	"github.com/entrhq/studiobridge/pkg/logging"
)

var _ bridge.Session = (*Driver)(nil)

// Driver runs bridge operations against the AI Studio page of a browser
// session.
type Driver struct {
	session *browser.Session
	sel     Selectors
	waits   Waits
	logger  *logging.Logger

	// onClose runs after the session is closed, e.g. to stop Playwright.
	onClose func() error
}

// NewDriver wraps session. Zero waits fall back to DefaultWaits.
func NewDriver(session *browser.Session, sel Selectors, waits Waits, logger *logging.Logger) *Driver {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Driver{
		session: session,
		sel:     sel,
		waits:   waits.withDefaults(),
		logger:  logger,
	}
}

func (d *Driver) page() playwright.Page {
	return d.session.Page
}

func (d *Driver) NewChat(ctx context.Context) error {
	d.logger.Debugf("opening new chat: %s", d.sel.NewChatURL)
	err := d.session.Navigate(ctx, d.sel.NewChatURL, browser.NavigateOptions{
		WaitUntil: "domcontentloaded",
		Timeout:   d.waits.Navigation,
	})
	if err != nil {
		return err
	}
	return d.waitPromptBox(ctx)
}

func (d *Driver) EnsureApp(ctx context.Context) error {
	if !needsNavigation(d.session.URL(), d.sel.AppURLPrefix) {
		return nil
	}
	d.logger.Infof("page is at %q, navigating to the app", d.session.URL())
	return d.NewChat(ctx)
}

// needsNavigation reports whether url is outside the app.
func needsNavigation(url, prefix string) bool {
	return prefix == "" || !strings.Contains(url, prefix)
}

func (d *Driver) waitPromptBox(ctx context.Context) error {
	err := d.session.Wait(ctx, browser.WaitOptions{
		Selector: d.sel.promptBox(),
		State:    "visible",
		Timeout:  d.waits.PromptBox,
	})
	if err != nil {
		return fmt.Errorf("prompt box not ready: %w", err)
	}
	return nil
}

func (d *Driver) runButton() playwright.Locator {
	return d.page().Locator(d.sel.RunButton).
		Filter(playwright.LocatorFilterOptions{HasText: d.sel.RunButtonText}).
		First()
}

func (d *Driver) Submit(ctx context.Context, text string) error {
	if err := d.waitPromptBox(ctx); err != nil {
		return err
	}
	err := d.session.Fill(ctx, browser.FillOptions{
		Selector: d.sel.promptBox(),
		Value:    text,
		Timeout:  d.waits.PromptBox,
	})
	if err != nil {
		return fmt.Errorf("failed to fill prompt: %w", err)
	}

	run := d.runButton()
	err = run.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.RunButton)),
	})
	if err != nil {
		return fmt.Errorf("run button not visible: %w", browser.ContextErr(ctx, err))
	}
	if err := run.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.RunButton)),
	}); err != nil {
		return fmt.Errorf("failed to click run: %w", browser.ContextErr(ctx, err))
	}
	return nil
}

// Observe scrolls the latest output into view, then samples the last turn's
// text. The run button is hidden while an answer is generating.
func (d *Driver) Observe(ctx context.Context) (completion.Observation, error) {
	if _, err := d.session.Evaluate(ctx, scrollToLatestScript, d.sel.TextChunk); err != nil {
		d.logger.Debugf("scroll to latest failed: %v", err)
	}

	raw, err := d.session.Evaluate(ctx, latestTurnTextScript, d.sel.ChatTurn)
	if err != nil {
		return completion.Observation{}, err
	}
	text, _ := raw.(string)

	visible, err := d.runButton().IsVisible()
	if err != nil {
		return completion.Observation{}, fmt.Errorf("failed to check run button: %w", browser.ContextErr(ctx, err))
	}
	return completion.Observation{Text: text, InProgress: !visible}, nil
}

// copyLabel returns the options menu entry for format.
func (s Selectors) copyLabel(format extract.Format) string {
	if format == extract.Markdown {
		return s.CopyMarkdown
	}
	return s.CopyText
}

// CopyLatest opens the last turn's options menu, picks the copy entry and
// reads the clipboard back.
func (d *Driver) CopyLatest(ctx context.Context, format extract.Format) (string, error) {
	defer d.escape(ctx)

	turn := d.page().Locator(d.sel.ChatTurn).Last()
	if err := turn.ScrollIntoViewIfNeeded(); err != nil {
		d.logger.Debugf("scroll last turn failed: %v", err)
	}
	if err := turn.Hover(playwright.LocatorHoverOptions{
		Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Options)),
	}); err != nil {
		return "", fmt.Errorf("failed to hover last turn: %w", browser.ContextErr(ctx, err))
	}

	options := turn.Locator(d.sel.OptionsButton).First()
	err := options.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Options)),
	})
	if err != nil {
		return "", fmt.Errorf("options button not visible: %w", browser.ContextErr(ctx, err))
	}
	if err := options.Click(playwright.LocatorClickOptions{
		Force:   playwright.Bool(true),
		Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Options)),
	}); err != nil {
		return "", fmt.Errorf("failed to open options: %w", browser.ContextErr(ctx, err))
	}

	label := d.sel.copyLabel(format)
	if err := d.clickMenuItem(ctx, label); err != nil {
		return "", err
	}
	if err := d.session.Sleep(ctx, d.waits.Clipboard); err != nil {
		return "", err
	}

	raw, err := d.session.Evaluate(ctx, readClipboardScript)
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	text, _ := raw.(string)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("clipboard is empty")
	}
	return text, nil
}

// clickMenuItem clicks the menu entry with label, trying the alternate menu
// item selector when the primary one has no match.
func (d *Driver) clickMenuItem(ctx context.Context, label string) error {
	var lastErr error
	for _, selector := range []string{d.sel.MenuItem, d.sel.MenuItemAlt} {
		if selector == "" {
			continue
		}
		item := d.page().Locator(selector).
			Filter(playwright.LocatorFilterOptions{HasText: label}).
			First()
		err := item.Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Menu)),
		})
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
	}
	return fmt.Errorf("menu item %q not found: %w", label, lastErr)
}

func (d *Driver) LatestHTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := d.page().Locator(d.sel.ChatTurn).Last().InnerHTML(playwright.LocatorInnerHTMLOptions{
		Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Menu)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to read latest turn html: %w", browser.ContextErr(ctx, err))
	}
	return html, nil
}

func (d *Driver) LatestText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := d.page().Locator(d.sel.TextChunk).Last().TextContent(playwright.LocatorTextContentOptions{
		Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Menu)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to read latest text chunk: %w", browser.ContextErr(ctx, err))
	}
	return text, nil
}

// ChooseFile opens the attach menu and feeds path to the file chooser the
// upload entry opens.
func (d *Driver) ChooseFile(ctx context.Context, path string) error {
	err := d.session.Click(ctx, browser.ClickOptions{
		Selector: d.sel.AddMediaButton,
		Timeout:  d.waits.AttachMenu,
	})
	if err != nil {
		return fmt.Errorf("failed to open attach menu: %w", err)
	}

	upload := d.page().GetByText(d.sel.UploadMenuText).First()
	err = upload.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Menu)),
	})
	if err != nil {
		return fmt.Errorf("upload menu item not visible: %w", browser.ContextErr(ctx, err))
	}

	chooser, err := d.page().ExpectFileChooser(func() error {
		return upload.Click()
	}, playwright.PageExpectFileChooserOptions{
		Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.AttachMenu)),
	})
	if err != nil {
		return fmt.Errorf("file chooser did not open: %w", browser.ContextErr(ctx, err))
	}
	if err := chooser.SetFiles([]string{path}); err != nil {
		return fmt.Errorf("failed to set file: %w", browser.ContextErr(ctx, err))
	}
	d.session.UpdateLastUsed()
	return nil
}

// WaitAttached waits for the chip labelled name. ctx bounds the wait.
func (d *Driver) WaitAttached(ctx context.Context, name string) error {
	err := d.page().GetByText(name).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(browser.TimeoutMs(ctx, 0)),
	})
	if err != nil {
		return fmt.Errorf("attachment %q not shown: %w", name, browser.ContextErr(ctx, err))
	}
	return nil
}

func (d *Driver) WaitProcessing(ctx context.Context) error {
	bar := d.page().Locator(d.sel.ProgressBar).First()
	visible, err := bar.IsVisible()
	if err != nil || !visible {
		return nil
	}
	d.logger.Debugf("waiting for upload processing to finish")
	err = d.session.Wait(ctx, browser.WaitOptions{
		Selector: d.sel.ProgressBar,
		State:    "hidden",
	})
	if err != nil {
		return fmt.Errorf("upload still processing: %w", err)
	}
	return nil
}

// openModelSelector clicks the model selector button, opening the run
// settings panel first when the button is not on screen.
func (d *Driver) openModelSelector(ctx context.Context) error {
	button := d.page().Locator(d.sel.ModelSelector).First()
	if visible, _ := button.IsVisible(); !visible && d.sel.RunSettingsLabel != "" {
		settings := d.page().GetByLabel(d.sel.RunSettingsLabel).First()
		if ok, _ := settings.IsVisible(); ok {
			d.logger.Debugf("opening run settings panel")
			_ = settings.Click(playwright.LocatorClickOptions{
				Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Menu)),
			})
		}
	}

	err := button.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.ModelButton)),
	})
	if err != nil {
		return fmt.Errorf("model selector not visible: %w", browser.ContextErr(ctx, err))
	}
	if err := button.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Menu)),
	}); err != nil {
		return fmt.Errorf("failed to open model selector: %w", browser.ContextErr(ctx, err))
	}
	return nil
}

func (d *Driver) ModelNames(ctx context.Context) ([]string, error) {
	if err := d.openModelSelector(ctx); err != nil {
		return nil, err
	}
	defer d.escape(ctx)

	titles := d.page().Locator(d.sel.ModelTitle)
	err := titles.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Menu)),
	})
	if err != nil {
		return nil, fmt.Errorf("model list not visible: %w", browser.ContextErr(ctx, err))
	}

	names, err := titles.AllInnerTexts()
	if err != nil {
		return nil, fmt.Errorf("failed to read model names: %w", browser.ContextErr(ctx, err))
	}
	return names, nil
}

// ActiveModel reads the selected model label. It returns "unknown" when
// neither label selector matches.
func (d *Driver) ActiveModel(ctx context.Context) (string, error) {
	for _, selector := range []string{d.sel.ActiveModelLabel, d.sel.ActiveModelLabelAlt} {
		if selector == "" {
			continue
		}
		label := d.page().Locator(selector).First()
		err := label.WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Label)),
		})
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		text, err := label.InnerText()
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			return text, nil
		}
	}
	return "unknown", nil
}

func (d *Driver) SelectModel(ctx context.Context, name string) error {
	if err := d.openModelSelector(ctx); err != nil {
		return err
	}

	if d.sel.FilterChip != "" {
		chip := d.page().Locator(d.sel.FilterChip).
			Filter(playwright.LocatorFilterOptions{HasText: d.sel.FilterChipText}).
			First()
		if ok, _ := chip.IsVisible(); ok {
			_ = chip.Click(playwright.LocatorClickOptions{
				Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Menu)),
			})
		}
	}

	// Only option titles count; the selector button shows the active name too.
	option := d.page().Locator(d.sel.ModelTitle).
		GetByText(name, playwright.LocatorGetByTextOptions{Exact: playwright.Bool(true)}).
		First()
	err := option.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Label)),
	})
	if err != nil {
		d.escape(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("no option labelled %q: %w", name, bridge.ErrModelNotFound)
	}
	if err := option.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Menu)),
	}); err != nil {
		d.escape(ctx)
		return fmt.Errorf("failed to select model %q: %w", name, browser.ContextErr(ctx, err))
	}

	if d.sel.MenuPanel != "" {
		err := d.page().Locator(d.sel.MenuPanel).First().WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateHidden,
			Timeout: playwright.Float(browser.TimeoutMs(ctx, d.waits.Menu)),
		})
		if err != nil {
			d.logger.Warnf("model menu still open after selecting %q: %v", name, err)
			d.escape(ctx)
		}
	}
	return nil
}

func (d *Driver) Dismiss(ctx context.Context) error {
	return d.session.PressKey(ctx, "Escape")
}

func (d *Driver) escape(ctx context.Context) {
	if err := d.session.PressKey(ctx, "Escape"); err != nil {
		d.logger.Debugf("escape failed: %v", err)
	}
}

// Close closes the browser context and then runs the shutdown hook.
func (d *Driver) Close() error {
	err := d.session.Close()
	if d.onClose != nil {
		err = errors.Join(err, d.onClose())
	}
	return err
}
