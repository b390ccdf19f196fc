package browser

import "time"

// LaunchOptions configures the persistent browser context.
type LaunchOptions struct {
	// ProfileDir is the user data directory reused across runs.
	ProfileDir string

	// ExecutablePath points at a specific Chrome binary. Empty uses the
	// Playwright-managed Chromium or Channel.
	ExecutablePath string

	// Channel selects an installed browser channel such as "chrome".
	Channel string

	// Headless controls whether the browser runs without a visible window.
	Headless bool

	// Viewport sets the page size. Nil uses the default.
	Viewport *Viewport

	// Args are extra Chromium flags appended to DefaultArgs.
	Args []string

	// BlockedResources lists resource types aborted by the router.
	BlockedResources []string

	// ClipboardOrigin is granted clipboard read and write access.
	ClipboardOrigin string

	// Timeout is the default page timeout.
	Timeout time.Duration
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// NavigateOptions configures page navigation behavior.
type NavigateOptions struct {
	// WaitUntil specifies when to consider navigation successful
	// Valid values: "load", "domcontentloaded", "networkidle"
	WaitUntil string

	// Timeout bounds the navigation (0 means default)
	Timeout time.Duration
}

// WaitOptions configures waiting for a selector.
type WaitOptions struct {
	Selector string

	// State to wait for: "attached", "detached", "visible", "hidden"
	State string

	Timeout time.Duration
}

// ClickOptions configures element clicking.
type ClickOptions struct {
	Selector string
	// HasText narrows the match to elements containing the text.
	HasText string
	Force   bool
	Timeout time.Duration
}

// FillOptions configures form input filling.
type FillOptions struct {
	Selector string
	Value    string
	Timeout  time.Duration
}

// Default values for launch and page operations
const (
	DefaultTimeout        = 30 * time.Second
	DefaultViewportWidth  = 1100
	DefaultViewportHeight = 500
)

// DefaultArgs trims Chromium down for a long-lived, single-tab session and
// hides the automation banner.
var DefaultArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--disable-gpu",
	"--disable-software-rasterizer",
	"--disable-extensions",
	"--disable-background-networking",
	"--disable-sync",
	"--disable-default-apps",
	"--disable-translate",
	"--disable-notifications",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--mute-audio",
	"--js-flags=--max-old-space-size=256",
	"--disable-features=IsolateOrigins,site-per-process",
}

// IgnoredDefaultArgs are Playwright defaults removed from the command line.
var IgnoredDefaultArgs = []string{"--enable-automation"}

// DefaultBlockedResources are resource types the chat UI works without.
var DefaultBlockedResources = []string{"image", "font", "media"}

// withDefaults fills zero fields.
func (o LaunchOptions) withDefaults() LaunchOptions {
	if o.Viewport == nil {
		o.Viewport = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.BlockedResources == nil {
		o.BlockedResources = DefaultBlockedResources
	}
	return o
}

// args returns the full Chromium flag list.
func (o LaunchOptions) args() []string {
	out := make([]string, 0, len(DefaultArgs)+len(o.Args))
	out = append(out, DefaultArgs...)
	return append(out, o.Args...)
}
