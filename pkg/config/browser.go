package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/entrhq/studiobridge/pkg/browser"
)

// SectionIDBrowser is the identifier for the browser section
const SectionIDBrowser = "browser"

// BrowserSection configures the persistent browser profile and launch.
type BrowserSection struct {
	ProfileDir       string
	ExecutablePath   string
	Channel          string
	Headless         bool
	ViewportWidth    int
	ViewportHeight   int
	ClipboardOrigin  string
	BlockedResources []string
	// SkipInstall leaves driver and browser provisioning to the host.
	SkipInstall bool
	mu          sync.RWMutex
}

// DefaultProfileDir returns ~/.studiobridge/profile.
func DefaultProfileDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".studiobridge", "profile")
	}
	return filepath.Join(home, ".studiobridge", "profile")
}

// NewBrowserSection creates a browser section with default settings.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.reset()
	return s
}

func (s *BrowserSection) ID() string          { return SectionIDBrowser }
func (s *BrowserSection) Title() string       { return "Browser" }
func (s *BrowserSection) Description() string { return "Browser profile, binary and window settings." }

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocked := make([]interface{}, 0, len(s.BlockedResources))
	for _, r := range s.BlockedResources {
		blocked = append(blocked, r)
	}
	return map[string]interface{}{
		"profile_dir":       s.ProfileDir,
		"executable_path":   s.ExecutablePath,
		"channel":           s.Channel,
		"headless":          s.Headless,
		"viewport_width":    s.ViewportWidth,
		"viewport_height":   s.ViewportHeight,
		"clipboard_origin":  s.ClipboardOrigin,
		"blocked_resources": blocked,
		"skip_install":      s.SkipInstall,
	}
}

// SetData updates the configuration from the provided data.
func (s *BrowserSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "profile_dir":
			s.ProfileDir, err = toString(key, value)
		case "executable_path":
			s.ExecutablePath, err = toString(key, value)
		case "channel":
			s.Channel, err = toString(key, value)
		case "clipboard_origin":
			s.ClipboardOrigin, err = toString(key, value)
		case "headless":
			s.Headless, err = toBool(key, value)
		case "skip_install":
			s.SkipInstall, err = toBool(key, value)
		case "viewport_width", "viewport_height":
			var n int64
			if n, err = toInt(key, value); err == nil {
				if key == "viewport_width" {
					s.ViewportWidth = int(n)
				} else {
					s.ViewportHeight = int(n)
				}
			}
		case "blocked_resources":
			s.BlockedResources, err = toStringSlice(key, value)
		default:
			// Ignore unknown keys for forward compatibility
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ProfileDir == "" {
		return fmt.Errorf("profile_dir is required")
	}
	if s.ViewportWidth < 0 || s.ViewportHeight < 0 {
		return fmt.Errorf("viewport dimensions must not be negative")
	}
	return nil
}

// Reset restores the defaults.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *BrowserSection) reset() {
	s.ProfileDir = DefaultProfileDir()
	s.ExecutablePath = ""
	s.Channel = ""
	s.Headless = false
	s.ViewportWidth = browser.DefaultViewportWidth
	s.ViewportHeight = browser.DefaultViewportHeight
	s.ClipboardOrigin = ""
	s.BlockedResources = append([]string(nil), browser.DefaultBlockedResources...)
	s.SkipInstall = false
}

// LaunchOptions converts the section to browser launch options.
func (s *BrowserSection) LaunchOptions() browser.LaunchOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opts := browser.LaunchOptions{
		ProfileDir:       s.ProfileDir,
		ExecutablePath:   s.ExecutablePath,
		Channel:          s.Channel,
		Headless:         s.Headless,
		ClipboardOrigin:  s.ClipboardOrigin,
		BlockedResources: append([]string{}, s.BlockedResources...),
	}
	if s.ViewportWidth > 0 && s.ViewportHeight > 0 {
		opts.Viewport = &browser.Viewport{Width: s.ViewportWidth, Height: s.ViewportHeight}
	}
	return opts
}
