package config

import (
	"sync"
)

var (
	// globalManager is the singleton configuration manager instance
	globalManager *Manager
	globalMu      sync.Mutex
)

// Initialize creates and initializes the global configuration manager.
// This should be called once at application startup. A path ending in
// .yaml or .yml selects the YAML store.
func Initialize(configPath string) error {
	globalMu.Lock()
	defer globalMu.Unlock()

	manager, err := Load(configPath)
	if err != nil {
		return err
	}

	globalManager = manager
	return nil
}

// Load builds a manager with every bridge section registered and loads
// configPath into it. The file need not exist.
func Load(configPath string) (*Manager, error) {
	store, err := NewFileStore(configPath)
	if err != nil {
		return nil, err
	}

	manager := NewManager(store)
	for _, section := range []Section{
		NewBrowserSection(),
		NewTimingSection(),
		NewUploadSection(),
		NewSelectorsSection(),
	} {
		if err := manager.RegisterSection(section); err != nil {
			return nil, err
		}
	}

	if err := manager.LoadAll(); err != nil {
		return nil, err
	}
	return manager, nil
}

// Global returns the global configuration manager.
// Panics if Initialize has not been called.
func Global() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalManager == nil {
		panic("config not initialized: call config.Initialize first")
	}

	return globalManager
}

// IsInitialized returns true if the global configuration has been initialized.
func IsInitialized() bool {
	globalMu.Lock()
	defer globalMu.Unlock()
	return globalManager != nil
}

// sectionOf returns m's section id as T, or nil.
func sectionOf[T Section](m *Manager, id string) T {
	var zero T
	if m == nil {
		return zero
	}
	section, ok := m.GetSection(id)
	if !ok {
		return zero
	}
	typed, ok := section.(T)
	if !ok {
		return zero
	}
	return typed
}

// Browser returns the browser section of m.
func (m *Manager) Browser() *BrowserSection {
	return sectionOf[*BrowserSection](m, SectionIDBrowser)
}

// Timing returns the timing section of m.
func (m *Manager) Timing() *TimingSection {
	return sectionOf[*TimingSection](m, SectionIDTiming)
}

// Upload returns the upload section of m.
func (m *Manager) Upload() *UploadSection {
	return sectionOf[*UploadSection](m, SectionIDUpload)
}

// SelectorOverrides returns the selectors section of m.
func (m *Manager) SelectorOverrides() *SelectorsSection {
	return sectionOf[*SelectorsSection](m, SectionIDSelectors)
}

// GetBrowser returns the browser section from global config.
// Returns nil if config is not initialized.
func GetBrowser() *BrowserSection {
	if !IsInitialized() {
		return nil
	}
	return Global().Browser()
}

// GetTiming returns the timing section from global config.
// Returns nil if config is not initialized.
func GetTiming() *TimingSection {
	if !IsInitialized() {
		return nil
	}
	return Global().Timing()
}
