package config

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/entrhq/studiobridge/pkg/studio"
)

// SectionIDSelectors is the identifier for the selectors section
const SectionIDSelectors = "selectors"

// SelectorsSection stores overrides for the chat UI selectors. Only keys
// that differ from the defaults need to be present.
type SelectorsSection struct {
	overrides map[string]string
	mu        sync.RWMutex
}

// NewSelectorsSection creates an empty selectors section.
func NewSelectorsSection() *SelectorsSection {
	return &SelectorsSection{overrides: make(map[string]string)}
}

func (s *SelectorsSection) ID() string    { return SectionIDSelectors }
func (s *SelectorsSection) Title() string { return "Selectors" }
func (s *SelectorsSection) Description() string {
	return "Overrides for the page selectors used to drive the chat UI."
}

// Data returns the current configuration data.
func (s *SelectorsSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := make(map[string]interface{}, len(s.overrides))
	for k, v := range s.overrides {
		data[k] = v
	}
	return data
}

// SetData replaces the overrides. Keys that are not selector names are
// rejected by Validate, not here.
func (s *SelectorsSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	overrides := make(map[string]string, len(data))
	for key, value := range data {
		v, err := toString(key, value)
		if err != nil {
			return err
		}
		overrides[key] = v
	}

	s.mu.Lock()
	s.overrides = overrides
	s.mu.Unlock()
	return nil
}

// Validate rejects keys that do not name a selector.
func (s *SelectorsSection) Validate() error {
	known := knownSelectorKeys()

	s.mu.RLock()
	defer s.mu.RUnlock()
	for key := range s.overrides {
		if !known[key] {
			return fmt.Errorf("unknown selector %q", key)
		}
	}
	return nil
}

// Reset drops all overrides.
func (s *SelectorsSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = make(map[string]string)
}

// Set overrides one selector.
func (s *SelectorsSection) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[key] = value
}

// Selectors returns the default selectors with the overrides applied.
func (s *SelectorsSection) Selectors() (studio.Selectors, error) {
	s.mu.RLock()
	raw, err := json.Marshal(s.overrides)
	s.mu.RUnlock()
	if err != nil {
		return studio.Selectors{}, fmt.Errorf("failed to encode selector overrides: %w", err)
	}

	var o studio.Selectors
	if err := json.Unmarshal(raw, &o); err != nil {
		return studio.Selectors{}, fmt.Errorf("failed to decode selector overrides: %w", err)
	}
	return studio.DefaultSelectors().Merge(o), nil
}

// knownSelectorKeys returns the JSON names of the selector fields.
func knownSelectorKeys() map[string]bool {
	raw, _ := json.Marshal(studio.DefaultSelectors())
	var fields map[string]interface{}
	_ = json.Unmarshal(raw, &fields)

	keys := make(map[string]bool, len(fields))
	for k := range fields {
		keys[k] = true
	}
	return keys
}
