package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/studiobridge/pkg/bridge"
	"github.com/entrhq/studiobridge/pkg/completion"
)

// SectionIDTiming is the identifier for the timing section
const SectionIDTiming = "timing"

// TimingSection holds completion detection settings, caller timeouts and
// the queue bound.
type TimingSection struct {
	PollInterval       time.Duration
	StabilityThreshold int
	Ceiling            time.Duration
	PromptMarkers      []string
	Timeouts           bridge.Timeouts
	// MaxQueueDepth bounds pending commands. Zero means unbounded.
	MaxQueueDepth int
	mu            sync.RWMutex
}

// NewTimingSection creates a timing section with default settings.
func NewTimingSection() *TimingSection {
	s := &TimingSection{}
	s.reset()
	return s
}

func (s *TimingSection) ID() string    { return SectionIDTiming }
func (s *TimingSection) Title() string { return "Timing" }
func (s *TimingSection) Description() string {
	return "Completion polling, per-operation timeouts and the command queue bound."
}

// durations maps keys to the duration fields they control.
func (s *TimingSection) durations() map[string]*time.Duration {
	return map[string]*time.Duration{
		"poll_interval":     &s.PollInterval,
		"ceiling":           &s.Ceiling,
		"prompt_timeout":    &s.Timeouts.Prompt,
		"extract_timeout":   &s.Timeouts.Extract,
		"reset_timeout":     &s.Timeouts.Reset,
		"models_timeout":    &s.Timeouts.Models,
		"set_model_timeout": &s.Timeouts.SetModel,
		"state_timeout":     &s.Timeouts.State,
		"launch_timeout":    &s.Timeouts.Launch,
		"attach_chip_wait":  &s.Timeouts.AttachChip,
		"processing_wait":   &s.Timeouts.Processing,
	}
}

// Data returns the current configuration data.
func (s *TimingSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := map[string]interface{}{
		"stability_threshold": s.StabilityThreshold,
		"max_queue_depth":     s.MaxQueueDepth,
	}
	for key, d := range s.durations() {
		data[key] = d.String()
	}
	markers := make([]interface{}, 0, len(s.PromptMarkers))
	for _, m := range s.PromptMarkers {
		markers = append(markers, m)
	}
	data["prompt_markers"] = markers
	return data
}

// SetData updates the configuration from the provided data.
func (s *TimingSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	durations := s.durations()
	for key, value := range data {
		if field, ok := durations[key]; ok {
			d, err := toDuration(key, value)
			if err != nil {
				return err
			}
			*field = d
			continue
		}

		switch key {
		case "stability_threshold":
			n, err := toInt(key, value)
			if err != nil {
				return err
			}
			s.StabilityThreshold = int(n)
		case "max_queue_depth":
			n, err := toInt(key, value)
			if err != nil {
				return err
			}
			s.MaxQueueDepth = int(n)
		case "prompt_markers":
			markers, err := toStringSlice(key, value)
			if err != nil {
				return err
			}
			s.PromptMarkers = markers
		}
	}
	return nil
}

// Validate validates the current configuration.
func (s *TimingSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.PollInterval < 10*time.Millisecond {
		return fmt.Errorf("poll_interval must be at least 10ms, got %s", s.PollInterval)
	}
	if s.StabilityThreshold < 1 {
		return fmt.Errorf("stability_threshold must be at least 1, got %d", s.StabilityThreshold)
	}
	if s.Ceiling <= s.PollInterval {
		return fmt.Errorf("ceiling (%s) must exceed poll_interval (%s)", s.Ceiling, s.PollInterval)
	}
	if s.MaxQueueDepth < 0 {
		return fmt.Errorf("max_queue_depth must not be negative")
	}
	for key, d := range s.durations() {
		if *d < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
	}
	return nil
}

// Reset restores the defaults.
func (s *TimingSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *TimingSection) reset() {
	cfg := completion.DefaultConfig()
	s.PollInterval = cfg.PollInterval
	s.StabilityThreshold = cfg.StabilityThreshold
	s.Ceiling = cfg.Ceiling
	s.PromptMarkers = cfg.PromptMarkers
	s.Timeouts = bridge.DefaultTimeouts()
	s.MaxQueueDepth = 0
}

// DetectorConfig returns the completion detector settings.
func (s *TimingSection) DetectorConfig() completion.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := completion.Config{
		PollInterval:       s.PollInterval,
		StabilityThreshold: s.StabilityThreshold,
		Ceiling:            s.Ceiling,
	}
	if s.PromptMarkers != nil {
		cfg.PromptMarkers = append(make([]string, 0, len(s.PromptMarkers)), s.PromptMarkers...)
	}
	return cfg
}

// BridgeTimeouts returns the per-operation timeouts.
func (s *TimingSection) BridgeTimeouts() bridge.Timeouts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Timeouts
}
