package completion

import "time"

// Default detector settings. Four stable polls at 500ms absorb rendering
// jitter; two minutes bounds a single generation.
const (
	DefaultPollInterval       = 500 * time.Millisecond
	DefaultStabilityThreshold = 4
	DefaultCeiling            = 120 * time.Second
)

// DefaultPromptMarkers returns the turn prefixes that mark the echoed user
// turn. The role label sits on its own line above the prompt.
func DefaultPromptMarkers() []string {
	return []string{"User\n"}
}

// Config tunes the detector.
type Config struct {
	// PollInterval is the sampling cadence.
	PollInterval time.Duration
	// StabilityThreshold is the number of consecutive stable polls required.
	StabilityThreshold int
	// Ceiling bounds the whole observation in wall-clock time.
	Ceiling time.Duration
	// PromptMarkers are prefixes of text that is not yet the answer, such
	// as the echoed user turn label. Nil means DefaultPromptMarkers; an
	// empty slice disables marker matching.
	PromptMarkers []string
}

// DefaultConfig returns the default detector configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:       DefaultPollInterval,
		StabilityThreshold: DefaultStabilityThreshold,
		Ceiling:            DefaultCeiling,
		PromptMarkers:      DefaultPromptMarkers(),
	}
}

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.StabilityThreshold <= 0 {
		c.StabilityThreshold = DefaultStabilityThreshold
	}
	if c.Ceiling <= 0 {
		c.Ceiling = DefaultCeiling
	}
	if c.PromptMarkers == nil {
		c.PromptMarkers = DefaultPromptMarkers()
	}
	return c
}
