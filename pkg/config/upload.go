package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gobwas/glob"

	"github.com/entrhq/studiobridge/pkg/upload"
)

// SectionIDUpload is the identifier for the upload section
const SectionIDUpload = "upload"

// UploadSection holds the rules applied before a file is attached.
type UploadSection struct {
	AllowedPatterns []string
	DeniedPatterns  []string
	MaxBytes        int64
	ValidatePDF     bool
	mu              sync.RWMutex
}

// NewUploadSection creates an upload section with default settings.
func NewUploadSection() *UploadSection {
	s := &UploadSection{}
	s.reset()
	return s
}

func (s *UploadSection) ID() string          { return SectionIDUpload }
func (s *UploadSection) Title() string       { return "Uploads" }
func (s *UploadSection) Description() string { return "Which files may be attached, and how large." }

// Data returns the current configuration data.
func (s *UploadSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"allowed_patterns": stringsToAny(s.AllowedPatterns),
		"denied_patterns":  stringsToAny(s.DeniedPatterns),
		"max_bytes":        s.MaxBytes,
		"validate_pdf":     s.ValidatePDF,
	}
}

// SetData updates the configuration from the provided data.
func (s *UploadSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range data {
		var err error
		switch key {
		case "allowed_patterns":
			s.AllowedPatterns, err = toStringSlice(key, value)
		case "denied_patterns":
			s.DeniedPatterns, err = toStringSlice(key, value)
		case "max_bytes":
			s.MaxBytes, err = toInt(key, value)
		case "validate_pdf":
			s.ValidatePDF, err = toBool(key, value)
		default:
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that every pattern compiles.
func (s *UploadSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.MaxBytes < 0 {
		return fmt.Errorf("max_bytes must not be negative")
	}
	for _, p := range append(append([]string{}, s.AllowedPatterns...), s.DeniedPatterns...) {
		if _, err := glob.Compile(p, filepath.Separator); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}
	return nil
}

// Reset restores the defaults.
func (s *UploadSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *UploadSection) reset() {
	d := upload.DefaultConfig()
	s.AllowedPatterns = nil
	s.DeniedPatterns = nil
	s.MaxBytes = d.MaxBytes
	s.ValidatePDF = d.ValidatePDF
}

// PolicyConfig converts the section to an upload policy configuration.
func (s *UploadSection) PolicyConfig() upload.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return upload.Config{
		AllowedPatterns: append([]string(nil), s.AllowedPatterns...),
		DeniedPatterns:  append([]string(nil), s.DeniedPatterns...),
		MaxBytes:        s.MaxBytes,
		ValidatePDF:     s.ValidatePDF,
	}
}

func stringsToAny(in []string) []interface{} {
	out := make([]interface{}, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}
