// Package upload decides whether a local file may be attached to the chat.
package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// DefaultMaxBytes is the default upload size limit.
const DefaultMaxBytes int64 = 50 << 20

// ErrRejected is wrapped by every policy rejection.
var ErrRejected = errors.New("file rejected")

// Rejection describes why a file was refused.
type Rejection struct {
	Path   string
	Reason string
	Err    error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %s: %v", filepath.Base(r.Path), r.Reason, r.Err)
	}
	return fmt.Sprintf("%s: %s", filepath.Base(r.Path), r.Reason)
}

func (r *Rejection) Is(target error) bool {
	return target == ErrRejected
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// Config holds the policy settings.
type Config struct {
	AllowedPatterns []string `json:"allowed_patterns" yaml:"allowed_patterns"`
	DeniedPatterns  []string `json:"denied_patterns" yaml:"denied_patterns"`
	MaxBytes        int64    `json:"max_bytes" yaml:"max_bytes"`
	ValidatePDF     bool     `json:"validate_pdf" yaml:"validate_pdf"`
}

// DefaultConfig allows everything up to DefaultMaxBytes and validates PDFs.
func DefaultConfig() Config {
	return Config{
		MaxBytes:    DefaultMaxBytes,
		ValidatePDF: true,
	}
}

// Info describes an accepted file.
type Info struct {
	Path  string
	Name  string
	Size  int64
	Pages int // PDFs only
}

// Policy checks files against glob rules, a size limit and PDF validity.
type Policy struct {
	matcher     *PatternMatcher
	maxBytes    int64
	validatePDF bool
}

// NewPolicy compiles a policy.
func NewPolicy(cfg Config) (*Policy, error) {
	matcher, err := NewPatternMatcher(cfg.AllowedPatterns, cfg.DeniedPatterns)
	if err != nil {
		return nil, err
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Policy{
		matcher:     matcher,
		maxBytes:    maxBytes,
		validatePDF: cfg.ValidatePDF,
	}, nil
}

// Check stats and validates path. A missing file yields an error wrapping
// os.ErrNotExist; every refusal wraps ErrRejected.
func (p *Policy) Check(path string) (Info, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Info{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Info{}, &Rejection{Path: path, Reason: "is a directory"}
	}

	if !p.matcher.IsAllowed(path) {
		return Info{}, &Rejection{Path: path, Reason: "not allowed by upload patterns"}
	}

	if info.Size() == 0 {
		return Info{}, &Rejection{Path: path, Reason: "file is empty"}
	}
	if info.Size() > p.maxBytes {
		return Info{}, &Rejection{
			Path:   path,
			Reason: fmt.Sprintf("size %d exceeds limit of %d bytes", info.Size(), p.maxBytes),
		}
	}

	result := Info{
		Path: path,
		Name: filepath.Base(path),
		Size: info.Size(),
	}

	if p.validatePDF && IsPDF(path) {
		pages, err := validatePDF(path)
		if err != nil {
			return Info{}, &Rejection{Path: path, Reason: "invalid PDF", Err: err}
		}
		result.Pages = pages
	}

	return result, nil
}

// IsPDF reports whether path has a .pdf extension.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

var disableConfigDir sync.Once

func validatePDF(path string) (int, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ValidateFile(path, conf); err != nil {
		return 0, err
	}
	return api.PageCountFile(path)
}

// PatternMatcher matches file paths against allowed and denied globs.
// Patterns are tried against both the base name and the cleaned full path.
type PatternMatcher struct {
	allowedPatterns []glob.Glob
	deniedPatterns  []glob.Glob
}

// NewPatternMatcher compiles the pattern lists.
func NewPatternMatcher(allowed, denied []string) (*PatternMatcher, error) {
	pm := &PatternMatcher{}

	for _, pattern := range allowed {
		g, err := glob.Compile(pattern, filepath.Separator)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		pm.allowedPatterns = append(pm.allowedPatterns, g)
	}

	for _, pattern := range denied {
		g, err := glob.Compile(pattern, filepath.Separator)
		if err != nil {
			return nil, fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
		pm.deniedPatterns = append(pm.deniedPatterns, g)
	}

	return pm, nil
}

// IsAllowed returns true if the path passes the pattern rules. Denied
// patterns win; an empty allow list allows everything not denied.
func (pm *PatternMatcher) IsAllowed(path string) bool {
	path = filepath.Clean(path)
	base := filepath.Base(path)

	for _, pattern := range pm.deniedPatterns {
		if pattern.Match(path) || pattern.Match(base) {
			return false
		}
	}

	if len(pm.allowedPatterns) == 0 {
		return true
	}

	for _, pattern := range pm.allowedPatterns {
		if pattern.Match(path) || pattern.Match(base) {
			return true
		}
	}

	return false
}
