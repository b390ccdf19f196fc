package upload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestPatternMatcher(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		denied  []string
		path    string
		want    bool
	}{
		{name: "empty allows all", path: "/tmp/a.txt", want: true},
		{name: "allowed by base name", allowed: []string{"*.pdf"}, path: "/docs/report.pdf", want: true},
		{name: "not in allow list", allowed: []string{"*.pdf"}, path: "/docs/report.txt", want: false},
		{name: "denied wins", allowed: []string{"*.pdf"}, denied: []string{"secret*"}, path: "/docs/secret.pdf", want: false},
		{name: "full path pattern", allowed: []string{"/docs/**"}, path: "/docs/sub/a.md", want: true},
		{name: "denied full path", denied: []string{"/etc/**"}, path: "/etc/passwd", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm, err := NewPatternMatcher(tt.allowed, tt.denied)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pm.IsAllowed(tt.path))
		})
	}
}

func TestPatternMatcherInvalid(t *testing.T) {
	_, err := NewPatternMatcher([]string{"[unclosed"}, nil)
	assert.Error(t, err)
}

func TestPolicyCheck(t *testing.T) {
	dir := t.TempDir()
	policy, err := NewPolicy(Config{MaxBytes: 16})
	require.NoError(t, err)

	t.Run("accepts small file", func(t *testing.T) {
		path := writeFile(t, dir, "notes.txt", "hello")
		info, err := policy.Check(path)
		require.NoError(t, err)
		assert.Equal(t, "notes.txt", info.Name)
		assert.Equal(t, int64(5), info.Size)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := policy.Check(filepath.Join(dir, "missing.txt"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, os.ErrNotExist))
		assert.False(t, errors.Is(err, ErrRejected))
	})

	t.Run("too large", func(t *testing.T) {
		path := writeFile(t, dir, "big.txt", strings.Repeat("x", 17))
		_, err := policy.Check(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRejected))
		assert.Contains(t, err.Error(), "exceeds limit")
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeFile(t, dir, "empty.txt", "")
		_, err := policy.Check(path)
		assert.ErrorIs(t, err, ErrRejected)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := policy.Check(dir)
		assert.ErrorIs(t, err, ErrRejected)
	})
}

func TestPolicyDeniedPattern(t *testing.T) {
	dir := t.TempDir()
	policy, err := NewPolicy(Config{DeniedPatterns: []string{"*.key"}})
	require.NoError(t, err)

	path := writeFile(t, dir, "server.key", "secret")
	_, err = policy.Check(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Contains(t, err.Error(), "server.key: not allowed by upload patterns")
}

func TestPolicyRejectsInvalidPDF(t *testing.T) {
	dir := t.TempDir()
	policy, err := NewPolicy(DefaultConfig())
	require.NoError(t, err)

	path := writeFile(t, dir, "broken.pdf", "this is not a pdf")
	_, err = policy.Check(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRejected))
	assert.Contains(t, err.Error(), "invalid PDF")
}

func TestPolicySkipsPDFValidationWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	policy, err := NewPolicy(Config{})
	require.NoError(t, err)

	path := writeFile(t, dir, "broken.pdf", "this is not a pdf")
	info, err := policy.Check(path)
	require.NoError(t, err)
	assert.Equal(t, 0, info.Pages)
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("a.PDF"))
	assert.True(t, IsPDF("/x/y.pdf"))
	assert.False(t, IsPDF("a.txt"))
}
