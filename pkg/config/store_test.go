package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "config.json", filepath.Base(path))
	assert.Equal(t, ".studiobridge", filepath.Base(filepath.Dir(path)))
}

func TestFileStore_MissingFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.json")

	store, err := NewFileStore(configPath)
	require.NoError(t, err)
	assert.Equal(t, configPath, store.Path())
	assert.Equal(t, FormatJSON, store.Format())
	assert.False(t, store.IsModified())

	all, err := store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = os.Stat(configPath)
	assert.True(t, os.IsNotExist(err), "opening a store must not create the file")
}

func TestFileStore_MalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"sections": {`), 0644))

	_, err := NewFileStore(configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode config file")
}

func TestFileStore_SaveAndReload(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "profiles", "config.json")

	store, err := NewFileStore(configPath)
	require.NoError(t, err)

	require.NoError(t, store.SetSection(SectionIDBrowser, map[string]interface{}{
		"profile_dir": "/var/lib/studiobridge/profile",
		"headless":    true,
	}))
	assert.True(t, store.IsModified())

	require.NoError(t, store.Save())
	assert.False(t, store.IsModified())

	_, err = os.Stat(configPath + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	raw, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{"))
	assert.Contains(t, string(raw), `"version": "1.0"`)

	reloaded, err := NewFileStore(configPath)
	require.NoError(t, err)
	section, err := reloaded.GetSection(SectionIDBrowser)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/studiobridge/profile", section["profile_dir"])
	assert.Equal(t, true, section["headless"])
}

func TestFileStore_LoadDiscardsUnsavedChanges(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	store, err := NewFileStore(configPath)
	require.NoError(t, err)

	require.NoError(t, store.SetSection(SectionIDTiming, map[string]interface{}{"ceiling": "5m"}))
	require.NoError(t, store.Save())

	require.NoError(t, store.SetSection(SectionIDTiming, map[string]interface{}{"ceiling": "1m"}))
	require.NoError(t, store.Load())

	section, _ := store.GetSection(SectionIDTiming)
	assert.Equal(t, "5m", section["ceiling"])
	assert.False(t, store.IsModified())
}

func TestFileStore_CopiesSectionData(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	input := map[string]interface{}{"max_bytes": 1024}
	require.NoError(t, store.SetSection(SectionIDUpload, input))
	input["max_bytes"] = 1

	section, _ := store.GetSection(SectionIDUpload)
	assert.Equal(t, 1024, section["max_bytes"])

	section["max_bytes"] = 2
	again, _ := store.GetSection(SectionIDUpload)
	assert.Equal(t, 1024, again["max_bytes"])

	missing, err := store.GetSection("nope")
	require.NoError(t, err)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)
}

func TestFileStore_SetAllReplacesSections(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	require.NoError(t, store.SetSection(SectionIDSelectors, map[string]interface{}{"run_button": "button.run"}))

	all := map[string]map[string]interface{}{
		SectionIDBrowser: {"channel": "chrome"},
		SectionIDTiming:  {"stability_threshold": 4},
	}
	require.NoError(t, store.SetAll(all))
	all[SectionIDBrowser]["channel"] = "msedge"

	got, err := store.GetAll()
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.NotContains(t, got, SectionIDSelectors)
	assert.Equal(t, "chrome", got[SectionIDBrowser]["channel"])

	got[SectionIDTiming]["stability_threshold"] = 9
	again, _ := store.GetAll()
	assert.Equal(t, 4, again[SectionIDTiming]["stability_threshold"])
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"config.json":        FormatJSON,
		"config.yaml":        FormatYAML,
		"/etc/bridge.YML":    FormatYAML,
		"no-extension":       FormatJSON,
		"settings.yaml.json": FormatJSON,
	}
	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestYAMLStore(t *testing.T) {
	t.Run("round trips sections", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")

		store, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		if store.Format() != FormatYAML {
			t.Fatalf("Expected yaml format, got %s", store.Format())
		}

		if err := store.SetSection("timing", map[string]interface{}{
			"poll_interval":       "250ms",
			"stability_threshold": 3,
		}); err != nil {
			t.Fatalf("SetSection failed: %v", err)
		}
		if err := store.Save(); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		reloaded, err := NewYAMLStore(configPath)
		if err != nil {
			t.Fatalf("NewYAMLStore failed: %v", err)
		}
		section, _ := reloaded.GetSection("timing")
		if section["poll_interval"] != "250ms" {
			t.Errorf("Expected poll_interval=250ms, got %v", section["poll_interval"])
		}
		if section["stability_threshold"] != 3 {
			t.Errorf("Expected stability_threshold=3, got %v (%T)", section["stability_threshold"], section["stability_threshold"])
		}
	})

	t.Run("empty file is an empty config", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yml")
		if err := os.WriteFile(configPath, nil, 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}

		store, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		all, _ := store.GetAll()
		if len(all) != 0 {
			t.Errorf("Expected no sections, got %d", len(all))
		}
	})

	t.Run("requires a path", func(t *testing.T) {
		if _, err := NewYAMLStore(""); err == nil {
			t.Error("Expected error for empty path")
		}
	})
}
