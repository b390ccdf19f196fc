package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func resetGlobal() {
	globalMu.Lock()
	globalManager = nil
	globalMu.Unlock()
}

func TestInitialize(t *testing.T) {
	t.Run("initializes global manager successfully", func(t *testing.T) {
		resetGlobal()
		configPath := filepath.Join(t.TempDir(), "config.json")

		if err := Initialize(configPath); err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}
		if !IsInitialized() {
			t.Error("Global manager should be initialized")
		}

		for _, id := range []string{SectionIDBrowser, SectionIDTiming, SectionIDUpload, SectionIDSelectors} {
			if _, ok := Global().GetSection(id); !ok {
				t.Errorf("%s section not registered", id)
			}
		}
	})

	t.Run("loads existing configuration", func(t *testing.T) {
		resetGlobal()
		configPath := filepath.Join(t.TempDir(), "config.json")
		content := `{
  "version": "1.0",
  "sections": {
    "browser": {"headless": true, "channel": "chrome"},
    "timing": {"poll_interval": "250ms", "stability_threshold": 6, "max_queue_depth": 8}
  }
}`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}

		if err := Initialize(configPath); err != nil {
			t.Fatalf("Initialize failed: %v", err)
		}

		b := GetBrowser()
		if !b.Headless || b.Channel != "chrome" {
			t.Errorf("Browser section not loaded: headless=%t channel=%q", b.Headless, b.Channel)
		}

		timing := GetTiming()
		if timing.PollInterval != 250*time.Millisecond {
			t.Errorf("Expected poll interval 250ms, got %s", timing.PollInterval)
		}
		if timing.StabilityThreshold != 6 {
			t.Errorf("Expected stability threshold 6, got %d", timing.StabilityThreshold)
		}
		if timing.MaxQueueDepth != 8 {
			t.Errorf("Expected queue depth 8, got %d", timing.MaxQueueDepth)
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		resetGlobal()
		configPath := filepath.Join(t.TempDir(), "config.json")
		content := `{"version": "1.0", "sections": {"browser": {"headless": "yes"}}}`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}

		if err := Initialize(configPath); err == nil {
			t.Error("Expected error for non-bool headless")
		}
		if IsInitialized() {
			t.Error("Global manager should stay unset after a failed load")
		}
	})
}

func TestGlobal(t *testing.T) {
	t.Run("panics if not initialized", func(t *testing.T) {
		resetGlobal()

		defer func() {
			if r := recover(); r == nil {
				t.Error("Global should panic when not initialized")
			}
		}()
		Global()
	})

	t.Run("accessors return nil when not initialized", func(t *testing.T) {
		resetGlobal()
		if GetBrowser() != nil || GetTiming() != nil {
			t.Error("Expected nil sections before Initialize")
		}
	})
}

func TestLoad_YAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bridge.yaml")
	content := `version: "1.0"
sections:
  upload:
    denied_patterns: ["**/.ssh/**"]
    max_bytes: 1048576
  selectors:
    run_button: "button.run"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	manager, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	policy := manager.Upload().PolicyConfig()
	if policy.MaxBytes != 1<<20 {
		t.Errorf("Expected max bytes 1MiB, got %d", policy.MaxBytes)
	}
	if len(policy.DeniedPatterns) != 1 || policy.DeniedPatterns[0] != "**/.ssh/**" {
		t.Errorf("Unexpected denied patterns: %v", policy.DeniedPatterns)
	}
	if !policy.ValidatePDF {
		t.Error("validate_pdf should keep its default")
	}

	sel, err := manager.SelectorOverrides().Selectors()
	if err != nil {
		t.Fatalf("Selectors failed: %v", err)
	}
	if sel.RunButton != "button.run" {
		t.Errorf("Expected run button override, got %q", sel.RunButton)
	}
	if sel.ChatTurn == "" {
		t.Error("Selectors without overrides should keep their defaults")
	}
}

func TestGlobalConfig_Persistence(t *testing.T) {
	resetGlobal()
	configPath := filepath.Join(t.TempDir(), "config.json")

	if err := Initialize(configPath); err != nil {
		t.Fatalf("First initialize failed: %v", err)
	}

	GetBrowser().Headless = true
	GetTiming().Ceiling = 90 * time.Second
	Global().SelectorOverrides().Set("text_chunk", "div.chunk")

	if err := Global().SaveAll(); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	resetGlobal()
	if err := Initialize(configPath); err != nil {
		t.Fatalf("Re-initialize failed: %v", err)
	}

	if !GetBrowser().Headless {
		t.Error("headless not persisted")
	}
	if GetTiming().Ceiling != 90*time.Second {
		t.Errorf("ceiling not persisted: %s", GetTiming().Ceiling)
	}
	sel, _ := Global().SelectorOverrides().Selectors()
	if sel.TextChunk != "div.chunk" {
		t.Errorf("selector override not persisted: %q", sel.TextChunk)
	}
}

func TestGlobalConfig_ThreadSafety(t *testing.T) {
	resetGlobal()
	if err := Initialize(filepath.Join(t.TempDir(), "config.json")); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			IsInitialized()
			GetBrowser().LaunchOptions()
			GetTiming().DetectorConfig()
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
