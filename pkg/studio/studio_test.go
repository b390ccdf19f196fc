package studio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/studiobridge/pkg/extract"
)

func TestDefaultSelectorsComplete(t *testing.T) {
	sel := DefaultSelectors()
	for i, f := range sel.fields() {
		assert.NotEmpty(t, *f, "field %d", i)
	}
}

func TestSelectorsMerge(t *testing.T) {
	base := DefaultSelectors()
	merged := base.Merge(Selectors{
		RunButton:    "button.run",
		CopyMarkdown: "Copy markdown",
	})

	assert.Equal(t, "button.run", merged.RunButton)
	assert.Equal(t, "Copy markdown", merged.CopyMarkdown)
	assert.Equal(t, base.ChatTurn, merged.ChatTurn)
	assert.Equal(t, "ms-run-button button", base.RunButton, "merge must not modify the receiver")
}

func TestCopyLabel(t *testing.T) {
	sel := DefaultSelectors()
	assert.Equal(t, "Copy as markdown", sel.copyLabel(extract.Markdown))
	assert.Equal(t, "Copy as text", sel.copyLabel(extract.Plain))
}

func TestPromptBoxSelector(t *testing.T) {
	assert.Equal(t, `[placeholder*="Start typing a prompt" i]`, DefaultSelectors().promptBox())

	sel := Selectors{PromptPlaceholder: `Say "hi" \ go`}
	assert.Equal(t, `[placeholder*="Say \"hi\" \\ go" i]`, sel.promptBox())
}

func TestNeedsNavigation(t *testing.T) {
	prefix := DefaultSelectors().AppURLPrefix
	tests := []struct {
		url  string
		want bool
	}{
		{"about:blank", true},
		{"https://accounts.google.com/signin", true},
		{"https://aistudio.google.com/app/prompts/new_chat", false},
		{"https://aistudio.google.com/app/prompts/abc123", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, needsNavigation(tt.url, prefix))
		})
	}
	assert.True(t, needsNavigation("https://aistudio.google.com/app", ""))
}

func TestOrigin(t *testing.T) {
	assert.Equal(t, "https://aistudio.google.com", origin("https://aistudio.google.com/app/prompts/new_chat"))
	assert.Equal(t, "", origin("not a url"))
	assert.Equal(t, "", origin(""))
}

func TestWaitsDefaults(t *testing.T) {
	w := Waits{PromptBox: time.Second}.withDefaults()
	assert.Equal(t, time.Second, w.PromptBox)
	assert.Equal(t, DefaultWaits().Navigation, w.Navigation)
	assert.Equal(t, 200*time.Millisecond, w.Clipboard)
}
