package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/studiobridge/pkg/completion"
	"github.com/entrhq/studiobridge/pkg/types"
)

// loadingMessage returns the spinner caption for a command kind.
func loadingMessage(kind types.CommandKind) string {
	switch kind {
	case types.CommandPrompt:
		return "Waiting for the model..."
	case types.CommandUploadExtract:
		return "Uploading and extracting..."
	case types.CommandGetModels:
		return "Reading the model list..."
	case types.CommandSetModel:
		return "Switching model..."
	case types.CommandReset:
		return "Opening a new chat..."
	default:
		return "Working..."
	}
}

// stateCaption describes a completion detector state for the status line.
func stateCaption(state string) string {
	switch state {
	case completion.Submitted.String():
		return "Prompt sent"
	case completion.Observing.String():
		return "Model is writing..."
	case completion.Stable.String():
		return "Answer settling..."
	case completion.Done.String():
		return "Extracting answer..."
	case completion.TimedOut.String():
		return "Generation hit the time limit, reading what is there..."
	default:
		return ""
	}
}

// formatTokenCount formats a token count with K/M suffixes for readability
func formatTokenCount(count int) string {
	if count >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(count)/1000000)
	}
	if count >= 1000 {
		return fmt.Sprintf("%.1fK", float64(count)/1000)
	}
	return fmt.Sprintf("%d", count)
}

// formatEntry prefixes text with icon, wraps it to width and styles it.
func formatEntry(icon string, text string, style lipgloss.Style, width int) string {
	wrapWidth := width - 4
	if wrapWidth <= 0 {
		wrapWidth = 80
	}
	return style.Render(wordWrap(icon+text, wrapWidth))
}

// wordWrap wraps text to width runes per line. Blank lines and leading
// indentation are kept so code blocks and lists stay readable.
func wordWrap(text string, width int) string {
	if width <= 0 {
		width = 80
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if utf8.RuneCountInString(line) <= width {
			out = append(out, line)
			continue
		}
		out = append(out, wrapLine(line, width)...)
	}
	return strings.Join(out, "\n")
}

func wrapLine(line string, width int) []string {
	trimmed := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(trimmed)]
	if utf8.RuneCountInString(indent) >= width/2 {
		indent = ""
	}

	var (
		out     []string
		current = indent
	)
	flush := func() {
		if strings.TrimSpace(current) != "" {
			out = append(out, current)
		}
		current = indent
	}

	for _, word := range strings.Fields(trimmed) {
		for utf8.RuneCountInString(word) > width-utf8.RuneCountInString(indent) {
			flush()
			runes := []rune(word)
			n := width - utf8.RuneCountInString(indent)
			out = append(out, indent+string(runes[:n]))
			word = string(runes[n:])
		}
		switch {
		case current == indent:
			current = indent + word
		case utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) > width:
			flush()
			current = indent + word
		default:
			current += " " + word
		}
	}
	flush()
	return out
}

// updateTextAreaHeight grows the input box with its content, up to
// MaxHeight.
func (m *model) updateTextAreaHeight() {
	value := m.textarea.Value()
	if value == "" {
		if m.textarea.Height() != 1 {
			m.textarea.SetHeight(1)
			m.recalculateLayout()
		}
		return
	}

	// Account for prompt width ("> " = 2 chars)
	effectiveWidth := m.textarea.Width() - 2
	if effectiveWidth <= 0 {
		effectiveWidth = 78
	}

	visualLines := 0
	for _, line := range strings.Split(value, "\n") {
		n := (utf8.RuneCountInString(line) + effectiveWidth - 1) / effectiveWidth
		if n == 0 {
			n = 1
		}
		visualLines += n
	}

	if visualLines > m.textarea.MaxHeight {
		visualLines = m.textarea.MaxHeight
	}
	if visualLines != m.textarea.Height() {
		m.textarea.SetHeight(visualLines)
		m.recalculateLayout()
	}
}
