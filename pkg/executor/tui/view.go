package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the entire TUI interface.
func (m *model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	parts := []string{
		headerStyle.Render("  Studio Bridge"),
		tipsStyle.Render("  Enter to send • Alt+Enter for new line • /help for commands • Ctrl+C to exit"),
		m.buildTopStatus(),
		m.viewport.View(),
	}
	if loading := m.buildLoadingIndicator(); loading != "" {
		parts = append(parts, loading)
	}
	parts = append(parts, m.buildInputBox(), m.buildBottomBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// buildTopStatus shows the session and the active model.
func (m *model) buildTopStatus() string {
	session := "browser starting"
	if m.sessionReady {
		session = "browser ready"
	}
	active := m.activeModel
	if active == "" {
		active = "unknown"
	}
	return statusBarStyle.Render(fmt.Sprintf(" %s • model: %s", session, active))
}

// buildLoadingIndicator renders the spinner while a request is in flight.
func (m *model) buildLoadingIndicator() string {
	if !m.busy {
		return ""
	}
	msg := m.loadingMessage
	if caption := stateCaption(m.detectorState); caption != "" {
		msg = caption
	}
	loadingStyle := lipgloss.NewStyle().
		Foreground(skyBlue).
		Width(m.width-4).
		Padding(0, 2)
	return loadingStyle.Render(fmt.Sprintf("%s %s", m.spinner.View(), msg))
}

func (m *model) buildInputBox() string {
	return inputBoxStyle.Width(m.width - 4).Render(m.textarea.View())
}

// buildBottomBar renders output mode and token totals.
func (m *model) buildBottomBar() string {
	left := "plain"
	if m.rich {
		left = "markdown"
	}
	right := fmt.Sprintf("tokens in %s • out %s", formatTokenCount(m.promptTokens), formatTokenCount(m.answerTokens))

	gap := m.width - len(left) - len(right) - 2
	if gap < 2 {
		gap = 2
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
