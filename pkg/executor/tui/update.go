package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/studiobridge/pkg/executor/cli"
	"github.com/entrhq/studiobridge/pkg/types"
)

// Update handles all state updates for the TUI model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd      tea.Cmd
		vpCmd      tea.Cmd
		spinnerCmd tea.Cmd
	)

	m.spinner, spinnerCmd = m.spinner.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)

	case tea.KeyMsg:
		return m.handleKeyPress(msg, spinnerCmd)

	case tea.MouseMsg:
		m.viewport, vpCmd = m.viewport.Update(msg)
		return m, tea.Batch(vpCmd, spinnerCmd)

	case resultMsg:
		m.handleResult(msg)
		return m, spinnerCmd

	case activeModelMsg:
		m.activeModel = msg.name
		return m, spinnerCmd

	case *types.Event:
		m.handleBridgeEvent(msg)
		return m, spinnerCmd
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	return m, tea.Batch(tiCmd, spinnerCmd)
}

func (m *model) handleKeyPress(msg tea.KeyMsg, spinnerCmd tea.Cmd) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyPgUp, tea.KeyPgDown:
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		return m, tea.Batch(vpCmd, spinnerCmd)

	case tea.KeyEnter:
		if msg.Alt {
			m.textarea.InsertString("\n")
			m.updateTextAreaHeight()
			return m, spinnerCmd
		}
		input := strings.TrimSpace(m.textarea.Value())
		if input == "" {
			return m, spinnerCmd
		}
		if m.busy {
			m.appendEntry("", "Still working on the previous request.", statusStyle)
			return m, spinnerCmd
		}
		m.textarea.Reset()
		m.updateTextAreaHeight()
		return m, tea.Batch(m.runInput(input), spinnerCmd)
	}

	var tiCmd tea.Cmd
	m.textarea, tiCmd = m.textarea.Update(msg)
	m.updateTextAreaHeight()
	return m, tea.Batch(tiCmd, spinnerCmd)
}

// start marks the model busy and returns cmd with the spinner running.
func (m *model) start(kind types.CommandKind, cmd tea.Cmd) tea.Cmd {
	m.busy = true
	m.loadingMessage = loadingMessage(kind)
	m.detectorState = ""
	m.recalculateLayout()
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *model) handleResult(msg resultMsg) {
	m.busy = false
	m.detectorState = ""

	switch {
	case msg.err != nil:
		m.appendError(msg.err)
	case msg.answer:
		m.lastAnswer = msg.text
		m.countAnswer(msg.text)
		m.appendEntry("", msg.text, answerStyle)
	default:
		m.appendEntry(msg.title+": ", msg.text, systemStyle)
	}
	if msg.activeModel != "" {
		m.activeModel = msg.activeModel
	}
	m.recalculateLayout()
}

func (m *model) appendEntry(icon, text string, style lipgloss.Style) {
	m.content.WriteString(formatEntry(icon, text, style, m.width-4))
	m.content.WriteString("\n\n")
	m.recalculateLayout()
}

func (m *model) appendError(err error) {
	m.appendEntry("", cli.ErrorText(err), errorStyle)
}

func (m *model) countPrompt(text string) {
	if m.counter != nil {
		m.promptTokens += m.counter.Count(text)
	}
}

func (m *model) countAnswer(text string) {
	if m.counter != nil {
		m.answerTokens += m.counter.Count(text)
	}
}

// calculateViewportHeight computes the viewport height from the current
// layout.
func (m *model) calculateViewportHeight() int {
	headerHeight := 3                      // title + tips + status
	inputHeight := m.textarea.Height() + 2 // textarea height + border
	statusBarHeight := 1
	loadingHeight := 0
	if m.busy {
		loadingHeight = 1
	}

	viewportHeight := m.height - headerHeight - inputHeight - statusBarHeight - loadingHeight
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	return viewportHeight
}

func (m *model) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.viewport.Width = m.width - 4
	m.viewport.Height = m.calculateViewportHeight()
	m.textarea.SetWidth(m.width - 8)
	m.ready = true
	m.recalculateLayout()
	return m, nil
}

func (m *model) recalculateLayout() {
	m.viewport.Height = m.calculateViewportHeight()
	m.viewport.SetContent(m.content.String())
	m.viewport.GotoBottom()
}
