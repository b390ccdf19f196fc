package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/studiobridge/pkg/types"
)

const helpText = `/file <path>   upload a file and extract its text
/models        list available models
/model <name>  switch model
/state         show the bridge state
/reset         start a new chat
/last          show the latest answer again
/rich          toggle markdown answers
/clear         clear the transcript
/quit          exit`

// sendPrompt asks the bridge for an answer.
func (m *model) sendPrompt(text string) tea.Cmd {
	client, ctx, rich := m.client, m.ctx, m.rich
	return func() tea.Msg {
		answer, err := client.SendPrompt(ctx, text, rich)
		return resultMsg{text: answer, err: err, answer: true}
	}
}

func (m *model) extractFile(path string) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		text, err := client.ExtractTextFromFile(ctx, path)
		return resultMsg{text: text, err: err, answer: true}
	}
}

func (m *model) listModels() tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		names, err := client.GetModels(ctx)
		if err == nil && len(names) == 0 {
			return resultMsg{title: "Models", text: "No models found."}
		}
		return resultMsg{title: "Models", text: strings.Join(names, "\n"), err: err}
	}
}

func (m *model) setModel(name string) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		ok, err := client.SetModel(ctx, name)
		if err == nil && !ok {
			err = fmt.Errorf("model %q was not selected", name)
		}
		if err != nil {
			return resultMsg{title: "Model", err: err}
		}
		return resultMsg{title: "Model", text: "Switched to " + name, activeModel: name}
	}
}

func (m *model) showState() tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		state, err := client.GetBridgeState(ctx)
		if err != nil {
			return resultMsg{title: "State", err: err}
		}
		data, err := json.MarshalIndent(state, "", "  ")
		return resultMsg{title: "State", text: string(data), err: err}
	}
}

func (m *model) resetChat() tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		if err := client.Reset(ctx); err != nil {
			return resultMsg{title: "Reset", err: err}
		}
		return resultMsg{title: "Reset", text: "Started a new chat."}
	}
}

func (m *model) lastResponse() tea.Cmd {
	client, ctx, rich := m.client, m.ctx, m.rich
	return func() tea.Msg {
		text, err := client.LastResponse(ctx, rich)
		return resultMsg{text: text, err: err, answer: true}
	}
}

// refreshActiveModel reads the active model for the status bar. Failures
// are ignored.
func (m *model) refreshActiveModel() tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		state, err := client.GetBridgeState(ctx)
		if err != nil || state.Active == nil {
			return nil
		}
		return activeModelMsg{name: *state.Active}
	}
}

// runInput turns one line of input into a bridge call. It returns nil for
// commands handled locally.
func (m *model) runInput(input string) tea.Cmd {
	if !strings.HasPrefix(input, "/") {
		m.appendEntry("> ", input, userStyle)
		m.countPrompt(input)
		return m.start(types.CommandPrompt, m.sendPrompt(input))
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "help":
		m.appendEntry("", helpText, tipsStyle)
	case "file":
		if arg == "" {
			m.appendError(fmt.Errorf("usage: /file <path>"))
			return nil
		}
		m.appendEntry("📎 ", arg, userStyle)
		return m.start(types.CommandUploadExtract, m.extractFile(arg))
	case "models":
		return m.start(types.CommandGetModels, m.listModels())
	case "model":
		if arg == "" {
			m.appendError(fmt.Errorf("usage: /model <name>"))
			return nil
		}
		return m.start(types.CommandSetModel, m.setModel(arg))
	case "state":
		return m.start(types.CommandGetState, m.showState())
	case "reset", "new":
		return m.start(types.CommandReset, m.resetChat())
	case "last":
		return m.start(types.CommandLastResponse, m.lastResponse())
	case "rich":
		m.rich = !m.rich
		m.appendEntry("", fmt.Sprintf("Rich output: %t", m.rich), systemStyle)
	case "clear":
		m.content.Reset()
		m.recalculateLayout()
	case "quit", "exit":
		return tea.Quit
	default:
		m.appendError(fmt.Errorf("unknown command /%s (try /help)", name))
	}
	return nil
}
