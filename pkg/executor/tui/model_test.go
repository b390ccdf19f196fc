package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/studiobridge/pkg/bridge"
	"github.com/entrhq/studiobridge/pkg/types"
)

type stubClient struct {
	answer string
	err    error
	models []string
	active *string
	prompt string
}

func (s *stubClient) SendPrompt(_ context.Context, text string, _ bool) (string, error) {
	s.prompt = text
	return s.answer, s.err
}
func (s *stubClient) ExtractTextFromFile(context.Context, string) (string, error) {
	return s.answer, s.err
}
func (s *stubClient) Reset(context.Context) error { return s.err }
func (s *stubClient) GetModels(context.Context) ([]string, error) {
	return s.models, s.err
}
func (s *stubClient) SetModel(context.Context, string) (bool, error) { return s.err == nil, s.err }
func (s *stubClient) GetBridgeState(context.Context) (bridge.Snapshot, error) {
	return bridge.Snapshot{Models: s.models, Active: s.active}, s.err
}
func (s *stubClient) LastResponse(context.Context, bool) (string, error) { return s.answer, s.err }

func readyModel(client *stubClient) *model {
	m := newModel(context.Background(), client, false)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// drain runs cmd and returns the first resultMsg it produces.
func drain(t *testing.T, cmd tea.Cmd) resultMsg {
	t.Helper()
	require.NotNil(t, cmd)

	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case resultMsg:
			return msg
		case tea.BatchMsg:
			queue = append(queue, msg...)
		}
	}
	t.Fatal("no result message produced")
	return resultMsg{}
}

func TestPromptRoundTrip(t *testing.T) {
	client := &stubClient{answer: "Paris is the capital."}
	m := readyModel(client)

	cmd := m.runInput("capital of France?")
	assert.True(t, m.busy)

	m.Update(drain(t, cmd))
	assert.False(t, m.busy)
	assert.Equal(t, "capital of France?", client.prompt)
	assert.Equal(t, "Paris is the capital.", m.lastAnswer)
	assert.Contains(t, m.content.String(), "Paris is the capital.")
}

func TestErrorsUseBridgePrefix(t *testing.T) {
	m := readyModel(&stubClient{err: bridge.ErrTimeout})

	m.Update(drain(t, m.runInput("slow")))
	assert.Contains(t, m.content.String(), "Error: Browser bridge timed out.")
}

func TestSetModelUpdatesStatus(t *testing.T) {
	m := readyModel(&stubClient{})

	m.Update(drain(t, m.runInput("/model Gemini Pro")))
	assert.Equal(t, "Gemini Pro", m.activeModel)
	assert.Contains(t, m.View(), "model: Gemini Pro")
}

func TestLocalCommands(t *testing.T) {
	m := readyModel(&stubClient{})

	assert.Nil(t, m.runInput("/help"))
	assert.Contains(t, m.content.String(), "/file <path>")

	assert.Nil(t, m.runInput("/rich"))
	assert.True(t, m.rich)

	assert.Nil(t, m.runInput("/clear"))
	assert.Empty(t, m.content.String())

	assert.Nil(t, m.runInput("/file"))
	assert.Contains(t, m.content.String(), "usage: /file <path>")

	assert.Nil(t, m.runInput("/nope"))
	assert.Contains(t, m.content.String(), "unknown command /nope")
}

func TestBridgeEventsDriveStatus(t *testing.T) {
	m := readyModel(&stubClient{})
	m.runInput("hello")

	m.Update(types.NewSessionEvent(types.EventTypeSessionReady, nil))
	assert.True(t, m.sessionReady)

	cmd := types.NewPromptCommand("hello", false)
	m.Update(types.NewTransitionEvent(cmd, "submitted", "observing"))
	assert.Contains(t, m.buildLoadingIndicator(), "Model is writing...")

	m.Update(types.NewSessionEvent(types.EventTypeSessionFailed, errors.New("no chrome")))
	assert.False(t, m.sessionReady)
	assert.Contains(t, m.content.String(), "no chrome")
}

func TestEnterWhileBusyIsRejected(t *testing.T) {
	m := readyModel(&stubClient{})
	m.runInput("first")

	m.textarea.SetValue("second")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "second", m.textarea.Value())
	assert.Contains(t, m.content.String(), "Still working")
}

func TestSinkDropsWhenFull(t *testing.T) {
	e := NewExecutor(&stubClient{})
	sink := e.Sink()
	for i := 0; i < eventBuffer+10; i++ {
		sink(types.NewSessionEvent(types.EventTypeSessionReady, nil))
	}
	assert.Len(t, e.events, eventBuffer)
}

func TestWordWrap(t *testing.T) {
	wrapped := wordWrap("one two three four five", 10)
	for _, line := range strings.Split(wrapped, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 10)
	}
	assert.Equal(t, "a\n\nb", wordWrap("a\n\nb", 10))
	assert.Equal(t, "    code()", wordWrap("    code()", 20))
	assert.Equal(t, "ééééé\nééé", wordWrap("éééééééé", 5))
}

func TestStateCaption(t *testing.T) {
	assert.Equal(t, "Answer settling...", stateCaption("stable"))
	assert.Equal(t, "", stateCaption("idle"))
}
