package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/studiobridge/pkg/executor/cli"
	"github.com/entrhq/studiobridge/pkg/logging"
	"github.com/entrhq/studiobridge/pkg/tokens"
)

// model is the state of the chat view.
type model struct {
	// Bubble Tea components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// Bridge integration
	ctx     context.Context
	client  cli.Client
	counter *tokens.Counter
	logger  *logging.Logger

	// Transcript
	content *strings.Builder

	// Request state
	busy           bool
	loadingMessage string
	detectorState  string
	sessionReady   bool
	lastAnswer     string

	// Settings
	rich        bool
	activeModel string

	// Token totals
	promptTokens int
	answerTokens int

	// Window dimensions
	width  int
	height int
	ready  bool
}

// resultMsg carries the outcome of a bridge call.
type resultMsg struct {
	// title labels system results such as "Models"; empty for answers
	title string
	text  string
	err   error
	// answer is true for model output (counted and kept for /last)
	answer bool
	// activeModel is set when the call changed the model
	activeModel string
}

// activeModelMsg updates the active model shown in the status bar.
type activeModelMsg struct{ name string }

func newModel(ctx context.Context, client cli.Client, rich bool) *model {
	ta := textarea.New()
	ta.Placeholder = "Ask anything, or /help"
	ta.Focus()
	ta.Prompt = "> "
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.MaxHeight = 10
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	return &model{
		viewport: viewport.New(80, 20),
		textarea: ta,
		spinner:  sp,
		ctx:      ctx,
		client:   client,
		logger:   logging.Discard(),
		content:  &strings.Builder{},
		rich:     rich,
	}
}

// Init starts the cursor blink and the spinner.
func (m *model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spinner.Tick, m.refreshActiveModel())
}
