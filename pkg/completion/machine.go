package completion

import (
	"strings"
	"time"
	"unicode/utf8"
)

// State is a completion detector state.
type State int

const (
	Idle State = iota
	Submitted
	Observing
	Stable
	Done
	TimedOut
)

var stateNames = map[State]string{
	Idle:      "idle",
	Submitted: "submitted",
	Observing: "observing",
	Stable:    "stable",
	Done:      "done",
	TimedOut:  "timed_out",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal returns true for Done and TimedOut.
func (s State) Terminal() bool {
	return s == Done || s == TimedOut
}

// Observation is one sample of the target UI.
type Observation struct {
	// Text is the rendered text of the latest response turn.
	Text string
	// InProgress is true while the "generation in progress" affordance is visible.
	InProgress bool
}

// GenerationState is the per-submission bookkeeping. It is reset on Submit.
type GenerationState struct {
	LastObservedLength int
	StableIterations   int
	StartedAt          time.Time
}

// TransitionFunc is called on every state change.
type TransitionFunc func(from, to State)

// Machine is the completion state machine for a single submission.
// It is not safe for concurrent use.
type Machine struct {
	cfg          Config
	prompt       string
	state        State
	gen          GenerationState
	polls        int
	onTransition TransitionFunc
}

// NewMachine creates an idle machine for the given prompt.
func NewMachine(cfg Config, prompt string) *Machine {
	return &Machine{
		cfg:    cfg.withDefaults(),
		prompt: strings.TrimSpace(prompt),
		state:  Idle,
	}
}

// OnTransition registers a hook invoked on each state change.
func (m *Machine) OnTransition(fn TransitionFunc) {
	m.onTransition = fn
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Generation returns a copy of the current generation bookkeeping.
func (m *Machine) Generation() GenerationState {
	return m.gen
}

// Polls returns the number of observations fed to the machine.
func (m *Machine) Polls() int {
	return m.polls
}

// Submit records that the run action was issued.
func (m *Machine) Submit(now time.Time) {
	m.gen = GenerationState{StartedAt: now}
	m.polls = 0
	m.transition(Submitted)
}

// Observe feeds one poll result and returns the resulting state.
func (m *Machine) Observe(obs Observation, now time.Time) State {
	if m.state.Terminal() || m.state == Idle {
		return m.state
	}
	m.polls++

	if m.expired(now) {
		m.transition(TimedOut)
		return m.state
	}
	if m.state == Submitted {
		m.transition(Observing)
	}

	length := utf8.RuneCountInString(obs.Text)
	switch {
	case obs.InProgress, m.isEcho(obs.Text), length != m.gen.LastObservedLength:
		m.gen.StableIterations = 0
	default:
		m.gen.StableIterations++
	}
	m.gen.LastObservedLength = length

	if m.gen.StableIterations >= m.cfg.StabilityThreshold {
		m.transition(Stable)
		m.transition(Done)
	}
	return m.state
}

// Interrupt records a poll that could not read the UI. It counts as an
// unstable poll but still honors the ceiling.
func (m *Machine) Interrupt(now time.Time) State {
	if m.state.Terminal() || m.state == Idle {
		return m.state
	}
	m.polls++
	if m.expired(now) {
		m.transition(TimedOut)
		return m.state
	}
	if m.state == Submitted {
		m.transition(Observing)
	}
	m.gen.StableIterations = 0
	return m.state
}

// Expire forces the machine into TimedOut if the ceiling has passed.
func (m *Machine) Expire(now time.Time) State {
	if !m.state.Terminal() && m.state != Idle && m.expired(now) {
		m.transition(TimedOut)
	}
	return m.state
}

func (m *Machine) expired(now time.Time) bool {
	return now.Sub(m.gen.StartedAt) > m.cfg.Ceiling
}

// isEcho reports whether text is still the caller's own prompt (or a known
// placeholder) rather than the model's answer.
func (m *Machine) isEcho(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	if m.prompt != "" && trimmed == m.prompt {
		return true
	}
	for _, marker := range m.cfg.PromptMarkers {
		if marker != "" && strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}

func (m *Machine) transition(to State) {
	from := m.state
	if from == to {
		return
	}
	m.state = to
	if m.onTransition != nil {
		m.onTransition(from, to)
	}
}
