package types

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommand(t *testing.T) {
	cmd := NewPromptCommand("hello", true)

	assert.NotEmpty(t, cmd.ID)
	assert.Equal(t, CommandPrompt, cmd.Kind)
	assert.False(t, cmd.EnqueuedAt.IsZero())

	payload, ok := cmd.Payload.(PromptPayload)
	require.True(t, ok)
	assert.Equal(t, "hello", payload.Text)
	assert.True(t, payload.Rich)
}

func TestCommandIDsAreUnique(t *testing.T) {
	a := NewStopCommand()
	b := NewStopCommand()
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, a.IsStop())
}

func TestCommand_ResolveDeliversOnce(t *testing.T) {
	cmd := NewSetModelCommand("A")

	assert.True(t, cmd.Resolve(Result{Value: true}))
	assert.False(t, cmd.Resolve(Result{Err: errors.New("late")}))

	r := <-cmd.Reply()
	assert.Equal(t, true, r.Value)
	assert.NoError(t, r.Err)

	select {
	case extra := <-cmd.Reply():
		t.Fatalf("unexpected second reply: %+v", extra)
	default:
	}
}

func TestCommand_ResolveConcurrent(t *testing.T) {
	cmd := NewUploadCommand("/tmp/x.pdf", "extract")

	var wg sync.WaitGroup
	delivered := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			delivered <- cmd.Resolve(Result{Value: i})
		}(i)
	}
	wg.Wait()
	close(delivered)

	count := 0
	for d := range delivered {
		if d {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Len(t, cmd.Reply(), 1)
}

func TestCommand_ResolveWithoutReader(t *testing.T) {
	cmd := NewPromptCommand("nobody listens", false)
	cmd.Abandon()

	// Must not block even though no caller is receiving.
	assert.True(t, cmd.Resolve(Result{Value: "discarded"}))
	assert.True(t, cmd.Abandoned())
}

func TestEventHelpers(t *testing.T) {
	cmd := NewPromptCommand("p", false)

	done := NewCommandEvent(EventTypeCommandDone, cmd, nil)
	assert.Equal(t, cmd.ID, done.CommandID)
	assert.Equal(t, CommandPrompt, done.Kind)
	assert.True(t, done.IsTerminal())

	tr := NewTransitionEvent(cmd, "observing", "stable")
	assert.Equal(t, EventTypeStateTransition, tr.Type)
	assert.Equal(t, "observing", tr.From)
	assert.Equal(t, "stable", tr.To)
	assert.False(t, tr.IsTerminal())

	failed := NewSessionEvent(EventTypeSessionFailed, errors.New("boom"))
	assert.EqualError(t, failed.Error, "boom")
}
