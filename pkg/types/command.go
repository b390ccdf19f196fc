package types

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// CommandKind defines the type of work a command asks the bridge worker to do.
type CommandKind string

const (
	CommandPrompt        CommandKind = "prompt"         // CommandPrompt submits a prompt and returns the model's answer.
	CommandUploadExtract CommandKind = "upload_extract" // CommandUploadExtract attaches a local file and asks for its text.
	CommandReset         CommandKind = "reset"          // CommandReset navigates to a fresh conversation.
	CommandGetState      CommandKind = "get_state"      // CommandGetState reads the model list and the active model.
	CommandGetModels     CommandKind = "get_models"     // CommandGetModels reads the selectable model list.
	CommandSetModel      CommandKind = "set_model"      // CommandSetModel selects a model by exact display name.
	CommandLastResponse  CommandKind = "last_response"  // CommandLastResponse re-extracts the latest answer on screen.
	CommandStop          CommandKind = "stop"           // CommandStop is the sentinel that ends the worker loop.
)

// PromptPayload is the payload of a CommandPrompt.
type PromptPayload struct {
	Text string
	// Rich asks for the markdown rendition instead of plain text.
	Rich bool
}

// UploadPayload is the payload of a CommandUploadExtract.
type UploadPayload struct {
	Path        string
	Instruction string
}

// SetModelPayload is the payload of a CommandSetModel.
type SetModelPayload struct {
	Name string
}

// LastResponsePayload is the payload of a CommandLastResponse.
type LastResponsePayload struct {
	Rich bool
}

// Result is the single value delivered on a command's reply channel.
type Result struct {
	Value interface{}
	Err   error
}

// Command is one unit of work for the bridge worker.
// It is immutable once enqueued and is answered exactly once.
type Command struct {
	ID         string
	Kind       CommandKind
	Payload    interface{}
	EnqueuedAt time.Time

	reply     chan Result
	once      sync.Once
	abandoned atomic.Bool
}

// NewCommand creates a command with a fresh single-shot reply channel.
func NewCommand(kind CommandKind, payload interface{}) *Command {
	return &Command{
		ID:         uuid.New().String(),
		Kind:       kind,
		Payload:    payload,
		EnqueuedAt: time.Now(),
		reply:      make(chan Result, 1),
	}
}

// NewPromptCommand creates a prompt command.
func NewPromptCommand(text string, rich bool) *Command {
	return NewCommand(CommandPrompt, PromptPayload{Text: text, Rich: rich})
}

// NewUploadCommand creates an upload-and-extract command.
func NewUploadCommand(path, instruction string) *Command {
	return NewCommand(CommandUploadExtract, UploadPayload{Path: path, Instruction: instruction})
}

// NewSetModelCommand creates a set-model command.
func NewSetModelCommand(name string) *Command {
	return NewCommand(CommandSetModel, SetModelPayload{Name: name})
}

// NewStopCommand creates the stop sentinel.
func NewStopCommand() *Command {
	return NewCommand(CommandStop, nil)
}

// Reply returns the receive side of the reply channel.
func (c *Command) Reply() <-chan Result {
	return c.reply
}

// Resolve delivers the command's result. Only the first call has any effect,
// and it never blocks because the reply channel is buffered.
func (c *Command) Resolve(r Result) bool {
	delivered := false
	c.once.Do(func() {
		c.reply <- r
		delivered = true
	})
	return delivered
}

// Abandon records that the caller stopped waiting for the reply.
func (c *Command) Abandon() {
	c.abandoned.Store(true)
}

// Abandoned reports whether the caller stopped waiting for the reply.
func (c *Command) Abandoned() bool {
	return c.abandoned.Load()
}

// IsStop returns true if this is the stop sentinel.
func (c *Command) IsStop() bool {
	return c.Kind == CommandStop
}
