// Package cli runs bridge operations from a terminal: one-shot commands and
// a line-oriented REPL.
//
// Example usage:
//
//	b := bridge.New(studio.NewLauncher(manager, opts, studio.DefaultSelectors(), studio.Waits{}, logger))
//	defer b.Close(context.Background())
//
//	executor := cli.NewExecutor(b, cli.WithRich(true))
//	if err := executor.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/entrhq/studiobridge/pkg/bridge"
)

// Client is the bridge surface the executor drives. *bridge.Bridge
// implements it.
type Client interface {
	SendPrompt(ctx context.Context, text string, rich bool) (string, error)
	ExtractTextFromFile(ctx context.Context, path string) (string, error)
	Reset(ctx context.Context) error
	GetModels(ctx context.Context) ([]string, error)
	SetModel(ctx context.Context, name string) (bool, error)
	GetBridgeState(ctx context.Context) (bridge.Snapshot, error)
	LastResponse(ctx context.Context, rich bool) (string, error)
}

var _ Client = (*bridge.Bridge)(nil)

// Executor prints bridge results to a writer.
type Executor struct {
	client Client
	reader *bufio.Reader
	writer io.Writer

	// Display options
	rich      bool
	copy      bool
	highlight bool
	style     string

	// copyText writes to the host clipboard
	copyText func(string) error
}

// ExecutorOption is a function that configures an Executor.
type ExecutorOption func(*Executor)

// WithWriter sets a custom output writer (default is os.Stdout).
func WithWriter(w io.Writer) ExecutorOption {
	return func(e *Executor) {
		e.writer = w
	}
}

// WithReader sets the REPL input (default is os.Stdin).
func WithReader(r io.Reader) ExecutorOption {
	return func(e *Executor) {
		e.reader = bufio.NewReader(r)
	}
}

// WithRich requests markdown answers.
func WithRich(rich bool) ExecutorOption {
	return func(e *Executor) {
		e.rich = rich
	}
}

// WithCopy copies every answer to the host clipboard.
func WithCopy(copy bool) ExecutorOption {
	return func(e *Executor) {
		e.copy = copy
	}
}

// WithHighlight syntax-highlights markdown answers using style.
func WithHighlight(enabled bool, style string) ExecutorOption {
	return func(e *Executor) {
		e.highlight = enabled
		if style != "" {
			e.style = style
		}
	}
}

// WithClipboard replaces the clipboard writer.
func WithClipboard(fn func(string) error) ExecutorOption {
	return func(e *Executor) {
		e.copyText = fn
	}
}

// NewExecutor creates a new CLI executor for client.
func NewExecutor(client Client, opts ...ExecutorOption) *Executor {
	e := &Executor{
		client:   client,
		reader:   bufio.NewReader(os.Stdin),
		writer:   os.Stdout,
		style:    DefaultStyle,
		copyText: clipboard.WriteAll,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Prompt sends text and prints the answer.
func (e *Executor) Prompt(ctx context.Context, text string) error {
	answer, err := e.client.SendPrompt(ctx, text, e.rich)
	if err != nil {
		return err
	}
	return e.answer(answer)
}

// Extract uploads path and prints the extracted text.
func (e *Executor) Extract(ctx context.Context, path string) error {
	text, err := e.client.ExtractTextFromFile(ctx, path)
	if err != nil {
		return err
	}
	return e.answer(text)
}

// Last prints the most recent answer on the page.
func (e *Executor) Last(ctx context.Context) error {
	text, err := e.client.LastResponse(ctx, e.rich)
	if err != nil {
		return err
	}
	return e.answer(text)
}

// Models prints the available models, marking the active one.
func (e *Executor) Models(ctx context.Context) error {
	names, err := e.client.GetModels(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(e.writer, "No models found.")
		return nil
	}

	var active string
	if state, err := e.client.GetBridgeState(ctx); err == nil && state.Active != nil {
		active = *state.Active
	}
	for _, name := range names {
		marker := "  "
		if name == active {
			marker = "* "
		}
		fmt.Fprintln(e.writer, marker+name)
	}
	return nil
}

// SetModel switches the active model.
func (e *Executor) SetModel(ctx context.Context, name string) error {
	ok, err := e.client.SetModel(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("model %q was not selected", name)
	}
	fmt.Fprintf(e.writer, "Model set to %s\n", name)
	return nil
}

// State prints the model snapshot as JSON.
func (e *Executor) State(ctx context.Context) error {
	state, err := e.client.GetBridgeState(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	fmt.Fprintln(e.writer, string(data))
	return nil
}

// Reset opens a fresh conversation.
func (e *Executor) Reset(ctx context.Context) error {
	if err := e.client.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(e.writer, "Started a new chat.")
	return nil
}

// answer prints text and copies it when enabled. A clipboard failure only
// warns.
func (e *Executor) answer(text string) error {
	if err := e.render(text); err != nil {
		return err
	}
	if e.copy {
		if err := e.copyText(text); err != nil {
			fmt.Fprintf(e.writer, "Warning: failed to copy to clipboard: %v\n", err)
		}
	}
	return nil
}

// Run starts the REPL. Lines are sent as prompts; lines starting with "/"
// are commands. Returns on "exit", "quit", EOF or ctx cancellation.
func (e *Executor) Run(ctx context.Context) error {
	fmt.Fprintln(e.writer, "Studio Bridge")
	fmt.Fprintln(e.writer, "Type a prompt and press Enter. /help lists commands, 'exit' or 'quit' ends the session.")
	fmt.Fprintln(e.writer)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(e.writer, "> ")
		input, err := e.reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && input != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(e.writer)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		if cmdErr := e.dispatch(ctx, input); cmdErr != nil {
			if errors.Is(cmdErr, context.Canceled) && ctx.Err() != nil {
				return ctx.Err()
			}
			e.printError(cmdErr)
		}
		fmt.Fprintln(e.writer)

		if errors.Is(err, io.EOF) {
			return nil
		}
	}
}

// dispatch runs one REPL line.
func (e *Executor) dispatch(ctx context.Context, input string) error {
	if !strings.HasPrefix(input, "/") {
		return e.Prompt(ctx, input)
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "help":
		e.printHelp()
		return nil
	case "file":
		if arg == "" {
			return errors.New("usage: /file <path>")
		}
		return e.Extract(ctx, arg)
	case "models":
		return e.Models(ctx)
	case "model":
		if arg == "" {
			return errors.New("usage: /model <name>")
		}
		return e.SetModel(ctx, arg)
	case "state":
		return e.State(ctx)
	case "reset", "new":
		return e.Reset(ctx)
	case "last":
		return e.Last(ctx)
	case "rich":
		switch arg {
		case "on", "":
			e.rich = true
		case "off":
			e.rich = false
		default:
			return errors.New("usage: /rich [on|off]")
		}
		fmt.Fprintf(e.writer, "Rich output: %t\n", e.rich)
		return nil
	case "copy":
		e.copy = !e.copy
		fmt.Fprintf(e.writer, "Copy to clipboard: %t\n", e.copy)
		return nil
	default:
		return fmt.Errorf("unknown command /%s (try /help)", name)
	}
}

func (e *Executor) printHelp() {
	fmt.Fprintln(e.writer, "Commands:")
	fmt.Fprintln(e.writer, "  /file <path>   upload a file and extract its text")
	fmt.Fprintln(e.writer, "  /models        list available models")
	fmt.Fprintln(e.writer, "  /model <name>  switch model")
	fmt.Fprintln(e.writer, "  /state         show the active model")
	fmt.Fprintln(e.writer, "  /reset         start a new chat")
	fmt.Fprintln(e.writer, "  /last          print the latest answer again")
	fmt.Fprintln(e.writer, "  /rich [on|off] toggle markdown answers")
	fmt.Fprintln(e.writer, "  /copy          toggle copying answers to the clipboard")
}

// printError prints err in the bridge's "Error: ..." form.
func (e *Executor) printError(err error) {
	fmt.Fprintln(e.writer, ErrorText(err))
}

// ErrorText renders err the way the bridge reports failures. Bridge errors
// go through bridge.Message; local REPL errors get the "Error:" prefix.
func ErrorText(err error) string {
	if bridge.KindOf(err) != "" {
		return bridge.Message("", err)
	}
	return bridge.PrefixError + " " + err.Error()
}
