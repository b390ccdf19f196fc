package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/entrhq/studiobridge/pkg/completion"
	"github.com/entrhq/studiobridge/pkg/extract"
)

// fakeSession is an in-memory chat UI. Answers are "answer: <prompt>"
// unless respond is set.
type fakeSession struct {
	mu sync.Mutex

	// log records every UI action in order, e.g. "submit:hello", "observe:hello".
	log []string

	respond       func(prompt string) string
	progressPolls int
	alwaysBusy    bool

	current   string
	answer    string
	pollsLeft int

	copyErr   error
	htmlErr   error
	rawText   string
	submitErr error
	panicOn   string

	// gate, when set, blocks Submit until it is closed.
	gate      chan struct{}
	submitted chan string

	models     []string
	active     string
	activeErr  error
	modelsErr  error
	chooseErr  error
	attachErr  error
	chosen     []string
	dismissals int

	closed atomic.Bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		models: []string{"Gemini Pro", "Gemini Flash"},
		active: "Gemini Pro",
	}
}

func (f *fakeSession) record(entry string) {
	f.mu.Lock()
	f.log = append(f.log, entry)
	f.mu.Unlock()
}

func (f *fakeSession) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

func (f *fakeSession) actionsWithPrefix(prefix string) []string {
	var out []string
	for _, a := range f.actions() {
		if strings.HasPrefix(a, prefix) {
			out = append(out, strings.TrimPrefix(a, prefix))
		}
	}
	return out
}

func (f *fakeSession) NewChat(ctx context.Context) error {
	f.record("new_chat")
	f.mu.Lock()
	f.current = ""
	f.answer = ""
	f.mu.Unlock()
	return ctx.Err()
}

func (f *fakeSession) EnsureApp(ctx context.Context) error {
	f.record("ensure_app")
	return ctx.Err()
}

func (f *fakeSession) Submit(ctx context.Context, text string) error {
	if f.submitted != nil {
		f.submitted <- text
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if f.panicOn != "" && text == f.panicOn {
		panic("submit exploded")
	}
	if f.submitErr != nil {
		return f.submitErr
	}

	f.record("submit:" + text)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = text
	if f.respond != nil {
		f.answer = f.respond(text)
	} else {
		f.answer = "answer: " + text
	}
	f.pollsLeft = f.progressPolls
	return nil
}

func (f *fakeSession) Observe(ctx context.Context) (completion.Observation, error) {
	f.mu.Lock()
	current := f.current
	f.log = append(f.log, "observe:"+current)
	defer f.mu.Unlock()

	if f.alwaysBusy {
		return completion.Observation{Text: f.answer[:len(f.answer)/2], InProgress: true}, nil
	}
	if f.pollsLeft > 0 {
		f.pollsLeft--
		return completion.Observation{Text: current, InProgress: true}, nil
	}
	return completion.Observation{Text: f.answer}, nil
}

func (f *fakeSession) CopyLatest(ctx context.Context, format extract.Format) (string, error) {
	f.record("copy:" + format.String())
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.copyErr != nil {
		return "", f.copyErr
	}
	return f.answer, nil
}

func (f *fakeSession) LatestHTML(ctx context.Context) (string, error) {
	if f.htmlErr != nil {
		return "", f.htmlErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return "<p>" + f.answer + "</p>", nil
}

func (f *fakeSession) LatestText(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rawText != "" {
		return f.rawText, nil
	}
	return f.answer, nil
}

func (f *fakeSession) ChooseFile(ctx context.Context, path string) error {
	f.record("choose_file")
	f.mu.Lock()
	f.chosen = append(f.chosen, path)
	f.mu.Unlock()
	return f.chooseErr
}

func (f *fakeSession) WaitAttached(ctx context.Context, name string) error {
	f.record("wait_attached:" + name)
	return f.attachErr
}

func (f *fakeSession) WaitProcessing(ctx context.Context) error {
	f.record("wait_processing")
	return nil
}

func (f *fakeSession) ModelNames(ctx context.Context) ([]string, error) {
	f.record("model_names")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.modelsErr != nil {
		return nil, f.modelsErr
	}
	return append([]string(nil), f.models...), nil
}

func (f *fakeSession) ActiveModel(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activeErr != nil {
		return "", f.activeErr
	}
	return f.active, nil
}

func (f *fakeSession) SelectModel(ctx context.Context, name string) error {
	f.record("select_model:" + name)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.models {
		if m == name {
			f.active = name
			return nil
		}
	}
	return fmt.Errorf("no option %q: %w", name, ErrModelNotFound)
}

func (f *fakeSession) Dismiss(ctx context.Context) error {
	f.mu.Lock()
	f.dismissals++
	f.mu.Unlock()
	return nil
}

func (f *fakeSession) Close() error {
	f.closed.Store(true)
	return nil
}

// countingLauncher returns session (or err) and counts launches.
type countingLauncher struct {
	session Session
	err     error
	calls   atomic.Int32
}

func (l *countingLauncher) launch(ctx context.Context) (Session, error) {
	l.calls.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	if l.session == nil {
		return nil, errors.New("no session configured")
	}
	return l.session, nil
}
