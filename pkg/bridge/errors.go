package bridge

import (
	"errors"
	"fmt"
)

// Kind classifies bridge failures.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindTimeout    Kind = "timeout"
	KindExtraction Kind = "extraction"
	KindFatal      Kind = "fatal"
	KindInternal   Kind = "internal"
	KindBrowser    Kind = "browser"
	KindRejected   Kind = "rejected"
)

// Message prefixes. Callers that only see strings match on these.
const (
	PrefixError   = "Error:"
	PrefixBridge  = "Bridge Error:"
	PrefixBrowser = "Browser Error:"
)

// Error is a classified bridge failure. Error() renders the prefixed
// message callers see.
type Error struct {
	Kind    Kind
	Prefix  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Prefix + " " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind and Message, so the sentinels below work
// with errors.Is even after wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

var (
	// ErrFileNotFound is returned when the file to attach does not exist.
	ErrFileNotFound = &Error{Kind: KindNotFound, Prefix: PrefixError, Message: "File not found on server."}
	// ErrTimeout is returned when a caller gave up waiting.
	ErrTimeout = &Error{Kind: KindTimeout, Prefix: PrefixError, Message: "Browser bridge timed out."}
	// ErrExtractionTimeout is ErrTimeout for the file extraction path.
	ErrExtractionTimeout = &Error{Kind: KindTimeout, Prefix: PrefixError, Message: "Browser bridge timed out during extraction."}
	// ErrGenerationTimeout is returned when the answer kept changing until
	// the generation ceiling.
	ErrGenerationTimeout = &Error{Kind: KindTimeout, Prefix: PrefixError, Message: "Browser bridge timed out waiting for the response to finish."}
	// ErrQueueFull is returned when a bounded queue is at capacity.
	ErrQueueFull = &Error{Kind: KindInternal, Prefix: PrefixBridge, Message: "command queue is full"}
	// ErrClosed is returned after Close.
	ErrClosed = &Error{Kind: KindInternal, Prefix: PrefixBridge, Message: "bridge is closed"}
	// ErrModelNotFound is returned by Page.SelectModel when no option matches.
	ErrModelNotFound = errors.New("model not found")
)

// AnyKind returns a sentinel matching every error of kind k.
func AnyKind(k Kind) error {
	return &Error{Kind: k}
}

func newError(kind Kind, prefix string, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Prefix: prefix, Message: fmt.Sprintf(format, args...), Err: err}
}

func fatalError(err error) *Error {
	return newError(KindFatal, PrefixBridge, err, "browser session failed to start: %v", err)
}

func internalError(err error) *Error {
	return newError(KindInternal, PrefixBridge, err, "%v", err)
}

func browserError(err error) *Error {
	return newError(KindBrowser, PrefixBrowser, err, "%v", err)
}

func extractionError(err error) *Error {
	return newError(KindExtraction, PrefixError, err, "%v", err)
}

func attachError(err error) *Error {
	return newError(KindBrowser, PrefixError, err, "Upload/Extract failed: %v", err)
}

func rejectedError(err error) *Error {
	return newError(KindRejected, PrefixError, err, "File rejected: %v", err)
}

func modelNotFoundError(name string) *Error {
	return newError(KindNotFound, PrefixError, ErrModelNotFound, "model %q not found among available models.", name)
}

// KindOf returns the Kind of err, or "" when err is not a bridge error.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

// Message renders a value/error pair as the single string older callers
// expect: the value on success, the prefixed error text on failure.
func Message(value string, err error) string {
	if err == nil {
		return value
	}
	var be *Error
	if errors.As(err, &be) {
		return be.Error()
	}
	return PrefixBridge + " " + err.Error()
}
