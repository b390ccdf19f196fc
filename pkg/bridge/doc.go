// Package bridge serializes every interaction with one persistent, logged-in
// browser session behind a command queue.
//
// Callers on any goroutine submit commands through the public operations
// (SendPrompt, ExtractTextFromFile, GetModels, ...). A single worker goroutine
// is the only code that touches the session: it dequeues commands in FIFO
// order, runs each inside a failure boundary, and delivers exactly one result
// per command. Callers wait for their result with an operation-specific
// timeout; a timeout only abandons the wait, never the command once the
// worker has started it.
package bridge
