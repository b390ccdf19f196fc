// Package browser launches and owns one persistent Chromium context through
// Playwright.
//
// The profile directory is reused across runs so cookies and logins survive
// restarts. A Session wraps the context and its first page and exposes the
// handful of page helpers the chat driver needs; every helper takes a
// context.Context whose deadline is turned into a Playwright timeout.
//
// Playwright objects are not safe for concurrent use. A Session must be
// driven from a single goroutine.
package browser
