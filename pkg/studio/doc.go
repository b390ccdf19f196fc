// Package studio drives the AI Studio chat UI through a browser.Session.
//
// Driver implements bridge.Page. Selectors and waits are data so a UI
// change can be handled from configuration.
package studio
