package tui

import (
	"fmt"

	"github.com/entrhq/studiobridge/pkg/types"
)

// handleBridgeEvent updates the status line from worker events.
func (m *model) handleBridgeEvent(event *types.Event) {
	m.logger.Debugf("bridge event %s (command=%s kind=%s)", event.Type, event.CommandID, event.Kind)

	switch event.Type {
	case types.EventTypeSessionReady:
		m.sessionReady = true
	case types.EventTypeSessionFailed:
		m.sessionReady = false
		m.appendEntry("", fmt.Sprintf("Browser session failed: %v", event.Error), errorStyle)
	case types.EventTypeCommandStart:
		if m.busy {
			m.loadingMessage = loadingMessage(event.Kind)
		}
	case types.EventTypeStateTransition:
		m.detectorState = event.To
	case types.EventTypeCommandSkipped:
		m.logger.Infof("command %s skipped after caller gave up", event.CommandID)
	}
}
