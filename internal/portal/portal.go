// Package portal implements the capture lifecycle: trigger detection,
// the session state machine, span extraction, and door-marker handling.
package portal

import "github.com/hpungsan/tangent/internal/editor"

// Phase is the lifecycle state of the session state machine.
type Phase int

const (
	// PhaseIdle means no capture session is live.
	PhaseIdle Phase = iota
	// PhaseOpen means a fresh capture is in progress.
	PhaseOpen
	// PhaseEditing means an existing annotation was re-opened for revision.
	PhaseEditing
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseOpen:
		return "open"
	case PhaseEditing:
		return "editing"
	default:
		return "unknown"
	}
}

// Session is the transient state of one live capture. At most one session
// exists at a time; it is owned exclusively by the Coordinator.
type Session struct {
	// PortalID keys the annotation entry this session will commit to.
	PortalID string

	// Anchor is the position immediately after the door marker, where
	// captured content begins.
	Anchor editor.Position

	// Phase is Open for a fresh capture, Editing for a re-opened one.
	Phase Phase
}

// Event is the pure data callback handed to a presentation layer whenever
// the session changes. Rendering is entirely the consumer's concern.
type Event struct {
	Phase    Phase
	PortalID string
	Anchor   editor.Position
	Content  string // content captured so far, empty outside a session
}
