package portal

import (
	"strings"
	"time"

	"github.com/hpungsan/tangent/internal/config"
	"github.com/hpungsan/tangent/internal/editor"
	"github.com/hpungsan/tangent/internal/errors"
	"github.com/hpungsan/tangent/internal/notify"
	"github.com/hpungsan/tangent/internal/store"
)

const noticeDuration = 3 * time.Second

// Coordinator owns the portal lifecycle. It is the single owner of the live
// session: every event source goes through its methods, which run to
// completion within one event-loop turn, so phase checks and updates can
// never interleave. All failures are caught here; nothing propagates to the
// host beyond a notification and a clean return to idle.
type Coordinator struct {
	surface  editor.Surface
	store    store.Store
	sink     notify.Sink
	cfg      *config.Config
	marker   *Marker
	ids      *Generator
	detector *Detector
	session  *Session
	observer func(Event)
}

// NewCoordinator creates a Coordinator over the given collaborators.
func NewCoordinator(surface editor.Surface, st store.Store, sink notify.Sink, cfg *config.Config) *Coordinator {
	if sink == nil {
		sink = notify.Discard
	}
	return &Coordinator{
		surface:  surface,
		store:    st,
		sink:     sink,
		cfg:      cfg,
		marker:   NewMarker(cfg.MarkerGlyph),
		ids:      NewGenerator(),
		detector: NewDetector(cfg.Trigger, time.Duration(cfg.TriggerWindowMs)*time.Millisecond),
	}
}

// Detector exposes the trigger detector, mainly so tests can inject a clock.
func (c *Coordinator) Detector() *Detector {
	return c.detector
}

// Marker exposes the door-marker grammar in use.
func (c *Coordinator) Marker() *Marker {
	return c.marker
}

// SetObserver registers a presentation callback invoked on every session
// change. The observer receives pure data; rendering is its own concern.
func (c *Coordinator) SetObserver(fn func(Event)) {
	c.observer = fn
}

// Phase returns the current lifecycle phase.
func (c *Coordinator) Phase() Phase {
	if c.session == nil {
		return PhaseIdle
	}
	return c.session.Phase
}

// Current returns a copy of the live session, if any.
func (c *Coordinator) Current() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Keystroke processes one key event. The host has already applied the
// keystroke to the document; the coordinator only reacts.
//
// With no session live, a freshly completed trigger opens one. While a
// session is live, trigger detection never opens a nested session: a
// completed trigger is the closing signal instead, and the configured
// commit key closes as well.
func (c *Coordinator) Keystroke(key string) {
	cur := c.surface.Cursor()
	fired := c.detector.Keystroke(key, linePrefix(c.surface, cur))

	if c.session == nil {
		if fired {
			c.openFromTrigger(cur)
		}
		return
	}

	if key == c.cfg.CommitKey {
		_ = c.commit(false)
		return
	}
	if fired {
		_ = c.commit(true)
		return
	}
	c.emit()
}

// OpenAtCursor opens a session by explicit command, inserting the door
// marker directly at the cursor. Starting a session while one is open is
// rejected, never silently overwritten.
func (c *Coordinator) OpenAtCursor() error {
	if c.session != nil {
		err := errors.NewSessionActive(c.session.PortalID)
		c.sink.Notify("a tangent is already open", noticeDuration)
		return err
	}
	cur := c.surface.Cursor()
	return c.open(cur, cur)
}

// Commit closes the live session through the standard commit path. Unlike
// the commit-key keystroke, which is a silent no-op when nothing is open,
// this explicit command reports when there is nothing to commit.
func (c *Coordinator) Commit() error {
	if c.session == nil {
		return errors.NewNoSession()
	}
	return c.commit(false)
}

// ActivateDoor re-opens the annotation behind the door marker at pos for
// editing: the stored content is spliced inline after the door, the entry is
// provisionally withdrawn so it cannot be duplicated, and the session reuses
// the door's identifier.
func (c *Coordinator) ActivateDoor(pos editor.Position) error {
	if c.session != nil {
		err := errors.NewSessionActive(c.session.PortalID)
		c.sink.Notify("a tangent is already open", noticeDuration)
		return err
	}

	ref, ok := c.marker.At(c.surface, pos)
	if !ok || c.marker.IsEntryHeaderLine(c.surface, ref.From.Line) {
		return errors.NewInvalidRequest("no door marker at position")
	}

	content, err := c.store.Lookup(ref.PortalID)
	if err != nil {
		c.sink.Notify("tangent content not found", noticeDuration)
		return err
	}
	if err := c.store.Withdraw(ref.PortalID); err != nil {
		c.sink.Notify("could not open tangent for editing", noticeDuration)
		return err
	}

	// The store may live inside this document; re-locate the door after
	// the withdraw rewrite before splicing.
	ref, ok = c.findDoor(ref.PortalID)
	if !ok {
		c.sink.Notify("door marker vanished during edit", noticeDuration)
		return errors.NewConflict("door marker not found after withdraw")
	}

	c.surface.ReplaceRange(content, ref.End, ref.End)
	c.session = &Session{
		PortalID: ref.PortalID,
		Anchor:   ref.End,
		Phase:    PhaseEditing,
	}
	c.emit()
	return nil
}

// openFromTrigger replaces the just-typed trigger text with a door marker.
func (c *Coordinator) openFromTrigger(cur editor.Position) {
	from := editor.Position{Line: cur.Line, Ch: cur.Ch - runeLen(c.cfg.Trigger)}
	if from.Ch < 0 {
		from.Ch = 0
	}
	_ = c.open(from, cur)
}

// open starts a fresh session, replacing [from, to) with a new door marker.
func (c *Coordinator) open(from, to editor.Position) error {
	existing := c.marker.IDs(c.surface.FullText())
	if entries, err := c.store.List(); err == nil {
		for _, e := range entries {
			existing[e.PortalID] = true
		}
	}

	id, err := c.ids.Unique(existing)
	if err != nil {
		c.sink.Notify("could not open tangent", noticeDuration)
		return err
	}

	c.surface.ReplaceRange(c.marker.Encode(id), from, to)
	c.session = &Session{
		PortalID: id,
		Anchor:   c.surface.Cursor(),
		Phase:    PhaseOpen,
	}
	c.emit()
	return nil
}

// commit extracts the captured span and reconciles it with the store.
// stripTrigger removes a just-typed closing trigger before extraction.
func (c *Coordinator) commit(stripTrigger bool) error {
	if c.session == nil {
		return nil
	}
	s := c.session

	cur := c.surface.Cursor()
	if stripTrigger {
		from := editor.Position{Line: cur.Line, Ch: cur.Ch - runeLen(c.cfg.Trigger)}
		if from.Ch < 0 {
			from.Ch = 0
		}
		c.surface.ReplaceRange("", from, cur)
		cur = c.surface.Cursor()
	}

	content, extractErr := Extract(c.surface, s.Anchor, cur)
	if extractErr != nil {
		// The document changed under the session. Degrade to an empty
		// capture rather than risking a bad splice.
		c.sink.Notify("tangent was disturbed by another edit; capture abandoned", noticeDuration)
		content = ""
	}

	if strings.TrimSpace(content) == "" {
		c.closeEmpty(s, cur, extractErr == nil)
		return nil
	}

	if err := c.store.Upsert(s.PortalID, content); err != nil {
		// Never leave a door pointing at an entry that was not actually
		// persisted: drop the door, keep the captured text in place.
		if ref, ok := c.findDoor(s.PortalID); ok {
			c.surface.ReplaceRange(content, ref.From, cur)
		}
		c.clear()
		c.sink.Notify("could not save tangent; text left in place", noticeDuration)
		return err
	}

	// Collapse marker+content back to just the door. The store rewrite may
	// have shifted positions, so locate the door fresh and delete from its
	// end to the remembered span length.
	if ref, ok := c.findDoor(s.PortalID); ok {
		end := contentEnd(ref.End, s.Anchor, cur)
		c.surface.ReplaceRange("", ref.End, end)
		c.surface.SetCursor(ref.End)
	}
	c.clear()
	return nil
}

// closeEmpty handles the empty-capture path: the door is removed entirely
// and no annotation entry survives, leaving the document as if the trigger
// had never been typed.
func (c *Coordinator) closeEmpty(s *Session, cur editor.Position, spanValid bool) {
	if ref, ok := c.findDoor(s.PortalID); ok {
		if spanValid {
			end := contentEnd(ref.End, s.Anchor, cur)
			c.surface.ReplaceRange("", ref.From, end)
		} else {
			c.surface.ReplaceRange("", ref.From, ref.End)
		}
		c.surface.SetCursor(ref.From)
	}
	if s.Phase == PhaseEditing {
		// Emptying a re-opened tangent deletes the annotation.
		_ = c.store.Remove(s.PortalID)
	}
	c.clear()
}

// clear ends the session and reports the idle state.
func (c *Coordinator) clear() {
	c.session = nil
	c.detector.Reset()
	c.emit()
}

// findDoor locates the door marker for id anywhere in the document.
func (c *Coordinator) findDoor(id string) (Ref, bool) {
	for _, ref := range c.marker.Doors(c.surface) {
		if ref.PortalID == id {
			return ref, true
		}
	}
	return Ref{}, false
}

// contentEnd translates the captured span's end so it stays correct after
// the door has been re-located at anchor.
func contentEnd(anchor, oldAnchor, oldEnd editor.Position) editor.Position {
	end := editor.Position{
		Line: anchor.Line + (oldEnd.Line - oldAnchor.Line),
		Ch:   oldEnd.Ch,
	}
	if oldEnd.Line == oldAnchor.Line {
		end.Ch = anchor.Ch + (oldEnd.Ch - oldAnchor.Ch)
	}
	return end
}

// emit reports the current session state to the observer.
func (c *Coordinator) emit() {
	if c.observer == nil {
		return
	}

	ev := Event{Phase: PhaseIdle}
	if c.session != nil {
		ev.Phase = c.session.Phase
		ev.PortalID = c.session.PortalID
		ev.Anchor = c.session.Anchor
		if content, err := Extract(c.surface, c.session.Anchor, c.surface.Cursor()); err == nil {
			ev.Content = content
		}
	}
	c.observer(ev)
}
