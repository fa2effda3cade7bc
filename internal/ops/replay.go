package ops

import (
	"database/sql"
	"time"

	"github.com/hpungsan/tangent/internal/config"
	"github.com/hpungsan/tangent/internal/editor"
	"github.com/hpungsan/tangent/internal/notify"
	"github.com/hpungsan/tangent/internal/portal"
)

// ReplayInput contains parameters for the Replay operation.
type ReplayInput struct {
	Path   string
	Script string // literal text to type; trigger sequences open and close portals

	// At places the cursor before typing. Nil means end of document.
	At *editor.Position
}

// ReplayOutput contains the result of the Replay operation.
type ReplayOutput struct {
	PortalIDs []string `json:"portal_ids"` // portals committed during the replay
	Notices   []string `json:"notices,omitempty"`
}

// Replay drives the full trigger→session→store pipeline by typing a script
// into the document one keystroke at a time, exactly as a host editor would
// deliver it. A session still open when the script ends is committed.
func Replay(database *sql.DB, cfg *config.Config, input ReplayInput) (*ReplayOutput, error) {
	doc, err := LoadDoc(input.Path)
	if err != nil {
		return nil, err
	}

	st, err := OpenStore(database, cfg, doc)
	if err != nil {
		return nil, err
	}

	out := &ReplayOutput{}
	sink := notify.Func(func(msg string, _ time.Duration) {
		out.Notices = append(out.Notices, msg)
	})

	coord := portal.NewCoordinator(doc.Buffer, st, sink, cfg)

	var open string
	coord.SetObserver(func(ev portal.Event) {
		switch ev.Phase {
		case portal.PhaseOpen, portal.PhaseEditing:
			open = ev.PortalID
		case portal.PhaseIdle:
			if open != "" {
				// Empty captures close without creating an entry;
				// only report portals that actually persisted.
				if _, err := st.Lookup(open); err == nil {
					out.PortalIDs = append(out.PortalIDs, open)
				}
				open = ""
			}
		}
	})

	if input.At != nil {
		doc.Buffer.SetCursor(*input.At)
	} else {
		last := doc.Buffer.LineCount() - 1
		line, _ := doc.Buffer.Line(last)
		doc.Buffer.SetCursor(editor.Position{Line: last, Ch: len([]rune(line))})
	}

	for _, r := range input.Script {
		cur := doc.Buffer.Cursor()
		doc.Buffer.ReplaceRange(string(r), cur, cur)
		coord.Keystroke(string(r))
	}

	if coord.Phase() != portal.PhaseIdle {
		// Flush a session the script left open rather than abandoning
		// the capture.
		if err := coord.Commit(); err != nil {
			return nil, err
		}
	}

	if err := doc.Save(); err != nil {
		return nil, err
	}
	return out, nil
}
