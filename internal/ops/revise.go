package ops

import (
	"database/sql"
	"time"

	"github.com/hpungsan/tangent/internal/config"
	"github.com/hpungsan/tangent/internal/errors"
	"github.com/hpungsan/tangent/internal/notify"
	"github.com/hpungsan/tangent/internal/portal"
)

// ReviseInput contains parameters for the Revise operation.
type ReviseInput struct {
	Path     string
	PortalID string
	Script   string // text typed at the end of the re-opened content
}

// ReviseOutput contains the result of the Revise operation.
type ReviseOutput struct {
	PortalID string   `json:"portal_id"`
	Content  string   `json:"content"`
	Notices  []string `json:"notices,omitempty"`
}

// Revise re-opens an existing portal for editing, types the script at the
// end of its content, and commits. The stored entry is overwritten in
// place, never duplicated.
func Revise(database *sql.DB, cfg *config.Config, input ReviseInput) (*ReviseOutput, error) {
	if input.PortalID == "" {
		return nil, errors.NewInvalidRequest("portal_id is required")
	}

	doc, err := LoadDoc(input.Path)
	if err != nil {
		return nil, err
	}

	st, err := OpenStore(database, cfg, doc)
	if err != nil {
		return nil, err
	}

	out := &ReviseOutput{PortalID: input.PortalID}
	sink := notify.Func(func(msg string, _ time.Duration) {
		out.Notices = append(out.Notices, msg)
	})

	coord := portal.NewCoordinator(doc.Buffer, st, sink, cfg)

	marker := portal.NewMarker(cfg.MarkerGlyph)
	var door *portal.Ref
	for _, ref := range marker.Doors(doc.Buffer) {
		if ref.PortalID == input.PortalID {
			door = &ref
			break
		}
	}
	if door == nil {
		return nil, errors.NewNotFound(input.PortalID)
	}

	if err := coord.ActivateDoor(door.From); err != nil {
		return nil, err
	}

	for _, r := range input.Script {
		cur := doc.Buffer.Cursor()
		doc.Buffer.ReplaceRange(string(r), cur, cur)
		coord.Keystroke(string(r))
	}

	if coord.Phase() != portal.PhaseIdle {
		if err := coord.Commit(); err != nil {
			return nil, err
		}
	}

	if content, err := st.Lookup(input.PortalID); err == nil {
		out.Content = content
	}

	if err := doc.Save(); err != nil {
		return nil, err
	}
	return out, nil
}
