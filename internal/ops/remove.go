package ops

import (
	"database/sql"

	"github.com/hpungsan/tangent/internal/config"
	"github.com/hpungsan/tangent/internal/errors"
	"github.com/hpungsan/tangent/internal/portal"
)

// RemoveInput contains parameters for the Remove operation.
type RemoveInput struct {
	Path     string
	PortalID string
}

// RemoveOutput contains the result of the Remove operation.
type RemoveOutput struct {
	PortalID    string `json:"portal_id"`
	DoorRemoved bool   `json:"door_removed"`
}

// Remove deletes a portal completely: its annotation entry and its door
// marker in the primary document.
func Remove(database *sql.DB, cfg *config.Config, input RemoveInput) (*RemoveOutput, error) {
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

	if err := st.Remove(input.PortalID); err != nil {
		return nil, err
	}

	marker := portal.NewMarker(cfg.MarkerGlyph)
	doorRemoved := false
	// Back to front so earlier refs stay valid while deleting.
	doors := marker.Doors(doc.Buffer)
	for i := len(doors) - 1; i >= 0; i-- {
		if doors[i].PortalID != input.PortalID {
			continue
		}
		doc.Buffer.ReplaceRange("", doors[i].From, doors[i].End)
		doorRemoved = true
	}

	if err := doc.Save(); err != nil {
		return nil, err
	}

	return &RemoveOutput{PortalID: input.PortalID, DoorRemoved: doorRemoved}, nil
}
