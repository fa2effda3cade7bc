package ops

import (
	"database/sql"

	"github.com/hpungsan/tangent/internal/config"
	"github.com/hpungsan/tangent/internal/portal"
	"github.com/hpungsan/tangent/internal/store"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Path string
}

// DoorItem is one door marker found in the primary document.
type DoorItem struct {
	PortalID string `json:"portal_id"`
	Line     int    `json:"line"`
	Ch       int    `json:"ch"`
	HasEntry bool   `json:"has_entry"`
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Entries []store.Entry `json:"entries"`
	Doors   []DoorItem    `json:"doors"`
}

// List returns all annotation entries and door markers for a document.
func List(database *sql.DB, cfg *config.Config, input ListInput) (*ListOutput, error) {
	doc, err := LoadDoc(input.Path)
	if err != nil {
		return nil, err
	}

	st, err := OpenStore(database, cfg, doc)
	if err != nil {
		return nil, err
	}

	entries, err := st.List()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]bool, len(entries))
	for _, e := range entries {
		byID[e.PortalID] = true
	}

	marker := portal.NewMarker(cfg.MarkerGlyph)
	var doors []DoorItem
	for _, ref := range marker.Doors(doc.Buffer) {
		doors = append(doors, DoorItem{
			PortalID: ref.PortalID,
			Line:     ref.From.Line,
			Ch:       ref.From.Ch,
			HasEntry: byID[ref.PortalID],
		})
	}

	return &ListOutput{Entries: entries, Doors: doors}, nil
}
