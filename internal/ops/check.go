package ops

import (
	"database/sql"

	"github.com/hpungsan/tangent/internal/config"
	"github.com/hpungsan/tangent/internal/portal"
)

// CheckInput contains parameters for the Check operation.
type CheckInput struct {
	Path string
}

// CheckOutput is the invariant audit for one document: every portal should
// have exactly one door and exactly one entry.
type CheckOutput struct {
	Doors          int      `json:"doors"`
	Entries        int      `json:"entries"`
	OrphanDoors    []string `json:"orphan_doors,omitempty"`    // door without entry
	OrphanEntries  []string `json:"orphan_entries,omitempty"`  // entry without door
	DuplicateDoors []string `json:"duplicate_doors,omitempty"` // same id on several doors
	Withdrawn      []string `json:"withdrawn,omitempty"`       // entries awaiting purge
	Clean          bool     `json:"clean"`
}

// Check audits the one-door-one-entry invariant without mutating anything.
func Check(database *sql.DB, cfg *config.Config, input CheckInput) (*CheckOutput, error) {
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

	marker := portal.NewMarker(cfg.MarkerGlyph)
	doors := marker.Doors(doc.Buffer)

	doorCount := make(map[string]int, len(doors))
	for _, d := range doors {
		doorCount[d.PortalID]++
	}
	entryIDs := make(map[string]bool, len(entries))

	out := &CheckOutput{Doors: len(doors), Entries: len(entries)}
	for _, e := range entries {
		entryIDs[e.PortalID] = true
		if e.Withdrawn {
			out.Withdrawn = append(out.Withdrawn, e.PortalID)
		}
		if doorCount[e.PortalID] == 0 {
			out.OrphanEntries = append(out.OrphanEntries, e.PortalID)
		}
	}
	seen := make(map[string]bool, len(doors))
	for _, d := range doors {
		if seen[d.PortalID] {
			continue
		}
		seen[d.PortalID] = true
		if !entryIDs[d.PortalID] {
			out.OrphanDoors = append(out.OrphanDoors, d.PortalID)
		}
		if doorCount[d.PortalID] > 1 {
			out.DuplicateDoors = append(out.DuplicateDoors, d.PortalID)
		}
	}

	out.Clean = len(out.OrphanDoors) == 0 && len(out.OrphanEntries) == 0 &&
		len(out.DuplicateDoors) == 0 && len(out.Withdrawn) == 0
	return out, nil
}
