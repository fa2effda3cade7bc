package ops

import (
	"database/sql"

	"github.com/hpungsan/tangent/internal/config"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	Path string
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged int `json:"purged"`
}

// Purge removes annotation entries left withdrawn by abandoned edit
// sessions, so repeated edit cycles never accumulate dead duplicates.
func Purge(database *sql.DB, cfg *config.Config, input PurgeInput) (*PurgeOutput, error) {
	doc, err := LoadDoc(input.Path)
	if err != nil {
		return nil, err
	}

	st, err := OpenStore(database, cfg, doc)
	if err != nil {
		return nil, err
	}

	purged, err := st.PurgeWithdrawn()
	if err != nil {
		return nil, err
	}

	if err := doc.Save(); err != nil {
		return nil, err
	}

	return &PurgeOutput{Purged: purged}, nil
}
