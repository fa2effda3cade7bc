package ops

import (
	"database/sql"

	"github.com/hpungsan/tangent/internal/config"
	"github.com/hpungsan/tangent/internal/errors"
	"github.com/hpungsan/tangent/internal/store"
)

// LookupInput contains parameters for the Lookup operation.
type LookupInput struct {
	Path     string
	PortalID string
}

// LookupOutput contains the result of the Lookup operation.
type LookupOutput struct {
	Entry store.Entry `json:"entry"`
}

// Lookup returns the annotation entry for one portal identifier.
func Lookup(database *sql.DB, cfg *config.Config, input LookupInput) (*LookupOutput, error) {
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

	entries, err := st.List()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.PortalID == input.PortalID {
			return &LookupOutput{Entry: e}, nil
		}
	}
	return nil, errors.NewNotFound(input.PortalID)
}
