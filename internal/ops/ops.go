// Package ops implements the file-level operations behind the CLI, the MCP
// server, and the web viewer. Each operation loads the primary document into
// an in-memory buffer, runs against the configured annotation backend, and
// writes the document back only when it changed.
package ops

import (
	"database/sql"
	"os"
	"strings"

	"github.com/hpungsan/tangent/internal/config"
	"github.com/hpungsan/tangent/internal/editor"
	"github.com/hpungsan/tangent/internal/errors"
	"github.com/hpungsan/tangent/internal/store"
)

// Doc couples a primary document file with its in-memory buffer.
type Doc struct {
	Path     string
	Buffer   *editor.Buffer
	original string
}

// LoadDoc reads the document at path into a buffer.
func LoadDoc(path string) (*Doc, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.NewInvalidRequest("file is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInvalidRequest("document not found: " + path)
		}
		return nil, errors.NewInternal(err)
	}

	text := string(data)
	return &Doc{
		Path:     path,
		Buffer:   editor.NewBuffer(text),
		original: text,
	}, nil
}

// Save writes the buffer back to disk if its content changed.
func (d *Doc) Save() error {
	text := d.Buffer.FullText()
	if text == d.original {
		return nil
	}
	if err := os.WriteFile(d.Path, []byte(text), 0644); err != nil {
		return errors.NewInternal(err)
	}
	d.original = text
	return nil
}

// Changed reports whether the buffer diverged from what was loaded.
func (d *Doc) Changed() bool {
	return d.Buffer.FullText() != d.original
}

// OpenStore builds the annotation store for a document per configuration.
// database may be nil when the section backend is selected.
func OpenStore(database *sql.DB, cfg *config.Config, d *Doc) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendSection:
		return store.NewSectionStore(d.Buffer, cfg.MarkerGlyph, cfg.SectionHeader), nil
	case config.BackendSQLite:
		if database == nil {
			return nil, errors.NewInvalidRequest("sqlite backend requires an initialized database")
		}
		return store.NewSQLiteStore(database, store.DocKey(d.Path)), nil
	default:
		return nil, errors.NewInvalidRequest("unknown backend: " + cfg.Backend)
	}
}
