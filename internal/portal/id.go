package portal

import (
	"crypto/rand"
	"io"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/tangent/internal/errors"
)

// Generator produces link-safe portal identifiers: a lowercased ULID, so
// the charset is lowercase alphanumerics, the time prefix keeps document
// order readable, and the entropy suffix makes collisions impractical.
type Generator struct {
	entropy io.Reader
	now     func() time.Time
}

// NewGenerator creates a Generator with monotonic crypto entropy.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// NewID generates a fresh identifier.
func (g *Generator) NewID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	if err != nil {
		return "", errors.NewInternal(err)
	}
	return strings.ToLower(id.String()), nil
}

// Unique generates an identifier not present in existing. An identifier
// already used anywhere in the document must never be reused.
func (g *Generator) Unique(existing map[string]bool) (string, error) {
	for {
		id, err := g.NewID()
		if err != nil {
			return "", err
		}
		if !existing[id] {
			return id, nil
		}
	}
}
