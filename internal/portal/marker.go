package portal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hpungsan/tangent/internal/editor"
)

// idPattern is the restricted identifier charset: lowercase alphanumerics
// and hyphens, starting with an alphanumeric.
const idPattern = `[a-z0-9][a-z0-9-]*`

// IDRegexp matches a bare portal identifier.
var IDRegexp = regexp.MustCompile(`^` + idPattern + `$`)

// Marker implements the door-marker grammar <glyph>[<portalId>]: a fixed
// glyph followed by the identifier in square brackets, immediately adjacent.
type Marker struct {
	glyph string
	re    *regexp.Regexp
}

// Ref is one located door marker.
type Ref struct {
	PortalID string
	// From is the position of the marker's first rune, End the position
	// immediately after its closing bracket.
	From editor.Position
	End  editor.Position
}

// NewMarker creates a Marker for the given glyph.
func NewMarker(glyph string) *Marker {
	return &Marker{
		glyph: glyph,
		re:    regexp.MustCompile(regexp.QuoteMeta(glyph) + `\[(` + idPattern + `)\]`),
	}
}

// Encode returns the on-document text of a door for the given identifier.
func (m *Marker) Encode(portalID string) string {
	return fmt.Sprintf("%s[%s]", m.glyph, portalID)
}

// Runes returns the rune length of an encoded door.
func (m *Marker) Runes(portalID string) int {
	return len([]rune(m.glyph)) + len(portalID) + 2
}

// ScanLine returns all door markers on one line, in order.
func (m *Marker) ScanLine(line string, lineNo int) []Ref {
	matches := m.re.FindAllStringSubmatchIndex(line, -1)
	if len(matches) == 0 {
		return nil
	}

	refs := make([]Ref, 0, len(matches))
	for _, match := range matches {
		// match indices: [fullStart, fullEnd, idStart, idEnd]
		refs = append(refs, Ref{
			PortalID: line[match[2]:match[3]],
			From:     editor.Position{Line: lineNo, Ch: runeLen(line[:match[0]])},
			End:      editor.Position{Line: lineNo, Ch: runeLen(line[:match[1]])},
		})
	}
	return refs
}

// Scan returns all door markers in the document, in document order.
// Documents are small enough that a linear rescan beats maintaining an
// incremental index; the pattern is anchored to the fixed grammar so
// greedy/overlapping matches cannot occur.
func (m *Marker) Scan(s editor.Surface) []Ref {
	var refs []Ref
	for n := 0; n < s.LineCount(); n++ {
		line, ok := s.Line(n)
		if !ok {
			continue
		}
		refs = append(refs, m.ScanLine(line, n)...)
	}
	return refs
}

// Doors returns the actual door markers in the document, skipping
// identifier occurrences on annotation entry header lines (the section
// backend embeds the same bracketed form there).
func (m *Marker) Doors(s editor.Surface) []Ref {
	var doors []Ref
	for _, ref := range m.Scan(s) {
		if m.IsEntryHeaderLine(s, ref.From.Line) {
			continue
		}
		doors = append(doors, ref)
	}
	return doors
}

// IsEntryHeaderLine reports whether line n is an annotation entry header.
func (m *Marker) IsEntryHeaderLine(s editor.Surface, n int) bool {
	line, ok := s.Line(n)
	if !ok {
		return false
	}
	return strings.HasPrefix(line, "###### "+m.glyph)
}

// At returns the door marker whose span contains pos, if any.
func (m *Marker) At(s editor.Surface, pos editor.Position) (Ref, bool) {
	line, ok := s.Line(pos.Line)
	if !ok {
		return Ref{}, false
	}
	for _, ref := range m.ScanLine(line, pos.Line) {
		if pos.Ch >= ref.From.Ch && pos.Ch < ref.End.Ch {
			return ref, true
		}
	}
	return Ref{}, false
}

// IDs returns the set of portal identifiers present in text. This covers
// both doors and annotation entry blocks, since entry headers embed the
// identifier in the same bracketed form.
func (m *Marker) IDs(text string) map[string]bool {
	ids := make(map[string]bool)
	for _, match := range m.re.FindAllStringSubmatch(text, -1) {
		ids[match[1]] = true
	}
	return ids
}

// runeLen returns the length of s in runes.
func runeLen(s string) int {
	return len([]rune(s))
}

// linePrefix returns the text of the cursor's line up to the cursor column.
func linePrefix(s editor.Surface, pos editor.Position) string {
	line, ok := s.Line(pos.Line)
	if !ok {
		return ""
	}
	r := []rune(line)
	if pos.Ch > len(r) {
		return line
	}
	return string(r[:pos.Ch])
}
