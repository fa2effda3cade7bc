package store

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hpungsan/tangent/internal/editor"
	"github.com/hpungsan/tangent/internal/errors"
)

const withdrawnFlag = "<!--withdrawn-->"

// block is one located entry block inside the document text.
type block struct {
	start     int // byte offset of header line start
	end       int // byte offset after the terminator line (and its newline)
	portalID  string
	content   string
	createdAt int64
	updatedAt int64
	withdrawn bool
}

// SectionStore keeps annotation entries inside a delimited section of the
// primary document itself. The on-document grammar per entry is a header
// line embedding the portal identifier and timestamps, the raw content, and
// a terminating reference line:
//
//	###### 🚪[<id>] <!--<created> <updated>-->
//	<content>
//	^<id>
//
// Reconciliation always replaces the whole block, header through terminator,
// and preserves every byte outside the edited span.
type SectionStore struct {
	surface editor.Surface
	glyph   string
	header  string

	headerRe  *regexp.Regexp
	sectionRe *regexp.Regexp

	now func() int64
}

// NewSectionStore creates a SectionStore over the given surface.
func NewSectionStore(surface editor.Surface, glyph, header string) *SectionStore {
	quoted := regexp.QuoteMeta(glyph)
	return &SectionStore{
		surface: surface,
		glyph:   glyph,
		header:  header,
		headerRe: regexp.MustCompile(
			`(?m)^###### ` + quoted + `\[([a-z0-9][a-z0-9-]*)\] <!--(\d+) (\d+)-->( ` +
				regexp.QuoteMeta(withdrawnFlag) + `)?[ \t]*$`),
		sectionRe: regexp.MustCompile(`(?m)^## ` + regexp.QuoteMeta(header) + `[ \t]*$`),
		now:       func() int64 { return time.Now().Unix() },
	}
}

// SetClock overrides the timestamp source. Tests use this for stable output.
func (s *SectionStore) SetClock(now func() int64) {
	s.now = now
}

// Upsert creates or replaces the entry for portalID.
func (s *SectionStore) Upsert(portalID, content string) error {
	if err := validateID(portalID); err != nil {
		return err
	}

	text := s.surface.FullText()
	blocks := s.findBlocks(text, portalID)

	if len(blocks) > 0 {
		// Replace the first block in place, whole span. Stray duplicates
		// from aborted sessions go too, back to front so earlier offsets
		// stay valid.
		for i := len(blocks) - 1; i >= 1; i-- {
			text = text[:blocks[i].start] + text[blocks[i].end:]
		}
		b := blocks[0]
		entry := s.encodeBlock(portalID, content, b.createdAt, s.now(), false)
		text = text[:b.start] + entry + text[b.end:]
		s.surface.SetFullText(text)
		return nil
	}

	text, insertAt := s.ensureSection(text)
	entry := s.encodeBlock(portalID, content, s.now(), s.now(), false)
	text = spliceEntry(text, insertAt, entry)

	s.surface.SetFullText(text)
	return nil
}

// Remove deletes the entry for portalID. Missing entries are a no-op.
func (s *SectionStore) Remove(portalID string) error {
	if err := validateID(portalID); err != nil {
		return err
	}

	text := s.surface.FullText()
	blocks := s.findBlocks(text, portalID)
	if len(blocks) == 0 {
		return nil
	}
	for i := len(blocks) - 1; i >= 0; i-- {
		text = text[:blocks[i].start] + text[blocks[i].end:]
	}
	s.surface.SetFullText(text)
	return nil
}

// Lookup returns the stored content for portalID.
func (s *SectionStore) Lookup(portalID string) (string, error) {
	if err := validateID(portalID); err != nil {
		return "", err
	}

	blocks := s.findBlocks(s.surface.FullText(), portalID)
	if len(blocks) == 0 {
		return "", errors.NewNotFound(portalID)
	}
	return blocks[0].content, nil
}

// Withdraw flags the entry for portalID.
func (s *SectionStore) Withdraw(portalID string) error {
	if err := validateID(portalID); err != nil {
		return err
	}

	text := s.surface.FullText()
	blocks := s.findBlocks(text, portalID)
	if len(blocks) == 0 {
		return errors.NewNotFound(portalID)
	}

	b := blocks[0]
	if b.withdrawn {
		return nil
	}
	entry := s.encodeBlock(b.portalID, b.content, b.createdAt, b.updatedAt, true)
	text = text[:b.start] + entry + text[b.end:]
	s.surface.SetFullText(text)
	return nil
}

// List returns all entries in document order.
func (s *SectionStore) List() ([]Entry, error) {
	blocks := s.findBlocks(s.surface.FullText(), "")
	entries := make([]Entry, 0, len(blocks))
	for _, b := range blocks {
		entries = append(entries, Entry{
			PortalID:  b.portalID,
			Content:   b.content,
			Withdrawn: b.withdrawn,
			CreatedAt: b.createdAt,
			UpdatedAt: b.updatedAt,
		})
	}
	return entries, nil
}

// PurgeWithdrawn deletes all withdrawn blocks.
func (s *SectionStore) PurgeWithdrawn() (int, error) {
	text := s.surface.FullText()
	blocks := s.findBlocks(text, "")

	purged := 0
	for i := len(blocks) - 1; i >= 0; i-- {
		if !blocks[i].withdrawn {
			continue
		}
		text = text[:blocks[i].start] + text[blocks[i].end:]
		purged++
	}
	if purged > 0 {
		s.surface.SetFullText(text)
	}
	return purged, nil
}

// encodeBlock renders one entry block, including the trailing newline.
func (s *SectionStore) encodeBlock(portalID, content string, created, updated int64, withdrawn bool) string {
	header := fmt.Sprintf("###### %s[%s] <!--%d %d-->", s.glyph, portalID, created, updated)
	if withdrawn {
		header += " " + withdrawnFlag
	}
	return header + "\n" + content + "\n^" + portalID + "\n"
}

// findBlocks locates entry blocks by scanning header lines. An empty
// portalID matches every block. Results are in document order.
func (s *SectionStore) findBlocks(text, portalID string) []block {
	matches := s.headerRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var blocks []block
	for i, match := range matches {
		// match indices: [fullStart, fullEnd, idStart, idEnd,
		// createdStart, createdEnd, updatedStart, updatedEnd,
		// flagStart, flagEnd]
		id := text[match[2]:match[3]]
		if portalID != "" && id != portalID {
			continue
		}

		// The block runs through its terminator line. A missing
		// terminator (aborted write) falls back to the next header or
		// end of text, so the malformed block still gets replaced whole.
		limit := len(text)
		if i+1 < len(matches) {
			limit = matches[i+1][0]
		}
		contentStart := match[1]
		if contentStart < len(text) && text[contentStart] == '\n' {
			contentStart++
		}

		end, contentEnd := findTerminator(text, contentStart, limit, id)

		blocks = append(blocks, block{
			start:     match[0],
			end:       end,
			portalID:  id,
			content:   text[contentStart:contentEnd],
			createdAt: parseUnix(text[match[4]:match[5]]),
			updatedAt: parseUnix(text[match[6]:match[7]]),
			withdrawn: match[8] >= 0,
		})
	}
	return blocks
}

// findTerminator scans [from, limit) for the line "^<id>" and returns the
// byte offset after that line plus the offset where content ends (before
// the newline preceding the terminator).
func findTerminator(text string, from, limit int, id string) (end, contentEnd int) {
	needle := "^" + id
	search := text[from:limit]

	offset := 0
	for {
		idx := strings.Index(search[offset:], needle)
		if idx < 0 {
			// Malformed block: no terminator. Treat everything up to
			// the limit as block body.
			return limit, trimOneNewline(text, from, limit)
		}
		idx += offset

		lineStart := idx == 0 || search[idx-1] == '\n'
		lineEnd := idx + len(needle)
		atLineEnd := lineEnd == len(search) || search[lineEnd] == '\n'
		if lineStart && atLineEnd {
			end = from + lineEnd
			if end < limit && text[end] == '\n' {
				end++
			}
			contentEnd = from + idx
			if contentEnd > from {
				contentEnd-- // strip the newline separating content from terminator
			}
			return end, contentEnd
		}
		offset = lineEnd
	}
}

// trimOneNewline returns limit backed off over a single trailing newline.
func trimOneNewline(text string, from, limit int) int {
	if limit > from && text[limit-1] == '\n' {
		return limit - 1
	}
	return limit
}

// ensureSection guarantees the annotation section exists and returns the
// byte offset where a new entry block should be inserted: the end of the
// section's content, before any following h1/h2 heading. Stored content may
// itself contain heading-like lines, so offsets inside an entry block never
// count as the section heading or as the section end.
func (s *SectionStore) ensureSection(text string) (string, int) {
	blocks := s.findBlocks(text, "")

	loc := s.sectionHeading(text, blocks)
	if loc == nil {
		if text != "" && !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		text += "\n## " + s.header + "\n"
		return text, len(text)
	}

	contentStart := loc[1]
	if contentStart < len(text) && text[contentStart] == '\n' {
		contentStart++
	}

	if next := nextTopHeading(text, contentStart, blocks); next >= 0 {
		return text, next
	}
	return text, len(text)
}

// sectionHeading locates the annotation section heading, skipping matches
// that fall inside an entry block.
func (s *SectionStore) sectionHeading(text string, blocks []block) []int {
	for _, loc := range s.sectionRe.FindAllStringIndex(text, -1) {
		if !insideBlock(loc[0], blocks) {
			return loc
		}
	}
	return nil
}

// nextTopHeadingRe matches an h1 or h2 heading at the start of a line.
var nextTopHeadingRe = regexp.MustCompile(`(?m)^##? `)

// nextTopHeading returns the offset of the next h1/h2 heading at or after
// from that lies outside every entry block, or -1.
func nextTopHeading(text string, from int, blocks []block) int {
	for _, loc := range nextTopHeadingRe.FindAllStringIndex(text[from:], -1) {
		at := from + loc[0]
		if insideBlock(at, blocks) {
			continue
		}
		return at
	}
	return -1
}

// insideBlock reports whether the offset falls within an entry block span.
func insideBlock(at int, blocks []block) bool {
	for _, b := range blocks {
		if at >= b.start && at < b.end {
			return true
		}
	}
	return false
}

// spliceEntry inserts an entry block at the given offset, keeping the block
// on lines of its own.
func spliceEntry(text string, at int, entry string) string {
	before := text[:at]
	after := text[at:]

	if before != "" && !strings.HasSuffix(before, "\n") {
		entry = "\n" + entry
	}
	if after != "" && !strings.HasPrefix(after, "\n") {
		entry += "\n"
	}
	return before + entry + after
}

// validateID rejects identifiers outside the link-safe charset.
func validateID(portalID string) error {
	if portalID == "" {
		return errors.NewInvalidRequest("portal_id is required")
	}
	if !idRe.MatchString(portalID) {
		return errors.NewInvalidRequest("portal_id must be lowercase alphanumerics and hyphens")
	}
	return nil
}

var idRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// parseUnix parses a decimal Unix timestamp, tolerating garbage as zero.
func parseUnix(s string) int64 {
	var v int64
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		v = v*10 + int64(c-'0')
	}
	return v
}
