// Package editor defines the narrow text-surface contract the portal core
// drives, plus an in-memory line buffer implementing it. A real host editor
// supplies its own Surface; Buffer backs the CLI, servers, and tests.
package editor

import "strings"

// Position is a zero-based document position. Ch counts runes, not bytes,
// so multi-byte glyphs occupy a single column.
type Position struct {
	Line int `json:"line"`
	Ch   int `json:"ch"`
}

// Before reports whether p precedes other in document order.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Ch < other.Ch
}

// Surface is the document-editing capability the core calls through.
// All mutations are single atomic replace-range operations on the host buffer.
type Surface interface {
	Cursor() Position
	SetCursor(pos Position)

	// Line returns the text of line n. ok is false when n is out of range.
	Line(n int) (text string, ok bool)
	SetLine(n int, text string) bool
	LineCount() int

	// ReplaceRange replaces the span [from, to) with text and leaves the
	// cursor at the end of the inserted text.
	ReplaceRange(text string, from, to Position)

	FullText() string
	SetFullText(text string)
}

// Buffer is an in-memory Surface over a slice of lines.
type Buffer struct {
	lines  []string
	cursor Position
}

// NewBuffer creates a Buffer holding the given text.
func NewBuffer(text string) *Buffer {
	b := &Buffer{}
	b.SetFullText(text)
	return b
}

// Cursor returns the current cursor position.
func (b *Buffer) Cursor() Position {
	return b.cursor
}

// SetCursor sets the cursor, clamping to the document bounds.
func (b *Buffer) SetCursor(pos Position) {
	b.cursor = b.clamp(pos)
}

// Line returns the text of line n.
func (b *Buffer) Line(n int) (string, bool) {
	if n < 0 || n >= len(b.lines) {
		return "", false
	}
	return b.lines[n], true
}

// SetLine replaces the text of line n.
func (b *Buffer) SetLine(n int, text string) bool {
	if n < 0 || n >= len(b.lines) {
		return false
	}
	b.lines[n] = text
	b.cursor = b.clamp(b.cursor)
	return true
}

// LineCount returns the number of lines in the buffer.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// ReplaceRange replaces the span [from, to) with text.
// Positions are clamped and reordered if given backwards. The cursor ends up
// immediately after the inserted text.
func (b *Buffer) ReplaceRange(text string, from, to Position) {
	from = b.clamp(from)
	to = b.clamp(to)
	if to.Before(from) {
		from, to = to, from
	}

	head := runePrefix(b.lines[from.Line], from.Ch)
	tail := runeSuffix(b.lines[to.Line], to.Ch)

	inserted := strings.Split(text, "\n")
	inserted[0] = head + inserted[0]
	endCh := runeLen(inserted[len(inserted)-1])
	inserted[len(inserted)-1] += tail

	replaced := make([]string, 0, from.Line+len(inserted)+(len(b.lines)-to.Line-1))
	replaced = append(replaced, b.lines[:from.Line]...)
	replaced = append(replaced, inserted...)
	replaced = append(replaced, b.lines[to.Line+1:]...)
	b.lines = replaced

	b.cursor = Position{Line: from.Line + len(inserted) - 1, Ch: endCh}
}

// FullText returns the entire buffer joined by newlines.
func (b *Buffer) FullText() string {
	return strings.Join(b.lines, "\n")
}

// SetFullText replaces the entire buffer and moves the cursor to the origin.
func (b *Buffer) SetFullText(text string) {
	b.lines = strings.Split(text, "\n")
	b.cursor = Position{}
}

// clamp bounds pos to valid line and column ranges.
func (b *Buffer) clamp(pos Position) Position {
	if pos.Line < 0 {
		pos.Line = 0
	}
	if pos.Line >= len(b.lines) {
		pos.Line = len(b.lines) - 1
	}
	if pos.Ch < 0 {
		pos.Ch = 0
	}
	if max := runeLen(b.lines[pos.Line]); pos.Ch > max {
		pos.Ch = max
	}
	return pos
}

// runeLen returns the length of s in runes.
func runeLen(s string) int {
	return len([]rune(s))
}

// runePrefix returns the first n runes of s.
func runePrefix(s string, n int) string {
	r := []rune(s)
	if n > len(r) {
		n = len(r)
	}
	return string(r[:n])
}

// runeSuffix returns s with the first n runes removed.
func runeSuffix(s string, n int) string {
	r := []rune(s)
	if n > len(r) {
		n = len(r)
	}
	return string(r[n:])
}
