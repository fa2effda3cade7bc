package editor

import "testing"

func TestNewBuffer_SplitsLines(t *testing.T) {
	b := NewBuffer("one\ntwo\nthree")
	if b.LineCount() != 3 {
		t.Fatalf("LineCount = %d, want 3", b.LineCount())
	}
	line, ok := b.Line(1)
	if !ok || line != "two" {
		t.Errorf("Line(1) = %q, %v; want \"two\", true", line, ok)
	}
}

func TestNewBuffer_Empty(t *testing.T) {
	b := NewBuffer("")
	if b.LineCount() != 1 {
		t.Fatalf("LineCount = %d, want 1", b.LineCount())
	}
	if got := b.FullText(); got != "" {
		t.Errorf("FullText = %q, want empty", got)
	}
}

func TestLine_OutOfRange(t *testing.T) {
	b := NewBuffer("only")
	if _, ok := b.Line(-1); ok {
		t.Error("Line(-1) ok = true, want false")
	}
	if _, ok := b.Line(1); ok {
		t.Error("Line(1) ok = true, want false")
	}
}

func TestReplaceRange_InsertSingleLine(t *testing.T) {
	b := NewBuffer("hello world")
	b.ReplaceRange("!!", Position{Line: 0, Ch: 5}, Position{Line: 0, Ch: 5})

	if got := b.FullText(); got != "hello!! world" {
		t.Errorf("FullText = %q, want %q", got, "hello!! world")
	}
	if cur := b.Cursor(); cur != (Position{Line: 0, Ch: 7}) {
		t.Errorf("Cursor = %+v, want {0 7}", cur)
	}
}

func TestReplaceRange_InsertMultiLine(t *testing.T) {
	b := NewBuffer("ab")
	b.ReplaceRange("x\ny", Position{Line: 0, Ch: 1}, Position{Line: 0, Ch: 1})

	if got := b.FullText(); got != "ax\nyb" {
		t.Errorf("FullText = %q, want %q", got, "ax\nyb")
	}
	if cur := b.Cursor(); cur != (Position{Line: 1, Ch: 1}) {
		t.Errorf("Cursor = %+v, want {1 1}", cur)
	}
}

func TestReplaceRange_DeleteAcrossLines(t *testing.T) {
	b := NewBuffer("abc\ndef")
	b.ReplaceRange("", Position{Line: 0, Ch: 1}, Position{Line: 1, Ch: 2})

	if got := b.FullText(); got != "af" {
		t.Errorf("FullText = %q, want %q", got, "af")
	}
	if cur := b.Cursor(); cur != (Position{Line: 0, Ch: 1}) {
		t.Errorf("Cursor = %+v, want {0 1}", cur)
	}
}

func TestReplaceRange_ReordersBackwardsSpan(t *testing.T) {
	b := NewBuffer("abcdef")
	b.ReplaceRange("X", Position{Line: 0, Ch: 4}, Position{Line: 0, Ch: 2})

	if got := b.FullText(); got != "abXef" {
		t.Errorf("FullText = %q, want %q", got, "abXef")
	}
}

func TestReplaceRange_RuneColumns(t *testing.T) {
	// The glyph is multi-byte but must count as one column.
	b := NewBuffer("🚪🚪")
	b.ReplaceRange("x", Position{Line: 0, Ch: 1}, Position{Line: 0, Ch: 1})

	if got := b.FullText(); got != "🚪x🚪" {
		t.Errorf("FullText = %q, want %q", got, "🚪x🚪")
	}
	if cur := b.Cursor(); cur != (Position{Line: 0, Ch: 2}) {
		t.Errorf("Cursor = %+v, want {0 2}", cur)
	}
}

func TestSetCursor_Clamps(t *testing.T) {
	b := NewBuffer("ab\ncd")
	b.SetCursor(Position{Line: 9, Ch: 9})
	if cur := b.Cursor(); cur != (Position{Line: 1, Ch: 2}) {
		t.Errorf("Cursor = %+v, want {1 2}", cur)
	}

	b.SetCursor(Position{Line: -1, Ch: -1})
	if cur := b.Cursor(); cur != (Position{Line: 0, Ch: 0}) {
		t.Errorf("Cursor = %+v, want {0 0}", cur)
	}
}

func TestSetFullText_ResetsCursor(t *testing.T) {
	b := NewBuffer("abc")
	b.SetCursor(Position{Line: 0, Ch: 3})
	b.SetFullText("new\ntext")

	if cur := b.Cursor(); cur != (Position{}) {
		t.Errorf("Cursor = %+v, want origin", cur)
	}
	if b.LineCount() != 2 {
		t.Errorf("LineCount = %d, want 2", b.LineCount())
	}
}

func TestSetLine(t *testing.T) {
	b := NewBuffer("ab\ncd")
	if !b.SetLine(1, "xyz") {
		t.Fatal("SetLine(1) = false, want true")
	}
	if got := b.FullText(); got != "ab\nxyz" {
		t.Errorf("FullText = %q, want %q", got, "ab\nxyz")
	}
	if b.SetLine(5, "nope") {
		t.Error("SetLine(5) = true, want false")
	}
}

func TestPosition_Before(t *testing.T) {
	a := Position{Line: 1, Ch: 5}
	cases := []struct {
		other Position
		want  bool
	}{
		{Position{Line: 2, Ch: 0}, true},
		{Position{Line: 1, Ch: 6}, true},
		{Position{Line: 1, Ch: 5}, false},
		{Position{Line: 0, Ch: 9}, false},
	}
	for _, tc := range cases {
		if got := a.Before(tc.other); got != tc.want {
			t.Errorf("Before(%+v) = %v, want %v", tc.other, got, tc.want)
		}
	}
}
