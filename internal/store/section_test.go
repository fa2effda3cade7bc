package store

import (
	"strings"
	"testing"

	"github.com/hpungsan/tangent/internal/editor"
	"github.com/hpungsan/tangent/internal/errors"
)

func newSectionStore(text string) (*SectionStore, *editor.Buffer) {
	buf := editor.NewBuffer(text)
	st := NewSectionStore(buf, "🚪", "Tangents")
	st.SetClock(func() int64 { return 100 })
	return st, buf
}

func TestSectionStore_UpsertCreatesSection(t *testing.T) {
	st, buf := newSectionStore("Hello 🚪[p1]")

	if err := st.Upsert("p1", "a thought"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	want := "Hello 🚪[p1]\n\n## Tangents\n###### 🚪[p1] <!--100 100-->\na thought\n^p1\n"
	if got := buf.FullText(); got != want {
		t.Errorf("FullText = %q, want %q", got, want)
	}
}

func TestSectionStore_UpsertReusesSection(t *testing.T) {
	st, buf := newSectionStore("body\n\n## Tangents\n")

	if err := st.Upsert("p1", "one"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := st.Upsert("p2", "two"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	text := buf.FullText()
	if strings.Count(text, "## Tangents") != 1 {
		t.Errorf("section duplicated:\n%s", text)
	}
	entries, _ := st.List()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].PortalID != "p1" || entries[1].PortalID != "p2" {
		t.Errorf("entry order = %s, %s; want p1, p2", entries[0].PortalID, entries[1].PortalID)
	}
}

func TestSectionStore_UpsertBeforeNextHeading(t *testing.T) {
	st, buf := newSectionStore("## Tangents\n\n## Other\nstuff")

	if err := st.Upsert("p1", "content"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	text := buf.FullText()
	entryAt := strings.Index(text, "###### ")
	otherAt := strings.Index(text, "## Other")
	if entryAt < 0 || otherAt < 0 || entryAt > otherAt {
		t.Errorf("entry not inside the section:\n%s", text)
	}
	if !strings.HasSuffix(text, "## Other\nstuff") {
		t.Errorf("text after the section was disturbed:\n%s", text)
	}
}

func TestSectionStore_HeadingLikeContentSurvivesAppend(t *testing.T) {
	st, buf := newSectionStore("")

	first := "first line\n## looks like a heading\ntail"
	if err := st.Upsert("p1", first); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := st.Upsert("p2", "second entry"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := st.Lookup("p1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != first {
		t.Errorf("Lookup = %q, want %q", got, first)
	}

	text := buf.FullText()
	p1End := strings.Index(text, "^p1")
	p2At := strings.Index(text, "###### 🚪[p2]")
	if p1End < 0 || p2At < 0 || p2At < p1End {
		t.Errorf("new block spliced into the older one:\n%s", text)
	}
	entries, _ := st.List()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
}

func TestSectionStore_AppendSkipsHeadingsInsideBlocks(t *testing.T) {
	doc := "## Tangents\n###### 🚪[p1] <!--1 1-->\n## inner heading\nmore\n^p1\n\n## Notes\nkeep\n"
	st, buf := newSectionStore(doc)

	if err := st.Upsert("p2", "fresh"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	text := buf.FullText()
	p1End := strings.Index(text, "^p1")
	p2At := strings.Index(text, "###### 🚪[p2]")
	notesAt := strings.Index(text, "## Notes")
	if p1End < 0 || p2At < 0 || notesAt < 0 || p2At < p1End || notesAt < p2At {
		t.Errorf("entry not between the last block and the next section:\n%s", text)
	}
	if !strings.HasSuffix(text, "## Notes\nkeep\n") {
		t.Errorf("text after the section was disturbed:\n%s", text)
	}
	if got, err := st.Lookup("p1"); err != nil || got != "## inner heading\nmore" {
		t.Errorf("older entry disturbed: %q, %v", got, err)
	}
}

func TestSectionStore_RoundTripExactBytes(t *testing.T) {
	st, _ := newSectionStore("")

	content := "  leading spaces\n\nblank line kept\n\ttab and trailing  "
	if err := st.Upsert("p1", content); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := st.Lookup("p1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != content {
		t.Errorf("Lookup = %q, want %q", got, content)
	}
}

func TestSectionStore_UpsertReplacesInPlace(t *testing.T) {
	st, buf := newSectionStore("")

	if err := st.Upsert("p1", "first"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	st.SetClock(func() int64 { return 200 })
	if err := st.Upsert("p1", "second"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	text := buf.FullText()
	if strings.Contains(text, "first") {
		t.Errorf("old content still present:\n%s", text)
	}
	if strings.Count(text, "^p1") != 1 {
		t.Errorf("entry duplicated:\n%s", text)
	}

	entries, _ := st.List()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].CreatedAt != 100 {
		t.Errorf("CreatedAt = %d, want preserved 100", entries[0].CreatedAt)
	}
	if entries[0].UpdatedAt != 200 {
		t.Errorf("UpdatedAt = %d, want 200", entries[0].UpdatedAt)
	}
}

func TestSectionStore_SurroundingTextUntouched(t *testing.T) {
	prefix := "# Title\n\nIntro paragraph.\n\n## Tangents\n"
	suffix := "\n## Notes\nkeep me exactly\n"
	st, buf := newSectionStore(prefix + "###### 🚪[p1] <!--1 2-->\nold\n^p1\n" + suffix)

	if err := st.Upsert("p1", "new"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	text := buf.FullText()
	if !strings.HasPrefix(text, prefix) {
		t.Errorf("prefix disturbed:\n%s", text)
	}
	if !strings.HasSuffix(text, suffix) {
		t.Errorf("suffix disturbed:\n%s", text)
	}
	if !strings.Contains(text, "###### 🚪[p1] <!--1 100-->\nnew\n^p1\n") {
		t.Errorf("block not replaced in place:\n%s", text)
	}
}

func TestSectionStore_MultiLineContent(t *testing.T) {
	st, _ := newSectionStore("")

	content := "line one\nline two\nline three"
	if err := st.Upsert("p1", content); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	got, err := st.Lookup("p1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != content {
		t.Errorf("Lookup = %q, want %q", got, content)
	}
}

func TestSectionStore_Remove(t *testing.T) {
	st, buf := newSectionStore("doc text")

	st.Upsert("p1", "one")
	st.Upsert("p2", "two")
	if err := st.Remove("p1"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := st.Lookup("p1"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("Lookup after Remove = %v, want NOT_FOUND", err)
	}
	if _, err := st.Lookup("p2"); err != nil {
		t.Errorf("unrelated entry lost: %v", err)
	}
	if !strings.HasPrefix(buf.FullText(), "doc text") {
		t.Errorf("document body disturbed:\n%s", buf.FullText())
	}
}

func TestSectionStore_RemoveMissingIsNoOp(t *testing.T) {
	st, buf := newSectionStore("unchanged")
	if err := st.Remove("nope"); err != nil {
		t.Fatalf("Remove of missing entry errored: %v", err)
	}
	if buf.FullText() != "unchanged" {
		t.Errorf("FullText = %q, want untouched", buf.FullText())
	}
}

func TestSectionStore_WithdrawAndPurge(t *testing.T) {
	st, buf := newSectionStore("")

	st.Upsert("p1", "keep")
	st.Upsert("p2", "drop")

	if err := st.Withdraw("p2"); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}

	// Withdrawn entries still resolve, so re-entry works.
	if content, err := st.Lookup("p2"); err != nil || content != "drop" {
		t.Errorf("Lookup withdrawn = %q, %v; want drop, nil", content, err)
	}

	entries, _ := st.List()
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	withdrawn := 0
	for _, e := range entries {
		if e.Withdrawn {
			withdrawn++
		}
	}
	if withdrawn != 1 {
		t.Errorf("withdrawn count = %d, want 1", withdrawn)
	}

	purged, err := st.PurgeWithdrawn()
	if err != nil {
		t.Fatalf("PurgeWithdrawn failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
	if strings.Contains(buf.FullText(), "drop") {
		t.Errorf("withdrawn entry survived purge:\n%s", buf.FullText())
	}
	if _, err := st.Lookup("p1"); err != nil {
		t.Errorf("unrelated entry lost in purge: %v", err)
	}
}

func TestSectionStore_WithdrawMissing(t *testing.T) {
	st, _ := newSectionStore("")
	if err := st.Withdraw("nope"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestSectionStore_UpsertClearsWithdrawn(t *testing.T) {
	st, _ := newSectionStore("")

	st.Upsert("p1", "before")
	st.Withdraw("p1")
	st.Upsert("p1", "after")

	entries, _ := st.List()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Withdrawn {
		t.Error("entry still withdrawn after Upsert")
	}
	if entries[0].Content != "after" {
		t.Errorf("Content = %q, want %q", entries[0].Content, "after")
	}
}

func TestSectionStore_MissingTerminatorRecovered(t *testing.T) {
	// An aborted write left a block without its terminator line. The block
	// still bounds at the next header so a replace heals it.
	text := "## Tangents\n###### 🚪[p1] <!--1 1-->\ndangling\n###### 🚪[p2] <!--2 2-->\nok\n^p2\n"
	st, buf := newSectionStore(text)

	if err := st.Upsert("p1", "healed"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got := buf.FullText()
	if !strings.Contains(got, "healed\n^p1\n") {
		t.Errorf("block not healed:\n%s", got)
	}
	if content, err := st.Lookup("p2"); err != nil || content != "ok" {
		t.Errorf("neighbor block disturbed: %q, %v", content, err)
	}
}

func TestSectionStore_ValidatesID(t *testing.T) {
	st, _ := newSectionStore("")
	if err := st.Upsert("", "x"); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("empty id: err = %v, want INVALID_REQUEST", err)
	}
	if err := st.Upsert("Bad_ID", "x"); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("bad charset: err = %v, want INVALID_REQUEST", err)
	}
}
