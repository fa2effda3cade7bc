package portal

import (
	"strings"

	"github.com/hpungsan/tangent/internal/editor"
	"github.com/hpungsan/tangent/internal/errors"
)

// Extract returns the exact text strictly between from and to, preserving
// internal line breaks and performing no trimming. Positions that no longer
// exist in the document (the span was invalidated by an external edit)
// report an extraction error; callers decide how to degrade.
func Extract(s editor.Surface, from, to editor.Position) (string, error) {
	if to.Before(from) {
		return "", errors.NewExtractionFailed("capture span is inverted")
	}

	fromLine, ok := s.Line(from.Line)
	if !ok {
		return "", errors.NewExtractionFailed("capture anchor line no longer exists")
	}
	toLine, ok := s.Line(to.Line)
	if !ok {
		return "", errors.NewExtractionFailed("capture end line no longer exists")
	}

	fromRunes := []rune(fromLine)
	toRunes := []rune(toLine)
	if from.Ch > len(fromRunes) || to.Ch > len(toRunes) {
		return "", errors.NewExtractionFailed("capture span exceeds line length")
	}

	if from.Line == to.Line {
		return string(fromRunes[from.Ch:to.Ch]), nil
	}

	var b strings.Builder
	b.WriteString(string(fromRunes[from.Ch:]))
	for n := from.Line + 1; n < to.Line; n++ {
		line, ok := s.Line(n)
		if !ok {
			return "", errors.NewExtractionFailed("capture span is no longer contiguous")
		}
		b.WriteByte('\n')
		b.WriteString(line)
	}
	b.WriteByte('\n')
	b.WriteString(string(toRunes[:to.Ch]))
	return b.String(), nil
}
