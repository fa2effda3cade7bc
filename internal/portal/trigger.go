package portal

import (
	"strings"
	"time"
)

// modifierKeys are keystrokes ignored by the detector without resetting the
// partial-sequence accumulator.
var modifierKeys = map[string]bool{
	"Shift":    true,
	"Control":  true,
	"Ctrl":     true,
	"Alt":      true,
	"Meta":     true,
	"CapsLock": true,
}

// Detector recognizes when the configured trigger sequence has just been
// completed ending exactly at the cursor. Partial matches expire after a
// wall-clock window so unrelated keystrokes arriving far apart never
// combine into a false positive.
type Detector struct {
	trigger  []rune
	window   time.Duration
	matched  int
	deadline time.Time
	now      func() time.Time
}

// NewDetector creates a Detector for the given trigger sequence and
// debounce window.
func NewDetector(trigger string, window time.Duration) *Detector {
	return &Detector{
		trigger: []rune(trigger),
		window:  window,
		now:     time.Now,
	}
}

// SetClock overrides the wall clock. Tests use this to drive expiry.
func (d *Detector) SetClock(now func() time.Time) {
	d.now = now
}

// Reset discards any partial match.
func (d *Detector) Reset() {
	d.matched = 0
}

// Keystroke feeds one key event plus the current line text up to the cursor.
// It returns true exactly when the trigger has just been completed contiguous
// with the cursor. Modifier keys are ignored without resetting; any other
// non-matching key resets the accumulator.
func (d *Detector) Keystroke(key, lineToCursor string) bool {
	if modifierKeys[key] {
		return false
	}

	now := d.now()
	if d.matched > 0 && now.After(d.deadline) {
		d.matched = 0
	}

	if !d.match(key) {
		d.matched = 0
		// The mismatching key may itself start a new partial sequence.
		if d.match(key) {
			d.deadline = now.Add(d.window)
		}
		return false
	}
	d.deadline = now.Add(d.window)

	if d.matched < len(d.trigger) {
		return false
	}
	d.matched = 0

	// Positional check: the freshly typed sequence must sit immediately
	// before the cursor. The same characters elsewhere on the line, or a
	// non-contiguous completion, never fire.
	return strings.HasSuffix(lineToCursor, string(d.trigger))
}

// match advances the accumulator if key is the next expected rune.
func (d *Detector) match(key string) bool {
	r := []rune(key)
	if len(r) != 1 {
		return false
	}
	if r[0] != d.trigger[d.matched] {
		return false
	}
	d.matched++
	return true
}
