package playback

import (
	"time"

	"github.com/verte-zerg/ghostkeys/internal/keyboard"
)

// ChordStep is one shortcut press followed by a pause.
type ChordStep struct {
	Keys  []keyboard.Key
	Pause time.Duration
}

// HeadingStrategy decides which shortcuts turn a line into a heading in the
// receiving editor. Start runs before the heading text, End after it.
type HeadingStrategy interface {
	Start(level int) []ChordStep
	End(level int) []ChordStep
}

// FontSizeShortcut presses modifier+Shift+Period once per size step: four
// minus the heading level, so level 1 gets three presses.
type FontSizeShortcut struct {
	Modifier keyboard.Key
	Pause    time.Duration
}

// DefaultHeadingStrategy uses the platform modifier and a 100ms pause.
func DefaultHeadingStrategy() FontSizeShortcut {
	return FontSizeShortcut{Modifier: keyboard.ModifierKey(), Pause: 100 * time.Millisecond}
}

// Start implements HeadingStrategy.
func (f FontSizeShortcut) Start(level int) []ChordStep {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	steps := make([]ChordStep, 0, 4-level)
	for i := 0; i < 4-level; i++ {
		steps = append(steps, ChordStep{
			Keys:  []keyboard.Key{f.Modifier, keyboard.KeyShift, keyboard.KeyRune('.')},
			Pause: f.Pause,
		})
	}
	return steps
}

// End implements HeadingStrategy. The size change made at Start is left alone.
func (FontSizeShortcut) End(int) []ChordStep { return nil }

// PlainHeadings types headings as ordinary text.
type PlainHeadings struct{}

// Start implements HeadingStrategy.
func (PlainHeadings) Start(int) []ChordStep { return nil }

// End implements HeadingStrategy.
func (PlainHeadings) End(int) []ChordStep { return nil }
