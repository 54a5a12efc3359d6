package tui

import (
	"strings"

	"github.com/verte-zerg/ghostkeys/internal/keyboard"
)

// maxSize is the largest font size step the preview distinguishes.
const maxSize = 3

const tabWidth = 4

type cell struct {
	r      rune
	bold   bool
	italic bool
	size   int
}

// Document is the preview's stand-in for a rich text editor. Keystrokes
// edit it the way a word processor would: modifier+b and modifier+i toggle
// bold and italic, modifier+shift+. grows the font and Enter starts a new
// paragraph at body size.
type Document struct {
	lines  [][]cell
	bold   bool
	italic bool
	size   int
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{lines: [][]cell{nil}}
}

// Type inserts r at the end of the document.
func (d *Document) Type(r rune) {
	if r == '\n' {
		d.Enter()
		return
	}
	last := len(d.lines) - 1
	d.lines[last] = append(d.lines[last], cell{r: r, bold: d.bold, italic: d.italic, size: d.size})
}

// Enter starts a new line.
func (d *Document) Enter() {
	d.lines = append(d.lines, nil)
	d.size = 0
}

// Backspace removes the last character, joining lines at a line start.
func (d *Document) Backspace() {
	last := len(d.lines) - 1
	if len(d.lines[last]) == 0 {
		if last > 0 {
			d.lines = d.lines[:last]
		}
		return
	}
	d.lines[last] = d.lines[last][:len(d.lines[last])-1]
}

// Press applies a single key press.
func (d *Document) Press(k keyboard.Key) {
	switch k {
	case keyboard.KeyEnter:
		d.Enter()
	case keyboard.KeyBackspace:
		d.Backspace()
	case keyboard.KeyTab:
		for i := 0; i < tabWidth; i++ {
			d.Type(' ')
		}
	default:
		if r, ok := k.Rune(); ok {
			d.Type(r)
		}
	}
}

// Chord applies a key combination. Unknown chords are ignored.
func (d *Document) Chord(keys ...keyboard.Key) {
	var command, shift bool
	var letter rune
	for _, k := range keys {
		switch k {
		case keyboard.KeyCtrl, keyboard.KeyCmd:
			command = true
		case keyboard.KeyShift:
			shift = true
		default:
			if r, ok := k.Rune(); ok {
				letter = r
			}
		}
	}
	if !command {
		return
	}
	switch {
	case !shift && (letter == 'b' || letter == 'B'):
		d.bold = !d.bold
	case !shift && (letter == 'i' || letter == 'I'):
		d.italic = !d.italic
	case shift && (letter == '.' || letter == '>'):
		d.size = min(d.size+1, maxSize)
	case shift && (letter == ',' || letter == '<'):
		d.size = max(d.size-1, 0)
	}
}

// Text returns the document's characters without styling.
func (d *Document) Text() string {
	var b strings.Builder
	for i, line := range d.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, c := range line {
			b.WriteRune(c.r)
		}
	}
	return b.String()
}

// Len returns the number of characters, counting line breaks.
func (d *Document) Len() int {
	n := len(d.lines) - 1
	for _, line := range d.lines {
		n += len(line)
	}
	return n
}
