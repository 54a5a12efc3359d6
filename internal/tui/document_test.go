package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/ghostkeys/internal/keyboard"
)

func typeString(d *Document, s string) {
	for _, r := range s {
		d.Type(r)
	}
}

func TestDocumentTypingAndBackspace(t *testing.T) {
	d := NewDocument()
	typeString(d, "helo")
	d.Backspace()
	typeString(d, "lo")
	d.Press(keyboard.KeyEnter)
	d.Press(keyboard.KeyRune('x'))
	assert.Equal(t, "hello\nx", d.Text())
	assert.Equal(t, 7, d.Len())

	d.Backspace()
	d.Backspace()
	assert.Equal(t, "hello", d.Text())

	empty := NewDocument()
	empty.Backspace()
	assert.Equal(t, "", empty.Text())
	assert.Equal(t, 0, empty.Len())
}

func TestDocumentTab(t *testing.T) {
	d := NewDocument()
	d.Press(keyboard.KeyTab)
	assert.Equal(t, "    ", d.Text())
}

func TestDocumentFormattingChords(t *testing.T) {
	d := NewDocument()
	d.Chord(keyboard.KeyCtrl, keyboard.KeyRune('b'))
	d.Type('a')
	d.Chord(keyboard.KeyCmd, keyboard.KeyRune('i'))
	d.Type('b')
	d.Chord(keyboard.KeyCtrl, keyboard.KeyRune('b'))
	d.Chord(keyboard.KeyCtrl, keyboard.KeyRune('i'))
	d.Type('c')
	d.Chord(keyboard.KeyAlt, keyboard.KeyRune('b'))
	d.Type('d')

	line := d.lines[0]
	require.Len(t, line, 4)
	assert.Equal(t, cell{r: 'a', bold: true}, line[0])
	assert.Equal(t, cell{r: 'b', bold: true, italic: true}, line[1])
	assert.Equal(t, cell{r: 'c'}, line[2])
	assert.Equal(t, cell{r: 'd'}, line[3])
}

func TestDocumentFontSize(t *testing.T) {
	d := NewDocument()
	for i := 0; i < 5; i++ {
		d.Chord(keyboard.KeyCtrl, keyboard.KeyShift, keyboard.KeyRune('.'))
	}
	d.Type('H')
	d.Chord(keyboard.KeyCtrl, keyboard.KeyShift, keyboard.KeyRune(','))
	d.Type('i')
	d.Enter()
	d.Type('b')

	assert.Equal(t, maxSize, d.lines[0][0].size)
	assert.Equal(t, maxSize-1, d.lines[0][1].size)
	assert.Equal(t, 0, d.lines[1][0].size)
}

func TestDocumentRenderUsesStyles(t *testing.T) {
	d := NewDocument()
	d.Chord(keyboard.KeyCtrl, keyboard.KeyRune('b'))
	d.Type('a')
	d.Chord(keyboard.KeyCtrl, keyboard.KeyRune('b'))
	d.Type('b')

	want := textStyle.Bold(true).Render("a") + textStyle.Render("b")
	assert.Equal(t, want, d.render(0, false))
	assert.Equal(t, want+cursorStyle.Render(" "), d.render(0, true))
}

func TestStyleForHeading(t *testing.T) {
	assert.Equal(t, headingStyles[2].Render("x"), styleFor(cell{r: 'x', size: 3}).Render("x"))
	assert.Equal(t, headingStyles[0].Italic(true).Render("x"), styleFor(cell{r: 'x', size: 1, italic: true}).Render("x"))
}
