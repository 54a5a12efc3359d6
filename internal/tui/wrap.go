package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

func styleFor(c cell) lipgloss.Style {
	style := textStyle
	if c.size > 0 {
		style = headingStyles[min(c.size, maxSize)-1]
	}
	if c.bold {
		style = style.Bold(true)
	}
	if c.italic {
		style = style.Italic(true)
	}
	return style
}

func buildStyledLine(line []cell) []styledRune {
	out := make([]styledRune, 0, len(line)+1)
	for _, c := range line {
		out = append(out, styledRune{
			s:       styleFor(c).Render(string(c.r)),
			width:   runewidth.RuneWidth(c.r),
			isSpace: c.r == ' ',
		})
	}
	return out
}

// render draws the document wrapped to width, with a cursor cell after the
// last character when showCursor is set.
func (d *Document) render(width int, showCursor bool) string {
	rendered := make([]string, len(d.lines))
	for i, line := range d.lines {
		runes := buildStyledLine(line)
		if showCursor && i == len(d.lines)-1 {
			runes = append(runes, styledRune{s: cursorStyle.Render(" "), width: 1})
		}
		rendered[i] = wrapStyledRunes(runes, width)
	}
	return strings.Join(rendered, "\n")
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks a line at the last space that keeps it within
// width columns, or mid-word when the word alone is wider.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpace := -1

	flush := func(upTo, resumeAt int) {
		out.WriteString(renderStyledRunes(line[:upTo]))
		out.WriteByte('\n')
		line = append(line[:0:0], line[resumeAt:]...)
		lineWidth = 0
		lastSpace = -1
		for i, item := range line {
			lineWidth += item.width
			if item.isSpace {
				lastSpace = i
			}
		}
	}

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpace >= 0 {
				flush(lastSpace, lastSpace+1)
			} else {
				flush(len(line), len(line))
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpace = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}
