// Package markup parses lightweight markup into typing instructions.
package markup

import (
	"fmt"
	"strings"
)

// Kind identifies the type of a typing instruction.
type Kind int

const (
	// Text types its Content verbatim.
	Text Kind = iota
	BoldStart
	BoldEnd
	ItalicStart
	ItalicEnd
	HeadingStart
	HeadingEnd
	// Newline separates two source lines.
	Newline
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case BoldStart:
		return "bold_start"
	case BoldEnd:
		return "bold_end"
	case ItalicStart:
		return "italic_start"
	case ItalicEnd:
		return "italic_end"
	case HeadingStart:
		return "heading_start"
	case HeadingEnd:
		return "heading_end"
	case Newline:
		return "newline"
	default:
		return "unknown"
	}
}

// Instruction is one element of the parsed stream.
// Content is set only for Text, Level only for the heading kinds.
type Instruction struct {
	Kind    Kind
	Content string
	Level   int
}

// String renders the instruction for debugging dumps.
func (in Instruction) String() string {
	switch in.Kind {
	case Text:
		return fmt.Sprintf("%s(%q)", in.Kind, in.Content)
	case HeadingStart, HeadingEnd:
		return fmt.Sprintf("%s(%d)", in.Kind, in.Level)
	default:
		return in.Kind.String()
	}
}

// PlainText concatenates the characters the instructions will type.
func PlainText(instructions []Instruction) string {
	var b strings.Builder
	for _, in := range instructions {
		switch in.Kind {
		case Text:
			b.WriteString(in.Content)
		case Newline:
			b.WriteByte('\n')
		}
	}
	return b.String()
}
