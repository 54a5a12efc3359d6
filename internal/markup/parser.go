package markup

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var headingPattern = regexp.MustCompile(`^(#{1,3})\s+(.+)$`)

// Parse converts markup text into an ordered instruction stream.
// Malformed or unterminated markup is kept as literal text.
func Parse(text string) []Instruction {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	instructions := make([]Instruction, 0, len(lines)*2)
	for i, line := range lines {
		instructions = append(instructions, parseLine(line)...)
		if i < len(lines)-1 {
			instructions = append(instructions, Instruction{Kind: Newline})
		}
	}
	return instructions
}

// PlainTextLength returns the number of characters Parse(text) will type:
// the rune length of every Text instruction plus one per Newline.
func PlainTextLength(text string) int {
	return Length(Parse(text))
}

// Length is PlainTextLength for an already parsed stream.
func Length(instructions []Instruction) int {
	length := 0
	for _, in := range instructions {
		switch in.Kind {
		case Text:
			length += utf8.RuneCountInString(in.Content)
		case Newline:
			length++
		}
	}
	return length
}

func parseLine(line string) []Instruction {
	if m := headingPattern.FindStringSubmatch(line); m != nil {
		level := len(m[1])
		out := []Instruction{{Kind: HeadingStart, Level: level}}
		out = append(out, parseInline([]rune(m[2]))...)
		return append(out, Instruction{Kind: HeadingEnd, Level: level})
	}
	return parseInline([]rune(line))
}

type span struct {
	open    Kind
	close   Kind
	start   int
	end     int
	content []rune
}

func parseInline(rs []rune) []Instruction {
	var out []Instruction
	pos := 0
	for pos < len(rs) {
		sp, ok := nextSpan(rs, pos)
		if !ok {
			break
		}
		if sp.start > pos {
			out = append(out, Instruction{Kind: Text, Content: string(rs[pos:sp.start])})
		}
		out = append(out, Instruction{Kind: sp.open})
		out = append(out, parseInline(sp.content)...)
		out = append(out, Instruction{Kind: sp.close})
		pos = sp.end
	}
	if pos < len(rs) {
		out = append(out, Instruction{Kind: Text, Content: string(rs[pos:])})
	}
	return out
}

// nextSpan finds the leftmost emphasis span starting at or after from.
// At a given position bold wins over italic, and '*' over '_'.
func nextSpan(rs []rune, from int) (span, bool) {
	for i := from; i < len(rs); i++ {
		for _, d := range []rune{'*', '_'} {
			if closeAt, ok := matchBold(rs, i, d); ok {
				return span{open: BoldStart, close: BoldEnd, start: i, end: closeAt + 2, content: rs[i+2 : closeAt]}, true
			}
		}
		for _, d := range []rune{'*', '_'} {
			if closeAt, ok := matchItalic(rs, i, d); ok {
				return span{open: ItalicStart, close: ItalicEnd, start: i, end: closeAt + 1, content: rs[i+1 : closeAt]}, true
			}
		}
	}
	return span{}, false
}

// matchBold reports the index of the closing double delimiter for a bold
// span opening at i. The shortest non-empty content wins.
func matchBold(rs []rune, i int, d rune) (int, bool) {
	if i+1 >= len(rs) || rs[i] != d || rs[i+1] != d {
		return 0, false
	}
	for j := i + 3; j+1 < len(rs); j++ {
		if rs[j] == d && rs[j+1] == d {
			return j, true
		}
	}
	return 0, false
}

// matchItalic reports the index of the closing delimiter for an italic span
// opening at i. Neither delimiter may touch a second identical delimiter.
func matchItalic(rs []rune, i int, d rune) (int, bool) {
	if rs[i] != d || (i > 0 && rs[i-1] == d) {
		return 0, false
	}
	if i+1 >= len(rs) || rs[i+1] == d {
		return 0, false
	}
	for k := i + 2; k < len(rs); k++ {
		if rs[k] != d || rs[k-1] == d {
			continue
		}
		if k+1 < len(rs) && rs[k+1] == d {
			continue
		}
		return k, true
	}
	return 0, false
}
