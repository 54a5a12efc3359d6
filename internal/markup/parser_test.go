package markup

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) Instruction { return Instruction{Kind: Text, Content: s} }

func kind(k Kind) Instruction { return Instruction{Kind: k} }

func TestParse_Heading(t *testing.T) {
	got := Parse("# Title")
	assert.Equal(t, []Instruction{
		{Kind: HeadingStart, Level: 1},
		text("Title"),
		{Kind: HeadingEnd, Level: 1},
	}, got)
}

func TestParse_HeadingLevels(t *testing.T) {
	for level, line := range map[int]string{1: "# a", 2: "## a", 3: "###\ta"} {
		got := Parse(line)
		require.Len(t, got, 3, line)
		assert.Equal(t, Instruction{Kind: HeadingStart, Level: level}, got[0])
		assert.Equal(t, Instruction{Kind: HeadingEnd, Level: level}, got[2])
	}
}

func TestParse_NotAHeading(t *testing.T) {
	for _, line := range []string{"#### too deep", "#NoSpace", " # indented"} {
		assert.Equal(t, []Instruction{text(line)}, Parse(line), line)
	}
}

func TestParse_HeadingWrapsInlineSpans(t *testing.T) {
	got := Parse("## A **big** deal")
	assert.Equal(t, []Instruction{
		{Kind: HeadingStart, Level: 2},
		text("A "),
		kind(BoldStart),
		text("big"),
		kind(BoldEnd),
		text(" deal"),
		{Kind: HeadingEnd, Level: 2},
	}, got)
}

func TestParse_BoldAndItalic(t *testing.T) {
	got := Parse("**bold** and *italic*")
	assert.Equal(t, []Instruction{
		kind(BoldStart),
		text("bold"),
		kind(BoldEnd),
		text(" and "),
		kind(ItalicStart),
		text("italic"),
		kind(ItalicEnd),
	}, got)
}

func TestParse_UnderscoreDelimiters(t *testing.T) {
	got := Parse("__strong__ _soft_")
	assert.Equal(t, []Instruction{
		kind(BoldStart),
		text("strong"),
		kind(BoldEnd),
		text(" "),
		kind(ItalicStart),
		text("soft"),
		kind(ItalicEnd),
	}, got)
}

func TestParse_ItalicNestedInBold(t *testing.T) {
	got := Parse("**bold *it* x**")
	assert.Equal(t, []Instruction{
		kind(BoldStart),
		text("bold "),
		kind(ItalicStart),
		text("it"),
		kind(ItalicEnd),
		text(" x"),
		kind(BoldEnd),
	}, got)
}

func TestParse_ShortestBoldContent(t *testing.T) {
	got := Parse("***a***")
	assert.Equal(t, []Instruction{
		kind(BoldStart),
		text("*a"),
		kind(BoldEnd),
		text("*"),
	}, got)
}

func TestParse_MalformedStaysLiteral(t *testing.T) {
	cases := []string{"*oops", "**oops", "oops*", "**", "****", "_", "a ** b"}
	for _, in := range cases {
		got := Parse(in)
		require.Len(t, got, 1, in)
		assert.Equal(t, text(in), got[0], in)
	}
}

func TestParse_EmptySpanIsLiteral(t *testing.T) {
	got := Parse("a ** b __ c")
	assert.Equal(t, []Instruction{text("a ** b __ c")}, got)
}

func TestParse_Newlines(t *testing.T) {
	got := Parse("one\ntwo\n\nthree")
	assert.Equal(t, []Instruction{
		text("one"),
		kind(Newline),
		text("two"),
		kind(Newline),
		kind(Newline),
		text("three"),
	}, got)

	assert.Equal(t, []Instruction{kind(Newline)}, Parse("\n"))
	assert.Empty(t, Parse(""))
}

func TestParse_SpansDoNotCrossLines(t *testing.T) {
	got := Parse("*a\nb*")
	assert.Equal(t, []Instruction{text("*a"), kind(Newline), text("b*")}, got)
}

func TestParse_FormattingPairsBalanced(t *testing.T) {
	inputs := []string{
		"# **Bold** heading with *it*",
		"plain *a* __b__ **c *d* e** _f_",
		"***x*** and __*y*__",
		"line one\n## two *x*\nthree **y",
	}
	for _, in := range inputs {
		depth := map[Kind]int{}
		for _, ins := range Parse(in) {
			switch ins.Kind {
			case BoldStart, ItalicStart, HeadingStart:
				depth[ins.Kind]++
			case BoldEnd:
				depth[BoldStart]--
				require.GreaterOrEqual(t, depth[BoldStart], 0, in)
			case ItalicEnd:
				depth[ItalicStart]--
				require.GreaterOrEqual(t, depth[ItalicStart], 0, in)
			case HeadingEnd:
				depth[HeadingStart]--
				require.GreaterOrEqual(t, depth[HeadingStart], 0, in)
			case Newline:
				for k, d := range depth {
					require.Zero(t, d, "open %s at newline in %q", k, in)
				}
			}
		}
		for k, d := range depth {
			assert.Zero(t, d, "unbalanced %s in %q", k, in)
		}
	}
}

func TestPlainText_StripsDelimiters(t *testing.T) {
	cases := map[string]string{
		"**Hi** *there*":          "Hi there",
		"# Title\nbody":           "Title\nbody",
		"__a__ _b_ c":             "a b c",
		"*oops":                   "*oops",
		"**bold *it* x**":         "bold it x",
		"## *émphase* **über**\n": "émphase über\n",
	}
	for in, want := range cases {
		assert.Equal(t, want, PlainText(Parse(in)), in)
	}
}

func TestPlainTextLength(t *testing.T) {
	assert.Equal(t, 8, PlainTextLength("**Hi** *there*"))
	assert.Equal(t, 0, PlainTextLength(""))
	assert.Equal(t, 1, PlainTextLength("\n"))
	assert.Equal(t, 4, PlainTextLength("# **ü**\nab"))
}

func TestPlainTextLength_MatchesInstructions(t *testing.T) {
	inputs := []string{
		"The *quick* brown **fox**.\n\n### Jumps _over_\nthe lazy dog!",
		"a\tb\r\nc",
		"***",
		"日本語 **テキスト**",
	}
	for _, in := range inputs {
		want := 0
		for _, ins := range Parse(in) {
			switch ins.Kind {
			case Text:
				want += utf8.RuneCountInString(ins.Content)
			case Newline:
				want++
			}
		}
		assert.Equal(t, want, PlainTextLength(in), in)
		assert.Equal(t, utf8.RuneCountInString(PlainText(Parse(in))), PlainTextLength(in), in)
	}
}

func TestInstructionString(t *testing.T) {
	assert.Equal(t, `text("a")`, text("a").String())
	assert.Equal(t, "heading_start(2)", Instruction{Kind: HeadingStart, Level: 2}.String())
	assert.Equal(t, "newline", kind(Newline).String())
}
