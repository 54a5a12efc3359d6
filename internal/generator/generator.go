// Package generator builds markup documents for timing analysis.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"
)

var defaultWords = []string{
	"the", "quick", "brown", "fox", "jumps", "over", "lazy", "dog", "typing",
	"has", "natural", "variations", "and", "pauses", "between", "words",
	"sometimes", "we", "type", "faster", "slower", "rhythm", "changes",
	"based", "on", "familiarity", "with", "another", "sentence", "here",
	"final", "thoughts", "come", "at", "end", "should", "see", "burst",
	"patterns", "now", "will", "be", "visible", "this", "is", "a", "test",
	"to", "measure", "speed", "human", "hands", "keys", "of", "in", "it",
	"that", "for", "you", "not", "but", "they", "from", "what", "when",
	"write", "note", "draft", "idea", "line", "page", "story", "simple",
}

var sentenceEnds = []rune{'.', '.', '.', '!', '?'}

// DefaultWords returns the built-in word list.
func DefaultWords() []string {
	return append([]string(nil), defaultWords...)
}

// Options controls the shape of a generated document.
type Options struct {
	Sentences      int
	WordsMin       int
	WordsMax       int
	BoldPct        float64
	ItalicPct      float64
	PunctPct       float64
	ParagraphEvery int
	HeadingEvery   int
}

// DefaultOptions returns options for a short mixed document.
func DefaultOptions() Options {
	return Options{
		Sentences:      12,
		WordsMin:       4,
		WordsMax:       12,
		BoldPct:        0.05,
		ItalicPct:      0.05,
		PunctPct:       0.08,
		ParagraphEvery: 4,
		HeadingEvery:   8,
	}
}

// Generator produces randomized markup text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator using rnd, or one seeded with the current time when
// rnd is nil.
func New(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rnd: rnd}
}

// Sentence builds one capitalized sentence of count words ending in . ! or ?.
func (g *Generator) Sentence(words []string, count int, opts Options) string {
	if len(words) == 0 || count <= 0 {
		return ""
	}
	parts := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := words[g.rnd.Intn(len(words))]
		if i == 0 {
			word = capitalize(word)
		}
		if i < count-1 {
			word = applyPunct(g.rnd, word, opts.PunctPct, []rune{',', ';', ':'})
		}
		word = g.applyEmphasis(word, opts)
		parts = append(parts, word)
	}
	end := sentenceEnds[g.rnd.Intn(len(sentenceEnds))]
	return strings.Join(parts, " ") + string(end)
}

// Document builds a markup document of opts.Sentences sentences grouped in
// paragraphs, with a heading opening every HeadingEvery sentences.
func (g *Generator) Document(words []string, opts Options) string {
	if len(words) == 0 || opts.Sentences <= 0 {
		return ""
	}
	lo, hi := opts.WordsMin, opts.WordsMax
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}

	var b strings.Builder
	for i := 0; i < opts.Sentences; i++ {
		if opts.HeadingEvery > 0 && i%opts.HeadingEvery == 0 {
			if i > 0 {
				b.WriteString("\n\n")
			}
			level := 1 + g.rnd.Intn(3)
			b.WriteString(strings.Repeat("#", level) + " " + capitalize(g.title(words)) + "\n")
		} else if i > 0 {
			if opts.ParagraphEvery > 0 && i%opts.ParagraphEvery == 0 {
				b.WriteString("\n\n")
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.Sentence(words, lo+g.rnd.Intn(hi-lo+1), opts))
	}
	b.WriteByte('\n')
	return b.String()
}

func (g *Generator) title(words []string) string {
	n := 1 + g.rnd.Intn(3)
	parts := make([]string, n)
	for i := range parts {
		parts[i] = words[g.rnd.Intn(len(words))]
	}
	return strings.Join(parts, " ")
}

func (g *Generator) applyEmphasis(word string, opts Options) string {
	core := strings.TrimRightFunc(word, unicode.IsPunct)
	tail := word[len(core):]
	if core == "" {
		return word
	}
	r := g.rnd.Float64()
	switch {
	case r < opts.BoldPct:
		return "**" + core + "**" + tail
	case r < opts.BoldPct+opts.ItalicPct:
		return "*" + core + "*" + tail
	default:
		return word
	}
}

func capitalize(word string) string {
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func applyPunct(rnd *rand.Rand, word string, punctPct float64, punctSet []rune) string {
	if punctPct <= 0 || len(punctSet) == 0 {
		return word
	}
	if rnd.Float64() > punctPct {
		return word
	}
	punct := punctSet[rnd.Intn(len(punctSet))]
	return word + string(punct)
}
