package timing

import (
	"strings"
	"unicode"
)

// Class groups characters that share a typing-speed profile.
type Class int

const (
	ClassLetter Class = iota
	ClassUpper
	ClassDigit
	ClassSpace
	ClassNewline
	ClassStop
	ClassExclaim
	ClassColon
	ClassBracket
	ClassOther
)

var classNames = [...]string{
	ClassLetter:  "letter",
	ClassUpper:   "upper",
	ClassDigit:   "digit",
	ClassSpace:   "space",
	ClassNewline: "newline",
	ClassStop:    "stop",
	ClassExclaim: "exclaim",
	ClassColon:   "colon",
	ClassBracket: "bracket",
	ClassOther:   "other",
}

func (c Class) String() string {
	if c < 0 || int(c) >= len(classNames) {
		return "unknown"
	}
	return classNames[c]
}

// Classes lists every class in display order.
func Classes() []Class {
	out := make([]Class, 0, len(classNames))
	for c := range classNames {
		out = append(out, Class(c))
	}
	return out
}

// Classify returns the class of r.
func Classify(r rune) Class {
	switch {
	case r == '\n':
		return ClassNewline
	case r == ' ' || r == '\t':
		return ClassSpace
	case r == '.' || r == ',':
		return ClassStop
	case r == '!' || r == '?':
		return ClassExclaim
	case r == ';' || r == ':':
		return ClassColon
	case strings.ContainsRune("[]{}()<>", r):
		return ClassBracket
	case r >= '0' && r <= '9':
		return ClassDigit
	case unicode.IsUpper(r):
		return ClassUpper
	case unicode.IsLetter(r):
		return ClassLetter
	}
	return ClassOther
}

type multiplierRange struct {
	min, max float64
}

// Sampled per keystroke so the same character never costs the same twice.
var classMultipliers = map[Class]multiplierRange{
	ClassNewline: {1.4, 1.8},
	ClassSpace:   {1.15, 1.45},
	ClassStop:    {1.1, 1.3},
	ClassExclaim: {1.2, 1.45},
	ClassColon:   {1.15, 1.35},
	ClassUpper:   {1.1, 1.25},
	ClassDigit:   {1.05, 1.2},
	ClassBracket: {1.3, 1.6},
}

var defaultDigraphs = []string{
	"th", "he", "in", "er", "an", "re", "on", "at", "en", "nd",
	"ti", "es", "or", "te", "of", "ed", "is", "it", "al", "ar",
	"st", "to", "nt", "ng", "se", "ha", "as", "ou", "io", "le",
	"ve", "co", "me", "de", "hi", "ri", "ro", "ic", "ne", "ea",
	"ra", "ce", "li", "ch", "ll", "be", "ma", "si", "om", "ur",
}

// DefaultDigraphs returns the built-in list of common English letter pairs.
func DefaultDigraphs() []string {
	return append([]string(nil), defaultDigraphs...)
}

func digraphSet(pairs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		p = strings.ToLower(strings.TrimSpace(p))
		if len([]rune(p)) != 2 {
			continue
		}
		set[p] = struct{}{}
	}
	return set
}
