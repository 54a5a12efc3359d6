package wordlist

import (
	"strings"
	"unicode"

	"github.com/verte-zerg/ghostkeys/internal/keyboard"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForLang picks the word filter for generated analysis text. "en"
// keeps lowercase words made only of keys the mistype table covers; any
// other language keeps words with at least one letter.
func FilterForLang(lang string) FilterFunc {
	if strings.EqualFold(lang, "en") {
		return mistypeable
	}
	return hasLetter
}

func mistypeable(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLower(r) || !keyboard.HasNeighbours(r) {
			return false
		}
	}
	return true
}

func hasLetter(word string) bool {
	return strings.IndexFunc(word, unicode.IsLetter) >= 0
}
