// Package keyboard defines the keystroke emission capability and the
// read-only keyboard tables shared by every playback session.
package keyboard

import (
	"math/rand"
	"runtime"
	"unicode"
	"unicode/utf8"
)

// Key names a key that can be pressed. Printable keys are the single-rune
// string of the character; non-printing keys use the constants below.
type Key string

const (
	KeyEnter     Key = "enter"
	KeyBackspace Key = "backspace"
	KeyTab       Key = "tab"
	KeyEscape    Key = "escape"
	KeyShift     Key = "shift"
	KeyCtrl      Key = "ctrl"
	KeyCmd       Key = "cmd"
	KeyAlt       Key = "alt"
)

// KeyRune returns the key for a printable character.
func KeyRune(r rune) Key {
	return Key(string(r))
}

// Rune returns the character of a printable key.
func (k Key) Rune() (rune, bool) {
	if utf8.RuneCountInString(string(k)) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(string(k))
	return r, true
}

// IsModifier reports whether the key only modifies a chord.
func (k Key) IsModifier() bool {
	switch k {
	case KeyShift, KeyCtrl, KeyCmd, KeyAlt:
		return true
	}
	return false
}

// Emitter delivers keystrokes to whatever receives them. Implementations are
// best-effort: callers log returned errors but never abort playback on them.
type Emitter interface {
	TypeCharacter(r rune) error
	PressAndRelease(k Key) error
	// PressChord presses keys in order and releases them in reverse.
	PressChord(keys ...Key) error
}

// Nop discards every keystroke.
type Nop struct{}

// TypeCharacter implements Emitter.
func (Nop) TypeCharacter(rune) error { return nil }

// PressAndRelease implements Emitter.
func (Nop) PressAndRelease(Key) error { return nil }

// PressChord implements Emitter.
func (Nop) PressChord(...Key) error { return nil }

// ModifierKey returns the platform shortcut modifier: Cmd on macOS, Ctrl elsewhere.
func ModifierKey() Key {
	return modifierForOS(runtime.GOOS)
}

func modifierForOS(goos string) Key {
	if goos == "darwin" {
		return KeyCmd
	}
	return KeyCtrl
}

var adjacentKeys = map[rune][]rune{
	'q': []rune("wa"), 'w': []rune("qesa"), 'e': []rune("wrds"),
	'r': []rune("etfd"), 't': []rune("rygf"), 'y': []rune("tuhg"),
	'u': []rune("yijh"), 'i': []rune("uokj"), 'o': []rune("iplk"),
	'p': []rune("ol"),
	'a': []rune("qwsz"), 's': []rune("awedzx"),
	'd': []rune("serfxc"), 'f': []rune("drtgcv"),
	'g': []rune("ftyhvb"), 'h': []rune("gyujbn"),
	'j': []rune("huiknm"), 'k': []rune("jiolm"),
	'l': []rune("kop"),
	'z': []rune("asx"), 'x': []rune("zsdc"), 'c': []rune("xdfv"),
	'v': []rune("cfgb"), 'b': []rune("vghn"), 'n': []rune("bhjm"),
	'm': []rune("njk"),
}

// Adjacent picks a physically neighbouring QWERTY key for r, keeping its
// case. Characters without neighbours are returned unchanged.
func Adjacent(r rune, rng *rand.Rand) rune {
	neighbours, ok := adjacentKeys[unicode.ToLower(r)]
	if !ok || rng == nil {
		return r
	}
	wrong := neighbours[rng.Intn(len(neighbours))]
	if unicode.IsUpper(r) {
		return unicode.ToUpper(wrong)
	}
	return wrong
}

// HasNeighbours reports whether Adjacent can produce a different key for r.
func HasNeighbours(r rune) bool {
	_, ok := adjacentKeys[unicode.ToLower(r)]
	return ok
}
