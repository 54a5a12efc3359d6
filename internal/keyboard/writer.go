package keyboard

import (
	"io"
	"sync"
)

// WriterEmitter types into an io.Writer such as a terminal. Chords and
// modifier keys have no textual effect and are dropped.
type WriterEmitter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterEmitter wraps w.
func NewWriterEmitter(w io.Writer) *WriterEmitter {
	return &WriterEmitter{w: w}
}

// TypeCharacter implements Emitter.
func (e *WriterEmitter) TypeCharacter(r rune) error {
	return e.write(string(r))
}

// PressAndRelease implements Emitter.
func (e *WriterEmitter) PressAndRelease(k Key) error {
	switch k {
	case KeyEnter:
		return e.write("\n")
	case KeyBackspace:
		return e.write("\b \b")
	case KeyTab:
		return e.write("\t")
	}
	if r, ok := k.Rune(); ok {
		return e.write(string(r))
	}
	return nil
}

// PressChord implements Emitter.
func (e *WriterEmitter) PressChord(...Key) error {
	return nil
}

func (e *WriterEmitter) write(s string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := io.WriteString(e.w, s)
	return err
}
