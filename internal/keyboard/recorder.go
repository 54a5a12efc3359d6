package keyboard

import (
	"strings"
	"sync"
)

// EventType classifies a recorded keystroke event.
type EventType int

const (
	EventChar EventType = iota
	EventKey
	EventChord
)

// Event is one call made against a Recorder.
type Event struct {
	Type EventType
	Rune rune
	Keys []Key
}

// Recorder is an Emitter that keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	// OnEvent, if set, is called after each event is recorded.
	OnEvent func(Event)
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// TypeCharacter implements Emitter.
func (r *Recorder) TypeCharacter(ch rune) error {
	r.record(Event{Type: EventChar, Rune: ch})
	return nil
}

// PressAndRelease implements Emitter.
func (r *Recorder) PressAndRelease(k Key) error {
	r.record(Event{Type: EventKey, Keys: []Key{k}})
	return nil
}

// PressChord implements Emitter.
func (r *Recorder) PressChord(keys ...Key) error {
	r.record(Event{Type: EventChord, Keys: append([]Key(nil), keys...)})
	return nil
}

func (r *Recorder) record(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	hook := r.OnEvent
	r.mu.Unlock()
	if hook != nil {
		hook(ev)
	}
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Text replays the recorded events into the text a plain editor would hold:
// characters append, Backspace deletes, Enter starts a new line.
func (r *Recorder) Text() string {
	var buf []rune
	for _, ev := range r.Events() {
		switch ev.Type {
		case EventChar:
			buf = append(buf, ev.Rune)
		case EventKey:
			switch ev.Keys[0] {
			case KeyBackspace:
				if len(buf) > 0 {
					buf = buf[:len(buf)-1]
				}
			case KeyEnter:
				buf = append(buf, '\n')
			case KeyTab:
				buf = append(buf, '\t')
			}
		}
	}
	return string(buf)
}

// Chords returns every chord pressed, rendered as "ctrl+b".
func (r *Recorder) Chords() []string {
	var out []string
	for _, ev := range r.Events() {
		if ev.Type != EventChord {
			continue
		}
		parts := make([]string, len(ev.Keys))
		for i, k := range ev.Keys {
			parts[i] = string(k)
		}
		out = append(out, strings.Join(parts, "+"))
	}
	return out
}
