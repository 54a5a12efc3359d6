package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/ghostkeys/internal/keyboard"
	"github.com/verte-zerg/ghostkeys/internal/playback"
)

// Messages posted by Bridge. stateMsg only asks the model to re-read the
// player state.
type (
	typeMsg     struct{ r rune }
	pressMsg    struct{ key keyboard.Key }
	chordMsg    struct{ keys []keyboard.Key }
	progressMsg struct{ done, total int }
	stateMsg    struct{}
	completeMsg struct{}
)

// Bridge is a keyboard.Emitter that forwards keystrokes and playback events
// into a running Bubble Tea program. Events sent before Attach are dropped.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewBridge returns an unattached Bridge.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach routes events to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = p.Send
}

// Hook points the emitter and the progress, state and completion callbacks
// of opts at the bridge.
func (b *Bridge) Hook(opts playback.Options) playback.Options {
	opts.Emitter = b
	opts.OnProgress = func(done, total int) {
		b.post(progressMsg{done: done, total: total})
	}
	// State changes may be reported from inside Update (pause, resume, start),
	// where a blocking send would never be received.
	opts.OnState = func(playback.State) {
		go b.post(stateMsg{})
	}
	opts.OnComplete = func() {
		b.post(completeMsg{})
	}
	return opts
}

// TypeCharacter implements keyboard.Emitter.
func (b *Bridge) TypeCharacter(r rune) error {
	b.post(typeMsg{r: r})
	return nil
}

// PressAndRelease implements keyboard.Emitter.
func (b *Bridge) PressAndRelease(k keyboard.Key) error {
	b.post(pressMsg{key: k})
	return nil
}

// PressChord implements keyboard.Emitter.
func (b *Bridge) PressChord(keys ...keyboard.Key) error {
	b.post(chordMsg{keys: append([]keyboard.Key(nil), keys...)})
	return nil
}

func (b *Bridge) post(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}
