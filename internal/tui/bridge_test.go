package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/ghostkeys/internal/keyboard"
	"github.com/verte-zerg/ghostkeys/internal/playback"
)

func TestBridgeDropsEventsBeforeAttach(t *testing.T) {
	b := NewBridge()
	require.NoError(t, b.TypeCharacter('a'))
	require.NoError(t, b.PressAndRelease(keyboard.KeyEnter))
	require.NoError(t, b.PressChord(keyboard.KeyCtrl, keyboard.KeyRune('b')))
}

func TestBridgeForwardsEvents(t *testing.T) {
	msgs := make(chan tea.Msg, 16)
	b := NewBridge()
	b.send = func(msg tea.Msg) { msgs <- msg }

	opts := b.Hook(playback.Options{})
	require.Same(t, b, opts.Emitter)

	keys := []keyboard.Key{keyboard.KeyCtrl, keyboard.KeyRune('i')}
	require.NoError(t, opts.Emitter.TypeCharacter('x'))
	require.NoError(t, opts.Emitter.PressAndRelease(keyboard.KeyBackspace))
	require.NoError(t, opts.Emitter.PressChord(keys...))
	keys[1] = keyboard.KeyRune('b')
	opts.OnProgress(3, 9)
	opts.OnComplete()

	assert.Equal(t, typeMsg{r: 'x'}, <-msgs)
	assert.Equal(t, pressMsg{key: keyboard.KeyBackspace}, <-msgs)
	assert.Equal(t, chordMsg{keys: []keyboard.Key{keyboard.KeyCtrl, keyboard.KeyRune('i')}}, <-msgs)
	assert.Equal(t, progressMsg{done: 3, total: 9}, <-msgs)
	assert.Equal(t, completeMsg{}, <-msgs)

	opts.OnState(playback.Paused)
	select {
	case msg := <-msgs:
		assert.Equal(t, stateMsg{}, msg)
	case <-time.After(time.Second):
		t.Fatal("state change was not forwarded")
	}
}
