package playback

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/verte-zerg/ghostkeys/internal/keyboard"
	"github.com/verte-zerg/ghostkeys/internal/markup"
	"github.com/verte-zerg/ghostkeys/internal/model"
	"github.com/verte-zerg/ghostkeys/internal/timing"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type harness struct {
	rec       *keyboard.Recorder
	clock     *VirtualClock
	progress  atomic.Int64
	completed atomic.Int64
	mu        sync.Mutex
	calls     [][2]int
	states    []State
	strokes   []Keystroke
}

func newHarness() *harness {
	return &harness{rec: keyboard.NewRecorder(), clock: &VirtualClock{}}
}

func (h *harness) controller(seed int64) *Controller {
	return New(Options{
		Emitter:  h.rec,
		Rand:     rand.New(rand.NewSource(seed)),
		Sleeper:  h.clock,
		Modifier: keyboard.KeyCtrl,
		Heading:  FontSizeShortcut{Modifier: keyboard.KeyCtrl, Pause: 100 * time.Millisecond},
		OnProgress: func(done, total int) {
			h.progress.Add(1)
			h.mu.Lock()
			h.calls = append(h.calls, [2]int{done, total})
			h.mu.Unlock()
		},
		OnComplete: func() { h.completed.Add(1) },
		OnKeystroke: func(k Keystroke) {
			h.mu.Lock()
			h.strokes = append(h.strokes, k)
			h.mu.Unlock()
		},
		OnState: func(s State) {
			h.mu.Lock()
			h.states = append(h.states, s)
			h.mu.Unlock()
		},
	})
}

func testConfig() model.TypingConfig {
	cfg := model.DefaultTypingConfig()
	cfg.ErrorRate = 0
	return cfg
}

const sample = "# Title\nHello **bold** and *it*. Done!\nlast line"

func TestStart_TypesPlainText(t *testing.T) {
	h := newHarness()
	c := h.controller(1)

	require.NoError(t, c.Start(sample, testConfig()))
	res := c.Wait()

	want := markup.PlainText(markup.Parse(sample))
	assert.Equal(t, want, h.rec.Text())
	assert.Equal(t, Completed, res.State)
	assert.Equal(t, markup.PlainTextLength(sample), res.TotalChars)
	assert.Equal(t, res.TotalChars, res.TypedChars)
	assert.Equal(t, int64(1), h.completed.Load())
	assert.Equal(t, []string{
		"ctrl+shift+.", "ctrl+shift+.", "ctrl+shift+.",
		"ctrl+b", "ctrl+b", "ctrl+i", "ctrl+i",
	}, h.rec.Chords())

	require.Len(t, h.calls, res.TotalChars)
	for i, call := range h.calls {
		assert.Equal(t, [2]int{i + 1, res.TotalChars}, call)
	}
	assert.Equal(t, []State{Running, Completed}, h.states)
	assert.Equal(t, Completed, c.State())
	assert.False(t, c.IsPaused())
}

func TestStart_NewlinesPressEnter(t *testing.T) {
	h := newHarness()
	c := h.controller(2)
	require.NoError(t, c.Start("a\nb\n\nc", testConfig()))
	c.Wait()

	enters := 0
	for _, ev := range h.rec.Events() {
		if ev.Type == keyboard.EventKey && ev.Keys[0] == keyboard.KeyEnter {
			enters++
		}
	}
	assert.Equal(t, 3, enters)
	assert.Equal(t, "a\nb\n\nc", h.rec.Text())
}

func TestStart_KeystrokeEvents(t *testing.T) {
	h := newHarness()
	c := h.controller(3)
	require.NoError(t, c.Start("ab c", testConfig()))
	c.Wait()

	require.Len(t, h.strokes, 4)
	for i, k := range h.strokes {
		assert.Equal(t, i, k.Index)
		assert.GreaterOrEqual(t, k.Delay, timing.Floor)
	}
	assert.Equal(t, 'b', h.strokes[1].Rune)
	assert.Equal(t, 'a', h.strokes[1].Prev)
	assert.Equal(t, timing.ClassSpace, h.strokes[2].Class)
}

func TestStart_InjectsAndCorrectsMistakes(t *testing.T) {
	h := newHarness()
	c := h.controller(4)
	cfg := testConfig()
	cfg.ErrorRate = model.MaxErrorRate

	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 20)
	require.NoError(t, c.Start(text, cfg))
	res := c.Wait()

	assert.Equal(t, text, h.rec.Text())
	assert.Positive(t, res.Mistakes)

	backspaces := 0
	for _, ev := range h.rec.Events() {
		if ev.Type == keyboard.EventKey && ev.Keys[0] == keyboard.KeyBackspace {
			backspaces++
		}
	}
	assert.Equal(t, res.Mistakes, backspaces)

	marked := 0
	for _, k := range h.strokes {
		if k.Mistake {
			marked++
		}
	}
	assert.Equal(t, res.Mistakes, marked)
}

func TestStart_EmptyText(t *testing.T) {
	h := newHarness()
	c := h.controller(5)
	require.NoError(t, c.Start("", testConfig()))
	res := c.Wait()

	assert.Equal(t, Completed, res.State)
	assert.Zero(t, res.TotalChars)
	assert.Zero(t, h.progress.Load())
	assert.Equal(t, int64(1), h.completed.Load())
	assert.Empty(t, h.rec.Events())
}

func TestStart_InvalidConfig(t *testing.T) {
	c := newHarness().controller(6)
	cfg := testConfig()
	cfg.WPM = 10
	err := c.Start("hi", cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Equal(t, Idle, c.State())

	cfg = testConfig()
	cfg.BurstMin, cfg.BurstMax = 4, 2
	assert.ErrorIs(t, c.Start("hi", cfg), ErrInvalidConfig)
}

type gateSleeper struct {
	entered chan struct{}
}

func (g gateSleeper) Sleep(ctx context.Context, _ time.Duration) error {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestStart_RejectsSecondSession(t *testing.T) {
	gate := gateSleeper{entered: make(chan struct{}, 1)}
	completed := 0
	c := New(Options{
		Emitter:    keyboard.NewRecorder(),
		Rand:       rand.New(rand.NewSource(7)),
		Sleeper:    gate,
		OnComplete: func() { completed++ },
	})

	require.NoError(t, c.Start("hello", testConfig()))
	<-gate.entered
	assert.ErrorIs(t, c.Start("again", testConfig()), ErrSessionActive)

	require.True(t, c.Pause())
	assert.ErrorIs(t, c.Start("again", testConfig()), ErrSessionActive)

	require.True(t, c.Cancel())
	assert.False(t, c.Cancel())
	res := c.Wait()
	assert.Equal(t, Cancelled, res.State)
	assert.Zero(t, completed)

	c2 := New(Options{Rand: rand.New(rand.NewSource(7)), Sleeper: &VirtualClock{}})
	require.NoError(t, c2.Start("ok", testConfig()))
	assert.Equal(t, Completed, c2.Wait().State)
	require.NoError(t, c2.Start("ok again", testConfig()))
	assert.Equal(t, Completed, c2.Wait().State)
}

func TestCancel_StopsProgressAndCompletion(t *testing.T) {
	h := newHarness()
	c := h.controller(8)
	var atCancel int64
	h.clock.OnSleep = func(i int, _ time.Duration) {
		if i == 5 {
			c.Cancel()
			atCancel = h.progress.Load()
		}
	}

	text := strings.Repeat("words and more words. ", 10)
	require.NoError(t, c.Start(text, testConfig()))
	res := c.Wait()

	assert.Equal(t, Cancelled, res.State)
	assert.Equal(t, atCancel, h.progress.Load())
	assert.Zero(t, h.completed.Load())
	assert.Less(t, res.TypedChars, res.TotalChars)
	assert.Equal(t, len(h.rec.Text()), res.TypedChars)
	assert.Equal(t, int(atCancel)+1, res.TypedChars)
	assert.Equal(t, Cancelled, h.states[len(h.states)-1])
}

func TestHeadingShortcutsWrappedInFormattingDelay(t *testing.T) {
	h := newHarness()
	c := h.controller(13)
	require.NoError(t, c.Start("# A", testConfig()))
	c.Wait()

	sleeps := h.clock.Sleeps()
	require.GreaterOrEqual(t, len(sleeps), 10)
	for step := 0; step < 3; step++ {
		before, after, pause := sleeps[step*3], sleeps[step*3+1], sleeps[step*3+2]
		for _, d := range []time.Duration{before, after} {
			assert.GreaterOrEqual(t, d, 149*time.Millisecond)
			assert.LessOrEqual(t, d, 351*time.Millisecond)
		}
		assert.Equal(t, 100*time.Millisecond, pause)
	}
	assert.Len(t, h.rec.Chords(), 3)
	assert.Equal(t, "A", h.rec.Text())
}

func TestPauseResume_NoSkipOrDuplicate(t *testing.T) {
	h := newHarness()
	c := h.controller(9)
	h.clock.OnSleep = func(i int, _ time.Duration) {
		if i == 10 {
			c.Pause()
		}
	}

	text := "Pausing in the middle should not lose a single character."
	require.NoError(t, c.Start(text, testConfig()))

	require.Eventually(t, func() bool { return c.IsPaused() }, time.Second, time.Millisecond)
	assert.Equal(t, Paused, c.State())
	assert.False(t, c.Pause())

	time.Sleep(20 * time.Millisecond)
	frozen := h.progress.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, frozen, h.progress.Load())
	assert.Less(t, frozen, int64(len(text)))

	require.True(t, c.Resume())
	assert.False(t, c.Resume())
	res := c.Wait()

	assert.Equal(t, Completed, res.State)
	assert.Equal(t, text, h.rec.Text())
	assert.Len(t, h.rec.Events(), len(text))
	assert.Equal(t, int64(len(text)), h.progress.Load())
	assert.Equal(t, int64(1), h.completed.Load())
	assert.Contains(t, h.states, Paused)
}

func TestCancel_WhilePaused(t *testing.T) {
	h := newHarness()
	c := h.controller(10)
	h.clock.OnSleep = func(i int, _ time.Duration) {
		if i == 3 {
			c.Pause()
		}
	}
	require.NoError(t, c.Start("some text to type", testConfig()))
	require.Eventually(t, func() bool { return c.IsPaused() }, time.Second, time.Millisecond)

	require.True(t, c.Cancel())
	done := make(chan Result)
	go func() { done <- c.Wait() }()
	select {
	case res := <-done:
		assert.Equal(t, Cancelled, res.State)
	case <-time.After(time.Second):
		t.Fatal("cancel while paused did not stop the worker")
	}
	assert.Zero(t, h.completed.Load())
	assert.False(t, c.IsPaused())
}

func TestBurstPauses(t *testing.T) {
	h := newHarness()
	c := h.controller(11)
	cfg := testConfig()
	cfg.BurstMin, cfg.BurstMax = 2, 2

	require.NoError(t, c.Start(strings.Repeat("A. ", 20), cfg))
	res := c.Wait()
	assert.Equal(t, 10, res.ThinkPauses)

	long := 0
	for _, d := range h.clock.Sleeps() {
		if d >= time.Second {
			long++
		}
	}
	assert.GreaterOrEqual(t, long, 10)
}

func TestControlWithoutSession(t *testing.T) {
	c := New(Options{})
	assert.False(t, c.Pause())
	assert.False(t, c.Resume())
	assert.False(t, c.Cancel())
	assert.Equal(t, Idle, c.Wait().State)
}

func TestEstimate(t *testing.T) {
	cfg := model.DefaultTypingConfig()
	assert.Zero(t, Estimate("", cfg))

	est := Estimate("**Hi** *there*", cfg)
	m := timing.New(TimingParams(cfg), rand.New(rand.NewSource(42)))
	assert.Equal(t, m.EstimateTotalTime(8, cfg.ErrorRate), est)
	assert.Equal(t, est, Estimate("**Hi** *there*", cfg))
}

func TestTimingParams(t *testing.T) {
	cfg := model.DefaultTypingConfig()
	cfg.Digraphs = []string{"qz"}
	p := TimingParams(cfg)
	assert.Equal(t, 60.0, p.WPM)
	assert.Equal(t, time.Second, p.ThinkPauseMin)
	assert.Equal(t, 3*time.Second, p.ThinkPauseMax)
	assert.Equal(t, 50*time.Millisecond, p.MicroPauseMin)
	assert.Equal(t, 3.0, p.SentencesPerBurst)
	assert.Equal(t, []string{"qz"}, p.Digraphs)
}

func TestTimingParams_ZeroJitterDisablesJitter(t *testing.T) {
	cfg := model.DefaultTypingConfig()
	cfg.JitterStdDev = 0
	require.NoError(t, cfg.Validate())
	assert.Zero(t, TimingParams(cfg).JitterStdDev)
	m := timing.New(TimingParams(cfg), rand.New(rand.NewSource(1)))
	assert.Zero(t, m.Params().JitterStdDev)
}
