// Package playback types a parsed document through a keyboard.Emitter with
// human-like timing, under pause, resume and cancel control.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/verte-zerg/ghostkeys/internal/keyboard"
	"github.com/verte-zerg/ghostkeys/internal/markup"
	"github.com/verte-zerg/ghostkeys/internal/model"
	"github.com/verte-zerg/ghostkeys/internal/timing"
)

var (
	// ErrSessionActive is returned by Start while a session is running or paused.
	ErrSessionActive = errors.New("playback session already active")
	// ErrInvalidConfig wraps TypingConfig validation failures.
	ErrInvalidConfig = errors.New("invalid typing config")
)

// Keystroke describes one typed character.
type Keystroke struct {
	Index   int
	Rune    rune
	Prev    rune
	Class   timing.Class
	Delay   time.Duration
	Mistake bool
}

// Result summarizes a finished session.
type Result struct {
	State       State
	TotalChars  int
	TypedChars  int
	Mistakes    int
	ThinkPauses int
	StartedAt   time.Time
	EndedAt     time.Time
}

// Elapsed returns the wall time the session took.
func (r Result) Elapsed() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// Options configures a Controller. Only Emitter is required.
type Options struct {
	Emitter keyboard.Emitter
	Logger  *zap.Logger
	// Rand overrides the session randomness. When nil each session is seeded
	// from TypingConfig.Seed, or from the clock when the seed is zero.
	Rand     *rand.Rand
	Sleeper  Sleeper
	Heading  HeadingStrategy
	Modifier keyboard.Key

	OnProgress  func(done, total int)
	OnComplete  func()
	OnKeystroke func(Keystroke)
	OnState     func(State)
}

// Controller runs one playback session at a time.
type Controller struct {
	opts Options
	log  *zap.Logger

	mu        sync.Mutex
	state     State
	paused    bool
	cancelled bool
	resumeCh  chan struct{}
	stop      context.CancelFunc
	done      chan struct{}
	result    Result
}

// New builds a Controller.
func New(opts Options) *Controller {
	if opts.Emitter == nil {
		opts.Emitter = keyboard.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Sleeper == nil {
		opts.Sleeper = WallClock{}
	}
	if opts.Heading == nil {
		opts.Heading = DefaultHeadingStrategy()
	}
	if opts.Modifier == "" {
		opts.Modifier = keyboard.ModifierKey()
	}
	return &Controller{opts: opts, log: opts.Logger}
}

// TimingParams converts a TypingConfig into timing model parameters.
func TimingParams(cfg model.TypingConfig) timing.Params {
	p := timing.DefaultParams()
	p.WPM = cfg.WPM
	p.MicroPauseMin = secondsToDuration(cfg.MicroPauseMin)
	p.MicroPauseMax = secondsToDuration(cfg.MicroPauseMax)
	p.ThinkPauseMin = secondsToDuration(cfg.ThinkPauseMin)
	p.ThinkPauseMax = secondsToDuration(cfg.ThinkPauseMax)
	p.JitterStdDev = cfg.JitterStdDev
	if cfg.BurstMin > 0 && cfg.BurstMax >= cfg.BurstMin {
		p.SentencesPerBurst = float64(cfg.BurstMin+cfg.BurstMax) / 2
	}
	p.Digraphs = cfg.Digraphs
	return p
}

// Estimate predicts how long typing text with cfg takes.
func Estimate(text string, cfg model.TypingConfig) time.Duration {
	m := timing.New(TimingParams(cfg), rand.New(rand.NewSource(1)))
	return m.EstimateTotalTime(markup.PlainTextLength(text), cfg.ErrorRate)
}

// Start parses text and begins typing it on a new worker goroutine.
func (c *Controller) Start(text string, cfg model.TypingConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	instructions := markup.Parse(text)

	c.mu.Lock()
	if c.state.Active() {
		c.mu.Unlock()
		return ErrSessionActive
	}
	rng := c.opts.Rand
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	ctx, stop := context.WithCancel(context.Background())
	s := &session{
		c:            c,
		ctx:          ctx,
		cfg:          cfg,
		rng:          rng,
		timing:       timing.New(TimingParams(cfg), rng),
		instructions: instructions,
		total:        markup.Length(instructions),
	}
	c.state = Running
	c.paused = false
	c.cancelled = false
	c.resumeCh = nil
	c.stop = stop
	c.done = make(chan struct{})
	c.result = Result{State: Running, TotalChars: s.total, StartedAt: time.Now()}
	done := c.done
	c.mu.Unlock()

	c.log.Info("playback started",
		zap.Int("chars", s.total),
		zap.Int("instructions", len(instructions)),
		zap.Float64("wpm", cfg.WPM),
		zap.Float64("error_rate", cfg.ErrorRate))
	c.notifyState(Running)

	go func() {
		defer close(done)
		defer stop()
		s.run()
	}()
	return nil
}

// Pause parks the worker before its next character. It reports whether the
// session was running.
func (c *Controller) Pause() bool {
	c.mu.Lock()
	if c.state != Running || c.cancelled {
		c.mu.Unlock()
		return false
	}
	c.paused = true
	c.resumeCh = make(chan struct{})
	c.state = Paused
	c.mu.Unlock()
	c.log.Debug("playback paused")
	c.notifyState(Paused)
	return true
}

// Resume lets a paused worker continue. It reports whether the session was paused.
func (c *Controller) Resume() bool {
	c.mu.Lock()
	if c.state != Paused || c.cancelled {
		c.mu.Unlock()
		return false
	}
	c.paused = false
	close(c.resumeCh)
	c.resumeCh = nil
	c.state = Running
	c.mu.Unlock()
	c.log.Debug("playback resumed")
	c.notifyState(Running)
	return true
}

// Cancel stops the session at its next check point. Sleeps in progress are
// interrupted. It reports whether there was a session to cancel.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	if !c.state.Active() || c.cancelled {
		c.mu.Unlock()
		return false
	}
	c.cancelled = true
	stop := c.stop
	c.mu.Unlock()
	stop()
	c.log.Debug("playback cancel requested")
	return true
}

// IsPaused reports whether the session is paused.
func (c *Controller) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Wait blocks until the current session's worker has exited and returns its
// result. Without a session it returns immediately.
func (c *Controller) Wait() Result {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.result
	r.State = c.state
	return r
}

func (c *Controller) notifyState(s State) {
	if c.opts.OnState != nil {
		c.opts.OnState(s)
	}
}

// checkpoint blocks while paused and reports whether work may continue.
func (c *Controller) checkpoint(ctx context.Context) bool {
	for {
		c.mu.Lock()
		if c.cancelled {
			c.mu.Unlock()
			return false
		}
		if !c.paused {
			c.mu.Unlock()
			return true
		}
		ch := c.resumeCh
		c.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return false
		}
	}
}

func (c *Controller) isCancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

func (c *Controller) finish(s *session) {
	c.mu.Lock()
	final := Completed
	if c.cancelled {
		final = Cancelled
	}
	c.state = final
	c.paused = false
	c.result.State = final
	c.result.TypedChars = s.emitted
	c.result.Mistakes = s.mistakes
	c.result.ThinkPauses = s.thinkPauses
	c.result.EndedAt = time.Now()
	elapsed := c.result.Elapsed()
	c.mu.Unlock()

	c.log.Info("playback finished",
		zap.Stringer("state", final),
		zap.Int("typed", s.emitted),
		zap.Int("total", s.total),
		zap.Int("mistakes", s.mistakes),
		zap.Int("think_pauses", s.thinkPauses),
		zap.Duration("elapsed", elapsed))
	c.notifyState(final)
	if final == Completed && c.opts.OnComplete != nil {
		c.opts.OnComplete()
	}
}

// session holds everything the worker mutates. Only the worker touches it.
type session struct {
	c            *Controller
	ctx          context.Context
	cfg          model.TypingConfig
	rng          *rand.Rand
	timing       *timing.Model
	instructions []markup.Instruction

	total   int
	emitted int
	prev    rune

	terminators   int
	lastTrigger   int
	nextThreshold int

	mistakes    int
	thinkPauses int
}

func (s *session) run() {
	defer s.c.finish(s)

	s.timing.Reset()
	s.timing.StartNewBurst()
	s.terminators = 0
	s.lastTrigger = 0
	s.nextThreshold = s.drawThreshold()

	for _, in := range s.instructions {
		if !s.c.checkpoint(s.ctx) {
			return
		}
		var ok bool
		switch in.Kind {
		case markup.Text:
			ok = s.typeText(in.Content)
		case markup.BoldStart, markup.BoldEnd:
			ok = s.toggle('b')
		case markup.ItalicStart, markup.ItalicEnd:
			ok = s.toggle('i')
		case markup.HeadingStart:
			ok = s.chords(s.c.opts.Heading.Start(in.Level))
		case markup.HeadingEnd:
			ok = s.chords(s.c.opts.Heading.End(in.Level))
		case markup.Newline:
			ok = s.newline()
		default:
			ok = true
		}
		if !ok {
			return
		}
	}
}

func (s *session) typeText(content string) bool {
	for _, r := range content {
		if !s.c.checkpoint(s.ctx) {
			return false
		}
		if s.prev == ' ' {
			if !s.sleep(s.timing.WordPause()) {
				return false
			}
		}
		mistake := false
		if unicode.IsLetter(r) && s.rng.Float64() < s.cfg.ErrorRate {
			var ok bool
			if mistake, ok = s.mistype(r); !ok {
				return false
			}
		}
		s.emit("type", s.c.opts.Emitter.TypeCharacter(r))
		if !s.advance(r, mistake) {
			return false
		}
		if r == '.' || r == '!' || r == '?' {
			s.terminators++
			if s.terminators >= s.lastTrigger+s.nextThreshold {
				if !s.thinkPause() {
					return false
				}
			}
		}
	}
	return true
}

// mistype types a neighbouring key and erases it. It reports whether a
// mistake was made and whether the session may continue.
func (s *session) mistype(r rune) (bool, bool) {
	wrong := keyboard.Adjacent(r, s.rng)
	if wrong == r {
		return false, true
	}
	s.emit("mistype", s.c.opts.Emitter.TypeCharacter(wrong))
	if !s.sleep(s.timing.ErrorCorrectionDelay()) {
		return true, false
	}
	s.emit("backspace", s.c.opts.Emitter.PressAndRelease(keyboard.KeyBackspace))
	if !s.sleep(s.timing.ErrorCorrectionDelay()) {
		return true, false
	}
	s.mistakes++
	return true, true
}

func (s *session) newline() bool {
	s.emit("enter", s.c.opts.Emitter.PressAndRelease(keyboard.KeyEnter))
	return s.advanceWith('\n', '\n', false)
}

func (s *session) advance(r rune, mistake bool) bool {
	return s.advanceWith(s.prev, r, mistake)
}

func (s *session) advanceWith(prev, r rune, mistake bool) bool {
	delay := s.timing.KeystrokeDelay(prev, r)
	if cb := s.c.opts.OnKeystroke; cb != nil {
		cb(Keystroke{
			Index:   s.emitted,
			Rune:    r,
			Prev:    prev,
			Class:   timing.Classify(r),
			Delay:   delay,
			Mistake: mistake,
		})
	}
	s.prev = r
	s.emitted++
	if !s.sleep(delay) {
		return false
	}
	if cb := s.c.opts.OnProgress; cb != nil && !s.c.isCancelled() {
		cb(s.emitted, s.total)
	}
	return true
}

func (s *session) thinkPause() bool {
	pause := s.timing.ThinkPause()
	s.c.log.Debug("burst finished",
		zap.Int("sentences", s.terminators),
		zap.Duration("pause", pause))
	if !s.sleep(pause) {
		return false
	}
	s.thinkPauses++
	s.timing.StartNewBurst()
	s.lastTrigger = s.terminators
	s.nextThreshold = s.drawThreshold()
	return true
}

func (s *session) drawThreshold() int {
	lo, hi := s.cfg.BurstMin, s.cfg.BurstMax
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

func (s *session) toggle(letter rune) bool {
	if !s.sleep(s.timing.FormattingDelay()) {
		return false
	}
	s.emit("shortcut", s.c.opts.Emitter.PressChord(s.c.opts.Modifier, keyboard.KeyRune(letter)))
	return s.sleep(s.timing.FormattingDelay())
}

func (s *session) chords(steps []ChordStep) bool {
	for _, step := range steps {
		if !s.c.checkpoint(s.ctx) {
			return false
		}
		if !s.sleep(s.timing.FormattingDelay()) {
			return false
		}
		s.emit("shortcut", s.c.opts.Emitter.PressChord(step.Keys...))
		if !s.sleep(s.timing.FormattingDelay()) {
			return false
		}
		if !s.sleep(step.Pause) {
			return false
		}
	}
	return true
}

func (s *session) sleep(d time.Duration) bool {
	if d <= 0 {
		return s.ctx.Err() == nil
	}
	return s.c.opts.Sleeper.Sleep(s.ctx, d) == nil
}

func (s *session) emit(op string, err error) {
	if err != nil {
		s.c.log.Debug("keystroke delivery failed", zap.String("op", op), zap.Error(err))
	}
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}
