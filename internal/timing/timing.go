// Package timing produces human-like keystroke delays.
//
// A Model is stateful: it tracks how much has been typed in the current
// session to model fatigue and sentence-level bursts. It is not safe for
// concurrent use; the playback worker owns it for the length of a session.
package timing

import (
	"math"
	"math/rand"
	"strings"
	"time"
)

const (
	digraphFactor   = 0.7
	jitterMin       = 0.5
	jitterMax       = 2.0
	fatigueCap      = 0.25
	fatigueScale    = 8000.0
	microNoiseShare = 0.3

	microStallProb    = 0.04
	postSpaceProb     = 0.015
	postSpaceMin      = 0.15
	postSpaceMax      = 0.4
	wordPauseProb     = 0.08
	wordPauseMin      = 0.10
	wordPauseMax      = 0.35
	thinkExtendProb   = 0.15
	thinkExtendMin    = 1.5
	thinkExtendMax    = 2.5
	burstMultMin      = 0.7
	burstMultMax      = 1.3
	correctionMin     = 0.10
	correctionMax     = 0.25
	formattingMin     = 0.15
	formattingMax     = 0.35
	charsPerWord      = 5.0
	charsPerSentence  = 80.0
	minWPM            = 1.0
	defaultJitter     = 0.15
	defaultPerBurst   = 3.0
	secondsPerMinute  = 60.0
	avgWordWithSpace  = charsPerWord + 1
	minJitterStdDev   = 0.0
	maxJitterStdDev   = 1.0
	neutralMultiplier = 1.0
)

// Floor is the shortest delay KeystrokeDelay ever returns.
const Floor = 20 * time.Millisecond

// Params configures a Model.
type Params struct {
	WPM           float64
	MicroPauseMin time.Duration
	MicroPauseMax time.Duration
	ThinkPauseMin time.Duration
	ThinkPauseMax time.Duration
	// JitterStdDev is the standard deviation of the per-keystroke Gaussian
	// multiplier. Zero disables jitter.
	JitterStdDev float64
	// SentencesPerBurst is the mean burst length used by estimates.
	SentencesPerBurst float64
	// Digraphs replaces the built-in digraph list when non-empty.
	Digraphs []string
}

// DefaultParams returns the parameters of a 60 wpm typist.
func DefaultParams() Params {
	return Params{
		WPM:               60,
		MicroPauseMin:     50 * time.Millisecond,
		MicroPauseMax:     150 * time.Millisecond,
		ThinkPauseMin:     time.Second,
		ThinkPauseMax:     3 * time.Second,
		JitterStdDev:      defaultJitter,
		SentencesPerBurst: defaultPerBurst,
	}
}

// State is the per-session counters of a Model.
type State struct {
	CharsTyped           int
	FatigueFactor        float64
	BurstSpeedMultiplier float64
	CharsInCurrentBurst  int
}

// Model generates delays for one typing session at a time.
type Model struct {
	params   Params
	rng      *rand.Rand
	digraphs map[string]struct{}
	state    State
}

// New builds a Model. A nil rng is replaced with a time-seeded one.
func New(params Params, rng *rand.Rand) *Model {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	params = normalizeParams(params)
	pairs := params.Digraphs
	if len(pairs) == 0 {
		pairs = defaultDigraphs
	}
	m := &Model{
		params:   params,
		rng:      rng,
		digraphs: digraphSet(pairs),
	}
	m.Reset()
	return m
}

func normalizeParams(p Params) Params {
	if p.WPM < minWPM || math.IsNaN(p.WPM) {
		p.WPM = minWPM
	}
	if p.MicroPauseMin < 0 {
		p.MicroPauseMin = 0
	}
	if p.MicroPauseMax < p.MicroPauseMin {
		p.MicroPauseMax = p.MicroPauseMin
	}
	if p.ThinkPauseMin < 0 {
		p.ThinkPauseMin = 0
	}
	if p.ThinkPauseMax < p.ThinkPauseMin {
		p.ThinkPauseMax = p.ThinkPauseMin
	}
	if p.JitterStdDev < minJitterStdDev || math.IsNaN(p.JitterStdDev) {
		p.JitterStdDev = defaultJitter
	}
	if p.JitterStdDev > maxJitterStdDev {
		p.JitterStdDev = maxJitterStdDev
	}
	if p.SentencesPerBurst < 1 || math.IsNaN(p.SentencesPerBurst) {
		p.SentencesPerBurst = defaultPerBurst
	}
	return p
}

// Params returns the normalized parameters the model runs with.
func (m *Model) Params() Params {
	return m.params
}

// Reset clears the session counters.
func (m *Model) Reset() {
	m.state = State{
		FatigueFactor:        neutralMultiplier,
		BurstSpeedMultiplier: neutralMultiplier,
	}
}

// Snapshot returns a copy of the session counters.
func (m *Model) Snapshot() State {
	return m.state
}

// BaseDelay is the mean time per character at the configured speed.
func (m *Model) BaseDelay() time.Duration {
	return seconds(m.baseSeconds())
}

func (m *Model) baseSeconds() float64 {
	return secondsPerMinute / (m.params.WPM * charsPerWord)
}

// IsDigraph reports whether prev followed by curr is a familiar pair.
func (m *Model) IsDigraph(prev, curr rune) bool {
	if prev == 0 {
		return false
	}
	_, ok := m.digraphs[strings.ToLower(string([]rune{prev, curr}))]
	return ok
}

// KeystrokeDelay returns the delay to wait after typing curr when prev was
// the character before it. prev is 0 at the start of a session.
func (m *Model) KeystrokeDelay(prev, curr rune) time.Duration {
	delay := m.baseSeconds()

	if m.IsDigraph(prev, curr) {
		delay *= digraphFactor
	}
	if r, ok := classMultipliers[Classify(curr)]; ok {
		delay *= m.uniform(r.min, r.max)
	}
	delay *= m.state.BurstSpeedMultiplier

	jitter := 1 + m.rng.NormFloat64()*m.params.JitterStdDev
	delay *= clamp(jitter, jitterMin, jitterMax)

	m.state.FatigueFactor = fatigueAt(m.state.CharsTyped)
	delay *= m.state.FatigueFactor

	microMin := m.params.MicroPauseMin.Seconds()
	microMax := m.params.MicroPauseMax.Seconds()
	delay += m.uniform(microMin, microMax) * microNoiseShare
	if m.rng.Float64() < microStallProb {
		delay += m.uniform(microMin, microMax)
	}
	if prev == ' ' && m.rng.Float64() < postSpaceProb {
		delay += m.uniform(postSpaceMin, postSpaceMax)
	}

	m.state.CharsTyped++
	m.state.CharsInCurrentBurst++
	if d := seconds(delay); d > Floor {
		return d
	}
	return Floor
}

func fatigueAt(chars int) float64 {
	return neutralMultiplier + fatigueCap*(1-math.Exp(-float64(chars)/fatigueScale))
}

// WordPause occasionally returns a short hesitation to insert at a word
// boundary. Most calls return zero.
func (m *Model) WordPause() time.Duration {
	if m.rng.Float64() >= wordPauseProb {
		return 0
	}
	return seconds(m.uniform(wordPauseMin, wordPauseMax))
}

// ThinkPause returns the pause between two bursts. Some pauses are
// stretched to model re-reading.
func (m *Model) ThinkPause() time.Duration {
	pause := m.uniform(m.params.ThinkPauseMin.Seconds(), m.params.ThinkPauseMax.Seconds())
	if m.rng.Float64() < thinkExtendProb {
		pause *= m.uniform(thinkExtendMin, thinkExtendMax)
	}
	return seconds(pause)
}

// ErrorCorrectionDelay is the pause around a mistyped key and its backspace.
func (m *Model) ErrorCorrectionDelay() time.Duration {
	return seconds(m.uniform(correctionMin, correctionMax))
}

// FormattingDelay is the pause around a formatting shortcut.
func (m *Model) FormattingDelay() time.Duration {
	return seconds(m.uniform(formattingMin, formattingMax))
}

// StartNewBurst picks the speed of the next burst.
func (m *Model) StartNewBurst() {
	m.state.BurstSpeedMultiplier = m.uniform(burstMultMin, burstMultMax)
	m.state.CharsInCurrentBurst = 0
}

func (m *Model) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + m.rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
