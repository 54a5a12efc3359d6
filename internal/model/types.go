// Package model defines shared data structures.
package model

import (
	"fmt"
	"math"
	"time"
)

// TypingConfig is the single set of typing settings every front-end uses.
// Pause bounds are in seconds.
type TypingConfig struct {
	WPM           float64
	ErrorRate     float64
	BurstMin      int
	BurstMax      int
	ThinkPauseMin float64
	ThinkPauseMax float64
	MicroPauseMin float64
	MicroPauseMax float64
	JitterStdDev  float64
	Countdown     int
	Seed          int64
	Digraphs      []string
}

// Allowed ranges for TypingConfig.
const (
	MinWPM       = 30
	MaxWPM       = 400
	MaxErrorRate = 0.1
	MaxJitter    = 1.0
)

// DefaultTypingConfig returns the settings of an unhurried 60 wpm typist.
func DefaultTypingConfig() TypingConfig {
	return TypingConfig{
		WPM:           60,
		ErrorRate:     0.03,
		BurstMin:      2,
		BurstMax:      4,
		ThinkPauseMin: 1.0,
		ThinkPauseMax: 3.0,
		MicroPauseMin: 0.05,
		MicroPauseMax: 0.15,
		JitterStdDev:  0.15,
		Countdown:     3,
	}
}

// Validate reports the first setting outside its allowed range.
func (c TypingConfig) Validate() error {
	switch {
	case math.IsNaN(c.WPM) || c.WPM < MinWPM || c.WPM > MaxWPM:
		return fmt.Errorf("wpm must be between %d and %d, got %v", MinWPM, MaxWPM, c.WPM)
	case math.IsNaN(c.ErrorRate) || c.ErrorRate < 0 || c.ErrorRate > MaxErrorRate:
		return fmt.Errorf("error rate must be between 0 and %v, got %v", MaxErrorRate, c.ErrorRate)
	case c.BurstMin < 1:
		return fmt.Errorf("burst min must be at least 1, got %d", c.BurstMin)
	case c.BurstMax < c.BurstMin:
		return fmt.Errorf("burst max (%d) must not be below burst min (%d)", c.BurstMax, c.BurstMin)
	case c.ThinkPauseMin < 0:
		return fmt.Errorf("think pause min must not be negative, got %v", c.ThinkPauseMin)
	case c.ThinkPauseMax < c.ThinkPauseMin:
		return fmt.Errorf("think pause max (%v) must not be below think pause min (%v)", c.ThinkPauseMax, c.ThinkPauseMin)
	case c.MicroPauseMin < 0:
		return fmt.Errorf("micro pause min must not be negative, got %v", c.MicroPauseMin)
	case c.MicroPauseMax < c.MicroPauseMin:
		return fmt.Errorf("micro pause max (%v) must not be below micro pause min (%v)", c.MicroPauseMax, c.MicroPauseMin)
	case c.JitterStdDev < 0 || c.JitterStdDev > MaxJitter:
		return fmt.Errorf("jitter must be between 0 and %v, got %v", MaxJitter, c.JitterStdDev)
	case c.Countdown < 0:
		return fmt.Errorf("countdown must not be negative, got %d", c.Countdown)
	}
	return nil
}

// LogConfig defines where and how much the program logs.
type LogConfig struct {
	Level      string
	File       string
	Format     string
	MaxSizeMB  int
	MaxBackups int
	Console    bool
}

// Session outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
)

// SessionRecord summarizes one playback run.
type SessionRecord struct {
	ID          string
	StartedAt   time.Time
	EndedAt     time.Time
	Outcome     string
	Source      string
	Target      string
	WPM         float64
	ErrorRate   float64
	TotalChars  int
	TypedChars  int
	Mistakes    int
	ThinkPauses int
	DurationMs  int64
}

// EffectiveWPM is the speed actually achieved, counting five characters per word.
func (r SessionRecord) EffectiveWPM() float64 {
	if r.DurationMs <= 0 {
		return 0
	}
	minutes := float64(r.DurationMs) / float64(time.Minute/time.Millisecond)
	return float64(r.TypedChars) / 5 / minutes
}

// ClassAggregate accumulates keystroke delays of one character class.
type ClassAggregate struct {
	Class   string
	Count   int64
	SumMs   float64
	SumSqMs float64
	MinMs   float64
	MaxMs   float64
}

// Add folds one delay into the aggregate.
func (a *ClassAggregate) Add(d time.Duration) {
	ms := float64(d) / float64(time.Millisecond)
	if a.Count == 0 || ms < a.MinMs {
		a.MinMs = ms
	}
	if a.Count == 0 || ms > a.MaxMs {
		a.MaxMs = ms
	}
	a.Count++
	a.SumMs += ms
	a.SumSqMs += ms * ms
}

// Merge folds another aggregate of the same class into a.
func (a *ClassAggregate) Merge(b ClassAggregate) {
	if b.Count == 0 {
		return
	}
	if a.Count == 0 || b.MinMs < a.MinMs {
		a.MinMs = b.MinMs
	}
	if a.Count == 0 || b.MaxMs > a.MaxMs {
		a.MaxMs = b.MaxMs
	}
	a.Count += b.Count
	a.SumMs += b.SumMs
	a.SumSqMs += b.SumSqMs
}

// MeanMs returns the average delay in milliseconds.
func (a ClassAggregate) MeanMs() float64 {
	if a.Count == 0 {
		return 0
	}
	return a.SumMs / float64(a.Count)
}

// StdDevMs returns the population standard deviation in milliseconds.
func (a ClassAggregate) StdDevMs() float64 {
	if a.Count == 0 {
		return 0
	}
	mean := a.MeanMs()
	v := a.SumSqMs/float64(a.Count) - mean*mean
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}

// HistoryConfig defines filters for the session history report.
type HistoryConfig struct {
	Since  *time.Time
	Last   int
	Source string
}
