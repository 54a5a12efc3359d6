// Package stats contains timing statistics and text reports.
package stats

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/ghostkeys/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary describes a set of delays.
type Summary struct {
	Count  int
	Total  time.Duration
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	StdDev time.Duration
}

// Summarize computes count, total, extremes, mean and population standard
// deviation of delays.
func Summarize(delays []time.Duration) Summary {
	if len(delays) == 0 {
		return Summary{}
	}
	s := Summary{Count: len(delays), Min: delays[0], Max: delays[0]}
	for _, d := range delays {
		s.Total += d
		if d < s.Min {
			s.Min = d
		}
		if d > s.Max {
			s.Max = d
		}
	}
	mean := float64(s.Total) / float64(s.Count)
	var sq float64
	for _, d := range delays {
		diff := float64(d) - mean
		sq += diff * diff
	}
	s.Mean = time.Duration(mean)
	s.StdDev = time.Duration(math.Sqrt(sq / float64(s.Count)))
	return s
}

// EffectiveWPM converts characters typed over elapsed into words per minute,
// counting five characters per word.
func EffectiveWPM(chars int, elapsed time.Duration) float64 {
	if chars <= 0 || elapsed <= 0 {
		return 0
	}
	return float64(chars) / 5 / elapsed.Minutes()
}

// Milliseconds converts delays to float milliseconds for plotting.
func Milliseconds(delays []time.Duration) []float64 {
	out := make([]float64, len(delays))
	for i, d := range delays {
		out[i] = float64(d) / float64(time.Millisecond)
	}
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := minMax(values)
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[clampInt(idx, 0, last)])
	}
	return b.String()
}

// Trend renders the smoothed delay curve as a sparkline at most width
// characters wide.
func Trend(delays []time.Duration, width int) string {
	if len(delays) == 0 || width <= 0 {
		return ""
	}
	smoothed := MovingAverage(Milliseconds(delays), smoothingWindow)
	if len(smoothed) > width {
		smoothed = resample(smoothed, width)
	}
	return Sparkline(smoothed)
}

// Collector accumulates keystroke delays per character class. It is safe to
// feed from a playback worker while another goroutine reads it.
type Collector struct {
	mu      sync.Mutex
	delays  []time.Duration
	classes map[string]*model.ClassAggregate
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{classes: map[string]*model.ClassAggregate{}}
}

// Observe records one keystroke delay.
func (c *Collector) Observe(class string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delays = append(c.delays, d)
	agg, ok := c.classes[class]
	if !ok {
		agg = &model.ClassAggregate{Class: class}
		c.classes[class] = agg
	}
	agg.Add(d)
}

// Delays returns every observed delay in order.
func (c *Collector) Delays() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.delays...)
}

// Classes returns the per-class aggregates ordered as in order; classes not
// listed there follow alphabetically.
func (c *Collector) Classes(order []string) []model.ClassAggregate {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ClassAggregate, 0, len(c.classes))
	seen := map[string]bool{}
	for _, name := range order {
		if agg, ok := c.classes[name]; ok {
			out = append(out, *agg)
			seen[name] = true
		}
	}
	var rest []string
	for name := range c.classes {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, *c.classes[name])
	}
	return out
}

func minMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
