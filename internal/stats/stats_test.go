package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/ghostkeys/internal/model"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond})
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 60*time.Millisecond, s.Total)
	assert.Equal(t, 10*time.Millisecond, s.Min)
	assert.Equal(t, 30*time.Millisecond, s.Max)
	assert.Equal(t, 20*time.Millisecond, s.Mean)
	want := math.Sqrt(200.0/3) * float64(time.Millisecond)
	assert.InDelta(t, want, float64(s.StdDev), 1)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestEffectiveWPM(t *testing.T) {
	assert.InDelta(t, 60, EffectiveWPM(300, time.Minute), 1e-9)
	assert.Zero(t, EffectiveWPM(0, time.Minute))
	assert.Zero(t, EffectiveWPM(10, 0))
}

func TestMovingAverage(t *testing.T) {
	assert.Equal(t, []float64{1, 1.5, 2.5, 3.5}, MovingAverage([]float64{1, 2, 3, 4}, 2))
	assert.Equal(t, []float64{4, 2}, MovingAverage([]float64{4, 2}, 1))
}

func TestTrendWidth(t *testing.T) {
	assert.Equal(t, "", Trend(nil, 10))
	delays := make([]time.Duration, 100)
	for i := range delays {
		delays[i] = time.Duration(i+1) * time.Millisecond
	}
	trend := Trend(delays, 20)
	assert.Len(t, trend, 20)
	assert.Equal(t, byte('@'), trend[len(trend)-1])
	assert.Len(t, Trend(delays[:5], 20), 5)
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	assert.Equal(t, " @", Sparkline([]float64{0, 9}))
	flat := Sparkline([]float64{2, 2, 2})
	assert.Len(t, flat, 3)
	assert.Equal(t, flat[0], flat[2])
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Observe("space", 200*time.Millisecond)
	c.Observe("letter", 100*time.Millisecond)
	c.Observe("letter", 300*time.Millisecond)
	c.Observe("bracket", 400*time.Millisecond)

	assert.Len(t, c.Delays(), 4)
	classes := c.Classes([]string{"letter", "space", "digit"})
	require.Len(t, classes, 3)
	assert.Equal(t, "letter", classes[0].Class)
	assert.EqualValues(t, 2, classes[0].Count)
	assert.InDelta(t, 200, classes[0].MeanMs(), 1e-9)
	assert.Equal(t, "space", classes[1].Class)
	assert.Equal(t, "bracket", classes[2].Class)
}

func TestSlowestClasses(t *testing.T) {
	mk := func(name string, ms ...time.Duration) model.ClassAggregate {
		agg := model.ClassAggregate{Class: name}
		for _, d := range ms {
			agg.Add(d * time.Millisecond)
		}
		return agg
	}
	aggs := []model.ClassAggregate{
		mk("letter", 100, 120),
		mk("newline", 400),
		mk("space", 200),
		mk("bracket", 200),
		mk("digit"),
	}
	assert.Equal(t, []string{"newline", "bracket", "space"}, SlowestClasses(aggs, 3))
	assert.Len(t, SlowestClasses(aggs, 10), 4)
	assert.Nil(t, SlowestClasses(aggs, 0))
}
