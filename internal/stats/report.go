package stats

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/verte-zerg/ghostkeys/internal/model"
	"github.com/verte-zerg/ghostkeys/internal/store"
)

const (
	smoothingWindow = 10
	histogramBins   = 8
	slowestShown    = 3
)

// Analysis is the outcome of a simulated playback.
type Analysis struct {
	Chars       int
	Elapsed     time.Duration
	Estimate    time.Duration
	Mistakes    int
	ThinkPauses int
	Delays      []time.Duration
	Classes     []model.ClassAggregate
}

// RenderAnalysis writes the summary, the delay curve, the delay histogram and
// the class table for a simulated run.
func RenderAnalysis(w io.Writer, a Analysis, width int, useColor bool) error {
	sum := Summarize(a.Delays)
	var b strings.Builder
	fmt.Fprintf(&b, "Characters:   %d\n", a.Chars)
	fmt.Fprintf(&b, "Simulated:    %s\n", formatDuration(a.Elapsed))
	fmt.Fprintf(&b, "Estimated:    %s\n", formatDuration(a.Estimate))
	fmt.Fprintf(&b, "Effective:    %.1f wpm\n", EffectiveWPM(a.Chars, a.Elapsed))
	fmt.Fprintf(&b, "Mistakes:     %d\n", a.Mistakes)
	fmt.Fprintf(&b, "Think pauses: %d\n", a.ThinkPauses)
	if sum.Count > 0 {
		fmt.Fprintf(&b, "Keystrokes:   %d (mean %s, sd %s, min %s, max %s)\n",
			sum.Count, formatMs(sum.Mean), formatMs(sum.StdDev), formatMs(sum.Min), formatMs(sum.Max))
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if sum.Count == 0 {
		return nil
	}

	ms := Milliseconds(a.Delays)
	plotWidth := PlotWidthFor(width)
	if err := PlotSeries(w, "Keystroke delay (ms)", "ms", []Series{
		{Name: "delay", Values: ms},
		{Name: fmt.Sprintf("avg%d", smoothingWindow), Values: MovingAverage(ms, smoothingWindow)},
	}, plotWidth, defaultPlotHeight, useColor); err != nil {
		return err
	}
	if err := Histogram(w, "Delay distribution", "ms", ms, histogramBins, plotWidth/2); err != nil {
		return err
	}
	return RenderClassTable(w, a.Classes)
}

// RenderClassTable writes per-class delay statistics followed by the slowest
// classes.
func RenderClassTable(w io.Writer, aggs []model.ClassAggregate) error {
	if len(aggs) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		if agg.Count == 0 {
			continue
		}
		rows = append(rows, []string{
			agg.Class,
			fmt.Sprintf("%d", agg.Count),
			fmt.Sprintf("%.0f", agg.MeanMs()),
			fmt.Sprintf("%.0f", agg.StdDevMs()),
			fmt.Sprintf("%.0f", agg.MinMs),
			fmt.Sprintf("%.0f", agg.MaxMs),
		})
	}
	headers := []string{"Class", "Count", "Mean ms", "SD ms", "Min ms", "Max ms"}
	lines := formatTable(headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true})

	var b strings.Builder
	b.WriteString("Per-class delays\n")
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	if slow := SlowestClasses(aggs, slowestShown); len(slow) > 0 {
		b.WriteString("Slowest: " + strings.Join(slow, ", ") + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// History contains stored sessions and their merged class delays.
type History struct {
	Sessions []model.SessionRecord
	Classes  []model.ClassAggregate
}

// BuildHistory loads sessions matching cfg and merges their class delays.
func BuildHistory(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (History, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return History{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	classes, err := st.ClassAggregates(ctx, ids)
	if err != nil {
		return History{}, fmt.Errorf("failed to load class delays: %w", err)
	}
	return History{Sessions: sessions, Classes: classes}, nil
}

// RenderHistory writes the session table, the effective speed trend and the
// merged class table.
func RenderHistory(w io.Writer, h History, width int, useColor bool) error {
	if len(h.Sessions) == 0 {
		_, err := io.WriteString(w, "No sessions recorded.\n")
		return err
	}
	rows := make([][]string, 0, len(h.Sessions))
	speeds := make([]float64, 0, len(h.Sessions))
	for _, s := range h.Sessions {
		eff := s.EffectiveWPM()
		speeds = append(speeds, eff)
		rows = append(rows, []string{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			s.Source,
			s.Target,
			s.Outcome,
			fmt.Sprintf("%d/%d", s.TypedChars, s.TotalChars),
			fmt.Sprintf("%.0f", s.WPM),
			fmt.Sprintf("%.1f", eff),
			fmt.Sprintf("%d", s.Mistakes),
		})
	}
	headers := []string{"Ended", "Source", "Target", "Outcome", "Chars", "WPM", "Eff WPM", "Mistakes"}
	lines := formatTable(headers, rows, map[int]bool{4: true, 5: true, 6: true, 7: true})

	var b strings.Builder
	fmt.Fprintf(&b, "Sessions: %d\n", len(h.Sessions))
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	if len(speeds) > 1 {
		if err := PlotSeries(w, "Effective WPM", "", []Series{{Name: "wpm", Values: speeds}},
			PlotWidthFor(width), defaultPlotHeight, useColor); err != nil {
			return err
		}
	}
	return RenderClassTable(w, h.Classes)
}

func formatMs(d time.Duration) string {
	return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
