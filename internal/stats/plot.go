package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"
)

// Series is a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisLabelWidth      = 8
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
	histogramBar        = "█"
)

var palette = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m"}

// brailleBits[x][y] is the dot bit for sub-cell (x, y) of a braille glyph.
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// PlotWidthFor returns the plot area width that fits in totalWidth columns
// next to the value axis.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	w := totalWidth - axisLabelWidth - len([]rune(axisSeparator))
	if w < minPlotWidth {
		return minPlotWidth
	}
	return w
}

// TerminalWidth returns the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// UseColor reports whether ANSI colors should be written to w.
func UseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// PlotSeries draws series as braille line charts on one shared value scale.
func PlotSeries(w io.Writer, title, unit string, series []Series, width, height int, useColor bool) error {
	var kept []Series
	var all []float64
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
			all = append(all, s.Values...)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	lo, hi := minMax(all)
	if hi-lo < 1e-9 {
		lo, hi = lo-1, hi+1
	}

	grids := make([][][]uint8, len(kept))
	for i, s := range kept {
		grid := make([][]uint8, height)
		for y := range grid {
			grid[y] = make([]uint8, width)
		}
		points := resample(s.Values, width*2)
		prevX, prevY := -1, -1
		for x, v := range points {
			y := int(math.Round((hi - v) / (hi - lo) * float64(height*4-1)))
			y = clampInt(y, 0, height*4-1)
			if prevX < 0 {
				setDot(grid, x, y)
			} else {
				bresenham(prevX, prevY, x, y, func(px, py int) { setDot(grid, px, py) })
			}
			prevX, prevY = x, y
		}
		grids[i] = grid
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = formatAxis(hi, unit)
		case height / 2:
			label = formatAxis((hi+lo)/2, unit)
		case height - 1:
			label = formatAxis(lo, unit)
		}
		fmt.Fprintf(&b, "%*s%s", axisLabelWidth, label, axisSeparator)
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for i, grid := range grids {
				if grid[y][x] != 0 {
					mask |= grid[y][x]
					if owner < 0 {
						owner = i
					}
				}
			}
			glyph := string(rune(0x2800 + int(mask)))
			if useColor && owner >= 0 {
				glyph = palette[owner%len(palette)] + glyph + colorReset
			}
			b.WriteString(glyph)
		}
		b.WriteByte('\n')
	}
	names := make([]string, len(kept))
	for i, s := range kept {
		names[i] = s.Name
		if useColor {
			names[i] = palette[i%len(palette)] + s.Name + colorReset
		}
	}
	b.WriteString("Legend: " + strings.Join(names, "  ") + "\n\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// Histogram writes a horizontal bar chart of values split into bins of equal
// width.
func Histogram(w io.Writer, title, unit string, values []float64, bins, width int) error {
	if len(values) == 0 {
		return nil
	}
	if bins <= 0 {
		bins = 10
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	lo, hi := minMax(values)
	span := hi - lo
	if span < 1e-9 {
		bins, span = 1, 1
	}
	counts := make([]int, bins)
	for _, v := range values {
		counts[clampInt(int((v-lo)/span*float64(bins)), 0, bins-1)]++
	}
	peak := 0
	for _, c := range counts {
		peak = max(peak, c)
	}

	rows := make([][]string, bins)
	for i, c := range counts {
		from := lo + span*float64(i)/float64(bins)
		to := lo + span*float64(i+1)/float64(bins)
		bar := strings.Repeat(histogramBar, int(math.Round(float64(c)/float64(peak)*float64(width))))
		rows[i] = []string{fmt.Sprintf("%.0f-%.0f%s", from, to, unit), fmt.Sprintf("%d", c), bar}
	}
	var b strings.Builder
	if title != "" {
		b.WriteString(title + "\n")
	}
	for _, line := range formatTable(nil, rows, map[int]bool{0: true, 1: true}) {
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

func formatAxis(v float64, unit string) string {
	return fmt.Sprintf("%.0f%s", v, unit)
}

// resample stretches or averages values into exactly n points.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	switch {
	case len(values) == 1:
		for i := range out {
			out[i] = values[0]
		}
	case len(values) >= n:
		for i := range out {
			from := i * len(values) / n
			to := max((i+1)*len(values)/n, from+1)
			var sum float64
			for _, v := range values[from:to] {
				sum += v
			}
			out[i] = sum / float64(to-from)
		}
	default:
		for i := range out {
			pos := float64(i) * float64(len(values)-1) / float64(n-1)
			j := int(pos)
			if j >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(j)
			out[i] = values[j] + (values[j+1]-values[j])*frac
		}
	}
	return out
}

func setDot(grid [][]uint8, x, y int) {
	cy, cx := y/4, x/2
	if y < 0 || x < 0 || cy >= len(grid) || cx >= len(grid[cy]) {
		return
	}
	grid[cy][cx] |= brailleBits[x%2][y%4]
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		if e2 := 2 * e; e2 >= dy {
			e += dy
			x0 += sx
		} else if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
