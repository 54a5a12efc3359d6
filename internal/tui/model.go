// Package tui provides the Bubble Tea live preview of a playback session.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/ghostkeys/internal/markup"
	"github.com/verte-zerg/ghostkeys/internal/model"
	"github.com/verte-zerg/ghostkeys/internal/playback"
)

// Player is the playback control surface the preview drives.
type Player interface {
	Start(text string, cfg model.TypingConfig) error
	Pause() bool
	Resume() bool
	Cancel() bool
	State() playback.State
}

type (
	countdownMsg struct{}
	startMsg     struct{}
)

type keyMap struct {
	Pause  key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Cancel, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var defaultKeys = keyMap{
	Pause:  key.NewBinding(key.WithKeys("p", " ", "space"), key.WithHelp("p", "pause/resume")),
	Cancel: key.NewBinding(key.WithKeys("c", "esc"), key.WithHelp("c", "cancel")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	textStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	countStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	headingStyles = []lipgloss.Style{
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9CC9E3")),
		lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7FB2F0")),
		lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#5E9CF5")),
	}
)

// Options configures the preview.
type Options struct {
	Countdown    int
	Estimate     time.Duration
	ExitOnFinish bool
}

// Model implements the Bubble Tea preview UI.
type Model struct {
	player Player
	text   string
	cfg    model.TypingConfig
	opts   Options
	doc    *Document

	keys keyMap
	help help.Model
	bar  progress.Model

	width  int
	height int

	countdown int
	started   bool
	state     playback.State
	completed bool
	err       error

	done      int
	total     int
	startedAt time.Time
	pausedAt  time.Time
	pausedFor time.Duration
	now       func() time.Time
}

// NewModel constructs a preview that types text through player once the
// countdown finishes.
func NewModel(player Player, text string, cfg model.TypingConfig, opts Options) *Model {
	return &Model{
		player:    player,
		text:      text,
		cfg:       cfg,
		opts:      opts,
		doc:       NewDocument(),
		keys:      defaultKeys,
		help:      help.New(),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		countdown: max(opts.Countdown, 0),
		total:     markup.PlainTextLength(text),
		now:       time.Now,
	}
}

// Err returns the error that stopped the preview, if any.
func (m *Model) Err() error {
	return m.err
}

// Completed reports whether the whole text was typed.
func (m *Model) Completed() bool {
	return m.completed
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.countdown > 0 {
		return countdownTick()
	}
	return func() tea.Msg { return startMsg{} }
}

func countdownTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return countdownMsg{} })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case countdownMsg:
		if m.state.Terminal() || m.started {
			return m, nil
		}
		if m.countdown > 1 {
			m.countdown--
			return m, countdownTick()
		}
		m.countdown = 0
		return m, m.start()
	case startMsg:
		if m.state.Terminal() || m.started {
			return m, nil
		}
		return m, m.start()
	case typeMsg:
		m.doc.Type(msg.r)
	case pressMsg:
		m.doc.Press(msg.key)
	case chordMsg:
		m.doc.Chord(msg.keys...)
	case progressMsg:
		m.done = msg.done
		m.total = msg.total
	case stateMsg:
		m.refreshState()
		if m.state.Terminal() && m.opts.ExitOnFinish {
			return m, tea.Quit
		}
	case completeMsg:
		m.completed = true
		m.refreshState()
		if m.opts.ExitOnFinish {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) start() tea.Cmd {
	if err := m.player.Start(m.text, m.cfg); err != nil {
		m.err = fmt.Errorf("failed to start playback: %w", err)
		return tea.Quit
	}
	m.started = true
	m.startedAt = m.now()
	m.refreshState()
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.started && m.state.Active() {
			m.player.Cancel()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel):
		if !m.started {
			m.countdown = 0
			m.state = playback.Cancelled
			return m, nil
		}
		m.player.Cancel()
	case key.Matches(msg, m.keys.Pause):
		if !m.started {
			return m, nil
		}
		switch m.state {
		case playback.Running:
			if m.player.Pause() {
				m.pausedAt = m.now()
			}
		case playback.Paused:
			if m.player.Resume() {
				m.pausedFor += m.now().Sub(m.pausedAt)
				m.pausedAt = time.Time{}
			}
		}
		m.refreshState()
	}
	return m, nil
}

func (m *Model) refreshState() {
	if m.started {
		m.state = m.player.State()
	}
}

// activeElapsed is the time spent typing, excluding pauses.
func (m *Model) activeElapsed() time.Duration {
	if !m.started {
		return 0
	}
	now := m.now()
	elapsed := now.Sub(m.startedAt) - m.pausedFor
	if !m.pausedAt.IsZero() {
		elapsed -= now.Sub(m.pausedAt)
	}
	return max(elapsed, 0)
}

// remaining extrapolates the observed rate, or falls back to the estimate
// before the first character.
func (m *Model) remaining() time.Duration {
	if m.total > 0 && m.done >= m.total {
		return 0
	}
	if m.done == 0 || m.total == 0 {
		return m.opts.Estimate
	}
	perChar := float64(m.activeElapsed()) / float64(m.done)
	return time.Duration(perChar * float64(m.total-m.done))
}

func (m *Model) fraction() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.done) / float64(m.total)
}

func (m *Model) stateLabel() string {
	switch {
	case m.err != nil:
		return "error"
	case !m.started && m.state == playback.Cancelled:
		return "cancelled"
	case !m.started:
		return "starting"
	}
	return m.state.String()
}

func (m *Model) renderFooter() string {
	segments := []string{
		strings.ToUpper(m.stateLabel()),
		fmt.Sprintf("Progress %d%%", int(m.fraction()*100)),
		fmt.Sprintf("%d/%d chars", m.done, m.total),
	}
	if m.state.Terminal() {
		segments = append(segments, "Elapsed "+formatClock(m.activeElapsed()))
	} else {
		segments = append(segments, "ETA "+formatClock(m.remaining()))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return errorStyle.Render(m.err.Error()) + "\n"
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	contentWidth := max(int(float64(width)*0.70), 1)

	var body string
	if !m.started && m.countdown > 0 {
		body = countStyle.Render(fmt.Sprintf("Typing starts in %d…", m.countdown))
	} else {
		body = lipgloss.NewStyle().Width(contentWidth).Render(m.doc.render(contentWidth, m.state.Active()))
	}

	m.bar.Width = contentWidth
	status := lipgloss.JoinVertical(lipgloss.Left,
		m.bar.ViewAs(m.fraction()),
		m.renderFooter(),
		m.help.View(m.keys),
	)
	if m.height < 6 {
		return body + "\n\n" + status
	}
	statusHeight := lipgloss.Height(status)
	top := lipgloss.Place(width, m.height-statusHeight-1, lipgloss.Center, lipgloss.Center, body)
	bottom := lipgloss.Place(width, statusHeight, lipgloss.Center, lipgloss.Bottom, status)
	return top + "\n" + bottom
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
