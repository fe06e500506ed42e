// ABOUTME: Bubble Tea screen around timer.Stopwatch for timed workouts.
// ABOUTME: Stopwatch calls run as commands so the tick goroutine never blocks the event loop.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/wellness/internal/models"
	"github.com/harperreed/wellness/internal/timer"
)

// TickMsg carries the stopwatch's elapsed seconds into the event loop.
type TickMsg struct {
	Seconds int
}

// stateMsg reports the stopwatch after a start, stop or reset.
type stateMsg struct {
	state   timer.State
	elapsed int
	err     error
}

// finishMsg ends the program once the stopwatch is frozen.
type finishMsg struct {
	save bool
}

// StopwatchModel is the timed workout screen.
type StopwatchModel struct {
	sw         *timer.Stopwatch
	activities []models.ActivityType
	current    int

	state   timer.State
	elapsed int
	err     error

	save     bool
	finished bool

	keys  keyMap
	help  help.Model
	width int
}

// NewStopwatchModel wraps sw. The first activity is preselected when it is
// one of the suggestions; otherwise it is added to the front of the list.
func NewStopwatchModel(sw *timer.Stopwatch, activity models.ActivityType) StopwatchModel {
	activities := append([]models.ActivityType(nil), models.SuggestedActivities...)
	current := -1
	for i, a := range activities {
		if a == activity {
			current = i
		}
	}
	if current < 0 {
		if activity != "" {
			activities = append([]models.ActivityType{activity}, activities...)
		}
		current = 0
	}

	return StopwatchModel{
		sw:         sw,
		activities: activities,
		current:    current,
		state:      sw.State(),
		elapsed:    sw.Elapsed(),
		keys:       defaultKeys(),
		help:       help.New(),
	}
}

// Init implements tea.Model.
func (m StopwatchModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m StopwatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		if msg.Seconds > m.elapsed {
			m.elapsed = msg.Seconds
		}
		return m, nil

	case stateMsg:
		m.state = msg.state
		m.elapsed = msg.elapsed
		m.err = msg.err
		return m, nil

	case finishMsg:
		m.save = msg.save
		m.finished = true
		m.state = m.sw.State()
		m.elapsed = m.sw.Elapsed()
		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.finished {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Toggle):
			return m, toggleCmd(m.sw)
		case key.Matches(msg, m.keys.Reset):
			return m, resetCmd(m.sw)
		case key.Matches(msg, m.keys.Activity):
			m.current = (m.current + 1) % len(m.activities)
			return m, nil
		case key.Matches(msg, m.keys.Save):
			if m.elapsed == 0 {
				return m, nil
			}
			return m, finishCmd(m.sw, true)
		case key.Matches(msg, m.keys.Quit):
			return m, finishCmd(m.sw, false)
		}
	}
	return m, nil
}

func toggleCmd(sw *timer.Stopwatch) tea.Cmd {
	return func() tea.Msg {
		var err error
		if sw.State() == timer.Running {
			err = sw.Stop()
		} else {
			err = sw.Start()
		}
		return stateMsg{state: sw.State(), elapsed: sw.Elapsed(), err: err}
	}
}

func resetCmd(sw *timer.Stopwatch) tea.Cmd {
	return func() tea.Msg {
		sw.Reset()
		return stateMsg{state: sw.State(), elapsed: sw.Elapsed()}
	}
}

func finishCmd(sw *timer.Stopwatch, save bool) tea.Cmd {
	return func() tea.Msg {
		sw.Close()
		return finishMsg{save: save}
	}
}

// Activity is the selected activity type.
func (m StopwatchModel) Activity() models.ActivityType {
	return m.activities[m.current]
}

// Saved reports whether the user chose to record the workout.
func (m StopwatchModel) Saved() bool {
	return m.save
}

// Draft previews the record that would be saved now.
func (m StopwatchModel) Draft() *models.FitnessLog {
	return timer.DraftFromSeconds(m.Activity(), m.elapsed)
}

// View implements tea.Model.
func (m StopwatchModel) View() string {
	if m.finished {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("⏱  WORKOUT TIMER"))
	b.WriteString("\n\n")

	style := clockStyle
	if m.state != timer.Running {
		style = pausedClockStyle
	}
	b.WriteString(style.Render(bigClock(timer.Format(m.elapsed))))
	b.WriteString("\n\n")

	b.WriteString(m.renderActivities())
	b.WriteString("\n\n")

	draft := m.Draft()
	b.WriteString(labelStyle.Render("State     "))
	b.WriteString(valueStyle.Render(m.state.String()))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Duration  "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d min", draft.DurationMinutes)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Burned    "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d kcal", draft.CaloriesBurned)))

	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(colorWarning)).Render(m.err.Error()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(b.String()),
		helpStyle.Render(m.help.View(m.keys)),
	)
}

func (m StopwatchModel) renderActivities() string {
	parts := make([]string, len(m.activities))
	for i, a := range m.activities {
		if i == m.current {
			parts[i] = activeActivityStyle.Render(string(a))
		} else {
			parts[i] = labelStyle.Render(string(a))
		}
	}
	return strings.Join(parts, "  ")
}

var digits = map[rune][3]string{
	'0': {"█▀█", "█ █", "▀▀▀"},
	'1': {" ▀█", "  █", "  ▀"},
	'2': {"▀▀█", "█▀▀", "▀▀▀"},
	'3': {"▀▀█", " ▀█", "▀▀▀"},
	'4': {"█ █", "▀▀█", "  ▀"},
	'5': {"█▀▀", "▀▀█", "▀▀▀"},
	'6': {"█▀▀", "█▀█", "▀▀▀"},
	'7': {"▀▀█", "  █", "  ▀"},
	'8': {"█▀█", "█▀█", "▀▀▀"},
	'9': {"█▀█", "▀▀█", "▀▀▀"},
	':': {"   ", " ▀ ", " ▀ "},
}

// bigClock renders s in three-row block digits. Unknown runes are skipped.
func bigClock(s string) string {
	var rows [3]strings.Builder
	for _, r := range s {
		glyph, ok := digits[r]
		if !ok {
			continue
		}
		for i := range rows {
			rows[i].WriteString(glyph[i])
			rows[i].WriteString(" ")
		}
	}
	lines := make([]string, len(rows))
	for i := range rows {
		lines[i] = strings.TrimRight(rows[i].String(), " ")
	}
	return strings.Join(lines, "\n")
}

// RunStopwatch shows the timer screen until the user saves or discards.
// The returned stopwatch is frozen with the elapsed time the user saw.
func RunStopwatch(activity models.ActivityType, opts ...tea.ProgramOption) (StopwatchModel, *timer.Stopwatch, error) {
	var p *tea.Program
	sw := timer.New(timer.WithOnTick(func(seconds int) {
		p.Send(TickMsg{Seconds: seconds})
	}))

	p = tea.NewProgram(NewStopwatchModel(sw, activity), opts...)
	final, err := p.Run()
	sw.Close()
	if err != nil {
		return StopwatchModel{}, sw, fmt.Errorf("run timer: %w", err)
	}

	m, ok := final.(StopwatchModel)
	if !ok {
		return StopwatchModel{}, sw, fmt.Errorf("run timer: unexpected model %T", final)
	}
	return m, sw, nil
}
