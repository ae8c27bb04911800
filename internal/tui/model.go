// Package tui is a terminal front end for an interview session. It renders
// published session state and issues session controls on key presses.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	interview "github.com/skillsage/voice-interview/core"
	"github.com/skillsage/voice-interview/core/questions"
)

// Session is the part of an interview session the interface drives.
type Session interface {
	Start() error
	SubmitCurrentAnswerNow() error
	Reset()
	State() interview.State
}

// StateMsg carries a published session state into the program.
type StateMsg struct {
	State interview.State
}

type errMsg struct {
	err error
}

type screen int

const (
	screenWelcome screen = iota
	screenSession
	screenResults
)

func screenFor(phase interview.Phase) screen {
	switch phase {
	case interview.PhaseIdle:
		return screenWelcome
	case interview.PhaseEnded:
		return screenResults
	}
	return screenSession
}

type Model struct {
	session Session
	set     questions.QuestionSet
	state   interview.State
	err     error

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	progress progress.Model

	width int
}

func NewModel(session Session, set questions.QuestionSet) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = listeningStyle

	return Model{
		session:  session,
		set:      set,
		state:    session.State(),
		keys:     defaultKeyMap,
		help:     help.New(),
		spinner:  sp,
		progress: progress.New(progress.WithSolidFill(okColor), progress.WithoutPercentage()),
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		m.state = msg.State
		if screenFor(m.state.Phase) == screenWelcome {
			m.err = nil
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		keys := m.keys.forScreen(screenFor(m.state.Phase))
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Start):
			m.err = nil
			return m, m.control(m.session.Start)
		case key.Matches(msg, keys.Submit):
			return m, m.control(m.session.SubmitCurrentAnswerNow)
		case key.Matches(msg, keys.Reset):
			m.err = nil
			return m, m.control(func() error {
				m.session.Reset()
				return nil
			})
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-8, 10), 60)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// control runs a session control off the update goroutine; the resulting
// state arrives as a StateMsg.
func (m Model) control(f func() error) tea.Cmd {
	return func() tea.Msg {
		if err := f(); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// Run drives session in a full-screen program until the user quits. The
// session is closed on return.
func Run(ctx context.Context, session *interview.Session, set questions.QuestionSet) error {
	defer session.Close()

	program := tea.NewProgram(NewModel(session, set), tea.WithAltScreen(), tea.WithContext(ctx))
	session.Orchestrate(ctx, interview.WithStateCallback(func(state interview.State) {
		program.Send(StateMsg{State: state})
	}))

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("running interview interface: %w", err)
	}
	return nil
}
