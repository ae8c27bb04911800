package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	interview "github.com/skillsage/voice-interview/core"
)

const noResponse = "No response recorded - please check your microphone permissions"

func (m Model) View() string {
	var body string
	current := screenFor(m.state.Phase)
	switch current {
	case screenWelcome:
		body = m.welcomeView()
	case screenSession:
		body = m.sessionView()
	case screenResults:
		body = m.resultsView()
	}

	if m.err != nil {
		body += "\n\n" + errorStyle.Render(m.err.Error())
	}

	return boxStyle.Render(body) + "\n" + m.help.View(m.keys.forScreen(current))
}

func (m Model) welcomeView() string {
	var b strings.Builder
	title := m.set.Title
	if title == "" {
		title = "AI Voice Interview"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString("Session info:\n")
	fmt.Fprintf(&b, "• %s, %s each\n",
		plural(len(m.set.Questions), "question"),
		formatDuration(m.set.QuestionDurationSeconds))
	if m.state.SynthesisUnavailable {
		b.WriteString("• Questions are shown on screen\n")
	} else {
		b.WriteString("• Questions are read aloud\n")
	}
	b.WriteString("• Voice answers are transcribed\n")
	b.WriteString("• Automatic progression\n")

	b.WriteString(m.unavailableNotes())
	return b.String()
}

func (m Model) sessionView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Interview in progress"))
	b.WriteString("\n")

	if m.state.Phase == interview.PhaseGreeting || m.state.Phase == interview.PhaseEnding {
		b.WriteString(dimStyle.Render(m.phaseNote()))
		b.WriteString("\n\n")
		b.WriteString(m.statusLine())
		return b.String()
	}

	fmt.Fprintf(&b, "Question %d of %d  ·  Time: %s\n\n",
		m.state.QuestionIndex+1, m.state.QuestionCount, formatTime(m.state.SecondsRemaining))

	b.WriteString(timerStyle.Foreground(lipgloss.Color(countdownColor(m.state.SecondsRemaining))).
		Render(formatTime(m.state.SecondsRemaining)))
	b.WriteString("\n")
	b.WriteString(m.progressBar())
	b.WriteString("\n\n")

	b.WriteString(questionStyle.Render(m.wrap(m.state.Question)))
	b.WriteString("\n\n")

	if m.state.IsListening {
		b.WriteString(listeningStyle.Render(m.spinner.View() + " Listening..."))
	} else {
		b.WriteString(dimStyle.Render("Not listening"))
	}
	fmt.Fprintf(&b, "  ·  Words captured: %d\n", len(strings.Fields(m.state.LiveTranscript)))

	if m.state.LiveTranscript != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Live transcript:"))
		b.WriteString("\n")
		b.WriteString(m.wrap(m.state.LiveTranscript))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString(m.unavailableNotes())
	return b.String()
}

func (m Model) resultsView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Interview results"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Here are all your voice responses:"))
	b.WriteString("\n")

	for i, question := range m.set.Questions {
		answer := ""
		if i < len(m.state.FinalizedAnswers) {
			answer = m.state.FinalizedAnswers[i]
		}

		fmt.Fprintf(&b, "\n%s\n", titleStyle.Render(fmt.Sprintf("Question %d", i+1)))
		b.WriteString(questionStyle.Render(m.wrap(fmt.Sprintf("%q", question))))
		b.WriteString("\n")
		if answer == "" {
			b.WriteString(warningStyle.Render(m.wrap(noResponse)))
		} else {
			b.WriteString(m.wrap(answer))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.state.IsSpeaking:
		return m.spinner.View() + " AI is speaking…"
	case m.state.IsListening:
		return listeningStyle.Render("Speak your answer now!")
	}
	return dimStyle.Render("Preparing to listen…")
}

func (m Model) phaseNote() string {
	if m.state.Phase == interview.PhaseEnding {
		return "Wrapping up the interview"
	}
	return "Starting the interview"
}

func (m Model) unavailableNotes() string {
	var notes []string
	if m.state.RecognitionUnavailable {
		notes = append(notes, "Speech recognition unavailable, answers will not be captured.")
	}
	if m.state.SynthesisUnavailable {
		notes = append(notes, "Speech synthesis unavailable, questions are not spoken.")
	}
	if len(notes) == 0 {
		return ""
	}
	return "\n" + warningStyle.Render(strings.Join(notes, "\n"))
}

func (m Model) progressBar() string {
	bar := m.progress
	bar.FullColor = countdownColor(m.state.SecondsRemaining)

	percent := 0.0
	if m.state.QuestionDuration > 0 {
		percent = float64(m.state.SecondsRemaining) / float64(m.state.QuestionDuration)
	}
	return bar.ViewAs(percent)
}

func (m Model) wrap(text string) string {
	return wordwrap.String(text, max(m.width-8, 20))
}

// formatTime renders seconds as m:ss.
func formatTime(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func formatDuration(seconds int) string {
	if seconds%60 == 0 {
		return plural(seconds/60, "minute")
	}
	return plural(seconds, "second")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
