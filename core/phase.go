package interview

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseGreeting
	PhaseAskingQuestion
	PhaseListeningForAnswer
	PhaseEnding
	PhaseEnded
)

// NoQuestion is the question index reported while no question is current.
const NoQuestion = -1

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseGreeting:
		return "greeting"
	case PhaseAskingQuestion:
		return "asking_question"
	case PhaseListeningForAnswer:
		return "listening_for_answer"
	case PhaseEnding:
		return "ending"
	case PhaseEnded:
		return "ended"
	}
	return "unknown"
}

// InProgress reports whether the phase belongs to a running session.
func (p Phase) InProgress() bool {
	return p != PhaseIdle && p != PhaseEnded
}
