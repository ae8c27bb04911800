package events

const (
	KindTimerTicked  Kind = "countdown.ticked"
	KindTimerExpired Kind = "countdown.expired"
)

type TimerTicked struct {
	Base
	Remaining int
}

func NewTimerTicked(generation uint64, remaining int) TimerTicked {
	return TimerTicked{Base: NewBase(KindTimerTicked, generation), Remaining: remaining}
}

type TimerExpired struct{ Base }

func NewTimerExpired(generation uint64) TimerExpired {
	return TimerExpired{Base: NewBase(KindTimerExpired, generation)}
}
