package events

const (
	KindSynthesisStarted Kind = "synthesis.started"
	KindUtteranceSpoken  Kind = "synthesis.spoken"
	KindSynthesisFailed  Kind = "synthesis.failed"
)

type SynthesisStarted struct{ Base }

func NewSynthesisStarted(generation uint64) SynthesisStarted {
	return SynthesisStarted{Base: NewBase(KindSynthesisStarted, generation)}
}

type UtteranceSpoken struct{ Base }

func NewUtteranceSpoken(generation uint64) UtteranceSpoken {
	return UtteranceSpoken{Base: NewBase(KindUtteranceSpoken, generation)}
}

type SynthesisFailed struct {
	Base
	Err error
}

func NewSynthesisFailed(generation uint64, err error) SynthesisFailed {
	return SynthesisFailed{Base: NewBase(KindSynthesisFailed, generation), Err: err}
}
