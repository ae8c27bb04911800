package events

import "time"

type Kind string

// Event is a single occurrence applied by a session. Generation is the
// session epoch the event belongs to; a session discards events whose
// generation is not its current one.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
	Generation() uint64
}

type Base struct {
	kind       Kind
	timestamp  time.Time
	generation uint64
}

func NewBase(kind Kind, generation uint64) Base {
	return Base{kind: kind, timestamp: time.Now(), generation: generation}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}

func (b Base) Generation() uint64 {
	return b.generation
}
