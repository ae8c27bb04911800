package interview

import "github.com/skillsage/voice-interview/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}
