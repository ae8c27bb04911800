package interview

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/skillsage/voice-interview/core/events"
	"github.com/skillsage/voice-interview/core/texttospeech"
)

type textToSpeech struct {
	client TextToSpeech

	// speaking reports whether an utterance was handed to the client and
	// has neither ended nor failed.
	speaking atomic.Bool

	emitEvent eventEmitter
}

func newTextToSpeech(client TextToSpeech) *textToSpeech {
	return &textToSpeech{
		client:    client,
		emitEvent: noopEventEmitter,
	}
}

func (t *textToSpeech) set(client TextToSpeech) {
	if t != nil {
		t.client = client
	}
}

// Speak hands text to the client. Without a client, or when the client
// refuses the utterance, the matching completion event is emitted right away
// so the session never waits on speech that will not happen.
func (t *textToSpeech) Speak(ctx context.Context, text string, generation uint64) error {
	if !t.isConfigured() {
		t.emitEvent(events.NewUtteranceSpoken(generation))
		return nil
	}

	opts := []texttospeech.UtteranceOption{
		texttospeech.WithSpeechStartedCallback(func() { t.invokeStarted(generation) }),
		texttospeech.WithSpeechEndedCallback(func() { t.invokeEnded(generation) }),
		texttospeech.WithErrorCallback(func(err error) { t.invokeFailed(generation, err) }),
	}

	t.speaking.Store(true)
	if err := t.client.Speak(ctx, text, opts...); err != nil {
		err = fmt.Errorf("failed to speak: %w", err)
		t.invokeFailed(generation, err)
		return err
	}

	return nil
}

func (t *textToSpeech) Cancel() error {
	if !t.isConfigured() {
		return nil
	}

	t.speaking.Store(false)
	if err := t.client.Cancel(); err != nil {
		return fmt.Errorf("failed to cancel speech: %w", err)
	}
	return nil
}

func (t *textToSpeech) IsSpeaking() bool {
	return t.isConfigured() && t.speaking.Load()
}

func (t *textToSpeech) Close(ctx context.Context) error {
	if !t.isConfigured() {
		return nil
	}

	switch c := t.client.(type) {
	case interface{ Close(context.Context) error }:
		if err := c.Close(ctx); err != nil {
			return fmt.Errorf("failed to close text-to-speech client: %w", err)
		}
	case interface{ Close() error }:
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close text-to-speech client: %w", err)
		}
	case interface{ Close() }:
		c.Close()
	}

	return nil
}

func (t *textToSpeech) SetEventEmitter(emitEvent eventEmitter) {
	if t != nil {
		if emitEvent != nil {
			t.emitEvent = emitEvent
		} else {
			t.emitEvent = noopEventEmitter
		}
	}
}

func (t *textToSpeech) isConfigured() bool {
	return t != nil && t.client != nil
}

func (t *textToSpeech) invokeStarted(generation uint64) {
	t.emitEvent(events.NewSynthesisStarted(generation))
}

func (t *textToSpeech) invokeEnded(generation uint64) {
	t.speaking.Store(false)
	t.emitEvent(events.NewUtteranceSpoken(generation))
}

func (t *textToSpeech) invokeFailed(generation uint64, err error) {
	t.speaking.Store(false)
	t.emitEvent(events.NewSynthesisFailed(generation, err))
}
