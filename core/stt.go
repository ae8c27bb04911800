package interview

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/skillsage/voice-interview/core/events"
	"github.com/skillsage/voice-interview/core/speechtotext"
)

type speechToText struct {
	// client stores the configured speech-to-text implementation.
	client SpeechToText

	language string

	// running holds generation+1 of the start that has not ended yet, or 0.
	// Only the end of that start clears it.
	running atomic.Uint64

	emitEvent eventEmitter
}

func newSpeechToText(client SpeechToText) *speechToText {
	return &speechToText{
		client:    client,
		emitEvent: noopEventEmitter,
	}
}

func (s *speechToText) set(client SpeechToText) {
	if s != nil {
		s.client = client
	}
}

// Start starts the client with every callback tagged with generation.
func (s *speechToText) Start(ctx context.Context, generation uint64) error {
	if !s.isConfigured() {
		return nil
	}

	sttOptions := []speechtotext.RecognitionOption{
		speechtotext.WithStartCallback(func() { s.invokeStarted(generation) }),
		speechtotext.WithInterimResultCallback(func(transcript string) { s.invokeInterimResult(generation, transcript) }),
		speechtotext.WithFinalResultCallback(func(transcript string) { s.invokeFinalResult(generation, transcript) }),
		speechtotext.WithErrorCallback(func(code speechtotext.ErrorCode) { s.invokeError(generation, code) }),
		speechtotext.WithEndCallback(func() { s.invokeEnded(generation) }),
		speechtotext.WithLanguage(s.language),
	}

	s.running.Store(generation + 1)
	if err := s.client.Start(ctx, sttOptions...); err != nil {
		s.running.CompareAndSwap(generation+1, 0)
		return fmt.Errorf("failed to start recognition: %w", err)
	}

	return nil
}

func (s *speechToText) Stop() error {
	if !s.isConfigured() {
		return nil
	}

	s.running.Store(0)
	if err := s.client.Stop(); err != nil {
		return fmt.Errorf("failed to stop recognition: %w", err)
	}
	return nil
}

func (s *speechToText) IsActive() bool {
	return s.isConfigured() && s.running.Load() != 0
}

func (s *speechToText) Close(ctx context.Context) error {
	if !s.isConfigured() {
		return nil
	}

	switch c := s.client.(type) {
	case interface{ Close(context.Context) error }:
		if err := c.Close(ctx); err != nil {
			return fmt.Errorf("failed to close speech-to-text client: %w", err)
		}
	case interface{ Close(context.Context) }:
		c.Close(ctx)
	case interface{ Close() error }:
		if err := c.Close(); err != nil {
			return fmt.Errorf("failed to close speech-to-text client: %w", err)
		}
	case interface{ Close() }:
		c.Close()
	}

	return nil
}

func (s *speechToText) SetEventEmitter(emitEvent eventEmitter) {
	if s != nil {
		if emitEvent != nil {
			s.emitEvent = emitEvent
		} else {
			s.emitEvent = noopEventEmitter
		}
	}
}

func (s *speechToText) isConfigured() bool {
	return s != nil && s.client != nil
}

func (s *speechToText) invokeStarted(generation uint64) {
	s.emitEvent(events.NewRecognitionStarted(generation))
}

func (s *speechToText) invokeInterimResult(generation uint64, transcript string) {
	s.emitEvent(events.NewTranscriptInterim(generation, transcript))
}

func (s *speechToText) invokeFinalResult(generation uint64, transcript string) {
	s.emitEvent(events.NewTranscriptFinal(generation, transcript))
}

func (s *speechToText) invokeError(generation uint64, code speechtotext.ErrorCode) {
	s.emitEvent(events.NewRecognitionFailed(generation, string(code)))
}

func (s *speechToText) invokeEnded(generation uint64) {
	s.running.CompareAndSwap(generation+1, 0)
	s.emitEvent(events.NewRecognitionEnded(generation))
}
