package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/skillsage/voice-interview/core/audio"
	"github.com/skillsage/voice-interview/core/texttospeech"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const audioChunkSize = 4096

// AudioOutput is a speaker. AwaitMark blocks until everything sent so far was
// played or the buffer was cleared.
type AudioOutput interface {
	EncodingInfo() audio.EncodingInfo
	SendAudio(audio []byte) error
	AwaitMark() error
	ClearBuffer()
}

// Speaker speaks utterances through Deepgram's REST speak API, one at a time.
type Speaker struct {
	output AudioOutput

	apiKey     string
	baseURL    string
	voice      deepgramVoice
	httpClient *http.Client

	mu      sync.Mutex
	current *utterance
}

type utterance struct {
	cancel context.CancelFunc
	// settled is claimed by whichever of completion and cancellation happens
	// first.
	settled atomic.Bool
	done    chan struct{}
}

func NewSpeaker(output AudioOutput, opts ...SpeakerOption) (*Speaker, error) {
	s := &Speaker{
		output:  output,
		apiKey:  apiKeyFromEnv(),
		baseURL: defaultBaseURL,
		voice:   defaultVoice,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
			otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
				return operationName + " " + request.URL.Path
			}),
		)},
	}

	for _, opt := range opts {
		opt(s)
	}

	if !slices.Contains(GetAvailableVoices(), s.voice) {
		return nil, fmt.Errorf("invalid voice %q", s.voice)
	}

	return s, nil
}

// Speak cancels the utterance in flight and starts speaking text in the
// background.
func (s *Speaker) Speak(ctx context.Context, text string, opts ...texttospeech.UtteranceOption) error {
	options := texttospeech.NewUtteranceOptions(opts...)
	if s.apiKey == "" {
		return fmt.Errorf("deepgram api key not found")
	}

	if err := s.Cancel(); err != nil {
		return err
	}

	utteranceCtx, cancel := context.WithCancel(ctx)
	current := &utterance{cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	s.current = current
	s.mu.Unlock()

	go s.speak(utteranceCtx, current, text, options)
	return nil
}

// Cancel aborts the utterance in flight. Its end callback is not called.
func (s *Speaker) Cancel() error {
	s.mu.Lock()
	current := s.current
	s.current = nil
	s.mu.Unlock()

	if current == nil || !current.settled.CompareAndSwap(false, true) {
		return nil
	}

	current.cancel()
	if s.output != nil {
		s.output.ClearBuffer()
	}
	<-current.done
	return nil
}

func (s *Speaker) Close() error {
	return s.Cancel()
}

func (s *Speaker) speak(ctx context.Context, current *utterance, text string, options texttospeech.UtteranceOptions) {
	defer close(current.done)
	defer current.cancel()

	ctx, span := tracer.Start(ctx, "speak utterance", trace.WithAttributes(
		attribute.String("speech.voice", string(s.voice)),
		attribute.Int("speech.text_length", len(text)),
	))
	defer span.End()

	err := s.stream(ctx, text, options)
	if err == nil && s.output != nil {
		err = s.output.AwaitMark()
	}

	if !current.settled.CompareAndSwap(false, true) {
		span.AddEvent("cancelled")
		return
	}
	s.clearCurrent(current)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("failed to speak utterance", "error", err)
		options.ErrorCallback(err)
		return
	}
	options.SpeechEndedCallback()
}

// stream downloads the utterance audio and hands it to the output as it
// arrives.
func (s *Speaker) stream(ctx context.Context, text string, options texttospeech.UtteranceOptions) error {
	req, err := s.newRequest(ctx, text)
	if err != nil {
		return err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("non-OK HTTP status: %s: %s", resp.Status, bytes.TrimSpace(errorBody))
	}

	started := false
	chunk := make([]byte, audioChunkSize)
	for {
		n, readErr := io.ReadFull(resp.Body, chunk)
		if n > 0 {
			if !started {
				started = true
				options.SpeechStartedCallback()
			}
			if s.output != nil {
				if err := s.output.SendAudio(bytes.Clone(chunk[:n])); err != nil {
					return fmt.Errorf("failed to send audio to output: %w", err)
				}
			}
		}

		switch {
		case readErr == nil:
		case errors.Is(readErr, io.EOF), errors.Is(readErr, io.ErrUnexpectedEOF):
			return nil
		default:
			return fmt.Errorf("error reading audio: %w", readErr)
		}
	}
}

func (s *Speaker) newRequest(ctx context.Context, text string) (*http.Request, error) {
	encodingInfo := audio.GetDefaultEncodingInfo()
	if s.output != nil && !s.output.EncodingInfo().IsZero() {
		encodingInfo = s.output.EncodingInfo()
	}

	speakURL, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	speakURL = speakURL.JoinPath("v1", "speak")
	queryParams := url.Values{}
	queryParams.Set("model", string(s.voice))
	queryParams.Set("encoding", encodingInfo.Format.Name())
	queryParams.Set("sample_rate", strconv.Itoa(encodingInfo.SampleRate))
	queryParams.Set("container", "none")
	speakURL.RawQuery = queryParams.Encode()

	body, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: text})
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, speakURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Token "+s.apiKey)
	return req, nil
}

func (s *Speaker) clearCurrent(current *utterance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == current {
		s.current = nil
	}
}
