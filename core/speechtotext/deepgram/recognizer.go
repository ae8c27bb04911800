package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/skillsage/voice-interview/core/audio"
	"github.com/skillsage/voice-interview/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// typeErrorResponse is the message type Deepgram uses to report a failed
// stream before closing it.
const typeErrorResponse api.TypeResponse = "Error"

// AudioInput is a microphone. Stream calls onAudio with captured chunks until
// ctx is done.
type AudioInput interface {
	EncodingInfo() audio.EncodingInfo
	Stream(ctx context.Context, onAudio func([]byte)) error
}

// Recognizer transcribes an AudioInput through Deepgram's streaming listen
// API. It runs at most one recognition at a time.
type Recognizer struct {
	input AudioInput

	apiKey            string
	listenURL         string
	model             string
	keepAliveInterval time.Duration
	dialer            *websocket.Dialer

	mu      sync.Mutex
	current *recognition
}

func NewRecognizer(input AudioInput, opts ...RecognizerOption) *Recognizer {
	r := &Recognizer{
		input:             input,
		apiKey:            apiKeyFromEnv(),
		listenURL:         defaultListenURL,
		model:             defaultModel,
		keepAliveInterval: defaultKeepAliveInterval,
		dialer:            websocket.DefaultDialer,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Start registers a recognition and returns; the socket is opened on the
// recognition's own goroutine. Configuration errors are returned directly,
// connection failures are reported through the error and end callbacks.
func (r *Recognizer) Start(ctx context.Context, opts ...speechtotext.RecognitionOption) error {
	options := speechtotext.NewRecognitionOptions(opts...)
	if r.input != nil {
		if encodingInfo := r.input.EncodingInfo(); !encodingInfo.IsZero() {
			options.EncodingInfo = encodingInfo
		}
	}

	listenURL, err := r.listenURLFor(options)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil {
		return speechtotext.ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	current := &recognition{
		recognizer: r,
		options:    options,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	current.lastAudio.Store(time.Now().UnixNano())
	r.current = current

	go current.run(ctx, runCtx, listenURL)
	go func() {
		select {
		case <-ctx.Done():
			current.finish()
		case <-current.done:
		}
	}()

	return nil
}

// Stop ends the running recognition, if any. The end callback fires before
// Stop returns.
func (r *Recognizer) Stop() error {
	r.mu.Lock()
	current := r.current
	r.mu.Unlock()

	if current == nil {
		return nil
	}

	current.stopping.Store(true)
	err := current.writeJSON(struct {
		Type string `json:"type"`
	}{Type: string(api.TypeCloseStreamResponse)})
	current.finish()

	if err != nil && !errors.Is(err, websocket.ErrCloseSent) && !errors.Is(err, errNotConnected) {
		return fmt.Errorf("failed to close deepgram stream: %w", err)
	}
	return nil
}

func (r *Recognizer) Close() error {
	return r.Stop()
}

func (r *Recognizer) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

func (r *Recognizer) listenURLFor(options speechtotext.RecognitionOptions) (string, error) {
	if r.apiKey == "" {
		return "", fmt.Errorf("deepgram api key not found")
	}

	encoding, err := convertEncoding(options.EncodingInfo)
	if err != nil {
		return "", fmt.Errorf("invalid encoding: %w", err)
	}

	listenURL, err := url.Parse(r.listenURL)
	if err != nil {
		return "", fmt.Errorf("invalid listen url: %w", err)
	}
	queryParams := listenURL.Query()
	queryParams.Set("encoding", encoding.Format.Name())
	queryParams.Set("sample_rate", strconv.Itoa(encoding.SampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", r.model)
	queryParams.Set("language", options.Language)
	queryParams.Set("smart_format", "true")
	queryParams.Set("interim_results", "true")
	queryParams.Set("endpointing", "300")
	listenURL.RawQuery = queryParams.Encode()

	return listenURL.String(), nil
}

func (r *Recognizer) release(current *recognition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == current {
		r.current = nil
	}
}

var errNotConnected = errors.New("deepgram socket not connected")

type recognition struct {
	recognizer *Recognizer
	options    speechtotext.RecognitionOptions
	cancel     context.CancelFunc

	// conn stays nil until the dial succeeds. writeMu serializes writes.
	conn      atomic.Pointer[websocket.Conn]
	writeMu   sync.Mutex
	lastAudio atomic.Int64
	stopping  atomic.Bool

	endOnce sync.Once
	done    chan struct{}
}

// run dials Deepgram and, once connected, reports the start and pumps the
// socket. A cancelled dial ends the recognition without a start.
func (c *recognition) run(traceCtx, ctx context.Context, listenURL string) {
	_, span := tracer.Start(traceCtx, "start recognition", trace.WithAttributes(
		attribute.String("recognition.language", c.options.Language),
		attribute.Int("recognition.sample_rate", c.options.EncodingInfo.SampleRate),
	))

	conn, _, err := c.recognizer.dialer.DialContext(ctx, listenURL,
		http.Header{"Authorization": {"Token " + c.recognizer.apiKey}})
	if err != nil {
		if !c.stopping.Load() {
			err = fmt.Errorf("failed to open socket connection to deepgram: %w", err)
			logger.Warn("failed to connect to deepgram", "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.options.ErrorCallback(speechtotext.ErrorNetwork)
		}
		span.End()
		c.finish()
		return
	}
	span.End()

	c.conn.Store(conn)
	if c.stopping.Load() {
		conn.Close()
		return
	}

	c.options.StartCallback()

	go c.keepAlive(ctx, c.recognizer.keepAliveInterval)
	if input := c.recognizer.input; input != nil {
		go c.capture(ctx, input)
	}
	c.read(conn)
}

// finish tears the recognition down and reports its end exactly once.
func (c *recognition) finish() {
	c.endOnce.Do(func() {
		c.stopping.Store(true)
		c.cancel()
		if conn := c.conn.Load(); conn != nil {
			conn.Close()
		}
		c.recognizer.release(c)
		close(c.done)
		c.options.EndCallback()
	})
}

func (c *recognition) read(conn *websocket.Conn) {
	defer c.finish()

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if !c.stopping.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				logger.Warn("deepgram socket closed unexpectedly", "error", err)
				c.options.ErrorCallback(speechtotext.ErrorNetwork)
			}
			return
		}
		if msgType == websocket.BinaryMessage {
			continue
		}
		c.processMessage(msg)
	}
}

func (c *recognition) processMessage(msg []byte) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.Warn("failed to unmarshal deepgram message", "error", err)
		return
	}

	switch api.TypeResponse(parsedMsg.Type) {
	case api.TypeMessageResponse:
		var msgResp api.MessageResponse
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Warn("failed to unmarshal deepgram results", "error", err)
			return
		}
		if len(msgResp.Channel.Alternatives) == 0 {
			return
		}

		transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)
		if msgResp.IsFinal {
			if transcript != "" {
				c.options.FinalResultCallback(transcript)
			}
		} else {
			c.options.InterimResultCallback(transcript)
		}

	case typeErrorResponse:
		var msgResp struct {
			Description string `json:"description"`
			Message     string `json:"message"`
			Variant     string `json:"variant"`
		}
		if err := json.Unmarshal(msg, &msgResp); err != nil {
			logger.Warn("failed to unmarshal deepgram error", "error", err)
		}
		logger.Warn("deepgram reported an error", "description", msgResp.Description, "message", msgResp.Message)
		c.options.ErrorCallback(errorCode(msgResp.Variant, msgResp.Description))
	}
}

// errorCode maps a Deepgram error onto the recognition error codes.
func errorCode(variant, description string) speechtotext.ErrorCode {
	text := strings.ToLower(variant + " " + description)
	switch {
	case strings.Contains(text, "unauthorized"), strings.Contains(text, "credentials"):
		return speechtotext.ErrorNotAllowed
	case strings.Contains(text, "timeout"), strings.Contains(text, "net-0001"):
		return speechtotext.ErrorNoSpeech
	case strings.Contains(text, "audio"), strings.Contains(text, "decode"):
		return speechtotext.ErrorAudioCapture
	}
	return speechtotext.ErrorUnknown
}

func (c *recognition) capture(ctx context.Context, input AudioInput) {
	err := input.Stream(ctx, func(chunk []byte) {
		if err := c.sendAudio(chunk); err != nil && !c.stopping.Load() {
			logger.Warn("failed to send audio to deepgram", "error", err)
		}
	})
	if err != nil && ctx.Err() == nil {
		logger.Warn("audio capture failed", "error", err)
		c.options.ErrorCallback(speechtotext.ErrorAudioCapture)
		c.finish()
	}
}

func (c *recognition) sendAudio(chunk []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.lastAudio.Store(time.Now().UnixNano())
	conn := c.conn.Load()
	if conn == nil {
		return errNotConnected
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		return fmt.Errorf("failed to write to deepgram socket: %w", err)
	}
	return nil
}

func (c *recognition) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn := c.conn.Load()
	if conn == nil {
		return errNotConnected
	}
	return conn.WriteJSON(v)
}

// keepAlive stops Deepgram from closing a socket that has not received
// audio for a while.
func (c *recognition) keepAlive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if time.Since(time.Unix(0, c.lastAudio.Load())) < interval {
				continue
			}
			if err := c.writeJSON(struct {
				Type string `json:"type"`
			}{Type: "KeepAlive"}); err != nil && !c.stopping.Load() {
				logger.Warn("failed to send keep alive to deepgram", "error", err)
			}
		}
	}
}
