package deepgram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/skillsage/voice-interview/core/audio"
	"github.com/skillsage/voice-interview/core/speechtotext"
)

type fakeListenServer struct {
	server   *httptest.Server
	messages []string
	// closeAfterMessages makes the server hang up once messages are sent.
	closeAfterMessages bool

	mu       sync.Mutex
	query    string
	auth     string
	received []string
	binary   int
}

func newFakeListenServer(t *testing.T, messages []string, closeAfterMessages bool) *fakeListenServer {
	t.Helper()

	f := &fakeListenServer{messages: messages, closeAfterMessages: closeAfterMessages}
	upgrader := websocket.Upgrader{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.query = r.URL.RawQuery
		f.auth = r.Header.Get("Authorization")
		f.mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, message := range f.messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
				return
			}
		}
		if f.closeAfterMessages {
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}

		for {
			msgType, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			f.mu.Lock()
			if msgType == websocket.BinaryMessage {
				f.binary++
			} else {
				f.received = append(f.received, string(msg))
			}
			f.mu.Unlock()
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeListenServer) url() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http")
}

func (f *fakeListenServer) textMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.received...)
}

func (f *fakeListenServer) binaryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.binary
}

type recordedCallbacks struct {
	mu      sync.Mutex
	calls   []string
	ended   chan struct{}
	endOnce sync.Once
	ends    int
}

func newRecordedCallbacks() *recordedCallbacks {
	return &recordedCallbacks{ended: make(chan struct{})}
}

func (r *recordedCallbacks) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recordedCallbacks) options() []speechtotext.RecognitionOption {
	return []speechtotext.RecognitionOption{
		speechtotext.WithStartCallback(func() { r.add("start") }),
		speechtotext.WithInterimResultCallback(func(transcript string) { r.add("interim:" + transcript) }),
		speechtotext.WithFinalResultCallback(func(transcript string) { r.add("final:" + transcript) }),
		speechtotext.WithErrorCallback(func(code speechtotext.ErrorCode) { r.add("error:" + string(code)) }),
		speechtotext.WithEndCallback(func() {
			r.mu.Lock()
			r.ends++
			r.mu.Unlock()
			r.add("end")
			r.endOnce.Do(func() { close(r.ended) })
		}),
	}
}

func (r *recordedCallbacks) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recordedCallbacks) awaitEnd(t *testing.T) {
	t.Helper()
	select {
	case <-r.ended:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for recognition to end")
	}
}

type audioInputStub struct {
	chunks [][]byte
	err    error
}

func (a *audioInputStub) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (a *audioInputStub) Stream(ctx context.Context, onAudio func([]byte)) error {
	for _, chunk := range a.chunks {
		onAudio(chunk)
	}
	if a.err != nil {
		return a.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func resultsMessage(transcript string, isFinal bool) string {
	final := "false"
	if isFinal {
		final = "true"
	}
	return `{"type":"Results","is_final":` + final + `,"speech_final":` + final +
		`,"channel":{"alternatives":[{"transcript":"` + transcript + `","confidence":0.9}]}}`
}

func TestRecognizerMapsResultsToCallbacks(t *testing.T) {
	server := newFakeListenServer(t, []string{
		resultsMessage("I am", false),
		resultsMessage("I am a developer ", true),
		resultsMessage("", true),
		`{"type":"SpeechStarted","channel":[0],"timestamp":1.2}`,
	}, true)

	recognizer := NewRecognizer(nil, WithURL(server.url()), WithAPIKey("test-key"))
	callbacks := newRecordedCallbacks()

	if err := recognizer.Start(context.Background(), callbacks.options()...); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	callbacks.awaitEnd(t)

	expected := []string{"start", "interim:I am", "final:I am a developer", "end"}
	if got := callbacks.recorded(); strings.Join(got, "|") != strings.Join(expected, "|") {
		t.Fatalf("expected callbacks %v, got %v", expected, got)
	}
	if recognizer.IsRunning() {
		t.Fatalf("expected recognizer to be idle after the socket closed")
	}

	server.mu.Lock()
	defer server.mu.Unlock()
	if server.auth != "Token test-key" {
		t.Fatalf("expected token authorization, got %q", server.auth)
	}
	for _, param := range []string{"encoding=linear16", "sample_rate=16000", "language=en-US", "interim_results=true"} {
		if !strings.Contains(server.query, param) {
			t.Fatalf("expected query to contain %q, got %q", param, server.query)
		}
	}
}

func TestRecognizerReportsDeepgramErrors(t *testing.T) {
	server := newFakeListenServer(t, []string{
		`{"type":"Error","variant":"NET-0001","description":"Deepgram did not receive audio data or a text message within the timeout window."}`,
	}, true)

	recognizer := NewRecognizer(nil, WithURL(server.url()), WithAPIKey("test-key"))
	callbacks := newRecordedCallbacks()

	if err := recognizer.Start(context.Background(), callbacks.options()...); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	callbacks.awaitEnd(t)

	expected := []string{"start", "error:no-speech", "end"}
	if got := callbacks.recorded(); strings.Join(got, "|") != strings.Join(expected, "|") {
		t.Fatalf("expected callbacks %v, got %v", expected, got)
	}
}

func TestRecognizerStartWhileRunning(t *testing.T) {
	server := newFakeListenServer(t, nil, false)
	recognizer := NewRecognizer(nil, WithURL(server.url()), WithAPIKey("test-key"))
	defer recognizer.Close()

	if err := recognizer.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	if err := recognizer.Start(context.Background()); !errors.Is(err, speechtotext.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestRecognizerStopClosesStreamAndEndsOnce(t *testing.T) {
	server := newFakeListenServer(t, nil, false)
	input := &audioInputStub{chunks: [][]byte{{0, 1}, {2, 3}}}
	recognizer := NewRecognizer(input, WithURL(server.url()), WithAPIKey("test-key"))
	callbacks := newRecordedCallbacks()

	if err := recognizer.Start(context.Background(), callbacks.options()...); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for server.binaryCount() < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if server.binaryCount() != 2 {
		t.Fatalf("expected captured audio to be forwarded, got %d chunks", server.binaryCount())
	}

	if err := recognizer.Stop(); err != nil {
		t.Fatalf("expected stop to succeed, got %v", err)
	}
	callbacks.awaitEnd(t)
	if err := recognizer.Stop(); err != nil {
		t.Fatalf("expected second stop to be a no-op, got %v", err)
	}

	callbacks.mu.Lock()
	ends := callbacks.ends
	callbacks.mu.Unlock()
	if ends != 1 {
		t.Fatalf("expected a single end callback, got %d", ends)
	}
	for _, call := range callbacks.recorded() {
		if strings.HasPrefix(call, "error:") {
			t.Fatalf("expected no error for a requested stop, got %v", callbacks.recorded())
		}
	}

	deadline = time.Now().Add(2 * time.Second)
	for len(server.textMessages()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if messages := server.textMessages(); len(messages) == 0 || !strings.Contains(messages[0], "CloseStream") {
		t.Fatalf("expected CloseStream to be sent, got %v", messages)
	}
}

func TestRecognizerCaptureFailureEndsRecognition(t *testing.T) {
	server := newFakeListenServer(t, nil, false)
	input := &audioInputStub{err: errors.New("device unplugged")}
	recognizer := NewRecognizer(input, WithURL(server.url()), WithAPIKey("test-key"))
	callbacks := newRecordedCallbacks()

	if err := recognizer.Start(context.Background(), callbacks.options()...); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	callbacks.awaitEnd(t)

	expected := []string{"start", "error:audio-capture", "end"}
	if got := callbacks.recorded(); strings.Join(got, "|") != strings.Join(expected, "|") {
		t.Fatalf("expected callbacks %v, got %v", expected, got)
	}
}

func TestRecognizerCancelledContextEndsRecognition(t *testing.T) {
	server := newFakeListenServer(t, nil, false)
	recognizer := NewRecognizer(nil, WithURL(server.url()), WithAPIKey("test-key"))
	callbacks := newRecordedCallbacks()

	ctx, cancel := context.WithCancel(context.Background())
	if err := recognizer.Start(ctx, callbacks.options()...); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	cancel()
	callbacks.awaitEnd(t)
}

func TestRecognizerStopDuringStalledHandshake(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	recognizer := NewRecognizer(nil,
		WithURL("ws"+strings.TrimPrefix(server.URL, "http")),
		WithAPIKey("test-key"))
	callbacks := newRecordedCallbacks()

	returned := make(chan error, 1)
	go func() { returned <- recognizer.Start(context.Background(), callbacks.options()...) }()
	select {
	case err := <-returned:
		if err != nil {
			t.Fatalf("expected start to succeed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected start to return before the handshake completes")
	}
	if !recognizer.IsRunning() {
		t.Fatalf("expected recognition to be registered while connecting")
	}

	stopped := make(chan error, 1)
	go func() { stopped <- recognizer.Stop() }()
	select {
	case err := <-stopped:
		if err != nil {
			t.Fatalf("expected stop to succeed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected stop to return while the handshake is stalled")
	}
	callbacks.awaitEnd(t)

	if got := callbacks.recorded(); strings.Join(got, "|") != "end" {
		t.Fatalf("expected only the end callback, got %v", got)
	}
	if recognizer.IsRunning() {
		t.Fatalf("expected recognizer to be idle after stop")
	}
}

func TestRecognizerReportsConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	recognizer := NewRecognizer(nil,
		WithURL("ws"+strings.TrimPrefix(server.URL, "http")),
		WithAPIKey("test-key"))
	callbacks := newRecordedCallbacks()

	if err := recognizer.Start(context.Background(), callbacks.options()...); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}
	callbacks.awaitEnd(t)

	expected := []string{"error:network", "end"}
	if got := callbacks.recorded(); strings.Join(got, "|") != strings.Join(expected, "|") {
		t.Fatalf("expected callbacks %v, got %v", expected, got)
	}
}

func TestRecognizerRequiresAPIKey(t *testing.T) {
	t.Setenv("DEEPGRAM_API_KEY", "")
	recognizer := NewRecognizer(nil, WithURL("ws://127.0.0.1:1"))

	if err := recognizer.Start(context.Background()); err == nil {
		t.Fatalf("expected start without api key to fail")
	}
	if recognizer.IsRunning() {
		t.Fatalf("expected recognizer not to run after a failed start")
	}
}

func TestConvertEncoding(t *testing.T) {
	testCases := []struct {
		name      string
		encoding  audio.EncodingInfo
		expectErr bool
	}{
		{name: "linear16", encoding: audio.EncodingInfo{SampleRate: 16000, Format: audio.EncodingLinear16}},
		{name: "mulaw 8k", encoding: audio.EncodingInfo{SampleRate: 8000, Format: audio.EncodingMulaw}},
		{name: "mulaw 16k", encoding: audio.EncodingInfo{SampleRate: 16000, Format: audio.EncodingMulaw}, expectErr: true},
		{name: "alaw 16k", encoding: audio.EncodingInfo{SampleRate: 16000, Format: audio.EncodingALaw}, expectErr: true},
		{name: "odd sample rate", encoding: audio.EncodingInfo{SampleRate: 11025, Format: audio.EncodingLinear16}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := convertEncoding(tc.encoding)
			if tc.expectErr && err == nil {
				t.Fatalf("expected an error")
			}
			if !tc.expectErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		variant     string
		description string
		expected    speechtotext.ErrorCode
	}{
		{variant: "NET-0001", expected: speechtotext.ErrorNoSpeech},
		{description: "Invalid credentials.", expected: speechtotext.ErrorNotAllowed},
		{description: "Failed to decode audio.", expected: speechtotext.ErrorAudioCapture},
		{description: "Something else.", expected: speechtotext.ErrorUnknown},
	}

	for _, tc := range testCases {
		t.Run(string(tc.expected), func(t *testing.T) {
			if got := errorCode(tc.variant, tc.description); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
