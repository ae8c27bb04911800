// Package portaudio captures and plays audio through one duplex PortAudio
// stream.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/skillsage/voice-interview/core/audio"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const DefaultBufferSize = 1024

var logger = otelslog.NewLogger("github.com/skillsage/voice-interview/core/audio/portaudio")

type Client struct {
	stream *portaudio.Stream
	buffer audio.PlaybackBuffer

	in  []int16
	out []int16

	mu      sync.Mutex
	onAudio func(audio []byte)

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient opens and starts the default duplex stream. bufferSize is in
// frames.
func NewClient(bufferSize int) (*Client, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	c := &Client{
		in:   make([]int16, bufferSize),
		out:  make([]int16, bufferSize),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}

	stream, err := portaudio.OpenDefaultStream(1, 1, audio.DefaultSampleRate, bufferSize, c.in, c.out)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start portaudio stream: %w", err)
	}
	c.stream = stream

	go c.pump()
	return c, nil
}

// pump moves one buffer in each direction per iteration until Close.
func (c *Client) pump() {
	defer close(c.done)

	outBytes := make([]byte, len(c.out)*2)
	silence := audio.GetDefaultEncodingInfo().SilenceValue()
	for {
		select {
		case <-c.stop:
			return
		default:
		}

		if err := c.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
			logger.Warn("failed to read from portaudio stream", "error", err)
		}
		c.mu.Lock()
		onAudio := c.onAudio
		c.mu.Unlock()
		if onAudio != nil {
			captured := bytes.Buffer{}
			binary.Write(&captured, binary.LittleEndian, c.in)
			onAudio(captured.Bytes())
		}

		c.buffer.Read(outBytes, silence)
		binary.Read(bytes.NewReader(outBytes), binary.LittleEndian, c.out)
		if err := c.stream.Write(); err != nil && !errors.Is(err, portaudio.OutputUnderflowed) {
			logger.Warn("failed to write to portaudio stream", "error", err)
		}
	}
}

// Stream captures audio into onAudio until ctx is done.
func (c *Client) Stream(ctx context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	if c.onAudio != nil {
		c.mu.Unlock()
		return fmt.Errorf("capture already streaming")
	}
	c.onAudio = onAudio
	c.mu.Unlock()

	select {
	case <-ctx.Done():
	case <-c.done:
	}

	c.mu.Lock()
	c.onAudio = nil
	c.mu.Unlock()
	return ctx.Err()
}

func (c *Client) SendAudio(audio []byte) error {
	c.buffer.Write(audio)
	return nil
}

func (c *Client) ClearBuffer() {
	c.buffer.Clear()
}

func (c *Client) AwaitMark() error {
	<-c.buffer.Mark()
	return nil
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done
		c.buffer.Clear()

		err = errors.Join(c.stream.Stop(), c.stream.Close(), portaudio.Terminate())
	})
	return err
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
