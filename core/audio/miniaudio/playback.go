package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/skillsage/voice-interview/core/audio"
)

type playbackClient struct {
	device *malgo.Device
	buffer audio.PlaybackBuffer

	mu sync.Mutex
}

func (c *playbackClient) Init(audioContext *malgo.AllocatedContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sampleRate := uint32(audio.DefaultSampleRate)
	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels
	silence := audio.GetDefaultEncodingInfo().SilenceValue()

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.SampleRate = sampleRate
	config.Playback.Format = format
	config.Playback.Channels = uint32(channels)
	config.Alsa.NoMMap = 1
	config.PeriodSizeInFrames = sampleRate / 10 // ~100ms of audio
	config.Periods = 4

	var err error
	if c.device, err = malgo.InitDevice(
		audioContext.Context,
		config,
		malgo.DeviceCallbacks{
			Data: func(pOutput, _ []byte, frameCount uint32) {
				need := min(int(frameCount)*bytesPerFrame, len(pOutput))
				c.buffer.Read(pOutput[:need], silence)
			},
		},
	); err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	return nil
}

func (c *playbackClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}

	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}

	return nil
}

func (c *playbackClient) SendAudio(audio []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	} else if !c.device.IsStarted() {
		return fmt.Errorf("device not started")
	}

	c.buffer.Write(audio)
	return nil
}

// ClearBuffer drops queued audio. Callers waiting in AwaitMark return.
func (c *playbackClient) ClearBuffer() {
	c.buffer.Clear()
}

// AwaitMark blocks until the audio sent so far was played.
func (c *playbackClient) AwaitMark() error {
	<-c.buffer.Mark()
	return nil
}

func (c *playbackClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.buffer.Clear()
	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}

	return nil
}
