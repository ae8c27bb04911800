package audio

import "sync"

// PlaybackBuffer queues audio for an output device. The device drains it with
// Read from its own callback; writers wait for playback with Mark.
type PlaybackBuffer struct {
	mu      sync.Mutex
	pending []byte
	marks   []playbackMark
}

type playbackMark struct {
	// position is the number of pending bytes that must be played before the
	// mark is reached.
	position int
	reached  chan struct{}
}

func (b *PlaybackBuffer) Write(audio []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, audio...)
}

// Read fills out with pending audio, pads the rest with silence and releases
// every mark that was played. It returns the number of audio bytes copied.
func (b *PlaybackBuffer) Read(out []byte, silence byte) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := copy(out, b.pending)
	b.pending = b.pending[n:]
	if len(b.pending) == 0 {
		b.pending = nil
	}
	for i := n; i < len(out); i++ {
		out[i] = silence
	}

	remaining := b.marks[:0]
	for _, mark := range b.marks {
		mark.position -= n
		if mark.position <= 0 {
			close(mark.reached)
			continue
		}
		remaining = append(remaining, mark)
	}
	b.marks = remaining
	return n
}

// Mark returns a channel closed once the audio written so far was played or
// cleared.
func (b *PlaybackBuffer) Mark() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	reached := make(chan struct{})
	if len(b.pending) == 0 {
		close(reached)
		return reached
	}
	b.marks = append(b.marks, playbackMark{position: len(b.pending), reached: reached})
	return reached
}

// Clear drops pending audio and releases every mark.
func (b *PlaybackBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = nil
	for _, mark := range b.marks {
		close(mark.reached)
	}
	b.marks = nil
}

func (b *PlaybackBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
