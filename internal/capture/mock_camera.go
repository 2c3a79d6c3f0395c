package capture

import (
	"sync"

	"github.com/ayusman/mjpegd/internal/stream"
)

// MockCamera publishes pre-recorded JPEG frames for testing. It implements
// the same publish contract as Camera without touching any device.
type MockCamera struct {
	mu      sync.Mutex
	frames  [][]byte
	width   int
	height  int
	index   int
	loop    bool
	running bool
}

// NewMockCamera creates a mock producer that plays back frames of the given
// size. With loop set, playback restarts from the first frame; otherwise an
// exhausted mock publishes offline.
func NewMockCamera(frames [][]byte, width, height int, loop bool) *MockCamera {
	return &MockCamera{
		frames: frames,
		width:  width,
		height: height,
		loop:   loop,
	}
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

// PublishNext pushes the next frame into source. A closed or exhausted mock
// publishes an offline signal instead.
func (c *MockCamera) PublishNext(source *stream.Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || len(c.frames) == 0 {
		source.PublishOffline()
		return
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			source.PublishOffline()
			return
		}
		c.index = 0
	}

	source.Publish(c.frames[c.index], c.width, c.height)
	c.index++
}

// SetFrames replaces the frame sequence and restarts playback.
func (c *MockCamera) SetFrames(frames [][]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = frames
	c.index = 0
}

// Reset restarts playback from the beginning.
func (c *MockCamera) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = 0
}

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
