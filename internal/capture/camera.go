// Package capture reads frames from a camera device using GoCV (OpenCV) and
// publishes them, JPEG-encoded, into the shared stream source.
package capture

import (
	"errors"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mjpegd/internal/stream"
)

// Default camera settings.
const (
	DefaultFPS    = 30
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrCameraNotOpen is returned when starting a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Config holds the capture configuration.
type Config struct {
	Width  int
	Height int
	FPS    int
}

// Camera grabs frames from a video device and feeds a stream.Source. Frame
// reads that fail publish an offline signal instead, so the server keeps
// serving its blank picture until the device recovers.
type Camera struct {
	deviceID int
	config   Config

	mu      sync.Mutex
	capture *gocv.VideoCapture
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewCamera creates a Camera for the given device ID. Zero-valued config
// fields fall back to the defaults.
func NewCamera(deviceID int, config Config) *Camera {
	if config.Width <= 0 {
		config.Width = DefaultWidth
	}
	if config.Height <= 0 {
		config.Height = DefaultHeight
	}
	if config.FPS <= 0 {
		config.FPS = DefaultFPS
	}
	return &Camera{
		deviceID: deviceID,
		config:   config,
	}
}

// Open opens the video device and applies the configured resolution and
// frame rate.
func (c *Camera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return err
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.config.Width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.config.Height))
	capture.Set(gocv.VideoCaptureFPS, float64(c.config.FPS))

	c.capture = capture
	c.running = true
	return nil
}

// Start launches the capture loop publishing into source. The camera must be
// open.
func (c *Camera) Start(source *stream.Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return ErrCameraNotOpen
	}
	if c.stop != nil {
		return nil
	}

	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(source)
	return nil
}

// run grabs, encodes, and publishes frames at the configured rate.
func (c *Camera) run(source *stream.Source) {
	defer close(c.done)

	ticker := time.NewTicker(time.Second / time.Duration(c.config.FPS))
	defer ticker.Stop()

	mat := gocv.NewMat()
	defer mat.Close()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if !c.running || c.capture == nil {
			c.mu.Unlock()
			source.PublishOffline()
			continue
		}
		ok := c.capture.Read(&mat)
		c.mu.Unlock()

		if !ok || mat.Empty() {
			source.PublishOffline()
			continue
		}

		buf, err := gocv.IMEncode(".jpg", mat)
		if err != nil {
			source.PublishOffline()
			continue
		}
		source.Publish(buf.GetBytes(), mat.Cols(), mat.Rows())
		buf.Close()
	}
}

// Close stops the capture loop and releases the device.
func (c *Camera) Close() error {
	c.mu.Lock()
	stop, done := c.stop, c.done
	c.stop = nil
	c.done = nil
	c.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false
	return err
}

// IsOpen returns true if the device is currently open.
func (c *Camera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
