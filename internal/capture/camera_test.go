package capture

import (
	"testing"
)

func TestNewCamera(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		cam := NewCamera(0, Config{})

		if cam == nil {
			t.Fatal("NewCamera returned nil")
		}
		if cam.config.Width != DefaultWidth || cam.config.Height != DefaultHeight {
			t.Errorf("default resolution %dx%d, want %dx%d",
				cam.config.Width, cam.config.Height, DefaultWidth, DefaultHeight)
		}
		if cam.config.FPS != DefaultFPS {
			t.Errorf("default FPS %d, want %d", cam.config.FPS, DefaultFPS)
		}
		if cam.IsOpen() {
			t.Error("camera should not be open initially")
		}
	})

	t.Run("keeps explicit config", func(t *testing.T) {
		cam := NewCamera(1, Config{Width: 1280, Height: 720, FPS: 15})

		if cam.config.Width != 1280 || cam.config.Height != 720 || cam.config.FPS != 15 {
			t.Errorf("config not preserved: %+v", cam.config)
		}
	})
}

func TestCamera_StartRequiresOpen(t *testing.T) {
	cam := NewCamera(0, Config{})

	if err := cam.Start(nil); err != ErrCameraNotOpen {
		t.Errorf("Start() on closed camera = %v, want ErrCameraNotOpen", err)
	}
}

func TestCamera_CloseWithoutOpen(t *testing.T) {
	cam := NewCamera(0, Config{})

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on never-opened camera = %v, want nil", err)
	}
	if cam.IsOpen() {
		t.Error("camera reports open after Close")
	}
}
