package server

import (
	"bytes"
	"testing"

	"github.com/ayusman/mjpegd/internal/blank"
)

func TestExposed_SetBlank(t *testing.T) {
	t.Run("installs the blank picture", func(t *testing.T) {
		var e exposed
		e.setBlank()

		if !bytes.Equal(e.frame.Data, blank.Data) {
			t.Error("frame data does not match the blank picture")
		}
		if e.frame.Width != blank.Width || e.frame.Height != blank.Height {
			t.Errorf("size %dx%d, want %dx%d", e.frame.Width, e.frame.Height, blank.Width, blank.Height)
		}
		if e.online {
			t.Error("blank frame must be offline")
		}
	})

	t.Run("calling twice equals calling once", func(t *testing.T) {
		var e exposed
		e.setBlank()
		first := append([]byte(nil), e.frame.Data...)

		e.setBlank()
		if !bytes.Equal(e.frame.Data, first) {
			t.Error("second setBlank changed the frame bytes")
		}
		if e.online {
			t.Error("second setBlank changed the online flag")
		}
	})

	t.Run("replaces an online frame", func(t *testing.T) {
		var e exposed
		e.frame.Data = []byte{0xFF, 0xD8, 0xFF, 0xD9}
		e.frame.Width = 2
		e.frame.Height = 1
		e.online = true

		e.setBlank()
		if !bytes.Equal(e.frame.Data, blank.Data) {
			t.Error("online frame was not replaced by the blank picture")
		}
		if e.online {
			t.Error("online flag not cleared")
		}
	})

	t.Run("skips an offline non-empty frame", func(t *testing.T) {
		var e exposed
		e.frame.Data = []byte{0x01, 0x02}
		e.online = false

		e.setBlank()
		if !bytes.Equal(e.frame.Data, []byte{0x01, 0x02}) {
			t.Error("setBlank touched a frame that was already offline")
		}
	})
}

func TestExposed_EnsureCapacity(t *testing.T) {
	var e exposed

	e.ensureCapacity(100)
	if cap(e.frame.Data) < 100 {
		t.Fatalf("cap = %d, want >= 100", cap(e.frame.Data))
	}
	grown := cap(e.frame.Data)

	// Capacity never shrinks.
	e.ensureCapacity(10)
	if cap(e.frame.Data) < grown {
		t.Errorf("cap shrank from %d to %d", grown, cap(e.frame.Data))
	}

	e.ensureCapacity(grown * 2)
	if cap(e.frame.Data) < grown*2 {
		t.Errorf("cap = %d, want >= %d", cap(e.frame.Data), grown*2)
	}
}
