package server

import (
	"github.com/ayusman/mjpegd/internal/blank"
	"github.com/ayusman/mjpegd/internal/stream"
)

// exposed is the server-side copy of the most recently consumed frame. It is
// what every HTTP response is built from, so the producer can never stall a
// client. Written only by the event loop; read by handlers under Server.mu.
type exposed struct {
	frame  stream.Frame
	online bool
}

// ensureCapacity grows the frame buffer to hold at least n bytes. Capacity
// never shrinks; contents are not preserved across growth (every caller
// overwrites the buffer right after).
func (e *exposed) ensureCapacity(n int) {
	if cap(e.frame.Data) < n {
		e.frame.Data = make([]byte, 0, n)
	} else {
		e.frame.Data = e.frame.Data[:0]
	}
}

// setBlank installs the embedded blank picture and marks the stream offline.
// Skipped when the frame is already blank, so repeated calls are equivalent
// to one.
func (e *exposed) setBlank() {
	if !e.online && len(e.frame.Data) > 0 {
		return
	}

	e.ensureCapacity(len(blank.Data))
	e.frame.Data = append(e.frame.Data, blank.Data...)
	e.frame.Width = blank.Width
	e.frame.Height = blank.Height
	e.online = false
}
