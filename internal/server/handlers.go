package server

import (
	"fmt"
	"net/http"
	"time"
)

const indexPage = `<!DOCTYPE html><html><head><meta charset="utf-8">` +
	`<title>mjpegd</title></head><body><ul>` +
	`<li><a href="/ping">/ping</a></li>` +
	`<li><a href="/snapshot">/snapshot</a></li>` +
	`<li><a href="/stream">/stream</a></li>` +
	`</ul></body></html>`

const cacheControl = "no-store, no-cache, must-revalidate, pre-check=0, post-check=0, max-age=0"

// handleIndex serves the HTML index. The "/" pattern is a catch-all in the
// mux, so unknown paths 404 here.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, indexPage)
}

// handlePing reports the exposed resolution and online state. The body is
// rendered directly so its byte layout never changes between releases.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mu.RLock()
	width := s.exposed.frame.Width
	height := s.exposed.frame.Height
	online := s.exposed.online
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w,
		`{"stream": {"resolution": {"width": %d, "height": %d}, "online": %t}}`,
		width, height, online)
}

// handleSnapshot serves the exposed frame as a single JPEG.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mu.RLock()
	body := append([]byte(nil), s.exposed.frame.Data...)
	s.mu.RUnlock()

	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Cache-Control", cacheControl)
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "Mon, 3 Jan 2000 12:34:56 GMT")
	h.Set("X-Timestamp", httpTimestamp(time.Now()))
	h.Set("Content-Type", "image/jpeg")
	w.Write(body)
}
