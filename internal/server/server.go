// Package server implements the HTTP side of the streamer. It republishes
// the latest captured JPEG frame to any number of clients as an MJPEG push
// stream, a one-shot snapshot, or a JSON status ping.
package server

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/mjpegd/internal/stream"
)

// Default server settings.
const (
	DefaultHost            = "localhost"
	DefaultPort            = 8080
	DefaultTimeout         = 10 * time.Second
	DefaultRefreshInterval = 30 * time.Millisecond
)

// Config holds the server configuration. Zero-valued fields fall back to the
// defaults above, except Port: a zero port binds an ephemeral one, and the
// 8080 default is applied by the flag layer.
type Config struct {
	Host            string
	Port            int
	Timeout         time.Duration // write deadline for streaming clients
	RefreshInterval time.Duration // frame exposure cadence
	Verbose         bool
}

// Server owns the exposed frame, the set of streaming clients, and the HTTP
// listener. One event loop goroutine performs all registry mutations and
// frame refreshes; request handlers only read the exposed frame and hand new
// streaming clients over to the loop.
type Server struct {
	config Config
	source *stream.Source
	mux    *http.ServeMux
	http   *http.Server
	ln     net.Listener

	mu      sync.RWMutex // guards exposed
	exposed exposed

	// clients is owned by the event loop goroutine.
	clients     clientList
	clientCount atomic.Int32

	add    chan *streamClient
	remove chan *streamClient
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
}

// New creates a Server reading frames from source. The exposed frame starts
// out blank and offline.
func New(source *stream.Source, config Config) *Server {
	if config.Host == "" {
		config.Host = DefaultHost
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.RefreshInterval == 0 {
		config.RefreshInterval = DefaultRefreshInterval
	}

	s := &Server{
		config: config,
		source: source,
		mux:    http.NewServeMux(),
		add:    make(chan *streamClient),
		remove: make(chan *streamClient),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.exposed.setBlank()
	s.setupRoutes()
	s.http = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: config.Timeout,
	}
	return s
}

// setupRoutes configures the four fixed routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/ping", s.handlePing)
	s.mux.HandleFunc("/snapshot", s.handleSnapshot)
	s.mux.HandleFunc("/stream", s.handleStream)
}

// ServeHTTP implements the http.Handler interface. Only GET and HEAD are
// accepted on any route.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// Listen binds the configured address. A bind failure is fatal for the
// process; the caller decides how to exit.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.ln = ln
	log.Printf("listening on http://%s", ln.Addr())
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve runs the event loop and accepts connections until Break is called.
func (s *Server) Serve() error {
	go s.loop()
	err := s.http.Serve(s.ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Break stops the event loop, drops every streaming client, and closes the
// listener. Safe to call more than once and from any goroutine.
func (s *Server) Break() {
	s.once.Do(func() {
		s.http.Close()
		close(s.stop)
		<-s.done
	})
}

// loop is the event loop. It owns the client registry and all writes to the
// exposed frame.
func (s *Server) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.refresh()
		case c := <-s.add:
			s.clients.add(c)
			s.clientCount.Store(int32(s.clients.size))
			if s.config.Verbose {
				log.Printf("stream client %s connected (%d total)", c.id, s.clients.size)
			}
		case c := <-s.remove:
			s.dropClient(c)
		case <-s.stop:
			for s.clients.head != nil {
				s.dropClient(s.clients.head)
			}
			return
		}
	}
}

// refresh reconciles the exposed frame from the source and fans the result
// out to the streaming clients. The source mutex is released before any
// client write happens.
func (s *Server) refresh() {
	s.mu.Lock()
	status := s.source.TryConsume(&s.exposed.frame)
	switch status {
	case stream.Picture:
		s.exposed.online = true
	case stream.Offline:
		s.exposed.setBlank()
	}
	offline := !s.exposed.online
	s.mu.Unlock()

	if status != stream.NoUpdate {
		if s.config.Verbose {
			log.Printf("refreshing exposed frame")
		}
		s.fanOut()
	} else if offline {
		// Keep pushing blank frames so clients see "no signal" instead of a
		// stalled stream.
		s.fanOut()
	}
}

// dropClient unlinks a client and closes its connection. Safe to call twice
// for the same client; only the first call has any effect.
func (s *Server) dropClient(c *streamClient) {
	if !c.linked {
		return
	}
	s.clients.remove(c)
	s.clientCount.Store(int32(s.clients.size))
	close(c.out)
	c.conn.Close()
	if s.config.Verbose {
		log.Printf("stream client %s disconnected (%d total)", c.id, s.clients.size)
	}
}

// disconnect requests removal of a client from outside the event loop.
func (s *Server) disconnect(c *streamClient) {
	select {
	case s.remove <- c:
	case <-s.done:
	}
}
