package server

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Boundary string of the multipart stream. Literal, known to every MJPEG
// client out there.
const streamBoundary = "boundarydonotcross"

// streamPreamble is sent once per client, before the first part. The stream
// speaks HTTP/1.0 because the connection is never reused; everything after
// these headers is an endless multipart body.
const streamPreamble = "HTTP/1.0 200 OK\r\n" +
	"Access-Control-Allow-Origin: *\r\n" +
	"Cache-Control: no-store, no-cache, must-revalidate, pre-check=0, post-check=0, max-age=0\r\n" +
	"Pragma: no-cache\r\n" +
	"Expires: Mon, 3 Jan 2000 12:34:56 GMT\r\n" +
	"Content-Type: multipart/x-mixed-replace;boundary=" + streamBoundary + "\r\n" +
	"\r\n" +
	"--" + streamBoundary + "\r\n"

// outboundQueueSize bounds the number of parts queued per client. A client
// that falls further behind misses frames instead of growing the queue.
const outboundQueueSize = 8

// streamClient is one /stream connection whose socket has been taken over
// for the multipart push protocol. needInitial and the registry links belong
// to the event loop goroutine.
type streamClient struct {
	id          uuid.UUID
	conn        net.Conn
	out         chan []byte
	needInitial bool
	linked      bool
	prev, next  *streamClient
}

// clientList is an intrusive doubly linked list of streaming clients,
// mutated only on the event loop goroutine.
type clientList struct {
	head, tail *streamClient
	size       int
}

// add links c at the tail.
func (l *clientList) add(c *streamClient) {
	c.prev = l.tail
	c.next = nil
	if l.tail == nil {
		l.head = c
	} else {
		l.tail.next = c
	}
	l.tail = c
	c.linked = true
	l.size++
}

// remove unlinks c in O(1). Removing an already-unlinked client is a no-op.
func (l *clientList) remove(c *streamClient) {
	if !c.linked {
		return
	}
	if c.prev == nil {
		l.head = c.next
	} else {
		c.prev.next = c.next
	}
	if c.next == nil {
		l.tail = c.prev
	} else {
		c.next.prev = c.prev
	}
	c.prev = nil
	c.next = nil
	c.linked = false
	l.size--
}

// handleStream registers the connection as a streaming client. The response
// is not produced through the normal reply path: the socket is hijacked and
// from then on only the fan-out writes to it.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	hj, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// The hijacked connection keeps whatever deadlines the http.Server set.
	conn.SetDeadline(time.Time{})

	c := &streamClient{
		id:          uuid.New(),
		conn:        conn,
		out:         make(chan []byte, outboundQueueSize),
		needInitial: true,
	}

	select {
	case s.add <- c:
	case <-s.done:
		conn.Close()
		return
	}

	go c.writeLoop(s)
	go c.readLoop(s)
}

// writeLoop drains the outbound queue onto the socket. Every write carries a
// deadline; a slow or dead client errors out and gets dropped.
func (c *streamClient) writeLoop(s *Server) {
	for part := range c.out {
		if s.config.Timeout > 0 {
			c.conn.SetWriteDeadline(time.Now().Add(s.config.Timeout))
		}
		if _, err := c.conn.Write(part); err != nil {
			s.disconnect(c)
			return
		}
	}
}

// readLoop watches for EOF. Streaming clients are not expected to send
// anything after the request; bytes they do send are discarded, and any read
// error (EOF included) means the peer is gone.
func (c *streamClient) readLoop(s *Server) {
	buf := make([]byte, 512)
	for {
		if _, err := c.conn.Read(buf); err != nil {
			s.disconnect(c)
			return
		}
	}
}

// fanOut queues the current exposed frame to every registered client. Runs
// on the event loop goroutine; the per-client queue makes sure it never
// blocks on a slow socket.
func (s *Server) fanOut() {
	if s.clients.head == nil {
		return
	}

	s.mu.RLock()
	payload := append([]byte(nil), s.exposed.frame.Data...)
	s.mu.RUnlock()

	for c := s.clients.head; c != nil; c = c.next {
		var b bytes.Buffer
		if c.needInitial {
			b.WriteString(streamPreamble)
		}
		fmt.Fprintf(&b,
			"Content-Type: image/jpeg\r\n"+
				"Content-Length: %d\r\n"+
				"X-Timestamp: %s\r\n"+
				"\r\n",
			len(payload), httpTimestamp(time.Now()))
		b.Write(payload)
		b.WriteString("\r\n--" + streamBoundary + "\r\n")

		select {
		case c.out <- b.Bytes():
			c.needInitial = false
		default:
			// Queue full. Drop this update; the client catches up on a
			// later fan-out.
		}
	}
}

// httpTimestamp renders t as <sec>.<usec>. The sub-second part is truncated,
// not rounded.
func httpTimestamp(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}
