package envelope

import (
	"net/http"
)

// Sink is the transport boundary for one response.
//
// Headers must all be written before the first body write; the envelope
// controller enforces that ordering. The sink never manages the socket
// lifecycle itself.
type Sink interface {
	WriteHeader(name, value string)
	WriteBody(p []byte) error
	FlushNetwork() error
}

// HTTPSink adapts an http.ResponseWriter to the Sink interface.
//
// The HTTP status line is derived from the committed headers: a response
// carrying a Location header is sent as 302 Found, everything else as 200.
// The status is written once, on the first body write or network flush.
type HTTPSink struct {
	w           http.ResponseWriter
	statusWrote bool
}

// NewHTTPSink wraps a response writer.
func NewHTTPSink(w http.ResponseWriter) *HTTPSink {
	return &HTTPSink{w: w}
}

// WriteHeader records a response header. Calls after the status line has
// been written are silently dropped by net/http; the envelope controller
// never makes them.
func (s *HTTPSink) WriteHeader(name, value string) {
	s.w.Header().Set(name, value)
}

// WriteBody sends body bytes, writing the status line first if needed.
func (s *HTTPSink) WriteBody(p []byte) error {
	s.writeStatus()
	_, err := s.w.Write(p)
	return err
}

// FlushNetwork pushes buffered output to the client when the underlying
// writer supports incremental delivery.
func (s *HTTPSink) FlushNetwork() error {
	s.writeStatus()
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

func (s *HTTPSink) writeStatus() {
	if s.statusWrote {
		return
	}
	s.statusWrote = true
	if s.w.Header().Get("Location") != "" {
		s.w.WriteHeader(http.StatusFound)
		return
	}
	s.w.WriteHeader(http.StatusOK)
}
