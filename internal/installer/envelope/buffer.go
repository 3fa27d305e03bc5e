package envelope

import (
	apperrors "github.com/louisbranch/lodestar/internal/platform/errors"
)

// Buffer accumulates markup fragments for one response and owns the flush
// points at which they reach the transport.
//
// A Buffer and its Controller are created together per request and never
// shared between requests; neither is safe for concurrent use.
type Buffer struct {
	sink       Sink
	controller *Controller
	pending    []string
}

// New creates the buffer/controller pair for one response cycle.
func New(sink Sink, frame Frame) *Buffer {
	return &Buffer{
		sink:       sink,
		controller: NewController(sink, frame),
	}
}

// Controller exposes the envelope controller for header-phase decisions.
func (b *Buffer) Controller() *Controller {
	return b.controller
}

// Append buffers a fragment and immediately flushes, so long-running steps
// can deliver progress markup incrementally.
func (b *Buffer) Append(fragment string) error {
	b.pending = append(b.pending, fragment)
	return b.Flush()
}

// AppendNoFlush buffers a fragment without sending it, batching several
// fragments into a single flush.
func (b *Buffer) AppendNoFlush(fragment string) {
	b.pending = append(b.pending, fragment)
}

// Flush commits the envelope if needed and sends pending fragments in
// append order. When the committed mode is a redirect, pending content is
// discarded: redirect responses carry no body.
func (b *Buffer) Flush() error {
	if err := b.controller.Commit(); err != nil {
		return err
	}
	if b.controller.Mode() == ModeRedirect {
		// Redirects carry no body; flushing pushes the status line out.
		b.pending = nil
		if err := b.sink.FlushNetwork(); err != nil {
			return apperrors.Wrap(apperrors.CodeTransportWrite, "flush redirect", err)
		}
		return nil
	}
	if len(b.pending) == 0 {
		return nil
	}
	for _, fragment := range b.pending {
		if err := b.sink.WriteBody([]byte(fragment)); err != nil {
			return apperrors.Wrap(apperrors.CodeTransportWrite, "write fragment", err)
		}
	}
	b.pending = nil
	if err := b.sink.FlushNetwork(); err != nil {
		return apperrors.Wrap(apperrors.CodeTransportWrite, "flush fragments", err)
	}
	return nil
}

// RequestRedirect records a redirect target. Once the envelope is committed
// the headers are on the wire and a redirect can no longer replace them, so
// the request fails with LATE_REDIRECT.
func (b *Buffer) RequestRedirect(url string) error {
	if b.controller.Committed() {
		return apperrors.WithMetadata(apperrors.CodeLateRedirect,
			"redirect requested after headers were sent",
			map[string]string{"url": url})
	}
	return b.controller.SetRedirect(url)
}

// Finalize performs the final flush and closes the frame that the commit
// opened. Redirect responses get no closing frame.
func (b *Buffer) Finalize() error {
	if err := b.Flush(); err != nil {
		return err
	}
	return b.controller.EmitClosing()
}
