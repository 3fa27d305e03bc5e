// Package envelope owns the one-shot commit of a wizard response: the
// redirect-vs-render decision, its headers, and the buffered body content
// that may only follow an opening page frame.
package envelope

import (
	apperrors "github.com/louisbranch/lodestar/internal/platform/errors"
)

// Mode is the envelope decision for one response.
type Mode int

const (
	// ModeUndecided means no explicit choice was made; commit renders the
	// full frame.
	ModeUndecided Mode = iota
	// ModeRedirect sends a Location header and no body.
	ModeRedirect
	// ModeRenderFull sends the standard page chrome.
	ModeRenderFull
	// ModeRenderShort sends the lightweight chrome for embedded contexts.
	ModeRenderShort
)

// String returns the mode name for logs.
func (m Mode) String() string {
	switch m {
	case ModeUndecided:
		return "undecided"
	case ModeRedirect:
		return "redirect"
	case ModeRenderFull:
		return "render-full"
	case ModeRenderShort:
		return "render-short"
	default:
		return "unknown"
	}
}

// Frame renders the opening and closing page chrome for a response.
// Implementations are stateless; all strings are resolved up front.
type Frame interface {
	OpeningFull() (string, error)
	OpeningShort() (string, error)
	ClosingFull() (string, error)
	ClosingShort() (string, error)
}

const contentType = "text/html; charset=utf-8"

// Controller owns the envelope state machine for one response.
//
// Mode, redirect target and frame permission are mutable until Commit;
// afterwards every setter fails with ENVELOPE_FROZEN. Commit itself is
// idempotent: headers and the opening frame are emitted exactly once.
type Controller struct {
	sink  Sink
	frame Frame

	committed      bool
	mode           Mode
	redirectTarget string
	allowFrames    bool
	closingDone    bool
}

// NewController creates the envelope controller for one response cycle.
func NewController(sink Sink, frame Frame) *Controller {
	return &Controller{sink: sink, frame: frame}
}

// Committed reports whether headers have been sent.
func (c *Controller) Committed() bool {
	return c.committed
}

// Mode returns the current envelope mode. After Commit it is the mode the
// response was actually sent with.
func (c *Controller) Mode() Mode {
	return c.mode
}

// RedirectTarget returns the recorded redirect URL, if any.
func (c *Controller) RedirectTarget() string {
	return c.redirectTarget
}

// SetRedirect records a redirect target and switches the envelope to
// redirect mode. A redirect always wins over a previously requested short
// header.
func (c *Controller) SetRedirect(url string) error {
	if c.committed {
		return apperrors.New(apperrors.CodeEnvelopeFrozen, "set redirect after envelope commit")
	}
	c.mode = ModeRedirect
	c.redirectTarget = url
	return nil
}

// SetShortHeader selects the short or full page chrome. It is ignored when
// a redirect target is already recorded.
func (c *Controller) SetShortHeader(short bool) error {
	if c.committed {
		return apperrors.New(apperrors.CodeEnvelopeFrozen, "set short header after envelope commit")
	}
	if c.mode == ModeRedirect {
		return nil
	}
	if short {
		c.mode = ModeRenderShort
	} else {
		c.mode = ModeRenderFull
	}
	return nil
}

// SetAllowFrames controls whether the frame-blocking header is suppressed.
func (c *Controller) SetAllowFrames(allow bool) error {
	if c.committed {
		return apperrors.New(apperrors.CodeEnvelopeFrozen, "set allow frames after envelope commit")
	}
	c.allowFrames = allow
	return nil
}

// Commit freezes the envelope and emits headers plus, for render modes, the
// opening frame. Repeated calls return immediately.
func (c *Controller) Commit() error {
	if c.committed {
		return nil
	}
	c.committed = true

	c.sink.WriteHeader("Content-Type", contentType)
	if !c.allowFrames {
		c.sink.WriteHeader("X-Frame-Options", "DENY")
	}

	switch c.mode {
	case ModeRedirect:
		c.sink.WriteHeader("Location", c.redirectTarget)
		return nil
	case ModeRenderShort:
		return c.emitOpening(c.frame.OpeningShort)
	default:
		c.mode = ModeRenderFull
		return c.emitOpening(c.frame.OpeningFull)
	}
}

// EmitClosing sends the closing frame matching the committed opening. It is
// a no-op for redirects, for uncommitted envelopes, and on repeated calls.
func (c *Controller) EmitClosing() error {
	if !c.committed || c.closingDone || c.mode == ModeRedirect {
		return nil
	}
	c.closingDone = true

	render := c.frame.ClosingFull
	if c.mode == ModeRenderShort {
		render = c.frame.ClosingShort
	}
	markup, err := render()
	if err != nil {
		return err
	}
	if err := c.sink.WriteBody([]byte(markup)); err != nil {
		return apperrors.Wrap(apperrors.CodeTransportWrite, "write closing frame", err)
	}
	if err := c.sink.FlushNetwork(); err != nil {
		return apperrors.Wrap(apperrors.CodeTransportWrite, "flush closing frame", err)
	}
	return nil
}

func (c *Controller) emitOpening(render func() (string, error)) error {
	markup, err := render()
	if err != nil {
		return err
	}
	if err := c.sink.WriteBody([]byte(markup)); err != nil {
		return apperrors.Wrap(apperrors.CodeTransportWrite, "write opening frame", err)
	}
	return nil
}
