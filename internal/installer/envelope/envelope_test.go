package envelope

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/lodestar/internal/platform/errors"
)

// fakeSink records every transport interaction in order.
type fakeSink struct {
	events    []string
	writeErr  error
	flushErr  error
	bodyBytes strings.Builder
}

func (s *fakeSink) WriteHeader(name, value string) {
	s.events = append(s.events, "header:"+name+"="+value)
}

func (s *fakeSink) WriteBody(p []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.events = append(s.events, "body:"+string(p))
	s.bodyBytes.Write(p)
	return nil
}

func (s *fakeSink) FlushNetwork() error {
	if s.flushErr != nil {
		return s.flushErr
	}
	s.events = append(s.events, "flush")
	return nil
}

func (s *fakeSink) headerCount(name string) int {
	count := 0
	for _, event := range s.events {
		if strings.HasPrefix(event, "header:"+name+"=") {
			count++
		}
	}
	return count
}

// fakeFrame emits sentinel markup so ordering assertions stay readable.
type fakeFrame struct {
	openErr error
}

func (f fakeFrame) OpeningFull() (string, error) {
	if f.openErr != nil {
		return "", f.openErr
	}
	return "[open-full]", nil
}

func (f fakeFrame) OpeningShort() (string, error) {
	if f.openErr != nil {
		return "", f.openErr
	}
	return "[open-short]", nil
}

func (f fakeFrame) ClosingFull() (string, error)  { return "[close-full]", nil }
func (f fakeFrame) ClosingShort() (string, error) { return "[close-short]", nil }

func newTestBuffer() (*Buffer, *fakeSink) {
	sink := &fakeSink{}
	return New(sink, fakeFrame{}), sink
}

func TestFinalizeSendsFragmentsInAppendOrder(t *testing.T) {
	buffer, sink := newTestBuffer()

	if err := buffer.Append("<p>A</p>"); err != nil {
		t.Fatalf("append A: %v", err)
	}
	if err := buffer.Append("<p>B</p>"); err != nil {
		t.Fatalf("append B: %v", err)
	}
	if err := buffer.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	want := []string{
		"header:Content-Type=text/html; charset=utf-8",
		"header:X-Frame-Options=DENY",
		"body:[open-full]",
		"body:<p>A</p>",
		"flush",
		"body:<p>B</p>",
		"flush",
		"body:[close-full]",
		"flush",
	}
	if len(sink.events) != len(want) {
		t.Fatalf("events = %v, want %v", sink.events, want)
	}
	for i := range want {
		if sink.events[i] != want[i] {
			t.Fatalf("event[%d] = %q, want %q (all: %v)", i, sink.events[i], want[i], sink.events)
		}
	}
}

func TestAppendNoFlushBatchesIntoSingleFlush(t *testing.T) {
	buffer, sink := newTestBuffer()

	buffer.AppendNoFlush("<p>A</p>")
	buffer.AppendNoFlush("<p>B</p>")
	buffer.AppendNoFlush("<p>C</p>")
	if err := buffer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	flushes := 0
	for _, event := range sink.events {
		if event == "flush" {
			flushes++
		}
	}
	if flushes != 1 {
		t.Fatalf("expected one network flush for batched fragments, got %d (events %v)", flushes, sink.events)
	}
	if got := sink.bodyBytes.String(); got != "[open-full]<p>A</p><p>B</p><p>C</p>" {
		t.Fatalf("body = %q", got)
	}
}

func TestRedirectSendsLocationAndNoBody(t *testing.T) {
	buffer, sink := newTestBuffer()

	buffer.AppendNoFlush("<p>ignored</p>")
	if err := buffer.RequestRedirect("/step/account"); err != nil {
		t.Fatalf("request redirect: %v", err)
	}
	if got := buffer.Controller().RedirectTarget(); got != "/step/account" {
		t.Fatalf("redirect target = %q", got)
	}
	if err := buffer.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if got := sink.headerCount("Location"); got != 1 {
		t.Fatalf("expected exactly one Location header, got %d (events %v)", got, sink.events)
	}
	if got := sink.bodyBytes.String(); got != "" {
		t.Fatalf("expected zero body bytes with redirect, got %q", got)
	}
	for _, event := range sink.events {
		if strings.HasPrefix(event, "body:") {
			t.Fatalf("expected no frame emission with redirect, got %q", event)
		}
	}
}

func TestRedirectAfterCommitFailsWithLateRedirect(t *testing.T) {
	buffer, _ := newTestBuffer()

	if err := buffer.Append("<p>progress</p>"); err != nil {
		t.Fatalf("append: %v", err)
	}

	err := buffer.RequestRedirect("/step/complete")
	if err == nil {
		t.Fatal("expected late redirect error after first append committed the envelope")
	}
	if !errors.Is(err, &apperrors.Error{Code: apperrors.CodeLateRedirect}) {
		t.Fatalf("expected ENVELOPE_LATE_REDIRECT, got %v", err)
	}
}

func TestCommitIsIdempotent(t *testing.T) {
	sink := &fakeSink{}
	controller := NewController(sink, fakeFrame{})

	if err := controller.Commit(); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := controller.Commit(); err != nil {
		t.Fatalf("second commit: %v", err)
	}

	if got := sink.headerCount("Content-Type"); got != 1 {
		t.Fatalf("expected one content-type header, got %d", got)
	}
	opens := 0
	for _, event := range sink.events {
		if event == "body:[open-full]" {
			opens++
		}
	}
	if opens != 1 {
		t.Fatalf("expected one opening frame, got %d (events %v)", opens, sink.events)
	}
}

func TestUndecidedCommitsAsFullRender(t *testing.T) {
	sink := &fakeSink{}
	controller := NewController(sink, fakeFrame{})

	if err := controller.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if controller.Mode() != ModeRenderFull {
		t.Fatalf("Mode() = %v, want render-full", controller.Mode())
	}
}

func TestShortHeaderSequenceWithNoContent(t *testing.T) {
	buffer, sink := newTestBuffer()

	if err := buffer.Controller().SetShortHeader(true); err != nil {
		t.Fatalf("set short header: %v", err)
	}
	if err := buffer.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if got := sink.bodyBytes.String(); got != "[open-short][close-short]" {
		t.Fatalf("body = %q, want short opening immediately closed by short closing", got)
	}
}

func TestAllowFramesSuppressesDenyHeader(t *testing.T) {
	buffer, sink := newTestBuffer()

	if err := buffer.Controller().SetAllowFrames(true); err != nil {
		t.Fatalf("set allow frames: %v", err)
	}
	if err := buffer.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if got := sink.headerCount("X-Frame-Options"); got != 0 {
		t.Fatalf("expected no frame-blocking header, got %d", got)
	}
}

func TestDenyHeaderEmittedByDefault(t *testing.T) {
	buffer, sink := newTestBuffer()

	if err := buffer.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if got := sink.headerCount("X-Frame-Options"); got != 1 {
		t.Fatalf("expected one frame-blocking header, got %d", got)
	}
}

func TestRedirectWinsOverShortHeader(t *testing.T) {
	buffer, sink := newTestBuffer()

	if err := buffer.Controller().SetShortHeader(true); err != nil {
		t.Fatalf("set short header: %v", err)
	}
	if err := buffer.RequestRedirect("/step/connect"); err != nil {
		t.Fatalf("request redirect: %v", err)
	}
	if err := buffer.Controller().SetShortHeader(true); err != nil {
		t.Fatalf("set short header after redirect: %v", err)
	}
	if err := buffer.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if got := sink.bodyBytes.String(); got != "" {
		t.Fatalf("expected no frame when a redirect target is present, got %q", got)
	}
	if got := sink.headerCount("Location"); got != 1 {
		t.Fatalf("expected one Location header, got %d", got)
	}
	if got := buffer.Controller().RedirectTarget(); got != "/step/connect" {
		t.Fatalf("redirect target = %q", got)
	}
}

func TestSettersFailAfterCommit(t *testing.T) {
	buffer, _ := newTestBuffer()
	controller := buffer.Controller()

	if err := buffer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	frozen := &apperrors.Error{Code: apperrors.CodeEnvelopeFrozen}
	if err := controller.SetRedirect("/late"); !errors.Is(err, frozen) {
		t.Fatalf("SetRedirect after commit = %v, want ENVELOPE_FROZEN", err)
	}
	if err := controller.SetShortHeader(true); !errors.Is(err, frozen) {
		t.Fatalf("SetShortHeader after commit = %v, want ENVELOPE_FROZEN", err)
	}
	if err := controller.SetAllowFrames(true); !errors.Is(err, frozen) {
		t.Fatalf("SetAllowFrames after commit = %v, want ENVELOPE_FROZEN", err)
	}
}

func TestFinalizeEmitsClosingFrameOnce(t *testing.T) {
	buffer, sink := newTestBuffer()

	if err := buffer.Finalize(); err != nil {
		t.Fatalf("first finalize: %v", err)
	}
	if err := buffer.Finalize(); err != nil {
		t.Fatalf("second finalize: %v", err)
	}

	closes := 0
	for _, event := range sink.events {
		if event == "body:[close-full]" {
			closes++
		}
	}
	if closes != 1 {
		t.Fatalf("expected one closing frame, got %d (events %v)", closes, sink.events)
	}
}

func TestFlushDiscardsPendingAfterRedirectCommit(t *testing.T) {
	buffer, sink := newTestBuffer()

	if err := buffer.RequestRedirect("/next"); err != nil {
		t.Fatalf("request redirect: %v", err)
	}
	if err := buffer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	// Discarded silently: redirect responses never carry content.
	buffer.AppendNoFlush("<p>late content</p>")
	if err := buffer.Flush(); err != nil {
		t.Fatalf("second flush: %v", err)
	}
	if got := sink.bodyBytes.String(); got != "" {
		t.Fatalf("expected no body after redirect commit, got %q", got)
	}
}

func TestTransportWriteFailureSurfacesAsTransportError(t *testing.T) {
	sink := &fakeSink{writeErr: fmt.Errorf("connection reset by peer")}
	buffer := New(sink, fakeFrame{})

	err := buffer.Append("<p>A</p>")
	if err == nil {
		t.Fatal("expected transport write failure")
	}
	if !errors.Is(err, &apperrors.Error{Code: apperrors.CodeTransportWrite}) {
		t.Fatalf("expected ENVELOPE_TRANSPORT_WRITE, got %v", err)
	}
}

func TestFrameRenderErrorAbortsCommit(t *testing.T) {
	sink := &fakeSink{}
	renderErr := fmt.Errorf("render head")
	controller := NewController(sink, fakeFrame{openErr: renderErr})

	if err := controller.Commit(); !errors.Is(err, renderErr) {
		t.Fatalf("Commit() = %v, want render error", err)
	}
	// The envelope stays committed: headers are already on the wire.
	if !controller.Committed() {
		t.Fatal("expected envelope to remain committed after opening failure")
	}
}
