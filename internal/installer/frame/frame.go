// Package frame renders the installer page chrome.
//
// The frame is a pure function from already-resolved strings to markup: it
// does not look up assets, translations, or languages itself. Opening and
// closing halves are rendered separately so wizard content can stream in
// between them.
package frame

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Head holds the resolved strings for the document head and body tag.
type Head struct {
	// Lang is the page language tag, e.g. "en-US".
	Lang string
	// Dir is the text direction, "ltr" or "rtl". It doubles as the body
	// class so skins can restyle for right-to-left languages.
	Dir string
	// Title is the page title, restated in the full frame's <h1>.
	Title string
	// StyleLink is the resolved stylesheet URL.
	StyleLink string
	// ScriptLinks are the resolved script URLs.
	ScriptLinks []string
}

// DocLink is one installer documentation link in the side panel.
type DocLink struct {
	Label string
	URL   string
}

// Sidebar holds the resolved side panel content for the full closing frame.
type Sidebar struct {
	// Sections is externally supplied link markup; chunks delimited by a
	// line containing only "----" each become their own portal container.
	Sections string
	// DocHeading labels the documentation portal.
	DocHeading string
	// DocLinks are the fixed installer documentation links.
	DocLinks []DocLink
}

// Frame renders opening and closing chrome from resolved strings.
type Frame struct {
	head    Head
	sidebar Sidebar
}

// New creates a frame for one page render.
func New(head Head, sidebar Sidebar) *Frame {
	return &Frame{head: head, sidebar: sidebar}
}

// OpeningFull renders the document head, body tag, structural wrappers and
// the page heading.
func (f *Frame) OpeningFull() (string, error) {
	return render(templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := headComponent(f.head).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w,
			`<body class="`+html.EscapeString(f.head.Dir)+`">`+
				`<div id="content">`+
				`<div id="main">`+
				`<h1>`+html.EscapeString(f.head.Title)+`</h1>`)
		return err
	}))
}

// ClosingFull closes the structural wrappers, renders the side panel, and
// closes the document.
func (f *Frame) ClosingFull() (string, error) {
	return render(templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `</div>`); err != nil {
			return err
		}
		if err := sidebarComponent(f.sidebar).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div></body></html>`)
		return err
	}))
}

// OpeningShort renders the same head as the full frame but a bare body with
// the background image suppressed, for embedded callback contexts.
func (f *Frame) OpeningShort() (string, error) {
	return render(templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := headComponent(f.head).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w,
			`<body class="`+html.EscapeString(f.head.Dir)+`" style="background-image: none;">`)
		return err
	}))
}

// ClosingShort closes the document with no side panel.
func (f *Frame) ClosingShort() (string, error) {
	return "</body></html>", nil
}

func render(component templ.Component) (string, error) {
	var b strings.Builder
	if err := component.Render(context.Background(), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func headComponent(head Head) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!DOCTYPE html>\n")
		b.WriteString(`<html lang="` + html.EscapeString(head.Lang) + `" dir="` + html.EscapeString(head.Dir) + `">`)
		b.WriteString(`<head>`)
		b.WriteString(`<meta charset="utf-8"/>`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		b.WriteString(`<title>` + html.EscapeString(head.Title) + `</title>`)
		if head.StyleLink != "" {
			b.WriteString(`<link rel="stylesheet" href="` + html.EscapeString(head.StyleLink) + `"/>`)
		}
		for _, link := range head.ScriptLinks {
			b.WriteString(`<script src="` + html.EscapeString(link) + `"></script>`)
		}
		b.WriteString(`</head>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func sidebarComponent(sidebar Sidebar) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div id="sidebar">`)
		for _, section := range SplitSections(sidebar.Sections) {
			b.WriteString(`<div class="portal"><div class="portal-body">`)
			// Sections are pre-rendered markup supplied by the caller.
			b.WriteString(section)
			b.WriteString(`</div></div>`)
		}
		if len(sidebar.DocLinks) > 0 {
			b.WriteString(`<div class="portal"><div class="portal-body">`)
			if sidebar.DocHeading != "" {
				b.WriteString(`<h2>` + html.EscapeString(sidebar.DocHeading) + `</h2>`)
			}
			b.WriteString(`<ul class="doc-links">`)
			for _, link := range sidebar.DocLinks {
				b.WriteString(`<li><a href="` + html.EscapeString(link.URL) + `">` + html.EscapeString(link.Label) + `</a></li>`)
			}
			b.WriteString(`</ul></div></div>`)
		}
		b.WriteString(`</div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// SplitSections splits sidebar markup into portal chunks on delimiter lines
// containing only "----". Empty chunks are dropped.
func SplitSections(sections string) []string {
	if strings.TrimSpace(sections) == "" {
		return nil
	}
	var chunks []string
	var current []string
	flushChunk := func() {
		chunk := strings.TrimSpace(strings.Join(current, "\n"))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		current = current[:0]
	}
	for _, line := range strings.Split(sections, "\n") {
		if strings.TrimSpace(line) == "----" {
			flushChunk()
			continue
		}
		current = append(current, line)
	}
	flushChunk()
	return chunks
}
