// Package templates renders wizard step markup for the installer.
//
// Components return pre-rendered strings through RenderToString; the
// response envelope treats them as opaque fragments.
package templates

import (
	"context"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// LanguageChoice is one selectable language on the welcome step.
type LanguageChoice struct {
	Tag    string
	Label  string
	Active bool
}

// RenderToString renders a component into a markup fragment.
func RenderToString(component templ.Component) (string, error) {
	var b strings.Builder
	if err := component.Render(context.Background(), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WelcomeForm renders the language selection form.
func WelcomeForm(loc Localizer, action string, options []LanguageChoice) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<p>` + html.EscapeString(T(loc, "Welcome! This wizard will guide you through the installation.")) + `</p>`)
		b.WriteString(`<form method="POST" action="` + html.EscapeString(action) + `">`)
		b.WriteString(`<label for="language">` + html.EscapeString(T(loc, "Your language:")) + `</label>`)
		b.WriteString(`<select id="language" name="language">`)
		for _, option := range options {
			selected := ""
			if option.Active {
				selected = ` selected`
			}
			b.WriteString(`<option value="` + html.EscapeString(option.Tag) + `"` + selected + `>` +
				html.EscapeString(option.Label) + `</option>`)
		}
		b.WriteString(`</select>`)
		b.WriteString(`<button type="submit">` + html.EscapeString(T(loc, "Continue")) + `</button>`)
		b.WriteString(`</form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// CheckLine renders one environment check result.
func CheckLine(loc Localizer, label string, ok bool, detail string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		status := `<span class="check-ok">` + html.EscapeString(T(loc, "ok")) + `</span>`
		if !ok {
			status = `<span class="check-fail">` + html.EscapeString(T(loc, "failed")) + `</span>`
		}
		markup := `<li class="check">` + html.EscapeString(label) + `: ` + status
		if detail != "" {
			markup += ` <small>` + html.EscapeString(detail) + `</small>`
		}
		markup += `</li>`
		_, err := io.WriteString(w, markup)
		return err
	})
}

// ChecksOpen opens the environment check list.
func ChecksOpen(loc Localizer) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w,
			`<p>`+html.EscapeString(T(loc, "Checking your environment..."))+`</p><ul class="checks">`)
		return err
	})
}

// ChecksClose closes the environment check list and links onward.
func ChecksClose(loc Localizer, passed bool, nextURL string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`</ul>`)
		if passed {
			b.WriteString(`<p><a class="button" href="` + html.EscapeString(nextURL) + `">` +
				html.EscapeString(T(loc, "Continue")) + `</a></p>`)
		} else {
			b.WriteString(`<p class="error">` +
				html.EscapeString(T(loc, "Fix the failed checks and reload this page.")) + `</p>`)
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// ConnectForm renders the database settings form.
func ConnectForm(loc Localizer, action string, values map[string]string, problem string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		if problem != "" {
			b.WriteString(`<p class="error">` + html.EscapeString(problem) + `</p>`)
		}
		b.WriteString(`<form method="POST" action="` + html.EscapeString(action) + `">`)
		b.WriteString(field(loc, "Database file:", "db_path", values["db_path"]))
		b.WriteString(field(loc, "Database name:", "db_name", values["db_name"]))
		b.WriteString(`<button type="submit">` + html.EscapeString(T(loc, "Continue")) + `</button>`)
		b.WriteString(`</form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// AccountForm renders the administrator account form.
func AccountForm(loc Localizer, action string, values map[string]string, problem string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		if problem != "" {
			b.WriteString(`<p class="error">` + html.EscapeString(problem) + `</p>`)
		}
		b.WriteString(`<form method="POST" action="` + html.EscapeString(action) + `">`)
		b.WriteString(field(loc, "Administrator name:", "admin_name", values["admin_name"]))
		b.WriteString(passwordField(loc, "Password:", "admin_pass"))
		b.WriteString(`<button type="submit">` + html.EscapeString(T(loc, "Continue")) + `</button>`)
		b.WriteString(`</form>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// CompleteNotice renders the installation-finished confirmation.
func CompleteNotice(loc Localizer) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w,
			`<p class="complete">`+
				html.EscapeString(T(loc, "Installation complete. You can now start using Lodestar."))+
				`</p>`)
		return err
	})
}

func field(loc Localizer, labelKey, name, value string) string {
	return `<label for="` + name + `">` + html.EscapeString(T(loc, labelKey)) + `</label>` +
		`<input type="text" id="` + name + `" name="` + name + `" value="` + html.EscapeString(value) + `"/>`
}

func passwordField(loc Localizer, labelKey, name string) string {
	return `<label for="` + name + `">` + html.EscapeString(T(loc, labelKey)) + `</label>` +
		`<input type="password" id="` + name + `" name="` + name + `"/>`
}
