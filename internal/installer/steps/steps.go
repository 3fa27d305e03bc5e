// Package steps implements the wizard step sequence of the installer.
//
// Steps produce pre-rendered markup and hand it to the response envelope;
// they never touch the transport directly.
package steps

import (
	"context"
	"net/url"

	"github.com/a-h/templ"
	"github.com/louisbranch/lodestar/internal/installer/envelope"
	"github.com/louisbranch/lodestar/internal/installer/storage"
	"github.com/louisbranch/lodestar/internal/installer/templates"
)

// Step names, in wizard order.
const (
	StepWelcome     = "welcome"
	StepEnvironment = "environment"
	StepConnect     = "connect"
	StepAccount     = "account"
	StepComplete    = "complete"
)

// Sequence is the canonical wizard order.
var Sequence = []string{StepWelcome, StepEnvironment, StepConnect, StepAccount, StepComplete}

// URL returns the route for a step.
func URL(name string) string {
	return "/step/" + name
}

// Next returns the step following name in the sequence.
func Next(name string) (string, bool) {
	for i, step := range Sequence {
		if step == name && i+1 < len(Sequence) {
			return Sequence[i+1], true
		}
	}
	return "", false
}

// Request carries everything one step invocation needs.
type Request struct {
	// Output is the response buffer for this request.
	Output *envelope.Buffer
	// Wizard is the active run.
	Wizard storage.Wizard
	// Store persists progress and answers.
	Store storage.WizardStore
	// Loc localizes step text.
	Loc templates.Localizer
	// Form holds submitted values on POST.
	Form url.Values
}

// Step renders one wizard page and handles its form submission.
type Step interface {
	Name() string
	Title(loc templates.Localizer) string
	Render(ctx context.Context, req *Request) error
	Submit(ctx context.Context, req *Request) error
}

// Registry resolves steps by name.
type Registry struct {
	byName map[string]Step
}

// NewRegistry indexes the given steps.
func NewRegistry(steps ...Step) *Registry {
	byName := make(map[string]Step, len(steps))
	for _, step := range steps {
		byName[step.Name()] = step
	}
	return &Registry{byName: byName}
}

// Get returns the step registered under name.
func (r *Registry) Get(name string) (Step, bool) {
	step, ok := r.byName[name]
	return step, ok
}

// advance records the wizard position and redirects to the next step.
func advance(ctx context.Context, req *Request, next string) error {
	if err := req.Store.SetCurrentStep(ctx, req.Wizard.ID, next); err != nil {
		return err
	}
	return req.Output.RequestRedirect(URL(next))
}

// appendMarkup renders a component and buffers it without flushing.
func appendMarkup(req *Request, component templ.Component) error {
	markup, err := templates.RenderToString(component)
	if err != nil {
		return err
	}
	req.Output.AppendNoFlush(markup)
	return nil
}

// streamMarkup renders a component and flushes it immediately, for steps
// that deliver progress feedback while they run.
func streamMarkup(req *Request, component templ.Component) error {
	markup, err := templates.RenderToString(component)
	if err != nil {
		return err
	}
	return req.Output.Append(markup)
}
