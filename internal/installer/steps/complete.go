package steps

import (
	"context"
	"time"

	"github.com/louisbranch/lodestar/internal/installer/templates"
)

// Complete is the confirmation surface shown when the run finishes. It uses
// the short header so post-install callbacks can embed it.
type Complete struct{}

// NewComplete creates the complete step.
func NewComplete() *Complete {
	return &Complete{}
}

func (s *Complete) Name() string {
	return StepComplete
}

func (s *Complete) Title(loc templates.Localizer) string {
	return templates.T(loc, "Installation complete")
}

// Render marks the run finished and shows the embeddable confirmation.
func (s *Complete) Render(ctx context.Context, req *Request) error {
	controller := req.Output.Controller()
	if err := controller.SetShortHeader(true); err != nil {
		return err
	}
	if err := controller.SetAllowFrames(true); err != nil {
		return err
	}
	if !req.Wizard.Completed() {
		if err := req.Store.CompleteWizard(ctx, req.Wizard.ID, time.Now()); err != nil {
			return err
		}
	}
	return appendMarkup(req, templates.CompleteNotice(req.Loc))
}

// Submit has no form; it lands back on the confirmation.
func (s *Complete) Submit(ctx context.Context, req *Request) error {
	return req.Output.RequestRedirect(URL(StepComplete))
}
