package steps

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/louisbranch/lodestar/internal/installer/templates"
)

// Check is one environment probe.
type Check struct {
	Label string
	Probe func() (ok bool, detail string)
}

// Environment runs environment checks and streams each result line as its
// own network flush, so slow probes still show progress in the browser.
type Environment struct {
	checks []Check
}

// NewEnvironment creates the environment step with the given checks.
func NewEnvironment(checks []Check) *Environment {
	return &Environment{checks: checks}
}

// DefaultChecks probes the runtime and the data directory.
func DefaultChecks(dataDir string) []Check {
	return []Check{
		{
			Label: "Go runtime",
			Probe: func() (bool, string) {
				return true, runtime.Version()
			},
		},
		{
			Label: "Temporary directory writable",
			Probe: func() (bool, string) {
				f, err := os.CreateTemp("", "lodestar-install-*")
				if err != nil {
					return false, err.Error()
				}
				name := f.Name()
				_ = f.Close()
				_ = os.Remove(name)
				return true, ""
			},
		},
		{
			Label: "Data directory writable",
			Probe: func() (bool, string) {
				if err := os.MkdirAll(dataDir, 0o755); err != nil {
					return false, err.Error()
				}
				probe := filepath.Join(dataDir, ".write-probe")
				if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
					return false, err.Error()
				}
				_ = os.Remove(probe)
				return true, ""
			},
		},
	}
}

func (s *Environment) Name() string {
	return StepEnvironment
}

func (s *Environment) Title(loc templates.Localizer) string {
	return templates.T(loc, "Environment checks")
}

// Render streams check results and, when everything passes, records the
// wizard as ready for the connect step.
func (s *Environment) Render(ctx context.Context, req *Request) error {
	if err := streamMarkup(req, templates.ChecksOpen(req.Loc)); err != nil {
		return err
	}
	passed := true
	for _, check := range s.checks {
		ok, detail := check.Probe()
		if !ok {
			passed = false
		}
		if err := streamMarkup(req, templates.CheckLine(req.Loc, check.Label, ok, detail)); err != nil {
			return err
		}
	}
	if err := streamMarkup(req, templates.ChecksClose(req.Loc, passed, URL(StepConnect))); err != nil {
		return err
	}
	if passed {
		return req.Store.SetCurrentStep(ctx, req.Wizard.ID, StepConnect)
	}
	return nil
}

// Submit re-runs the checks via the render path.
func (s *Environment) Submit(ctx context.Context, req *Request) error {
	return req.Output.RequestRedirect(URL(StepEnvironment))
}
