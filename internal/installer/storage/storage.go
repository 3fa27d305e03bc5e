// Package storage defines persistence contracts for wizard progress.
package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/lodestar/internal/platform/errors"
)

var (
	// ErrNotFound indicates a requested wizard record is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")
	// ErrActiveWizardExists indicates an unfinished wizard run already exists.
	ErrActiveWizardExists = apperrors.New(apperrors.CodeActiveWizardExists, "active wizard already exists")
)

// Wizard stores the state of one installer run.
type Wizard struct {
	ID          string
	Language    string
	CurrentStep string
	// CompletedAt is zero until the run finishes.
	CompletedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Completed reports whether the run has finished.
func (w Wizard) Completed() bool {
	return !w.CompletedAt.IsZero()
}

// Answer stores one submitted form field for a wizard step.
type Answer struct {
	WizardID  string
	Step      string
	Field     string
	Value     string
	UpdatedAt time.Time
}

// WizardStore persists wizard runs and their step answers.
type WizardStore interface {
	CreateWizard(ctx context.Context, wizard Wizard) error
	GetWizard(ctx context.Context, id string) (Wizard, error)
	// ActiveWizard returns the single unfinished run, or ErrNotFound.
	ActiveWizard(ctx context.Context) (Wizard, error)
	SetCurrentStep(ctx context.Context, id, step string) error
	SetLanguage(ctx context.Context, id, lang string) error
	CompleteWizard(ctx context.Context, id string, at time.Time) error

	PutAnswer(ctx context.Context, answer Answer) error
	// StepAnswers returns the field/value pairs recorded for one step.
	StepAnswers(ctx context.Context, wizardID, step string) (map[string]string, error)

	Close() error
}
