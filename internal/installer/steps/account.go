package steps

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/louisbranch/lodestar/internal/installer/storage"
	"github.com/louisbranch/lodestar/internal/installer/templates"
)

const minPasswordLength = 8

// Account collects the administrator account.
type Account struct{}

// NewAccount creates the account step.
func NewAccount() *Account {
	return &Account{}
}

func (s *Account) Name() string {
	return StepAccount
}

func (s *Account) Title(loc templates.Localizer) string {
	return templates.T(loc, "Create the administrator account")
}

// Render shows the account form with the saved name, never the password.
func (s *Account) Render(ctx context.Context, req *Request) error {
	saved, err := req.Store.StepAnswers(ctx, req.Wizard.ID, StepAccount)
	if err != nil {
		return err
	}
	values := map[string]string{"admin_name": saved["admin_name"]}
	return appendMarkup(req, templates.AccountForm(req.Loc, URL(StepAccount), values, ""))
}

// Submit validates the account and stores the name plus a password digest.
func (s *Account) Submit(ctx context.Context, req *Request) error {
	name := strings.TrimSpace(req.Form.Get("admin_name"))
	password := req.Form.Get("admin_pass")
	values := map[string]string{"admin_name": name}

	if name == "" {
		problem := templates.T(req.Loc, "An administrator name is required.")
		return appendMarkup(req, templates.AccountForm(req.Loc, URL(StepAccount), values, problem))
	}
	if len(password) < minPasswordLength {
		problem := templates.T(req.Loc, "The password must be at least %d characters.", minPasswordLength)
		return appendMarkup(req, templates.AccountForm(req.Loc, URL(StepAccount), values, problem))
	}

	digest := sha256.Sum256([]byte(password))
	now := time.Now()
	answers := []storage.Answer{
		{WizardID: req.Wizard.ID, Step: StepAccount, Field: "admin_name", Value: name, UpdatedAt: now},
		{WizardID: req.Wizard.ID, Step: StepAccount, Field: "admin_pass_hash", Value: hex.EncodeToString(digest[:]), UpdatedAt: now},
	}
	for _, answer := range answers {
		if err := req.Store.PutAnswer(ctx, answer); err != nil {
			return err
		}
	}
	return advance(ctx, req, StepComplete)
}
