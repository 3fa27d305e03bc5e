package steps

import (
	"context"
	"strings"

	"github.com/louisbranch/lodestar/internal/installer/templates"
	apperrors "github.com/louisbranch/lodestar/internal/platform/errors"
	"github.com/louisbranch/lodestar/internal/platform/i18n"
)

// Welcome is the language selection step.
type Welcome struct{}

// NewWelcome creates the welcome step.
func NewWelcome() *Welcome {
	return &Welcome{}
}

func (s *Welcome) Name() string {
	return StepWelcome
}

func (s *Welcome) Title(loc templates.Localizer) string {
	return templates.T(loc, "Welcome to Lodestar")
}

// Render shows the language picker with the current choice preselected.
func (s *Welcome) Render(ctx context.Context, req *Request) error {
	options := make([]templates.LanguageChoice, 0, len(i18n.SupportedTags()))
	for _, tag := range i18n.SupportedTags() {
		options = append(options, templates.LanguageChoice{
			Tag:    tag.String(),
			Label:  tag.String(),
			Active: tag.String() == req.Wizard.Language,
		})
	}
	return appendMarkup(req, templates.WelcomeForm(req.Loc, URL(StepWelcome), options))
}

// Submit persists the language choice and advances to the environment step.
func (s *Welcome) Submit(ctx context.Context, req *Request) error {
	value := strings.TrimSpace(req.Form.Get("language"))
	tag, ok := i18n.ParseTag(value)
	if !ok {
		return apperrors.WithMetadata(apperrors.CodeStepInvalidInput,
			"unsupported language", map[string]string{"language": value})
	}
	if err := req.Store.SetLanguage(ctx, req.Wizard.ID, tag.String()); err != nil {
		return err
	}
	return advance(ctx, req, StepEnvironment)
}
