package installer

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	"github.com/louisbranch/lodestar/internal/installer/envelope"
	"github.com/louisbranch/lodestar/internal/installer/frame"
	"github.com/louisbranch/lodestar/internal/installer/session"
	"github.com/louisbranch/lodestar/internal/installer/static"
	"github.com/louisbranch/lodestar/internal/installer/steps"
	"github.com/louisbranch/lodestar/internal/installer/storage"
	"github.com/louisbranch/lodestar/internal/installer/templates"
	"github.com/louisbranch/lodestar/internal/platform/assets"
	"github.com/louisbranch/lodestar/internal/platform/branding"
	apperrors "github.com/louisbranch/lodestar/internal/platform/errors"
	"github.com/louisbranch/lodestar/internal/platform/i18n"
)

// handler serves the wizard routes.
type handler struct {
	store      storage.WizardStore
	sessions   *session.Manager
	registry   *steps.Registry
	assets     assets.Resolver
	sessionTTL time.Duration
	tracer     trace.Tracer
}

// newHandler wires the wizard routes onto a mux.
func newHandler(store storage.WizardStore, sessions *session.Manager, registry *steps.Registry, resolver assets.Resolver, sessionTTL time.Duration) http.Handler {
	h := &handler{
		store:      store,
		sessions:   sessions,
		registry:   registry,
		assets:     resolver,
		sessionTTL: sessionTTL,
		tracer:     otel.Tracer("lodestar/installer"),
	}

	mux := http.NewServeMux()
	mux.Handle(resolver.BasePath+"/", http.StripPrefix(resolver.BasePath+"/", http.FileServer(http.FS(static.FS))))
	mux.HandleFunc("/step/", h.step)
	mux.HandleFunc("/", h.root)
	return h.withTracing(mux)
}

// withTracing opens a span per request.
func (h *handler) withTracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := h.tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// root sends the browser to the wizard's current step.
func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	wizard, err := h.resolveWizard(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	http.Redirect(w, r, steps.URL(wizard.CurrentStep), http.StatusSeeOther)
}

// step dispatches one wizard page render or form submission.
func (h *handler) step(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/step/")
	step, ok := h.registry.Get(name)
	if !ok {
		h.fail(w, apperrors.WithMetadata(apperrors.CodeStepUnknown,
			"unknown wizard step", map[string]string{"step": name}))
		return
	}

	wizard, err := h.resolveWizard(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}

	tag := h.resolveLanguage(w, r, wizard)
	loc := i18n.Printer(tag)

	head := frame.Head{
		Lang:        tag.String(),
		Dir:         string(i18n.DirectionForTag(tag)),
		Title:       step.Title(loc) + " - " + branding.AppName,
		StyleLink:   h.assets.StyleLink(),
		ScriptLinks: h.assets.ScriptLinks(),
	}
	sidebar := frame.Sidebar{
		Sections:   templates.SidebarSections(loc),
		DocHeading: templates.DocHeading(loc),
		DocLinks:   templates.DocLinks(loc),
	}
	buffer := envelope.New(envelope.NewHTTPSink(w), frame.New(head, sidebar))

	req := &steps.Request{
		Output: buffer,
		Wizard: wizard,
		Store:  h.store,
		Loc:    loc,
	}

	// Steps beyond the wizard's recorded position are bounced back; earlier
	// steps stay reachable so answers can be revised.
	if stepIndex(name) > stepIndex(wizard.CurrentStep) {
		if err := buffer.RequestRedirect(steps.URL(wizard.CurrentStep)); err != nil {
			h.fail(w, err)
			return
		}
		if err := buffer.Finalize(); err != nil {
			log.Printf("finalize out-of-order redirect: %v", err)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		err = step.Render(r.Context(), req)
	case http.MethodPost:
		if parseErr := r.ParseForm(); parseErr != nil {
			h.fail(w, apperrors.Wrap(apperrors.CodeStepInvalidInput, "parse form", parseErr))
			return
		}
		req.Form = r.PostForm
		err = step.Submit(r.Context(), req)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		if !buffer.Controller().Committed() {
			h.fail(w, err)
			return
		}
		// Headers are on the wire; the page is already partially delivered.
		log.Printf("step %s failed after commit: %v", name, err)
		return
	}

	if err := buffer.Finalize(); err != nil {
		log.Printf("finalize step %s: %v", name, err)
	}
}

// resolveWizard binds the request to a wizard run, creating one on first
// contact. A valid session cookie pins the browser to its run; without one
// the single active run is resumed, since the installer serves one operator.
func (h *handler) resolveWizard(w http.ResponseWriter, r *http.Request) (storage.Wizard, error) {
	ctx := r.Context()

	if token, err := session.FromRequest(r); err == nil {
		wizardID, err := h.sessions.Verify(token)
		if err == nil {
			wizard, err := h.store.GetWizard(ctx, wizardID)
			if err == nil {
				return wizard, nil
			}
			if !errors.Is(err, storage.ErrNotFound) {
				return storage.Wizard{}, err
			}
		}
		// Expired or stale token; fall through and rebind.
	}

	wizard, err := h.store.ActiveWizard(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		wizard, err = h.createWizard(ctx, r)
	}
	if err != nil {
		return storage.Wizard{}, err
	}

	token, err := h.sessions.Issue(wizard.ID)
	if err != nil {
		return storage.Wizard{}, fmt.Errorf("issue session token: %w", err)
	}
	session.SetCookie(w, token, h.sessionTTL)
	return wizard, nil
}

// createWizard starts a new run with the request's preferred language.
func (h *handler) createWizard(ctx context.Context, r *http.Request) (storage.Wizard, error) {
	tag, _ := i18n.ResolveTag(r)
	now := time.Now()
	wizard := storage.Wizard{
		ID:          newWizardID(),
		Language:    tag.String(),
		CurrentStep: steps.StepWelcome,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.store.CreateWizard(ctx, wizard); err != nil {
		if errors.Is(err, storage.ErrActiveWizardExists) {
			// Lost the race against a concurrent first request.
			return h.store.ActiveWizard(ctx)
		}
		return storage.Wizard{}, err
	}
	return wizard, nil
}

// resolveLanguage prefers the wizard's saved choice over request hints.
func (h *handler) resolveLanguage(w http.ResponseWriter, r *http.Request, wizard storage.Wizard) language.Tag {
	if tag, ok := i18n.ParseTag(wizard.Language); ok {
		return tag
	}
	tag, persist := i18n.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	return tag
}

// fail reports an error before any envelope output has been produced.
func (h *handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		status = appErr.Code.HTTPStatus()
	}
	log.Printf("installer request failed: %v", err)
	http.Error(w, http.StatusText(status), status)
}

func stepIndex(name string) int {
	for i, step := range steps.Sequence {
		if step == name {
			return i
		}
	}
	return -1
}

// newWizardID returns a random 128-bit hex identifier.
func newWizardID() string {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(fmt.Sprintf("read random wizard id: %v", err))
	}
	return hex.EncodeToString(raw[:])
}
