package steps

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/louisbranch/lodestar/internal/installer/storage"
	"github.com/louisbranch/lodestar/internal/installer/templates"
)

// Connect collects the database settings and verifies them before moving on.
type Connect struct {
	probe func(path string) error
}

// NewConnect creates the connect step. probe verifies a database path; nil
// uses the real SQLite probe.
func NewConnect(probe func(path string) error) *Connect {
	if probe == nil {
		probe = sqliteProbe
	}
	return &Connect{probe: probe}
}

func sqliteProbe(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Ping()
}

func (s *Connect) Name() string {
	return StepConnect
}

func (s *Connect) Title(loc templates.Localizer) string {
	return templates.T(loc, "Connect to your database")
}

// Render shows the settings form, echoing previously saved answers.
func (s *Connect) Render(ctx context.Context, req *Request) error {
	values, err := req.Store.StepAnswers(ctx, req.Wizard.ID, StepConnect)
	if err != nil {
		return err
	}
	return appendMarkup(req, templates.ConnectForm(req.Loc, URL(StepConnect), values, ""))
}

// Submit verifies the settings. Failures re-render the form inline; success
// persists the answers and redirects onward.
func (s *Connect) Submit(ctx context.Context, req *Request) error {
	dbPath := strings.TrimSpace(req.Form.Get("db_path"))
	dbName := strings.TrimSpace(req.Form.Get("db_name"))
	values := map[string]string{"db_path": dbPath, "db_name": dbName}

	if dbPath == "" || dbName == "" {
		problem := templates.T(req.Loc, "Both database file and database name are required.")
		return appendMarkup(req, templates.ConnectForm(req.Loc, URL(StepConnect), values, problem))
	}
	if err := s.probe(dbPath); err != nil {
		problem := templates.T(req.Loc, "Could not open the database: %s", err.Error())
		return appendMarkup(req, templates.ConnectForm(req.Loc, URL(StepConnect), values, problem))
	}

	now := time.Now()
	for field, value := range values {
		answer := storage.Answer{
			WizardID:  req.Wizard.ID,
			Step:      StepConnect,
			Field:     field,
			Value:     value,
			UpdatedAt: now,
		}
		if err := req.Store.PutAnswer(ctx, answer); err != nil {
			return err
		}
	}
	return advance(ctx, req, StepAccount)
}
