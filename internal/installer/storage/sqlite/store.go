// Package sqlite provides the SQLite-backed wizard storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/lodestar/internal/installer/storage"
	"github.com/louisbranch/lodestar/internal/installer/storage/sqlite/migrations"
	sqlitemigrate "github.com/louisbranch/lodestar/internal/platform/storage/sqlitemigrate"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists wizard state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite wizard store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// OpenInMemory opens a throwaway in-memory store, used in tests.
func OpenInMemory() (*Store, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateWizard inserts one wizard run record.
func (s *Store) CreateWizard(ctx context.Context, wizard storage.Wizard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := strings.TrimSpace(wizard.ID)
	if id == "" {
		return fmt.Errorf("wizard id is required")
	}
	now := time.Now().UTC()
	createdAt := wizard.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := wizard.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO wizards (id, language, current_step, completed_at, created_at, updated_at)
VALUES (?, ?, ?, NULL, ?, ?)`,
		id, wizard.Language, wizard.CurrentStep, toMillis(createdAt), toMillis(updatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrActiveWizardExists
		}
		return fmt.Errorf("insert wizard: %w", err)
	}
	return nil
}

// GetWizard returns one wizard run by ID.
func (s *Store) GetWizard(ctx context.Context, id string) (storage.Wizard, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, language, current_step, completed_at, created_at, updated_at
FROM wizards WHERE id = ?`, strings.TrimSpace(id))
	return scanWizard(row)
}

// ActiveWizard returns the single unfinished run.
func (s *Store) ActiveWizard(ctx context.Context) (storage.Wizard, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, language, current_step, completed_at, created_at, updated_at
FROM wizards WHERE completed_at IS NULL`)
	return scanWizard(row)
}

// SetCurrentStep advances the recorded wizard position.
func (s *Store) SetCurrentStep(ctx context.Context, id, step string) error {
	return s.updateWizard(ctx, id, "current_step", step)
}

// SetLanguage records the language chosen on the welcome step.
func (s *Store) SetLanguage(ctx context.Context, id, lang string) error {
	return s.updateWizard(ctx, id, "language", lang)
}

// CompleteWizard marks the run finished.
func (s *Store) CompleteWizard(ctx context.Context, id string, at time.Time) error {
	if at.IsZero() {
		at = time.Now()
	}
	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE wizards SET completed_at = ?, updated_at = ? WHERE id = ?`,
		toMillis(at), toMillis(time.Now()), strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("complete wizard: %w", err)
	}
	return requireRow(result)
}

// PutAnswer upserts one submitted form field.
func (s *Store) PutAnswer(ctx context.Context, answer storage.Answer) error {
	wizardID := strings.TrimSpace(answer.WizardID)
	step := strings.TrimSpace(answer.Step)
	field := strings.TrimSpace(answer.Field)
	if wizardID == "" {
		return fmt.Errorf("wizard id is required")
	}
	if step == "" || field == "" {
		return fmt.Errorf("step and field are required")
	}
	updatedAt := answer.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO wizard_answers (wizard_id, step, field, value, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (wizard_id, step, field) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		wizardID, step, field, answer.Value, toMillis(updatedAt))
	if err != nil {
		return fmt.Errorf("upsert answer: %w", err)
	}
	return nil
}

// StepAnswers returns the field/value pairs recorded for one step.
func (s *Store) StepAnswers(ctx context.Context, wizardID, step string) (map[string]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT field, value FROM wizard_answers WHERE wizard_id = ? AND step = ?`,
		strings.TrimSpace(wizardID), strings.TrimSpace(step))
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	answers := make(map[string]string)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers[field] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}
	return answers, nil
}

func (s *Store) updateWizard(ctx context.Context, id, column, value string) error {
	result, err := s.sqlDB.ExecContext(ctx,
		fmt.Sprintf("UPDATE wizards SET %s = ?, updated_at = ? WHERE id = ?", column),
		value, toMillis(time.Now()), strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("update wizard %s: %w", column, err)
	}
	return requireRow(result)
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanWizard(row *sql.Row) (storage.Wizard, error) {
	var wizard storage.Wizard
	var completedAt sql.NullInt64
	var createdAt, updatedAt int64
	err := row.Scan(&wizard.ID, &wizard.Language, &wizard.CurrentStep, &completedAt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Wizard{}, storage.ErrNotFound
		}
		return storage.Wizard{}, fmt.Errorf("scan wizard: %w", err)
	}
	if completedAt.Valid {
		wizard.CompletedAt = fromMillis(completedAt.Int64)
	}
	wizard.CreatedAt = fromMillis(createdAt)
	wizard.UpdatedAt = fromMillis(updatedAt)
	return wizard, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	default:
		return false
	}
}
