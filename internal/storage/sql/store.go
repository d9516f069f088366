package sql

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/storage"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// isUniqueViolation checks if an error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLite
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	// PostgreSQL
	if strings.Contains(errStr, "duplicate key value violates unique constraint") {
		return true
	}
	return false
}

// wrapUniqueError converts UNIQUE violations to domain.ErrAlreadyExists.
func wrapUniqueError(err error) error {
	if isUniqueViolation(err) {
		return domain.ErrAlreadyExists
	}
	return err
}

// Store implements the storage.Storage interface using SQL.
type Store struct {
	db     *sqlx.DB
	driver string
}

// Ensure Store implements storage.Storage.
var _ storage.Storage = (*Store)(nil)

// New creates a new SQL store and applies pending migrations.
func New(driver, dsn string) (*Store, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if driver == "sqlite3" {
		// one connection keeps ":memory:" databases shared across queries
		db.SetMaxOpenConns(1)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type sessionRow struct {
	ID            string    `db:"id"`
	SelectionJSON string    `db:"selection_json"`
	ResultJSON    *string   `db:"result_json"`
	LastError     string    `db:"last_error"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func toRow(session *domain.Session) (*sessionRow, error) {
	selJSON, err := json.Marshal(session.Selection)
	if err != nil {
		return nil, fmt.Errorf("encoding selection: %w", err)
	}
	row := &sessionRow{
		ID:            session.ID,
		SelectionJSON: string(selJSON),
		LastError:     session.LastError,
		CreatedAt:     session.CreatedAt.UTC(),
		UpdatedAt:     session.UpdatedAt.UTC(),
	}
	if session.Result != nil {
		resJSON, err := json.Marshal(session.Result)
		if err != nil {
			return nil, fmt.Errorf("encoding result: %w", err)
		}
		s := string(resJSON)
		row.ResultJSON = &s
	}
	return row, nil
}

func rowToSession(row *sessionRow) (*domain.Session, error) {
	session := &domain.Session{
		ID:        row.ID,
		LastError: row.LastError,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.SelectionJSON), &session.Selection); err != nil {
		return nil, fmt.Errorf("decoding selection for session %s: %w", row.ID, err)
	}
	if row.ResultJSON != nil && *row.ResultJSON != "" {
		var result domain.Result
		if err := json.Unmarshal([]byte(*row.ResultJSON), &result); err != nil {
			return nil, fmt.Errorf("decoding result for session %s: %w", row.ID, err)
		}
		session.Result = &result
	}
	return session, nil
}

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	row, err := toRow(session)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, selection_json, result_json, last_error, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		row.ID, row.SelectionJSON, row.ResultJSON, row.LastError, row.CreatedAt, row.UpdatedAt)
	return wrapUniqueError(err)
}

func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row,
		`SELECT id, selection_json, result_json, last_error, created_at, updated_at
		 FROM sessions WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rowToSession(&row)
}

func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	row, err := toRow(session)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET selection_json = $1, result_json = $2, last_error = $3, updated_at = $4
		 WHERE id = $5`,
		row.SelectionJSON, row.ResultJSON, row.LastError, row.UpdatedAt, row.ID)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, before time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	return int(rows), err
}

func (s *Store) CountSessions(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sessions`)
	return count, err
}
