package cases

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/trustgate/trustgate/internal/risk"
)

// PostgresStore persists escalated cases in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed case store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the escalated_cases table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS escalated_cases (
			email          TEXT PRIMARY KEY,
			case_id        VARCHAR(36) NOT NULL,
			assessment     JSONB NOT NULL,
			review_status  TEXT NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_escalated_cases_created
			ON escalated_cases (created_at DESC);
	`)
	return err
}

func (s *PostgresStore) Upsert(ctx context.Context, c *Case) error {
	assessmentJSON, err := json.Marshal(c.Assessment)
	if err != nil {
		return fmt.Errorf("failed to marshal assessment: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO escalated_cases (email, case_id, assessment, review_status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			case_id = EXCLUDED.case_id,
			assessment = EXCLUDED.assessment,
			review_status = EXCLUDED.review_status,
			created_at = EXCLUDED.created_at
	`, c.Email, c.ID, assessmentJSON, c.ReviewStatus, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert case: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, email string) (*Case, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT email, case_id, assessment, review_status, created_at
		FROM escalated_cases
		WHERE email = $1
	`, email)
	return scanCase(row.Scan)
}

func (s *PostgresStore) List(ctx context.Context) (map[string]*Case, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT email, case_id, assessment, review_status, created_at
		FROM escalated_cases
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snapshot := make(map[string]*Case)
	for rows.Next() {
		c, err := scanCase(rows.Scan)
		if err != nil {
			return nil, err
		}
		snapshot[c.Email] = c
	}
	return snapshot, rows.Err()
}

func (s *PostgresStore) SetReviewStatus(ctx context.Context, email, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE escalated_cases SET review_status = $2 WHERE email = $1
	`, email, status)
	if err != nil {
		return fmt.Errorf("failed to update review status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCase(scan func(dest ...any) error) (*Case, error) {
	var c Case
	var assessmentJSON []byte
	var createdAt time.Time

	err := scan(&c.Email, &c.ID, &assessmentJSON, &c.ReviewStatus, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan case: %w", err)
	}

	c.CreatedAt = createdAt
	var a risk.Assessment
	if err := json.Unmarshal(assessmentJSON, &a); err == nil {
		c.Assessment = a
	}
	return &c, nil
}

var _ Store = (*PostgresStore)(nil)
