package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresStore persists profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed profile store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the profiles table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS profiles (
			email         TEXT PRIMARY KEY,
			name          TEXT NOT NULL DEFAULT '',
			id_number     TEXT NOT NULL DEFAULT '',
			country       TEXT NOT NULL DEFAULT '',
			extra         JSONB NOT NULL DEFAULT '{}',
			submitted_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	return err
}

func (s *PostgresStore) Put(ctx context.Context, p *Profile) error {
	extraJSON, err := json.Marshal(p.Extra)
	if err != nil {
		return fmt.Errorf("failed to marshal extra fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (email, name, id_number, country, extra, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			id_number = EXCLUDED.id_number,
			country = EXCLUDED.country,
			extra = EXCLUDED.extra,
			submitted_at = EXCLUDED.submitted_at
	`, p.Email, p.Name, p.IDNumber, p.Country, extraJSON, p.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to store profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, email string) (*Profile, error) {
	var p Profile
	var extraJSON []byte

	err := s.db.QueryRowContext(ctx, `
		SELECT email, name, id_number, country, extra, submitted_at
		FROM profiles
		WHERE email = $1
	`, email).Scan(&p.Email, &p.Name, &p.IDNumber, &p.Country, &extraJSON, &p.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if len(extraJSON) > 0 {
		_ = json.Unmarshal(extraJSON, &p.Extra)
	}
	return &p, nil
}

var _ Store = (*PostgresStore)(nil)
