package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/trustgate/trustgate/internal/risk"
)

// PostgresStore persists audit entries in PostgreSQL. Rows are insert-only;
// there is no update or delete path.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed audit store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the audit_entries table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_entries (
			seq           BIGSERIAL PRIMARY KEY,
			id            VARCHAR(36) NOT NULL,
			email         TEXT NOT NULL,
			ts            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			risk_score    INT NOT NULL CHECK (risk_score >= 0 AND risk_score <= 100),
			trust_index   INT NOT NULL,
			risk_category VARCHAR(10) NOT NULL CHECK (risk_category IN ('LOW', 'MEDIUM', 'HIGH')),
			decision      TEXT NOT NULL,
			signals       JSONB NOT NULL DEFAULT '[]'
		);

		CREATE INDEX IF NOT EXISTS idx_audit_entries_email
			ON audit_entries (email, seq DESC);
	`)
	return err
}

func (s *PostgresStore) Append(ctx context.Context, e *Entry) error {
	signalsJSON, err := json.Marshal(e.Signals)
	if err != nil {
		return fmt.Errorf("failed to marshal signals: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (id, email, ts, risk_score, trust_index, risk_category, decision, signals)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.Email, e.Timestamp, e.Score, e.TrustIndex, string(e.Tier), string(e.Decision), signalsJSON)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, ts, risk_score, trust_index, risk_category, decision, signals
		FROM audit_entries
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Entry
	for rows.Next() {
		var e Entry
		var ts time.Time
		var tier, decision string
		var signalsJSON []byte

		if err := rows.Scan(&e.ID, &e.Email, &ts, &e.Score, &e.TrustIndex, &tier, &decision, &signalsJSON); err != nil {
			continue
		}
		e.Timestamp = ts
		e.Tier = risk.Tier(tier)
		e.Decision = risk.Decision(decision)
		_ = json.Unmarshal(signalsJSON, &e.Signals)
		result = append(result, &e)
	}
	return result, rows.Err()
}

var _ Store = (*PostgresStore)(nil)
