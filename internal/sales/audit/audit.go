// Package audit appends sales mutations to a PostgreSQL audit table.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Entry is one audited mutation.
type Entry struct {
	ID        string
	Operation string
	SalesID   string
	Details   map[string]interface{}
	CreatedAt time.Time
}

// Log records mutation entries.
type Log interface {
	Record(ctx context.Context, entry Entry) (string, error)
}

type PostgresLog struct {
	db     *sql.DB
	table  string
	insert string
	now    func() time.Time
}

func NewPostgresLog(db *sql.DB, table string) *PostgresLog {
	quoted := pq.QuoteIdentifier(table)
	return &PostgresLog{
		db:    db,
		table: quoted,
		insert: fmt.Sprintf(`
		INSERT INTO %s (id, operation, sales_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`, quoted),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureSchema creates the audit table when it does not exist.
func (l *PostgresLog) EnsureSchema(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id          UUID PRIMARY KEY,
			operation   TEXT NOT NULL,
			sales_id    TEXT NOT NULL,
			details     JSONB NOT NULL DEFAULT '{}',
			created_at  TIMESTAMPTZ NOT NULL
		)`, l.table))
	if err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

// Record inserts entry and returns its id. Missing id and time are assigned.
func (l *PostgresLog) Record(ctx context.Context, entry Entry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = l.now()
	}

	details := []byte("{}")
	if len(entry.Details) > 0 {
		b, err := json.Marshal(entry.Details)
		if err != nil {
			return "", fmt.Errorf("encode audit details: %w", err)
		}
		details = b
	}

	if _, err := l.db.ExecContext(ctx, l.insert,
		entry.ID,
		entry.Operation,
		entry.SalesID,
		details,
		entry.CreatedAt,
	); err != nil {
		return "", fmt.Errorf("insert audit entry: %w", err)
	}
	return entry.ID, nil
}
