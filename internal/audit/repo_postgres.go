package audit

import (
	"context"
	"database/sql"

	"medicare-assistant/pkg/utils"
)

// PostgresRepo persists audit events through database/sql (pgx stdlib driver).
//
// Expected schema:
//
//	CREATE TABLE call_audit_events (
//	    id         UUID PRIMARY KEY,
//	    type       TEXT NOT NULL,
//	    call_id    TEXT NOT NULL DEFAULT '',
//	    phone      TEXT NOT NULL DEFAULT '',
//	    status     TEXT NOT NULL DEFAULT '',
//	    message    TEXT NOT NULL DEFAULT '',
//	    metadata   TEXT NOT NULL DEFAULT '',
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO call_audit_events (id, type, call_id, phone, status, message, metadata, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.ID, string(e.Type), e.CallID, e.Phone, e.Status, e.Message, e.Metadata, e.CreatedAt,
		)
		return err
	})
}

func (r *PostgresRepo) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, call_id, phone, status, message, metadata, created_at
		FROM call_audit_events
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var typ string
		if err := rows.Scan(&e.ID, &typ, &e.CallID, &e.Phone, &e.Status, &e.Message, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Type = EventType(typ)
		out = append(out, e)
	}
	return out, rows.Err()
}
