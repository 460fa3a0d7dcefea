package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"poll-server/internal/storage"
)

const createSnapshotsTable = `
CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	data BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// SnapshotMedium keeps the snapshot blob in a single-row sqlite table.
type SnapshotMedium struct {
	db *sql.DB
}

func NewSnapshotMedium(db *sql.DB) *SnapshotMedium {
	return &SnapshotMedium{db: db}
}

func (m *SnapshotMedium) Init(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createSnapshotsTable); err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}
	return nil
}

func (m *SnapshotMedium) Name() string { return "sqlite" }

func (m *SnapshotMedium) Read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := m.db.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE id = 1`).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotExist
		}
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	return data, nil
}

func (m *SnapshotMedium) Write(ctx context.Context, data []byte) error {
	_, err := m.db.ExecContext(ctx, `
INSERT INTO snapshots (id, data, updated_at)
VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		data,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

var _ storage.Medium = (*SnapshotMedium)(nil)
