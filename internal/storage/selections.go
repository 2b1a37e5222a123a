package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/subbaan/notes/internal/note"
)

const selectionsSchemaSQL = `
CREATE TABLE IF NOT EXISTS selections (
	note_id    TEXT PRIMARY KEY,
	start      INTEGER NOT NULL DEFAULT 0,
	end        INTEGER NOT NULL DEFAULT 0,
	direction  TEXT NOT NULL DEFAULT 'LTR',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SelectionDB stores one selection per note.
type SelectionDB struct {
	conn *sql.DB
}

// OpenSelections opens (or creates) the database at path.
func OpenSelections(path string) (*SelectionDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open selections db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping selections db: %w", err)
	}
	if _, err := conn.Exec(selectionsSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply selections schema: %w", err)
	}
	return &SelectionDB{conn: conn}, nil
}

// Close closes the database.
func (db *SelectionDB) Close() error {
	return db.conn.Close()
}

// Load returns every stored selection.
func (db *SelectionDB) Load(ctx context.Context) (map[note.ID]note.Selection, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT note_id, start, end, direction FROM selections`)
	if err != nil {
		return nil, fmt.Errorf("storage: query selections: %w", err)
	}
	defer rows.Close()

	out := map[note.ID]note.Selection{}
	for rows.Next() {
		var (
			id  string
			sel note.Selection
			dir string
		)
		if err := rows.Scan(&id, &sel.Start, &sel.End, &dir); err != nil {
			return nil, fmt.Errorf("storage: scan selection: %w", err)
		}
		sel.Direction = note.ParseDirection(dir)
		out[note.ID(id)] = sel
	}
	return out, rows.Err()
}

// Save upserts sels in a single transaction.
func (db *SelectionDB) Save(ctx context.Context, sels map[note.ID]note.Selection) error {
	if len(sels) == 0 {
		return nil
	}
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO selections (note_id, start, end, direction, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(note_id) DO UPDATE SET
			start      = excluded.start,
			end        = excluded.end,
			direction  = excluded.direction,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("storage: prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for id, sel := range sels {
		if _, err := stmt.ExecContext(ctx, string(id), sel.Start, sel.End, sel.Direction.String(), now); err != nil {
			return fmt.Errorf("storage: upsert selection %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// Delete removes the selection of id.
func (db *SelectionDB) Delete(ctx context.Context, id note.ID) error {
	if _, err := db.conn.ExecContext(ctx, `DELETE FROM selections WHERE note_id = ?`, string(id)); err != nil {
		return fmt.Errorf("storage: delete selection %s: %w", id, err)
	}
	return nil
}
