// Package sqlite provides a SQLite-backed history driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/pilotlight/pkg/chat"
	"github.com/papercomputeco/pilotlight/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	name       TEXT PRIMARY KEY,
	updated_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS turns (
	conversation TEXT    NOT NULL REFERENCES conversations(name) ON DELETE CASCADE,
	seq          INTEGER NOT NULL,
	id           TEXT    NOT NULL,
	role         TEXT    NOT NULL,
	content      TEXT    NOT NULL,
	created_at   DATETIME NOT NULL,
	PRIMARY KEY (conversation, seq)
);
CREATE TABLE IF NOT EXISTS attachments (
	conversation TEXT    NOT NULL,
	turn_seq     INTEGER NOT NULL,
	seq          INTEGER NOT NULL,
	filename     TEXT    NOT NULL,
	mime_type    TEXT    NOT NULL,
	size         INTEGER NOT NULL,
	data         TEXT    NOT NULL,
	PRIMARY KEY (conversation, turn_seq, seq),
	FOREIGN KEY (conversation, turn_seq) REFERENCES turns(conversation, seq) ON DELETE CASCADE
);
`

// Driver implements storage.Driver using SQLite.
type Driver struct {
	db *sql.DB
}

// NewDriver opens (or creates) a SQLite database.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases and pragmas consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Driver{db: db}, nil
}

// Save replaces the stored turns of a conversation in a single transaction.
func (d *Driver) Save(ctx context.Context, conversation string, turns []chat.Turn) error {
	if err := storage.ValidateName(conversation); err != nil {
		return err
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM conversations WHERE name = ?`, conversation); err != nil {
		return fmt.Errorf("clearing conversation: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (name, updated_at) VALUES (?, ?)`,
		conversation, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("inserting conversation: %w", err)
	}

	for i, t := range turns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO turns (conversation, seq, id, role, content, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			conversation, i, t.ID, t.Role.String(), t.Content, t.CreatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("inserting turn %d: %w", i, err)
		}
		for j, a := range t.Attachments {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO attachments (conversation, turn_seq, seq, filename, mime_type, size, data) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				conversation, i, j, a.Filename, a.MimeType, a.Size, a.Data,
			); err != nil {
				return fmt.Errorf("inserting attachment %d of turn %d: %w", j, i, err)
			}
		}
	}

	return tx.Commit()
}

// Load returns the stored turns in log order.
func (d *Driver) Load(ctx context.Context, conversation string) ([]chat.Turn, error) {
	if err := storage.ValidateName(conversation); err != nil {
		return nil, err
	}

	var name string
	err := d.db.QueryRowContext(ctx, `SELECT name FROM conversations WHERE name = ?`, conversation).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound{Conversation: conversation}
	}
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, role, content, created_at FROM turns WHERE conversation = ? ORDER BY seq`,
		conversation,
	)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	turns := []chat.Turn{}
	for rows.Next() {
		var (
			t    chat.Turn
			role string
		)
		if err := rows.Scan(&t.ID, &role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		t.Role = chat.ParseRole(role)
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}

	if err := d.loadAttachments(ctx, conversation, turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (d *Driver) loadAttachments(ctx context.Context, conversation string, turns []chat.Turn) error {
	rows, err := d.db.QueryContext(ctx,
		`SELECT turn_seq, filename, mime_type, size, data FROM attachments WHERE conversation = ? ORDER BY turn_seq, seq`,
		conversation,
	)
	if err != nil {
		return fmt.Errorf("querying attachments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			seq int
			a   chat.Attachment
		)
		if err := rows.Scan(&seq, &a.Filename, &a.MimeType, &a.Size, &a.Data); err != nil {
			return fmt.Errorf("scanning attachment: %w", err)
		}
		if seq < 0 || seq >= len(turns) {
			continue
		}
		turns[seq].Attachments = append(turns[seq].Attachments, a)
	}
	return rows.Err()
}

// List returns the stored conversation names, sorted.
func (d *Driver) List(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT name FROM conversations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning conversation: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes a conversation and, through the cascades, its turns.
func (d *Driver) Delete(ctx context.Context, conversation string) error {
	if err := storage.ValidateName(conversation); err != nil {
		return err
	}

	if _, err := d.db.ExecContext(ctx, `DELETE FROM conversations WHERE name = ?`, conversation); err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (d *Driver) Close() error {
	return d.db.Close()
}
