package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tieubaoca/pdfqa-be/types"
)

type sqliteHistoryRepo struct {
	db *sql.DB
}

func NewSQLiteHistoryRepo(db *sql.DB) (HistoryRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_user ON messages (user_id, id);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create messages table: %w", err)
	}
	return &sqliteHistoryRepo{db: db}, nil
}

func (r *sqliteHistoryRepo) Append(ctx context.Context, uid string, msg types.Message) error {
	if msg.CreatedAt == 0 {
		msg.CreatedAt = time.Now().UnixMilli()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (user_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		uid, msg.Role, msg.Content, msg.CreatedAt,
	)
	return err
}

func (r *sqliteHistoryRepo) Recent(ctx context.Context, uid string, limit int) ([]types.Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT role, content, created_at FROM messages
		 WHERE user_id = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		uid, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []types.Message
	for rows.Next() {
		var m types.Message
		if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

func (r *sqliteHistoryRepo) Clear(ctx context.Context, uid string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE user_id = ?`, uid)
	return err
}
