package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tieubaoca/pdfqa-be/types"
	"go.uber.org/zap"
)

// LocalStore keeps vectors in a sqlite file and scores them in process.
// It is meant for single node deployments and small per-user corpora.
type LocalStore struct {
	db *sql.DB
}

func NewLocalStore(path string) (*LocalStore, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS chunks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			document_id TEXT NOT NULL,
			page INTEGER NOT NULL,
			chunk_index INTEGER NOT NULL,
			content TEXT NOT NULL,
			embedding BLOB NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_chunks_user ON chunks (user_id, document_id);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create chunks table: %w", err)
	}
	return &LocalStore{db: db}, nil
}

func (s *LocalStore) UpsertChunks(ctx context.Context, uid string, chunks []types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, user_id, document_id, page, chunk_index, content, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			document_id = excluded.document_id,
			page = excluded.page,
			chunk_index = excluded.chunk_index,
			content = excluded.content,
			embedding = excluded.embedding,
			created_at = excluded.created_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt == 0 {
			createdAt = now
		}
		if _, err := stmt.ExecContext(ctx, c.ID, uid, c.DocumentID, c.Page, c.Index, c.Content, encodeVector(c.Embedding), createdAt); err != nil {
			return fmt.Errorf("failed to upsert chunk %s: %w", c.ID, err)
		}
	}
	return tx.Commit()
}

func (s *LocalStore) Search(ctx context.Context, uid string, vector []float32, k int) ([]types.ScoredChunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, page, chunk_index, content, embedding, created_at
		FROM chunks WHERE user_id = ?`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scored []types.ScoredChunk
	for rows.Next() {
		var c types.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Page, &c.Index, &c.Content, &blob, &c.CreatedAt); err != nil {
			return nil, err
		}
		emb, err := decodeVector(blob)
		if err != nil {
			zap.L().Warn("skipping chunk", zap.String("id", c.ID), zap.Error(err))
			continue
		}
		c.UserID = uid
		scored = append(scored, types.ScoredChunk{Chunk: c, Score: CosineSimilarity(vector, emb)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return topK(scored, k), nil
}

func (s *LocalStore) DeleteDocument(ctx context.Context, uid, documentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE user_id = ? AND document_id = ?`, uid, documentID)
	return err
}

func (s *LocalStore) DeleteUser(ctx context.Context, uid string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks WHERE user_id = ?`, uid)
	return err
}

// CountChunks returns how many chunks a user has stored.
func (s *LocalStore) CountChunks(ctx context.Context, uid string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE user_id = ?`, uid).Scan(&n)
	return n, err
}

func (s *LocalStore) Close() error {
	return s.db.Close()
}
