package chatbot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrKnowledgeNotFound = errors.New("chatbot: knowledge item not found")

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) EnsureSession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (session_id)
		VALUES ($1)
		ON CONFLICT (session_id) DO NOTHING
	`, sessionID)
	return err
}

func (r *repo) SaveMessage(ctx context.Context, sessionID string, role string, content string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chat_messages (session_id, role, content)
		VALUES ($1, $2, $3)
	`, sessionID, role, content)
	return err
}

// History returns the last limit messages in chronological order.
func (r *repo) History(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChatMessage
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *repo) CreateKnowledge(ctx context.Context, item *KnowledgeItem) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO chatbot_knowledge (question, answer, is_active)
		VALUES ($1, $2, $3)
		RETURNING id
	`, item.Question, item.Answer, item.IsActive).Scan(&item.ID)
}

func (r *repo) ListKnowledge(ctx context.Context, activeOnly bool) ([]KnowledgeItem, error) {
	q := `
		SELECT id, question, answer, is_active
		FROM chatbot_knowledge
		ORDER BY id ASC
	`
	if activeOnly {
		q = `
		SELECT id, question, answer, is_active
		FROM chatbot_knowledge
		WHERE is_active = TRUE
		ORDER BY id ASC
	`
	}

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KnowledgeItem
	for rows.Next() {
		var k KnowledgeItem
		if err := rows.Scan(&k.ID, &k.Question, &k.Answer, &k.IsActive); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *repo) DeleteKnowledge(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM chatbot_knowledge WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrKnowledgeNotFound
	}
	return nil
}

func (r *repo) ListDocuments(ctx context.Context) ([]IndexedDocument, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, source_type, COALESCE(source_id, ''), text, embedding_json
		FROM embedding_documents
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IndexedDocument
	for rows.Next() {
		var d IndexedDocument
		var embJSON []byte
		if err := rows.Scan(&d.ID, &d.SourceType, &d.SourceID, &d.Text, &embJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(embJSON, &d.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding for doc %d: %w", d.ID, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ReplaceDocuments swaps the whole index in one transaction so readers
// never observe a half-built index.
func (r *repo) ReplaceDocuments(ctx context.Context, docs []IndexedDocument) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM embedding_documents`); err != nil {
		return err
	}

	for _, d := range docs {
		embJSON, err := json.Marshal(d.Embedding)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO embedding_documents (source_type, source_id, text, embedding_json)
			VALUES ($1, $2, $3, $4)
		`, d.SourceType, d.SourceID, d.Text, embJSON); err != nil {
			return err
		}
	}

	return tx.Commit()
}
