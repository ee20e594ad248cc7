package chatbot

import (
	"context"
	"time"

	"github.com/transemirates/chatbridge/internal/content"
)

type ChatMessage struct {
	ID        int64
	SessionID string
	Role      string // "user" | "assistant"
	Content   string
	CreatedAt time.Time
}

type KnowledgeItem struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	IsActive bool   `json:"is_active"`
}

// IndexedDocument is one chunk of the retrieval index.
type IndexedDocument struct {
	ID         int64
	SourceType string // "content" | "product" | "knowledge"
	SourceID   string
	Text       string
	Embedding  []float64
}

type Source struct {
	SourceType string `json:"source_type"`
	SourceID   string `json:"source_id,omitempty"`
}

type AskRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type AskResult struct {
	Answer      string   `json:"answer,omitempty"`
	Found       bool     `json:"found"`
	Sources     []Source `json:"sources"`
	SessionID   string   `json:"session_id"`
	Kind        string   `json:"kind"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Repo — persistence for sessions, history, knowledge, and the index.
type Repo interface {
	EnsureSession(ctx context.Context, sessionID string) error
	SaveMessage(ctx context.Context, sessionID string, role string, content string) error
	History(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error)

	CreateKnowledge(ctx context.Context, item *KnowledgeItem) error
	ListKnowledge(ctx context.Context, activeOnly bool) ([]KnowledgeItem, error)
	DeleteKnowledge(ctx context.Context, id int64) error

	ListDocuments(ctx context.Context) ([]IndexedDocument, error)
	ReplaceDocuments(ctx context.Context, docs []IndexedDocument) error
}

// ContentSource — read-only site content and product summaries used as
// grounding context.
type ContentSource interface {
	Entries(ctx context.Context) ([]content.Entry, error)
	Entry(ctx context.Context, key string) (string, error)
	Products(ctx context.Context) ([]content.Product, error)
}

// Service — the ask pipeline plus knowledge/index management.
type Service interface {
	Ask(ctx context.Context, req AskRequest) (AskResult, error)
	CreateKnowledge(ctx context.Context, item *KnowledgeItem) error
	ListKnowledge(ctx context.Context) ([]KnowledgeItem, error)
	DeleteKnowledge(ctx context.Context, id int64) error
	Reindex(ctx context.Context) (int, error)
}
