package inquiry

import (
	"context"
	"errors"
	"time"
)

// Inquiry is a captured lead: a name/contact record intended for human
// follow-up. Chat-originated leads carry inquiry_type
// "chatbot-satisfied" or "chatbot-fallback"; the contact page uses its
// own types.
type Inquiry struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Message     string    `json:"message"`
	InquiryType string    `json:"inquiry_type"`
	CreatedAt   time.Time `json:"created_at"`
}

var ErrNotFound = errors.New("inquiry: not found")

// Repo — persistence
type Repo interface {
	Create(ctx context.Context, inq *Inquiry) error
	List(ctx context.Context) ([]Inquiry, error)
	Delete(ctx context.Context, id int64) error

	// LatestCreatedAt returns the newest created_at, or the zero time
	// when no inquiries exist.
	LatestCreatedAt(ctx context.Context) (time.Time, error)
}

// LatestSource is the narrow read the watcher needs.
type LatestSource interface {
	LatestCreatedAt(ctx context.Context) (time.Time, error)
}
