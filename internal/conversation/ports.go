package conversation

import "context"

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// MessageKind tags how a transcript entry is rendered.
type MessageKind string

const (
	KindPlainText          MessageKind = "text"
	KindSatisfactionPrompt MessageKind = "satisfaction"
	KindLeadCaptureForm    MessageKind = "form"
)

// Source is a provenance tag attached to answered bot messages.
type Source struct {
	SourceType string `json:"source_type"`
	SourceID   string `json:"source_id,omitempty"`
}

// Message is one transcript entry. The transcript is append-only and
// its order is the render order.
type Message struct {
	ID          string
	Sender      Sender
	Kind        MessageKind
	Text        string
	Sources     []Source
	Suggestions []string

	// AnswerKind is echoed from the answering collaborator
	// ("answer", "greeting", "clarification", "fallback"). Opaque here.
	AnswerKind string
}

// Answer is the question-answering collaborator's response. All fields
// beyond Found are optional; absent arrays are treated as empty.
type Answer struct {
	Found       bool     `json:"found"`
	Answer      string   `json:"answer,omitempty"`
	SessionID   string   `json:"session_id,omitempty"`
	Kind        string   `json:"kind,omitempty"`
	Sources     []Source `json:"sources,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// LeadDraft is the transient name/phone form state. It is consumed on
// successful submission and never persisted by the controller.
type LeadDraft struct {
	Name  string
	Phone string
}

// Inquiry is the record handed to the lead-capture collaborator.
type Inquiry struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Message     string `json:"message"`
	InquiryType string `json:"inquiry_type"`
}

// Answerer resolves a free-text question, optionally continuing an
// existing session.
type Answerer interface {
	Ask(ctx context.Context, message string, sessionID string) (Answer, error)
}

// LeadSink records a lead for human follow-up.
type LeadSink interface {
	Submit(ctx context.Context, inquiry Inquiry) error
}
