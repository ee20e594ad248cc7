package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StateKind is the controller's current mode. It governs which
// operations are accepted; the illegal combinations a set of independent
// flags would allow simply do not exist.
type StateKind int

const (
	StateIdle StateKind = iota
	StateAwaitingAnswer
	StateAwaitingSatisfaction
	StateAwaitingLeadForm
)

func (k StateKind) String() string {
	switch k {
	case StateIdle:
		return "idle"
	case StateAwaitingAnswer:
		return "awaiting_answer"
	case StateAwaitingSatisfaction:
		return "awaiting_satisfaction"
	case StateAwaitingLeadForm:
		return "awaiting_lead_form"
	}
	return "unknown"
}

// Reason records which path opened the live lead-capture form.
type Reason int

const (
	ReasonFallback Reason = iota
	ReasonConfirmedSatisfied
)

// InquiryType maps the reason to the classification the lead store
// expects.
func (r Reason) InquiryType() string {
	if r == ReasonConfirmedSatisfied {
		return "chatbot-satisfied"
	}
	return "chatbot-fallback"
}

// DialogueState is the tagged state value. Reason is meaningful only
// while Kind is StateAwaitingLeadForm.
type DialogueState struct {
	Kind   StateKind
	Reason Reason
}

const (
	greetingText     = "Hi! How can I help you today?"
	satisfactionText = "Was this information helpful?"
	fallbackText     = "I'm sorry, I don't have that information right now. Please provide your name and number, and our team will contact you shortly."
	satisfiedText    = "Great! Please provide your name and number so we can record your satisfaction and proceed further."
	unsatisfiedText  = "I see. Please provide your name and number, and a human agent will contact you to assist better."
	askFailedText    = "Sorry, something went wrong. Please try again later."
	leadThanksText   = "Thank you! We have received your details and will be in touch soon."
	leadFailedText   = "Failed to save details. Please try contacting us via the Contact page."

	placeholderEmail = "chatbot@user.com"
	noUserMessage    = "No message"

	defaultTimeout = 15 * time.Second
)

// Controller owns the dialogue state and transcript of one chat panel
// and mediates between user input, the question-answering collaborator,
// and the lead-capture collaborator. Its operations never return an
// error: every failure is absorbed and rendered as an appended bot
// message, so the binding layer stays trivial.
//
// A Controller is owned by a single goroutine; it is not safe for
// concurrent use.
type Controller struct {
	answerer Answerer
	leads    LeadSink
	timeout  time.Duration
	log      *zap.SugaredLogger

	state      DialogueState
	sessionID  string
	transcript []Message
}

type Option func(*Controller)

// WithTimeout bounds each collaborator call. The zero default is 15s;
// an unbounded wait would leave the dialogue stuck in AwaitingAnswer
// forever.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewController(answerer Answerer, leads LeadSink, log *zap.SugaredLogger, opts ...Option) *Controller {
	c := &Controller{
		answerer: answerer,
		leads:    leads,
		timeout:  defaultTimeout,
		log:      log,
		state:    DialogueState{Kind: StateIdle},
	}
	for _, opt := range opts {
		opt(c)
	}

	// Synthetic greeting, never fetched.
	c.append(Message{Sender: SenderBot, Kind: KindPlainText, Text: greetingText})
	return c
}

// State returns the current dialogue state.
func (c *Controller) State() DialogueState {
	return c.state
}

// SessionID returns the collaborator-issued session id, or "" before
// the first answered question.
func (c *Controller) SessionID() string {
	return c.sessionID
}

// Transcript returns the messages in chronological order. The returned
// slice is a copy.
func (c *Controller) Transcript() []Message {
	out := make([]Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// SubmitQuestion sends a free-text question to the answering
// collaborator. Blank input is silently ignored, as is any call made
// outside the Idle state.
func (c *Controller) SubmitQuestion(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if c.state.Kind != StateIdle {
		c.log.Debugw("question rejected by state", "state", c.state.Kind)
		return
	}

	c.append(Message{Sender: SenderUser, Kind: KindPlainText, Text: text})
	c.state = DialogueState{Kind: StateAwaitingAnswer}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ans, err := c.answerer.Ask(callCtx, text, c.sessionID)
	if err != nil {
		c.log.Warnw("ask failed", "err", err)
		c.append(Message{Sender: SenderBot, Kind: KindPlainText, Text: askFailedText})
		c.state = DialogueState{Kind: StateIdle}
		return
	}

	// First answer wins: once set the session id is never overwritten.
	if ans.SessionID != "" && c.sessionID == "" {
		c.sessionID = ans.SessionID
	}

	if !ans.Found {
		c.append(Message{Sender: SenderBot, Kind: KindLeadCaptureForm, Text: fallbackText})
		c.state = DialogueState{Kind: StateAwaitingLeadForm, Reason: ReasonFallback}
		return
	}

	kind := ans.Kind
	if kind == "" {
		kind = "answer"
	}
	c.append(Message{
		Sender:      SenderBot,
		Kind:        KindPlainText,
		Text:        ans.Answer,
		Sources:     ans.Sources,
		Suggestions: ans.Suggestions,
		AnswerKind:  kind,
	})

	// A satisfaction check is only worth asking about a sourced answer.
	if len(ans.Sources) > 0 {
		c.append(Message{Sender: SenderBot, Kind: KindSatisfactionPrompt, Text: satisfactionText})
		c.state = DialogueState{Kind: StateAwaitingSatisfaction}
		return
	}
	c.state = DialogueState{Kind: StateIdle}
}

// RecordSatisfaction resolves a pending satisfaction prompt. Calls made
// outside AwaitingSatisfaction are ignored.
func (c *Controller) RecordSatisfaction(satisfied bool) {
	if c.state.Kind != StateAwaitingSatisfaction {
		return
	}

	if satisfied {
		c.append(Message{Sender: SenderBot, Kind: KindLeadCaptureForm, Text: satisfiedText})
		c.state = DialogueState{Kind: StateAwaitingLeadForm, Reason: ReasonConfirmedSatisfied}
		return
	}
	c.append(Message{Sender: SenderBot, Kind: KindLeadCaptureForm, Text: unsatisfiedText})
	c.state = DialogueState{Kind: StateAwaitingLeadForm, Reason: ReasonFallback}
}

// SubmitLead sends the live lead-capture form. Incomplete drafts and
// calls made while no form is live are ignored. On failure the form
// stays live so the caller can retry with the same draft.
func (c *Controller) SubmitLead(ctx context.Context, draft LeadDraft) {
	if strings.TrimSpace(draft.Name) == "" || strings.TrimSpace(draft.Phone) == "" {
		return
	}
	if c.state.Kind != StateAwaitingLeadForm {
		return
	}

	inquiryType := c.state.Reason.InquiryType()
	inq := Inquiry{
		Name:        draft.Name,
		Email:       placeholderEmail,
		Phone:       draft.Phone,
		Message:     fmt.Sprintf("[%s] User Query: %s", inquiryType, c.lastUserText()),
		InquiryType: inquiryType,
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.leads.Submit(callCtx, inq); err != nil {
		c.log.Warnw("lead submission failed", "err", err)
		c.append(Message{Sender: SenderBot, Kind: KindPlainText, Text: leadFailedText})
		return
	}

	c.append(Message{Sender: SenderBot, Kind: KindPlainText, Text: leadThanksText})
	c.state = DialogueState{Kind: StateIdle}
}

func (c *Controller) lastUserText() string {
	for i := len(c.transcript) - 1; i >= 0; i-- {
		if c.transcript[i].Sender == SenderUser {
			return c.transcript[i].Text
		}
	}
	return noUserMessage
}

func (c *Controller) append(m Message) {
	m.ID = uuid.NewString()
	c.transcript = append(c.transcript, m)
}
