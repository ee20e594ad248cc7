package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type answererFunc func(ctx context.Context, message, sessionID string) (Answer, error)

func (f answererFunc) Ask(ctx context.Context, message, sessionID string) (Answer, error) {
	return f(ctx, message, sessionID)
}

type sinkFunc func(ctx context.Context, inquiry Inquiry) error

func (f sinkFunc) Submit(ctx context.Context, inquiry Inquiry) error {
	return f(ctx, inquiry)
}

func staticAnswer(ans Answer) Answerer {
	return answererFunc(func(context.Context, string, string) (Answer, error) {
		return ans, nil
	})
}

func acceptLeads(captured *[]Inquiry) LeadSink {
	return sinkFunc(func(_ context.Context, inq Inquiry) error {
		*captured = append(*captured, inq)
		return nil
	})
}

func newTestController(t *testing.T, answerer Answerer, leads LeadSink) *Controller {
	t.Helper()
	if answerer == nil {
		answerer = staticAnswer(Answer{Found: true, Answer: "ok"})
	}
	if leads == nil {
		leads = sinkFunc(func(context.Context, Inquiry) error { return nil })
	}
	return NewController(answerer, leads, zap.NewNop().Sugar())
}

func TestNewControllerGreeting(t *testing.T) {
	c := newTestController(t, nil, nil)

	transcript := c.Transcript()
	require.Len(t, transcript, 1)
	require.Equal(t, SenderBot, transcript[0].Sender)
	require.Equal(t, KindPlainText, transcript[0].Kind)
	require.NotEmpty(t, transcript[0].Text)
	require.Equal(t, StateIdle, c.State().Kind)
}

func TestSubmitQuestionBlankIsNoOp(t *testing.T) {
	c := newTestController(t, nil, nil)

	c.SubmitQuestion(context.Background(), "")
	c.SubmitQuestion(context.Background(), "   ")

	require.Len(t, c.Transcript(), 1)
	require.Equal(t, StateIdle, c.State().Kind)
}

func TestSessionIDFirstAnswerWins(t *testing.T) {
	var sentSessionIDs []string
	issued := []string{"A", "B"}
	answerer := answererFunc(func(_ context.Context, _ string, sessionID string) (Answer, error) {
		sentSessionIDs = append(sentSessionIDs, sessionID)
		ans := Answer{Found: true, Answer: "ok", SessionID: issued[0]}
		issued = issued[1:]
		return ans, nil
	})
	c := newTestController(t, answerer, nil)

	c.SubmitQuestion(context.Background(), "first")
	c.SubmitQuestion(context.Background(), "second")

	require.Equal(t, []string{"", "A"}, sentSessionIDs)
	require.Equal(t, "A", c.SessionID())
}

func TestSatisfactionGatingRequiresSources(t *testing.T) {
	c := newTestController(t, staticAnswer(Answer{Found: true, Answer: "plain"}), nil)
	c.SubmitQuestion(context.Background(), "q")

	for _, m := range c.Transcript() {
		require.NotEqual(t, KindSatisfactionPrompt, m.Kind)
	}
	require.Equal(t, StateIdle, c.State().Kind)

	c2 := newTestController(t, staticAnswer(Answer{
		Found:   true,
		Answer:  "sourced",
		Sources: []Source{{SourceType: "page"}},
	}), nil)
	c2.SubmitQuestion(context.Background(), "q")

	transcript := c2.Transcript()
	last := transcript[len(transcript)-1]
	require.Equal(t, KindSatisfactionPrompt, last.Kind)
	require.Equal(t, StateAwaitingSatisfaction, c2.State().Kind)
}

func TestFallbackPathProducesFallbackInquiry(t *testing.T) {
	var captured []Inquiry
	c := newTestController(t, staticAnswer(Answer{Found: false}), acceptLeads(&captured))

	c.SubmitQuestion(context.Background(), "unknown thing")

	var forms int
	for _, m := range c.Transcript() {
		if m.Kind == KindLeadCaptureForm {
			forms++
		}
	}
	require.Equal(t, 1, forms)
	require.Equal(t, StateAwaitingLeadForm, c.State().Kind)
	require.Equal(t, ReasonFallback, c.State().Reason)

	c.SubmitLead(context.Background(), LeadDraft{Name: "Ali", Phone: "0500000000"})

	require.Len(t, captured, 1)
	require.Equal(t, "chatbot-fallback", captured[0].InquiryType)
	require.Equal(t, "Ali", captured[0].Name)
	require.Equal(t, "0500000000", captured[0].Phone)
	require.Equal(t, placeholderEmail, captured[0].Email)
	require.Contains(t, captured[0].Message, "unknown thing")
	require.Equal(t, StateIdle, c.State().Kind)
}

func TestSatisfiedPathEndToEnd(t *testing.T) {
	var captured []Inquiry
	c := newTestController(t, staticAnswer(Answer{
		Found:   true,
		Answer:  "our pricing is listed per product",
		Sources: []Source{{SourceType: "kb"}},
	}), acceptLeads(&captured))

	c.SubmitQuestion(context.Background(), "pricing")
	require.Equal(t, StateAwaitingSatisfaction, c.State().Kind)

	c.RecordSatisfaction(true)
	require.Equal(t, StateAwaitingLeadForm, c.State().Kind)
	require.Equal(t, ReasonConfirmedSatisfied, c.State().Reason)

	c.SubmitLead(context.Background(), LeadDraft{Name: "Sara", Phone: "123"})

	require.Len(t, captured, 1)
	require.Equal(t, "chatbot-satisfied", captured[0].InquiryType)
	require.Contains(t, captured[0].Message, "pricing")

	transcript := c.Transcript()
	require.Equal(t, leadThanksText, transcript[len(transcript)-1].Text)
	require.Equal(t, StateIdle, c.State().Kind)
}

func TestUnsatisfiedLeadsToFallbackForm(t *testing.T) {
	c := newTestController(t, staticAnswer(Answer{
		Found:   true,
		Answer:  "sourced",
		Sources: []Source{{SourceType: "content", SourceID: "about"}},
	}), nil)

	c.SubmitQuestion(context.Background(), "q")
	c.RecordSatisfaction(false)

	require.Equal(t, StateAwaitingLeadForm, c.State().Kind)
	require.Equal(t, ReasonFallback, c.State().Reason)

	transcript := c.Transcript()
	last := transcript[len(transcript)-1]
	require.Equal(t, KindLeadCaptureForm, last.Kind)
	require.Equal(t, unsatisfiedText, last.Text)
}

func TestFailedLeadSubmissionKeepsFormLive(t *testing.T) {
	var captured []Inquiry
	failing := true
	leads := sinkFunc(func(_ context.Context, inq Inquiry) error {
		if failing {
			return errors.New("boom")
		}
		captured = append(captured, inq)
		return nil
	})
	c := newTestController(t, staticAnswer(Answer{Found: false}), leads)

	c.SubmitQuestion(context.Background(), "q")
	c.SubmitLead(context.Background(), LeadDraft{Name: "Ali", Phone: "1"})

	require.Equal(t, StateAwaitingLeadForm, c.State().Kind)
	require.Equal(t, ReasonFallback, c.State().Reason)

	transcript := c.Transcript()
	require.Equal(t, leadFailedText, transcript[len(transcript)-1].Text)

	// Retry with the same draft succeeds.
	failing = false
	c.SubmitLead(context.Background(), LeadDraft{Name: "Ali", Phone: "1"})

	require.Len(t, captured, 1)
	require.Equal(t, StateIdle, c.State().Kind)
}

func TestAnswerRequestFailureReturnsToIdle(t *testing.T) {
	answerer := answererFunc(func(context.Context, string, string) (Answer, error) {
		return Answer{}, errors.New("network down")
	})
	c := newTestController(t, answerer, nil)

	c.SubmitQuestion(context.Background(), "q")

	transcript := c.Transcript()
	require.Equal(t, askFailedText, transcript[len(transcript)-1].Text)
	require.Equal(t, StateIdle, c.State().Kind)
}

func TestOperationsAreGuardedByState(t *testing.T) {
	c := newTestController(t, staticAnswer(Answer{Found: false}), nil)

	// Satisfaction without a pending prompt is ignored.
	c.RecordSatisfaction(true)
	require.Len(t, c.Transcript(), 1)

	// Lead without a live form is ignored.
	c.SubmitLead(context.Background(), LeadDraft{Name: "x", Phone: "1"})
	require.Len(t, c.Transcript(), 1)

	// A live form blocks further questions.
	c.SubmitQuestion(context.Background(), "q")
	require.Equal(t, StateAwaitingLeadForm, c.State().Kind)
	before := len(c.Transcript())
	c.SubmitQuestion(context.Background(), "another")
	require.Len(t, c.Transcript(), before)

	// An incomplete draft never reaches the sink.
	c.SubmitLead(context.Background(), LeadDraft{Name: "only name"})
	require.Equal(t, StateAwaitingLeadForm, c.State().Kind)
}

func TestAnswerKindDefaultsToAnswer(t *testing.T) {
	c := newTestController(t, staticAnswer(Answer{Found: true, Answer: "ok"}), nil)
	c.SubmitQuestion(context.Background(), "q")

	transcript := c.Transcript()
	require.Equal(t, "answer", transcript[len(transcript)-1].AnswerKind)
}
