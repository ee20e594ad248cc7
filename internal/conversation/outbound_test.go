package conversation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPAnswererAsk(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chatbot/ask", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(Answer{
			Found:     true,
			Answer:    "hello",
			SessionID: "s-1",
			Kind:      "answer",
			Sources:   []Source{{SourceType: "content", SourceID: "about"}},
		})
	}))
	defer srv.Close()

	a := NewHTTPAnswerer(srv.URL)

	ans, err := a.Ask(context.Background(), "what is TE?", "")
	require.NoError(t, err)
	require.True(t, ans.Found)
	require.Equal(t, "hello", ans.Answer)
	require.Equal(t, "s-1", ans.SessionID)
	require.Len(t, ans.Sources, 1)

	require.Equal(t, "what is TE?", gotBody["message"])
	_, hasSession := gotBody["session_id"]
	require.False(t, hasSession, "session_id must be omitted before one is issued")

	_, err = a.Ask(context.Background(), "again", "s-1")
	require.NoError(t, err)
	require.Equal(t, "s-1", gotBody["session_id"])
}

func TestHTTPAnswererNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPAnswerer(srv.URL).Ask(context.Background(), "q", "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "500")
}

func TestHTTPLeadSinkSubmit(t *testing.T) {
	var got Inquiry
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/inquiries", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	inq := Inquiry{
		Name:        "Ali",
		Email:       "chatbot@user.com",
		Phone:       "0500000000",
		Message:     "[chatbot-fallback] User Query: pricing",
		InquiryType: "chatbot-fallback",
	}
	require.NoError(t, NewHTTPLeadSink(srv.URL).Submit(context.Background(), inq))
	require.Equal(t, inq, got)
}

func TestHTTPLeadSinkNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewHTTPLeadSink(srv.URL).Submit(context.Background(), Inquiry{Name: "x"})
	require.Error(t, err)
}
