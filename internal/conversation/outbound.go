package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPAnswerer talks to the chatbot ask endpoint.
type HTTPAnswerer struct {
	baseURL string
	client  *http.Client
}

func NewHTTPAnswerer(baseURL string) *HTTPAnswerer {
	return &HTTPAnswerer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *HTTPAnswerer) Ask(ctx context.Context, message string, sessionID string) (Answer, error) {
	body := map[string]any{"message": message}
	if sessionID != "" {
		body["session_id"] = sessionID
	}

	var ans Answer
	if err := postJSON(ctx, a.client, a.baseURL+"/chatbot/ask", body, &ans); err != nil {
		return Answer{}, err
	}
	return ans, nil
}

// HTTPLeadSink talks to the inquiries endpoint.
type HTTPLeadSink struct {
	baseURL string
	client  *http.Client
}

func NewHTTPLeadSink(baseURL string) *HTTPLeadSink {
	return &HTTPLeadSink{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPLeadSink) Submit(ctx context.Context, inquiry Inquiry) error {
	return postJSON(ctx, s.client, s.baseURL+"/inquiries", inquiry, nil)
}

func postJSON(ctx context.Context, client *http.Client, url string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return errors.New("chatbridge api error: " + resp.Status + " body=" + string(respBody))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
