package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/transemirates/chatbridge/internal/conversation"
	"github.com/transemirates/chatbridge/internal/inquiry"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "chatbridge server base URL")
	timeout := flag.Duration("timeout", 15*time.Second, "per-request timeout")
	watch := flag.Bool("watch", false, "also watch for new inquiries")
	watchInterval := flag.Duration("watch-interval", 30*time.Second, "inquiry poll interval")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *watch {
		watcher := inquiry.NewWatcher(
			newLatestClient(*server),
			*watchInterval,
			func(latest time.Time) {
				fmt.Printf("\n*** new inquiry received at %s ***\n", latest.Format(time.RFC3339))
			},
			log,
		)
		go watcher.Run(ctx)
	}

	ctrl := conversation.NewController(
		conversation.NewHTTPAnswerer(*server),
		conversation.NewHTTPLeadSink(*server),
		log,
		conversation.WithTimeout(*timeout),
	)

	fmt.Println("chatbridge cli — /yes /no answer a satisfaction prompt, /lead <name> <phone> submits the form, /quit exits")
	printed := render(ctrl, 0)

	scanner := bufio.NewScanner(os.Stdin)
	prompt(ctrl)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "/quit":
			return
		case line == "/yes":
			ctrl.RecordSatisfaction(true)
		case line == "/no":
			ctrl.RecordSatisfaction(false)
		case strings.HasPrefix(line, "/lead "):
			fields := strings.Fields(strings.TrimPrefix(line, "/lead "))
			if len(fields) < 2 {
				fmt.Println("usage: /lead <name> <phone>")
				prompt(ctrl)
				continue
			}
			phone := fields[len(fields)-1]
			name := strings.Join(fields[:len(fields)-1], " ")
			ctrl.SubmitLead(ctx, conversation.LeadDraft{Name: name, Phone: phone})
		default:
			ctrl.SubmitQuestion(ctx, line)
		}
		printed = render(ctrl, printed)
		prompt(ctrl)
	}
}

// render prints transcript entries appended since the last call and
// returns the new high-water index.
func render(ctrl *conversation.Controller, printed int) int {
	transcript := ctrl.Transcript()
	for _, m := range transcript[printed:] {
		if m.Sender == conversation.SenderUser {
			continue
		}
		fmt.Printf("bot> %s\n", m.Text)
		if len(m.Sources) > 0 {
			tags := make([]string, 0, len(m.Sources))
			for _, s := range m.Sources {
				tag := s.SourceType
				if s.SourceID != "" {
					tag += ":" + s.SourceID
				}
				tags = append(tags, tag)
			}
			fmt.Printf("     sources: %s\n", strings.Join(tags, ", "))
		}
		if len(m.Suggestions) > 0 {
			fmt.Printf("     try: %s\n", strings.Join(m.Suggestions, " | "))
		}
	}
	return len(transcript)
}

func prompt(ctrl *conversation.Controller) {
	switch ctrl.State().Kind {
	case conversation.StateAwaitingSatisfaction:
		fmt.Print("(/yes or /no)> ")
	case conversation.StateAwaitingLeadForm:
		fmt.Print("(/lead <name> <phone>)> ")
	default:
		fmt.Print("you> ")
	}
}

// latestClient reads the newest inquiry timestamp over the public API,
// so the watcher can run without database access.
type latestClient struct {
	baseURL string
	client  *http.Client
}

func newLatestClient(baseURL string) *latestClient {
	return &latestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *latestClient) LatestCreatedAt(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/inquiries", nil)
	if err != nil {
		return time.Time{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return time.Time{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return time.Time{}, errors.New("chatbridge api error: " + resp.Status)
	}

	var items []struct {
		CreatedAt time.Time `json:"created_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return time.Time{}, err
	}
	if len(items) == 0 {
		return time.Time{}, nil
	}
	return items[0].CreatedAt, nil
}
