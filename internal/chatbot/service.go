package chatbot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transemirates/chatbridge/internal/ai"
)

const historyWindow = 6

var (
	greetingTerms  = []string{"hi", "hello", "hey", "salam", "assalam", "assalamu", "assalam o alaikum", "asalam"}
	ambiguousTerms = []string{"price", "cost", "service", "services", "product", "products", "range"}
	aboutTerms     = []string{"what is te", "trans emirates", "about"}
	contactTerms   = []string{"phone", "email", "address", "contact"}
	contactKeys    = []string{"phone", "email", "address"}

	defaultSuggestions  = []string{"About TE", "Our Products", "Contact Details"}
	answerSuggestions   = []string{"Ask about services", "Show contact details"}
	clarifySuggestions  = []string{"Product: Petroleum Jelly", "Product: Base Oil", "Our Services", "Contact Team"}
	contactSuggestions  = []string{"Ask for a callback", "About TE"}
	kbSuggestions       = []string{"More details", "Contact Team"}
	fallbackSuggestions = []string{"Contact Team", "About TE", "Our Products"}
)

var errNoGroundedAnswer = errors.New("chatbot: model did not produce a grounded answer")

type service struct {
	repo      Repo
	ai        ai.AI
	content   ContentSource
	includeKB bool
	log       *zap.SugaredLogger
}

// NewService wires the ask pipeline. includeKB controls whether the
// knowledge base is part of the main retrieval index; when false the KB
// is consulted through a per-question similarity side channel instead.
func NewService(repo Repo, aiClient ai.AI, contentSrc ContentSource, includeKB bool, log *zap.SugaredLogger) Service {
	return &service{
		repo:      repo,
		ai:        aiClient,
		content:   contentSrc,
		includeKB: includeKB,
		log:       log,
	}
}

func (s *service) Ask(ctx context.Context, req AskRequest) (AskResult, error) {
	q := req.Message
	sid := req.SessionID
	if sid == "" {
		sid = uuid.NewString()
	}

	// History persistence is best-effort: a failed write must not take
	// the answer down with it.
	if err := s.repo.EnsureSession(ctx, sid); err != nil {
		s.log.Warnw("ensure session failed", "session", sid, "err", err)
	}
	if err := s.repo.SaveMessage(ctx, sid, "user", q); err != nil {
		s.log.Warnw("save user message failed", "session", sid, "err", err)
	}

	history := s.historyLines(ctx, sid)
	uq := strings.ToLower(q)

	queryEmb, err := s.ai.Embed(ctx, q)
	if err != nil {
		queryEmb = nil
	}

	docs := s.indexedDocuments(ctx)

	var top []IndexedDocument
	if queryEmb != nil && len(docs) > 0 {
		top = topDocuments(queryEmb, docs, docTopK, docThreshold)
	}

	kbParts, kbSources := s.knowledgeSimilarity(ctx, queryEmb)

	contextText, sources := s.buildContext(ctx, top, kbParts, kbSources)
	if strings.TrimSpace(contextText) == "" {
		return AskResult{
			Found:       false,
			Sources:     []Source{},
			SessionID:   sid,
			Kind:        "fallback",
			Suggestions: fallbackSuggestions,
		}, nil
	}

	if answer, err := s.generate(ctx, contextText, history, q); err == nil {
		s.saveAssistant(ctx, sid, answer)
		suggestions := answerSuggestions
		if len(top) == 0 {
			suggestions = defaultSuggestions
		}
		return AskResult{
			Answer:      answer,
			Found:       true,
			Sources:     sources,
			SessionID:   sid,
			Kind:        "answer",
			Suggestions: suggestions,
		}, nil
	}

	return s.deterministic(ctx, sid, uq), nil
}

// indexedDocuments loads the retrieval index restricted to the source
// types in play.
func (s *service) indexedDocuments(ctx context.Context) []IndexedDocument {
	docs, err := s.repo.ListDocuments(ctx)
	if err != nil {
		s.log.Warnw("list documents failed", "err", err)
		return nil
	}
	out := make([]IndexedDocument, 0, len(docs))
	for _, d := range docs {
		switch d.SourceType {
		case "content", "product":
			out = append(out, d)
		case "knowledge":
			if s.includeKB {
				out = append(out, d)
			}
		}
	}
	return out
}

// knowledgeSimilarity is the KB side channel used when the KB is kept
// out of the main index: score active items against the query and keep
// the best few as extra context.
func (s *service) knowledgeSimilarity(ctx context.Context, queryEmb []float64) ([]string, []Source) {
	if s.includeKB || queryEmb == nil {
		return nil, nil
	}

	items, err := s.repo.ListKnowledge(ctx, true)
	if err != nil {
		s.log.Warnw("list knowledge failed", "err", err)
		return nil, nil
	}

	type scored struct {
		score float64
		item  KnowledgeItem
	}
	var ranked []scored
	for _, k := range items {
		emb, err := s.ai.Embed(ctx, k.Question+"\n"+k.Answer)
		if err != nil {
			continue
		}
		ranked = append(ranked, scored{score: cosine(queryEmb, emb), item: k})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	var parts []string
	var sources []Source
	for _, r := range ranked {
		if len(parts) == kbTopK {
			break
		}
		if r.score > kbThreshold {
			parts = append(parts, fmt.Sprintf("Q: %s\nA: %s", r.item.Question, r.item.Answer))
			sources = append(sources, Source{SourceType: "knowledge", SourceID: strconv.FormatInt(r.item.ID, 10)})
		}
	}
	return parts, sources
}

// buildContext assembles the grounding text. With retrieval hits the
// context is the hit chunks; without them it degrades to the full site
// content and product summaries.
func (s *service) buildContext(ctx context.Context, top []IndexedDocument, kbParts []string, kbSources []Source) (string, []Source) {
	if len(top) > 0 {
		parts := make([]string, 0, len(top)+len(kbParts))
		sources := make([]Source, 0, len(top)+len(kbSources))
		for _, d := range top {
			parts = append(parts, d.Text)
			sources = append(sources, Source{SourceType: d.SourceType, SourceID: d.SourceID})
		}
		parts = append(parts, kbParts...)
		sources = append(sources, kbSources...)
		return strings.Join(parts, "\n\n"), sources
	}

	var b strings.Builder
	entries, err := s.content.Entries(ctx)
	if err != nil {
		s.log.Warnw("load site content failed", "err", err)
	}
	if len(entries) > 0 {
		b.WriteString("SITE CONTENT:\n")
		for _, e := range entries {
			fmt.Fprintf(&b, "%s: %s\n", e.Key, e.Value)
		}
		b.WriteString("\n")
	}
	products, err := s.content.Products(ctx)
	if err != nil {
		s.log.Warnw("load products failed", "err", err)
	}
	if len(products) > 0 {
		b.WriteString("PRODUCTS:\n")
		for _, p := range products {
			fmt.Fprintf(&b, "%s: %s\n", p.Name, p.Description)
		}
	}
	if len(kbParts) > 0 {
		b.WriteString("\nKNOWLEDGE:\n")
		b.WriteString(strings.Join(kbParts, "\n\n"))
	}
	return b.String(), kbSources
}

func (s *service) generate(ctx context.Context, contextText string, history []string, question string) (string, error) {
	var b strings.Builder
	b.WriteString("Context:\n")
	b.WriteString(contextText)
	if len(history) > 0 {
		b.WriteString("\n\nPrior conversation:\n")
		b.WriteString(strings.Join(history, "\n"))
	}
	b.WriteString("\n\nUser:\n")
	b.WriteString(question)

	raw, err := s.ai.Complete(ctx, supportAgentPrompt, b.String())
	if err != nil {
		return "", err
	}

	answer := strings.TrimSpace(raw)
	if answer == "" || strings.Contains(answer, refusalPhrase) || strings.Contains(answer, refusalPhraseAlt) {
		return "", errNoGroundedAnswer
	}
	return answer, nil
}

// deterministic is the rule ladder used when no grounded answer could
// be generated: greeting, clarification, "about", contact details, KB
// keyword match, and finally the not-found fallback.
func (s *service) deterministic(ctx context.Context, sid string, uq string) AskResult {
	if containsAny(uq, greetingTerms) {
		answer := "Hi! How can I help you today? You can ask about our company, services, or products."
		s.saveAssistant(ctx, sid, answer)
		return AskResult{
			Answer: answer, Found: true, Sources: []Source{}, SessionID: sid,
			Kind: "greeting", Suggestions: defaultSuggestions,
		}
	}

	if containsAny(uq, ambiguousTerms) {
		answer := "Do you want details about a specific product or our services? Please specify."
		s.saveAssistant(ctx, sid, answer)
		return AskResult{
			Answer: answer, Found: true, Sources: []Source{}, SessionID: sid,
			Kind: "clarification", Suggestions: clarifySuggestions,
		}
	}

	if containsAny(uq, aboutTerms) {
		if about, err := s.content.Entry(ctx, "about"); err == nil {
			s.saveAssistant(ctx, sid, about)
			return AskResult{
				Answer: about, Found: true,
				Sources:   []Source{{SourceType: "content", SourceID: "about"}},
				SessionID: sid, Kind: "answer",
				Suggestions: []string{"Our Products", "Contact Details"},
			}
		}
	}

	if containsAny(uq, contactTerms) {
		var details []string
		for _, key := range contactKeys {
			if v, err := s.content.Entry(ctx, key); err == nil {
				details = append(details, fmt.Sprintf("%s: %s", capitalize(key), v))
			}
		}
		if len(details) > 0 {
			answer := strings.Join(details, "\n")
			s.saveAssistant(ctx, sid, answer)
			return AskResult{
				Answer: answer, Found: true,
				Sources:   []Source{{SourceType: "content", SourceID: "contact"}},
				SessionID: sid, Kind: "answer", Suggestions: contactSuggestions,
			}
		}
	}

	if items, err := s.repo.ListKnowledge(ctx, true); err == nil {
		for _, item := range items {
			if containsAny(uq, strings.Fields(strings.ToLower(item.Question))) {
				s.saveAssistant(ctx, sid, item.Answer)
				return AskResult{
					Answer: item.Answer, Found: true,
					Sources:   []Source{{SourceType: "knowledge", SourceID: strconv.FormatInt(item.ID, 10)}},
					SessionID: sid, Kind: "answer", Suggestions: kbSuggestions,
				}
			}
		}
	}

	return AskResult{
		Found: false, Sources: []Source{}, SessionID: sid,
		Kind: "fallback", Suggestions: fallbackSuggestions,
	}
}

func (s *service) historyLines(ctx context.Context, sid string) []string {
	msgs, err := s.repo.History(ctx, sid, historyWindow)
	if err != nil {
		s.log.Warnw("load history failed", "session", sid, "err", err)
		return nil
	}
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, capitalize(m.Role)+": "+m.Content)
	}
	return lines
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (s *service) saveAssistant(ctx context.Context, sid string, text string) {
	if err := s.repo.SaveMessage(ctx, sid, "assistant", text); err != nil {
		s.log.Warnw("save assistant message failed", "session", sid, "err", err)
	}
}

func (s *service) CreateKnowledge(ctx context.Context, item *KnowledgeItem) error {
	return s.repo.CreateKnowledge(ctx, item)
}

func (s *service) ListKnowledge(ctx context.Context) ([]KnowledgeItem, error) {
	return s.repo.ListKnowledge(ctx, false)
}

func (s *service) DeleteKnowledge(ctx context.Context, id int64) error {
	return s.repo.DeleteKnowledge(ctx, id)
}

// Reindex rebuilds the retrieval index from site content, active
// products, and (when included) the knowledge base.
func (s *service) Reindex(ctx context.Context) (int, error) {
	type item struct {
		sourceType string
		sourceID   string
		text       string
	}
	var items []item

	if s.includeKB {
		kb, err := s.repo.ListKnowledge(ctx, true)
		if err != nil {
			return 0, fmt.Errorf("list knowledge: %w", err)
		}
		for _, k := range kb {
			for _, c := range chunkText(k.Question+"\n"+k.Answer, chunkSize, chunkOverlap) {
				items = append(items, item{"knowledge", strconv.FormatInt(k.ID, 10), c})
			}
		}
	}

	entries, err := s.content.Entries(ctx)
	if err != nil {
		return 0, fmt.Errorf("list site content: %w", err)
	}
	for _, e := range entries {
		for _, c := range chunkText(e.Key+": "+e.Value, chunkSize, chunkOverlap) {
			items = append(items, item{"content", e.Key, c})
		}
	}

	products, err := s.content.Products(ctx)
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}
	for _, p := range products {
		base := fmt.Sprintf("Product: %s\nDescription: %s", p.Name, p.Description)
		for _, c := range chunkText(base, chunkSize, chunkOverlap) {
			items = append(items, item{"product", strconv.FormatInt(p.ID, 10), c})
		}
	}

	docs := make([]IndexedDocument, 0, len(items))
	for _, it := range items {
		emb, err := s.ai.Embed(ctx, it.text)
		if err != nil {
			return 0, fmt.Errorf("embed %s/%s: %w", it.sourceType, it.sourceID, err)
		}
		docs = append(docs, IndexedDocument{
			SourceType: it.sourceType,
			SourceID:   it.sourceID,
			Text:       it.text,
			Embedding:  emb,
		})
	}

	if err := s.repo.ReplaceDocuments(ctx, docs); err != nil {
		return 0, fmt.Errorf("replace documents: %w", err)
	}
	return len(docs), nil
}

func containsAny(haystack string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(haystack, t) {
			return true
		}
	}
	return false
}
