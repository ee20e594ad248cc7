package ai

import (
	"context"
	"errors"
	"os"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type OpenAIClient struct {
	client     *openai.Client
	model      string
	embedModel openai.EmbeddingModel
	log        *zap.SugaredLogger
}

func NewOpenAIClient(log *zap.SugaredLogger) *OpenAIClient {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatal("OPENAI_API_KEY not set")
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}

	embedModel := openai.EmbeddingModel(os.Getenv("OPENAI_EMBED_MODEL"))
	if embedModel == "" {
		embedModel = openai.SmallEmbedding3
	}

	return &OpenAIClient{
		client:     openai.NewClient(apiKey),
		model:      model,
		embedModel: embedModel,
		log:        log,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		c.log.Warnw("openai completion failed", "err", err)
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("ai: empty choices")
	}

	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.embedModel,
	})
	if err != nil {
		c.log.Warnw("openai embedding failed", "err", err)
		return nil, err
	}

	if len(resp.Data) == 0 {
		return nil, errors.New("ai: empty embedding response")
	}

	src := resp.Data[0].Embedding
	out := make([]float64, len(src))
	for i, v := range src {
		out[i] = float64(v)
	}
	return out, nil
}
