package ai

import "context"

// AI is the model collaborator. It knows nothing about sessions,
// retrieval, or the database.
type AI interface {
	// Complete returns a plain-text answer for the given system prompt
	// and user prompt.
	Complete(ctx context.Context, systemPrompt string, userPrompt string) (string, error)

	// Embed returns the embedding vector for a piece of text.
	Embed(ctx context.Context, text string) ([]float64, error)
}
