package chatbot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, cosine([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	assert.InDelta(t, 0.0, cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosine([]float64{1, 0}, []float64{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosine([]float64{0, 0}, []float64{1, 1}))
	assert.Equal(t, 0.0, cosine(nil, []float64{1}))
}

func TestChunkTextShortInput(t *testing.T) {
	chunks := chunkText("short", chunkSize, chunkOverlap)
	require.Equal(t, []string{"short"}, chunks)
}

func TestChunkTextOverlap(t *testing.T) {
	text := strings.Repeat("a", 2500)
	chunks := chunkText(text, 1000, 200)

	require.NotEmpty(t, chunks)
	assert.Len(t, chunks[0], 1000)

	// Consecutive chunks restart 200 characters back.
	total := len(chunks[0])
	for _, c := range chunks[1:] {
		total += len(c) - 200
	}
	assert.Equal(t, len(text), total)
	assert.Equal(t, string(text[len(text)-1]), chunks[len(chunks)-1][len(chunks[len(chunks)-1])-1:])
}

func TestTopDocumentsRankingAndThreshold(t *testing.T) {
	docs := []IndexedDocument{
		{SourceID: "far", Embedding: []float64{0, 1}},
		{SourceID: "near", Embedding: []float64{1, 0.05}},
		{SourceID: "close", Embedding: []float64{1, 0.5}},
	}

	top := topDocuments([]float64{1, 0}, docs, 5, 0.2)
	require.Len(t, top, 2)
	assert.Equal(t, "near", top[0].SourceID)
	assert.Equal(t, "close", top[1].SourceID)
}

func TestTopDocumentsLimit(t *testing.T) {
	var docs []IndexedDocument
	for i := 0; i < 10; i++ {
		docs = append(docs, IndexedDocument{Embedding: []float64{1, 0}})
	}
	top := topDocuments([]float64{1, 0}, docs, docTopK, docThreshold)
	assert.Len(t, top, docTopK)
}
