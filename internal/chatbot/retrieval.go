package chatbot

import (
	"math"
	"sort"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200

	docTopK      = 5
	docThreshold = 0.2

	kbTopK      = 3
	kbThreshold = 0.25
)

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dp, na, nb float64
	for i := 0; i < n; i++ {
		dp += a[i] * b[i]
	}
	for _, x := range a {
		na += x * x
	}
	for _, x := range b {
		nb += x * x
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dp / (math.Sqrt(na) * math.Sqrt(nb))
}

// chunkText splits text into overlapping windows so that a match near a
// chunk boundary is still retrievable.
func chunkText(text string, size, overlap int) []string {
	if len(text) <= size {
		return []string{text}
	}
	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
		if end == len(text) {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}
	return chunks
}

// topDocuments scores the index against the query embedding and keeps
// the best k above the threshold, highest first.
func topDocuments(queryEmb []float64, docs []IndexedDocument, k int, threshold float64) []IndexedDocument {
	type scored struct {
		score float64
		doc   IndexedDocument
	}
	ranked := make([]scored, 0, len(docs))
	for _, d := range docs {
		ranked = append(ranked, scored{score: cosine(queryEmb, d.Embedding), doc: d})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	out := make([]IndexedDocument, 0, k)
	for _, r := range ranked {
		if len(out) == k {
			break
		}
		if r.score > threshold {
			out = append(out, r.doc)
		}
	}
	return out
}
