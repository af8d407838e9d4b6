package news

import (
	"math"
)

// NeutralNovelty is returned when novelty cannot be computed
const NeutralNovelty = 0.5

// ScoreNovelty compares an embedding against prior embeddings and
// returns 1 minus the highest cosine similarity, floored at zero.
// An empty prior set means the item is fully novel. A dimension
// mismatch means the comparison is meaningless, so the neutral
// default is returned.
func ScoreNovelty(embedding []float32, existing [][]float32) float64 {
	if len(existing) == 0 {
		return 1.0
	}
	if len(embedding) == 0 {
		return NeutralNovelty
	}

	maxSimilarity := -1.0
	for _, prior := range existing {
		if len(prior) != len(embedding) {
			return NeutralNovelty
		}
		sim := cosineSimilarity(embedding, prior)
		if sim > maxSimilarity {
			maxSimilarity = sim
		}
	}

	novelty := 1 - maxSimilarity
	if novelty < 0 {
		novelty = 0
	}
	if novelty > 1 {
		novelty = 1
	}
	return novelty
}

// cosineSimilarity computes normalized dot product. The epsilon keeps
// zero vectors from dividing by zero.
func cosineSimilarity(a, b []float32) float64 {
	const eps = 1e-10

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + eps)
}
