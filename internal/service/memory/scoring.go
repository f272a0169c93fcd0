package memory

import (
	"math"
	"sort"
	"time"

	"github.com/sosacrazy126/gptme/internal/core"
)

// Relevance combines cosine similarity with exponential time decay:
//
//	score = cosine(query, interaction) * exp(-decayRate * ageSeconds) * 100
//
// The 0-100 scale matches the configured similarity threshold.

func relevanceScore(queryVec []float32, it core.Interaction, now time.Time, decayRate float64) float64 {
	sim := cosineSimilarity(queryVec, it.Embedding)
	if sim <= 0 {
		return 0
	}

	age := now.Sub(it.Timestamp).Seconds()
	if age < 0 {
		age = 0
	}
	return sim * math.Exp(-decayRate*age) * 100
}

func rankBySimilarity(candidates []core.Interaction, queryVec []float32, now time.Time, decayRate, threshold float64) []core.Interaction {
	type scored struct {
		it    core.Interaction
		score float64
	}

	var kept []scored
	for _, it := range candidates {
		if score := relevanceScore(queryVec, it, now, decayRate); score >= threshold {
			kept = append(kept, scored{it: it, score: score})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].score > kept[j].score
	})

	ranked := make([]core.Interaction, 0, len(kept))
	for _, s := range kept {
		ranked = append(ranked, s.it)
	}
	return ranked
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
