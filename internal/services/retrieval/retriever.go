package retrieval

import (
	"math"
	"sort"

	"github.com/ternarybob/docqa/internal/models"
)

// DefaultTopK is used when a caller passes a non-positive topK
const DefaultTopK = 5

// Retrieve ranks the owner's chunks by cosine similarity to query and
// returns at most topK results, best first. Entries owned by anyone else
// are dropped before scoring. Chunks whose similarity is undefined (zero
// norm or dimension mismatch) are excluded. Ties keep corpus order.
func Retrieve(ownerID string, query []float32, corpus []models.CorpusEntry, topK int) []models.RetrievalResult {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(query) == 0 || len(corpus) == 0 || ownerID == "" {
		return []models.RetrievalResult{}
	}

	queryNorm := norm(query)
	if queryNorm == 0 {
		return []models.RetrievalResult{}
	}

	results := make([]models.RetrievalResult, 0, len(corpus))
	for _, entry := range corpus {
		if entry.OwnerID != ownerID {
			continue
		}

		score, ok := cosineWithNorm(query, queryNorm, entry.Chunk.Embedding)
		if !ok {
			continue
		}

		results = append(results, models.RetrievalResult{
			ChunkRef: models.ChunkRef{
				DocumentID: entry.DocumentID,
				ChunkIndex: entry.ChunkIndex,
			},
			DocumentID:   entry.DocumentID,
			DocumentName: entry.DocumentName,
			Text:         entry.Chunk.Text,
			Score:        score,
			Page:         entry.Chunk.SourcePage,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// CosineSimilarity returns dot(a, b) / (|a| * |b|). ok is false when
// either norm is zero or the lengths differ.
func CosineSimilarity(a, b []float32) (float64, bool) {
	return cosineWithNorm(a, norm(a), b)
}

func cosineWithNorm(a []float32, aNorm float64, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 || aNorm == 0 {
		return 0, false
	}

	var dot, bSum float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		bSum += float64(b[i]) * float64(b[i])
	}
	if bSum == 0 {
		return 0, false
	}

	score := dot / (aNorm * math.Sqrt(bSum))

	// Clamp float rounding drift
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return score, true
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
