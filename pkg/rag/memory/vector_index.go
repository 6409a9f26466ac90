package memory

import (
	"math"
	"sort"
)

// Chunk is one retrieval unit: a slice of the source artifact plus its
// vector representation.
type Chunk struct {
	Text   string
	Index  int // position in the source document
	Vector []float32
}

// Scored pairs a chunk with its similarity to a query vector.
type Scored struct {
	Chunk Chunk
	Score float64
}

// VectorIndex is an in-memory nearest-neighbor index over document chunks.
// Built once per chat session and read-only afterwards.
type VectorIndex struct {
	chunks []Chunk
}

func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Add appends a chunk. Only called during index construction.
func (ix *VectorIndex) Add(chunk Chunk) {
	ix.chunks = append(ix.chunks, chunk)
}

// Len returns the number of indexed chunks.
func (ix *VectorIndex) Len() int {
	return len(ix.chunks)
}

// TopK returns up to k chunks ranked by cosine similarity to query,
// best first.
func (ix *VectorIndex) TopK(query []float32, k int) []Scored {
	scored := make([]Scored, 0, len(ix.chunks))
	for _, c := range ix.chunks {
		scored = append(scored, Scored{
			Chunk: c,
			Score: CosineSimilarity(query, c.Vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched or zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
