package retrieval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/models"
)

func entry(owner, docID string, index int, text string, embedding ...float32) models.CorpusEntry {
	return models.CorpusEntry{
		Chunk:        models.Chunk{Text: text, Embedding: embedding},
		ChunkIndex:   index,
		DocumentID:   docID,
		DocumentName: docID + ".txt",
		OwnerID:      owner,
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
		ok       bool
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1, true},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0, true},
		{"opposite", []float32{1, -2, 3}, []float32{-1, 2, -3}, -1, true},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1, true},
		{"zero query", []float32{0, 0}, []float32{1, 1}, 0, false},
		{"zero candidate", []float32{1, 1}, []float32{0, 0}, 0, false},
		{"length mismatch", []float32{1, 1}, []float32{1, 1, 1}, 0, false},
		{"empty", nil, nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ok := CosineSimilarity(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.expected, score, 1e-9)
		})
	}
}

func TestRetrieve_RanksDescendingWithStableTies(t *testing.T) {
	corpus := []models.CorpusEntry{
		entry("alice", "doc1", 0, "low", 0, 1),
		entry("alice", "doc1", 1, "tie-first", 1, 1),
		entry("alice", "doc2", 0, "best", 1, 0),
		entry("alice", "doc2", 1, "tie-second", 1, 1),
	}

	results := Retrieve("alice", []float32{1, 0}, corpus, 10)
	require.Len(t, results, 4)

	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	assert.Equal(t, []string{"best", "tie-first", "tie-second", "low"}, texts)
	assert.Equal(t, models.ChunkRef{DocumentID: "doc2", ChunkIndex: 0}, results[0].ChunkRef)
	assert.Equal(t, "doc2.txt", results[0].DocumentName)
}

func TestRetrieve_TopKBound(t *testing.T) {
	corpus := []models.CorpusEntry{
		entry("alice", "d", 0, "a", 1, 0),
		entry("alice", "d", 1, "b", 1, 1),
		entry("alice", "d", 2, "zero", 0, 0),
		entry("alice", "d", 3, "c", 0, 1),
	}

	tests := []struct {
		topK     int
		expected int
	}{
		{1, 1},
		{2, 2},
		{3, 3},
		{10, 3}, // The zero vector is not eligible
		{0, 3},  // Falls back to the default of 5
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("topK=%d", tt.topK), func(t *testing.T) {
			results := Retrieve("alice", []float32{1, 0}, corpus, tt.topK)
			assert.Len(t, results, tt.expected)
		})
	}
}

func TestRetrieve_TenantIsolation(t *testing.T) {
	t.Log("=== Testing another owner's better matches are never returned")

	corpus := []models.CorpusEntry{
		entry("bob", "bob-doc", 0, "bob exact", 1, 0),
		entry("alice", "alice-doc", 0, "alice weak", 0.1, 1),
		entry("bob", "bob-doc", 1, "bob close", 0.9, 0.1),
		entry("alice", "alice-doc", 1, "alice weaker", 0, 1),
	}

	results := Retrieve("alice", []float32{1, 0}, corpus, 5)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "alice-doc", r.DocumentID)
	}

	assert.Empty(t, Retrieve("", []float32{1, 0}, corpus, 5))
	assert.Empty(t, Retrieve("carol", []float32{1, 0}, corpus, 5))
}

func TestRetrieve_EmptyInputs(t *testing.T) {
	corpus := []models.CorpusEntry{entry("alice", "d", 0, "a", 1, 0)}

	assert.NotNil(t, Retrieve("alice", nil, corpus, 5))
	assert.Empty(t, Retrieve("alice", nil, corpus, 5))
	assert.Empty(t, Retrieve("alice", []float32{1, 0}, nil, 5))
	assert.Empty(t, Retrieve("alice", []float32{0, 0}, corpus, 5))
}

func TestRetrieve_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	corpus := make([]models.CorpusEntry, 200)
	for i := range corpus {
		vector := make([]float32, 16)
		for j := range vector {
			// Coarse values produce plenty of exact ties
			vector[j] = float32(rng.Intn(3) - 1)
		}
		corpus[i] = entry("alice", fmt.Sprintf("doc%d", i/10), i%10, fmt.Sprintf("chunk %d", i), vector...)
	}
	query := make([]float32, 16)
	for j := range query {
		query[j] = float32(rng.Intn(3) - 1)
	}
	query[0] = 1

	first := Retrieve("alice", query, corpus, 25)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Retrieve("alice", query, corpus, 25))
	}
	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i-1].Score, first[i].Score)
	}
	for _, r := range first {
		assert.False(t, math.IsNaN(r.Score))
		assert.LessOrEqual(t, r.Score, 1.0)
		assert.GreaterOrEqual(t, r.Score, -1.0)
	}
}

func TestRetrieve_CarriesPage(t *testing.T) {
	page := 3
	e := entry("alice", "d", 0, "paged", 1, 0)
	e.Chunk.SourcePage = &page

	results := Retrieve("alice", []float32{1, 0}, []models.CorpusEntry{e}, 5)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Page)
	assert.Equal(t, 3, *results[0].Page)
}

// mockDocumentStorage serves a fixed corpus
type mockDocumentStorage struct {
	corpus   []models.CorpusEntry
	err      error
	askedFor []string
}

func (m *mockDocumentStorage) SaveDocument(ctx context.Context, doc *models.Document) error {
	return nil
}
func (m *mockDocumentStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return nil, nil
}
func (m *mockDocumentStorage) ListDocuments(ctx context.Context, ownerID string) ([]*models.Document, error) {
	return nil, nil
}
func (m *mockDocumentStorage) DeleteDocument(ctx context.Context, ownerID, id string) error {
	return nil
}
func (m *mockDocumentStorage) ListChunksForOwner(ctx context.Context, ownerID string) ([]models.CorpusEntry, error) {
	m.askedFor = append(m.askedFor, ownerID)
	return m.corpus, m.err
}

func TestLinearIndex_Search(t *testing.T) {
	storage := &mockDocumentStorage{
		corpus: []models.CorpusEntry{
			entry("alice", "d", 0, "match", 1, 0),
			entry("mallory", "m", 0, "leak", 1, 0),
		},
	}
	index := NewLinearIndex(storage, arbor.NewLogger())

	results, err := index.Search(context.Background(), "alice", []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "match", results[0].Text)
	assert.Equal(t, []string{"alice"}, storage.askedFor)
}

func TestLinearIndex_EmptyQuerySkipsStorage(t *testing.T) {
	storage := &mockDocumentStorage{}
	index := NewLinearIndex(storage, arbor.NewLogger())

	results, err := index.Search(context.Background(), "alice", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, storage.askedFor)
}

func TestLinearIndex_StorageError(t *testing.T) {
	storage := &mockDocumentStorage{err: errors.New("disk gone")}
	index := NewLinearIndex(storage, arbor.NewLogger())

	_, err := index.Search(context.Background(), "alice", []float32{1}, 5)
	assert.Error(t, err)
}
