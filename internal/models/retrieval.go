package models

// ChunkRef addresses a chunk inside its document
type ChunkRef struct {
	DocumentID string `json:"document_id"`
	ChunkIndex int    `json:"chunk_index"`
}

// CorpusEntry is one candidate chunk as exposed by the document store
type CorpusEntry struct {
	Chunk        Chunk
	ChunkIndex   int
	DocumentID   string
	DocumentName string
	OwnerID      string
}

// RetrievalResult is a scored chunk. Transient, never persisted.
type RetrievalResult struct {
	ChunkRef     ChunkRef `json:"chunk_ref"`
	DocumentID   string   `json:"document_id"`
	DocumentName string   `json:"document_name"`
	Text         string   `json:"text"`
	Score        float64  `json:"score"` // Cosine similarity in [-1, 1]
	Page         *int     `json:"page,omitempty"`
}
