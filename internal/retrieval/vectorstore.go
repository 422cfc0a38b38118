// Package retrieval finds drill material relevant to a golfer's question by
// embedding the query and running similarity search over stored drill chunks.
package retrieval

import "time"

// VectorStore is the interface for drill vector storage and similarity
// search. The default implementation uses SQLite with brute-force cosine
// similarity, which is plenty for a personal drill library.
type VectorStore interface {
	// Insert adds records to the store.
	Insert(records []Record) error

	// Search returns the top-K records most similar to the query vector.
	Search(vector []float32, topK int) ([]ScoredRecord, error)

	// DeleteBySource removes all records derived from the given source
	// document.
	DeleteBySource(sourceID string) error

	// Count returns the number of stored records.
	Count() (int, error)
}

// Record is one embedded drill chunk.
type Record struct {
	ID         string
	SourceID   string
	SourceType string
	TextChunk  string
	Embedding  []float32
	CreatedAt  time.Time
	Tags       string // JSON array stored as text
}

// ScoredRecord is a Record with a similarity score attached.
type ScoredRecord struct {
	Record
	Score float32
}
