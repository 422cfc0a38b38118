package retrieval

import (
	"context"
	"time"
)

// DrillChunk is a retrieved drill fragment with its similarity score.
type DrillChunk struct {
	ID        string
	DrillID   string
	Source    string
	Text      string
	Score     float32
	Tags      string
	CreatedAt time.Time
}

// Retriever combines embedding and vector search to find drill material
// relevant to a coaching question.
type Retriever struct {
	embedder *Embedder
	store    VectorStore
}

// NewRetriever creates a Retriever backed by the given Embedder and VectorStore.
func NewRetriever(embedder *Embedder, store VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve embeds the query and returns the top-K most similar drill chunks.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]DrillChunk, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	scored, err := r.store.Search(vec, topK)
	if err != nil {
		return nil, err
	}

	return scoredToChunks(scored), nil
}

func scoredToChunks(scored []ScoredRecord) []DrillChunk {
	chunks := make([]DrillChunk, len(scored))
	for i, s := range scored {
		chunks[i] = DrillChunk{
			ID:        s.ID,
			DrillID:   s.SourceID,
			Source:    s.SourceType,
			Text:      s.TextChunk,
			Score:     s.Score,
			Tags:      s.Tags,
			CreatedAt: s.CreatedAt,
		}
	}
	return chunks
}
