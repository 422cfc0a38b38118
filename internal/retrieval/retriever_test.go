package retrieval

import (
	"context"
	"errors"
	"testing"
)

type mockEmbedClient struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockEmbedClient) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.vec, nil
}

type mockVectorStore struct {
	results   []ScoredRecord
	searchErr error
	gotVector []float32
	gotTopK   int
}

func (m *mockVectorStore) Insert(records []Record) error { return nil }
func (m *mockVectorStore) Search(vector []float32, topK int) ([]ScoredRecord, error) {
	m.gotVector = vector
	m.gotTopK = topK
	return m.results, m.searchErr
}
func (m *mockVectorStore) DeleteBySource(sourceID string) error { return nil }
func (m *mockVectorStore) Count() (int, error)                  { return len(m.results), nil }

func TestRetrieveMapsRecordsToChunks(t *testing.T) {
	embed := &mockEmbedClient{vec: []float32{1, 0}}
	store := &mockVectorStore{results: []ScoredRecord{
		{Record: Record{ID: "v1", SourceID: "d1", SourceType: "text", TextChunk: "slice drill"}, Score: 0.92},
	}}
	r := NewRetriever(NewEmbedder(embed), store)

	chunks, err := r.Retrieve(context.Background(), "how do I fix my slice", 3)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.ID != "v1" || c.DrillID != "d1" || c.Text != "slice drill" || c.Score != 0.92 {
		t.Errorf("unexpected chunk %+v", c)
	}
	if store.gotTopK != 3 {
		t.Errorf("topK not forwarded, got %d", store.gotTopK)
	}
	if len(store.gotVector) != 2 {
		t.Errorf("query vector not forwarded: %v", store.gotVector)
	}
}

func TestRetrieveEmbedError(t *testing.T) {
	embed := &mockEmbedClient{err: errors.New("model down")}
	r := NewRetriever(NewEmbedder(embed), &mockVectorStore{})

	if _, err := r.Retrieve(context.Background(), "query", 3); err == nil {
		t.Fatal("expected error when embedding fails")
	}
}

func TestRetrieveSearchError(t *testing.T) {
	embed := &mockEmbedClient{vec: []float32{1}}
	store := &mockVectorStore{searchErr: errors.New("db locked")}
	r := NewRetriever(NewEmbedder(embed), store)

	if _, err := r.Retrieve(context.Background(), "query", 3); err == nil {
		t.Fatal("expected error when search fails")
	}
}

func TestEmbedBatch(t *testing.T) {
	embed := &mockEmbedClient{vec: []float32{1, 2}}
	e := NewEmbedder(embed)

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
	if embed.calls != 3 {
		t.Errorf("expected 3 embed calls, got %d", embed.calls)
	}

	empty, err := e.EmbedBatch(context.Background(), nil)
	if err != nil || empty != nil {
		t.Errorf("expected nil, nil for empty input, got %v, %v", empty, err)
	}
}

func TestEmbedBatchPropagatesError(t *testing.T) {
	embed := &mockEmbedClient{err: errors.New("model down")}
	e := NewEmbedder(embed)

	if _, err := e.EmbedBatch(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error from failing embedder")
	}
}
