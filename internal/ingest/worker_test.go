package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fairwaylabs/fairway/internal/retrieval"
	"github.com/fairwaylabs/fairway/internal/storage"
)

type mockJobStore struct {
	job       *storage.Job
	doc       storage.DrillDoc
	docErr    error
	completed []string
	failed    map[string]string
	vectorIDs map[string]string
}

func newMockJobStore() *mockJobStore {
	return &mockJobStore{
		failed:    make(map[string]string),
		vectorIDs: make(map[string]string),
	}
}

func (m *mockJobStore) ClaimNextJob(types []string) (*storage.Job, error) {
	for _, t := range types {
		if m.job != nil && m.job.Type == t {
			job := m.job
			m.job = nil
			return job, nil
		}
	}
	return nil, nil
}

func (m *mockJobStore) CompleteJob(id string) error {
	m.completed = append(m.completed, id)
	return nil
}

func (m *mockJobStore) FailJob(id, errMsg string) error {
	m.failed[id] = errMsg
	return nil
}

func (m *mockJobStore) GetDrillDoc(id string) (storage.DrillDoc, error) {
	if m.docErr != nil {
		return storage.DrillDoc{}, m.docErr
	}
	return m.doc, nil
}

func (m *mockJobStore) UpdateDrillDocVectorID(id, vectorID string) error {
	m.vectorIDs[id] = vectorID
	return nil
}

type mockEmbedder struct {
	err   error
	calls int
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type mockInserter struct {
	records []retrieval.Record
	err     error
}

func (m *mockInserter) Insert(records []retrieval.Record) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, records...)
	return nil
}

func TestRunOnceProcessesDrillEmbedJob(t *testing.T) {
	store := newMockJobStore()
	store.job = &storage.Job{ID: "j1", Type: JobTypeDrillEmbed, PayloadJSON: `{"drill_doc_id":"d1"}`}
	store.doc = storage.DrillDoc{ID: "d1", Content: "Alignment stick drill: place two sticks on the ground.", Source: "text", Tags: `["slice"]`}

	embedder := &mockEmbedder{}
	inserter := &mockInserter{}
	w := NewWorker(store, embedder, inserter, 0)

	done, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if !done {
		t.Fatal("expected a job to be processed")
	}

	if len(store.completed) != 1 || store.completed[0] != "j1" {
		t.Errorf("job not completed: %v", store.completed)
	}
	if len(inserter.records) != 1 {
		t.Fatalf("expected 1 vector record, got %d", len(inserter.records))
	}
	rec := inserter.records[0]
	if rec.SourceID != "d1" || rec.SourceType != "text" || rec.Tags != `["slice"]` {
		t.Errorf("unexpected record %+v", rec)
	}
	if store.vectorIDs["d1"] != rec.ID {
		t.Errorf("doc vector id not updated: %v", store.vectorIDs)
	}
}

func TestRunOnceNoJob(t *testing.T) {
	w := NewWorker(newMockJobStore(), &mockEmbedder{}, &mockInserter{}, 0)

	done, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if done {
		t.Error("expected no job processed")
	}
}

func TestRunOnceMarksFailedOnEmbedError(t *testing.T) {
	store := newMockJobStore()
	store.job = &storage.Job{ID: "j1", Type: JobTypeDrillEmbed, PayloadJSON: `{"drill_doc_id":"d1"}`}
	store.doc = storage.DrillDoc{ID: "d1", Content: "some drill text"}

	embedder := &mockEmbedder{err: errors.New("model down")}
	w := NewWorker(store, embedder, &mockInserter{}, 0)

	done, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if !done {
		t.Fatal("expected the job to be claimed")
	}
	if _, ok := store.failed["j1"]; !ok {
		t.Errorf("job should be marked failed: %v", store.failed)
	}
	if len(store.completed) != 0 {
		t.Errorf("job must not be completed: %v", store.completed)
	}
}

func TestRunOnceFailsOnBadPayload(t *testing.T) {
	store := newMockJobStore()
	store.job = &storage.Job{ID: "j1", Type: JobTypeDrillEmbed, PayloadJSON: `not json`}

	w := NewWorker(store, &mockEmbedder{}, &mockInserter{}, 0)

	if _, err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if _, ok := store.failed["j1"]; !ok {
		t.Error("job with bad payload should be marked failed")
	}
}

func TestRunOnceFailsOnEmptyDoc(t *testing.T) {
	store := newMockJobStore()
	store.job = &storage.Job{ID: "j1", Type: JobTypeDrillEmbed, PayloadJSON: `{"drill_doc_id":"d1"}`}
	store.doc = storage.DrillDoc{ID: "d1", Content: "   "}

	w := NewWorker(store, &mockEmbedder{}, &mockInserter{}, 0)

	if _, err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if _, ok := store.failed["j1"]; !ok {
		t.Error("job for empty doc should be marked failed")
	}
}

func TestRunOnceChunksLongContent(t *testing.T) {
	store := newMockJobStore()
	store.job = &storage.Job{ID: "j1", Type: JobTypeDrillEmbed, PayloadJSON: `{"drill_doc_id":"d1"}`}

	var long string
	for i := 0; i < 40; i++ {
		long += "This is a sentence about drills and practice routines for amateur golfers. "
	}
	store.doc = storage.DrillDoc{ID: "d1", Content: long}

	inserter := &mockInserter{}
	w := NewWorker(store, &mockEmbedder{}, inserter, 0)

	if _, err := w.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(inserter.records) < 2 {
		t.Errorf("expected long content to be split into multiple chunks, got %d", len(inserter.records))
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w := NewWorker(newMockJobStore(), &mockEmbedder{}, &mockInserter{}, 10*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancel")
	}
}
