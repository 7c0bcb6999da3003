package cli

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/ragline-cli/internal/core/domain"
	"github.com/custodia-labs/ragline-cli/internal/core/ports/driving"
)

// setupTestServices swaps the package-level services for mocks and
// returns a cleanup that restores the originals. While a mock is in
// place initServices skips real wiring.
func setupTestServices() func() {
	oldIngest := ingestService
	oldQuery := queryService
	oldThreads := threadService

	ingestService = &mockIngestService{}
	queryService = &mockQueryService{}
	threadService = &mockThreadService{}

	return func() {
		ingestService = oldIngest
		queryService = oldQuery
		threadService = oldThreads
	}
}

type mockIngestService struct {
	deleteOK bool
	resetErr error
}

func (m *mockIngestService) Ingest(_ context.Context, path string) (*driving.IngestResult, error) {
	return &driving.IngestResult{
		DocumentID: "abc123def4567890",
		Metadata: domain.DocumentMetadata{
			FileName: path,
			FileType: domain.FileTypeText,
		},
		ChunksCreated: 3,
	}, nil
}

func (m *mockIngestService) IngestBatch(ctx context.Context, paths []string) []driving.BatchEntry {
	entries := make([]driving.BatchEntry, 0, len(paths))
	for _, path := range paths {
		result, err := m.Ingest(ctx, path)
		entries = append(entries, driving.BatchEntry{Path: path, Result: result, Err: err})
	}
	return entries
}

func (m *mockIngestService) DeleteDocument(_ context.Context, _ string) (bool, error) {
	return m.deleteOK, nil
}

func (m *mockIngestService) Stats(_ context.Context) domain.IndexStats {
	return domain.IndexStats{TotalChunks: 42, CollectionName: "multimodal_documents"}
}

func (m *mockIngestService) Reset(_ context.Context) error {
	return m.resetErr
}

type mockQueryService struct {
	err error
}

func (m *mockQueryService) Query(_ context.Context, threadID, query string, _ domain.QueryOptions) (*domain.QueryResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if threadID == "" {
		threadID = "thread-new"
	}
	return &domain.QueryResult{
		Query:  query,
		Answer: "Mock answer about " + query,
		Retrieved: []domain.RetrievedChunk{
			{ChunkID: "c1", FileName: "notes.txt", Type: domain.ChunkTypeText, RelevanceScore: 0.91},
		},
		TotalResults:   1,
		ThreadID:       threadID,
		ProcessingTime: 120 * time.Millisecond,
	}, nil
}

func (m *mockQueryService) QueryWithHistory(ctx context.Context, threadID, query string, opts domain.QueryOptions) (*domain.QueryResult, error) {
	return m.Query(ctx, threadID, query, opts)
}

type mockThreadService struct {
	threads []domain.ThreadSummary
}

func (m *mockThreadService) Get(_ context.Context, threadID string) (*domain.Thread, error) {
	if threadID == "missing" {
		return nil, domain.ErrThreadNotFound
	}
	return &domain.Thread{
		ID:    threadID,
		Title: "What is in my notes?",
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "What is in my notes?", TokenCount: 5},
			{
				Role:       domain.RoleAssistant,
				Content:    "Your notes mention apples.",
				TokenCount: 4,
				RetrievedChunks: []domain.RetrievedChunk{
					{ChunkID: "c1", FileName: "notes.txt", RelevanceScore: 0.88},
				},
			},
		},
	}, nil
}

func (m *mockThreadService) List(_ context.Context) ([]domain.ThreadSummary, error) {
	return m.threads, nil
}

func (m *mockThreadService) Delete(_ context.Context, threadID string) (bool, error) {
	return threadID != "missing", nil
}

var errMockService = errors.New("mock service failure")
