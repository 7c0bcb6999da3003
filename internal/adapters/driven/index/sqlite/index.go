// Package sqlite implements the vector index on a single SQLite file.
// Embeddings are stored as little-endian float32 blobs next to their
// chunk metadata; similarity search is a brute-force cosine scan,
// which is plenty for the corpus sizes a local assistant handles.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragline-cli/internal/adapters/driven/embedding"
	"github.com/custodia-labs/ragline-cli/internal/adapters/driven/index/sqlite/migrations"
	"github.com/custodia-labs/ragline-cli/internal/core/domain"
	"github.com/custodia-labs/ragline-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragline-cli/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// DefaultTopK is the result count when the caller does not specify one.
const DefaultTopK = 5

// Index is a SQLite-backed vector index over chunk embeddings.
type Index struct {
	// mu lets queries run concurrently while Reset gets exclusive
	// access. Row-level consistency within a batch comes from SQLite
	// transactions, not this lock.
	mu sync.RWMutex

	db         *sql.DB
	engine     driven.EmbeddingEngine
	collection string
	path       string
}

// New creates a vector index in the given data directory. If dataDir
// is empty, defaults to ~/.ragline/data.
func New(dataDir, collection string, engine driven.EmbeddingEngine) (*Index, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragline", "data")
	}
	if collection == "" {
		collection = "multimodal_documents"
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	// WAL mode so readers are not blocked by the writer
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	idx := &Index{
		db:         db,
		engine:     engine,
		collection: collection,
		path:       dbPath,
	}

	if err := idx.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return idx, nil
}

// migrate runs all pending migrations.
func (idx *Index) migrate(fsys embed.FS) error {
	_, err := idx.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := idx.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := idx.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := idx.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Add embeds each chunk and writes the whole batch in one transaction.
// Existing chunks for the same document are replaced, so re-ingesting
// a file is an overwrite rather than a duplicate.
func (idx *Index) Add(ctx context.Context, chunks []domain.Chunk, documentID string) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	// Embed outside the transaction: network calls do not belong
	// inside an open write txn.
	vectors := make([][]float32, len(chunks))
	degraded := make([]bool, len(chunks))
	for i, chunk := range chunks {
		switch chunk.Type {
		case domain.ChunkTypeImage:
			vectors[i] = idx.engine.EmbedImage(ctx, chunk.ImageData)
		default:
			vec, deg, err := idx.engine.EmbedText(ctx, chunk.Content)
			if err != nil {
				return 0, fmt.Errorf("%w: embedding chunk %s: %w", domain.ErrStoreWrite, chunk.ID, err)
			}
			vectors[i] = vec
			degraded[i] = deg
		}
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin transaction: %w", domain.ErrStoreWrite, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return 0, fmt.Errorf("%w: clearing previous chunks: %w", domain.ErrStoreWrite, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, chunk_type, content, image_data,
			file_name, page_number, image_index, sequence, degraded, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare insert: %w", domain.ErrStoreWrite, err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		_, err := stmt.ExecContext(ctx,
			chunk.ID, documentID, string(chunk.Type), chunk.Content, chunk.ImageData,
			chunk.FileName, chunk.PageNumber, chunk.ImageIndex, chunk.Sequence,
			boolToInt(degraded[i]), encodeVector(vectors[i]))
		if err != nil {
			return 0, fmt.Errorf("%w: inserting chunk %s: %w", domain.ErrStoreWrite, chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", domain.ErrStoreWrite, err)
	}

	logger.Debug("indexed %d chunks for document %s", len(chunks), documentID)
	return len(chunks), nil
}

// Query embeds the query text and scans for the nearest chunks. Any
// failure is logged and absorbed into an empty result.
func (idx *Index) Query(ctx context.Context, queryText string, opts domain.QueryOptions) []domain.RetrievedChunk {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	queryVec, degraded, err := idx.engine.EmbedQuery(ctx, queryText)
	if err != nil {
		logger.Warn("query embedding failed, returning no results: %v", err)
		return nil
	}
	if degraded {
		logger.Warn("query embedded via fallback encoder, relevance may suffer")
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	where, args, err := buildWhere(opts)
	if err != nil {
		logger.Warn("invalid query filter, returning no results: %v", err)
		return nil
	}

	query := "SELECT id, document_id, chunk_type, content, file_name, page_number, embedding FROM chunks" + where
	rows, err := idx.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Warn("vector scan failed, returning no results: %v", err)
		return nil
	}
	defer rows.Close()

	type scored struct {
		chunk domain.RetrievedChunk
		score float64
	}
	var results []scored

	for rows.Next() {
		var (
			c         domain.RetrievedChunk
			chunkType string
			blob      []byte
		)
		if err := rows.Scan(&c.ChunkID, &c.DocumentID, &chunkType, &c.Content, &c.FileName, &c.PageNumber, &blob); err != nil {
			logger.Warn("skipping unreadable row: %v", err)
			continue
		}
		c.Type = domain.ChunkType(chunkType)

		// Vectors are unit length (or zero), so cosine similarity is
		// the relevance score directly: 1 minus the cosine distance.
		c.RelevanceScore = embedding.CosineSimilarity(queryVec, decodeVector(blob))
		results = append(results, scored{chunk: c, score: c.RelevanceScore})
	}
	if err := rows.Err(); err != nil {
		logger.Warn("vector scan aborted, returning partial results: %v", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	out := make([]domain.RetrievedChunk, len(results))
	for i, r := range results {
		out[i] = r.chunk
	}
	return out
}

// buildWhere translates query options into a SQL WHERE clause.
func buildWhere(opts domain.QueryOptions) (string, []any, error) {
	var clauses []string
	var args []any

	if !opts.IncludeImages {
		clauses = append(clauses, "chunk_type != ?")
		args = append(args, string(domain.ChunkTypeImage))
	}

	if opts.Filter != nil && !opts.Filter.IsEmpty() {
		if err := opts.Filter.Validate(); err != nil {
			return "", nil, err
		}
		for _, cond := range opts.Filter.Conditions() {
			column, err := filterColumn(cond.Field)
			if err != nil {
				return "", nil, err
			}
			switch cond.Op {
			case domain.OpEq:
				clauses = append(clauses, column+" = ?")
				args = append(args, cond.Values[0])
			case domain.OpNe:
				clauses = append(clauses, column+" != ?")
				args = append(args, cond.Values[0])
			case domain.OpIn:
				placeholders := strings.Repeat("?,", len(cond.Values))
				clauses = append(clauses, column+" IN ("+placeholders[:len(placeholders)-1]+")")
				for _, v := range cond.Values {
					args = append(args, v)
				}
			default:
				return "", nil, fmt.Errorf("%w: unsupported filter op %q", domain.ErrInvalidInput, cond.Op)
			}
		}
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// filterColumn maps a filter field to its column. The allow-list keeps
// filter input out of SQL identifiers.
func filterColumn(field string) (string, error) {
	switch field {
	case domain.FieldDocumentID:
		return "document_id", nil
	case domain.FieldChunkType:
		return "chunk_type", nil
	case domain.FieldFileName:
		return "file_name", nil
	case domain.FieldPageNumber:
		return "page_number", nil
	default:
		return "", fmt.Errorf("%w: unknown filter field %q", domain.ErrInvalidInput, field)
	}
}

// Delete removes all chunks belonging to a document.
func (idx *Index) Delete(ctx context.Context, documentID string) (bool, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	result, err := idx.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	if err != nil {
		return false, fmt.Errorf("%w: deleting document %s: %w", domain.ErrStoreWrite, documentID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: reading delete count: %w", domain.ErrStoreWrite, err)
	}
	if affected > 0 {
		logger.Info("deleted %d chunks for document %s", affected, documentID)
	}
	return affected > 0, nil
}

// Stats returns the live chunk count and collection name.
func (idx *Index) Stats(ctx context.Context) domain.IndexStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	stats := domain.IndexStats{CollectionName: idx.collection}

	row := idx.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks")
	if err := row.Scan(&stats.TotalChunks); err != nil {
		logger.Warn("failed to count chunks: %v", err)
		stats.TotalChunks = 0
	}
	return stats
}

// Reset drops every chunk. Takes the write lock so no query observes
// a half-cleared index.
func (idx *Index) Reset(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, err := idx.db.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("%w: resetting index: %w", domain.ErrStoreWrite, err)
	}
	logger.Info("vector index reset")
	return nil
}

// Path returns the database file path.
func (idx *Index) Path() string {
	return idx.path
}

// Close closes the database connection.
func (idx *Index) Close() error {
	return idx.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
