package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Aman-CERP/knowledgeengine/internal/errdefs"
	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

const (
	dbFileName     = "knowledge.db"
	vectorFileName = "vectors.hnsw"
)

// Store is the single embedded-database persistence layer: SQLite for
// documents/chunks/full-text search, fronted by an in-memory HNSW graph for
// vector search. One process holds the write lock at a time.
type Store struct {
	dir  string
	db   *sql.DB
	lock *FileLock

	mu  sync.Mutex // guards vec, serializing Add/Save/Close against concurrent readers of the graph
	vec VectorStore
}

// Open acquires the store directory's advisory lock, opens (creating if
// absent) the SQLite database in WAL mode with a single writer connection,
// and loads or initializes the HNSW vector index.
func Open(ctx context.Context, dir string, vecCfg VectorStoreConfig) (*Store, error) {
	lock := NewFileLock(dir)
	if err := lock.Lock(); err != nil {
		return nil, errdefs.NewStoreError(errdefs.SubkindIO, "failed to acquire store lock", err)
	}

	dbPath := filepath.Join(dir, dbFileName)
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, errdefs.NewStoreError(errdefs.SubkindIO, "failed to open database", err)
	}
	db.SetMaxOpenConns(1) // single-writer: WAL readers elsewhere use separate connections

	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, errdefs.NewStoreError(errdefs.SubkindIO, "failed to apply pragma", err)
		}
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, errdefs.NewStoreError(errdefs.SubkindMigrationFailed, "failed to apply schema", err)
	}
	if err := checkSchemaVersion(ctx, db); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	vectorPath := filepath.Join(dir, vectorFileName)
	vec, err := openVectorStore(vectorPath, vecCfg)
	if err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}

	return &Store{dir: dir, db: db, lock: lock, vec: vec}, nil
}

func openVectorStore(path string, cfg VectorStoreConfig) (VectorStore, error) {
	vec, err := NewHNSWStore(cfg)
	if err != nil {
		return nil, errdefs.NewStoreError(errdefs.SubkindIO, "failed to initialize vector index", err)
	}
	if err := vec.Load(path); err != nil {
		// Absent on first run; start empty rather than failing.
		return vec, nil
	}
	return vec, nil
}

func checkSchemaVersion(ctx context.Context, db *sql.DB) error {
	var raw string
	err := db.QueryRowContext(ctx, `SELECT value FROM schema_state WHERE key = 'schema_version'`).Scan(&raw)
	if err == sql.ErrNoRows {
		_, err := db.ExecContext(ctx, `INSERT INTO schema_state(key, value) VALUES ('schema_version', ?)`, strconv.Itoa(CurrentSchemaVersion))
		if err != nil {
			return errdefs.NewStoreError(errdefs.SubkindMigrationFailed, "failed to stamp schema version", err)
		}
		return nil
	}
	if err != nil {
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to read schema version", err)
	}
	version, err := strconv.Atoi(raw)
	if err != nil || version != CurrentSchemaVersion {
		return errdefs.NewStoreError(errdefs.SubkindMigrationFailed, fmt.Sprintf("database schema version %q is incompatible with %d", raw, CurrentSchemaVersion), nil)
	}
	return nil
}

// Close flushes the vector index to disk, closes the database, and
// releases the directory lock.
func (s *Store) Close() error {
	s.mu.Lock()
	vecErr := s.vec.Save(filepath.Join(s.dir, vectorFileName))
	closeErr := s.vec.Close()
	s.mu.Unlock()

	dbErr := s.db.Close()
	lockErr := s.lock.Unlock()

	for _, err := range []error{vecErr, closeErr, dbErr, lockErr} {
		if err != nil {
			return errdefs.NewStoreError(errdefs.SubkindIO, "failed to close store cleanly", err)
		}
	}
	return nil
}

// SaveDocument inserts or updates doc and returns its assigned ID.
func (s *Store) SaveDocument(ctx context.Context, doc *model.Document) (int64, error) {
	metaJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return 0, errdefs.NewStoreError(errdefs.SubkindConstraint, "failed to marshal document metadata", err)
	}
	now := time.Now().UTC()

	if doc.ID == 0 {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO documents(source, media_type, media_path, content, title, metadata, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			doc.Source, doc.MediaType, doc.MediaPath, doc.Content, doc.Title, string(metaJSON), now, now,
		)
		if err != nil {
			return 0, errdefs.NewStoreError(errdefs.SubkindIO, "failed to insert document", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, errdefs.NewStoreError(errdefs.SubkindIO, "failed to read inserted document id", err)
		}
		doc.ID = id
		return id, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE documents SET source=?, media_type=?, media_path=?, content=?, title=?, metadata=?, updated_at=? WHERE id=?`,
		doc.Source, doc.MediaType, doc.MediaPath, doc.Content, doc.Title, string(metaJSON), now, doc.ID,
	)
	if err != nil {
		return 0, errdefs.NewStoreError(errdefs.SubkindIO, "failed to update document", err)
	}
	return doc.ID, nil
}

// SaveChunks persists chunks (stamping each with documentID), assigning
// each a row ID, and indexes any populated embeddings into the vector
// store. Chunks are saved in their given order, which becomes chunk_index
// if not already set by the splitter.
func (s *Store) SaveChunks(ctx context.Context, documentID int64, chunks []*model.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks(document_id, chunk_index, chunk_type, content, embedding_input, language, heading_path, start_line, end_line, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to prepare chunk insert", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, c := range chunks {
		c.DocumentID = documentID
		headingJSON, err := json.Marshal(c.HeadingPath)
		if err != nil {
			return errdefs.NewStoreError(errdefs.SubkindConstraint, "failed to marshal heading path", err)
		}
		metaJSON, err := json.Marshal(c.Metadata)
		if err != nil {
			return errdefs.NewStoreError(errdefs.SubkindConstraint, "failed to marshal chunk metadata", err)
		}

		res, err := stmt.ExecContext(ctx, documentID, c.ChunkIndex, string(c.ChunkType), c.Content, c.EmbeddingInput, c.Language, string(headingJSON), c.StartLine, c.EndLine, string(metaJSON), now)
		if err != nil {
			return errdefs.NewStoreError(errdefs.SubkindIO, "failed to insert chunk", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return errdefs.NewStoreError(errdefs.SubkindIO, "failed to read inserted chunk id", err)
		}
		c.ID = id
		c.CreatedAt = now
	}

	if err := tx.Commit(); err != nil {
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to commit chunk insert", err)
	}

	return s.indexEmbeddings(ctx, chunks)
}

func (s *Store) indexEmbeddings(ctx context.Context, chunks []*model.Chunk) error {
	var ids []string
	var vecs [][]float32
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		ids = append(ids, strconv.FormatInt(c.ID, 10))
		vecs = append(vecs, c.Embedding)
	}
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.vec.Add(ctx, ids, vecs); err != nil {
		var dimErr ErrDimensionMismatch
		if asDimErr(err, &dimErr) {
			return errdefs.NewStoreError(errdefs.SubkindVectorDimMismatch, dimErr.Error(), err)
		}
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to index chunk embeddings", err)
	}
	return nil
}

func asDimErr(err error, target *ErrDimensionMismatch) bool {
	if e, ok := err.(ErrDimensionMismatch); ok {
		*target = e
		return true
	}
	return false
}

// GetDocument loads a document by ID.
func (s *Store) GetDocument(ctx context.Context, id int64) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, media_type, media_path, content, title, metadata, created_at, updated_at FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// GetDocumentBySource loads the most recently created document matching
// source, used by reprocess to find the document to re-run.
func (s *Store) GetDocumentBySource(ctx context.Context, source string) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, media_type, media_path, content, title, metadata, created_at, updated_at FROM documents WHERE source = ? ORDER BY id DESC LIMIT 1`, source)
	return scanDocument(row)
}

func scanDocument(row *sql.Row) (*model.Document, error) {
	var doc model.Document
	var metaJSON string
	if err := row.Scan(&doc.ID, &doc.Source, &doc.MediaType, &doc.MediaPath, &doc.Content, &doc.Title, &metaJSON, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, errdefs.NewStoreError(errdefs.SubkindNotFound, "document not found", err)
		}
		return nil, errdefs.NewStoreError(errdefs.SubkindIO, "failed to scan document", err)
	}
	if err := json.Unmarshal([]byte(metaJSON), &doc.Metadata); err != nil {
		return nil, errdefs.NewStoreError(errdefs.SubkindConstraint, "failed to unmarshal document metadata", err)
	}
	return &doc, nil
}

// GetChunk loads a single chunk by ID.
func (s *Store) GetChunk(ctx context.Context, id int64) (*model.Chunk, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, chunk_index, chunk_type, content, embedding_input, language, heading_path, start_line, end_line, metadata, created_at
		 FROM chunks WHERE id = ?`, id)
	return scanChunk(row)
}

// GetChunksByDocument returns all chunks for a document in chunk_index order.
func (s *Store) GetChunksByDocument(ctx context.Context, documentID int64) ([]*model.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document_id, chunk_index, chunk_type, content, embedding_input, language, heading_path, start_line, end_line, metadata, created_at
		 FROM chunks WHERE document_id = ? ORDER BY chunk_index ASC`, documentID)
	if err != nil {
		return nil, errdefs.NewStoreError(errdefs.SubkindIO, "failed to query chunks", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		c, err := scanChunkRows(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, rows.Err()
}

func scanChunk(row *sql.Row) (*model.Chunk, error) {
	var c model.Chunk
	var chunkType, headingJSON, metaJSON string
	if err := row.Scan(&c.ID, &c.DocumentID, &c.ChunkIndex, &chunkType, &c.Content, &c.EmbeddingInput, &c.Language, &headingJSON, &c.StartLine, &c.EndLine, &metaJSON, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, errdefs.NewStoreError(errdefs.SubkindNotFound, "chunk not found", err)
		}
		return nil, errdefs.NewStoreError(errdefs.SubkindIO, "failed to scan chunk", err)
	}
	return finishChunk(&c, chunkType, headingJSON, metaJSON)
}

func scanChunkRows(rows *sql.Rows) (*model.Chunk, error) {
	var c model.Chunk
	var chunkType, headingJSON, metaJSON string
	if err := rows.Scan(&c.ID, &c.DocumentID, &c.ChunkIndex, &chunkType, &c.Content, &c.EmbeddingInput, &c.Language, &headingJSON, &c.StartLine, &c.EndLine, &metaJSON, &c.CreatedAt); err != nil {
		return nil, errdefs.NewStoreError(errdefs.SubkindIO, "failed to scan chunk", err)
	}
	return finishChunk(&c, chunkType, headingJSON, metaJSON)
}

func finishChunk(c *model.Chunk, chunkType, headingJSON, metaJSON string) (*model.Chunk, error) {
	c.ChunkType = model.ChunkType(chunkType)
	if err := json.Unmarshal([]byte(headingJSON), &c.HeadingPath); err != nil {
		return nil, errdefs.NewStoreError(errdefs.SubkindConstraint, "failed to unmarshal heading path", err)
	}
	if err := json.Unmarshal([]byte(metaJSON), &c.Metadata); err != nil {
		return nil, errdefs.NewStoreError(errdefs.SubkindConstraint, "failed to unmarshal chunk metadata", err)
	}
	return c, nil
}

// DeleteDocument removes a document and, via ON DELETE CASCADE, its chunks
// and their FTS rows; the corresponding vectors are removed from the HNSW
// index explicitly since it isn't a SQL-level foreign key.
func (s *Store) DeleteDocument(ctx context.Context, documentID int64) error {
	chunks, err := s.GetChunksByDocument(ctx, documentID)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, documentID); err != nil {
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to delete document", err)
	}

	if len(chunks) == 0 {
		return nil
	}
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = strconv.FormatInt(c.ID, 10)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.vec.Delete(ctx, ids); err != nil {
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to remove vectors for deleted document", err)
	}
	return nil
}

// DeleteChunksByRole removes every chunk of documentID whose metadata.role
// matches role, inside a transaction, and drops the corresponding vectors.
// rerun_step calls this to clear a step's prior output before re-running it.
func (s *Store) DeleteChunksByRole(ctx context.Context, documentID int64, role model.Role) error {
	chunks, err := s.GetChunksByDocument(ctx, documentID)
	if err != nil {
		return err
	}

	var ids []int64
	for _, c := range chunks {
		if c.Metadata["role"] == string(role) {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM chunks WHERE id = ?`)
	if err != nil {
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to prepare chunk delete", err)
	}
	defer stmt.Close()

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return errdefs.NewStoreError(errdefs.SubkindIO, "failed to delete chunk", err)
		}
		strIDs[i] = strconv.FormatInt(id, 10)
	}

	if err := tx.Commit(); err != nil {
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to commit chunk delete", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.vec.Delete(ctx, strIDs); err != nil {
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to remove vectors for deleted chunks", err)
	}
	return nil
}

// SearchChunks runs the requested retrieval mode(s) and returns results
// merged by Reciprocal Rank Fusion in hybrid mode.
func (s *Store) SearchChunks(ctx context.Context, opts SearchOptions) ([]model.ChunkResult, error) {
	topK := opts.TopK
	if topK <= 0 {
		topK = 10
	}

	var ftsHits []ftsHit
	var vecHits []*VectorResult
	var err error

	if opts.Mode == SearchModeFTS || opts.Mode == SearchModeHybrid {
		ftsHits, err = s.searchFTS(ctx, opts.Query, topK)
		if err != nil {
			return nil, err
		}
	}
	if opts.Mode == SearchModeVector || opts.Mode == SearchModeHybrid {
		s.mu.Lock()
		vecHits, err = s.vec.Search(ctx, opts.QueryEmbedding, topK)
		s.mu.Unlock()
		if err != nil {
			var dimErr ErrDimensionMismatch
			if asDimErr(err, &dimErr) {
				return nil, errdefs.NewStoreError(errdefs.SubkindVectorDimMismatch, dimErr.Error(), err)
			}
			return nil, errdefs.NewStoreError(errdefs.SubkindIO, "vector search failed", err)
		}
	}

	fused := fuseRRF(ftsHits, vecHits, opts.RRFK)
	if len(fused) > topK {
		fused = fused[:topK]
	}

	results := make([]model.ChunkResult, 0, len(fused))
	for _, f := range fused {
		id, err := strconv.ParseInt(f.ID, 10, 64)
		if err != nil {
			continue
		}
		chunk, err := s.GetChunk(ctx, id)
		if err != nil {
			continue
		}
		matchType := model.MatchTypeHybrid
		switch {
		case f.FTSRank > 0 && f.VecRank == 0:
			matchType = model.MatchTypeFTS
		case f.VecRank > 0 && f.FTSRank == 0:
			matchType = model.MatchTypeVector
		}
		results = append(results, model.ChunkResult{
			Chunk:      chunk,
			Score:      f.RRFScore,
			MatchType:  matchType,
			VectorRank: f.VecRank,
			FTSRank:    f.FTSRank,
		})
	}
	return results, nil
}

// EnqueueMediaTask inserts a pending media task and returns its assigned ID.
func (s *Store) EnqueueMediaTask(ctx context.Context, documentID int64, mediaPath string, mediaType model.MediaType) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO media_tasks(document_id, media_path, media_type, status, created_at) VALUES (?, ?, ?, 'pending', ?)`,
		documentID, mediaPath, string(mediaType), time.Now().UTC(),
	)
	if err != nil {
		return 0, errdefs.NewStoreError(errdefs.SubkindIO, "failed to enqueue media task", err)
	}
	return res.LastInsertId()
}

// ClaimNextMediaTask atomically selects the oldest pending task and flips it
// to processing, returning nil (no error) if none is pending. The SELECT and
// the UPDATE run in one transaction so concurrent callers never double-claim
// a row.
func (s *Store) ClaimNextMediaTask(ctx context.Context) (*model.MediaTask, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errdefs.NewStoreError(errdefs.SubkindIO, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM media_tasks WHERE status = 'pending' ORDER BY created_at ASC, id ASC LIMIT 1`,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errdefs.NewStoreError(errdefs.SubkindIO, "failed to select pending media task", err)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `UPDATE media_tasks SET status='processing', claimed_at=? WHERE id=?`, now, id); err != nil {
		return nil, errdefs.NewStoreError(errdefs.SubkindIO, "failed to claim media task", err)
	}

	task, err := scanMediaTaskTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errdefs.NewStoreError(errdefs.SubkindIO, "failed to commit media task claim", err)
	}
	return task, nil
}

// CompleteMediaTask marks a claimed task completed.
func (s *Store) CompleteMediaTask(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE media_tasks SET status='completed', completed_at=? WHERE id=?`, time.Now().UTC(), id)
	if err != nil {
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to complete media task", err)
	}
	return nil
}

// FailMediaTask marks a claimed task failed, recording the error and
// incrementing its attempt count.
func (s *Store) FailMediaTask(ctx context.Context, id int64, lastErr string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE media_tasks SET status='failed', last_error=?, attempts=attempts+1, completed_at=? WHERE id=?`,
		lastErr, time.Now().UTC(), id,
	)
	if err != nil {
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to fail media task", err)
	}
	return nil
}

// ResetMediaTask resets a failed (or stuck) task back to pending, clearing
// its error message, so process_one can retry it.
func (s *Store) ResetMediaTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE media_tasks SET status='pending', last_error='', claimed_at=NULL, completed_at=NULL WHERE id=?`, id)
	if err != nil {
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to reset media task", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errdefs.NewStoreError(errdefs.SubkindIO, "failed to confirm media task reset", err)
	}
	if n == 0 {
		return errdefs.NewQueueError(errdefs.SubkindNotFound, "media task not found")
	}
	return nil
}

// CountPendingMediaTasks reports the number of tasks still awaiting claim.
func (s *Store) CountPendingMediaTasks(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM media_tasks WHERE status='pending'`).Scan(&n)
	if err != nil {
		return 0, errdefs.NewStoreError(errdefs.SubkindIO, "failed to count pending media tasks", err)
	}
	return n, nil
}

func scanMediaTaskTx(ctx context.Context, tx *sql.Tx, id int64) (*model.MediaTask, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, document_id, media_path, media_type, status, attempts, last_error, created_at, claimed_at, completed_at
		 FROM media_tasks WHERE id = ?`, id)
	return scanMediaTask(row)
}

func scanMediaTask(row *sql.Row) (*model.MediaTask, error) {
	var t model.MediaTask
	var mediaType, status string
	var claimedAt, completedAt sql.NullTime
	if err := row.Scan(&t.ID, &t.DocumentID, &t.MediaPath, &mediaType, &status, &t.Attempts, &t.LastError, &t.CreatedAt, &claimedAt, &completedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, errdefs.NewQueueError(errdefs.SubkindNotFound, "media task not found")
		}
		return nil, errdefs.NewStoreError(errdefs.SubkindIO, "failed to scan media task", err)
	}
	t.MediaType = model.MediaType(mediaType)
	t.Status = model.TaskStatus(status)
	if claimedAt.Valid {
		t.ClaimedAt = &claimedAt.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return &t, nil
}

func (s *Store) searchFTS(ctx context.Context, query string, topK int) ([]ftsHit, error) {
	if query == "" {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT rowid, bm25(chunks_fts) AS rank FROM chunks_fts WHERE chunks_fts MATCH ? ORDER BY rank LIMIT ?`,
		query, topK)
	if err != nil {
		return nil, errdefs.NewStoreError(errdefs.SubkindIO, "full-text search failed", err)
	}
	defer rows.Close()

	var hits []ftsHit
	for rows.Next() {
		var id int64
		var rank float64
		if err := rows.Scan(&id, &rank); err != nil {
			return nil, errdefs.NewStoreError(errdefs.SubkindIO, "failed to scan fts result", err)
		}
		// bm25() returns lower-is-better; invert so Score follows
		// higher-is-better like the vector branch.
		hits = append(hits, ftsHit{ID: strconv.FormatInt(id, 10), Score: -rank})
	}
	return hits, rows.Err()
}
