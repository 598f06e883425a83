package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/stig-assist/internal/adapters/driven/corpus"
	"github.com/custodia-labs/stig-assist/internal/adapters/driven/corpus/sqlite/migrations"
	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.IndexedCorpus = (*Store)(nil)

// DatabaseFile is the corpus file name inside the data directory.
const DatabaseFile = "corpus.db"

// Store is a SQLite-backed IndexedCorpus.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite corpus in the specified data directory.
// If dataDir is empty, defaults to ~/.stig-assist/corpus.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".stig-assist", "corpus")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations and records each applied version.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_segments.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		logger.Debug("Applied corpus migration %s", name)
	}

	return nil
}

func (s *Store) applyMigration(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// Add appends segments in one transaction. Segments whose id already exists are skipped.
func (s *Store) Add(ctx context.Context, segments []domain.Segment) error {
	if len(segments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO segments (id, control_id, release_version, chunk_index, content, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range segments {
		seg := &segments[i]
		if len(seg.Embedding) == 0 {
			return fmt.Errorf("%w: segment %s has no embedding", domain.ErrInvalidInput, seg.ID)
		}

		metadataJSON, err := json.Marshal(seg.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling segment metadata: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, seg.ID, seg.Metadata.ControlID, seg.Metadata.ReleaseVersion.String(),
			seg.Metadata.ChunkIndex, seg.Content, string(metadataJSON), float32SliceToBytes(seg.Embedding)); err != nil {
			return fmt.Errorf("saving segment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search scores every segment passing the filter and returns the k most similar.
func (s *Store) Search(
	ctx context.Context, query []float32, k int, filter domain.SegmentFilter,
) ([]domain.SearchResult, error) {
	if k <= 0 || len(query) == 0 {
		return []domain.SearchResult{}, nil
	}

	where, args := filterClause(filter)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, metadata, embedding
		FROM segments`+where+`
		ORDER BY rowid
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying segments: %w", err)
	}
	defer rows.Close()

	var results []domain.SearchResult //nolint:prealloc // size unknown from query
	skipped := 0
	for rows.Next() {
		seg, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}

		score, ok := corpus.Cosine(query, seg.Embedding)
		if !ok {
			skipped++
			continue
		}
		seg.Embedding = nil
		results = append(results, domain.SearchResult{Segment: *seg, Score: score})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segments: %w", err)
	}
	if skipped > 0 {
		logger.Warn("Skipped %d segments with mismatched embedding dimensions", skipped)
	}

	return corpus.TopK(results, k), nil
}

// Count returns the number of stored segments.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM segments").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting segments: %w", err)
	}
	return n, nil
}

// filterClause translates a filter to a WHERE clause.
// Control id matching is a case-sensitive substring test.
func filterClause(filter domain.SegmentFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if filter.ReleaseVersion.IsKnown() {
		conds = append(conds, "release_version = ?")
		args = append(args, filter.ReleaseVersion.String())
	}
	if filter.ExcludeReleaseVersion.IsKnown() {
		conds = append(conds, "release_version != ?")
		args = append(args, filter.ExcludeReleaseVersion.String())
	}
	if filter.ControlIDContains != "" {
		conds = append(conds, "instr(control_id, ?) > 0")
		args = append(args, filter.ControlIDContains)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ==================== Helper Functions ====================

// scanSegment scans a segment from *sql.Rows.
func scanSegment(rows *sql.Rows) (*domain.Segment, error) {
	var seg domain.Segment
	var embeddingBlob []byte
	var metadataJSON string

	if err := rows.Scan(&seg.ID, &seg.Content, &metadataJSON, &embeddingBlob); err != nil {
		return nil, fmt.Errorf("scanning segment: %w", err)
	}

	seg.Embedding = bytesToFloat32Slice(embeddingBlob)

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &seg.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling segment metadata: %w", err)
		}
	}

	return &seg, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
