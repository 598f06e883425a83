// Package sqlite provides a persistent IndexedCorpus backed by SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Segments, their typed metadata (as JSON)
// and their embeddings (as little-endian float32 BLOBs) live in a single table.
//
// # Search
//
// Release version and control id filters run in SQL; similarity is computed
// in Go over the remaining rows. This is a brute-force scan, which is
// adequate for benchmark-sized corpora (tens of thousands of segments).
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.stig-assist/corpus/corpus.db
package sqlite
