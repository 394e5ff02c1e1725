package vector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DatabaseFile is the SQLite file created inside the storage location.
const DatabaseFile = "notes.sqlite3"

// SQLiteIndex stores one named collection in a SQLite database inside the storage location.
// Queries scan the collection and rank by cosine distance in Go.
type SQLiteIndex struct {
	db         *sql.DB
	collection string
	dimensions int
}

// DatabasePath returns the SQLite file path for a storage location.
func DatabasePath(location string) string {
	return filepath.Join(location, DatabaseFile)
}

// OpenSQLiteIndex opens an existing collection. It fails with ErrStoreNotFound when the location
// has no database and with ErrCollectionNotFound when the collection was never created.
func OpenSQLiteIndex(ctx context.Context, location, collection string) (*SQLiteIndex, error) {
	dbPath := DatabasePath(location)
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, dbPath)
		}
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	var dims int
	err = db.QueryRowContext(ctx, `SELECT dimensions FROM collections WHERE name = ?`, collection).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %q", ErrCollectionNotFound, collection)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	return &SQLiteIndex{db: db, collection: collection, dimensions: dims}, nil
}

// CreateSQLiteIndex creates the location, database and collection as needed and opens it.
// Creating an existing collection with the same dimensions is a no-op.
func CreateSQLiteIndex(ctx context.Context, location, collection string, dimensions int) (*SQLiteIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if err := os.MkdirAll(location, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage location: %w", err)
	}
	db, err := openDB(DatabasePath(location))
	if err != nil {
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO collections (name, dimensions) VALUES (?, ?)`, collection, dimensions); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	var existing int
	if err := db.QueryRowContext(ctx, `SELECT dimensions FROM collections WHERE name = ?`, collection).Scan(&existing); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	if existing != dimensions {
		_ = db.Close()
		return nil, fmt.Errorf("%w: collection %q has %d, requested %d", ErrDimensionMismatch, collection, existing, dimensions)
	}
	return &SQLiteIndex{db: db, collection: collection, dimensions: dimensions}, nil
}

func openDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		dimensions INTEGER NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		document TEXT NOT NULL,
		metadata TEXT,
		embedding BLOB NOT NULL,
		FOREIGN KEY (collection) REFERENCES collections(name) ON DELETE CASCADE,
		UNIQUE (collection, id)
	);

	CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Add inserts or replaces records in one transaction.
func (s *SQLiteIndex) Add(ctx context.Context, records []Record) error {
	prepared, err := prepareRecords(records, s.dimensions)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, id, document, metadata, embedding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			document = excluded.document,
			metadata = excluded.metadata,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range prepared {
		meta, err := encodeMetadata(r.Metadata)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, s.collection, r.ID, r.Document, meta, float32SliceToBytes(r.Embedding)); err != nil {
			return fmt.Errorf("insert record %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Query scans the collection and returns the nResults records nearest to embedding.
func (s *SQLiteIndex) Query(ctx context.Context, embedding []float32, nResults int) (*QueryResult, error) {
	if len(embedding) != s.dimensions {
		return nil, fmt.Errorf("%w: query has %d, collection expects %d", ErrDimensionMismatch, len(embedding), s.dimensions)
	}
	if nResults <= 0 {
		return &QueryResult{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, document, metadata, embedding FROM records WHERE collection = ? ORDER BY seq`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var scored []scoredRecord
	for rows.Next() {
		var (
			r    Record
			meta sql.NullString
			blob []byte
		)
		if err := rows.Scan(&r.ID, &r.Document, &meta, &blob); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if r.Metadata, err = decodeMetadata(meta.String); err != nil {
			return nil, err
		}
		r.Embedding = bytesToFloat32Slice(blob)
		scored = append(scored, scoredRecord{record: r, distance: cosineDistance(embedding, r.Embedding)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return nearest(scored, nResults), nil
}

// Count returns the number of records in the collection.
func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE collection = ?`, s.collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Dimensions returns the collection's embedding dimension.
func (s *SQLiteIndex) Dimensions() int {
	return s.dimensions
}

// Close closes the database.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}
