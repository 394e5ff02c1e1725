package vector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// Postgres error codes checked by PGVectorIndex.
const (
	pqUndefinedTable = "42P01"
	pqInvalidCatalog = "3D000"
)

// PGVectorIndex stores collections in Postgres with the pgvector extension. Distances come from
// the <=> cosine distance operator.
type PGVectorIndex struct {
	db         *sql.DB
	collection string
	dimensions int
}

// OpenPGVectorIndex connects to dsn and opens an existing collection.
func OpenPGVectorIndex(ctx context.Context, dsn, collection string) (*PGVectorIndex, error) {
	db, err := openPG(ctx, dsn)
	if err != nil {
		return nil, err
	}
	var dims int
	err = db.QueryRowContext(ctx,
		`SELECT dimensions FROM notesearch_collections WHERE name = $1`, collection).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) || isPQCode(err, pqUndefinedTable) {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %q", ErrCollectionNotFound, collection)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	return &PGVectorIndex{db: db, collection: collection, dimensions: dims}, nil
}

// CreatePGVectorIndex creates the extension, tables and collection as needed and opens it.
func CreatePGVectorIndex(ctx context.Context, dsn, collection string, dimensions int) (*PGVectorIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	db, err := openPG(ctx, dsn)
	if err != nil {
		return nil, err
	}
	schema := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS notesearch_collections (
			name TEXT PRIMARY KEY,
			dimensions INTEGER NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS notesearch_records (
			seq BIGSERIAL PRIMARY KEY,
			collection TEXT NOT NULL REFERENCES notesearch_collections(name) ON DELETE CASCADE,
			id TEXT NOT NULL,
			document TEXT NOT NULL,
			metadata JSONB,
			embedding vector NOT NULL,
			UNIQUE (collection, id)
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO notesearch_collections (name, dimensions) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		collection, dimensions); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}
	var existing int
	if err := db.QueryRowContext(ctx,
		`SELECT dimensions FROM notesearch_collections WHERE name = $1`, collection).Scan(&existing); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}
	if existing != dimensions {
		_ = db.Close()
		return nil, fmt.Errorf("%w: collection %q has %d, requested %d", ErrDimensionMismatch, collection, existing, dimensions)
	}
	return &PGVectorIndex{db: db, collection: collection, dimensions: dimensions}, nil
}

func openPG(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: empty postgres dsn", ErrStoreNotFound)
	}
	connector, err := pq.NewConnector(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		if isPQCode(err, pqInvalidCatalog) {
			return nil, fmt.Errorf("%w: %v", ErrStoreNotFound, err)
		}
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

func isPQCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}

// Add upserts records in one transaction.
func (p *PGVectorIndex) Add(ctx context.Context, records []Record) error {
	prepared, err := prepareRecords(records, p.dimensions)
	if err != nil {
		return err
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, r := range prepared {
		meta, err := encodeMetadata(r.Metadata)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO notesearch_records (collection, id, document, metadata, embedding)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (collection, id) DO UPDATE SET
				document = EXCLUDED.document,
				metadata = EXCLUDED.metadata,
				embedding = EXCLUDED.embedding`,
			p.collection, r.ID, r.Document, meta, pgvector.NewVector(r.Embedding))
		if err != nil {
			return fmt.Errorf("insert record %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Query returns the nResults records nearest to embedding by cosine distance.
func (p *PGVectorIndex) Query(ctx context.Context, embedding []float32, nResults int) (*QueryResult, error) {
	if len(embedding) != p.dimensions {
		return nil, fmt.Errorf("%w: query has %d, collection expects %d", ErrDimensionMismatch, len(embedding), p.dimensions)
	}
	res := &QueryResult{}
	if nResults <= 0 {
		return res, nil
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, document, COALESCE(metadata::text, ''), embedding <=> $1 AS distance
		FROM notesearch_records
		WHERE collection = $2
		ORDER BY distance, seq
		LIMIT $3`,
		pgvector.NewVector(embedding), p.collection, nResults)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, doc, meta string
			distance      sql.NullFloat64
		)
		if err := rows.Scan(&id, &doc, &meta, &distance); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		m, err := decodeMetadata(meta)
		if err != nil {
			return nil, err
		}
		// <=> yields NULL for zero vectors; treat as maximally distant.
		d := 1.0
		if distance.Valid {
			d = distance.Float64
		}
		res.IDs = append(res.IDs, id)
		res.Documents = append(res.Documents, doc)
		res.Metadatas = append(res.Metadatas, m)
		res.Distances = append(res.Distances, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return res, nil
}

// Count returns the number of records in the collection.
func (p *PGVectorIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notesearch_records WHERE collection = $1`, p.collection).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Dimensions returns the collection's embedding dimension.
func (p *PGVectorIndex) Dimensions() int {
	return p.dimensions
}

// Close closes the connection pool.
func (p *PGVectorIndex) Close() error {
	return p.db.Close()
}
