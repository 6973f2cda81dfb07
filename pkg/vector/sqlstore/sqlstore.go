// Package sqlstore implements the relational fallback vector store: one row
// per record in a plain table, no native vector index. Search over it is
// always brute-force. The postgres and sqlite packages provide the concrete
// constructors; everything here is shared between them.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pedalworks/catalogiq/pkg/vector"
)

// Dialect selects the SQL flavor for placeholders and DDL.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Store implements vector.Store over database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	dims    int
	logger  *zap.Logger
}

// New wraps an open database handle. The caller owns driver selection; see
// the postgres and sqlite subpackages.
func New(db *sql.DB, dialect Dialect, dims int, logger *zap.Logger) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		dims:    dims,
		logger:  logger,
	}
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS product_vectors (
		record_id  INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL UNIQUE,
		text       TEXT NOT NULL,
		embedding  BLOB NOT NULL
	)`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS product_vectors (
		record_id  BIGSERIAL PRIMARY KEY,
		product_id BIGINT NOT NULL UNIQUE,
		text       TEXT NOT NULL,
		embedding  BYTEA NOT NULL
	)`

// Ensure creates the table if it does not exist. Two racing initializations
// can both hit the create; a loser whose create errors still succeeds as long
// as the table is there afterwards.
func (s *Store) Ensure(ctx context.Context) error {
	schema := sqliteSchema
	if s.dialect == DialectPostgres {
		schema = postgresSchema
	}

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		var probe int
		if probeErr := s.db.QueryRowContext(ctx,
			`SELECT 1 FROM product_vectors LIMIT 1`,
		).Scan(&probe); probeErr == nil || errors.Is(probeErr, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("%w: creating product_vectors table: %v", vector.ErrUnavailable, err)
	}
	return nil
}

// rebind rewrites ? placeholders to the dialect's form.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Upsert writes each record inside one transaction, replacing any prior row
// for the same product. The transaction keeps a batch all-or-nothing, so a
// failed flush never leaves a partially written record behind.
func (s *Store) Upsert(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		if s.dims > 0 && len(r.Embedding) != s.dims {
			return fmt.Errorf("%w: product %d has %d dimensions, store configured for %d",
				vector.ErrDimensionMismatch, r.ProductID, len(r.Embedding), s.dims)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", vector.ErrUnavailable, err)
	}
	defer tx.Rollback()

	stmt := s.rebind(`
		INSERT INTO product_vectors (product_id, text, embedding)
		VALUES (?, ?, ?)
		ON CONFLICT (product_id) DO UPDATE SET
			text = excluded.text,
			embedding = excluded.embedding`)

	for _, r := range records {
		if _, err := tx.ExecContext(ctx, stmt,
			r.ProductID, r.Text, vector.EncodeEmbedding(r.Embedding),
		); err != nil {
			return fmt.Errorf("%w: upserting product %d: %v", vector.ErrUnavailable, r.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing upsert: %v", vector.ErrUnavailable, err)
	}

	s.logger.Debug("upserted product vectors", zap.Int("count", len(records)))
	return nil
}

func (s *Store) scanRecord(row *sql.Row) (*vector.Record, error) {
	var r vector.Record
	var blob []byte
	if err := row.Scan(&r.ID, &r.ProductID, &r.Text, &blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vector.ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning record: %v", vector.ErrUnavailable, err)
	}

	embedding, err := vector.DecodeEmbedding(blob)
	if err != nil {
		return nil, fmt.Errorf("decoding embedding for product %d: %w", r.ProductID, err)
	}
	r.Embedding = embedding
	return &r, nil
}

// GetByProductID returns the record for a product, or vector.ErrNotFound.
func (s *Store) GetByProductID(ctx context.Context, productID int) (*vector.Record, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT record_id, product_id, text, embedding FROM product_vectors WHERE product_id = ?`,
	), productID)
	return s.scanRecord(row)
}

// GetByID returns the record with the given primary key, or vector.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int) (*vector.Record, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT record_id, product_id, text, embedding FROM product_vectors WHERE record_id = ?`,
	), id)
	return s.scanRecord(row)
}

// listPageSize bounds a single page read; catalog sizes can exceed what one
// result set should carry.
const listPageSize = 500

// ListAll returns every stored record, paging by record id.
func (s *Store) ListAll(ctx context.Context) ([]vector.Record, error) {
	var records []vector.Record
	lastID := 0

	query := s.rebind(`
		SELECT record_id, product_id, text, embedding
		FROM product_vectors
		WHERE record_id > ?
		ORDER BY record_id
		LIMIT ` + strconv.Itoa(listPageSize))

	for {
		rows, err := s.db.QueryContext(ctx, query, lastID)
		if err != nil {
			return nil, fmt.Errorf("%w: listing records: %v", vector.ErrUnavailable, err)
		}

		n := 0
		for rows.Next() {
			var r vector.Record
			var blob []byte
			if err := rows.Scan(&r.ID, &r.ProductID, &r.Text, &blob); err != nil {
				rows.Close()
				return nil, fmt.Errorf("%w: scanning record: %v", vector.ErrUnavailable, err)
			}
			embedding, err := vector.DecodeEmbedding(blob)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("decoding embedding for product %d: %w", r.ProductID, err)
			}
			r.Embedding = embedding
			records = append(records, r)
			lastID = r.ID
			n++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: iterating records: %v", vector.ErrUnavailable, err)
		}
		rows.Close()

		if n < listPageSize {
			return records, nil
		}
	}
}

// Count returns the number of stored records, 0 when the table is missing.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM product_vectors`,
	).Scan(&count); err != nil {
		return 0, nil
	}
	return count, nil
}

// Clear removes all records.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM product_vectors`); err != nil {
		return fmt.Errorf("%w: clearing records: %v", vector.ErrUnavailable, err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

var _ vector.Store = (*Store)(nil)
