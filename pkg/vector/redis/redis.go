// Package redis implements the vector store over Redis hashes with a
// RediSearch HNSW index. Each product is one hash keyed "<prefix>:<id>"; the
// embedding is stored as a raw little-endian float32 blob that doubles as the
// indexed vector field, so exact reads and approximate search share one copy.
package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pedalworks/catalogiq/pkg/vector"
)

// HNSW construction parameters, fixed at provisioning time. They trade
// recall for build and query cost.
const (
	hnswM              = 16
	hnswEFConstruction = 200
)

// scanPageSize bounds one SCAN page when enumerating records.
const scanPageSize = 200

// Options configures the Redis connection and index.
type Options struct {
	Addr     string
	Password string
	DB       int

	// Prefix keys every hash and names the search index ("<Prefix>_idx").
	Prefix string

	// Dims is the vector dimensionality declared on the HNSW field.
	Dims int
}

// Store implements vector.Store and vector.NativeSearcher on Redis.
type Store struct {
	client *redis.Client
	prefix string
	index  string
	dims   int
	logger *zap.Logger
}

// NewStore creates a Redis-backed store. The search commands are issued over
// RESP2 so FT.SEARCH replies keep their flat array form.
func NewStore(opts Options, logger *zap.Logger) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		Protocol: 2,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "product_vectors"
	}

	return &Store{
		client: client,
		prefix: prefix,
		index:  prefix + "_idx",
		dims:   opts.Dims,
		logger: logger,
	}
}

func (s *Store) key(productID int) string {
	return fmt.Sprintf("%s:%d", s.prefix, productID)
}

// Ensure declares the HNSW search index over the key prefix. An index that
// already exists is success, which also covers two processes racing the
// creation.
func (s *Store) Ensure(ctx context.Context) error {
	err := s.client.Do(ctx,
		"FT.CREATE", s.index,
		"ON", "HASH",
		"PREFIX", "1", s.prefix+":",
		"SCHEMA",
		"product_id", "NUMERIC",
		"text", "TEXT",
		"embedding", "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(s.dims),
		"DISTANCE_METRIC", "COSINE",
		"M", strconv.Itoa(hnswM),
		"EF_CONSTRUCTION", strconv.Itoa(hnswEFConstruction),
	).Err()
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil
		}
		return fmt.Errorf("%w: creating index %s: %v", vector.ErrUnavailable, s.index, err)
	}

	s.logger.Info("created redis vector index",
		zap.String("index", s.index),
		zap.Int("dims", s.dims),
	)
	return nil
}

// Upsert writes one hash per record. HSET replaces the named fields wholesale,
// so a re-indexed product fully overwrites its prior value.
func (s *Store) Upsert(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		if s.dims > 0 && len(r.Embedding) != s.dims {
			return fmt.Errorf("%w: product %d has %d dimensions, index declared with %d",
				vector.ErrDimensionMismatch, r.ProductID, len(r.Embedding), s.dims)
		}
	}

	pipe := s.client.Pipeline()
	for _, r := range records {
		pipe.HSet(ctx, s.key(r.ProductID),
			"product_id", r.ProductID,
			"text", r.Text,
			"embedding", vector.EncodeEmbedding(r.Embedding),
		)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: upserting %d records: %v", vector.ErrUnavailable, len(records), err)
	}

	s.logger.Debug("upserted product vectors", zap.Int("count", len(records)))
	return nil
}

func recordFromHash(fields map[string]string) (*vector.Record, error) {
	productID, err := strconv.Atoi(fields["product_id"])
	if err != nil {
		return nil, fmt.Errorf("invalid product_id field: %w", err)
	}

	embedding, err := vector.DecodeEmbedding([]byte(fields["embedding"]))
	if err != nil {
		return nil, fmt.Errorf("decoding embedding for product %d: %w", productID, err)
	}

	return &vector.Record{
		ID:        productID,
		ProductID: productID,
		Text:      fields["text"],
		Embedding: embedding,
	}, nil
}

// GetByProductID returns the record for a product, or vector.ErrNotFound.
func (s *Store) GetByProductID(ctx context.Context, productID int) (*vector.Record, error) {
	fields, err := s.client.HGetAll(ctx, s.key(productID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: reading product %d: %v", vector.ErrUnavailable, productID, err)
	}
	if len(fields) == 0 {
		return nil, vector.ErrNotFound
	}
	return recordFromHash(fields)
}

// GetByID resolves the id against ProductID: redis assigns no record ids of
// its own, the hash key is derived from the product.
func (s *Store) GetByID(ctx context.Context, id int) (*vector.Record, error) {
	return s.GetByProductID(ctx, id)
}

func (s *Store) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		page, next, err := s.client.Scan(ctx, cursor, s.prefix+":*", scanPageSize).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: scanning keys: %v", vector.ErrUnavailable, err)
		}
		keys = append(keys, page...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

// ListAll enumerates every record via SCAN pages, ordered by product id.
func (s *Store) ListAll(ctx context.Context) ([]vector.Record, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]vector.Record, 0, len(keys))
	for _, key := range keys {
		fields, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", vector.ErrUnavailable, key, err)
		}
		if len(fields) == 0 {
			// Key expired or deleted between SCAN and read.
			continue
		}
		r, err := recordFromHash(fields)
		if err != nil {
			s.logger.Warn("skipping malformed record", zap.String("key", key), zap.Error(err))
			continue
		}
		records = append(records, *r)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].ProductID < records[j].ProductID
	})
	return records, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Clear deletes every record hash. The index definition stays; it simply
// covers no keys afterwards.
func (s *Store) Clear(ctx context.Context) error {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: deleting %d keys: %v", vector.ErrUnavailable, len(keys), err)
	}
	return nil
}

// NativeSearch runs an approximate KNN query against the HNSW index.
// RediSearch reports cosine distance; similarity is 1 - distance.
func (s *Store) NativeSearch(ctx context.Context, embedding []float32, limit int, minScore float32) ([]vector.SearchResult, error) {
	if s.dims > 0 && len(embedding) != s.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index declared with %d",
			vector.ErrBackendRejected, len(embedding), s.dims)
	}

	query := fmt.Sprintf("*=>[KNN %d @embedding $vec AS dist]", limit)
	raw, err := s.client.Do(ctx,
		"FT.SEARCH", s.index, query,
		"PARAMS", "2", "vec", string(vector.EncodeEmbedding(embedding)),
		"SORTBY", "dist", "ASC",
		"RETURN", "3", "product_id", "text", "dist",
		"LIMIT", "0", strconv.Itoa(limit),
		"DIALECT", "2",
	).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: searching index %s: %v", vector.ErrUnavailable, s.index, err)
	}

	results, err := parseSearchReply(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing search reply: %w", err)
	}

	filtered := results[:0]
	for _, r := range results {
		if r.Similarity >= minScore {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// parseSearchReply unpacks the flat RESP2 FT.SEARCH reply:
// [total, key1, [field, value, ...], key2, ...].
func parseSearchReply(raw any) ([]vector.SearchResult, error) {
	reply, ok := raw.([]any)
	if !ok || len(reply) == 0 {
		return nil, fmt.Errorf("unexpected reply type %T", raw)
	}

	var results []vector.SearchResult
	for i := 1; i+1 < len(reply); i += 2 {
		fieldList, ok := reply[i+1].([]any)
		if !ok {
			return nil, fmt.Errorf("unexpected document entry type %T", reply[i+1])
		}

		fields := make(map[string]string, len(fieldList)/2)
		for j := 0; j+1 < len(fieldList); j += 2 {
			name, _ := fieldList[j].(string)
			value, _ := fieldList[j+1].(string)
			fields[name] = value
		}

		productID, err := strconv.Atoi(fields["product_id"])
		if err != nil {
			return nil, fmt.Errorf("invalid product_id in search reply: %w", err)
		}
		dist, err := strconv.ParseFloat(fields["dist"], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid dist in search reply: %w", err)
		}

		results = append(results, vector.SearchResult{
			ProductID:  productID,
			Text:       fields["text"],
			Similarity: 1 - float32(dist),
		})
	}
	return results, nil
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

var (
	_ vector.Store          = (*Store)(nil)
	_ vector.NativeSearcher = (*Store)(nil)
)
