// Package qdrant implements the vector store over a dedicated Qdrant
// collection. One point per product, point id derived from the product id,
// payload carrying the product id, the embedded text, and a raw copy of the
// embedding for audit and debugging.
package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	pb "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/pedalworks/catalogiq/pkg/vector"
)

// scrollPageSize bounds one Scroll page when enumerating records.
const scrollPageSize = 256

// Store is the sole owner of all Qdrant operations.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	dims        int
	logger      *zap.Logger
}

// NewStore creates a Store connected to Qdrant at the given gRPC address.
func NewStore(addr, collection string, dims int, logger *zap.Logger) (*Store, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial qdrant %s: %w", addr, err)
	}
	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
		dims:        dims,
		logger:      logger,
	}, nil
}

func (s *Store) collectionExists(ctx context.Context) (bool, error) {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return false, fmt.Errorf("%w: listing collections: %v", vector.ErrUnavailable, err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			return true, nil
		}
	}
	return false, nil
}

// Ensure creates the collection with the configured dimensionality and cosine
// distance if it does not exist. A concurrent creation losing the race is
// treated as success.
func (s *Store) Ensure(ctx context.Context) error {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(s.dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists ||
			strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil
		}
		return fmt.Errorf("%w: creating collection %s: %v", vector.ErrUnavailable, s.collection, err)
	}

	s.logger.Info("created qdrant collection",
		zap.String("collection", s.collection),
		zap.Int("dims", s.dims),
	)
	return nil
}

// Upsert stores one point per record, keyed by product id so re-indexing
// replaces the prior point.
func (s *Store) Upsert(ctx context.Context, records []vector.Record) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		if s.dims > 0 && len(r.Embedding) != s.dims {
			return fmt.Errorf("%w: product %d has %d dimensions, collection declared with %d",
				vector.ErrDimensionMismatch, r.ProductID, len(r.Embedding), s.dims)
		}

		rawEmbedding, err := json.Marshal(r.Embedding)
		if err != nil {
			return fmt.Errorf("encoding embedding for product %d: %w", r.ProductID, err)
		}

		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Num{Num: uint64(r.ProductID)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: r.Embedding},
				},
			},
			Payload: map[string]*pb.Value{
				"product_id": {Kind: &pb.Value_IntegerValue{IntegerValue: int64(r.ProductID)}},
				"text":       {Kind: &pb.Value_StringValue{StringValue: r.Text}},
				"embedding":  {Kind: &pb.Value_StringValue{StringValue: string(rawEmbedding)}},
			},
		}
	}

	wait := true
	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("%w: upserting %d points: %v", vector.ErrUnavailable, len(points), err)
	}

	s.logger.Debug("upserted product vectors", zap.Int("count", len(records)))
	return nil
}

func recordFromPayload(id uint64, payload map[string]*pb.Value, data []float32) *vector.Record {
	productID := int(id)
	if v, ok := payload["product_id"]; ok {
		productID = int(v.GetIntegerValue())
	}
	return &vector.Record{
		ID:        productID,
		ProductID: productID,
		Text:      payload["text"].GetStringValue(),
		Embedding: data,
	}
}

// GetByProductID retrieves the point whose id matches the product id, or
// vector.ErrNotFound.
func (s *Store) GetByProductID(ctx context.Context, productID int) (*vector.Record, error) {
	resp, err := s.points.Get(ctx, &pb.GetPoints{
		CollectionName: s.collection,
		Ids: []*pb.PointId{
			{PointIdOptions: &pb.PointId_Num{Num: uint64(productID)}},
		},
		WithPayload: &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		WithVectors: &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: getting product %d: %v", vector.ErrUnavailable, productID, err)
	}

	result := resp.GetResult()
	if len(result) == 0 {
		return nil, vector.ErrNotFound
	}

	point := result[0]
	return recordFromPayload(
		point.GetId().GetNum(),
		point.GetPayload(),
		point.GetVectors().GetVector().GetData(),
	), nil
}

// GetByID resolves the id against ProductID: point ids are derived from the
// product, there is no separate record id.
func (s *Store) GetByID(ctx context.Context, id int) (*vector.Record, error) {
	return s.GetByProductID(ctx, id)
}

// ListAll scrolls through every point in the collection.
func (s *Store) ListAll(ctx context.Context) ([]vector.Record, error) {
	var records []vector.Record
	var offset *pb.PointId
	limit := uint32(scrollPageSize)

	for {
		resp, err := s.points.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: s.collection,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
			WithVectors:    &pb.WithVectorsSelector{SelectorOptions: &pb.WithVectorsSelector_Enable{Enable: true}},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: scrolling collection %s: %v", vector.ErrUnavailable, s.collection, err)
		}

		for _, point := range resp.GetResult() {
			records = append(records, *recordFromPayload(
				point.GetId().GetNum(),
				point.GetPayload(),
				point.GetVectors().GetVector().GetData(),
			))
		}

		offset = resp.GetNextPageOffset()
		if offset == nil || len(resp.GetResult()) == 0 {
			return records, nil
		}
	}
}

// Count returns the exact number of points, 0 when the collection does not
// exist yet.
func (s *Store) Count(ctx context.Context) (int, error) {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}

	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: counting points: %v", vector.ErrUnavailable, err)
	}
	return int(resp.GetResult().GetCount()), nil
}

// Clear drops the collection. Ensure re-creates it on next use.
func (s *Store) Clear(ctx context.Context) error {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	if _, err := s.collections.Delete(ctx, &pb.DeleteCollection{
		CollectionName: s.collection,
	}); err != nil {
		return fmt.Errorf("%w: deleting collection %s: %v", vector.ErrUnavailable, s.collection, err)
	}

	s.logger.Info("deleted qdrant collection", zap.String("collection", s.collection))
	return nil
}

// NativeSearch runs a nearest-neighbor query with the given score threshold.
// Qdrant enforces exact dimensionality, so a mismatched query is rejected
// before it goes on the wire.
func (s *Store) NativeSearch(ctx context.Context, embedding []float32, limit int, minScore float32) ([]vector.SearchResult, error) {
	if s.dims > 0 && len(embedding) != s.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection declared with %d",
			vector.ErrBackendRejected, len(embedding), s.dims)
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		ScoreThreshold: &minScore,
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: searching collection %s: %v", vector.ErrUnavailable, s.collection, err)
	}

	results := make([]vector.SearchResult, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		payload := point.GetPayload()
		productID := int(point.GetId().GetNum())
		if v, ok := payload["product_id"]; ok {
			productID = int(v.GetIntegerValue())
		}
		results = append(results, vector.SearchResult{
			ProductID:  productID,
			Text:       payload["text"].GetStringValue(),
			Similarity: point.GetScore(),
		})
	}
	return results, nil
}

// Close closes the underlying gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

var (
	_ vector.Store          = (*Store)(nil)
	_ vector.NativeSearcher = (*Store)(nil)
)
