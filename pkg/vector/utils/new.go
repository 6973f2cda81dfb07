// Package vectorutils is the vector store utility package
package vectorutils

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pedalworks/catalogiq/pkg/vector"
	"github.com/pedalworks/catalogiq/pkg/vector/inmemory"
	"github.com/pedalworks/catalogiq/pkg/vector/postgres"
	"github.com/pedalworks/catalogiq/pkg/vector/qdrant"
	vredis "github.com/pedalworks/catalogiq/pkg/vector/redis"
	"github.com/pedalworks/catalogiq/pkg/vector/sqlite"
)

type NewStoreOpts struct {
	// ProviderType selects the backend: "postgres", "sqlite", "redis",
	// "qdrant", or "memory".
	ProviderType string

	// Target is the backend address: a connection string for postgres, a file
	// path for sqlite, host:port for redis and qdrant. Unused for memory.
	Target string

	// Prefix names the index/collection (redis key prefix, qdrant collection).
	Prefix string

	// Dims is the vector dimensionality the store is provisioned with.
	Dims int

	Logger *zap.Logger
}

// NewStore builds the configured vector store. Provisioning (Ensure) is the
// caller's responsibility so construction stays cheap.
func NewStore(ctx context.Context, o *NewStoreOpts) (vector.Store, error) {
	switch o.ProviderType {
	case "postgres":
		return postgres.NewStore(ctx, o.Target, o.Dims, o.Logger)
	case "sqlite":
		return sqlite.NewStore(o.Target, o.Dims, o.Logger)
	case "redis":
		return vredis.NewStore(vredis.Options{
			Addr:   o.Target,
			Prefix: o.Prefix,
			Dims:   o.Dims,
		}, o.Logger), nil
	case "qdrant":
		return qdrant.NewStore(o.Target, o.Prefix, o.Dims, o.Logger)
	case "memory":
		return inmemory.NewStore(o.Dims), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
