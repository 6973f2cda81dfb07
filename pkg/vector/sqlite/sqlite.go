// Package sqlite provides the SQLite-backed relational vector store, used
// for embedded and single-node deployments.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // register the sqlite3 driver
	"go.uber.org/zap"

	"github.com/pedalworks/catalogiq/pkg/vector/sqlstore"
)

// NewStore opens a SQLite-backed store at the given path. Use ":memory:" for
// an in-memory database.
func NewStore(dbPath string, dims int, logger *zap.Logger) (*sqlstore.Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return sqlstore.New(db, sqlstore.DialectSQLite, dims, logger), nil
}
