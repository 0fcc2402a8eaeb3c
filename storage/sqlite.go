package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"cluster-pricing/utils"

	_ "modernc.org/sqlite"
)

// NewSQLiteStore opens (creating if needed) a SQLite database file.
// The pool is limited to one connection so concurrent table writes queue
// behind each other instead of failing with SQLITE_BUSY.
func NewSQLiteStore(path string, logger *utils.Logger) (*SQLStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite %s: %w", path, err)
	}

	logger.Info("Opened SQLite database %s", path)
	return &SQLStore{db: db, dialect: sqliteDialect, logger: logger}, nil
}

// DB exposes the underlying handle, used to seed input tables
func (s *SQLStore) DB() *sql.DB { return s.db }
