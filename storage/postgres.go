package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cluster-pricing/utils"

	_ "github.com/lib/pq"
)

// NewPostgresStore opens a PostgreSQL record store and pings the DB
func NewPostgresStore(ctx context.Context, connStr string, logger *utils.Logger) (*SQLStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open DB: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Minute * 5)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	logger.Info("Connected to PostgreSQL successfully")
	return &SQLStore{db: db, dialect: postgresDialect, logger: logger}, nil
}
