package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cluster-pricing/models"
	"cluster-pricing/utils"

	"github.com/redis/go-redis/v9"
)

// RedisWriter mirrors output tables into Redis so pricing services can read
// recommendations without touching the record store. Each table is a list of
// JSON rows at <prefix>:<table>.
type RedisWriter struct {
	client *redis.Client
	prefix string
	logger *utils.Logger
}

// RedisOptions configures the Redis mirror
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisWriter connects to Redis and verifies the connection
func NewRedisWriter(ctx context.Context, opts RedisOptions, logger *utils.Logger) (*RedisWriter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	logger.Info("Connected to Redis at %s", opts.Addr)
	return &RedisWriter{client: client, prefix: opts.Prefix, logger: logger}, nil
}

// TableKey is the list key holding a table's rows
func TableKey(prefix, table string) string {
	if prefix == "" {
		return table
	}
	return prefix + ":" + table
}

// encodeRows renders each row as a JSON object keyed by column name.
// Decimal cells are emitted as JSON numbers with three fractional digits.
func encodeRows(t Table) ([]interface{}, error) {
	out := make([]interface{}, 0, len(t.Rows))
	for i, row := range t.Rows {
		obj := make(map[string]any, len(t.Columns))
		for j, c := range t.Columns {
			v := row[j]
			if r, ok := v.(models.Rate); ok {
				v = json.Number(r.String())
			}
			obj[c.Name] = v
		}
		b, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("encode row %d of %s: %w", i+1, t.Name, err)
		}
		out = append(out, string(b))
	}
	return out, nil
}

// WriteTable replaces the table's list inside MULTI/EXEC so readers see either
// the previous rows or the new ones
func (w *RedisWriter) WriteTable(ctx context.Context, t Table) error {
	values, err := encodeRows(t)
	if err != nil {
		return err
	}

	key := TableKey(w.prefix, t.Name)
	_, err = w.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.RPush(ctx, key, values...)
		}
		pipe.Set(ctx, key+":updated_at", time.Now().UTC().Format(time.RFC3339), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace redis key %s: %w", key, err)
	}

	w.logger.Info("Table %s mirrored to redis key %s (%d rows)", t.Name, key, len(values))
	return nil
}

// Close closes the Redis connection
func (w *RedisWriter) Close() error {
	return w.client.Close()
}
