package storage

import (
	"context"
	"strings"

	"cluster-pricing/utils"
)

// Open resolves a location to a record store:
//
//	s3://bucket/prefix          CSV objects in S3
//	sqlite://path/to/file.db    SQLite database
//	postgres://... postgresql://...
//	anything else               local directory of CSV files
func Open(ctx context.Context, location string, s3opts S3Options, logger *utils.Logger) (RecordStore, error) {
	switch {
	case strings.HasPrefix(location, "s3://"):
		bucket, prefix, err := ParseS3URI(location)
		if err != nil {
			return nil, err
		}
		client, err := NewS3Client(ctx, s3opts)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, bucket, prefix, logger), nil

	case strings.HasPrefix(location, "sqlite://"):
		store, err := NewSQLiteStore(strings.TrimPrefix(location, "sqlite://"), logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		store, err := NewPostgresStore(ctx, location, logger)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return NewDirStore(location, logger), nil
	}
}

// IsRemote reports whether writes to the location cross the network and are worth retrying
func IsRemote(location string) bool {
	for _, p := range []string{"s3://", "postgres://", "postgresql://"} {
		if strings.HasPrefix(location, p) {
			return true
		}
	}
	return false
}
