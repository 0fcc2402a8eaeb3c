package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cluster-pricing/models"
	"cluster-pricing/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by S3Store
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures the S3 client
type S3Options struct {
	Region         string
	Endpoint       string // non-empty for S3-compatible stores such as MinIO or R2
	ForcePathStyle bool
	AccessKey      string // static credentials; empty uses the default AWS chain
	SecretKey      string
}

// S3Store keeps collections as CSV objects under s3://bucket/prefix
type S3Store struct {
	client S3API
	bucket string
	prefix string
	logger *utils.Logger
}

// NewS3Client builds an S3 client from options and the default AWS config chain
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loaders := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.ForcePathStyle
	}), nil
}

// NewS3Store creates a store over an existing client
func NewS3Store(client S3API, bucket, prefix string, logger *utils.Logger) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), logger: logger}
}

// ParseS3URI splits s3://bucket/some/prefix into bucket and prefix
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("s3 uri %q has no bucket", uri)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

func (s *S3Store) key(name string) string {
	return path.Join(s.prefix, name+".csv")
}

func (s *S3Store) get(ctx context.Context, collection string) (io.ReadCloser, error) {
	key := s.key(collection)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

// LoadProducts reads products.csv under the prefix
func (s *S3Store) LoadProducts(ctx context.Context) ([]models.Product, error) {
	body, err := s.get(ctx, CollectionProducts)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	products, err := readProductsCSV(body)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Loaded %d products from s3://%s/%s", len(products), s.bucket, s.key(CollectionProducts))
	return products, nil
}

// LoadBookings reads bookings.csv under the prefix
func (s *S3Store) LoadBookings(ctx context.Context) ([]models.Booking, error) {
	body, err := s.get(ctx, CollectionBookings)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	bookings, err := readBookingsCSV(body)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Loaded %d bookings from s3://%s/%s", len(bookings), s.bucket, s.key(CollectionBookings))
	return bookings, nil
}

// WriteTable uploads the table as one object; a PUT replaces the object atomically
func (s *S3Store) WriteTable(ctx context.Context, t Table) error {
	var buf bytes.Buffer
	if err := writeCSV(&buf, t); err != nil {
		return err
	}

	key := s.key(t.Name)
	contentType := "text/csv"
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", s.bucket, key, err)
	}

	s.logger.Info("Table %s uploaded to s3://%s/%s (%d rows)", t.Name, s.bucket, key, len(t.Rows))
	return nil
}

// Close is a no-op; the S3 client holds no connection state to release
func (s *S3Store) Close() error { return nil }
