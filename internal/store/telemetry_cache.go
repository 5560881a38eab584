package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"fightworker/internal/telemetry"
)

// ErrCacheMiss distinguishes "not cached yet" from real failures.
var ErrCacheMiss = errors.New("telemetry not in cache")

const (
	putRetries     = 3
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 2 * time.Second
)

// TelemetryCache stores raw telemetry documents in S3 as gzip'd JSON so a
// reprocessed match never hits the telemetry CDN twice. Keys are
// telemetry/{matchID}.json.gz.
type TelemetryCache struct {
	client *s3.Client
	bucket string
}

// NewTelemetryCache builds an S3-backed cache for the given bucket.
func NewTelemetryCache(ctx context.Context, bucket, region string) (*TelemetryCache, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &TelemetryCache{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
	}, nil
}

func cacheKey(matchID string) string {
	return "telemetry/" + matchID + ".json.gz"
}

// Get fetches and decompresses a cached telemetry document. A missing object
// returns ErrCacheMiss.
func (c *TelemetryCache) Get(ctx context.Context, matchID string) ([]byte, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(cacheKey(matchID)),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("get cached telemetry: %w", err)
	}
	defer out.Body.Close()

	compressed, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read cached telemetry: %w", err)
	}
	if !telemetry.IsGzip(compressed) {
		// Stored uncompressed by an older backfill; accept as is.
		return compressed, nil
	}
	return telemetry.Gunzip(compressed)
}

// Put compresses and stores a raw telemetry document with bounded
// exponential backoff. Callers treat failures as non-fatal; the cache is an
// optimization, not a source of truth.
func (c *TelemetryCache) Put(ctx context.Context, matchID string, raw []byte) error {
	compressed, err := telemetry.Gzip(raw)
	if err != nil {
		return fmt.Errorf("compress telemetry: %w", err)
	}

	var lastErr error
	backoff := initialBackoff
	for attempt := 1; attempt <= putRetries; attempt++ {
		_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:          aws.String(c.bucket),
			Key:             aws.String(cacheKey(matchID)),
			Body:            bytes.NewReader(compressed),
			ContentType:     aws.String("application/json"),
			ContentEncoding: aws.String("gzip"),
		})
		if err == nil {
			return nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
	return fmt.Errorf("put cached telemetry after %d attempts: %w", putRetries, lastErr)
}
