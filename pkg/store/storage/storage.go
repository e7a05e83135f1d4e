package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

// DoesNotExistError is returned when a path is missing. It matches os.ErrNotExist.
var DoesNotExistError = os.ErrNotExist

// Storage reads and writes whole blobs. Writes replace the target atomically:
// readers observe either the previous or the new content.
type Storage interface {
	Read(ctx context.Context, path string) ([]byte, error)
	Write(ctx context.Context, path string, data []byte) error
}

type Options struct {
	AWSProfile string
	AWSRegion  string
}

// ForLocation resolves a location into a backend and the path understood by it.
// Locations prefixed with s3:// are served from S3, anything else from the local file system.
func ForLocation(ctx context.Context, location string, opts Options) (Storage, string, error) {
	if !strings.HasPrefix(location, s3Scheme) {
		return NewFileStorage(""), location, nil
	}

	bucket, key, err := parseS3Location(location)
	if err != nil {
		return nil, "", err
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion(defaultString(opts.AWSRegion, "us-east-1")),
	}
	if opts.AWSProfile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.AWSProfile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3Storage(s3.NewFromConfig(cfg), bucket), key, nil
}

func parseS3Location(location string) (string, string, error) {
	rest := strings.TrimPrefix(location, s3Scheme)
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 location %q, expected s3://bucket/key", location)
	}
	return bucket, key, nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
