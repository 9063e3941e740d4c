package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	pkgerrors "github.com/yungbote/pearls-backend/internal/pkg/errors"
	"github.com/yungbote/pearls-backend/internal/pkg/logger"
)

// ObjectReader opens objects for reading. The corpus loader uses it for
// gs:// sources.
type ObjectReader interface {
	Open(ctx context.Context, bucket, object string) (io.ReadCloser, error)
	Close() error
}

type objectReader struct {
	log    *logger.Logger
	client *storage.Client
}

func NewObjectReader(ctx context.Context, log *logger.Logger) (ObjectReader, error) {
	opts := ClientOptionsFromEnv()
	opts = append(opts, option.WithScopes(storage.ScopeReadOnly))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &objectReader{log: log.With("client", "GCSObjectReader"), client: client}, nil
}

func (r *objectReader) Open(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	rc, err := r.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
			return nil, fmt.Errorf("gs://%s/%s: %w", bucket, object, pkgerrors.ErrNotFound)
		}
		return nil, fmt.Errorf("open gs://%s/%s: %w", bucket, object, err)
	}
	r.log.Debug("Opened object", "bucket", bucket, "object", object, "size", rc.Attrs.Size)
	return rc, nil
}

func (r *objectReader) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// ParseURI splits gs://bucket/path/to/object.
func ParseURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// uri: %q: %w", uri, pkgerrors.ErrInvalidArgument)
	}
	bucket, object, _ = strings.Cut(rest, "/")
	if bucket == "" || object == "" {
		return "", "", fmt.Errorf("gs uri needs bucket and object: %q: %w", uri, pkgerrors.ErrInvalidArgument)
	}
	return bucket, object, nil
}
