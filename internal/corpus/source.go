package corpus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/yungbote/pearls-backend/internal/clients/gcp"
	pkgerrors "github.com/yungbote/pearls-backend/internal/pkg/errors"
	"github.com/yungbote/pearls-backend/internal/pkg/httpx"
)

// Source opens the raw corpus stream.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

type FileSource struct {
	Path string
}

func (s FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", s.Path, pkgerrors.ErrNotFound)
		}
		return nil, err
	}
	return f, nil
}

func (s FileSource) String() string { return s.Path }

// HTTPSource fetches the corpus over HTTP, retrying transient failures.
type HTTPSource struct {
	URL        string
	Client     *http.Client
	MaxRetries int
	Backoff    time.Duration
}

type statusError struct {
	code int
	url  string
}

func (e *statusError) Error() string       { return fmt.Sprintf("GET %s: status %d", e.url, e.code) }
func (e *statusError) HTTPStatusCode() int { return e.code }

func (s HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	backoff := s.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	var (
		lastErr  error
		lastResp *http.Response
	)
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(httpx.RetryDelay(lastResp, attempt, backoff, 30*time.Second)):
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			lastErr, lastResp = err, nil
			if ctx.Err() != nil || !httpx.IsRetryableError(err) {
				return nil, err
			}
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return resp.Body, nil
		}
		_ = resp.Body.Close()
		lastErr, lastResp = &statusError{code: resp.StatusCode, url: s.URL}, resp
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", lastErr, pkgerrors.ErrNotFound)
		}
		if !httpx.IsRetryableHTTPStatus(resp.StatusCode) {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (s HTTPSource) String() string { return s.URL }

type GCSSource struct {
	Reader gcp.ObjectReader
	Bucket string
	Object string
}

func (s GCSSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if s.Reader == nil {
		return nil, fmt.Errorf("gcs source has no reader: %w", pkgerrors.ErrInvalidArgument)
	}
	return s.Reader.Open(ctx, s.Bucket, s.Object)
}

func (s GCSSource) String() string { return "gs://" + s.Bucket + "/" + s.Object }

// ParseSource picks a Source for raw: http(s) URLs, gs:// URIs, or a local
// path. gcs may be nil when no gs:// source is configured.
func ParseSource(raw string, gcs gcp.ObjectReader) (Source, error) {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	switch {
	case raw == "":
		return nil, fmt.Errorf("empty corpus source: %w", pkgerrors.ErrInvalidArgument)
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return HTTPSource{URL: raw, MaxRetries: 3}, nil
	case strings.HasPrefix(lower, "gs://"):
		bucket, object, err := gcp.ParseURI(raw)
		if err != nil {
			return nil, err
		}
		return GCSSource{Reader: gcs, Bucket: bucket, Object: object}, nil
	default:
		return FileSource{Path: strings.TrimPrefix(raw, "file://")}, nil
	}
}

// IsGCS reports whether raw names an object storage source.
func IsGCS(raw string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(raw)), "gs://")
}
