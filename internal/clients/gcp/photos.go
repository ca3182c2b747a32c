package gcp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/ctxutil"
	"github.com/fieldtrace/fieldtrace-backend/internal/pkg/logger"
)

// PhotoFetcher resolves a step photo URL to raw bytes. Technician uploads
// land in GCS (gs://bucket/key); some older integrations hand us plain
// https URLs, which are fetched directly.
type PhotoFetcher interface {
	Fetch(ctx context.Context, photoURL string) (data []byte, mimeType string, err error)
}

const maxPhotoBytes = 24 << 20

type photoFetcher struct {
	log           *logger.Logger
	storageClient *storage.Client
	httpClient    *http.Client
}

func NewPhotoFetcher(log *logger.Logger) (PhotoFetcher, error) {
	serviceLog := log.With("service", "PhotoFetcher")

	ctx := context.Background()
	opts := ClientOptionsFromEnv()
	opts = append(opts, option.WithScopes(storage.ScopeReadOnly))
	stClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &photoFetcher{
		log:           serviceLog,
		storageClient: stClient,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (f *photoFetcher) Fetch(ctx context.Context, photoURL string) ([]byte, string, error) {
	ctx = ctxutil.Default(ctx)
	photoURL = strings.TrimSpace(photoURL)
	if photoURL == "" {
		return nil, "", fmt.Errorf("photo url required")
	}

	if strings.HasPrefix(photoURL, "gs://") {
		return f.fetchGCS(ctx, photoURL)
	}
	if strings.HasPrefix(photoURL, "http://") || strings.HasPrefix(photoURL, "https://") {
		return f.fetchHTTP(ctx, photoURL)
	}
	return nil, "", fmt.Errorf("unsupported photo url scheme: %s", photoURL)
}

func (f *photoFetcher) fetchGCS(ctx context.Context, gsURL string) ([]byte, string, error) {
	rest := strings.TrimPrefix(gsURL, "gs://")
	slash := strings.IndexByte(rest, '/')
	if slash <= 0 || slash == len(rest)-1 {
		return nil, "", fmt.Errorf("malformed gs url: %s", gsURL)
	}
	bucket, key := rest[:slash], rest[slash+1:]

	rd, err := f.storageClient.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("open gcs object %s: %w", gsURL, err)
	}
	defer rd.Close()

	data, err := io.ReadAll(io.LimitReader(rd, maxPhotoBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read gcs object %s: %w", gsURL, err)
	}
	mime := rd.Attrs.ContentType
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return data, mime, nil
}

func (f *photoFetcher) fetchHTTP(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetch photo: http %d from %s", resp.StatusCode, url)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, "", err
	}
	mime := resp.Header.Get("Content-Type")
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return data, mime, nil
}
