package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"callscribe/pkg/logger"
	"callscribe/pkg/model"

	"go.uber.org/zap"
)

// S3Downloader resolves s3:// references to raw bytes.
type S3Downloader interface {
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// Fetcher downloads recording audio referenced by a row. HTTP(S) references
// go over a plain GET; s3:// references go through the optional downloader.
// A single attempt per call; retry policy lives with the caller.
type Fetcher struct {
	timeout time.Duration
	s3      S3Downloader
	client  *http.Client
}

// NewFetcher creates a fetcher with the given per-fetch timeout. The S3
// downloader may be nil when no object-storage references are expected.
func NewFetcher(timeout time.Duration, s3 S3Downloader) *Fetcher {
	return &Fetcher{
		timeout: timeout,
		s3:      s3,
		client:  &http.Client{},
	}
}

// Fetch resolves a reference to audio bytes and their media type. Failures
// are classified StageErrors: timeout when the fetch deadline is exceeded,
// transport for non-2xx status or any network failure.
func (f *Fetcher) Fetch(ctx context.Context, reference string) (*model.MediaPayload, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(reference, "s3://") {
		data, err = f.fetchS3(fetchCtx, reference)
	} else {
		data, err = f.fetchHTTP(fetchCtx, reference)
	}
	if err != nil {
		return nil, err
	}

	payload := &model.MediaPayload{
		Data:     data,
		MimeType: MediaTypeFor(reference),
	}

	logger.Debug("Audio downloaded",
		zap.String("reference", reference),
		zap.String("mime_type", payload.MimeType),
		zap.Int("size", len(data)))

	return payload, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, reference string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reference, nil)
	if err != nil {
		return nil, model.NewStageError(model.OutcomeTransport, err.Error(), err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classifyFetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("audio download failed: status=%d", resp.StatusCode)
		return nil, model.NewStageError(model.OutcomeTransport, msg, nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyFetchError(err)
	}

	return data, nil
}

func (f *Fetcher) fetchS3(ctx context.Context, reference string) ([]byte, error) {
	if f.s3 == nil {
		msg := "s3 reference requires object storage configuration"
		return nil, model.NewStageError(model.OutcomeTransport, msg, nil)
	}

	bucket, key, err := splitS3Reference(reference)
	if err != nil {
		return nil, model.NewStageError(model.OutcomeTransport, err.Error(), err)
	}

	data, err := f.s3.Download(ctx, bucket, key)
	if err != nil {
		return nil, classifyFetchError(err)
	}

	return data, nil
}

// splitS3Reference parses s3://bucket/key/with/slashes.
func splitS3Reference(reference string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(reference, "s3://")
	bucket, key, found := strings.Cut(trimmed, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 reference: %s", reference)
	}
	return bucket, key, nil
}

func classifyFetchError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.NewStageError(model.OutcomeTimeout, "Request timeout", err)
	}
	return model.NewStageError(model.OutcomeTransport, err.Error(), err)
}
