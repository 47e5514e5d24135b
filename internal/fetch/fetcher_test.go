package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"callscribe/pkg/logger"
	"callscribe/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	if err := logger.Init(true); err != nil {
		panic(err)
	}
}

type MockS3 struct {
	mock.Mock
}

func (m *MockS3) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestMediaTypeFor(t *testing.T) {
	tests := []struct {
		reference string
		want      string
	}{
		{"https://cdn.example.com/call.mp3", "audio/mpeg"},
		{"https://cdn.example.com/call.WAV", "audio/wav"},
		{"https://cdn.example.com/call.ogg", "audio/ogg"},
		{"https://cdn.example.com/call.FLAC", "audio/flac"},
		{"https://cdn.example.com/call.m4a", "audio/mp4"},
		{"https://cdn.example.com/call.xyz", "audio/mpeg"},
		{"https://cdn.example.com/call", "audio/mpeg"},
		{"https://cdn.example.com/call.wav?token=abc", "audio/wav"},
		{"s3://recordings/2026/call.ogg", "audio/ogg"},
	}

	for _, tt := range tests {
		t.Run(tt.reference, func(t *testing.T) {
			assert.Equal(t, tt.want, MediaTypeFor(tt.reference))
		})
	}
}

func TestFetcher_Fetch_HTTPSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, nil)

	payload, err := fetcher.Fetch(context.Background(), server.URL+"/call.wav")
	require.NoError(t, err)
	assert.Equal(t, []byte("audio-bytes"), payload.Data)
	assert.Equal(t, "audio/wav", payload.MimeType)
}

func TestFetcher_Fetch_HTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, nil)

	_, err := fetcher.Fetch(context.Background(), server.URL+"/missing.mp3")
	require.Error(t, err)

	var stageErr *model.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, model.OutcomeTransport, stageErr.Kind)
	assert.Contains(t, stageErr.Message, "status=404")
}

func TestFetcher_Fetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	fetcher := NewFetcher(50*time.Millisecond, nil)

	_, err := fetcher.Fetch(context.Background(), server.URL+"/slow.mp3")
	require.Error(t, err)

	var stageErr *model.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, model.OutcomeTimeout, stageErr.Kind)
	assert.Equal(t, "Request timeout", stageErr.Message)
}

func TestFetcher_Fetch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	fetcher := NewFetcher(5*time.Second, nil)

	_, err := fetcher.Fetch(context.Background(), server.URL+"/call.mp3")
	require.Error(t, err)

	var stageErr *model.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, model.OutcomeTransport, stageErr.Kind)
}

func TestFetcher_Fetch_S3Reference(t *testing.T) {
	mockS3 := new(MockS3)
	mockS3.On("Download", mock.Anything, "recordings", "2026/call.flac").
		Return([]byte("flac-bytes"), nil)

	fetcher := NewFetcher(5*time.Second, mockS3)

	payload, err := fetcher.Fetch(context.Background(), "s3://recordings/2026/call.flac")
	require.NoError(t, err)
	assert.Equal(t, []byte("flac-bytes"), payload.Data)
	assert.Equal(t, "audio/flac", payload.MimeType)

	mockS3.AssertExpectations(t)
}

func TestFetcher_Fetch_S3WithoutDownloader(t *testing.T) {
	fetcher := NewFetcher(5*time.Second, nil)

	_, err := fetcher.Fetch(context.Background(), "s3://recordings/call.mp3")
	require.Error(t, err)

	var stageErr *model.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, model.OutcomeTransport, stageErr.Kind)
	assert.Contains(t, stageErr.Message, "object storage")
}

func TestSplitS3Reference(t *testing.T) {
	bucket, key, err := splitS3Reference("s3://recordings/2026/01/call.mp3")
	require.NoError(t, err)
	assert.Equal(t, "recordings", bucket)
	assert.Equal(t, "2026/01/call.mp3", key)

	_, _, err = splitS3Reference("s3://only-bucket")
	assert.Error(t, err)
}
