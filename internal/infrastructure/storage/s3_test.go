package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
)

type recordingTransport struct {
	mu       sync.Mutex
	requests []*http.Request
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil {
		_, _ = io.Copy(io.Discard, req.Body)
	}
	rt.mu.Lock()
	rt.requests = append(rt.requests, req)
	rt.mu.Unlock()

	status := http.StatusOK
	if req.Method == http.MethodDelete {
		status = http.StatusNoContent
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader(nil)),
		Header:     http.Header{"ETag": {`"etag"`}},
		Request:    req,
	}, nil
}

func newTestStore(t *testing.T) (*S3Store, *recordingTransport) {
	t.Helper()
	rt := &recordingTransport{}
	store, err := NewS3Store(context.Background(), S3Config{
		Bucket:          "attachments",
		Region:          "eu-west-3",
		Endpoint:        "https://s3.test.local",
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
		HTTPClient:      &http.Client{Transport: rt},
	}, logging.NewDiscardLogger())
	require.NoError(t, err)
	return store, rt
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{}, logging.NewDiscardLogger())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestS3StorePutAndDelete(t *testing.T) {
	store, rt := newTestStore(t)
	body := []byte("%PDF-1.7")

	require.NoError(t, store.Put(context.Background(), "u1/3/deck.pdf", bytes.NewReader(body), int64(len(body)), "application/pdf"))
	require.NoError(t, store.Delete(context.Background(), "u1/3/deck.pdf"))

	rt.mu.Lock()
	defer rt.mu.Unlock()
	require.Len(t, rt.requests, 2)
	assert.Equal(t, http.MethodPut, rt.requests[0].Method)
	assert.Equal(t, "/attachments/u1/3/deck.pdf", rt.requests[0].URL.Path)
	assert.Equal(t, "application/pdf", rt.requests[0].Header.Get("Content-Type"))
	assert.Equal(t, http.MethodDelete, rt.requests[1].Method)
}

func TestS3StorePresignGet(t *testing.T) {
	store, rt := newTestStore(t)

	url, err := store.PresignGet(context.Background(), "u1/3/deck.pdf", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://s3.test.local/attachments/u1/3/deck.pdf?"))
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=300")
	assert.Empty(t, rt.requests, "presigning is offline")
}
