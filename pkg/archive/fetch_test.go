package archive_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archivehub/archive-hub/pkg/archive"
)

func TestHTTPFetcherFetchText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote body"))
	}))
	defer server.Close()

	fetcher := archive.NewHTTPFetcher(5 * time.Second)
	text, err := fetcher.FetchText(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "remote body", text)
}

func TestHTTPFetcherErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := archive.NewHTTPFetcher(5 * time.Second)
	_, err := fetcher.FetchText(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestHTTPFetcherRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("second attempt"))
	}))
	defer server.Close()

	fetcher := archive.NewHTTPFetcher(5 * time.Second)
	text, err := fetcher.FetchText(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "second attempt", text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPFetcherGivesUpAfterRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := archive.NewHTTPFetcher(5 * time.Second)
	_, err := fetcher.FetchText(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPFetcherHonorsContextCancel(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := archive.NewHTTPFetcher(5 * time.Second)
	_, err := fetcher.FetchText(ctx, server.URL)
	require.Error(t, err)
	// A cancelled context never gets a second attempt.
	assert.LessOrEqual(t, calls.Load(), int32(1))
}
