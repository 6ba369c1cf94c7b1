package service

import (
	"context"
	"io"
	"time"

	"github.com/elonniu/image-handler/internal/fetcher"
	"github.com/wb-go/wbf/retry"
)

// MOCK FETCHER

type mockFetcher struct {
	fetchFn func(ctx context.Context, url string, kind fetcher.Kind) ([]byte, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, url string, kind fetcher.Kind) ([]byte, error) {
	return m.fetchFn(ctx, url, kind)
}

// MOCK STORAGE

type mockStorage struct {
	putFn     func(ctx context.Context, key string, size int64, ct string, r io.Reader) error
	presignFn func(ctx context.Context, key string, ttl time.Duration) (string, error)
}

func (m *mockStorage) Put(ctx context.Context, key string, size int64, ct string, r io.Reader) error {
	return m.putFn(ctx, key, size, ct, r)
}

func (m *mockStorage) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return m.presignFn(ctx, key, ttl)
}

// MOCK PUBLISHER

type mockPublisher struct {
	sendFn func(ctx context.Context, s retry.Strategy, key []byte, v []byte) error
}

func (m *mockPublisher) SendWithRetry(ctx context.Context, s retry.Strategy, key []byte, v []byte) error {
	return m.sendFn(ctx, s, key, v)
}
