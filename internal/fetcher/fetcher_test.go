package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/elonniu/image-handler/internal/model"
	"github.com/stretchr/testify/require"
)

func TestKindForFormat(t *testing.T) {
	require.Equal(t, KindText, KindForFormat(model.FormatSVG))
	require.Equal(t, KindBinary, KindForFormat(model.FormatGIF))
	require.Equal(t, KindBinary, KindForFormat(model.FormatJPEG))
}

func TestHTTPFetcher_Fetch_OK(t *testing.T) {
	payload := []byte("raw-image-bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	f := New(10 * time.Second)

	data, err := f.Fetch(context.Background(), srv.URL, KindBinary)
	require.NoError(t, err)
	require.Equal(t, payload, data)
}

func TestHTTPFetcher_Fetch_ClientErrorNotRetried(t *testing.T) {
	var hits int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(10 * time.Second)

	_, err := f.Fetch(context.Background(), srv.URL, KindBinary)
	require.ErrorIs(t, err, model.ErrFetchFailed)
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPFetcher_Fetch_RetriesServerErrors(t *testing.T) {
	var hits int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := New(10 * time.Second)

	data, err := f.Fetch(context.Background(), srv.URL, KindBinary)
	require.NoError(t, err)
	require.Equal(t, []byte("ok"), data)
	require.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestHTTPFetcher_Fetch_ExhaustsRetries(t *testing.T) {
	var hits int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := New(10 * time.Second)

	_, err := f.Fetch(context.Background(), srv.URL, KindBinary)
	require.ErrorIs(t, err, model.ErrFetchFailed)
	require.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestHTTPFetcher_Fetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // сервер уже недоступен

	f := New(2 * time.Second)

	_, err := f.Fetch(context.Background(), srv.URL, KindBinary)
	require.ErrorIs(t, err, model.ErrFetchFailed)
}

func TestHTTPFetcher_Fetch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := New(10 * time.Second)

	_, err := f.Fetch(ctx, srv.URL, KindBinary)
	require.ErrorIs(t, err, model.ErrFetchFailed)
}
