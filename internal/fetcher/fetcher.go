// Package fetcher provides downloading of source assets by URL
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/elonniu/image-handler/internal/model"
	"github.com/wb-go/wbf/retry"
)

// Kind - каким содержимым считать ответ: бинарным или текстовым
type Kind string

const (
	KindBinary Kind = "binary"
	KindText   Kind = "text"
)

// KindForFormat - векторные исходники качаем как текст, остальные как байты
func KindForFormat(f model.Format) Kind {
	if f == model.FormatSVG {
		return KindText
	}
	return KindBinary
}

type HTTPFetcher struct {
	client   *http.Client
	strategy retry.Strategy
}

// New - транспортный таймаут это единственный потолок на скачивание,
// лимита на размер тела нет - исходники бывают большими
func New(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		strategy: retry.Strategy{
			Attempts: 3,
			Delay:    500 * time.Millisecond,
			Backoff:  2,
		},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string, kind Kind) ([]byte, error) {
	_ = kind // и текст, и бинарь возвращаем как байты; размер текста считается по UTF-8

	var lastErr error
	delay := f.strategy.Delay

	for attempt := 0; attempt < f.strategy.Attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", model.ErrFetchFailed, ctx.Err())
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * f.strategy.Backoff)
		}

		data, err := f.fetchOnce(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err

		// клиентские статусы ретраить бессмысленно
		if !retryable(err) {
			break
		}
	}

	return nil, fmt.Errorf("%w: %v", model.ErrFetchFailed, lastErr)
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer closeFileFlow(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{code: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}

func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return true // сетевые ошибки считаем временными
}

func closeFileFlow(res io.ReadCloser) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		log.Println("Fetcher failed to close response body:", err)
	}
}
