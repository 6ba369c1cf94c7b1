// Package service provides business-logic for the app
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/elonniu/image-handler/internal/compress"
	"github.com/elonniu/image-handler/internal/fetcher"
	"github.com/elonniu/image-handler/internal/model"
	"github.com/elonniu/image-handler/internal/mwlogger"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/semaphore"
)

// Fetcher - контракт скачивания исходника
type Fetcher interface {
	Fetch(ctx context.Context, url string, kind fetcher.Kind) ([]byte, error)
}

// ImageStorage - контракт для работы с хранилищем
type ImageStorage interface {
	Put(ctx context.Context, key string, size int64, contentType string, r io.Reader) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// QueuePublisher - контракт для работы с очередью
type QueuePublisher interface {
	SendWithRetry(ctx context.Context, strategy retry.Strategy, key []byte, v []byte) error
}

type JobService struct {
	fetcher   Fetcher
	storage   ImageStorage
	tasks     QueuePublisher
	results   QueuePublisher
	linkTTL   time.Duration
	opTimeout time.Duration
	sem       *semaphore.Weighted
}

func NewJobService(f Fetcher, strg ImageStorage, tasks, results QueuePublisher, linkTTL, opTimeout time.Duration, maxParallel int64) *JobService {
	if maxParallel <= 0 {
		maxParallel = int64(runtime.NumCPU())
	}
	if linkTTL <= 0 {
		linkTTL = 7 * 24 * time.Hour // максимум для v4-подписи
	}
	if opTimeout <= 0 {
		opTimeout = 2 * time.Minute
	}

	return &JobService{
		fetcher:   f,
		storage:   strg,
		tasks:     tasks,
		results:   results,
		linkTTL:   linkTTL,
		opTimeout: opTimeout,
		sem:       semaphore.NewWeighted(maxParallel),
	}
}

// Стратегия ретрая отправки в очередь - можно потом вынести значения в конфиг/env
var retryStrategy = retry.Strategy{
	Attempts: 5,
	Delay:    3 * time.Second,
	Backoff:  1.5,
}

// Submit - точка входа роутера: валидируем запрос и диспатчим по режиму вызова.
// До успешной валидации никакого I/O не происходит
func (s *JobService) Submit(ctx context.Context, req *model.JobRequest) (*model.SubmitResponse, error) {
	logger := mwlogger.LoggerFromContext(ctx)

	if err := validateNormalizeJob(req); err != nil {
		return nil, err
	}

	switch req.InvocationType {
	case model.InvocationSync:
		res, err := s.Process(ctx, req)
		if err != nil {
			return nil, err
		}
		return &model.SubmitResponse{Status: model.StatusDone, Request: req, Result: res}, nil

	case model.InvocationEvent:
		// fire-and-forget: ошибки фоновой задачи вызывающему не видны
		job := *req
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 3*s.opTimeout)
			defer cancel()

			if _, err := s.Process(bgCtx, &job); err != nil {
				zlog.Logger.Error().Err(err).Str("key", job.Key).Msg("Background job failed")
			}
		}()
		return &model.SubmitResponse{Status: model.StatusAccepted, Request: req}, nil

	case model.InvocationQueue:
		// ровно одна запись в очереди на один запрос
		body, err := json.Marshal(req)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to marshal job for task-queue")
			return nil, model.ErrCommon500
		}

		if err := s.tasks.SendWithRetry(ctx, retryStrategy, []byte(req.Key), body); err != nil {
			logger.Error().Err(err).Msg(fmt.Sprintf("Failed to publish job %q to task-queue", req.Key))
			return nil, model.ErrPublishFailed
		}
		return &model.SubmitResponse{Status: model.StatusQueued, Request: req}, nil
	}

	return nil, model.ErrIncorrectType
}

// Process - прямая точка входа для уже свалидированной задачи: скачать,
// сжать, загрузить, опубликовать запись о завершении. Используется и
// синхронным путем, и фоновым вызовом, и консьюмером очереди
func (s *JobService) Process(ctx context.Context, req *model.JobRequest) (*model.TransformationResult, error) {
	res, err := s.transform(ctx, req)
	if err != nil {
		return nil, err
	}

	// запись о завершении не должна влиять на исход самой задачи
	s.publishCompletion(ctx, req, res)

	return res, nil
}

func (s *JobService) transform(ctx context.Context, req *model.JobRequest) (*model.TransformationResult, error) {
	logger := mwlogger.LoggerFromContext(ctx)
	format := model.NormalizeFormat(req.Format)

	// фаза скачивания
	fetchCtx, cancelFetch := context.WithTimeout(ctx, s.opTimeout)
	defer cancelFetch()

	start := time.Now()
	data, err := s.fetcher.Fetch(fetchCtx, req.Url, fetcher.KindForFormat(format))
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to download source %q", req.Url))
		return nil, err
	}
	downloadMS := time.Since(start).Milliseconds()

	// фаза сжатия - единственная CPU-bound, ограничиваем параллелизм
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("acquire compress slot: %w", err)
	}
	start = time.Now()
	out, err := compress.ForFormat(format).Compress(data, req.Width, req.Height, req.Quality)
	s.sem.Release(1)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to compress job %q", req.Key))
		return nil, err
	}
	compressMS := time.Since(start).Milliseconds()

	// фаза загрузки
	upCtx, cancelUp := context.WithTimeout(ctx, s.opTimeout)
	defer cancelUp()

	contentType := model.GetContentType[format]
	if err := s.storage.Put(upCtx, req.Key, int64(len(out.Data)), contentType, bytes.NewReader(out.Data)); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to upload result %q to storage", req.Key))
		return nil, err
	}

	link, err := s.storage.PresignedURL(upCtx, req.Key, s.linkTTL)
	if err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to presign result link for %q", req.Key))
		return nil, err
	}

	ratio := 0.0
	if len(data) > 0 {
		ratio = float64(len(out.Data)) / float64(len(data))
	}

	// все метрики живут в результате конкретного вызова,
	// никакого состояния на уровне процесса
	return &model.TransformationResult{
		DownloadLatencyMS:    downloadMS,
		CompressLatencyMS:    compressMS,
		OriginalByteLength:   len(data),
		CompressedByteLength: len(out.Data),
		CompressionRatio:     ratio,
		OriginalMB:           model.SizeLabelMB(len(data)),
		CompressedMB:         model.SizeLabelMB(len(out.Data)),
		OriginalMeta:         out.OriginalMeta,
		CompressedMeta:       out.CompressedMeta,
		ImageURL:             link,
		Key:                  req.Key,
	}, nil
}

// publishCompletion - best-effort: неудача публикации логируется
// и не маскирует успешную трансформацию
func (s *JobService) publishCompletion(ctx context.Context, req *model.JobRequest, res *model.TransformationResult) {
	logger := mwlogger.LoggerFromContext(ctx)

	body, err := json.Marshal(model.CompletionRecord{Request: *req, Result: res})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal completion record")
		return
	}

	if err := s.results.SendWithRetry(ctx, retryStrategy, []byte(req.Key), body); err != nil {
		logger.Error().Err(err).Msg(fmt.Sprintf("Failed to publish completion record for %q", req.Key))
	}
}
