package main

import (
	"context"

	"github.com/elonniu/image-handler/internal/model"
	"github.com/wb-go/wbf/retry"
)

type JobWorkerService interface {
	Process(ctx context.Context, req *model.JobRequest) (*model.TransformationResult, error)
}

// NoopPublisher - ЗАГЛУШКА, постановка задач в очередь не нужна в рамках работы воркера
type NoopPublisher struct{}

func (NoopPublisher) SendWithRetry(ctx context.Context, strategy retry.Strategy, k []byte, v []byte) error {
	return nil
}
