// Package worker contains the task-queue consumer feeding jobs to the compression path
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/elonniu/image-handler/internal/model"
	kafkago "github.com/segmentio/kafka-go"
)

// JobProcessor - та же точка входа, что у синхронного пути
type JobProcessor interface {
	Process(ctx context.Context, req *model.JobRequest) (*model.TransformationResult, error)
}

// MessageCommitter - подтверждение обработанной записи в очереди
type MessageCommitter interface {
	Commit(ctx context.Context, msg kafkago.Message) error
}

type Worker struct {
	service    JobProcessor
	queue      <-chan kafkago.Message
	consumer   MessageCommitter
	jobTimeout time.Duration
}

func NewWorkerInstance(svc JobProcessor, q <-chan kafkago.Message, cons MessageCommitter, jobTimeout time.Duration) *Worker {
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}
	return &Worker{service: svc, queue: q, consumer: cons, jobTimeout: jobTimeout}
}

func (w *Worker) StartWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-w.queue:
			if !ok {
				log.Println("Queue channel closed, stopping worker...")
				return
			}

			// одна битая запись не должна останавливать остальные
			if err := w.handleRecord(ctx, msg); err != nil {
				log.Printf("Task %q failed: %v", string(msg.Key), err)
			}

			// коммитим в любом случае: переработка битой записи не поможет,
			// а перезапись по тому же ключу при редоставке безопасна
			if err := w.consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit queue-message: %v", err)
			}
		}
	}
}

func (w *Worker) handleRecord(ctx context.Context, msg kafkago.Message) error {
	// записи с пустым телом пропускаем молча
	if len(msg.Value) == 0 {
		return nil
	}

	var req model.JobRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("worker failed to unmarshal job from record: %w", err)
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	if _, err := w.service.Process(jobCtx, &req); err != nil {
		return fmt.Errorf("worker failed to process job %q: %w", req.Key, err)
	}

	return nil
}
