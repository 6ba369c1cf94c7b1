package worker

import (
	"context"

	"github.com/elonniu/image-handler/internal/model"
	kafkago "github.com/segmentio/kafka-go"
)

type mockProcessor struct {
	processFn func(ctx context.Context, req *model.JobRequest) (*model.TransformationResult, error)
}

func (m *mockProcessor) Process(ctx context.Context, req *model.JobRequest) (*model.TransformationResult, error) {
	return m.processFn(ctx, req)
}

//----------------------------------

type mockCommitter struct {
	commitFn func(ctx context.Context, msg kafkago.Message) error
}

func (m *mockCommitter) Commit(ctx context.Context, msg kafkago.Message) error {
	if m.commitFn == nil {
		return nil
	}
	return m.commitFn(ctx, msg)
}
