package auditor

import (
	"context"

	"github.com/elonniu/image-handler/internal/model"
	kafkago "github.com/segmentio/kafka-go"
)

type mockSaver struct {
	saveFn func(ctx context.Context, rec *model.CompletionRecord) error
}

func (m *mockSaver) Save(ctx context.Context, rec *model.CompletionRecord) error {
	return m.saveFn(ctx, rec)
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
