// Package auditor drains the result-channel and journals completion records
package auditor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/elonniu/image-handler/internal/model"
	kafkago "github.com/segmentio/kafka-go"
)

type CompletionSaver interface {
	Save(ctx context.Context, rec *model.CompletionRecord) error
}

type MessageCommitter interface {
	Commit(ctx context.Context, msg kafkago.Message) error
}

type Auditor struct {
	repo     CompletionSaver
	queue    <-chan kafkago.Message
	consumer MessageCommitter
}

func NewAuditorInstance(repo CompletionSaver, q <-chan kafkago.Message, cons MessageCommitter) *Auditor {
	return &Auditor{repo: repo, queue: q, consumer: cons}
}

func (a *Auditor) StartAuditor(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-a.queue:
			if !ok {
				log.Println("Result channel closed, stopping auditor...")
				return
			}

			if err := a.handleRecord(ctx, msg); err != nil {
				// без коммита - записи аудита не теряем, брокер редоставит
				log.Printf("Completion record failed: %v", err)
				continue
			}

			if err := a.consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit result-message: %v", err)
			}
		}
	}
}

func (a *Auditor) handleRecord(ctx context.Context, msg kafkago.Message) error {
	// записи с пустым телом пропускаем молча
	if len(msg.Value) == 0 {
		return nil
	}

	// битую запись не редоставляем - журналировать в ней нечего
	var rec model.CompletionRecord
	if err := json.Unmarshal(msg.Value, &rec); err != nil {
		log.Printf("Auditor skipped malformed completion record: %v", err)
		return nil
	}

	if err := a.repo.Save(ctx, &rec); err != nil {
		return fmt.Errorf("auditor failed to save completion record %q: %w", rec.Request.Key, err)
	}

	return nil
}
