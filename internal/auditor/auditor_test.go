package auditor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/elonniu/image-handler/internal/model"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func completionMessage(t *testing.T, rec model.CompletionRecord) kafkago.Message {
	t.Helper()

	body, err := json.Marshal(rec)
	require.NoError(t, err)
	return kafkago.Message{Key: []byte(rec.Request.Key), Value: body}
}

func TestAuditor_handleRecord(t *testing.T) {
	tests := []struct {
		name      string
		msg       kafkago.Message
		saveErr   error
		wantSaves int
		wantErr   bool
	}{
		{
			name: "valid record saved",
			msg: completionMessage(t, model.CompletionRecord{
				Request: model.JobRequest{Key: "a.jpg", Url: "http://x/a.jpg"},
				Result:  &model.TransformationResult{CompressedByteLength: 10},
			}),
			wantSaves: 1,
		},
		{
			name:      "empty body skipped",
			msg:       kafkago.Message{},
			wantSaves: 0,
		},
		{
			name:      "malformed record skipped without error",
			msg:       kafkago.Message{Value: []byte("{oops")},
			wantSaves: 0,
		},
		{
			name: "db failure surfaces",
			msg: completionMessage(t, model.CompletionRecord{
				Request: model.JobRequest{Key: "b.jpg"},
			}),
			saveErr:   errors.New("db down"),
			wantSaves: 1,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saves := 0
			repo := &mockSaver{
				saveFn: func(ctx context.Context, rec *model.CompletionRecord) error {
					saves++
					return tt.saveErr
				},
			}

			a := NewAuditorInstance(repo, nil, &mockCommitter{})

			err := a.handleRecord(context.Background(), tt.msg)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantSaves, saves)
		})
	}
}

func TestAuditor_StartAuditor_CommitsOnlySaved(t *testing.T) {
	queue := make(chan kafkago.Message, 2)
	queue <- completionMessage(t, model.CompletionRecord{Request: model.JobRequest{Key: "fail.jpg"}})
	queue <- completionMessage(t, model.CompletionRecord{Request: model.JobRequest{Key: "ok.jpg"}})
	close(queue)

	repo := &mockSaver{
		saveFn: func(ctx context.Context, rec *model.CompletionRecord) error {
			if rec.Request.Key == "fail.jpg" {
				return errors.New("db down")
			}
			return nil
		},
	}

	var committed []string
	cons := &mockCommitter{
		commitFn: func(ctx context.Context, msg kafkago.Message) error {
			committed = append(committed, string(msg.Key))
			return nil
		},
	}

	a := NewAuditorInstance(repo, queue, cons)
	a.StartAuditor(context.Background())

	require.Equal(t, []string{"ok.jpg"}, committed)
}

func TestAuditor_StartAuditor_StopsOnContextCancel(t *testing.T) {
	queue := make(chan kafkago.Message)

	a := NewAuditorInstance(&mockSaver{}, queue, &mockCommitter{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		a.StartAuditor(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("auditor did not stop on context cancel")
	}
}
