package main

import (
	"context"

	"github.com/elonniu/image-handler/internal/model"
)

// JobAPIService defines provided methods for the API binary
type JobAPIService interface {
	Submit(ctx context.Context, req *model.JobRequest) (*model.SubmitResponse, error)
}
