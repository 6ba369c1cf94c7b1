package transport

import (
	"context"

	"github.com/elonniu/image-handler/internal/model"
	"github.com/gin-gonic/gin"
)

type mockJobService struct {
	submitFn func(ctx context.Context, req *model.JobRequest) (*model.SubmitResponse, error)
}

func (m *mockJobService) Submit(ctx context.Context, req *model.JobRequest) (*model.SubmitResponse, error) {
	return m.submitFn(ctx, req)
}

func init() {
	gin.SetMode(gin.TestMode)
}
