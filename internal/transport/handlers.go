// Package transport provides methods for processing requests from endpoints
package transport

import (
	"context"

	"github.com/elonniu/image-handler/internal/model"
	"github.com/wb-go/wbf/ginext"
)

type JobHandler struct {
	service JobService
}

type JobService interface {
	Submit(ctx context.Context, req *model.JobRequest) (*model.SubmitResponse, error)
}

func NewJobHandler(svc JobService) *JobHandler {
	return &JobHandler{
		service: svc,
	}
}

func (h JobHandler) SimplePinger(ctx *ginext.Context) {
	ctx.JSON(200, map[string]string{"message": "pong"})
}

// Compress - единственная рабочая ручка: принимает JSON-тело задачи
// и отдает либо результат/подтверждение, либо ошибку
func (h JobHandler) Compress(ctx *ginext.Context) {
	var req model.JobRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(400, map[string]string{"error": "invalid JSON body"})
		return
	}

	res, err := h.service.Submit(ctx.Request.Context(), &req)
	if err != nil {
		code, msg := errorCodeDefiner(err)
		ctx.JSON(code, map[string]string{"error": msg})
		return
	}

	ctx.JSON(200, res)
}
