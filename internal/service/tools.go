package service

import (
	"fmt"
	"strings"

	"github.com/elonniu/image-handler/internal/model"
	"github.com/google/uuid"
)

func validateNormalizeJob(req *model.JobRequest) error {
	req.Url = strings.TrimSpace(req.Url)
	req.Format = strings.TrimSpace(req.Format)
	req.Key = strings.TrimSpace(req.Key)

	// Quality обязателен для всех форматов, даже тех что его не используют -
	// контракт проще, чем условная валидация по формату
	if req.Url == "" || req.InvocationType == "" || req.Format == "" {
		return model.ErrMissingFields
	}

	if !model.InvocationTypeMap[req.InvocationType] {
		return model.ErrIncorrectType
	}

	if req.Width <= 0 || req.Height <= 0 {
		return model.ErrIncorrectDims
	}

	if req.Quality <= 0 {
		return model.ErrIncorrectQuality
	}

	if req.Key == "" {
		req.Key = deriveKey(req.Width, req.Height, model.NormalizeFormat(req.Format))
	}

	return nil
}

// deriveKey - случайный токен плюс целевая геометрия и расширение формата.
// Уникальность best-effort: кому нужна идемпотентность - передает свой Key
func deriveKey(width, height int, format model.Format) string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%s-%dx%d%s", token, width, height, model.GetFileExt[format])
}
