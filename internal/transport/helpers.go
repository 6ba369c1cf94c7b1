package transport

import (
	"errors"

	"github.com/elonniu/image-handler/internal/model"
)

// errorCodeDefiner - маппинг ошибки сервиса в статус и стабильное тело ответа.
// Наружу уходит только текст сентинела: обернутая цепочка может содержать
// исходный URL с токенами и внутренние адреса
func errorCodeDefiner(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrMissingFields):
		return 400, model.ErrMissingFields.Error()
	case errors.Is(err, model.ErrIncorrectType):
		return 400, model.ErrIncorrectType.Error()
	case errors.Is(err, model.ErrIncorrectDims):
		return 400, model.ErrIncorrectDims.Error()
	case errors.Is(err, model.ErrIncorrectQuality):
		return 400, model.ErrIncorrectQuality.Error()
	case errors.Is(err, model.ErrCodecFailed):
		return 422, model.ErrCodecFailed.Error()
	case errors.Is(err, model.ErrFetchFailed):
		return 502, model.ErrFetchFailed.Error()
	case errors.Is(err, model.ErrUploadFailed):
		return 500, model.ErrUploadFailed.Error()
	case errors.Is(err, model.ErrPublishFailed):
		return 500, model.ErrPublishFailed.Error()
	default:
		return 500, model.ErrCommon500.Error()
	}
}
