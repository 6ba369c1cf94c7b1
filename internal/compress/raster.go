package compress

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/elonniu/image-handler/internal/model"
)

// Raster - стратегия для обычных картинок: вписываем в целевой бокс
// с сохранением пропорций и без увеличения, пережимаем в JPEG
type Raster struct{}

func (Raster) Compress(data []byte, width, height, quality int) (*Output, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode raster source: %v", model.ErrCodecFailed, err)
	}

	// Fit не растягивает картинку если она меньше целевого бокса
	fitted := imaging.Fit(img, width, height, imaging.Lanczos)

	// значение quality не валидируем - пробрасываем кодеку как есть
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, fitted, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("%w: encode raster result: %v", model.ErrCodecFailed, err)
	}

	return &Output{
		Data:           buf.Bytes(),
		OriginalMeta:   detectMeta(data),
		CompressedMeta: detectMeta(buf.Bytes()),
	}, nil
}
