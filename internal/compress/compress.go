// Package compress provides compression strategies for images: raster, animated and vector.
package compress

import (
	"bytes"
	"image"

	"github.com/elonniu/image-handler/internal/model"
	"github.com/gabriel-vasile/mimetype"
)

// Output - результат работы стратегии: сжатые байты плюс метаданные до/после.
// Метаданные заполняются только растровой и анимированной стратегиями.
type Output struct {
	Data           []byte
	OriginalMeta   *model.ImageMeta
	CompressedMeta *model.ImageMeta
}

// Strategy - общий контракт всех стратегий сжатия
type Strategy interface {
	Compress(data []byte, width, height, quality int) (*Output, error)
}

// ForFormat - выбор стратегии по заявленному формату,
// нераспознанные форматы падают в растровую ветку
func ForFormat(f model.Format) Strategy {
	switch f {
	case model.FormatSVG:
		return Vector{}
	case model.FormatGIF:
		return Animated{}
	default:
		return Raster{}
	}
}

func detectMeta(data []byte) *model.ImageMeta {
	meta := &model.ImageMeta{Format: mimetype.Detect(data).String()}

	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		meta.Width = cfg.Width
		meta.Height = cfg.Height
	}

	return meta
}
