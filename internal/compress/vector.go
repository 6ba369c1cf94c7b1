package compress

import (
	"fmt"

	"github.com/elonniu/image-handler/internal/model"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

var svgMinifier = newSVGMinifier()

func newSVGMinifier() *minify.M {
	m := minify.New()
	m.AddFunc(model.SVG, svg.Minify)
	return m
}

// Vector - стратегия для SVG: минификация разметки как текста.
// Размеры и quality приняты для единообразия контракта и не используются
type Vector struct{}

func (Vector) Compress(data []byte, width, height, quality int) (*Output, error) {
	_, _, _ = width, height, quality

	out, err := svgMinifier.Bytes(model.SVG, data)
	if err != nil {
		return nil, fmt.Errorf("%w: minify svg source: %v", model.ErrCodecFailed, err)
	}

	// метаданные о пикселях для векторов не заполняются
	return &Output{Data: out}, nil
}
