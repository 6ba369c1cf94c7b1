package compress

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/gif"

	"github.com/disintegration/imaging"
	"github.com/elonniu/image-handler/internal/model"
)

// Порог схожести соседних кадров: если отличается меньшая доля пикселей,
// кадр склеивается с предыдущим
const frameSimilarityThreshold = 0.01

// Animated - стратегия для GIF: ресайзим каждый кадр прямо в целевой бокс
// (без fit-inside, в отличие от растровой ветки) и дедуплицируем кадры
type Animated struct{}

func (Animated) Compress(data []byte, width, height, quality int) (*Output, error) {
	_ = quality // GIF-кодек не использует quality, параметр принят для единообразия контракта

	src, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decode animated source: %v", model.ErrCodecFailed, err)
	}
	if len(src.Image) == 0 {
		return nil, fmt.Errorf("%w: animated source has no frames", model.ErrCodecFailed)
	}

	srcW := src.Config.Width
	srcH := src.Config.Height
	if srcW == 0 || srcH == 0 {
		b := src.Image[0].Bounds()
		srcW, srcH = b.Dx(), b.Dy()
	}

	// кадры GIF могут быть дельтами - композитим их на общий холст
	canvas := image.NewNRGBA(image.Rect(0, 0, srcW, srcH))

	out := &gif.GIF{LoopCount: src.LoopCount}
	var prev *image.NRGBA

	for i, frame := range src.Image {
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

		resized := imaging.Resize(canvas, width, height, imaging.Lanczos)

		delay := 0
		if i < len(src.Delay) {
			delay = src.Delay[i]
		}

		// почти одинаковый кадр не кодируем - отдаем его время предыдущему
		if prev != nil && frameDiff(prev, resized) < frameSimilarityThreshold {
			out.Delay[len(out.Delay)-1] += delay
			continue
		}
		prev = resized

		pal := image.NewPaletted(resized.Bounds(), frame.Palette)
		draw.FloydSteinberg.Draw(pal, resized.Bounds(), resized, image.Point{})

		out.Image = append(out.Image, pal)
		out.Delay = append(out.Delay, delay)
		out.Disposal = append(out.Disposal, gif.DisposalNone)
	}

	out.Config = image.Config{Width: width, Height: height}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, out); err != nil {
		return nil, fmt.Errorf("%w: encode animated result: %v", model.ErrCodecFailed, err)
	}

	return &Output{
		Data:           buf.Bytes(),
		OriginalMeta:   detectMeta(data),
		CompressedMeta: detectMeta(buf.Bytes()),
	}, nil
}

// frameDiff - доля заметно отличающихся пикселей между кадрами одного размера
func frameDiff(a, b *image.NRGBA) float64 {
	if !a.Rect.Eq(b.Rect) {
		return 1
	}

	total := a.Rect.Dx() * a.Rect.Dy()
	if total == 0 {
		return 0
	}

	diff := 0
	for i := 0; i+3 < len(a.Pix) && i+3 < len(b.Pix); i += 4 {
		if delta(a.Pix[i], b.Pix[i])+delta(a.Pix[i+1], b.Pix[i+1])+delta(a.Pix[i+2], b.Pix[i+2]) > 24 {
			diff++
		}
	}

	return float64(diff) / float64(total)
}

func delta(x, y uint8) int {
	if x > y {
		return int(x - y)
	}
	return int(y - x)
}
