// Package model provides data-structs for internal app-usage
package model

import (
	"errors"
	"fmt"
	"strings"
)

type (
	InvocationType string
	Format         string
)

const (
	InvocationSync  InvocationType = "RequestResponse"
	InvocationEvent InvocationType = "Event"
	InvocationQueue InvocationType = "Queue"
)

var InvocationTypeMap = map[InvocationType]bool{
	InvocationSync:  true,
	InvocationEvent: true,
	InvocationQueue: true,
}

const (
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatSVG  Format = "svg"
)

// NormalizeFormat - сводим произвольную строку формата к известному варианту,
// все нераспознанные форматы обрабатываются как растровые
func NormalizeFormat(raw string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case FormatSVG:
		return FormatSVG
	case FormatGIF:
		return FormatGIF
	default:
		return FormatJPEG
	}
}

//---------------------

// JobRequest - единица работы; поля именованы как во входящем JSON-теле
type JobRequest struct {
	Url            string         `json:"Url"`
	Key            string         `json:"Key"`
	Width          int            `json:"Width"`
	Height         int            `json:"Height"`
	Quality        int            `json:"Quality"`
	Format         string         `json:"Format"`
	InvocationType InvocationType `json:"InvocationType"`
}

type ImageMeta struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type TransformationResult struct {
	DownloadLatencyMS    int64      `json:"downloadImageLatencyMS"`
	CompressLatencyMS    int64      `json:"compressImageLatencyMS"`
	OriginalByteLength   int        `json:"beforeByteLength"`
	CompressedByteLength int        `json:"afterByteLength"`
	CompressionRatio     float64    `json:"compressRatio"`
	OriginalMB           string     `json:"beforeMB"`
	CompressedMB         string     `json:"afterMB"`
	OriginalMeta         *ImageMeta `json:"originalMeta,omitempty"`
	CompressedMeta       *ImageMeta `json:"compressedMeta,omitempty"`
	ImageURL             string     `json:"imageUrl"`
	Key                  string     `json:"key"`
}

// CompletionRecord - аудит-запись о завершенной задаче, уходит в result-топик
type CompletionRecord struct {
	Request JobRequest            `json:"request"`
	Result  *TransformationResult `json:"result,omitempty"`
	Error   string                `json:"error,omitempty"`
}

//-------------------

const (
	StatusDone     = "done"
	StatusAccepted = "accepted"
	StatusQueued   = "queued"
)

type SubmitResponse struct {
	Status  string                `json:"status"`
	Request *JobRequest           `json:"request"`
	Result  *TransformationResult `json:"result,omitempty"`
}

// ------------------

var (
	ErrCommon500        error = errors.New("something went wrong. Try again later")                                 // 500
	ErrMissingFields    error = errors.New("Url, Key, InvocationType, Format, Width, Height, Quality are required") // 400
	ErrIncorrectType    error = errors.New("InvocationType must be in ['RequestResponse', 'Event', 'Queue']")       // 400
	ErrIncorrectDims    error = errors.New("Width and Height must be positive")                                     // 400
	ErrIncorrectQuality error = errors.New("Quality must be positive")                                              // 400
	ErrFetchFailed      error = errors.New("failed to download source image")                                       // 502
	ErrCodecFailed      error = errors.New("failed to decode/encode source image")                                  // 422
	ErrUploadFailed     error = errors.New("failed to store compressed image")                                      // 500
	ErrPublishFailed    error = errors.New("failed to publish to task-queue")                                       // 500
)

//--------------------

const (
	JPEG = "image/jpeg"
	GIF  = "image/gif"
	SVG  = "image/svg+xml"
)

var GetContentType = map[Format]string{
	FormatJPEG: JPEG,
	FormatGIF:  GIF,
	FormatSVG:  SVG,
}

var GetFileExt = map[Format]string{
	FormatJPEG: ".jpg",
	FormatGIF:  ".gif",
	FormatSVG:  ".svg",
}

//--------------------

// SizeLabelMB - человекочитаемый размер в мегабайтах с двумя знаками
func SizeLabelMB(byteLen int) string {
	return fmt.Sprintf("%.2f", float64(byteLen)/1024/1024)
}
