package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elonniu/image-handler/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
)

func TestJobHandler_Ping(t *testing.T) {
	r := gin.New()
	h := NewJobHandler(nil)

	r.GET("/ping", func(c *gin.Context) {
		h.SimplePinger((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "pong", body["message"])
}

func newCompressRequest(t *testing.T, body any) *http.Request {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/compress", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestJobHandler_Compress(t *testing.T) {
	tests := []struct {
		name       string
		req        *http.Request
		mock       *mockJobService
		wantStatus int
		wantError  string
	}{
		{
			name: "sync success",
			req: newCompressRequest(t, model.JobRequest{
				Url:            "http://img.example.com/a.jpg",
				Width:          800,
				Height:         600,
				Quality:        80,
				Format:         "jpeg",
				InvocationType: model.InvocationSync,
			}),
			mock: &mockJobService{
				submitFn: func(ctx context.Context, req *model.JobRequest) (*model.SubmitResponse, error) {
					require.Equal(t, 800, req.Width)
					return &model.SubmitResponse{
						Status:  model.StatusDone,
						Request: req,
						Result:  &model.TransformationResult{Key: "k.jpg", CompressedByteLength: 10},
					}, nil
				},
			},
			wantStatus: 200,
		},
		{
			name: "queued success",
			req: newCompressRequest(t, model.JobRequest{
				Url:            "http://img.example.com/a.jpg",
				Width:          100,
				Height:         100,
				Quality:        50,
				Format:         "gif",
				InvocationType: model.InvocationQueue,
			}),
			mock: &mockJobService{
				submitFn: func(ctx context.Context, req *model.JobRequest) (*model.SubmitResponse, error) {
					return &model.SubmitResponse{Status: model.StatusQueued, Request: req}, nil
				},
			},
			wantStatus: 200,
		},
		{
			name:       "broken json body",
			req:        httptest.NewRequest(http.MethodPost, "/compress", bytes.NewReader([]byte("{not-json"))),
			mock:       &mockJobService{},
			wantStatus: 400,
		},
		{
			name: "validation error",
			req:  newCompressRequest(t, model.JobRequest{}),
			mock: &mockJobService{
				submitFn: func(ctx context.Context, req *model.JobRequest) (*model.SubmitResponse, error) {
					return nil, model.ErrMissingFields
				},
			},
			wantStatus: 400,
			wantError:  "Url, Key, InvocationType, Format, Width, Height, Quality are required",
		},
		{
			name: "unknown invocation type",
			req:  newCompressRequest(t, model.JobRequest{InvocationType: "Batch"}),
			mock: &mockJobService{
				submitFn: func(ctx context.Context, req *model.JobRequest) (*model.SubmitResponse, error) {
					return nil, model.ErrIncorrectType
				},
			},
			wantStatus: 400,
		},
		{
			name: "source unreachable",
			req:  newCompressRequest(t, model.JobRequest{}),
			mock: &mockJobService{
				submitFn: func(ctx context.Context, req *model.JobRequest) (*model.SubmitResponse, error) {
					return nil, model.ErrFetchFailed
				},
			},
			wantStatus: 502,
			wantError:  model.ErrFetchFailed.Error(),
		},
		{
			// обернутая цепочка несет URL исходника с токеном -
			// клиенту уходит только стабильный текст сентинела
			name: "wrapped fetch error does not leak source url",
			req:  newCompressRequest(t, model.JobRequest{}),
			mock: &mockJobService{
				submitFn: func(ctx context.Context, req *model.JobRequest) (*model.SubmitResponse, error) {
					return nil, fmt.Errorf("%w: fetch %q: %v", model.ErrFetchFailed,
						"http://internal-host:9000/secret.jpg?token=abc",
						errors.New("dial tcp: connection refused"))
				},
			},
			wantStatus: 502,
			wantError:  model.ErrFetchFailed.Error(),
		},
		{
			name: "broken source bytes",
			req:  newCompressRequest(t, model.JobRequest{}),
			mock: &mockJobService{
				submitFn: func(ctx context.Context, req *model.JobRequest) (*model.SubmitResponse, error) {
					return nil, model.ErrCodecFailed
				},
			},
			wantStatus: 422,
		},
		{
			name: "storage down",
			req:  newCompressRequest(t, model.JobRequest{}),
			mock: &mockJobService{
				submitFn: func(ctx context.Context, req *model.JobRequest) (*model.SubmitResponse, error) {
					return nil, model.ErrUploadFailed
				},
			},
			wantStatus: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewJobHandler(tt.mock)

			r.POST("/compress", func(c *gin.Context) {
				h.Compress((*ginext.Context)(c))
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req)

			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantError != "" {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				require.Equal(t, tt.wantError, body["error"])
				require.NotContains(t, body["error"], "token=")
			}
		})
	}
}
