// Package remote classifies images through an HTTP inference server that
// exposes POST /classify/batch and GET /health.
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/google/uuid"

	"github.com/hejijunhao/annotate/internal/httpclient"
)

// ErrRejected is returned when the server answers a batch with success=false.
var ErrRejected = errors.New("remote: batch rejected by server")

// ClassifyBatchRequest is the body of POST /classify/batch. Images are
// base64-encoded PNGs.
type ClassifyBatchRequest struct {
	Images    []string `json:"images"`
	RequestID string   `json:"request_id,omitempty"`
}

// ClassificationResult is one image's answer.
type ClassificationResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ClassifyBatchResponse is the body returned by POST /classify/batch.
type ClassifyBatchResponse struct {
	Success      bool                   `json:"success"`
	Results      []ClassificationResult `json:"results"`
	ModelVersion string                 `json:"model_version"`
	RequestID    string                 `json:"request_id,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	ModelVersion string `json:"model_version"`
}

// Model is a classifier.Model backed by a remote inference server.
type Model struct {
	client *httpclient.Client
}

// New creates a Model for the server at baseURL. apiKey may be empty.
func New(baseURL, apiKey string, timeout time.Duration) *Model {
	var opts []httpclient.Option
	if timeout > 0 {
		opts = append(opts, httpclient.WithTimeout(timeout))
	}
	return &Model{client: httpclient.New(baseURL, apiKey, opts...)}
}

// Classify sends all images in one request and returns one label per image.
func (m *Model) Classify(ctx context.Context, images []image.Image) ([]string, error) {
	req := ClassifyBatchRequest{
		Images:    make([]string, len(images)),
		RequestID: uuid.NewString(),
	}
	for i, img := range images {
		enc, err := encodePNG(img)
		if err != nil {
			return nil, fmt.Errorf("remote: encode image %d: %w", i, err)
		}
		req.Images[i] = enc
	}

	var resp ClassifyBatchResponse
	if err := m.client.PostJSON(ctx, "/classify/batch", req, &resp); err != nil {
		return nil, fmt.Errorf("remote: request %s: %w", req.RequestID, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrRejected, resp.Error)
	}

	labels := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		labels[i] = r.Label
	}
	return labels, nil
}

// Health reports the server's status.
func (m *Model) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := m.client.GetJSON(ctx, "/health", &resp); err != nil {
		return nil, fmt.Errorf("remote: health: %w", err)
	}
	return &resp, nil
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
