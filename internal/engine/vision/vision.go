// Package vision classifies images with Google Cloud Vision label detection.
// Credentials come from the environment (GOOGLE_APPLICATION_CREDENTIALS or
// the metadata server).
package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"

	"github.com/hejijunhao/annotate/internal/label"
)

// maxBatch is the Cloud Vision limit on images per BatchAnnotateImages call.
const maxBatch = 16

// annotator is the subset of the Vision client the model uses.
type annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
	Close() error
}

// Model is a classifier.Model that takes each image's top Cloud Vision label.
type Model struct {
	client annotator
}

// New dials the Cloud Vision API.
func New(ctx context.Context) (*Model, error) {
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("vision: %w", err)
	}
	slog.Info("cloud vision client ready")
	return &Model{client: client}, nil
}

// Classify returns the highest-scoring label for each image. An image the
// API reports an error for, or finds no label in, gets the unreadable label
// rather than failing the batch; a failed call fails the batch.
func (m *Model) Classify(ctx context.Context, images []image.Image) ([]string, error) {
	labels := make([]string, 0, len(images))
	for start := 0; start < len(images); start += maxBatch {
		end := min(start+maxBatch, len(images))
		chunk, err := m.classifyChunk(ctx, images[start:end])
		if err != nil {
			return nil, err
		}
		labels = append(labels, chunk...)
	}
	return labels, nil
}

func (m *Model) classifyChunk(ctx context.Context, images []image.Image) ([]string, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: make([]*visionpb.AnnotateImageRequest, len(images)),
	}
	for i, img := range images {
		content, err := encodePNG(img)
		if err != nil {
			return nil, fmt.Errorf("vision: encode image %d: %w", i, err)
		}
		req.Requests[i] = &visionpb.AnnotateImageRequest{
			Image: &visionpb.Image{Content: content},
			Features: []*visionpb.Feature{
				{Type: visionpb.Feature_LABEL_DETECTION, MaxResults: 1},
			},
		}
	}

	resp, err := m.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision: %w", err)
	}
	if len(resp.GetResponses()) != len(images) {
		return nil, fmt.Errorf("vision: got %d responses for %d images", len(resp.GetResponses()), len(images))
	}

	labels := make([]string, len(images))
	for i, r := range resp.GetResponses() {
		if e := r.GetError(); e != nil {
			slog.Warn("vision rejected image", "index", i, "code", e.GetCode(), "message", e.GetMessage())
			labels[i] = label.Unreadable
			continue
		}
		ann := r.GetLabelAnnotations()
		if len(ann) == 0 {
			labels[i] = label.Unreadable
			continue
		}
		labels[i] = ann[0].GetDescription()
	}
	return labels, nil
}

// Close releases the API connection.
func (m *Model) Close() error {
	return m.client.Close()
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
