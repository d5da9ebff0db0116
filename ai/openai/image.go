package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/casavia/rentmatch/ai"
)

// ImageEmbedder implements ai.ImageEmbedder against OpenAI-compatible
// /embeddings endpoints that accept base64 image data URLs as input
// (infinity, LocalAI and similar CLIP servers). langchaingo has no image
// embedding surface, so this client speaks the wire format directly.
type ImageEmbedder struct {
	host   string
	model  string
	client *http.Client
	logger *slog.Logger
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// newImageEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newImageEmbedder(config *ai.Config) (*ImageEmbedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ImageEmbedder{
		host:   config.ImageHost,
		model:  config.ImageModel,
		client: &http.Client{Timeout: 60 * time.Second},
		logger: slog.Default().With("component", "openai-image-embedder"),
	}, nil
}

// NewImageEmbedder creates a new image embedder using the provided configuration.
//
// Returns ai.ImageEmbedder interface to enforce abstraction.
func NewImageEmbedder(config *ai.Config) (ai.ImageEmbedder, error) {
	return newImageEmbedder(config)
}

// EmbedImage generates a vector embedding for a single image.
func (e *ImageEmbedder) EmbedImage(ctx context.Context, img image.Image) ([]float32, error) {
	vecs, err := e.EmbedImages(ctx, []image.Image{img})
	if err != nil {
		return nil, err
	}

	if len(vecs) == 0 {
		e.logger.Warn("image embedder returned empty result")
		return []float32{}, nil
	}

	return vecs[0], nil
}

// EmbedImages generates vector embeddings for multiple images in a batch.
func (e *ImageEmbedder) EmbedImages(ctx context.Context, imgs []image.Image) ([][]float32, error) {
	if len(imgs) == 0 {
		return [][]float32{}, nil
	}

	e.logger.Debug("generating embeddings for images", "count", len(imgs))

	input := make([]string, len(imgs))
	for i, img := range imgs {
		url, err := encodeDataURL(img)
		if err != nil {
			return nil, fmt.Errorf("encode image %d: %w", i, err)
		}
		input[i] = url
	}

	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.host+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer none")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("image embedding request failed", "count", len(imgs), "err", err)
		return nil, fmt.Errorf("image embedding request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("image embedding API (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("image embedding API returned status %d", resp.StatusCode)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(parsed.Data) != len(imgs) {
		return nil, fmt.Errorf("image embedding API returned %d vectors for %d images", len(parsed.Data), len(imgs))
	}

	// The API may reorder entries; Index restores input order.
	out := make([][]float32, len(imgs))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("image embedding API returned out-of-range index %d", d.Index)
		}
		out[d.Index] = d.Embedding
	}

	return out, nil
}

// encodeDataURL re-encodes a bitmap as a JPEG data URL for transport.
// Inputs are already downscaled thumbnails, so quality 85 keeps payloads small.
func encodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
