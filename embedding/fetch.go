package embedding

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/image/draw"

	// Decoders for the formats listing photos actually come in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	// defaultFetchTimeout bounds one image download end to end.
	defaultFetchTimeout = 3 * time.Second

	// defaultMaxImageBytes is the largest response body accepted (5 MiB).
	defaultMaxImageBytes = 5 << 20

	// thumbnailMaxDim is the model input resolution; fetched images are
	// downscaled to fit within a square of this size before embedding.
	thumbnailMaxDim = 224
)

// ImageFetcher downloads listing photos with bounded size and time and
// returns them decoded and downscaled, ready for the embedding oracle.
type ImageFetcher struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// NewImageFetcher creates a fetcher with the given per-image timeout and
// response size limit. Non-positive values fall back to the defaults
// (3s, 5 MiB).
func NewImageFetcher(timeout time.Duration, maxBytes int64, logger *slog.Logger) *ImageFetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageFetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
		logger:   logger.With("component", "image-fetcher"),
	}
}

// Fetch downloads, decodes, and downscales the image at url.
// Oversize responses are rejected, mid-stream if the declared length lied.
func (f *ImageFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching image", resp.StatusCode)
	}
	if resp.ContentLength > f.maxBytes {
		return nil, fmt.Errorf("%w: declared %d bytes", ErrImageTooLarge, resp.ContentLength)
	}

	// Read one byte past the limit so an undeclared oversize body is
	// still caught.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrImageTooLarge, f.maxBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	f.logger.Debug("fetched image", "url", url, "format", format, "bytes", len(data))

	return fitWithin(img, thumbnailMaxDim), nil
}

// fitWithin downscales img to fit within a maxDim square, preserving
// aspect ratio. Images already within bounds are returned unchanged;
// nothing is ever upscaled.
func fitWithin(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(w)
	if hScale := float64(maxDim) / float64(h); hScale < scale {
		scale = hScale
	}

	dw := int(math.Round(float64(w) * scale))
	dh := int(math.Round(float64(h) * scale))
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
