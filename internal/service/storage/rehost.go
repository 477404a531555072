package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	downloadTimeout  = 30 * time.Second
	maxImageBytes    = 15 << 20 // 15 MiB
	fallbackImageExt = ".jpg"
)

// Rehoster copies externally-hosted images into the object store and returns
// the store's public URL. Failures are reported per URL; callers keep the
// original URL as a degraded fallback.
type Rehoster struct {
	store      ObjectStore
	httpClient *http.Client
	logger     *zap.Logger
}

func NewRehoster(store ObjectStore, logger *zap.Logger) *Rehoster {
	return &Rehoster{
		store: store,
		httpClient: &http.Client{
			Timeout: downloadTimeout,
		},
		logger: logger,
	}
}

// Rehost downloads imageURL and stores a copy under a key scoped by prefix
// and slot ("hero", "0", "1", ...). Returns the new public URL.
func (r *Rehoster) Rehost(ctx context.Context, imageURL, prefix, slot string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("image read failed: %w", err)
	}
	if len(data) > maxImageBytes {
		return "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image body is empty")
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = "image/jpeg"
	}

	key := fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), slot, imageExt(imageURL, contentType))

	publicURL, err := r.store.Put(ctx, data, contentType, key)
	if err != nil {
		return "", err
	}

	r.logger.Debug("Image rehosted",
		zap.String("source", imageURL),
		zap.String("key", key),
	)

	return publicURL, nil
}

func imageExt(imageURL, contentType string) string {
	if ext := strings.ToLower(path.Ext(strings.SplitN(imageURL, "?", 2)[0])); ext != "" && len(ext) <= 5 {
		return ext
	}

	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return fallbackImageExt
	}
}
