// Package storage provides a minimal Supabase Storage client for uploading
// captured photos and resolving object keys to public URLs.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// PublicURL resolves a storage object key (bucket/path) to its public URL.
// Generation webhooks sometimes answer with a bare key in the same storage
// project, so the resolver lives here where both sides can use it.
func PublicURL(baseURL, key string) string {
	return strings.TrimSuffix(baseURL, "/") + "/storage/v1/object/public/" + strings.TrimPrefix(key, "/")
}

// Client uploads objects to a single Supabase Storage bucket.
type Client struct {
	httpClient *http.Client
	baseURL    string
	serviceKey string
	bucket     string
	logger     *slog.Logger
}

// NewClient creates a storage client for the given project URL and bucket.
func NewClient(baseURL, serviceKey, bucket string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		logger:     logger.With(slog.String("component", "storage_client")),
	}
}

// Upload stores the object bytes under the given path in the bucket and
// returns the public URL of the uploaded object.
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, strings.TrimPrefix(path, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload rejected with status %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("object uploaded",
		slog.String("bucket", c.bucket),
		slog.String("path", path),
		slog.Int("bytes", len(data)))

	return PublicURL(c.baseURL, c.bucket+"/"+strings.TrimPrefix(path, "/")), nil
}
