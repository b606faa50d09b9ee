package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/phrazzld/snaplead-api/internal/config"
	"github.com/phrazzld/snaplead-api/internal/domain"
	"github.com/phrazzld/snaplead-api/internal/platform/storage"
)

// Client talks to the workflow endpoints. Analysis calls carry a hard
// timeout; generation calls do not, their latency is hidden behind the
// contact form and bounded only by the caller's context.
type Client struct {
	analyzeClient  *http.Client
	generateClient *http.Client

	cfg            config.WebhookConfig
	storageBaseURL string
	logger         *slog.Logger
}

// NewClient creates a webhook client. storageBaseURL is the Supabase project
// URL, used to resolve storage keys in generation responses to public URLs.
func NewClient(cfg config.WebhookConfig, storageBaseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		analyzeClient:  &http.Client{Timeout: cfg.AnalysisTimeout},
		generateClient: &http.Client{},
		cfg:            cfg,
		storageBaseURL: strings.TrimSuffix(storageBaseURL, "/"),
		logger:         logger.With(slog.String("component", "webhook_client")),
	}
}

// AnalyzeRequest carries the captured photo plus the wizard answers to the
// analysis workflow.
type AnalyzeRequest struct {
	Image       []byte
	Preferences domain.Preferences
	Category    domain.Category
}

// Analyze posts the photo for analysis and returns the parsed result. A
// non-2xx response or a timeout is an error; the caller decides how the
// failure surfaces to the customer.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (*domain.AnalysisResult, error) {
	body, contentType, err := encodeMultipart(map[string]string{
		"category":          string(req.Category),
		"name":              req.Preferences.Name,
		"gender":            string(req.Preferences.Gender),
		"coffeePreference":  string(req.Preferences.CoffeePreference),
		"alcoholPreference": string(req.Preferences.AlcoholPreference),
	}, "image", req.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AnalysisURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := c.analyzeClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("analysis endpoint returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read analysis response: %w", err)
	}

	return parseAnalysisResponse(raw)
}

// parseAnalysisResponse decodes the loose analysis JSON. Every field is
// optional and age arrives as a number or a string depending on the workflow
// revision.
func parseAnalysisResponse(raw []byte) (*domain.AnalysisResult, error) {
	var body struct {
		Mood    string          `json:"mood"`
		Age     json.RawMessage `json:"age"`
		Drink   string          `json:"drink"`
		Emotion string          `json:"emotion"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}

	return &domain.AnalysisResult{
		Mood:    body.Mood,
		Age:     flexString(body.Age),
		Drink:   body.Drink,
		Emotion: body.Emotion,
	}, nil
}

// flexString renders a JSON value that may be a string, a number, or absent
// as a plain string.
func flexString(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}

// GenerateRequest is the shared payload of both generation workflows.
type GenerateRequest struct {
	Email            string
	Phone            string
	Photo            []byte
	Preferences      domain.Preferences
	Category         domain.Category
	Analysis         *domain.AnalysisResult
	DrinkDescription string
}

// GenerateStyle requests the styled portrait.
func (c *Client) GenerateStyle(ctx context.Context, req GenerateRequest) (string, error) {
	return c.generate(ctx, c.cfg.StyleURL, req)
}

// GenerateIngredients requests the drink ingredients card.
func (c *Client) GenerateIngredients(ctx context.Context, req GenerateRequest) (string, error) {
	return c.generate(ctx, c.cfg.IngredientsURL, req)
}

// generate posts the payload and interprets whatever shape comes back. The
// returned string is an image reference (URL or data URL); empty means the
// workflow produced no usable image, which is not an error.
func (c *Client) generate(ctx context.Context, url string, req GenerateRequest) (string, error) {
	fields := map[string]string{
		"email":             req.Email,
		"phone":             req.Phone,
		"name":              req.Preferences.Name,
		"gender":            string(req.Preferences.Gender),
		"coffeePreference":  string(req.Preferences.CoffeePreference),
		"alcoholPreference": string(req.Preferences.AlcoholPreference),
		"category":          string(req.Category),
	}
	if req.Analysis != nil {
		analysisJSON, err := json.Marshal(req.Analysis)
		if err != nil {
			return "", fmt.Errorf("failed to encode analysis results: %w", err)
		}
		fields["analysisResults"] = string(analysisJSON)
	}
	if req.DrinkDescription != "" {
		fields["drinkDescription"] = req.DrinkDescription
	}

	body, contentType, err := encodeMultipart(fields, "photo", req.Photo)
	if err != nil {
		return "", fmt.Errorf("failed to encode generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("failed to build generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := c.generateClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("generation endpoint returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read generation response: %w", err)
	}

	return c.parseGeneratedImage(resp.Header.Get("Content-Type"), raw), nil
}

// parseGeneratedImage extracts an image reference from a generation response.
// The workflows have answered with every one of these shapes in production,
// so all of them are accepted; an unrecognized shape yields an empty
// reference.
func (c *Client) parseGeneratedImage(contentType string, body []byte) string {
	if strings.HasPrefix(contentType, "image/") {
		mediaType := contentType
		if i := strings.Index(mediaType, ";"); i >= 0 {
			mediaType = mediaType[:i]
		}
		return domain.EncodeImageDataURL(body, strings.TrimSpace(mediaType))
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		if raw, ok := obj["data"]; ok {
			var arr []struct {
				B64JSON string `json:"b64_json"`
			}
			if err := json.Unmarshal(raw, &arr); err == nil && len(arr) > 0 && arr[0].B64JSON != "" {
				return "data:image/png;base64," + arr[0].B64JSON
			}
		}
		if key := jsonString(obj["Key"]); key != "" {
			return storage.PublicURL(c.storageBaseURL, key)
		}
		if v := jsonString(obj["image"]); v != "" {
			return v
		}
		if v := jsonString(obj["imageUrl"]); v != "" {
			return v
		}
		if v := jsonString(obj["base64"]); v != "" {
			if strings.HasPrefix(v, "data:") {
				return v
			}
			return "data:image/png;base64," + v
		}
		return ""
	}

	// Bare string bodies: JSON-quoted or plain text.
	s := string(trimmed)
	var quoted string
	if err := json.Unmarshal(trimmed, &quoted); err == nil {
		s = quoted
	}
	if strings.HasPrefix(s, "data:image/") || strings.HasPrefix(s, "http") {
		return s
	}

	c.logger.Debug("unrecognized generation response shape",
		slog.String("content_type", contentType),
		slog.Int("bytes", len(body)))
	return ""
}

// jsonString decodes a raw JSON value as a string, empty for anything else.
func jsonString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// SendRequest is one delivery post: flat form fields plus an optional image
// attachment.
type SendRequest struct {
	Fields           map[string]string
	Image            []byte
	ImageContentType string
}

// Send posts an artifact delivery. Success is the HTTP status alone.
func (c *Client) Send(ctx context.Context, req SendRequest) error {
	return c.post(ctx, c.cfg.DeliveryURL, req)
}

// FinalMessage posts the closing notification built from the same data.
func (c *Client) FinalMessage(ctx context.Context, req SendRequest) error {
	return c.post(ctx, c.cfg.FinalMessageURL, req)
}

func (c *Client) post(ctx context.Context, url string, req SendRequest) error {
	var body *bytes.Buffer
	var contentType string
	var err error

	if len(req.Image) > 0 {
		body, contentType, err = encodeMultipartTyped(req.Fields, "image", req.Image, req.ImageContentType)
	} else {
		body, contentType, err = encodeMultipart(req.Fields, "", nil)
	}
	if err != nil {
		return fmt.Errorf("failed to encode delivery request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("failed to build delivery request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := c.generateClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("delivery request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("delivery endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// encodeMultipart builds a multipart form body from string fields plus an
// optional JPEG file part.
func encodeMultipart(fields map[string]string, fileField string, file []byte) (*bytes.Buffer, string, error) {
	return encodeMultipartTyped(fields, fileField, file, "image/jpeg")
}

func encodeMultipartTyped(fields map[string]string, fileField string, file []byte, fileType string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %q: %w", name, err)
		}
	}

	if fileField != "" && len(file) > 0 {
		part, err := w.CreateFormFile(fileField, fileField+extensionFor(fileType))
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(file); err != nil {
			return nil, "", fmt.Errorf("failed to write file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
