package domain

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Errors returned when decoding data-URL encoded images.
var (
	ErrImageDataURLMalformed = errors.New("image data URL is malformed")
)

// EncodeImageDataURL wraps raw image bytes in a data URL, the encoding the
// kiosk client uses for captured photos and the generation webhooks use for
// inline results.
func EncodeImageDataURL(data []byte, contentType string) string {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeImageDataURL extracts the raw bytes and content type from a
// "data:image/...;base64,..." string.
func DecodeImageDataURL(s string) ([]byte, string, error) {
	if !strings.HasPrefix(s, "data:") {
		return nil, "", ErrImageDataURLMalformed
	}

	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return nil, "", ErrImageDataURLMalformed
	}

	contentType := strings.TrimSuffix(meta, ";base64")

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrImageDataURLMalformed, err)
	}

	return data, contentType, nil
}
