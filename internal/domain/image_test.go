package domain

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeDecodeImageDataURL(t *testing.T) {
	t.Parallel()

	raw := []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10}

	url := EncodeImageDataURL(raw, "image/jpeg")
	data, contentType, err := DecodeImageDataURL(url)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if contentType != "image/jpeg" {
		t.Errorf("Expected content type image/jpeg, got %s", contentType)
	}
	if !bytes.Equal(data, raw) {
		t.Error("Expected decoded bytes to match original")
	}

	// Empty content type defaults to JPEG.
	if got := EncodeImageDataURL(raw, ""); got[:len("data:image/jpeg")] != "data:image/jpeg" {
		t.Errorf("Expected default jpeg content type, got %s", got)
	}
}

func TestDecodeImageDataURLMalformed(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		"",
		"http://example.com/img.png",
		"data:image/png;base64",
		"data:image/png;base64,@@not-base64@@",
	} {
		if _, _, err := DecodeImageDataURL(input); !errors.Is(err, ErrImageDataURLMalformed) {
			t.Errorf("DecodeImageDataURL(%q) error = %v, want %v", input, err, ErrImageDataURLMalformed)
		}
	}
}
