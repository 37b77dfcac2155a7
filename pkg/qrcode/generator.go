package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when content is empty or only whitespace
	ErrEmptyContent = errors.New("qrcode: content cannot be empty")

	// ErrRenderFailed is returned when the underlying encoder fails
	ErrRenderFailed = errors.New("qrcode: failed to render image")
)

// defaultSize is the image size in pixels when none is specified
const defaultSize = 256

// Render encodes content as a PNG QR code of the given size.
func Render(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrRenderFailed, err)
	}
	return png, nil
}

// RenderDataURI encodes content as a base64 data URI suitable for direct
// embedding in an <img> tag during two-factor enrollment.
func RenderDataURI(content string, size int) (string, error) {
	png, err := Render(content, size)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png)), nil
}
