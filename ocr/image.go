package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// NormalizeImage decodes image data and returns it in a format suitable
// for recognition and for upload: PNG and JPEG pass through unchanged,
// BMP and TIFF are re-encoded as PNG. The returned string is the MIME
// type of the returned bytes.
func NormalizeImage(data []byte) ([]byte, string, error) {
	switch DetectFormat(data) {
	case "png":
		return data, "image/png", nil
	case "jpeg":
		return data, "image/jpeg", nil
	case "bmp":
		img, err := bmp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("decoding BMP: %w", err)
		}
		return encodePNG(img)
	case "tiff":
		img, err := tiff.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("decoding TIFF: %w", err)
		}
		return encodePNG(img)
	default:
		return nil, "", fmt.Errorf("unsupported image format")
	}
}

func encodePNG(img image.Image) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), "image/png", nil
}

// DetectFormat sniffs the image format from magic bytes. It returns one of
// "png", "jpeg", "bmp", "tiff" or "" when the data is not a known image.
func DetectFormat(data []byte) string {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}):
		return "png"
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "jpeg"
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return "bmp"
	case len(data) >= 4 && (bytes.Equal(data[:4], []byte{'I', 'I', 0x2A, 0x00}) ||
		bytes.Equal(data[:4], []byte{'M', 'M', 0x00, 0x2A})):
		return "tiff"
	default:
		return ""
	}
}
