// Package format provides file format detection for criteria and deck files.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// XLSX indicates a Microsoft Excel (.xlsx) document.
	XLSX
	// PPTX indicates a Microsoft PowerPoint (.pptx) document.
	PPTX
	// HTML indicates an HTML document.
	HTML
	// Image indicates a raster image (PNG, JPEG, BMP or TIFF).
	Image
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	case DOCX:
		return "DOCX"
	case XLSX:
		return "XLSX"
	case PPTX:
		return "PPTX"
	case HTML:
		return "HTML"
	case Image:
		return "Image"
	default:
		return "Unknown"
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return PDF
	case ".docx":
		return DOCX
	case ".xlsx":
		return XLSX
	case ".pptx":
		return PPTX
	case ".html", ".htm":
		return HTML
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
		return Image
	default:
		return Unknown
	}
}

// DetectBytes inspects content to determine format. It distinguishes the
// ZIP-based Office formats (DOCX, XLSX, PPTX) by their package layout and
// recognizes PDF, HTML and common image types by magic bytes. Returns
// Unknown when the content matches none of these.
func DetectBytes(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}

	// PDF magic: %PDF
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return PDF
	}

	// ZIP magic: PK\x03\x04
	if data[0] == 0x50 && data[1] == 0x4B && data[2] == 0x03 && data[3] == 0x04 {
		return detectZIPFormat(bytes.NewReader(data), int64(len(data)))
	}

	if f := detectImageMagic(data); f != Unknown {
		return f
	}

	if detectHTMLMagic(data) {
		return HTML
	}

	return Unknown
}

// DetectFromReader inspects the content to determine format. This is more
// reliable than extension-based detection.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if bytes.HasPrefix(magic, []byte("%PDF")) {
		return PDF, nil
	}

	if len(magic) >= 4 && magic[0] == 0x50 && magic[1] == 0x4B && magic[2] == 0x03 && magic[3] == 0x04 {
		return detectZIPFormat(r, size), nil
	}

	if f := detectImageMagic(magic); f != Unknown {
		return f, nil
	}

	if detectHTMLMagic(magic) {
		return HTML, nil
	}

	return Unknown, nil
}

// detectImageMagic recognizes PNG, JPEG, BMP and TIFF by magic bytes.
func detectImageMagic(data []byte) Format {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}):
		return Image
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return Image
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return Image
	case len(data) >= 4 && (bytes.Equal(data[:4], []byte{'I', 'I', 0x2A, 0x00}) ||
		bytes.Equal(data[:4], []byte{'M', 'M', 0x00, 0x2A})):
		return Image
	default:
		return Unknown
	}
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	// Trim leading whitespace
	start := 0
	for start < len(data) && (data[start] == ' ' || data[start] == '\t' || data[start] == '\n' || data[start] == '\r') {
		start++
	}
	if start >= len(data) {
		return false
	}
	data = data[start:]

	// Check for common HTML signatures (case-insensitive for DOCTYPE)
	upper := strings.ToUpper(string(data))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<HTML") {
		return true
	}
	// XML declaration followed by html-like content could be XHTML
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper[:min(500, len(upper))], "<HTML") {
		return true
	}

	return false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// detectZIPFormat inspects a ZIP archive to determine which OOXML package
// it holds.
func detectZIPFormat(r io.ReaderAt, size int64) Format {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown
	}

	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX
		case strings.HasPrefix(f.Name, "ppt/"):
			return PPTX
		}
	}

	return Unknown
}
