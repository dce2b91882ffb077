package format

import (
	"archive/zip"
	"bytes"
	"testing"
)

func TestFormat_String(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{PDF, "PDF"},
		{DOCX, "DOCX"},
		{XLSX, "XLSX"},
		{PPTX, "PPTX"},
		{HTML, "HTML"},
		{Image, "Image"},
		{Unknown, "Unknown"},
		{Format(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.format.String(); got != tt.want {
			t.Errorf("Format(%d).String() = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		filename string
		want     Format
	}{
		{"document.pdf", PDF},
		{"document.PDF", PDF},
		{"document.docx", DOCX},
		{"document.DOCX", DOCX},
		{"criteria.xlsx", XLSX},
		{"criteria.XLSX", XLSX},
		{"deck.pptx", PPTX},
		{"deck.PPTX", PPTX},
		{"page.html", HTML},
		{"page.htm", HTML},
		{"scan.png", Image},
		{"scan.jpg", Image},
		{"scan.jpeg", Image},
		{"scan.bmp", Image},
		{"scan.tiff", Image},
		{"document.txt", Unknown},
		{"document", Unknown},
		{"", Unknown},
		{"/path/to/file.pdf", PDF},
		{"/path/to/criteria.xlsx", XLSX},
	}

	for _, tt := range tests {
		if got := Detect(tt.filename); got != tt.want {
			t.Errorf("Detect(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

// zipWithFile builds an in-memory ZIP containing a single named entry.
func zipWithFile(t *testing.T, name string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("Failed to create zip entry: %v", err)
	}
	w.Write([]byte("<x/>"))
	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip: %v", err)
	}
	return buf.Bytes()
}

func TestDetectBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{
			name: "PDF magic bytes",
			data: []byte("%PDF-1.4"),
			want: PDF,
		},
		{
			name: "XLSX package",
			data: zipWithFile(t, "xl/workbook.xml"),
			want: XLSX,
		},
		{
			name: "DOCX package",
			data: zipWithFile(t, "word/document.xml"),
			want: DOCX,
		},
		{
			name: "PPTX package",
			data: zipWithFile(t, "ppt/presentation.xml"),
			want: PPTX,
		},
		{
			name: "plain ZIP",
			data: zipWithFile(t, "readme.txt"),
			want: Unknown,
		},
		{
			name: "HTML with DOCTYPE",
			data: []byte("<!DOCTYPE html>\n<html>"),
			want: HTML,
		},
		{
			name: "HTML with html tag",
			data: []byte("<html><head>"),
			want: HTML,
		},
		{
			name: "HTML with whitespace before DOCTYPE",
			data: []byte("  \n  <!DOCTYPE HTML PUBLIC"),
			want: HTML,
		},
		{
			name: "PNG magic",
			data: []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
			want: Image,
		},
		{
			name: "JPEG magic",
			data: []byte{0xFF, 0xD8, 0xFF, 0xE0},
			want: Image,
		},
		{
			name: "TIFF magic",
			data: []byte{'M', 'M', 0x00, 0x2A},
			want: Image,
		},
		{
			name: "empty data",
			data: []byte{},
			want: Unknown,
		},
		{
			name: "short data",
			data: []byte{0x50, 0x4B},
			want: Unknown,
		},
		{
			name: "text file",
			data: []byte("Hello, World!"),
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectBytes(tt.data); got != tt.want {
				t.Errorf("DetectBytes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectFromReader_PDF(t *testing.T) {
	data := []byte("%PDF-1.4\n%%EOF")
	r := bytes.NewReader(data)

	format, err := DetectFromReader(r, int64(len(data)))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if format != PDF {
		t.Errorf("DetectFromReader() = %v, want PDF", format)
	}
}

func TestDetectFromReader_XLSX(t *testing.T) {
	data := zipWithFile(t, "xl/workbook.xml")
	r := bytes.NewReader(data)

	format, err := DetectFromReader(r, int64(len(data)))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if format != XLSX {
		t.Errorf("DetectFromReader() = %v, want XLSX", format)
	}
}

func TestDetectFromReader_Unknown(t *testing.T) {
	data := []byte("Hello, World! This is plain text.")
	r := bytes.NewReader(data)

	format, err := DetectFromReader(r, int64(len(data)))
	if err != nil {
		t.Fatalf("DetectFromReader() error = %v", err)
	}
	if format != Unknown {
		t.Errorf("DetectFromReader() = %v, want Unknown", format)
	}
}
