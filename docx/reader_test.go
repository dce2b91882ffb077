package docx

import (
	"archive/zip"
	"os"
	"strings"
	"testing"
)

// writeZipFile writes a file into a zip archive.
func writeZipFile(t *testing.T, zw *zip.Writer, name, content string) {
	t.Helper()
	w, err := zw.Create(name)
	if err != nil {
		t.Fatalf("Failed to create %s in zip: %v", name, err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

// createMinimalDOCX creates a minimal valid DOCX file for testing.
func createMinimalDOCX(t *testing.T, documentXML string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.docx")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpFile.Close()

	f, err := os.Create(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	writeZipFile(t, zw, "[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`)

	writeZipFile(t, zw, "_rels/.rels", `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`)

	writeZipFile(t, zw, "word/document.xml", documentXML)

	if err := zw.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}

	return tmpFile.Name()
}

const simpleDocument = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:r><w:t>Review Criteria</w:t></w:r>
    </w:p>
    <w:p>
      <w:r><w:t>1. </w:t></w:r>
      <w:r><w:t>Scope of the project</w:t></w:r>
    </w:p>
    <w:p/>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>2</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>Schedule</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
  </w:body>
</w:document>`

func TestOpen(t *testing.T) {
	path := createMinimalDOCX(t, simpleDocument)
	defer os.Remove(path)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer r.Close()

	paras := r.Paragraphs()
	if len(paras) != 3 {
		t.Fatalf("Paragraphs() = %d entries, want 3: %v", len(paras), paras)
	}
	if paras[0] != "Review Criteria" {
		t.Errorf("Paragraphs()[0] = %q, want 'Review Criteria'", paras[0])
	}
	// Adjacent runs are concatenated.
	if paras[1] != "1. Scope of the project" {
		t.Errorf("Paragraphs()[1] = %q, want '1. Scope of the project'", paras[1])
	}
	// Table rows become tab-joined lines.
	if paras[2] != "2\tSchedule" {
		t.Errorf("Paragraphs()[2] = %q, want '2\\tSchedule'", paras[2])
	}
}

func TestOpen_NotFound(t *testing.T) {
	_, err := Open("/nonexistent/file.docx")
	if err == nil {
		t.Error("Open() expected error for nonexistent file")
	}
}

func TestOpen_MissingDocument(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "test-*.docx")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpFile.Close()

	f, _ := os.Create(tmpFile.Name())
	zw := zip.NewWriter(f)
	writeZipFile(t, zw, "[Content_Types].xml", "<Types/>")
	zw.Close()
	f.Close()
	defer os.Remove(tmpFile.Name())

	_, err = Open(tmpFile.Name())
	if err == nil {
		t.Error("Open() expected error for missing document.xml")
	}
}

func TestReader_Text(t *testing.T) {
	path := createMinimalDOCX(t, simpleDocument)
	defer os.Remove(path)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer r.Close()

	text, err := r.Text()
	if err != nil {
		t.Fatalf("Text() failed: %v", err)
	}

	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Errorf("Text() has %d lines, want 3: %q", len(lines), text)
	}
	if !strings.Contains(text, "Review Criteria") {
		t.Errorf("Text() missing heading, got: %q", text)
	}
}

func TestReader_Close(t *testing.T) {
	path := createMinimalDOCX(t, simpleDocument)
	defer os.Remove(path)

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := r.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Second Close() failed: %v", err)
	}
}
