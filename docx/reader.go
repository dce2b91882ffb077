// Package docx provides DOCX (Office Open XML) document text extraction.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Reader provides access to DOCX document content.
type Reader struct {
	zipReader  *zip.ReadCloser
	paragraphs []string
}

// documentXML represents the word/document.xml file structure.
type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    bodyXML  `xml:"body"`
}

type bodyXML struct {
	Paragraphs []paragraphXML `xml:"p"`
	Tables     []tableXML     `xml:"tbl"`
}

type paragraphXML struct {
	Runs []runXML `xml:"r"`
}

type runXML struct {
	Text []textXML `xml:"t"`
	Tab  []struct{} `xml:"tab"`
	Br   []struct{} `xml:"br"`
}

type textXML struct {
	Value string `xml:",chardata"`
}

type tableXML struct {
	Rows []tableRowXML `xml:"tr"`
}

type tableRowXML struct {
	Cells []tableCellXML `xml:"tc"`
}

type tableCellXML struct {
	Paragraphs []paragraphXML `xml:"p"`
}

// Open opens a DOCX file for reading.
func Open(filename string) (*Reader, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	r := &Reader{zipReader: zr}

	if err := r.validate(); err != nil {
		zr.Close()
		return nil, err
	}

	if err := r.parseDocument(); err != nil {
		zr.Close()
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	return r, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	if r.zipReader != nil {
		err := r.zipReader.Close()
		r.zipReader = nil
		return err
	}
	return nil
}

// validate checks that required DOCX files exist.
func (r *Reader) validate() error {
	required := []string{
		"[Content_Types].xml",
		"word/document.xml",
	}

	fileMap := make(map[string]bool)
	for _, f := range r.zipReader.File {
		fileMap[f.Name] = true
	}

	for _, name := range required {
		if !fileMap[name] {
			return fmt.Errorf("missing required file: %s", name)
		}
	}

	return nil
}

// getFileContent reads the content of a file from the ZIP archive.
func (r *Reader) getFileContent(name string) ([]byte, error) {
	for _, f := range r.zipReader.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

// parseDocument parses word/document.xml into a flat paragraph list.
// Table cells contribute their paragraphs in row order, tab-joined per row.
func (r *Reader) parseDocument() error {
	data, err := r.getFileContent("word/document.xml")
	if err != nil {
		return err
	}

	var doc documentXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return err
	}

	for _, p := range doc.Body.Paragraphs {
		if text := paragraphText(p); text != "" {
			r.paragraphs = append(r.paragraphs, text)
		}
	}
	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			var cells []string
			for _, cell := range row.Cells {
				var parts []string
				for _, p := range cell.Paragraphs {
					if text := paragraphText(p); text != "" {
						parts = append(parts, text)
					}
				}
				cells = append(cells, strings.Join(parts, " "))
			}
			line := strings.TrimSpace(strings.Join(cells, "\t"))
			if line != "" {
				r.paragraphs = append(r.paragraphs, line)
			}
		}
	}

	return nil
}

func paragraphText(p paragraphXML) string {
	var sb strings.Builder
	for _, run := range p.Runs {
		for range run.Tab {
			sb.WriteString("\t")
		}
		for _, t := range run.Text {
			sb.WriteString(t.Value)
		}
	}
	return strings.TrimSpace(sb.String())
}

// Paragraphs returns the non-empty paragraphs of the document in order.
func (r *Reader) Paragraphs() []string {
	return r.paragraphs
}

// Text returns all document text, one paragraph per line.
func (r *Reader) Text() (string, error) {
	return strings.Join(r.paragraphs, "\n"), nil
}
