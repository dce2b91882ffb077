// Package htmldoc provides HTML document text extraction.
package htmldoc

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// Reader provides access to HTML document content.
type Reader struct {
	title string
	lines []string
}

// Open opens an HTML file for reading.
func Open(filename string) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return OpenReader(f)
}

// OpenReader parses HTML from an io.Reader.
func OpenReader(r io.Reader) (*Reader, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	reader := &Reader{}
	reader.extractTitle(doc)
	reader.extractBody(doc)

	return reader, nil
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	// No file handles kept open
	return nil
}

// Title returns the document title from the head element, if any.
func (r *Reader) Title() string {
	return r.title
}

// Text returns the document's visible text, one block element per line.
// Script and style contents are skipped; table rows are tab-joined.
func (r *Reader) Text() (string, error) {
	return strings.Join(r.lines, "\n"), nil
}

func (r *Reader) extractTitle(n *html.Node) {
	if n.Type == html.ElementNode && n.Data == "title" {
		r.title = strings.TrimSpace(textContent(n))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if r.title == "" {
			r.extractTitle(c)
		}
	}
}

func (r *Reader) extractBody(n *html.Node) {
	body := findElement(n, "body")
	if body == nil {
		body = n
	}
	r.walk(body)
}

// blockTags are elements that produce their own output line.
var blockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "li": true,
	"blockquote": true, "pre": true, "dt": true, "dd": true,
}

func (r *Reader) walk(n *html.Node) {
	if n.Type != html.ElementNode {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.walk(c)
		}
		return
	}

	switch {
	case n.Data == "script" || n.Data == "style" || n.Data == "noscript":
		return
	case blockTags[n.Data]:
		if text := strings.TrimSpace(textContent(n)); text != "" {
			r.lines = append(r.lines, text)
		}
	case n.Data == "tr":
		var cells []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				cells = append(cells, strings.TrimSpace(textContent(c)))
			}
		}
		if line := strings.TrimSpace(strings.Join(cells, "\t")); line != "" {
			r.lines = append(r.lines, line)
		}
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			r.walk(c)
		}
	}
}

// findElement finds the first element with the given tag name.
func findElement(n *html.Node, tagName string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tagName {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tagName); found != nil {
			return found
		}
	}
	return nil
}

// textContent returns the concatenated text of a node's subtree with
// whitespace collapsed.
func textContent(n *html.Node) string {
	var sb strings.Builder
	collectText(n, &sb)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteString(" ")
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
