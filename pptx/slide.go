package pptx

import "strings"

// Slide is the read-only view of a parsed slide.
type Slide struct {
	Index  int         // 0-indexed position in presentation order
	Title  string      // title placeholder text, empty if none
	Blocks []TextBlock // text content in shape-tree order
}

// TextBlock is one text-bearing shape on a slide.
type TextBlock struct {
	Text        string
	Paragraphs  []Paragraph
	IsTitle     bool   // from a title/ctrTitle placeholder
	Placeholder string // placeholder type, if any
	X, Y        int64  // position in EMUs
	Width       int64
	Height      int64
}

// Paragraph is one paragraph within a text block.
type Paragraph struct {
	Text  string
	Level int // indent level (0 = top)
}

// FirstText returns the first non-empty text on the slide, in shape order.
func (s *Slide) FirstText() string {
	for _, block := range s.Blocks {
		if t := strings.TrimSpace(block.Text); t != "" {
			return t
		}
	}
	return ""
}

// BodyText joins the slide's text blocks, skipping fragments of two
// characters or fewer, bounded to limit runes. It is the raw material for a
// group's content summary.
func (s *Slide) BodyText(limit int) string {
	var parts []string
	for _, block := range s.Blocks {
		t := strings.TrimSpace(block.Text)
		if len([]rune(t)) > 2 {
			parts = append(parts, t)
		}
	}
	joined := strings.Join(parts, "\n")
	r := []rune(joined)
	if limit > 0 && len(r) > limit {
		return string(r[:limit])
	}
	return joined
}
