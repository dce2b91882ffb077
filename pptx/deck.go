package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/beevik/etree"
)

// Deck provides access to a PPTX presentation: a read view of its slides in
// presentation order, plus structural mutation (titles, table-of-contents
// text, slide order) applied at the XML level so that everything not touched
// round-trips byte-for-byte.
type Deck struct {
	path string
	raw  []byte
	zr   *zip.Reader

	slideParts []string // zip part name per slide, presentation order
	slides     []*Slide

	// Parts opened for mutation; every entry here is re-serialized on Save.
	mutated map[string]*etree.Document
}

// Open reads a PPTX file into memory and parses its slides.
func Open(filename string) (*Deck, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}

	d := &Deck{
		path:    filename,
		raw:     raw,
		zr:      zr,
		mutated: make(map[string]*etree.Document),
	}

	if err := d.validate(); err != nil {
		return nil, err
	}
	if err := d.resolveSlideParts(); err != nil {
		return nil, fmt.Errorf("resolving slide order: %w", err)
	}
	if err := d.parseSlides(); err != nil {
		return nil, fmt.Errorf("parsing slides: %w", err)
	}

	return d, nil
}

// validate checks that required PPTX files exist.
func (d *Deck) validate() error {
	required := []string{
		"[Content_Types].xml",
		"ppt/presentation.xml",
	}

	fileMap := make(map[string]bool)
	for _, f := range d.zr.File {
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
func (d *Deck) getFileContent(name string) ([]byte, error) {
	for _, f := range d.zr.File {
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

// resolveSlideParts determines the slide part names in presentation order.
// The authoritative order is the sldIdLst, with each sldId resolved through
// the presentation relationships; this is the ordering that SetOrder
// permutes. Decks without usable relationships fall back to file-name order.
func (d *Deck) resolveSlideParts() error {
	data, err := d.getFileContent("ppt/presentation.xml")
	if err != nil {
		return err
	}

	var pres presentationXML
	if err := xml.Unmarshal(data, &pres); err != nil {
		return fmt.Errorf("parsing presentation.xml: %w", err)
	}

	rels := make(map[string]string)
	if relData, err := d.getFileContent("ppt/_rels/presentation.xml.rels"); err == nil {
		var relXML relationshipsXML
		if err := xml.Unmarshal(relData, &relXML); err == nil {
			for _, rel := range relXML.Relationship {
				rels[rel.ID] = rel.Target
			}
		}
	}

	if pres.SlideIdList != nil {
		parts := make([]string, 0, len(pres.SlideIdList.SlideId))
		for _, id := range pres.SlideIdList.SlideId {
			target, ok := rels[id.RID]
			if !ok {
				parts = nil
				break
			}
			parts = append(parts, normalizePartPath(target))
		}
		if len(parts) == len(pres.SlideIdList.SlideId) && len(parts) > 0 {
			d.slideParts = parts
			return nil
		}
	}

	// Fallback: collect slide parts and sort by number.
	var parts []string
	for _, f := range d.zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") &&
			strings.HasSuffix(f.Name, ".xml") &&
			!strings.Contains(f.Name, "_rels") {
			parts = append(parts, f.Name)
		}
	}
	if len(parts) == 0 {
		return fmt.Errorf("no slides found in presentation")
	}
	sort.Slice(parts, func(i, j int) bool {
		return slideNumber(parts[i]) < slideNumber(parts[j])
	})
	d.slideParts = parts
	return nil
}

// normalizePartPath resolves a relationship target to a full zip part name.
func normalizePartPath(target string) string {
	switch {
	case strings.HasPrefix(target, "/"):
		return strings.TrimPrefix(target, "/")
	case strings.HasPrefix(target, "../"):
		return strings.TrimPrefix(target, "../")
	case strings.HasPrefix(target, "ppt/"):
		return target
	default:
		return "ppt/" + target
	}
}

// slideNumber extracts the slide number from a path like "ppt/slides/slide1.xml".
func slideNumber(path string) int {
	name := strings.TrimPrefix(path, "ppt/slides/slide")
	name = strings.TrimSuffix(name, ".xml")
	var num int
	fmt.Sscanf(name, "%d", &num)
	return num
}

// parseSlides parses each slide part into its read view.
func (d *Deck) parseSlides() error {
	d.slides = make([]*Slide, 0, len(d.slideParts))
	for i, part := range d.slideParts {
		slide, err := d.parseSlide(part, i)
		if err != nil {
			return fmt.Errorf("slide %d (%s): %w", i, part, err)
		}
		d.slides = append(d.slides, slide)
	}
	return nil
}

func (d *Deck) parseSlide(part string, index int) (*Slide, error) {
	data, err := d.getFileContent(part)
	if err != nil {
		return nil, err
	}

	var sx slideXML
	if err := xml.Unmarshal(data, &sx); err != nil {
		return nil, err
	}

	slide := &Slide{Index: index}
	extractShapes(&sx.CSld.SpTree, slide)
	return slide, nil
}

// extractShapes extracts text content from all shapes in the shape tree.
func extractShapes(spTree *spTreeXML, slide *Slide) {
	for i := range spTree.Sp {
		if block := extractTextBlock(&spTree.Sp[i]); block != nil {
			if block.IsTitle && slide.Title == "" {
				slide.Title = block.Text
			}
			slide.Blocks = append(slide.Blocks, *block)
		}
	}
	for i := range spTree.GrpSp {
		extractGroupedShapes(&spTree.GrpSp[i], slide)
	}
}

func extractGroupedShapes(grp *grpSpXML, slide *Slide) {
	for i := range grp.Sp {
		if block := extractTextBlock(&grp.Sp[i]); block != nil {
			slide.Blocks = append(slide.Blocks, *block)
		}
	}
	for i := range grp.GrpSp {
		extractGroupedShapes(&grp.GrpSp[i], slide)
	}
}

// extractTextBlock extracts text from a shape.
func extractTextBlock(sp *spXML) *TextBlock {
	if sp.TxBody == nil || len(sp.TxBody.P) == 0 {
		return nil
	}

	block := &TextBlock{}
	if sp.NvSpPr.NvPr.Ph != nil {
		phType := sp.NvSpPr.NvPr.Ph.Type
		block.Placeholder = phType
		block.IsTitle = phType == "title" || phType == "ctrTitle"
	}
	if sp.SpPr.Xfrm != nil {
		block.X = sp.SpPr.Xfrm.Off.X
		block.Y = sp.SpPr.Xfrm.Off.Y
		block.Width = sp.SpPr.Xfrm.Ext.Cx
		block.Height = sp.SpPr.Xfrm.Ext.Cy
	}

	var allText strings.Builder
	for i := range sp.TxBody.P {
		para := extractParagraph(&sp.TxBody.P[i])
		if para.Text == "" {
			continue
		}
		block.Paragraphs = append(block.Paragraphs, para)
		if allText.Len() > 0 {
			allText.WriteString("\n")
		}
		allText.WriteString(para.Text)
	}
	block.Text = strings.TrimSpace(allText.String())

	if block.Text == "" {
		return nil
	}
	return block
}

func extractParagraph(p *pXML) Paragraph {
	para := Paragraph{}
	if p.PPr != nil {
		para.Level = p.PPr.Lvl
	}

	var text strings.Builder
	for _, run := range p.R {
		text.WriteString(run.T)
	}
	for _, fld := range p.Fld {
		text.WriteString(fld.T)
	}
	para.Text = strings.TrimSpace(text.String())
	return para
}

// SlideCount returns the number of slides.
func (d *Deck) SlideCount() int {
	return len(d.slides)
}

// Slides returns the slides in presentation order. The returned views
// reflect the deck as opened; they are not updated by mutations.
func (d *Deck) Slides() []*Slide {
	return d.slides
}

// Slide returns the slide at the given index (0-indexed).
func (d *Deck) Slide(index int) (*Slide, error) {
	if index < 0 || index >= len(d.slides) {
		return nil, fmt.Errorf("slide index %d out of range (0-%d)", index, len(d.slides)-1)
	}
	return d.slides[index], nil
}
