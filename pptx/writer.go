package pptx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/beevik/etree"
	"github.com/google/uuid"
)

// TOCEntry is a single line of a table of contents: a numbered heading with
// optional sub-items rendered below it at the next indent level.
type TOCEntry struct {
	Number   int
	Heading  string
	SubItems []string
}

const (
	tocMaxSubItems   = 3
	tocSubItemLen    = 40
	tocHeadingSize   = "1100"
	tocSubItemSize   = "900"
	tocSubItemBullet = "・ "

	// A body shape qualifies as the TOC target only if it already holds
	// enough text to look like a real content frame.
	tocMinFrameText = 10
)

// part returns the etree document for a zip part, loading it on first use.
// Every part opened through here is re-serialized on Save, so only parts
// that are actually being changed should be requested.
func (d *Deck) part(name string) (*etree.Document, error) {
	if doc, ok := d.mutated[name]; ok {
		return doc, nil
	}
	data, err := d.getFileContent(name)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	d.mutated[name] = doc
	return doc, nil
}

// slidePart returns the zip part name for a slide index in presentation order.
func (d *Deck) slidePart(index int) (string, error) {
	if index < 0 || index >= len(d.slideParts) {
		return "", fmt.Errorf("slide index %d out of range (0-%d)", index, len(d.slideParts)-1)
	}
	return d.slideParts[index], nil
}

// SetSlideTitle replaces the text of the slide's title placeholder. The
// first run's properties are kept so the new text keeps the deck's styling.
func (d *Deck) SetSlideTitle(index int, title string) error {
	part, err := d.slidePart(index)
	if err != nil {
		return err
	}
	doc, err := d.part(part)
	if err != nil {
		return err
	}

	sp := findTitleShape(doc.Root())
	if sp == nil {
		return fmt.Errorf("slide %d has no title placeholder", index)
	}
	txBody := childByTag(sp, "txBody")
	if txBody == nil {
		return fmt.Errorf("slide %d title shape has no text body", index)
	}

	prefix := drawingPrefix(txBody)
	paras := childrenByTag(txBody, "p")
	if len(paras) == 0 {
		p := txBody.CreateElement(prefix + ":p")
		paras = []*etree.Element{p}
	}

	// Keep any run properties from the existing first run.
	var rPr *etree.Element
	for _, p := range paras {
		for _, r := range childrenByTag(p, "r") {
			if props := childByTag(r, "rPr"); props != nil {
				rPr = props.Copy()
				break
			}
		}
		if rPr != nil {
			break
		}
	}

	first := paras[0]
	for _, child := range append(childrenByTag(first, "r"), childrenByTag(first, "fld")...) {
		first.RemoveChild(child)
	}
	run := first.CreateElement(prefix + ":r")
	if rPr != nil {
		run.AddChild(rPr)
	}
	run.CreateElement(prefix + ":t").SetText(title)

	for _, p := range paras[1:] {
		txBody.RemoveChild(p)
	}
	return nil
}

// PopulateTOC writes a table of contents into the largest text frame of the
// given slide: bold numbered headings with up to three indented sub-items
// each. Sub-items longer than 40 characters are truncated.
func (d *Deck) PopulateTOC(index int, entries []TOCEntry) error {
	part, err := d.slidePart(index)
	if err != nil {
		return err
	}
	doc, err := d.part(part)
	if err != nil {
		return err
	}

	sp := findTOCFrame(doc.Root())
	if sp == nil {
		return fmt.Errorf("slide %d has no suitable text frame for a table of contents", index)
	}
	txBody := childByTag(sp, "txBody")
	prefix := drawingPrefix(txBody)

	for _, p := range childrenByTag(txBody, "p") {
		txBody.RemoveChild(p)
	}

	for _, entry := range entries {
		p := txBody.CreateElement(prefix + ":p")
		r := p.CreateElement(prefix + ":r")
		rPr := r.CreateElement(prefix + ":rPr")
		rPr.CreateAttr("lang", "ja-JP")
		rPr.CreateAttr("b", "1")
		rPr.CreateAttr("sz", tocHeadingSize)
		r.CreateElement(prefix + ":t").SetText(fmt.Sprintf("%d. %s", entry.Number, entry.Heading))

		subs := entry.SubItems
		if len(subs) > tocMaxSubItems {
			subs = subs[:tocMaxSubItems]
		}
		for _, sub := range subs {
			subP := txBody.CreateElement(prefix + ":p")
			pPr := subP.CreateElement(prefix + ":pPr")
			pPr.CreateAttr("lvl", "1")
			sr := subP.CreateElement(prefix + ":r")
			srPr := sr.CreateElement(prefix + ":rPr")
			srPr.CreateAttr("lang", "ja-JP")
			srPr.CreateAttr("b", "0")
			srPr.CreateAttr("sz", tocSubItemSize)
			sr.CreateElement(prefix + ":t").SetText(tocSubItemBullet + truncateRunes(sub, tocSubItemLen))
		}
	}
	return nil
}

// SetOrder rearranges the sldIdLst so slides appear in the given order.
// order must be a permutation of the current slide indices.
func (d *Deck) SetOrder(order []int) error {
	if len(order) != len(d.slideParts) {
		return fmt.Errorf("order has %d entries, deck has %d slides", len(order), len(d.slideParts))
	}
	seen := make([]bool, len(order))
	for _, idx := range order {
		if idx < 0 || idx >= len(order) {
			return fmt.Errorf("slide index %d out of range", idx)
		}
		if seen[idx] {
			return fmt.Errorf("slide index %d appears more than once", idx)
		}
		seen[idx] = true
	}

	doc, err := d.part("ppt/presentation.xml")
	if err != nil {
		return err
	}
	sldIdLst := childByTag(doc.Root(), "sldIdLst")
	if sldIdLst == nil {
		return fmt.Errorf("presentation.xml has no sldIdLst")
	}
	ids := childrenByTag(sldIdLst, "sldId")
	if len(ids) != len(order) {
		return fmt.Errorf("sldIdLst has %d entries, expected %d", len(ids), len(order))
	}

	for _, id := range ids {
		sldIdLst.RemoveChild(id)
	}
	for _, idx := range order {
		sldIdLst.AddChild(ids[idx])
	}
	return nil
}

// Save writes the deck to path. Mutated parts are re-serialized; everything
// else is copied from the original archive unchanged. The file is written to
// a temporary sibling first and renamed into place.
func (d *Deck) Save(path string) error {
	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, "."+uuid.New().String()+".pptx.tmp")

	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}

	if err := d.writeArchive(tmpFile); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing output file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming output file: %w", err)
	}
	return nil
}

func (d *Deck) writeArchive(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, f := range d.zr.File {
		var data []byte
		if doc, ok := d.mutated[f.Name]; ok {
			serialized, err := doc.WriteToBytes()
			if err != nil {
				return fmt.Errorf("serializing %s: %w", f.Name, err)
			}
			data = serialized
		} else {
			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("reading %s: %w", f.Name, err)
			}
			data, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return fmt.Errorf("reading %s: %w", f.Name, err)
			}
		}

		hdr := &zip.FileHeader{Name: f.Name, Method: f.Method}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
		if _, err := fw.Write(data); err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

// findTitleShape walks the shape tree for the title or centered-title
// placeholder.
func findTitleShape(root *etree.Element) *etree.Element {
	spTree := descendantByPath(root, "cSld", "spTree")
	if spTree == nil {
		return nil
	}
	for _, sp := range childrenByTag(spTree, "sp") {
		ph := descendantByPath(sp, "nvSpPr", "nvPr", "ph")
		if ph == nil {
			continue
		}
		t := ph.SelectAttrValue("type", "")
		if t == "title" || t == "ctrTitle" {
			return sp
		}
	}
	return nil
}

// findTOCFrame picks the shape to hold the table of contents: the
// largest-area non-title shape whose current text is substantial and not
// just slide numbering.
func findTOCFrame(root *etree.Element) *etree.Element {
	spTree := descendantByPath(root, "cSld", "spTree")
	if spTree == nil {
		return nil
	}

	var best *etree.Element
	var bestArea int64
	for _, sp := range childrenByTag(spTree, "sp") {
		if ph := descendantByPath(sp, "nvSpPr", "nvPr", "ph"); ph != nil {
			t := ph.SelectAttrValue("type", "")
			if t == "title" || t == "ctrTitle" {
				continue
			}
		}
		txBody := childByTag(sp, "txBody")
		if txBody == nil {
			continue
		}
		text := gatherText(txBody)
		if utf8.RuneCountInString(text) <= tocMinFrameText || isDigitsOnly(text) {
			continue
		}
		area := shapeArea(sp)
		if best == nil || area > bestArea {
			best = sp
			bestArea = area
		}
	}
	return best
}

func shapeArea(sp *etree.Element) int64 {
	ext := descendantByPath(sp, "spPr", "xfrm", "ext")
	if ext == nil {
		return 0
	}
	cx, _ := strconv.ParseInt(ext.SelectAttrValue("cx", "0"), 10, 64)
	cy, _ := strconv.ParseInt(ext.SelectAttrValue("cy", "0"), 10, 64)
	return cx * cy
}

func gatherText(el *etree.Element) string {
	var sb strings.Builder
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		if e.Tag == "t" {
			sb.WriteString(e.Text())
			return
		}
		for _, child := range e.ChildElements() {
			walk(child)
		}
	}
	walk(el)
	return sb.String()
}

func isDigitsOnly(s string) bool {
	has := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if !unicode.IsDigit(r) {
			return false
		}
		has = true
	}
	return has
}

// childByTag returns the first child element with the given local tag,
// ignoring namespace prefixes.
func childByTag(el *etree.Element, tag string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			return child
		}
	}
	return nil
}

func childrenByTag(el *etree.Element, tag string) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Tag == tag {
			out = append(out, child)
		}
	}
	return out
}

func descendantByPath(el *etree.Element, tags ...string) *etree.Element {
	cur := el
	for _, tag := range tags {
		cur = childByTag(cur, tag)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// drawingPrefix returns the namespace prefix used for drawing-ml elements
// in the given text body, usually "a".
func drawingPrefix(txBody *etree.Element) string {
	if txBody != nil {
		for _, child := range txBody.ChildElements() {
			if child.Tag == "p" && child.Space != "" {
				return child.Space
			}
		}
	}
	return "a"
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
