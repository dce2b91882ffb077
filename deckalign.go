// Package deckalign reorganizes PPTX decks so their content slides follow
// the order of a criteria document's taxonomy.
//
// Basic usage:
//
//	report, warnings, err := deckalign.Open("criteria.xlsx", "deck.pptx").Run(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", deckalign.FormatWarnings(warnings))
//	}
//
// With options:
//
//	report, _, err := deckalign.Open("criteria.pdf", "deck.pptx").
//	    OutputTo("aligned.pptx").
//	    Model("gemini-2.5-pro").
//	    Run(ctx)
//
// Criteria may be an Excel workbook (parsed directly), a Word, HTML or
// plain-text document (text is sent to the language model), or a PDF or
// image (raw bytes are sent to the language model).
package deckalign

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tsawler/deckalign/docx"
	"github.com/tsawler/deckalign/format"
	"github.com/tsawler/deckalign/htmldoc"
	"github.com/tsawler/deckalign/ocr"
	"github.com/tsawler/deckalign/oracle"
	"github.com/tsawler/deckalign/pptx"
	"github.com/tsawler/deckalign/reorder"
	"github.com/tsawler/deckalign/segment"
	"github.com/tsawler/deckalign/taxonomy"
	"github.com/tsawler/deckalign/xlsx"
)

// slideSnippetLen bounds the per-slide body text forwarded to the model.
const slideSnippetLen = 500

// Report summarizes a completed run.
type Report struct {
	Categories int    // categories extracted from the criteria
	Groups     int    // content slide groups found in the deck
	Matched    int    // groups matched to a category
	Unused     int    // groups appended after the matched ones
	Order      []int  // final slide order, old index per new position
	Output     string // path the reorganized deck was written to
}

// Organizer provides a fluent interface for configuring and running a deck
// reorganization. Each configuration method returns a new Organizer
// instance, so a partially configured Organizer can be reused.
type Organizer struct {
	criteriaPath string
	deckPath     string
	options      runOptions
}

// Open prepares an Organizer for the given criteria document and PPTX deck.
// Nothing is read until Run is called.
func Open(criteriaPath, deckPath string) *Organizer {
	return &Organizer{
		criteriaPath: criteriaPath,
		deckPath:     deckPath,
		options:      defaultOptions(),
	}
}

// clone creates a copy of the Organizer with copied options.
func (o *Organizer) clone() *Organizer {
	return &Organizer{
		criteriaPath: o.criteriaPath,
		deckPath:     o.deckPath,
		options:      o.options.clone(),
	}
}

// OutputTo sets the output path. The default is the deck's path with an
// "_output" suffix before the extension.
func (o *Organizer) OutputTo(path string) *Organizer {
	c := o.clone()
	c.options.output = path
	return c
}

// AnchorSlides sets how many leading slides keep their position. The
// default is 2: a title slide and a table-of-contents slide.
func (o *Organizer) AnchorSlides(n int) *Organizer {
	c := o.clone()
	c.options.anchors = n
	return c
}

// Model sets the language model used for extraction and matching.
func (o *Organizer) Model(name string) *Organizer {
	c := o.clone()
	c.options.model = name
	return c
}

// APIKey sets the API key for the language model. When unset, the key is
// taken from the environment.
func (o *Organizer) APIKey(key string) *Organizer {
	c := o.clone()
	c.options.apiKey = key
	return c
}

// Timeout sets the per-call timeout for language model requests.
func (o *Organizer) Timeout(d time.Duration) *Organizer {
	c := o.clone()
	c.options.timeout = d
	return c
}

// LocalOCR recognizes criteria images locally with Tesseract and sends the
// recognized text to the model, instead of uploading the image. Requires a
// binary built with the "ocr" tag; otherwise the run falls back to the
// upload path with a warning.
func (o *Organizer) LocalOCR() *Organizer {
	c := o.clone()
	c.options.localOCR = true
	return c
}

// OCRLanguage sets the Tesseract language pack used with LocalOCR. The
// default is "jpn+eng".
func (o *Organizer) OCRLanguage(lang string) *Organizer {
	c := o.clone()
	c.options.ocrLang = lang
	return c
}

// WithGenerator substitutes the language model backend. Intended for tests
// and for callers bringing their own model client.
func (o *Organizer) WithGenerator(gen oracle.Generator) *Organizer {
	c := o.clone()
	c.options.generator = gen
	return c
}

// Run executes the pipeline: extract the taxonomy from the criteria,
// segment the deck's content slides, match groups to categories, reorder,
// retitle, fill the table of contents, and save.
//
// Warnings report recoverable problems (a failed table of contents, an
// unusable model reply); the deck is still written. Errors mean no output
// was produced.
func (o *Organizer) Run(ctx context.Context) (*Report, []Warning, error) {
	var warnings []Warning

	client, err := o.oracleClient(ctx)
	if err != nil {
		return nil, nil, err
	}

	cats, ws, err := o.extractTaxonomy(ctx, client)
	warnings = append(warnings, ws...)
	if err != nil {
		return nil, warnings, err
	}
	if len(cats) == 0 {
		return nil, warnings, ErrNoCategories
	}

	deck, err := pptx.Open(o.deckPath)
	if err != nil {
		return nil, warnings, fmt.Errorf("opening deck: %w", err)
	}
	if deck.SlideCount() <= o.options.anchors {
		return nil, warnings, fmt.Errorf("%w: %d slides with %d anchors",
			ErrTooFewSlides, deck.SlideCount(), o.options.anchors)
	}

	slides := make([]segment.SlideInfo, deck.SlideCount())
	for i, s := range deck.Slides() {
		slides[i] = segment.SlideInfo{
			Title:   s.Title,
			Snippet: s.FirstText(),
			Text:    s.BodyText(slideSnippetLen),
		}
	}

	groups, err := segment.Split(slides, o.options.anchors)
	if err != nil {
		return nil, warnings, err
	}

	mapping, err := client.Match(ctx, cats, groups)
	if err != nil {
		// An unusable reply leaves every group unmatched; the deck is
		// still written in its original content order.
		warnings = append(warnings, warningf("matching", "model reply unusable: %v", err))
		mapping = map[int]int{}
	}

	result, err := reorder.Apply(deck, cats, groups, mapping, o.options.anchors)
	if err != nil {
		return nil, warnings, err
	}
	for _, idx := range result.TitleFailures {
		warnings = append(warnings, warningf("titles", "slide %d has no title placeholder", idx))
	}

	if o.options.anchors >= 2 {
		entries := make([]pptx.TOCEntry, len(cats))
		for i, cat := range cats {
			entries[i] = pptx.TOCEntry{
				Number:   cat.No,
				Heading:  cat.MainCategory,
				SubItems: cat.SubItems,
			}
		}
		if err := deck.PopulateTOC(1, entries); err != nil {
			warnings = append(warnings, warningf("toc", "table of contents not written: %v", err))
		}
	}

	output := o.options.output
	if output == "" {
		output = defaultOutputPath(o.deckPath)
	}
	if err := deck.Save(output); err != nil {
		return nil, warnings, fmt.Errorf("saving deck: %w", err)
	}

	return &Report{
		Categories: len(cats),
		Groups:     len(groups),
		Matched:    result.Matched,
		Unused:     result.Unused,
		Order:      result.Order,
		Output:     output,
	}, warnings, nil
}

// oracleClient builds the language model client from the options.
func (o *Organizer) oracleClient(ctx context.Context) (*oracle.Client, error) {
	if o.options.generator != nil {
		return oracle.NewClient(o.options.generator), nil
	}

	apiKey := o.options.apiKey
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key: set GOOGLE_API_KEY or use APIKey()")
	}

	gem, err := oracle.NewGemini(ctx, oracle.GeminiConfig{
		APIKey:  apiKey,
		Model:   o.options.model,
		Timeout: o.options.timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating model client: %w", err)
	}
	return oracle.NewClient(gem), nil
}

// extractTaxonomy reads the criteria document and produces categories.
// Excel workbooks are parsed directly; everything else is delegated to the
// language model as text or raw bytes.
func (o *Organizer) extractTaxonomy(ctx context.Context, client *oracle.Client) ([]taxonomy.Category, []Warning, error) {
	data, err := os.ReadFile(o.criteriaPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading criteria: %w", err)
	}

	f := format.DetectBytes(data)
	if f == format.Unknown {
		f = format.Detect(o.criteriaPath)
	}

	var warnings []Warning
	switch f {
	case format.XLSX:
		r, err := xlsx.Open(o.criteriaPath)
		if err != nil {
			return nil, warnings, fmt.Errorf("opening criteria workbook: %w", err)
		}
		defer r.Close()
		var tables []taxonomy.Table
		for _, tbl := range r.Tables() {
			tables = append(tables, taxonomy.Table(tbl.Rows))
		}
		return taxonomy.Extract(tables), warnings, nil

	case format.DOCX:
		r, err := docx.Open(o.criteriaPath)
		if err != nil {
			return nil, warnings, fmt.Errorf("opening criteria document: %w", err)
		}
		defer r.Close()
		text, err := r.Text()
		if err != nil {
			return nil, warnings, fmt.Errorf("reading criteria document: %w", err)
		}
		cats, err := client.ExtractCategories(ctx, []oracle.Part{oracle.TextPart(text)})
		return cats, warnings, err

	case format.HTML:
		r, err := htmldoc.OpenReader(strings.NewReader(string(data)))
		if err != nil {
			return nil, warnings, fmt.Errorf("parsing criteria HTML: %w", err)
		}
		defer r.Close()
		text, err := r.Text()
		if err != nil {
			return nil, warnings, fmt.Errorf("reading criteria HTML: %w", err)
		}
		cats, err := client.ExtractCategories(ctx, []oracle.Part{oracle.TextPart(text)})
		return cats, warnings, err

	case format.PDF:
		cats, err := client.ExtractCategories(ctx, []oracle.Part{oracle.BytesPart(data, "application/pdf")})
		return cats, warnings, err

	case format.Image:
		if o.options.localOCR {
			text, err := o.recognizeImage(data)
			if err != nil {
				warnings = append(warnings, warningf("taxonomy", "local OCR unavailable: %v", err))
			} else {
				cats, err := client.ExtractCategories(ctx, []oracle.Part{oracle.TextPart(text)})
				return cats, warnings, err
			}
		}
		normalized, mime, err := ocr.NormalizeImage(data)
		if err != nil {
			return nil, warnings, fmt.Errorf("preparing criteria image: %w", err)
		}
		cats, err := client.ExtractCategories(ctx, []oracle.Part{oracle.BytesPart(normalized, mime)})
		return cats, warnings, err

	default:
		if utf8.Valid(data) {
			cats, err := client.ExtractCategories(ctx, []oracle.Part{oracle.TextPart(string(data))})
			return cats, warnings, err
		}
		return nil, warnings, fmt.Errorf("%w: %s", ErrUnsupportedSource, o.criteriaPath)
	}
}

// recognizeImage runs local OCR over a criteria image.
func (o *Organizer) recognizeImage(data []byte) (string, error) {
	c, err := ocr.New()
	if err != nil {
		return "", err
	}
	defer c.Close()
	if err := c.SetLanguage(o.options.ocrLang); err != nil {
		return "", err
	}
	return c.RecognizeImage(data)
}

// defaultOutputPath derives "{stem}_output.pptx" next to the input deck.
func defaultOutputPath(deckPath string) string {
	ext := filepath.Ext(deckPath)
	return strings.TrimSuffix(deckPath, ext) + "_output" + ext
}
