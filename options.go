package deckalign

import (
	"time"

	"github.com/tsawler/deckalign/oracle"
)

// runOptions holds configuration for a deck organization run.
type runOptions struct {
	output    string // output path; "" derives {stem}_output.pptx
	anchors   int    // leading slides that never move
	model     string // language model name
	apiKey    string // API key; "" falls back to the environment
	timeout   time.Duration
	localOCR  bool   // recognize criteria images locally before consulting the model
	ocrLang   string // Tesseract language string for local OCR
	generator oracle.Generator
}

// defaultAnchorSlides is the number of leading slides (title and table of
// contents) that keep their position.
const defaultAnchorSlides = 2

// defaultOptions returns the default run options.
func defaultOptions() runOptions {
	return runOptions{
		anchors: defaultAnchorSlides,
		model:   oracle.DefaultModel,
		timeout: oracle.DefaultTimeout,
		ocrLang: "jpn+eng",
	}
}

// clone creates a copy of runOptions.
func (o runOptions) clone() runOptions {
	return o
}
