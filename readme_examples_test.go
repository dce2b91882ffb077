package deckalign_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/tsawler/deckalign"
)

// These examples verify the documented code samples compile correctly.
// They are not meant to be run as actual tests since they require files
// and an API key.

func Example_basicRun() {
	report, warnings, err := deckalign.Open("criteria.xlsx", "deck.pptx").Run(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	for _, w := range warnings {
		fmt.Println("Warning:", w.Message)
	}

	fmt.Println("Written to:", report.Output)
}

func Example_withOptions() {
	report, warnings, err := deckalign.Open("criteria.pdf", "deck.pptx").
		OutputTo("aligned.pptx").   // Explicit output path
		Model("gemini-2.5-pro").    // Language model for extraction and matching
		AnchorSlides(2).            // Leading slides that keep their position
		Timeout(5 * time.Minute).   // Per-request model timeout
		Run(context.Background())
	_ = report
	_ = warnings
	_ = err
}

func Example_localOCR() {
	// Criteria images can be recognized locally instead of uploaded.
	// Requires a binary built with the "ocr" tag.
	report, _, err := deckalign.Open("criteria.png", "deck.pptx").
		LocalOCR().
		OCRLanguage("jpn+eng").
		Run(context.Background())
	_ = report
	_ = err
}

func Example_reorderSummary() {
	report, _, err := deckalign.Open("criteria.xlsx", "deck.pptx").Run(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Matched %d of %d slide groups to %d categories\n",
		report.Matched, report.Groups, report.Categories)
	fmt.Println("Final slide order:", report.Order)
}
