package deckalign

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by Run. Use errors.Is to test for them.
var (
	// ErrNoCategories indicates the criteria document yielded no
	// categories, so there is nothing to align the deck to.
	ErrNoCategories = errors.New("no categories extracted from criteria")

	// ErrTooFewSlides indicates the deck has no content slides beyond the
	// anchor slides.
	ErrTooFewSlides = errors.New("deck has no content slides")

	// ErrUnsupportedSource indicates the criteria file is not a format
	// this library can read or forward.
	ErrUnsupportedSource = errors.New("unsupported criteria format")
)

// Warning represents a non-fatal problem encountered while organizing a
// deck. The run continues; callers decide whether to surface warnings.
type Warning struct {
	// Stage identifies the pipeline stage that produced the warning,
	// e.g. "taxonomy", "matching", "toc", "titles".
	Stage string

	// Message is a human-readable description.
	Message string
}

// String returns a formatted representation of the warning.
func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Stage, w.Message)
}

// FormatWarnings formats a slice of warnings as a multi-line string,
// one warning per line. Returns an empty string for no warnings.
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

func warningf(stage, format string, args ...any) Warning {
	return Warning{Stage: stage, Message: fmt.Sprintf(format, args...)}
}
