// Package segment partitions a deck's content slides into ordered groups.
//
// A slide with a title opens a new group; untitled slides attach to the
// group in progress. Every content slide lands in exactly one group, so the
// groups are a partition of the content region in source order.
package segment

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// maxSummaryLen bounds a group's accumulated content summary.
	maxSummaryLen = 500
	// maxSyntheticTitleLen bounds titles synthesized for untitled openers.
	maxSyntheticTitleLen = 50
)

// ErrNoContentSlides is returned when the deck has no slides past the
// anchor prefix.
var ErrNoContentSlides = errors.New("deck has no content slides beyond the anchor prefix")

// SlideInfo is the segmenter's view of one slide.
type SlideInfo struct {
	Title   string // title placeholder text, empty if none
	Snippet string // first non-empty text on the slide
	Text    string // full slide text, used for the content summary
}

// Group is a maximal run of consecutive content slides treated as one
// semantic unit, anchored by its first (titled or synthesized-title) slide.
type Group struct {
	Title          string
	SlideIndices   []int  // deck positions, ascending and contiguous
	ContentSummary string // bounded accumulation of member slide text
}

// Split partitions slides[anchor:] into groups. The slice indexes the whole
// deck, so the returned SlideIndices are absolute deck positions.
func Split(slides []SlideInfo, anchor int) ([]Group, error) {
	if anchor < 0 {
		return nil, fmt.Errorf("negative anchor count %d", anchor)
	}
	if len(slides) <= anchor {
		return nil, ErrNoContentSlides
	}

	var (
		groups  []Group
		current *Group
	)

	flush := func() {
		if current != nil {
			groups = append(groups, *current)
			current = nil
		}
	}

	for idx := anchor; idx < len(slides); idx++ {
		s := slides[idx]
		title := strings.TrimSpace(s.Title)

		if title != "" {
			flush()
			current = &Group{
				Title:          title,
				SlideIndices:   []int{idx},
				ContentSummary: truncateRunes(s.Text, maxSummaryLen),
			}
			continue
		}

		if current != nil {
			current.SlideIndices = append(current.SlideIndices, idx)
			current.ContentSummary = accumulate(current.ContentSummary, s.Text)
			continue
		}

		// Leading untitled slide: synthesize a group title from its text.
		current = &Group{
			Title:          syntheticTitle(s, idx),
			SlideIndices:   []int{idx},
			ContentSummary: truncateRunes(s.Text, maxSummaryLen),
		}
	}
	flush()

	return groups, nil
}

func syntheticTitle(s SlideInfo, idx int) string {
	snippet := strings.TrimSpace(s.Snippet)
	if snippet == "" {
		return fmt.Sprintf("[Untitled %d]", idx)
	}
	return truncateRunes(snippet, maxSyntheticTitleLen)
}

func accumulate(summary, text string) string {
	if strings.TrimSpace(text) == "" {
		return summary
	}
	if summary == "" {
		return truncateRunes(text, maxSummaryLen)
	}
	return truncateRunes(summary+"\n"+text, maxSummaryLen)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
