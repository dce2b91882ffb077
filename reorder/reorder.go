// Package reorder rearranges deck slides to follow the criteria taxonomy.
package reorder

import (
	"fmt"
	"sort"

	"github.com/tsawler/deckalign/segment"
	"github.com/tsawler/deckalign/taxonomy"
)

// Deck is the mutable slide surface reorder needs: a slide count, title
// rewriting and slide-order rewriting.
type Deck interface {
	SlideCount() int
	SetSlideTitle(index int, title string) error
	SetOrder(order []int) error
}

// Result reports what Apply did to the deck.
type Result struct {
	Order         []int // the final slide order, old index per new position
	Matched       int   // groups matched to a category
	Unused        int   // groups left in their original relative order
	TitleFailures []int // slide indices whose title rewrite failed
}

// Apply reorders the deck's content slides to follow the category order and
// rewrites the first slide of each matched group to "No. MainCategory".
//
// mapping is category No -> group index; entries that point at the same
// group are resolved by letting the highest category No keep it, so every
// content slide appears exactly once in the result. Groups no category
// claimed keep their original relative order after the matched ones. The
// first anchor slides never move.
//
// Title rewrite failures are collected in the Result rather than aborting:
// a slide without a title placeholder still gets reordered.
func Apply(d Deck, cats []taxonomy.Category, groups []segment.Group, mapping map[int]int, anchor int) (*Result, error) {
	if anchor < 0 {
		return nil, fmt.Errorf("anchor count %d is negative", anchor)
	}
	if d.SlideCount() < anchor {
		return nil, fmt.Errorf("deck has %d slides, fewer than %d anchor slides", d.SlideCount(), anchor)
	}

	// Resolve duplicate claims: iterate categories by ascending No so the
	// highest No ends up owning the group.
	sorted := make([]taxonomy.Category, len(cats))
	copy(sorted, cats)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].No < sorted[j].No })

	owner := make(map[int]int) // group index -> category No
	for _, cat := range sorted {
		groupIdx, ok := mapping[cat.No]
		if !ok || groupIdx < 0 || groupIdx >= len(groups) {
			continue
		}
		owner[groupIdx] = cat.No
	}

	type matched struct {
		catNo    int
		main     string
		groupIdx int
	}
	var matches []matched
	for _, cat := range sorted {
		if groupIdx, ok := mapping[cat.No]; ok && groupIdx >= 0 && groupIdx < len(groups) {
			if owner[groupIdx] == cat.No {
				matches = append(matches, matched{catNo: cat.No, main: cat.MainCategory, groupIdx: groupIdx})
			}
		}
	}

	res := &Result{Matched: len(matches)}

	order := make([]int, 0, d.SlideCount())
	for i := 0; i < anchor; i++ {
		order = append(order, i)
	}

	placed := make(map[int]bool, len(matches))
	for _, m := range matches {
		group := groups[m.groupIdx]
		placed[m.groupIdx] = true
		order = append(order, group.SlideIndices...)

		if len(group.SlideIndices) > 0 {
			title := fmt.Sprintf("%d. %s", m.catNo, m.main)
			if err := d.SetSlideTitle(group.SlideIndices[0], title); err != nil {
				res.TitleFailures = append(res.TitleFailures, group.SlideIndices[0])
			}
		}
	}

	for i, group := range groups {
		if placed[i] {
			continue
		}
		res.Unused++
		order = append(order, group.SlideIndices...)
	}

	if err := validatePermutation(order, d.SlideCount()); err != nil {
		return nil, err
	}

	if err := d.SetOrder(order); err != nil {
		return nil, fmt.Errorf("reordering slides: %w", err)
	}

	res.Order = order
	return res, nil
}

// validatePermutation checks that order is a permutation of 0..n-1.
func validatePermutation(order []int, n int) error {
	if len(order) != n {
		return fmt.Errorf("order covers %d slides, deck has %d", len(order), n)
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n {
			return fmt.Errorf("slide index %d out of range", idx)
		}
		if seen[idx] {
			return fmt.Errorf("slide index %d placed twice", idx)
		}
		seen[idx] = true
	}
	return nil
}
