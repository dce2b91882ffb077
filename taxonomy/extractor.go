package taxonomy

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Table is one table's worth of rows, each row a slice of cell strings.
// Tabular criteria sources (spreadsheets, extracted document tables) are
// presented to the extractor as a sequence of tables in document order.
type Table [][]string

const (
	// maxSubItemLen bounds a single sub-item's text.
	maxSubItemLen = 100
	// maxSubItems bounds how many sub-items a category accumulates.
	// Downstream consumers use at most three; the cap only guards
	// against degenerate tables.
	maxSubItems = 10
)

var (
	leadingIntRe = regexp.MustCompile(`^(\d+)`)
	bareIntRe    = regexp.MustCompile(`^\d+$`)
)

// state of the row scanner. The scanner is an explicit two-state machine:
// either no category is open, or one is accumulating sub-items until the
// next main-item row or table boundary flushes it.
type state int

const (
	stateNoCurrent state = iota
	stateInCategory
)

// Extract scans checklist tables and reconstructs the ordered category
// hierarchy. A main-item row (leading integer in the first cell, non-numeric
// text in the second) opens a category; sub-item rows beneath it (a bare
// integer in a secondary column next to a non-empty text column) append to
// it. Rows matching neither pattern are skipped. Categories are deduplicated
// by No (first occurrence wins) and returned sorted ascending by No.
//
// Extraction is a pure function of its input: calling it twice on the same
// tables yields identical results.
func Extract(tables []Table) []Category {
	var (
		result  []Category
		st      = stateNoCurrent
		current Category
	)

	flush := func() {
		if st == stateInCategory {
			result = append(result, current)
			st = stateNoCurrent
			current = Category{}
		}
	}

	for _, table := range tables {
		for _, row := range table {
			cells := normalizeRow(row)

			if no, name, ok := mainItem(cells); ok {
				flush()
				current = Category{No: no, MainCategory: name}
				st = stateInCategory
			}

			if st == stateInCategory {
				if sub, ok := subItem(cells); ok {
					appendSubItem(&current, sub)
				}
			}
		}
		// A category never spans tables.
		flush()
	}
	flush()

	return dedupeAndSort(result)
}

// normalizeRow trims each cell and narrows full-width characters so that
// checklists typed with full-width digits still match the numeric patterns.
func normalizeRow(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = strings.TrimSpace(width.Narrow.String(cell))
	}
	return out
}

// mainItem reports whether the row is a category header: the first cell
// starts with an integer and the second cell holds text. A second cell that
// is itself a bare integer is a sub-item number, not a category name.
func mainItem(cells []string) (no int, name string, ok bool) {
	if len(cells) < 2 || cells[0] == "" || cells[1] == "" {
		return 0, "", false
	}
	m := leadingIntRe.FindStringSubmatch(cells[0])
	if m == nil || bareIntRe.MatchString(cells[1]) {
		return 0, "", false
	}
	no, err := strconv.Atoi(m[1])
	if err != nil || no <= 0 {
		return 0, "", false
	}
	return no, firstLine(cells[1]), true
}

// subItem looks for a (number, text) column pair describing a sub-item.
// Four-column checklist layouts carry the pair in columns 2 and 3; narrower
// layouts shift it left to columns 1 and 2.
func subItem(cells []string) (string, bool) {
	for _, pair := range [][2]int{{2, 3}, {1, 2}} {
		noCol, textCol := pair[0], pair[1]
		if textCol >= len(cells) {
			continue
		}
		if bareIntRe.MatchString(cells[noCol]) && cells[textCol] != "" {
			return truncateRunes(firstLine(cells[textCol]), maxSubItemLen), true
		}
	}
	return "", false
}

func appendSubItem(c *Category, sub string) {
	if sub == "" || len(c.SubItems) >= maxSubItems {
		return
	}
	for _, existing := range c.SubItems {
		if existing == sub {
			return
		}
	}
	c.SubItems = append(c.SubItems, sub)
}

func dedupeAndSort(cats []Category) []Category {
	seen := make(map[int]bool, len(cats))
	unique := make([]Category, 0, len(cats))
	for _, c := range cats {
		if seen[c.No] {
			continue
		}
		seen[c.No] = true
		unique = append(unique, c.clone())
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].No < unique[j].No })
	return unique
}

// firstLine returns the first non-empty line of a multi-line cell.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line != "" {
			return line
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
