package taxonomy

import (
	"fmt"
	"reflect"
	"testing"
)

func TestExtractHierarchy(t *testing.T) {
	tables := []Table{{
		{"1", "Intro"},
		{"1", "1", "Scope"},
		{"2", "Overview"},
	}}

	got := Extract(tables)
	want := []Category{
		{No: 1, MainCategory: "Intro", SubItems: []string{"Scope"}},
		{No: 2, MainCategory: "Overview"},
	}

	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].No != want[i].No || got[i].MainCategory != want[i].MainCategory {
			t.Errorf("category %d: got %+v, want %+v", i, got[i], want[i])
		}
		if !reflect.DeepEqual(got[i].SubItems, want[i].SubItems) && len(want[i].SubItems) > 0 {
			t.Errorf("category %d sub-items: got %v, want %v", i, got[i].SubItems, want[i].SubItems)
		}
	}
}

func TestExtractFourColumnLayout(t *testing.T) {
	// Header row carries the first sub-item on the same line; following
	// rows leave the main columns blank.
	tables := []Table{{
		{"2", "Quality Assurance", "1", "Test coverage"},
		{"", "", "2", "Static analysis"},
		{"", "", "2", "Static analysis"}, // duplicate, must dedup
		{"3", "Delivery"},
	}}

	got := Extract(tables)
	if len(got) != 2 {
		t.Fatalf("expected 2 categories, got %d: %+v", len(got), got)
	}
	if got[0].No != 2 || got[0].MainCategory != "Quality Assurance" {
		t.Errorf("unexpected first category: %+v", got[0])
	}
	wantSubs := []string{"Test coverage", "Static analysis"}
	if !reflect.DeepEqual(got[0].SubItems, wantSubs) {
		t.Errorf("sub-items: got %v, want %v", got[0].SubItems, wantSubs)
	}
	if got[1].No != 3 || len(got[1].SubItems) != 0 {
		t.Errorf("unexpected second category: %+v", got[1])
	}
}

func TestExtractSkipsNoiseRows(t *testing.T) {
	tables := []Table{{
		{"No.", "Item"},           // header, no leading integer
		{},                        // empty row
		{"remarks"},               // single cell
		{"1", "Security"},         // valid
		{"", "continuation text"}, // no number
	}}

	got := Extract(tables)
	if len(got) != 1 || got[0].MainCategory != "Security" {
		t.Fatalf("expected only the Security category, got %+v", got)
	}
}

func TestExtractDeduplicatesAndSorts(t *testing.T) {
	tables := []Table{
		{{"3", "Third"}, {"1", "First"}},
		{{"3", "Third again"}, {"2", "Second"}},
	}

	got := Extract(tables)
	if len(got) != 3 {
		t.Fatalf("expected 3 categories, got %d: %+v", len(got), got)
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if got[i].No != i+1 || got[i].MainCategory != want {
			t.Errorf("position %d: got %+v, want No=%d %q", i, got[i], i+1, want)
		}
	}
}

func TestExtractNoTwoCategoriesShareNo(t *testing.T) {
	tables := []Table{{
		{"1", "A"}, {"2", "B"}, {"1", "A duplicate"}, {"2", "B duplicate"},
	}}

	got := Extract(tables)
	seen := make(map[int]bool)
	for _, c := range got {
		if seen[c.No] {
			t.Errorf("duplicate No %d in result %+v", c.No, got)
		}
		seen[c.No] = true
	}
}

func TestExtractFullWidthDigits(t *testing.T) {
	tables := []Table{{
		{"１", "品質管理"},
		{"１", "１", "テスト計画"},
	}}

	got := Extract(tables)
	if len(got) != 1 || got[0].No != 1 {
		t.Fatalf("full-width digits not recognized: %+v", got)
	}
	if len(got[0].SubItems) != 1 || got[0].SubItems[0] != "テスト計画" {
		t.Errorf("sub-item not extracted: %+v", got[0].SubItems)
	}
}

func TestExtractMultiLineCellsUseFirstLine(t *testing.T) {
	tables := []Table{{
		{"1", "Architecture\nand detailed design notes"},
	}}

	got := Extract(tables)
	if len(got) != 1 || got[0].MainCategory != "Architecture" {
		t.Fatalf("expected first line only, got %+v", got)
	}
}

func TestExtractCategoryDoesNotSpanTables(t *testing.T) {
	tables := []Table{
		{{"1", "Planning"}},
		{{"", "", "1", "Orphan sub-item"}},
	}

	got := Extract(tables)
	if len(got) != 1 {
		t.Fatalf("expected 1 category, got %+v", got)
	}
	if len(got[0].SubItems) != 0 {
		t.Errorf("sub-item leaked across table boundary: %+v", got[0].SubItems)
	}
}

func TestExtractSubItemCap(t *testing.T) {
	table := Table{{"1", "Big"}}
	for i := 0; i < maxSubItems+5; i++ {
		table = append(table, []string{"", "", "1", fmt.Sprintf("item %d", i)})
	}

	got := Extract([]Table{table})
	if len(got) != 1 {
		t.Fatalf("expected 1 category, got %+v", got)
	}
	if len(got[0].SubItems) != maxSubItems {
		t.Errorf("expected %d sub-items, got %d", maxSubItems, len(got[0].SubItems))
	}
}

func TestExtractIdempotent(t *testing.T) {
	tables := []Table{{
		{"2", "Overview"},
		{"1", "Intro"},
		{"1", "1", "Scope"},
	}}

	first := Extract(tables)
	second := Extract(tables)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestExtractLongSubItemTruncated(t *testing.T) {
	long := ""
	for i := 0; i < 150; i++ {
		long += "x"
	}
	tables := []Table{{
		{"1", "Main"},
		{"", "", "1", long},
	}}

	got := Extract(tables)
	if len(got) != 1 || len(got[0].SubItems) != 1 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if n := len([]rune(got[0].SubItems[0])); n != maxSubItemLen {
		t.Errorf("expected sub-item truncated to %d runes, got %d", maxSubItemLen, n)
	}
}
