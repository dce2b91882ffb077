package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tsawler/deckalign/segment"
	"github.com/tsawler/deckalign/taxonomy"
)

// fakeGenerator returns a canned reply and records the request.
type fakeGenerator struct {
	reply string
	err   error
	parts []Part
}

func (f *fakeGenerator) Generate(_ context.Context, parts []Part) (string, error) {
	f.parts = parts
	return f.reply, f.err
}

func twoCategories() []taxonomy.Category {
	return []taxonomy.Category{
		{No: 1, MainCategory: "Intro", SubItems: []string{"Scope", "Goals"}},
		{No: 2, MainCategory: "Overview"},
	}
}

func twoGroups() []segment.Group {
	return []segment.Group{
		{Title: "Features", SlideIndices: []int{2, 3}, ContentSummary: "feature text"},
		{Title: "Summary", SlideIndices: []int{4}},
	}
}

func TestMatchParsesFencedJSON(t *testing.T) {
	cases := []struct {
		name  string
		reply string
	}{
		{"labeled fence", "Here you go:\n```json\n{\"1\": 0, \"2\": 1}\n```"},
		{"bare fence", "```\n{\"1\": 0, \"2\": 1}\n```"},
		{"no fence", `{"1": 0, "2": 1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClient(&fakeGenerator{reply: tc.reply})
			mapping, err := c.Match(context.Background(), twoCategories(), twoGroups())
			if err != nil {
				t.Fatalf("Match failed: %v", err)
			}
			if mapping[1] != 0 || mapping[2] != 1 || len(mapping) != 2 {
				t.Errorf("unexpected mapping: %v", mapping)
			}
		})
	}
}

func TestMatchDropsNoMatchMarker(t *testing.T) {
	c := NewClient(&fakeGenerator{reply: `{"1": 0, "2": -1}`})

	mapping, err := c.Match(context.Background(), twoCategories(), twoGroups())
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if _, ok := mapping[2]; ok {
		t.Errorf("-1 entry should be dropped: %v", mapping)
	}
	if mapping[1] != 0 {
		t.Errorf("valid entry lost: %v", mapping)
	}
}

func TestMatchDropsOutOfRangeIndex(t *testing.T) {
	// Only 2 groups exist; index 5 is oracle hallucination.
	c := NewClient(&fakeGenerator{reply: `{"1": 5}`})

	mapping, err := c.Match(context.Background(), twoCategories(), twoGroups())
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(mapping) != 0 {
		t.Errorf("out-of-range entry must be dropped: %v", mapping)
	}
}

func TestMatchDropsUnknownCategory(t *testing.T) {
	c := NewClient(&fakeGenerator{reply: `{"99": 0, "2": 1}`})

	mapping, err := c.Match(context.Background(), twoCategories(), twoGroups())
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if _, ok := mapping[99]; ok {
		t.Errorf("unknown category must be dropped: %v", mapping)
	}
	if mapping[2] != 1 {
		t.Errorf("valid entry lost: %v", mapping)
	}
}

func TestMatchBadJSONYieldsEmptyMapping(t *testing.T) {
	c := NewClient(&fakeGenerator{reply: "I could not decide, sorry."})

	mapping, err := c.Match(context.Background(), twoCategories(), twoGroups())
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
	if len(mapping) != 0 {
		t.Errorf("expected empty mapping, got %v", mapping)
	}
}

func TestMatchPromptContents(t *testing.T) {
	gen := &fakeGenerator{reply: `{}`}
	c := NewClient(gen)

	if _, err := c.Match(context.Background(), twoCategories(), twoGroups()); err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(gen.parts) != 1 || gen.parts[0].Text == "" {
		t.Fatalf("expected a single text part, got %+v", gen.parts)
	}
	prompt := gen.parts[0].Text
	for _, want := range []string{"C1: Intro", "Scope, Goals", "G0: Features", "G1: Summary", "-1"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestMatchPromptBoundsGroupSummary(t *testing.T) {
	gen := &fakeGenerator{reply: `{}`}
	c := NewClient(gen)
	groups := []segment.Group{{
		Title:          "Big",
		SlideIndices:   []int{2},
		ContentSummary: strings.Repeat("x", 500),
	}}

	if _, err := c.Match(context.Background(), twoCategories(), groups); err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if strings.Contains(gen.parts[0].Text, strings.Repeat("x", promptSummaryLen+1)) {
		t.Errorf("group summary not truncated to %d runes", promptSummaryLen)
	}
}

func TestExtractCategories(t *testing.T) {
	reply := "```json\n[{\"No\": 2, \"Category\": \"Overview\"}, {\"No\": 1, \"Category\": \"Intro\"}]\n```"
	c := NewClient(&fakeGenerator{reply: reply})

	cats, err := c.ExtractCategories(context.Background(), []Part{TextPart("doc text")})
	if err != nil {
		t.Fatalf("ExtractCategories failed: %v", err)
	}
	if len(cats) != 2 || cats[0].No != 1 || cats[1].No != 2 {
		t.Fatalf("expected sorted categories, got %+v", cats)
	}
	if len(cats[0].SubItems) != 0 {
		t.Errorf("oracle path must not invent sub-items: %+v", cats[0])
	}
}

func TestExtractCategoriesFiltersJunk(t *testing.T) {
	reply := `[{"No": 1, "Category": "A"}, {"No": 1, "Category": "dup"},
	           {"No": 0, "Category": "bad no"}, {"No": 2, "Category": "  "}]`
	c := NewClient(&fakeGenerator{reply: reply})

	cats, err := c.ExtractCategories(context.Background(), []Part{TextPart("doc")})
	if err != nil {
		t.Fatalf("ExtractCategories failed: %v", err)
	}
	if len(cats) != 1 || cats[0].MainCategory != "A" {
		t.Errorf("expected only the first valid category, got %+v", cats)
	}
}

func TestExtractCategoriesBadReply(t *testing.T) {
	c := NewClient(&fakeGenerator{reply: "no json here"})

	cats, err := c.ExtractCategories(context.Background(), []Part{TextPart("doc")})
	if !errors.Is(err, ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
	if len(cats) != 0 {
		t.Errorf("expected empty result, got %+v", cats)
	}
}

func TestJSONBodyFirstFenceWins(t *testing.T) {
	reply := "```json\n{\"a\": 1}\n```\nand also\n```json\n{\"b\": 2}\n```"
	if got := jsonBody(reply); got != `{"a": 1}` {
		t.Errorf("jsonBody = %q, want first fenced block", got)
	}
}
