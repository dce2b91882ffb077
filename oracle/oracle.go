// Package oracle talks to the external semantic-matching service.
//
// The service is a black box: it receives category and slide-group summaries
// (or raw document content) and answers with free text that is expected to
// contain a JSON payload, optionally fenced in a markdown code block. Nothing
// the service returns is trusted; every response passes through validation
// here before the pipeline sees it.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/deckalign/segment"
	"github.com/tsawler/deckalign/taxonomy"
)

// ErrBadResponse indicates the oracle's reply could not be parsed. Callers
// degrade to an empty result rather than aborting.
var ErrBadResponse = errors.New("oracle response is not valid JSON")

// Part is one piece of a request: plain text, or raw bytes with a MIME type
// for sources the oracle must read itself (PDFs, images).
type Part struct {
	Text string
	Data []byte
	MIME string
}

// TextPart wraps a string as a request part.
func TextPart(s string) Part { return Part{Text: s} }

// BytesPart wraps raw document content as a request part.
func BytesPart(data []byte, mime string) Part { return Part{Data: data, MIME: mime} }

// Generator produces a free-text response for a request. Implementations
// own transport concerns (timeouts, retries); the Client owns everything
// about interpreting the reply.
type Generator interface {
	Generate(ctx context.Context, parts []Part) (string, error)
}

const (
	// promptSubItems is how many sub-items accompany each category in the
	// matching request.
	promptSubItems = 3
	// promptSummaryLen is how much group content accompanies each group.
	promptSummaryLen = 200
)

// Client builds requests for, and validates responses from, a Generator.
type Client struct {
	gen Generator
}

// NewClient returns a Client backed by the given generator.
func NewClient(gen Generator) *Client {
	return &Client{gen: gen}
}

// Match asks the oracle to pair each category with the most relevant slide
// group. The returned mapping is partial: categories without a match are
// absent. Entries with negative or out-of-range group indexes, or category
// numbers not present in cats, are dropped silently. A reply that cannot be
// parsed yields an empty mapping and an error wrapping ErrBadResponse.
func (c *Client) Match(ctx context.Context, cats []taxonomy.Category, groups []segment.Group) (map[int]int, error) {
	prompt := buildMatchPrompt(cats, groups)

	reply, err := c.gen.Generate(ctx, []Part{TextPart(prompt)})
	if err != nil {
		return map[int]int{}, fmt.Errorf("matching request failed: %w", err)
	}

	var raw map[string]int
	if err := json.Unmarshal([]byte(jsonBody(reply)), &raw); err != nil {
		return map[int]int{}, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	known := make(map[int]bool, len(cats))
	for _, cat := range cats {
		known[cat.No] = true
	}

	mapping := make(map[int]int, len(raw))
	for key, idx := range raw {
		no, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || !known[no] {
			continue
		}
		if idx < 0 || idx >= len(groups) {
			continue
		}
		mapping[no] = idx
	}
	return mapping, nil
}

// ExtractCategories asks the oracle to read a criteria document it can see
// directly (document text, PDF bytes, image bytes) and return the flat
// category list. Sub-items are not recovered on this path. An unparseable
// reply yields an empty list and an error wrapping ErrBadResponse.
func (c *Client) ExtractCategories(ctx context.Context, content []Part) ([]taxonomy.Category, error) {
	parts := append([]Part{TextPart(extractPrompt)}, content...)

	reply, err := c.gen.Generate(ctx, parts)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}

	var raw []struct {
		No       int    `json:"No"`
		Category string `json:"Category"`
	}
	if err := json.Unmarshal([]byte(jsonBody(reply)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	seen := make(map[int]bool, len(raw))
	cats := make([]taxonomy.Category, 0, len(raw))
	for _, entry := range raw {
		name := strings.TrimSpace(entry.Category)
		if entry.No <= 0 || name == "" || seen[entry.No] {
			continue
		}
		seen[entry.No] = true
		cats = append(cats, taxonomy.Category{No: entry.No, MainCategory: name})
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].No < cats[j].No })
	return cats, nil
}

const extractPrompt = `Extract the list of evaluation categories from the following document.

Respond with JSON only, in exactly this form:
[
  {"No": 1, "Category": "category name"},
  {"No": 2, "Category": "category name"}
]

Order the entries by number and keep each category name to a single short line.`

func buildMatchPrompt(cats []taxonomy.Category, groups []segment.Group) string {
	var b strings.Builder

	b.WriteString("You organize presentation decks against evaluation checklists.\n\n")
	b.WriteString("## Checklist categories\n")
	for _, cat := range cats {
		fmt.Fprintf(&b, "C%d: %s\n", cat.No, cat.MainCategory)
		if len(cat.SubItems) > 0 {
			subs := cat.SubItems
			if len(subs) > promptSubItems {
				subs = subs[:promptSubItems]
			}
			fmt.Fprintf(&b, "  sub-items: %s\n", strings.Join(subs, ", "))
		}
	}

	b.WriteString("\n## Slide groups\n")
	for i, g := range groups {
		fmt.Fprintf(&b, "G%d: %s\n", i, g.Title)
		if summary := truncateRunes(g.ContentSummary, promptSummaryLen); summary != "" {
			fmt.Fprintf(&b, "  content: %s\n", summary)
		}
	}

	b.WriteString(`
## Rules
1. Pick the slide group whose theme is closest to each category.
2. Weigh the sub-items and group content, not just the titles.
3. Different wording for the same topic still counts as a match.
4. Claim each slide group for at most one category.

## Output
Respond with a JSON object only: category numbers as keys, group indexes as
values, -1 for "no match". Example: {"1": 3, "2": 5, "3": -1}
`)
	return b.String()
}

// jsonBody strips an optional markdown code fence from the reply. The first
// fenced block wins; without a fence the whole reply is treated as JSON.
func jsonBody(s string) string {
	if i := strings.Index(s, "```json"); i >= 0 {
		rest := s[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	if i := strings.Index(s, "```"); i >= 0 {
		rest := s[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
