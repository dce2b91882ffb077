// Package taxonomy extracts reference categories from checklist-style tables.
package taxonomy

// Category is one entry of the reference taxonomy: a numbered main item plus
// the sub-items listed beneath it in the source table.
type Category struct {
	No           int      // taxonomy order key, unique within an extraction
	MainCategory string   // first line of the main item cell
	SubItems     []string // insertion order, deduplicated
}

// clone returns a deep copy so extraction results stay immutable for callers.
func (c Category) clone() Category {
	out := c
	out.SubItems = append([]string(nil), c.SubItems...)
	return out
}
