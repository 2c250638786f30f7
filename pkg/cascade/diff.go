package cascade

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Change records how one section differs between two drafts.
type Change struct {
	Section string
	Before  string
	After   string
	Added   bool
	Removed bool
}

// DiffDrafts compares two drafts section by section and returns the
// sections that differ, sorted by name. Unchanged sections are omitted.
func DiffDrafts(previous, current Draft) []Change {
	names := make(map[string]bool, len(previous)+len(current))
	for k := range previous {
		names[k] = true
	}
	for k := range current {
		names[k] = true
	}

	var changes []Change
	for name := range names {
		before, hadBefore := previous[name]
		after, hasAfter := current[name]
		b := renderSection(before)
		a := renderSection(after)
		if hadBefore && hasAfter && b == a {
			continue
		}
		changes = append(changes, Change{
			Section: name,
			Before:  b,
			After:   a,
			Added:   !hadBefore,
			Removed: !hasAfter,
		})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Section < changes[j].Section })
	return changes
}

// Pretty renders the change as a colored inline diff for terminal
// display.
func (c Change) Pretty() string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(c.Before, c.After, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}

// Summary is a one-line description of the change.
func (c Change) Summary() string {
	switch {
	case c.Added:
		return fmt.Sprintf("%s: added", c.Section)
	case c.Removed:
		return fmt.Sprintf("%s: removed", c.Section)
	default:
		return fmt.Sprintf("%s: changed", c.Section)
	}
}

// renderSection turns a section value into comparable text. Strings are
// used as-is, everything else is serialized.
func renderSection(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, renderSection(item))
		}
		return strings.Join(parts, "\n")
	default:
		raw, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(raw)
	}
}
