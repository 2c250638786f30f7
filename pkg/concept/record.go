// Package concept turns heterogeneous agent output into uniform concept
// rows and filters near-duplicate titles.
package concept

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// BaseColumns is the fixed column set of a flattened concept row, in
// display order. Enrichment may append further columns.
var BaseColumns = []string{
	"agent", "title", "description", "novelty_reasoning",
	"feasibility_reasoning", "cost_estimate", "trl", "trl_reasoning",
	"trl_citations", "validated_trl", "validated_trl_reasoning",
	"validated_trl_citations", "components", "constructive_critique",
}

// Record is one flattened concept row. Values are display strings;
// lists are newline-joined.
type Record map[string]string

// IsEmpty reports whether a cell value counts as missing.
func IsEmpty(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == "None" || v == "null"
}

// SetIfEmpty writes v into column k only when the cell is missing.
// Returns true when it wrote.
func (r Record) SetIfEmpty(k, v string) bool {
	if !IsEmpty(r[k]) {
		return false
	}
	r[k] = v
	return true
}

// Columns returns BaseColumns followed by any extra columns present in
// records, sorted, so exports stay stable.
func Columns(records []Record) []string {
	base := make(map[string]bool, len(BaseColumns))
	for _, c := range BaseColumns {
		base[c] = true
	}
	extraSet := make(map[string]bool)
	for _, r := range records {
		for k := range r {
			if !base[k] {
				extraSet[k] = true
			}
		}
	}
	extras := make([]string, 0, len(extraSet))
	for k := range extraSet {
		extras = append(extras, k)
	}
	sort.Strings(extras)
	return append(append([]string{}, BaseColumns...), extras...)
}

// Flatten normalises one agent's structured solution into a Record.
// The field mapping is dispatched on agent identity; agents without a
// mapping contribute only their title.
func Flatten(agentName string, sol map[string]any) Record {
	get := func(keys ...string) any {
		for _, k := range keys {
			if v, ok := sol[k]; ok && !nullish(v) {
				return v
			}
		}
		return nil
	}

	row := Record{
		"agent": agentName,
		"title": Coerce(get("title", "Title", "Name", "name")),
	}

	switch {
	case strings.HasPrefix(agentName, "TRIZ"):
		row["description"] = Coerce(get("Architecture", "description"))
		row["novelty_reasoning"] = Coerce(get("advantages"))
		row["cost_estimate"] = Coerce(get("CostImpact"))
		row["trl"] = Coerce(get("TRL"))

	case agentName == "Scientific Research Agent 1":
		row["description"] = Coerce(get("description", "Description"))
		row["novelty_reasoning"] = Coerce(get("novelty_reasoning", "Novelty_reasoning"))

	case agentName == "Scientific Research Agent 2":
		row["description"] = Coerce(get("description"))
		row["novelty_reasoning"] = Coerce(get("novelty_reasoning"))
		row["feasibility_reasoning"] = Coerce(get("feasibility_reasoning", "Feasibility_reasoning"))
		row["cost_estimate"] = Coerce(get("cost_estimate", "Cost_estimate"))
		row["trl"] = Coerce(get("trl", "TRL"))
		row["trl_reasoning"] = Coerce(get("trl_reasoning", "Trl_reasoning"))
		row["trl_citations"] = Coerce(get("trl_citations"))

	case strings.HasPrefix(agentName, "Black Hat"):
		// risk rows carry only their title

	case strings.HasPrefix(agentName, "Self Critique"):
		row["constructive_critique"] = Coerce(get("comment", "Comment"))

	case agentName == "Product Ideation Agent":
		row["description"] = Coerce(get("description"))
		row["novelty_reasoning"] = Coerce(get("novelty_reasoning"))
		row["components"] = Coerce(get("components"))
		row["references"] = Coerce(get("references"))

	case agentName == "Cross-Industry Translation Agent":
		row["description"] = Coerce(get("adaptation"))
		row["novelty_reasoning"] = Coerce(get("source_industry"))
		row["feasibility_reasoning"] = Coerce(get("original_solution"))
		row["references"] = Coerce(get("source_links"))
		if ch, ok := get("challenges").([]any); ok {
			row["constructive_critique"] = joinList(ch)
		}

	case agentName == "Integrated Solutions Agent":
		row["description"] = Coerce(get("integration_notes"))
		row["novelty_reasoning"] = Coerce(get("function"))
		row["references"] = Coerce(get("sources"))
	}

	for k, v := range row {
		if IsEmpty(v) {
			delete(row, k)
		}
	}
	if _, ok := row["agent"]; !ok {
		row["agent"] = agentName
	}
	return row
}

// Coerce renders an arbitrary JSON value as a display string. Lists join
// with newlines, objects render via fmt, numbers drop trailing zeros.
func Coerce(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	case []any:
		return joinList(t)
	case map[string]any:
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}

func joinList(items []any) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, Coerce(it))
	}
	return strings.Join(parts, "\n")
}

func nullish(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && IsEmpty(s)
}
