// Package schemacall wraps a model invoker with JSON extraction, schema
// validation, and a bounded self-repair loop.
package schemacall

import "strings"

// ExtractJSON pulls the first JSON object or array out of free-form
// model text. Markdown code fences are stripped first, then the text is
// scanned for the first balanced {...} or [...] span. Returns "" when
// no candidate span exists.
func ExtractJSON(text string) string {
	text = stripFences(text)

	start := -1
	for i, r := range text {
		if r == '{' || r == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
			// ignore structural characters inside strings
		case ch == '{' || ch == '[':
			depth++
		case ch == '}' || ch == ']':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 {
		first := strings.TrimSpace(trimmed[:nl])
		// fence language tag such as "json"
		if len(first) <= 10 && !strings.ContainsAny(first, "{[") {
			trimmed = trimmed[nl+1:]
		}
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
