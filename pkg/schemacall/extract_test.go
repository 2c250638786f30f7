package schemacall

import (
	"strings"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bare object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "object with surrounding prose",
			input: "Here is the result:\n{\"a\": 1}\nHope that helps!",
			want:  `{"a": 1}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "plain fence",
			input: "```\n[1, 2, 3]\n```",
			want:  `[1, 2, 3]`,
		},
		{
			name:  "nested objects",
			input: `prefix {"a": {"b": [1, {"c": 2}]}} suffix`,
			want:  `{"a": {"b": [1, {"c": 2}]}}`,
		},
		{
			name:  "braces inside strings ignored",
			input: `{"a": "closing } brace", "b": "open { brace"}`,
			want:  `{"a": "closing } brace", "b": "open { brace"}`,
		},
		{
			name:  "escaped quotes inside strings",
			input: `{"a": "say \"}\" loudly"}`,
			want:  `{"a": "say \"}\" loudly"}`,
		},
		{
			name:  "array at top level",
			input: `The list: [{"t": "x"}] done`,
			want:  `[{"t": "x"}]`,
		},
		{
			name:  "no json present",
			input: "I could not produce a result.",
			want:  "",
		},
		{
			name:  "unbalanced json",
			input: `{"a": 1`,
			want:  "",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.input)
			if got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMinimumSchemaPromptListsRequiredKeys(t *testing.T) {
	schema := `{"type":"object","required":["title","description"],"properties":{"title":{"type":"string"},"description":{"type":"string"}}}`
	prompt := MinimumSchemaPrompt(schema)

	for _, want := range []string{"description, title", "JSON only", `"required"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestMinimumSchemaPromptArraySchema(t *testing.T) {
	schema := `{"type":"array","items":{"type":"object","required":["title"]}}`
	prompt := MinimumSchemaPrompt(schema)
	if !strings.Contains(prompt, "Required top-level keys: title") {
		t.Errorf("array item keys not surfaced:\n%s", prompt)
	}
}
