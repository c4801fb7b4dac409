package rules

import "testing"

func TestCodeBlockLanguageRule(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		opts      map[string]any
		wantDiags int
	}{
		{"no language", "```\ncode\n```\n", nil, 1},
		{"language specified", "```go\ncode\n```\n", nil, 0},
		{"tilde fence with language", "~~~go\ncode\n~~~\n", nil, 0},
		{"not in allowed list", "```go\ncode\n```\n", map[string]any{"allowed_languages": []string{"python"}}, 1},
		{"in allowed list", "```go\ncode\n```\n", map[string]any{"allowed_languages": []string{"go", "python"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := NewCodeBlockLanguageRule()
			warnings, _ := runRule(t, rule, tt.input, tt.opts)
			if len(warnings) != tt.wantDiags {
				t.Errorf("got %d warnings, want %d", len(warnings), tt.wantDiags)
			}
		})
	}
}
