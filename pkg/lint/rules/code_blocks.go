package rules

import (
	"strings"

	"github.com/rumdl/rumdl/pkg/config"
	"github.com/rumdl/rumdl/pkg/lint"
)

// CodeBlockLanguageRule (MD040) requires fenced code blocks to declare a
// language in their info string.
type CodeBlockLanguageRule struct {
	lint.BaseRule
}

func NewCodeBlockLanguageRule() *CodeBlockLanguageRule {
	return &CodeBlockLanguageRule{
		BaseRule: lint.NewBaseRule(
			"MD040",
			"fenced-code-language",
			"Fenced code blocks should have a language specified",
			[]string{"code", "language"},
			lint.Unfixable,
		),
	}
}

// Apply scans for fence lines directly rather than walking the goldmark
// AST: CodeRanges only records the content byte span of each code block,
// not the fence line itself or its info string, so the opening fence's
// language has to be read from the raw line table.
func (r *CodeBlockLanguageRule) Apply(ctx *lint.RuleContext) ([]lint.Warning, error) {
	allowed := ctx.OptionStringSlice("allowed_languages", nil)
	var allowedSet map[string]bool
	if len(allowed) > 0 {
		allowedSet = make(map[string]bool, len(allowed))
		for _, l := range allowed {
			allowedSet[strings.ToLower(l)] = true
		}
	}

	var warnings []lint.Warning
	lines := ctx.Doc.Lines

	var fenceChar byte
	var fenceLen int

	for i, li := range lines {
		if ctx.Cancelled() {
			return warnings, ctx.Ctx.Err()
		}

		if fenceChar == 0 {
			marker, length, info, ok := parseFenceOpen(li.Text)
			if !ok {
				continue
			}
			fenceChar = marker
			fenceLen = length

			lang := ""
			if fields := strings.Fields(info); len(fields) > 0 {
				lang = strings.ToLower(fields[0])
			}

			switch {
			case lang == "":
				w := lint.NewWarningAtLine(r.ID(), ctx.Path, i+1, 1, i+1, len(li.Text)+1,
					"fenced code block has no language specified").
					WithSeverity(config.SeverityWarning).
					WithSuggestion("add a language identifier after the opening fence").
					Build()
				warnings = append(warnings, w)
			case allowedSet != nil && !allowedSet[lang]:
				w := lint.NewWarningAtLine(r.ID(), ctx.Path, i+1, 1, i+1, len(li.Text)+1,
					"language '"+lang+"' is not in the allowed list").
					WithSeverity(config.SeverityWarning).
					Build()
				warnings = append(warnings, w)
			}
			continue
		}

		// Inside a fence: look for a matching close (same char, at least as
		// long, up to 3 leading spaces, nothing after but whitespace).
		if isFenceClose(li.Text, fenceChar, fenceLen) {
			fenceChar = 0
			fenceLen = 0
		}
	}

	return warnings, nil
}

// parseFenceOpen reports whether text opens a fenced code block and, if so,
// its fence character, length, and info string.
func parseFenceOpen(text string) (marker byte, length int, info string, ok bool) {
	indent := len(text) - len(strings.TrimLeft(text, " "))
	if indent > 3 {
		return 0, 0, "", false
	}
	trimmed := text[indent:]
	if len(trimmed) < 3 {
		return 0, 0, "", false
	}
	switch trimmed[0] {
	case '`', '~':
		marker = trimmed[0]
	default:
		return 0, 0, "", false
	}

	n := 0
	for n < len(trimmed) && trimmed[n] == marker {
		n++
	}
	if n < 3 {
		return 0, 0, "", false
	}
	rest := trimmed[n:]
	if marker == '`' && strings.Contains(rest, "`") {
		// A backtick in the info string of a backtick fence is invalid
		// CommonMark syntax (it would be ambiguous with a code span).
		return 0, 0, "", false
	}
	return marker, n, strings.TrimSpace(rest), true
}

// isFenceClose reports whether text closes a fence opened with marker
// repeated openLen times: CommonMark requires the same character, at least
// as many repetitions, up to 3 leading spaces, and nothing else on the line.
func isFenceClose(text string, marker byte, openLen int) bool {
	indent := len(text) - len(strings.TrimLeft(text, " "))
	if indent > 3 {
		return false
	}
	trimmed := strings.TrimRight(text[indent:], " \t")
	if len(trimmed) < openLen {
		return false
	}
	for i := 0; i < len(trimmed); i++ {
		if trimmed[i] != marker {
			return false
		}
	}
	return true
}
