package rules

import (
	"regexp"

	"github.com/rumdl/rumdl/pkg/config"
	"github.com/rumdl/rumdl/pkg/fix"
	"github.com/rumdl/rumdl/pkg/lint"
)

var bareURLRe = regexp.MustCompile(`https?://[^\s<>\)\]]+`)

// NoBareURLsRule (MD034) flags bare URLs that should be wrapped in angle
// brackets or turned into a proper Markdown link.
type NoBareURLsRule struct {
	lint.BaseRule
}

func NewNoBareURLsRule() *NoBareURLsRule {
	return &NoBareURLsRule{
		BaseRule: lint.NewBaseRule(
			"MD034",
			"no-bare-urls",
			"Bare URL used",
			[]string{"links"},
			lint.Full,
		),
	}
}

func (r *NoBareURLsRule) Apply(ctx *lint.RuleContext) ([]lint.Warning, error) {
	var warnings []lint.Warning

	for i, li := range ctx.Doc.Lines {
		if ctx.Cancelled() {
			return warnings, ctx.Ctx.Err()
		}
		if li.Blank || li.InCodeBlock {
			continue
		}

		for _, loc := range bareURLRe.FindAllStringIndex(li.Text, -1) {
			start, end := loc[0], loc[1]
			absStart := li.Range.Start + start
			absEnd := li.Range.Start + end

			if ctx.Doc.Code.InCodeSpan(absStart) {
				continue
			}
			if start > 0 && (li.Text[start-1] == '<' || li.Text[start-1] == '(') {
				continue
			}
			if end < len(li.Text) && (li.Text[end] == '>' || li.Text[end] == ')') {
				continue
			}

			w := lint.NewWarningAtLine(r.ID(), ctx.Path, i+1, start+1, i+1, end+1,
				"bare URL used").
				WithSeverity(config.SeverityWarning).
				WithSuggestion("wrap the URL in angle brackets or a Markdown link")

			builder := fix.NewEditBuilder()
			builder.Insert(absEnd, ">")
			builder.Insert(absStart, "<")
			w = w.WithFix(builder)

			warnings = append(warnings, w.Build())
		}
	}

	return warnings, nil
}
