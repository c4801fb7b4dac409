package rules

import (
	"github.com/rumdl/rumdl/pkg/config"
	"github.com/rumdl/rumdl/pkg/fix"
	"github.com/rumdl/rumdl/pkg/lint"
)

// BlanksAroundListsRule (MD032) requires a blank line on both sides of a
// list block, except at the start or end of the document.
type BlanksAroundListsRule struct {
	lint.BaseRule
}

func NewBlanksAroundListsRule() *BlanksAroundListsRule {
	return &BlanksAroundListsRule{
		BaseRule: lint.NewBaseRule(
			"MD032",
			"blanks-around-lists",
			"Lists should be surrounded by blank lines",
			[]string{"blank_lines", "bullet", "ul", "ol"},
			lint.Full,
		),
	}
}

func (r *BlanksAroundListsRule) Apply(ctx *lint.RuleContext) ([]lint.Warning, error) {
	lines := ctx.Doc.Lines
	var warnings []lint.Warning

	for _, block := range ctx.Doc.Lists {
		if ctx.Cancelled() {
			return warnings, ctx.Ctx.Err()
		}

		// Nested sub-lists reconstruct as their own ListBlock (see
		// lintctx.ParseListBlocks); only the outermost level needs blank
		// lines around it, since a nested list is part of its parent
		// item's own flow.
		if block.NestingLevel != 0 {
			continue
		}

		startIdx := block.StartLine - 1
		endIdx := block.EndLine - 1
		if startIdx < 0 || endIdx >= len(lines) || startIdx > endIdx {
			continue
		}

		if startIdx > 0 && !lines[startIdx-1].Blank {
			first := lines[startIdx]
			w := lint.NewWarningAtLine(r.ID(), ctx.Path, startIdx+1, 1, startIdx+1, len(first.Text)+1,
				"list should be preceded by a blank line").
				WithSeverity(config.SeverityWarning)
			builder := fix.NewEditBuilder()
			builder.Insert(first.Range.Start, "\n")
			w = w.WithFix(builder)
			warnings = append(warnings, w.Build())
		}

		if endIdx+1 < len(lines) && !lines[endIdx+1].Blank {
			last := lines[endIdx]
			w := lint.NewWarningAtLine(r.ID(), ctx.Path, endIdx+1, 1, endIdx+1, len(last.Text)+1,
				"list should be followed by a blank line").
				WithSeverity(config.SeverityWarning)
			builder := fix.NewEditBuilder()
			builder.Insert(last.Range.End, "\n")
			w = w.WithFix(builder)
			warnings = append(warnings, w.Build())
		}
	}

	return warnings, nil
}
