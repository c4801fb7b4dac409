package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rumdl/rumdl/pkg/config"
	"github.com/rumdl/rumdl/pkg/fix"
	"github.com/rumdl/rumdl/pkg/lint"
	"github.com/rumdl/rumdl/pkg/lintctx"
)

// HeadingIncrementRule (MD001) checks that heading levels increment by at
// most one level at a time.
type HeadingIncrementRule struct {
	lint.BaseRule
}

func NewHeadingIncrementRule() *HeadingIncrementRule {
	return &HeadingIncrementRule{
		BaseRule: lint.NewBaseRule(
			"MD001",
			"heading-increment",
			"Heading levels should only increment by one level at a time",
			[]string{"headings"},
			lint.Unfixable,
		),
	}
}

func (r *HeadingIncrementRule) Apply(ctx *lint.RuleContext) ([]lint.Warning, error) {
	var warnings []lint.Warning
	prevLevel := 0

	for i, li := range ctx.Doc.Lines {
		if ctx.Cancelled() {
			return warnings, ctx.Ctx.Err()
		}
		if li.Heading == nil {
			continue
		}
		level := li.Heading.Level
		if prevLevel > 0 && level > prevLevel+1 {
			w := lint.NewWarningAtLine(r.ID(), ctx.Path, i+1, 1, i+1, len(li.Text)+1,
				fmt.Sprintf("heading level jumped from H%d to H%d", prevLevel, level)).
				WithSeverity(config.SeverityWarning).
				WithSuggestion(fmt.Sprintf("use H%d instead", prevLevel+1)).
				Build()
			warnings = append(warnings, w)
		}
		prevLevel = level
	}
	return warnings, nil
}

// SingleH1Rule (MD025) flags more than one top-level heading in a document.
type SingleH1Rule struct {
	lint.BaseRule
}

func NewSingleH1Rule() *SingleH1Rule {
	return &SingleH1Rule{
		BaseRule: lint.NewBaseRule(
			"MD025",
			"single-h1",
			"Multiple top-level headings in the same document",
			[]string{"headings"},
			lint.Unfixable,
		),
	}
}

func (r *SingleH1Rule) Apply(ctx *lint.RuleContext) ([]lint.Warning, error) {
	allowNoH1 := ctx.OptionBool("allow_no_h1", true)

	var h1Lines []int
	for i, li := range ctx.Doc.Lines {
		if ctx.Cancelled() {
			return nil, ctx.Ctx.Err()
		}
		if li.Heading != nil && li.Heading.Level == 1 {
			h1Lines = append(h1Lines, i)
		}
	}

	var warnings []lint.Warning

	if !allowNoH1 && len(h1Lines) == 0 {
		w := lint.NewWarningAtLine(r.ID(), ctx.Path, 1, 1, 1, 1,
			"document should have an H1 heading").
			WithSeverity(config.SeverityWarning).
			WithSuggestion("add an H1 heading at the beginning of the document").
			Build()
		warnings = append(warnings, w)
	}

	for idx := 1; idx < len(h1Lines); idx++ {
		i := h1Lines[idx]
		li := ctx.Doc.Lines[i]
		w := lint.NewWarningAtLine(r.ID(), ctx.Path, i+1, 1, i+1, len(li.Text)+1,
			fmt.Sprintf("multiple H1 headings found (this is H1 #%d)", idx+1)).
			WithSeverity(config.SeverityWarning).
			WithSuggestion("use H2 or lower for subsequent headings").
			Build()
		warnings = append(warnings, w)
	}

	return warnings, nil
}

var atxMissingSpaceRe = regexp.MustCompile(`^(\s{0,3})(#{1,6})([^#\s].*)?$`)

// MissingSpaceATXRule (MD018) flags ATX headings with no space between the
// hash marker and the heading text, e.g. "#Heading". These lines are not
// even classified as headings by the single-pass line scan (CommonMark
// requires the space), so this rule scans raw line text directly rather
// than relying on LineInfo.Heading.
type MissingSpaceATXRule struct {
	lint.BaseRule
}

func NewMissingSpaceATXRule() *MissingSpaceATXRule {
	return &MissingSpaceATXRule{
		BaseRule: lint.NewBaseRule(
			"MD018",
			"no-missing-space-atx",
			"No space after hash on ATX style heading",
			[]string{"headings", "atx"},
			lint.Full,
		),
	}
}

func (r *MissingSpaceATXRule) Apply(ctx *lint.RuleContext) ([]lint.Warning, error) {
	var warnings []lint.Warning
	for i, li := range ctx.Doc.Lines {
		if ctx.Cancelled() {
			return warnings, ctx.Ctx.Err()
		}
		if li.Blank || li.InCodeBlock || li.InCodeSpan {
			continue
		}
		if li.BlockquotePrefix != "" {
			continue
		}
		m := atxMissingSpaceRe.FindStringSubmatch(li.Text)
		if m == nil || m[3] == "" {
			continue
		}
		hashes := m[2]
		indent := len(m[1])
		insertAt := li.Range.Start + indent + len(hashes)

		w := lint.NewWarningAtLine(r.ID(), ctx.Path, i+1, 1, i+1, len(li.Text)+1,
			"no space after hash on ATX style heading").
			WithSeverity(config.SeverityWarning)

		builder := fix.NewEditBuilder()
		builder.Insert(insertAt, " ")
		w = w.WithFix(builder)

		warnings = append(warnings, w.Build())
	}
	return warnings, nil
}

var atxMultiSpaceRe = regexp.MustCompile(`^(\s{0,3})(#{1,6})(\s{2,})(\S.*)?$`)

// MultipleSpaceATXRule (MD019) flags ATX headings with more than one space
// between the hash marker and the heading text.
type MultipleSpaceATXRule struct {
	lint.BaseRule
}

func NewMultipleSpaceATXRule() *MultipleSpaceATXRule {
	return &MultipleSpaceATXRule{
		BaseRule: lint.NewBaseRule(
			"MD019",
			"no-multiple-space-atx",
			"Multiple spaces after hash on ATX style heading",
			[]string{"headings", "atx"},
			lint.Full,
		),
	}
}

func (r *MultipleSpaceATXRule) Apply(ctx *lint.RuleContext) ([]lint.Warning, error) {
	var warnings []lint.Warning
	for i, li := range ctx.Doc.Lines {
		if ctx.Cancelled() {
			return warnings, ctx.Ctx.Err()
		}
		if li.Heading == nil || li.Heading.Style == lintctx.Setext1 || li.Heading.Style == lintctx.Setext2 {
			continue
		}
		m := atxMultiSpaceRe.FindStringSubmatch(li.Text)
		if m == nil {
			continue
		}
		indent := len(m[1])
		hashes := m[2]
		spaces := m[3]
		deleteStart := li.Range.Start + indent + len(hashes) + 1
		deleteEnd := li.Range.Start + indent + len(hashes) + len(spaces)

		w := lint.NewWarningAtLine(r.ID(), ctx.Path, i+1, 1, i+1, len(li.Text)+1,
			"multiple spaces after hash on ATX style heading").
			WithSeverity(config.SeverityWarning)

		builder := fix.NewEditBuilder()
		builder.Delete(deleteStart, deleteEnd)
		w = w.WithFix(builder)

		warnings = append(warnings, w.Build())
	}
	return warnings, nil
}

// BlanksAroundHeadingsRule (MD022) requires a blank line on both sides of a
// heading, except at the start or end of the document.
type BlanksAroundHeadingsRule struct {
	lint.BaseRule
}

func NewBlanksAroundHeadingsRule() *BlanksAroundHeadingsRule {
	return &BlanksAroundHeadingsRule{
		BaseRule: lint.NewBaseRule(
			"MD022",
			"blanks-around-headings",
			"Headings should be surrounded by blank lines",
			[]string{"headings", "blank_lines"},
			lint.Full,
		),
	}
}

func (r *BlanksAroundHeadingsRule) Apply(ctx *lint.RuleContext) ([]lint.Warning, error) {
	lines := ctx.Doc.Lines
	var warnings []lint.Warning

	for i, li := range lines {
		if ctx.Cancelled() {
			return warnings, ctx.Ctx.Err()
		}
		if li.Heading == nil {
			continue
		}
		// detectHeading only ever sets Heading on a Setext heading's text
		// line, never on its underline, so i is always the heading's first
		// line here regardless of style.
		headingLineIdx := i
		isSetext := li.Heading.Style == lintctx.Setext1 || li.Heading.Style == lintctx.Setext2

		if headingLineIdx > 0 && !lines[headingLineIdx-1].Blank {
			w := lint.NewWarningAtLine(r.ID(), ctx.Path, headingLineIdx+1, 1, headingLineIdx+1, len(li.Text)+1,
				"heading should be preceded by a blank line").
				WithSeverity(config.SeverityWarning)
			builder := fix.NewEditBuilder()
			builder.Insert(li.Range.Start, "\n")
			w = w.WithFix(builder)
			warnings = append(warnings, w.Build())
		}

		afterIdx := headingLineIdx
		if isSetext {
			afterIdx = headingLineIdx + 1
		}
		if afterIdx+1 < len(lines) && !lines[afterIdx+1].Blank {
			after := lines[afterIdx]
			w := lint.NewWarningAtLine(r.ID(), ctx.Path, afterIdx+1, 1, afterIdx+1, len(after.Text)+1,
				"heading should be followed by a blank line").
				WithSeverity(config.SeverityWarning)
			builder := fix.NewEditBuilder()
			builder.Insert(after.Range.End, "\n")
			w = w.WithFix(builder)
			warnings = append(warnings, w.Build())
		}
	}
	return warnings, nil
}

var trailingPunctRe = regexp.MustCompile(`[.,;:!]+$`)

// NoTrailingPunctuationRule (MD026) flags headings that end with
// punctuation such as "." or ":".
type NoTrailingPunctuationRule struct {
	lint.BaseRule
}

func NewNoTrailingPunctuationRule() *NoTrailingPunctuationRule {
	return &NoTrailingPunctuationRule{
		BaseRule: lint.NewBaseRule(
			"MD026",
			"no-trailing-punctuation",
			"Trailing punctuation in heading",
			[]string{"headings"},
			lint.Full,
		),
	}
}

func (r *NoTrailingPunctuationRule) Apply(ctx *lint.RuleContext) ([]lint.Warning, error) {
	punctuation := ctx.OptionString("punctuation", ".,;:!")
	re := trailingPunctRe
	if punctuation != ".,;:!" {
		re = regexp.MustCompile(`[` + regexp.QuoteMeta(punctuation) + `]+$`)
	}

	var warnings []lint.Warning
	for i, li := range ctx.Doc.Lines {
		if ctx.Cancelled() {
			return warnings, ctx.Ctx.Err()
		}
		if li.Heading == nil {
			continue
		}
		text := strings.TrimRight(li.Heading.Text, " \t")
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}

		w := lint.NewWarningAtLine(r.ID(), ctx.Path, i+1, 1, i+1, len(li.Text)+1,
			"trailing punctuation in heading").
			WithSeverity(config.SeverityWarning)

		if editEnd, editStart, ok := trailingPunctuationEditRange(li, loc, punctuation); ok {
			builder := fix.NewEditBuilder()
			builder.Delete(editStart, editEnd)
			w = w.WithFix(builder)
		}

		warnings = append(warnings, w.Build())
	}
	return warnings, nil
}

// trailingPunctuationEditRange locates the byte range of the offending
// trailing punctuation within the raw line, searching from the right so it
// works for ATX (with or without a closing hash run), ATXClosed, and Setext
// styles alike without needing to re-derive the heading's exact text span.
func trailingPunctuationEditRange(li lintctx.LineInfo, textLoc []int, punctuation string) (end, start int, ok bool) {
	punctLen := textLoc[1] - textLoc[0]
	if punctLen <= 0 {
		return 0, 0, false
	}
	trimmed := strings.TrimRight(li.Text, " \t")
	// Strip a closing ATX hash run ("## Heading ##") before locating the
	// punctuation run that immediately precedes it.
	for len(trimmed) > 0 && trimmed[len(trimmed)-1] == '#' {
		trimmed = strings.TrimRight(trimmed[:len(trimmed)-1], " \t")
	}
	if len(trimmed) < punctLen {
		return 0, 0, false
	}
	suffix := trimmed[len(trimmed)-punctLen:]
	if strings.TrimRight(suffix, punctuation) != "" {
		return 0, 0, false
	}
	end = li.Range.Start + len(trimmed)
	start = end - punctLen
	return end, start, true
}
