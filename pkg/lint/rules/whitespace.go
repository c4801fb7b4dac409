package rules

import (
	"fmt"
	"strings"

	"github.com/rumdl/rumdl/pkg/config"
	"github.com/rumdl/rumdl/pkg/fix"
	"github.com/rumdl/rumdl/pkg/lint"
)

// TrailingSpacesRule (MD009) flags whitespace at the end of a line, except
// for a hard line break of exactly br_spaces trailing spaces.
type TrailingSpacesRule struct {
	lint.BaseRule
}

func NewTrailingSpacesRule() *TrailingSpacesRule {
	return &TrailingSpacesRule{
		BaseRule: lint.NewBaseRule(
			"MD009",
			"no-trailing-spaces",
			"Trailing spaces should be removed",
			[]string{"whitespace"},
			lint.Full,
		),
	}
}

func (r *TrailingSpacesRule) Apply(ctx *lint.RuleContext) ([]lint.Warning, error) {
	brSpaces := ctx.OptionInt("br_spaces", 2)
	strict := ctx.OptionBool("strict", false)

	lines := ctx.Doc.Lines
	// BuildLines appends one synthetic empty LineInfo after a trailing '\n';
	// it is not a real following line, so a hard break on the last line of
	// actual content must not be excused by its presence.
	lastReal := len(lines) - 1
	if lastReal >= 0 && len(ctx.Doc.Doc.Content) > 0 && ctx.Doc.Doc.Content[len(ctx.Doc.Doc.Content)-1] == '\n' {
		lastReal--
	}

	var warnings []lint.Warning
	for i, li := range lines {
		if ctx.Cancelled() {
			return warnings, ctx.Ctx.Err()
		}
		trimmed := strings.TrimRight(li.Text, " \t")
		trailing := len(li.Text) - len(trimmed)
		if trailing == 0 {
			continue
		}
		isHardBreak := !strict && trailing == brSpaces && trimmed != "" && i < lastReal
		if isHardBreak {
			continue
		}

		start := li.Range.Start + len(trimmed)
		end := li.Range.End
		w := lint.NewWarningAtLine(r.ID(), ctx.Path, i+1, len(trimmed)+1, i+1, len(li.Text)+1,
			"trailing whitespace").
			WithSeverity(config.SeverityWarning)

		builder := fix.NewEditBuilder()
		builder.Delete(start, end)
		w = w.WithFix(builder)

		warnings = append(warnings, w.Build())
	}
	return warnings, nil
}

// HardTabsRule (MD010) flags literal tab characters used for indentation
// or inline spacing, where a tab's rendered width is ambiguous across
// viewers. Lines inside code blocks are checked too unless the code_blocks
// option is false.
type HardTabsRule struct {
	lint.BaseRule
}

func NewHardTabsRule() *HardTabsRule {
	return &HardTabsRule{
		BaseRule: lint.NewBaseRule(
			"MD010",
			"no-hard-tabs",
			"Hard tabs should not be used",
			[]string{"whitespace"},
			lint.Full,
		),
	}
}

func (r *HardTabsRule) Apply(ctx *lint.RuleContext) ([]lint.Warning, error) {
	spacesPerTab := ctx.OptionInt("spaces_per_tab", 4)
	codeBlocks := ctx.OptionBool("code_blocks", true)

	var warnings []lint.Warning
	for i, li := range ctx.Doc.Lines {
		if ctx.Cancelled() {
			return warnings, ctx.Ctx.Err()
		}
		if li.InCodeBlock && !codeBlocks {
			continue
		}
		col := strings.IndexByte(li.Text, '\t')
		if col < 0 {
			continue
		}

		w := lint.NewWarningAtLine(r.ID(), ctx.Path, i+1, col+1, i+1, col+2,
			"hard tab character").
			WithSeverity(config.SeverityWarning)

		replacement := strings.ReplaceAll(li.Text, "\t", strings.Repeat(" ", spacesPerTab))
		builder := fix.NewEditBuilder()
		builder.ReplaceRange(li.Range.Start, li.Range.End, replacement)
		w = w.WithFix(builder)

		warnings = append(warnings, w.Build())
	}
	return warnings, nil
}

// MultipleBlankLinesRule (MD012) flags runs of consecutive blank lines
// longer than the configured maximum.
type MultipleBlankLinesRule struct {
	lint.BaseRule
}

func NewMultipleBlankLinesRule() *MultipleBlankLinesRule {
	return &MultipleBlankLinesRule{
		BaseRule: lint.NewBaseRule(
			"MD012",
			"no-multiple-blanks",
			"Multiple consecutive blank lines",
			[]string{"whitespace"},
			lint.Full,
		),
	}
}

func (r *MultipleBlankLinesRule) Apply(ctx *lint.RuleContext) ([]lint.Warning, error) {
	maximum := ctx.OptionInt("maximum", 1)
	if maximum < 1 {
		maximum = 1
	}

	var warnings []lint.Warning
	lines := ctx.Doc.Lines
	// BuildLines appends one synthetic empty LineInfo after a trailing '\n';
	// it isn't a blank line in the document and must not feed this count.
	upper := len(lines)
	if upper > 0 && len(ctx.Doc.Doc.Content) > 0 && ctx.Doc.Doc.Content[len(ctx.Doc.Doc.Content)-1] == '\n' {
		upper--
	}
	i := 0
	for i < upper {
		if ctx.Cancelled() {
			return warnings, ctx.Ctx.Err()
		}
		if !lines[i].Blank || lines[i].InCodeBlock {
			i++
			continue
		}
		runStart := i
		for i < upper && lines[i].Blank && !lines[i].InCodeBlock {
			i++
		}
		runEnd := i - 1
		runLen := runEnd - runStart + 1
		if runLen <= maximum {
			continue
		}

		extraStart := runStart + maximum
		w := lint.NewWarningAtLine(r.ID(), ctx.Path, extraStart+1, 1, runEnd+1, len(lines[runEnd].Text)+1,
			fmt.Sprintf("%d consecutive blank lines, expected at most %d", runLen, maximum)).
			WithSeverity(config.SeverityWarning)

		builder := fix.NewEditBuilder()
		builder.Delete(lines[extraStart-1].Range.End, lines[runEnd].Range.End)
		w = w.WithFix(builder)

		warnings = append(warnings, w.Build())
	}
	return warnings, nil
}

// FinalNewlineRule (MD047) requires the file to end with exactly one
// trailing newline: no missing terminator, no trailing blank lines.
type FinalNewlineRule struct {
	lint.BaseRule
}

func NewFinalNewlineRule() *FinalNewlineRule {
	return &FinalNewlineRule{
		BaseRule: lint.NewBaseRule(
			"MD047",
			"single-trailing-newline",
			"Files should end with a single newline character",
			[]string{"whitespace"},
			lint.Full,
		),
	}
}

func (r *FinalNewlineRule) Apply(ctx *lint.RuleContext) ([]lint.Warning, error) {
	content := ctx.Doc.Doc.Content
	if len(content) == 0 {
		return nil, nil
	}
	lines := ctx.Doc.Lines
	lastLine := len(lines) - 1
	missingNewline := content[len(content)-1] != '\n'

	// When content ends in '\n', BuildLines' split produces one synthetic
	// empty trailing LineInfo that is not itself a blank line in the
	// document; real trailing blank lines are the blank entries before it.
	realLastIdx := lastLine
	if !missingNewline {
		realLastIdx--
	}

	trailingBlankStart := realLastIdx
	for trailingBlankStart >= 0 && lines[trailingBlankStart].Blank {
		trailingBlankStart--
	}
	// A fully blank document (no non-blank anchor line) keeps its first line
	// as the implicit anchor rather than counting it as excess, so an input
	// of exactly "\n" is not itself a violation.
	anchorIdx := trailingBlankStart
	if anchorIdx < 0 {
		anchorIdx = 0
	}
	extraBlankLines := 0
	if realLastIdx >= 0 {
		extraBlankLines = realLastIdx - anchorIdx
	}

	if !missingNewline && extraBlankLines == 0 {
		return nil, nil
	}

	w := lint.NewWarningAtLine(r.ID(), ctx.Path, lastLine+1, 1, lastLine+1, len(lines[lastLine].Text)+1,
		"file should end with exactly one newline character").
		WithSeverity(config.SeverityWarning)

	builder := fix.NewEditBuilder()
	switch {
	case missingNewline:
		builder.Insert(len(content), "\n")
	case extraBlankLines > 0:
		builder.Delete(lines[anchorIdx].Range.End, lines[realLastIdx].Range.End)
	}
	w = w.WithFix(builder)

	return []lint.Warning{w.Build()}, nil
}
