package lintctx

import (
	"regexp"
	"strings"

	"github.com/rumdl/rumdl/pkg/config"
)

var (
	admonitionRe = regexp.MustCompile(`^(\s*)(!!!|\?\?\?\+?)\s+\S`)
	tabRe        = regexp.MustCompile(`^(\s*)===\s+"`)
	footnoteDefRe = regexp.MustCompile(`^\[\^[^\]]+\]:\s`)
	snippetRe    = regexp.MustCompile(`^\s*--8<--\s+"`)
)

// detectSkipContexts runs the auxiliary line classifiers (admonitions, tabs,
// footnotes, snippets). Admonitions, tabs and snippets are detected only for
// the MkDocs flavor; footnote definitions are detected for every flavor.
// Each returns spans that structural/prose rules should treat as opaque.
func detectSkipContexts(lines []LineInfo, flavor config.Flavor) []ByteRange {
	var spans []ByteRange

	mkdocs := flavor == config.FlavorMkDocs

	i := 0
	for i < len(lines) {
		li := lines[i]
		switch {
		case mkdocs && admonitionRe.MatchString(li.Text):
			end := indentedBodyEnd(lines, i, admonitionRe.FindStringSubmatch(li.Text)[1])
			spans = append(spans, ByteRange{Start: li.Range.Start, End: lineEnd(lines, end)})
			i = end + 1
		case mkdocs && tabRe.MatchString(li.Text):
			end := indentedBodyEnd(lines, i, tabRe.FindStringSubmatch(li.Text)[1])
			spans = append(spans, ByteRange{Start: li.Range.Start, End: lineEnd(lines, end)})
			i = end + 1
		case footnoteDefRe.MatchString(li.Text):
			spans = append(spans, li.Range)
			i++
		case mkdocs && snippetRe.MatchString(li.Text):
			spans = append(spans, li.Range)
			i++
		default:
			i++
		}
	}
	return spans
}

// indentedBodyEnd returns the 0-based index of the last line belonging to a
// block opened at index openerIdx, i.e. the run of subsequent lines
// indented at least four columns more than the opener's own indent (a tab
// in the opener's indent counts as four; blank lines are tolerated inside
// the body).
func indentedBodyEnd(lines []LineInfo, openerIdx int, openerIndent string) int {
	minIndent := len(strings.ReplaceAll(openerIndent, "\t", "    ")) + 4
	end := openerIdx
	for j := openerIdx + 1; j < len(lines); j++ {
		if lines[j].Blank {
			end = j
			continue
		}
		if lines[j].Indent >= minIndent {
			end = j
			continue
		}
		break
	}
	return end
}

func lineEnd(lines []LineInfo, idx int) int {
	if idx < 0 || idx >= len(lines) {
		if len(lines) == 0 {
			return 0
		}
		return lines[len(lines)-1].Range.End
	}
	return lines[idx].Range.End
}
