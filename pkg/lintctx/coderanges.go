package lintctx

import (
	"github.com/rumdl/rumdl/pkg/config"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// CodeRanges holds the byte ranges a single CommonMark parse identified as
// code (fenced/indented blocks, inline spans) or GFM tables. Rules treat
// these spans as opaque: prose-oriented checks must not fire inside them.
//
// All three slices are sorted by Start, which lets lookups use binary search
// instead of a linear scan (see InCodeBlock/InCodeSpan).
type CodeRanges struct {
	Blocks []ByteRange
	Spans  []ByteRange
	Tables []ByteRange
}

func gfmParser(flavor config.Flavor) goldmark.Markdown {
	if flavor == config.FlavorGFM || flavor == config.FlavorMkDocs {
		return goldmark.New(goldmark.WithExtensions(extension.GFM))
	}
	return goldmark.New()
}

// BuildCodeRanges performs the single CommonMark parse this package's
// Context relies on, walking the resulting AST once to collect code and
// table byte ranges. The AST itself is discarded afterward; only these
// ranges and the document's line table (BuildLines) survive into Context.
func BuildCodeRanges(content []byte, flavor config.Flavor) CodeRanges {
	md := gfmParser(flavor)
	reader := text.NewReader(content)
	root := md.Parser().Parse(reader)

	var ranges CodeRanges
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.FencedCodeBlock:
			if r, ok := blockRange(v, content); ok {
				ranges.Blocks = append(ranges.Blocks, r)
			}
		case *ast.CodeBlock:
			if r, ok := blockRange(v, content); ok {
				ranges.Blocks = append(ranges.Blocks, r)
			}
		case *ast.CodeSpan:
			if r, ok := inlineRange(v); ok {
				ranges.Spans = append(ranges.Spans, r)
			}
		case *east.Table:
			if r, ok := blockRange(v, content); ok {
				ranges.Tables = append(ranges.Tables, r)
			}
		}
		return ast.WalkContinue, nil
	})
	return ranges
}

func blockRange(n ast.Node, content []byte) (ByteRange, bool) {
	lines := n.Lines()
	if lines.Len() == 0 {
		return ByteRange{}, false
	}
	first := lines.At(0)
	last := lines.At(lines.Len() - 1)
	start, end := first.Start, last.Stop
	if start < 0 || end > len(content) || start > end {
		return ByteRange{}, false
	}
	return ByteRange{Start: start, End: end}, true
}

func inlineRange(n *ast.CodeSpan) (ByteRange, bool) {
	start, end := -1, -1
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		txt, ok := c.(*ast.Text)
		if !ok {
			continue
		}
		seg := txt.Segment
		if start < 0 || seg.Start < start {
			start = seg.Start
		}
		if seg.Stop > end {
			end = seg.Stop
		}
	}
	if start < 0 {
		return ByteRange{}, false
	}
	// The range covers the span's text segments only; the surrounding
	// backticks are not included.
	return ByteRange{Start: start, End: end}, true
}

// applyCodeRanges stamps each line's InCodeBlock/InCodeSpan flags from the
// ranges a single CommonMark parse already computed, so the rest of the
// line table can be built without re-parsing.
func applyCodeRanges(lines []LineInfo, code CodeRanges) {
	for i := range lines {
		lines[i].InCodeBlock = code.InCodeBlock(lines[i].Range.Start)
		lines[i].InCodeSpan = code.InCodeSpan(lines[i].Range.Start)
	}
}

// InCodeBlock reports whether offset falls inside a fenced or indented
// code block.
func (c CodeRanges) InCodeBlock(offset int) bool {
	return rangeContains(c.Blocks, offset)
}

// InCodeSpan reports whether offset falls inside an inline code span.
func (c CodeRanges) InCodeSpan(offset int) bool {
	return rangeContains(c.Spans, offset)
}

// InTable reports whether offset falls inside a GFM table.
func (c CodeRanges) InTable(offset int) bool {
	return rangeContains(c.Tables, offset)
}

func rangeContains(ranges []ByteRange, offset int) bool {
	lo, hi := 0, len(ranges)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		r := ranges[mid]
		switch {
		case offset < r.Start:
			hi = mid - 1
		case offset >= r.End:
			lo = mid + 1
		default:
			return true
		}
	}
	return false
}
