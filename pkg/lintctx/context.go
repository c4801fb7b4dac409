package lintctx

import "github.com/rumdl/rumdl/pkg/config"

// Context is the single structural annotation of a document that every rule
// reads from. It is built once per file per lint pass; rules never parse
// the document themselves.
type Context struct {
	Doc    Document
	Lines  []LineInfo
	Code   CodeRanges
	Lists  []ListBlock
	Skip   []ByteRange
	Flavor config.Flavor
}

// Build performs the single CommonMark parse (for code/table ranges), the
// line-table scan, list-block reconstruction, and skip-context detection
// that make up a Context.
func Build(path string, content []byte, flavor config.Flavor) *Context {
	doc := NewDocument(path, content)
	lines := BuildLines(doc.Content)
	code := BuildCodeRanges(doc.Content, flavor)
	applyCodeRanges(lines, code)
	lists := ParseListBlocks(lines, code)
	skip := detectSkipContexts(lines, flavor)

	return &Context{
		Doc:    doc,
		Lines:  lines,
		Code:   code,
		Lists:  lists,
		Skip:   skip,
		Flavor: flavor,
	}
}

// PositionOf converts a byte offset into a 1-based (line, column) pair.
func (c *Context) PositionOf(offset int) (line, col int) {
	return PositionOf(c.Lines, offset)
}

// Line returns the 1-based line's LineInfo, or the zero value if out of
// range.
func (c *Context) Line(n int) LineInfo {
	if n < 1 || n > len(c.Lines) {
		return LineInfo{}
	}
	return c.Lines[n-1]
}

// InSkipContext reports whether offset falls inside a flavor-specific
// auxiliary span (admonition, tab block, footnote definition, snippet
// marker) that prose-oriented rules must treat as opaque.
func (c *Context) InSkipContext(offset int) bool {
	return rangeContains(c.Skip, offset)
}

// ListBlockAt returns the narrowest ListBlock containing the given 1-based
// line number, or nil if the line is not part of a reconstructed list
// block. Nested lists reconstruct as overlapping ranges (see ListBlock), so
// the narrowest match is the innermost one.
func (c *Context) ListBlockAt(line int) *ListBlock {
	var best *ListBlock
	for i := range c.Lists {
		b := &c.Lists[i]
		if line < b.StartLine || line > b.EndLine {
			continue
		}
		if best == nil || (b.EndLine-b.StartLine) < (best.EndLine-best.StartLine) {
			best = b
		}
	}
	return best
}
