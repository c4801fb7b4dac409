package lintctx

import (
	"sort"
	"strings"
)

// unorderedListMinContinuationIndent is the minimum indent (beyond the
// blockquote prefix, if any) a continuation line of an unordered list item
// must have to count as belonging to that item rather than breaking the
// list.
const unorderedListMinContinuationIndent = 2

// ListBlock is a reconstructed list: a maximal run of lines that CommonMark's
// list-item continuation rules treat as one list at one nesting depth. A
// list with nested sub-lists reconstructs as several ListBlocks, one per
// depth, with overlapping line ranges — there is no parent/child pointer;
// callers distinguish levels by NestingLevel and by which range is narrower.
//
// Invariant: StartLine <= min(ItemLines) <= max(ItemLines) <= EndLine
// (1-based, inclusive).
type ListBlock struct {
	StartLine int
	EndLine   int
	Ordered   bool
	// Marker is the marker byte shared by every item in the block
	// ('-', '*', '+', '.' or ')'), or 0 if the block mixes markers (only
	// possible across a directly-adjacent forced continuation).
	Marker byte
	// ItemLines holds the 1-based line number of every line that opens a
	// list item belonging to this block at this nesting depth.
	ItemLines []int
	// NestingLevel is marker_column/2 for the block's first item: 0 for a
	// top-level list, 1 for a list nested one level inside a parent item,
	// and so on.
	NestingLevel int
	// BlockquotePrefix is the literal blockquote marker sequence shared by
	// every item in the block (""  if the block is not inside a
	// blockquote). Constant across the block by construction.
	BlockquotePrefix string
	// MaxMarkerWidth is the widest "marker + following spaces" span among
	// the block's items.
	MaxMarkerWidth int
}

// listLevelState tracks the block currently being built at one nesting
// depth. A stack of these (innermost on top) lets a deeper item open its own
// ListBlock without closing the shallower blocks it's nested inside.
type listLevelState struct {
	block                               *ListBlock
	lastItemLine                        int
	hasListBreakingContentSinceLastItem bool
	minContinuationForTracking          int
	blockquoteDepth                     int
	nestingLevel                        int
}

// ParseListBlocks reconstructs list blocks from a document's line table in a
// single forward pass, one level at a time via a stack of open blocks: lines
// are examined in order, tracking whether "list-breaking" structural content
// (a heading, thematic break, table row, or blockquote-depth change) has
// been seen since the last list item at that depth, and whether the next
// non-blank line continues the innermost open item, opens a nested child
// block, starts a new sibling at a compatible indent, or begins unrelated
// content that closes the block.
func ParseListBlocks(lines []LineInfo, code CodeRanges) []ListBlock {
	var blocks []ListBlock
	var stack []*listLevelState

	top := func() *listLevelState {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	flushTop := func() {
		lvl := top()
		if lvl == nil {
			return
		}
		blocks = append(blocks, *lvl.block)
		stack = stack[:len(stack)-1]
		// The lines of a nested child block are still part of the parent
		// item's own content, so the parent's span must cover them even
		// when no later sibling item extends it directly.
		if parent := top(); parent != nil && lvl.block.EndLine > parent.block.EndLine {
			parent.block.EndLine = lvl.block.EndLine
		}
	}

	flushAll := func() {
		for len(stack) > 0 {
			flushTop()
		}
	}

	pushLevel := func(lineNo int, li LineInfo, item *ListItemInfo, nesting, bqDepth int) {
		blk := &ListBlock{
			StartLine:        lineNo,
			EndLine:          lineNo,
			Ordered:          item.Kind == Ordered,
			Marker:           item.Marker,
			NestingLevel:     nesting,
			BlockquotePrefix: li.BlockquotePrefix,
			MaxMarkerWidth:   item.MarkerWidth,
			ItemLines:        []int{lineNo},
		}
		stack = append(stack, &listLevelState{
			block:                      blk,
			lastItemLine:               lineNo,
			minContinuationForTracking: li.Indent + item.MarkerWidth,
			blockquoteDepth:            bqDepth,
			nestingLevel:               nesting,
		})
	}

	extendLevel := func(lvl *listLevelState, lineNo int, li LineInfo, item *ListItemInfo, bqDepth int) {
		lvl.block.EndLine = lineNo
		lvl.block.ItemLines = append(lvl.block.ItemLines, lineNo)
		if item.MarkerWidth > lvl.block.MaxMarkerWidth {
			lvl.block.MaxMarkerWidth = item.MarkerWidth
		}
		if lvl.block.Marker != item.Marker {
			// Mixed markers (only reachable via the forced-adjacency
			// exception below) clear the tracked marker.
			lvl.block.Marker = 0
		}
		lvl.blockquoteDepth = bqDepth
		lvl.minContinuationForTracking = li.Indent + item.MarkerWidth
		lvl.hasListBreakingContentSinceLastItem = false
		lvl.lastItemLine = lineNo
	}

	for i := 0; i < len(lines); i++ {
		lineNo := i + 1
		li := lines[i]

		if code.InCodeBlock(li.Range.Start) {
			// Code content never opens a list item itself, but it can be a
			// continuation of the innermost open item if indented enough
			// (the teacher's three-tier classification lives one level up,
			// at the rule layer; here we only need "is this still inside
			// the block").
			lvl := top()
			if lvl != nil && li.Indent >= effectiveContinuationIndent(lvl) {
				lvl.block.EndLine = lineNo
				continue
			}
			if lvl != nil {
				lvl.hasListBreakingContentSinceLastItem = true
			}
			continue
		}

		bqDepth := strings.Count(li.BlockquotePrefix, ">")
		if lvl := top(); lvl != nil && bqDepth != lvl.blockquoteDepth {
			// A change in blockquote nesting level closes the innermost
			// block unless the new depth still contains an item at a
			// compatible indent (handled below via the item-detection
			// branch).
			lvl.hasListBreakingContentSinceLastItem = true
		}

		if li.Blank {
			continue
		}

		if li.ListItem != nil {
			item := li.ListItem
			nesting := li.Indent / 2

			// Close every open level deeper than this item: it can't
			// continue a level it has returned out of.
			for {
				lvl := top()
				if lvl == nil || lvl.nestingLevel <= nesting {
					break
				}
				flushTop()
			}

			lvl := top()
			if lvl == nil || lvl.nestingLevel < nesting {
				// Deeper than anything currently open: starts a nested
				// child block, leaving any shallower block paused on the
				// stack to resume when a sibling of its own depth appears.
				pushLevel(lineNo, li, item, nesting, bqDepth)
				continue
			}

			// Sibling of the innermost open level.
			directlyAdjacent := !lvl.hasListBreakingContentSinceLastItem && lineNo == lvl.lastItemLine+1
			sameType := item.Kind == boolToKind(lvl.block.Ordered)
			sameMarker := sameTypeCompatibleMarker(lvl.block.Marker, item)
			bqMatches := bqDepth == lvl.blockquoteDepth

			if bqMatches && (directlyAdjacent || (sameType && sameMarker && !lvl.hasListBreakingContentSinceLastItem)) {
				extendLevel(lvl, lineNo, li, item, bqDepth)
				continue
			}

			// Incompatible item (different list type/marker, not directly
			// adjacent, or a blockquote-depth change): close this level and
			// start a new sibling at the same depth.
			flushTop()
			pushLevel(lineNo, li, item, nesting, bqDepth)
			continue
		}

		// Non-item, non-blank, non-code line: evaluated against the
		// innermost open level only.
		lvl := top()
		if lvl == nil {
			continue
		}

		if isStructuralSeparator(li) {
			lvl.hasListBreakingContentSinceLastItem = true
			continue
		}

		// Lazy continuation: any other indent-0-or-more text line that is
		// not itself a structural element continues the current item as
		// long as the block hasn't already been broken by intervening
		// structural content.
		if li.Indent >= effectiveContinuationIndent(lvl) || !lvl.hasListBreakingContentSinceLastItem {
			lvl.block.EndLine = lineNo
			continue
		}

		lvl.hasListBreakingContentSinceLastItem = true
	}

	flushAll()

	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].StartLine != blocks[j].StartLine {
			return blocks[i].StartLine < blocks[j].StartLine
		}
		return blocks[i].NestingLevel < blocks[j].NestingLevel
	})

	return mergeListBlocks(blocks, lines)
}

func boolToKind(ordered bool) ListMarkerKind {
	if ordered {
		return Ordered
	}
	return Unordered
}

func sameTypeCompatibleMarker(blockMarker byte, item *ListItemInfo) bool {
	if item.Kind == Ordered {
		return true // ordered delimiter style ('.' vs ')') does not split a block
	}
	return blockMarker == item.Marker
}

func effectiveContinuationIndent(lvl *listLevelState) int {
	min := lvl.minContinuationForTracking
	if min < unorderedListMinContinuationIndent {
		min = unorderedListMinContinuationIndent
	}
	return min
}

func isStructuralSeparator(li LineInfo) bool {
	if li.Heading != nil {
		return true
	}
	if li.ThematicBreak {
		return true
	}
	if isTableLine(li.Text) {
		return true
	}
	return false
}

// isTableLine approximates GFM table-row detection for list-breaking
// purposes; exact table boundaries for rule use come from CodeRanges.Tables
// (the real goldmark/GFM table extension), not this heuristic.
func isTableLine(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" || !strings.Contains(t, "|") {
		return false
	}
	return !isThematicBreak(t)
}

// blockSpacing classifies the gap between two candidate-adjacent list
// blocks for the merge pass below.
type blockSpacing int

const (
	spacingContentBetween blockSpacing = iota
	spacingConsecutive
	spacingSingleBlank
	spacingMultipleBlanks
)

func analyzeSpacing(lines []LineInfo, prevEnd, nextStart int) blockSpacing {
	if nextStart == prevEnd+1 {
		return spacingConsecutive
	}
	blanks := 0
	for l := prevEnd + 1; l < nextStart; l++ {
		if l-1 < 0 || l-1 >= len(lines) {
			continue
		}
		if lines[l-1].Blank {
			blanks++
		} else {
			return spacingContentBetween
		}
	}
	if blanks == 1 {
		return spacingSingleBlank
	}
	if blanks > 1 {
		return spacingMultipleBlanks
	}
	return spacingContentBetween
}

func blocksCompatible(a, b ListBlock) bool {
	return a.Ordered == b.Ordered && a.NestingLevel == b.NestingLevel && a.BlockquotePrefix == b.BlockquotePrefix
}

// mergeListBlocks runs the post-pass that merges adjacent, compatible list
// blocks the forward scan split unnecessarily: consecutive blocks always
// merge; blocks separated by a single blank line merge when they share the
// same unordered marker; ordered blocks separated by non-blank content may
// still merge if that content is not "meaningful" (not a heading, thematic
// break, table line, or blockquote line). Only
// blocks at the same nesting depth and blockquote context are considered.
func mergeListBlocks(blocks []ListBlock, lines []LineInfo) []ListBlock {
	if len(blocks) < 2 {
		return blocks
	}
	merged := []ListBlock{blocks[0]}
	for i := 1; i < len(blocks); i++ {
		cur := blocks[i]
		last := &merged[len(merged)-1]
		if !blocksCompatible(*last, cur) {
			merged = append(merged, cur)
			continue
		}
		spacing := analyzeSpacing(lines, last.EndLine, cur.StartLine)
		shouldMerge := false
		switch spacing {
		case spacingConsecutive:
			shouldMerge = true
		case spacingSingleBlank:
			shouldMerge = !last.Ordered && last.Marker == cur.Marker
		case spacingMultipleBlanks:
			shouldMerge = false
		case spacingContentBetween:
			shouldMerge = last.Ordered && cur.Ordered && !hasMeaningfulContentBetween(lines, last.EndLine, cur.StartLine)
		}
		if shouldMerge {
			last.EndLine = cur.EndLine
			last.ItemLines = append(last.ItemLines, cur.ItemLines...)
			if cur.MaxMarkerWidth > last.MaxMarkerWidth {
				last.MaxMarkerWidth = cur.MaxMarkerWidth
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

func hasMeaningfulContentBetween(lines []LineInfo, prevEnd, nextStart int) bool {
	for l := prevEnd + 1; l < nextStart; l++ {
		if l-1 < 0 || l-1 >= len(lines) {
			continue
		}
		li := lines[l-1]
		if li.Blank {
			continue
		}
		if li.Heading != nil || li.ThematicBreak || isTableLine(li.Text) || li.BlockquotePrefix != "" {
			return true
		}
	}
	return false
}
