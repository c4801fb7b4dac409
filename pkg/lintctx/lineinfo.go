package lintctx

import (
	"regexp"
	"strings"
)

// ByteRange is a half-open [Start, End) byte span into Document.Content.
type ByteRange struct {
	Start int
	End   int
}

// Contains reports whether offset falls within the range.
func (r ByteRange) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Overlaps reports whether the two ranges share any byte.
func (r ByteRange) Overlaps(other ByteRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// HeadingStyle identifies how a heading line was written.
type HeadingStyle int

const (
	NotHeading HeadingStyle = iota
	ATX
	ATXClosed
	Setext1
	Setext2
)

// HeadingInfo describes a detected heading line.
type HeadingInfo struct {
	Style HeadingStyle
	Level int    // 1-6
	Text  string // heading text with marker/trailing-hash stripped and trimmed
}

// ListMarkerKind identifies the kind of list-item marker on a line.
type ListMarkerKind int

const (
	NoMarker ListMarkerKind = iota
	Unordered
	Ordered
)

// ListItemInfo describes a line that opens a list item.
type ListItemInfo struct {
	Kind        ListMarkerKind
	Marker      byte // '-', '*', '+' for Unordered; '.' or ')' delimiter for Ordered
	Number      int  // for Ordered
	MarkerWidth int  // byte width of "marker + following spaces" before content
}

// LineInfo is the per-line structural annotation produced by a single
// forward scan of the document.
type LineInfo struct {
	// Range is the line's byte span in Document.Content, excluding the
	// trailing newline.
	Range ByteRange

	// Text is Document.Content[Range.Start:Range.End].
	Text string

	// Indent is the number of leading space-equivalent columns (tabs
	// expand to the next multiple of 4).
	Indent int

	// Blank reports whether the line contains only whitespace.
	Blank bool

	// InCodeBlock reports whether the line lies within a fenced or
	// indented code block (see CodeRanges).
	InCodeBlock bool

	// InCodeSpan reports whether the line lies within (or continues) an
	// inline code span that began on an earlier line.
	InCodeSpan bool

	// BlockquotePrefix is the literal leading blockquote marker sequence
	// ("> ", "> > ", ...), or "" if the line is not inside a blockquote.
	BlockquotePrefix string

	// Heading is non-nil when the line opens or forms a heading.
	Heading *HeadingInfo

	// ListItem is non-nil when the line opens a list item.
	ListItem *ListItemInfo

	// ThematicBreak reports whether the line is a thematic break ("---",
	// "***", "___", possibly space-separated).
	ThematicBreak bool
}

var (
	atxRe          = regexp.MustCompile(`^(#{1,6})(\s+.*?)?(\s+#+)?\s*$`)
	setextRe       = regexp.MustCompile(`^(=+|-+)\s*$`)
	blockquoteRe   = regexp.MustCompile(`^(\s*>\s?)+`)
	unorderedRe    = regexp.MustCompile(`^([-*+])(\s+)(\S.*)?$`)
	orderedRe      = regexp.MustCompile(`^(\d{1,9})([.)])(\s+)(\S.*)?$`)
	thematicRules  = []*regexp.Regexp{
		regexp.MustCompile(`^(\s{0,3})(-\s*){3,}$`),
		regexp.MustCompile(`^(\s{0,3})(\*\s*){3,}$`),
		regexp.MustCompile(`^(\s{0,3})(_\s*){3,}$`),
	}
)

func expandIndent(line string) int {
	indent := 0
	for _, ch := range line {
		switch ch {
		case ' ':
			indent++
		case '\t':
			indent += 4 - (indent % 4)
		default:
			return indent
		}
	}
	return indent
}

func isThematicBreak(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	for _, re := range thematicRules {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

func detectListItem(stripped string) *ListItemInfo {
	if m := unorderedRe.FindStringSubmatch(stripped); m != nil {
		if isThematicBreak(stripped) {
			return nil
		}
		return &ListItemInfo{
			Kind:        Unordered,
			Marker:      m[1][0],
			MarkerWidth: len(m[1]) + len(m[2]),
		}
	}
	if m := orderedRe.FindStringSubmatch(stripped); m != nil {
		num := 0
		for _, c := range m[1] {
			num = num*10 + int(c-'0')
		}
		return &ListItemInfo{
			Kind:        Ordered,
			Marker:      m[2][0],
			Number:      num,
			MarkerWidth: len(m[1]) + len(m[2]) + len(m[3]),
		}
	}
	return nil
}

func detectHeading(lines []string, idx int) *HeadingInfo {
	line := lines[idx]
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed)-len(strings.TrimLeft(trimmed, " ")) < 4 {
		if m := atxRe.FindStringSubmatch(trimmed); m != nil && trimmed != "" {
			level := len(m[1])
			text := strings.TrimSpace(m[2])
			closed := strings.TrimSpace(m[3]) != ""
			style := ATX
			if closed {
				style = ATXClosed
			}
			return &HeadingInfo{Style: style, Level: level, Text: text}
		}
	}
	// Setext: current line is non-blank, does not start with "#" and is not
	// a list item, and the next line is a run of "=" or "-".
	if strings.TrimSpace(line) == "" {
		return nil
	}
	if idx+1 >= len(lines) {
		return nil
	}
	next := strings.TrimSpace(lines[idx+1])
	if m := setextRe.FindStringSubmatch(next); m != nil {
		if strings.HasPrefix(line, "#") || detectListItem(strings.TrimLeft(line, " \t")) != nil {
			return nil
		}
		level := 2
		style := Setext2
		if m[1][0] == '=' {
			level = 1
			style = Setext1
		}
		return &HeadingInfo{Style: style, Level: level, Text: strings.TrimSpace(line)}
	}
	return nil
}

// BuildLines performs the single forward pass over content producing the
// per-line structural table. Code-block/code-span awareness is layered in
// separately by Context.build via CodeRanges, since that classification
// requires the single CommonMark parse (see context.go).
func BuildLines(content []byte) []LineInfo {
	rawLines := strings.Split(string(content), "\n")
	infos := make([]LineInfo, len(rawLines))

	offset := 0
	for i, raw := range rawLines {
		start := offset
		end := start + len(raw)
		offset = end + 1 // account for the newline consumed by Split

		trimmed := strings.TrimSpace(raw)
		info := LineInfo{
			Range:  ByteRange{Start: start, End: end},
			Text:   raw,
			Indent: expandIndent(raw),
			Blank:  trimmed == "",
		}

		if bq := blockquoteRe.FindString(raw); bq != "" {
			info.BlockquotePrefix = bq
		}
		stripped := raw
		if info.BlockquotePrefix != "" {
			stripped = raw[len(info.BlockquotePrefix):]
		}
		strippedTrim := strings.TrimLeft(stripped, " \t")

		if !info.Blank {
			info.ThematicBreak = isThematicBreak(strings.TrimSpace(stripped))
			if !info.ThematicBreak {
				info.ListItem = detectListItem(strippedTrim)
			}
			info.Heading = detectHeading(rawLines, i)
		}

		infos[i] = info
	}
	return infos
}

// PositionOf converts a byte offset in Document.Content into a 1-based
// (line, column) pair using binary search over line ranges.
func PositionOf(lines []LineInfo, offset int) (line, col int) {
	lo, hi := 0, len(lines)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		r := lines[mid].Range
		switch {
		case offset < r.Start:
			hi = mid - 1
		case offset > r.End:
			lo = mid + 1
		default:
			return mid + 1, offset - r.Start + 1
		}
	}
	if lo >= len(lines) {
		lo = len(lines) - 1
	}
	return lo + 1, 1
}
