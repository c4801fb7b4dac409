// Package lintctx builds a single-pass structural annotation of a Markdown
// document: a line table, code-block/code-span byte ranges, and reconstructed
// list blocks. Rules read this annotation instead of walking an AST so that
// every rule shares one parse of the file.
package lintctx

import "bytes"

// LineEnding records the line-ending style a document used on disk so a fix
// pass can restore it on write.
type LineEnding int

const (
	LF LineEnding = iota
	CRLF
)

// Document holds the normalized content a Context was built from.
type Document struct {
	// Path is the file path the content came from, or "" for in-memory input.
	Path string

	// Original is the exact bytes as read from disk (or supplied), before
	// line-ending normalization.
	Original []byte

	// Content is Original with CRLF normalized to LF. All byte offsets in
	// LineInfo, CodeRanges, and ListBlock refer to Content, never Original.
	Content []byte

	// Ending is the line-ending style detected in Original.
	Ending LineEnding
}

// NewDocument normalizes content and records its line-ending style.
func NewDocument(path string, content []byte) Document {
	ending := LF
	if bytes.Contains(content, []byte("\r\n")) {
		ending = CRLF
	}
	normalized := content
	if ending == CRLF {
		normalized = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	}
	return Document{
		Path:     path,
		Original: content,
		Content:  normalized,
		Ending:   ending,
	}
}

// Denormalize restores the document's original line-ending style on fixed
// content that was produced against the normalized (LF) byte stream.
func (d Document) Denormalize(content []byte) []byte {
	if d.Ending == CRLF {
		return bytes.ReplaceAll(content, []byte("\n"), []byte("\r\n"))
	}
	return content
}
