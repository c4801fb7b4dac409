package lint

import (
	"github.com/rumdl/rumdl/pkg/config"
	"github.com/rumdl/rumdl/pkg/fix"
	"github.com/rumdl/rumdl/pkg/lintctx"
)

// WarningBuilder helps construct Warning values.
type WarningBuilder struct {
	w Warning
}

// NewWarning starts building a warning for the given rule at a byte-offset
// range, resolving line/column via doc.PositionOf.
func NewWarning(ruleID string, doc *lintctx.Context, filePath string, startOffset, endOffset int, message string) *WarningBuilder {
	w := Warning{
		RuleID:   ruleID,
		Message:  message,
		FilePath: filePath,
	}
	if doc != nil {
		w.StartLine, w.StartColumn = doc.PositionOf(startOffset)
		w.EndLine, w.EndColumn = doc.PositionOf(endOffset)
	}
	return &WarningBuilder{w: w}
}

// NewWarningAtLine starts building a warning at an already-known 1-based
// line/column range, for the common case of rules that work line-by-line
// and never need a byte-offset lookup.
func NewWarningAtLine(ruleID, filePath string, startLine, startCol, endLine, endCol int, message string) *WarningBuilder {
	return &WarningBuilder{w: Warning{
		RuleID:      ruleID,
		Message:     message,
		FilePath:    filePath,
		StartLine:   startLine,
		StartColumn: startCol,
		EndLine:     endLine,
		EndColumn:   endCol,
	}}
}

// NewWarningWithRegistry is like NewWarningAtLine but also looks up the
// rule's human-readable name from the registry.
func NewWarningWithRegistry(
	ruleID, filePath string,
	startLine, startCol, endLine, endCol int,
	message string,
	reg *Registry,
) *WarningBuilder {
	b := NewWarningAtLine(ruleID, filePath, startLine, startCol, endLine, endCol, message)
	if reg != nil {
		if rule, ok := reg.GetByID(ruleID); ok {
			b.w.RuleName = rule.Name()
		}
	}
	return b
}

// WithSeverity sets the severity.
func (b *WarningBuilder) WithSeverity(s config.Severity) *WarningBuilder {
	b.w.Severity = s
	return b
}

// WithSuggestion sets a human-readable fix suggestion.
func (b *WarningBuilder) WithSuggestion(s string) *WarningBuilder {
	b.w.Suggestion = s
	return b
}

// WithFix adds fix edits from an EditBuilder.
func (b *WarningBuilder) WithFix(builder *fix.EditBuilder) *WarningBuilder {
	if builder != nil {
		b.w.FixEdits = append(b.w.FixEdits, builder.Edits...)
	}
	return b
}

// WithEdit adds a single fix edit.
func (b *WarningBuilder) WithEdit(edit fix.TextEdit) *WarningBuilder {
	b.w.FixEdits = append(b.w.FixEdits, edit)
	return b
}

// Build returns the constructed Warning.
func (b *WarningBuilder) Build() Warning {
	return b.w
}
