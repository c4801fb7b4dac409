// Package lint provides the rule contract, registry, filter, and fix-edit
// collection for the linter: the pieces every rule and every front end
// (CLI, LSP) share.
package lint

import (
	"github.com/rumdl/rumdl/pkg/config"
	"github.com/rumdl/rumdl/pkg/fix"
)

// FixCapability describes how (if at all) a rule's violations can be
// auto-fixed.
type FixCapability int

const (
	// Unfixable rules only report; Apply never sets FixEdits.
	Unfixable FixCapability = iota
	// Full rules can be fixed entirely by the CLI's --fix / fix coordinator.
	Full
	// LspOnly rules propose a fix only through the LSP code-action surface
	// (e.g. because the fix needs editor-side confirmation); the CLI fix
	// coordinator never applies them even when --fix is set.
	LspOnly
)

// Warning represents a single lint issue found in a file.
type Warning struct {
	// RuleID is the identifier of the rule that produced this warning.
	RuleID string

	// RuleName is the human-readable name of the rule (e.g., "no-trailing-spaces").
	RuleName string

	// Message is the human-readable description of the issue.
	Message string

	// Severity indicates the importance of the warning.
	Severity config.Severity

	// FilePath is the path to the file containing the issue.
	FilePath string

	// StartLine is the 1-based line number where the issue starts.
	StartLine int

	// StartColumn is the 1-based column number where the issue starts.
	StartColumn int

	// EndLine is the 1-based line number where the issue ends.
	EndLine int

	// EndColumn is the 1-based column number where the issue ends.
	EndColumn int

	// Suggestion is an optional human-readable fix suggestion.
	Suggestion string

	// FixEdits contains the text edits to fix this issue (may be empty).
	FixEdits []fix.TextEdit
}

// HasFix returns true if this warning has associated fix edits.
func (w *Warning) HasFix() bool {
	return len(w.FixEdits) > 0
}

// Rule defines the interface every lint rule must implement. A Rule is
// stateless and safe for concurrent use across files; all per-file state
// lives in the RuleContext passed to Apply.
type Rule interface {
	// ID returns the unique identifier for this rule (e.g., "MD018").
	ID() string

	// Name returns the human-readable name of the rule.
	Name() string

	// Description returns a detailed description of what the rule checks.
	Description() string

	// DefaultEnabled returns whether the rule is enabled by default.
	DefaultEnabled() bool

	// DefaultSeverity returns the default severity for this rule.
	DefaultSeverity() config.Severity

	// Tags returns categorization tags for this rule (e.g., ["style", "heading"]).
	Tags() []string

	// FixCapability reports how this rule's violations can be fixed.
	FixCapability() FixCapability

	// Apply executes the rule against the given context and returns
	// warnings.
	//
	// Rules must:
	//   - Return a warning for each violation found.
	//   - Attach fix edits to each Warning (WarningBuilder.WithFix) when FixCapability() != Unfixable.
	//   - Respect context cancellation (ctx.Cancelled()).
	//   - Return error only for internal failures, never for violations.
	Apply(ctx *RuleContext) ([]Warning, error)
}

// CanFix reports whether r's violations can be fixed by the CLI fix
// coordinator (Full only; LspOnly and Unfixable rules never contribute
// edits to a --fix run).
func CanFix(r Rule) bool {
	return r.FixCapability() == Full
}
