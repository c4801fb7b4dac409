package rules

import "github.com/rumdl/rumdl/pkg/lint"

// RegisterAll registers all built-in rules with the given registry.
func RegisterAll(registry *lint.Registry) {
	// Whitespace rules
	registry.Register(NewTrailingSpacesRule())     // MD009
	registry.Register(NewHardTabsRule())           // MD010
	registry.Register(NewMultipleBlankLinesRule()) // MD012
	registry.Register(NewFinalNewlineRule())       // MD047

	// Heading rules
	registry.Register(NewHeadingIncrementRule())      // MD001
	registry.Register(NewMissingSpaceATXRule())       // MD018
	registry.Register(NewMultipleSpaceATXRule())      // MD019
	registry.Register(NewBlanksAroundHeadingsRule())  // MD022
	registry.Register(NewSingleH1Rule())              // MD025
	registry.Register(NewNoTrailingPunctuationRule()) // MD026

	// List rules
	registry.Register(NewBlanksAroundListsRule()) // MD032

	// Link rules
	registry.Register(NewNoBareURLsRule()) // MD034

	// Code block rules
	registry.Register(NewCodeBlockLanguageRule()) // MD040
}

// RegisterLegacyAliases registers legacy markdownlint alias names that
// differ from a rule's canonical Name(), for backwards compatibility with
// configuration files written against those names.
func RegisterLegacyAliases(registry *lint.Registry) {
	// MD025: single-h1 (canonical) also known as single-title.
	registry.RegisterAlias("single-title", "MD025")
}

// init registers all built-in rules with the default registry.
//
//nolint:gochecknoinits // Init is intentional for automatic rule registration
func init() {
	RegisterAll(lint.DefaultRegistry)
	RegisterLegacyAliases(lint.DefaultRegistry)
}
