// Package rules collects the built-in lint rule implementations and
// registers them with lint.DefaultRegistry on import.
//
// Each rule is a small, independently testable Rule (see pkg/lint.Rule):
// it reads only ctx.Doc (the shared Lint Context) and ctx.Option*, and
// attaches fix edits to each Warning it returns (WarningBuilder.WithFix). No
// rule holds state across files or depends on another rule's ordering.
package rules
