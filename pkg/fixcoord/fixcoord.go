// Package fixcoord implements the iterative fix-application loop: run the
// configured rules against a document, greedily select a non-overlapping
// subset of the proposed edits, apply them, and repeat against the
// re-annotated result until no more fixes are proposed or an iteration
// bound is reached.
//
// fixcoord deliberately knows nothing about the lint package's Rule or
// Warning types - it is driven through the RunFunc callback so that lint
// can depend on fixcoord without fixcoord depending back on lint.
package fixcoord

import (
	"sort"

	"github.com/rumdl/rumdl/pkg/config"
	"github.com/rumdl/rumdl/pkg/fix"
	"github.com/rumdl/rumdl/pkg/lintctx"
)

// DefaultMaxIterations bounds the fix loop when the caller doesn't specify one.
const DefaultMaxIterations = 10

// Finding is one rule violation, carrying enough information for the
// coordinator to order and select edits without understanding what
// produced them. Payload lets the caller round-trip its own richer
// representation (e.g. lint.Warning) through Apply unchanged.
type Finding struct {
	// RuleID breaks ties when two findings propose edits starting at the
	// same offset; lower RuleID wins.
	RuleID string

	// Edits are the fix edits this finding proposes. Empty for
	// unfixable/unfixed findings - they still appear in the final
	// Result.Findings for reporting.
	Edits []fix.TextEdit

	// Payload is opaque to fixcoord; the caller stashes whatever it needs
	// to reconstruct its own result type from the final iteration's
	// findings.
	Payload any
}

// RunFunc lints the document captured by ctx and returns one Finding per
// violation found.
type RunFunc func(ctx *lintctx.Context) ([]Finding, error)

// Result is the outcome of an Apply run.
type Result struct {
	// Content is the document after all applied fix iterations.
	Content []byte

	// Findings are the violations reported on the final iteration, i.e.
	// against Content. Includes fixable findings whose edits were
	// rejected as conflicting with an earlier-sorted edit in that pass.
	Findings []Finding

	// Iterations is the number of fix passes that actually applied edits.
	Iterations int

	// Converged is true if the loop stopped because no pass proposed a
	// fixable edit (as opposed to hitting maxIterations).
	Converged bool

	// AppliedEdits accumulates every edit actually applied, in application
	// order across all iterations (oldest iteration first).
	AppliedEdits []fix.TextEdit

	// SkippedEdits are edits proposed on the final iteration that conflicted
	// with a higher-precedence edit (by the RuleID tiebreak) and so were
	// not applied.
	SkippedEdits []fix.TextEdit
}

// taggedEdit pairs a TextEdit with the RuleID of the finding that proposed
// it, for the RuleID tiebreak in selection ordering.
type taggedEdit struct {
	fix.TextEdit
	ruleID string
}

// Apply runs the fix loop: build a Context from content, call run, select
// and apply a non-overlapping subset of the proposed edits, and repeat
// against the updated content until a pass proposes no applicable edit or
// maxIterations is reached.
//
// maxIterations <= 0 uses DefaultMaxIterations.
func Apply(path string, content []byte, flavor config.Flavor, maxIterations int, run RunFunc) (Result, error) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	current := content
	var findings []Finding
	var applied, skipped []fix.TextEdit
	iterations := 0

	for iterations < maxIterations {
		ctx := lintctx.Build(path, current, flavor)

		var err error
		findings, err = run(ctx)
		if err != nil {
			return Result{}, err
		}

		plain, rejected := selectEdits(findings)
		skipped = rejected
		if len(plain) == 0 {
			return Result{
				Content: current, Findings: findings,
				Iterations: iterations, Converged: true,
				AppliedEdits: applied, SkippedEdits: skipped,
			}, nil
		}

		current = fix.ApplyEdits(current, plain)
		applied = append(applied, plain...)
		iterations++
	}

	// Iteration bound reached: report against the last applied state
	// without attempting another fix pass.
	ctx := lintctx.Build(path, current, flavor)
	var err error
	findings, err = run(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Content: current, Findings: findings,
		Iterations: iterations, Converged: false,
		AppliedEdits: applied, SkippedEdits: skipped,
	}, nil
}

// selectEdits flattens every finding's edits, orders them by start offset
// then RuleID (the fix coordinator's rule-attribution contract - a lower
// RuleID wins a tie at the same offset), and hands that ordering to
// fix.FilterConflicts for the actual greedy non-overlapping selection:
// the coordinator decides *which* edit should win a conflict, fix decides
// *how* overlap is detected and edits are kept.
func selectEdits(findings []Finding) (accepted, skipped []fix.TextEdit) {
	var all []taggedEdit
	for _, f := range findings {
		for _, e := range f.Edits {
			all = append(all, taggedEdit{TextEdit: e, ruleID: f.RuleID})
		}
	}
	if len(all) == 0 {
		return nil, nil
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].StartOffset != all[j].StartOffset {
			return all[i].StartOffset < all[j].StartOffset
		}
		if all[i].ruleID != all[j].ruleID {
			return all[i].ruleID < all[j].ruleID
		}
		return all[i].EndOffset < all[j].EndOffset
	})

	ordered := make([]fix.TextEdit, len(all))
	for i, e := range all {
		ordered[i] = e.TextEdit
	}
	return fix.FilterConflicts(ordered)
}
