package lint

import (
	"context"
	"fmt"
	"sort"

	"github.com/rumdl/rumdl/pkg/config"
	"github.com/rumdl/rumdl/pkg/fix"
	"github.com/rumdl/rumdl/pkg/fixcoord"
	"github.com/rumdl/rumdl/pkg/inlineconfig"
	"github.com/rumdl/rumdl/pkg/lintctx"
)

// FileResult contains the results of linting a single file.
type FileResult struct {
	// Content is the document text after the fix loop settled: unchanged
	// from the input when fixing was not requested or nothing was fixed.
	Content []byte

	// Diagnostics contains all warnings surviving inline-config suppression,
	// from the final fix iteration, sorted by line then column.
	Diagnostics []Warning

	// Edits contains the edits actually applied across all fix iterations,
	// in application order (oldest iteration first).
	Edits []fix.TextEdit

	// SkippedEdits contains edits proposed on the final iteration that
	// conflicted with a higher-precedence edit and were not applied.
	SkippedEdits []fix.TextEdit

	// EditConflicts is true if any edits were skipped due to conflicts.
	EditConflicts bool

	// RuleErrors contains any errors from rule execution (including
	// recovered panics), keyed by rule ID. A rule error does not abort
	// the run; other rules still execute.
	RuleErrors map[string]error

	// Iterations is the number of fix passes that applied at least one edit.
	Iterations int

	// Converged is true if the fix loop stopped because no further edits
	// were proposed, false if it stopped at the iteration bound.
	Converged bool
}

// HasIssues returns true if any diagnostics were found.
func (fr *FileResult) HasIssues() bool {
	return len(fr.Diagnostics) > 0
}

// HasFixes returns true if any fixes were applied.
func (fr *FileResult) HasFixes() bool {
	return len(fr.Edits) > 0
}

// IssueCount returns the total number of diagnostics.
func (fr *FileResult) IssueCount() int {
	return len(fr.Diagnostics)
}

// FixableCount returns the number of diagnostics with fixes.
func (fr *FileResult) FixableCount() int {
	count := 0
	for _, d := range fr.Diagnostics {
		if d.HasFix() {
			count++
		}
	}
	return count
}

// Engine coordinates Lint Context construction, rule execution, inline-
// config suppression, and (when requested) the fix-convergence loop for a
// single file.
type Engine struct {
	// Registry holds all available rules.
	Registry *Registry

	// MaxFixIterations bounds the fix loop; 0 uses fixcoord.DefaultMaxIterations.
	MaxFixIterations int
}

// NewEngine creates a new Engine with the given registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{Registry: registry}
}

// LintFile builds the Lint Context, runs the active rules (per the Rule
// Filter), suppresses inline-disabled warnings, and - if cfg.Fix is set -
// iterates the Fix Coordinator to convergence or the iteration bound.
func (e *Engine) LintFile(ctx context.Context, path string, content []byte, cfg *config.Config) (*FileResult, error) {
	filter := NewFilter(cfg, e.Registry)
	ruleErrors := make(map[string]error)

	run := func(doc *lintctx.Context) ([]fixcoord.Finding, error) {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("linting cancelled: %w", ctx.Err())
		default:
		}

		directives := inlineconfig.Parse(doc)
		active := filter.ActiveRules(path)

		var findings []fixcoord.Finding
		for _, rr := range active {
			warnings, err := applyRuleSafely(rr.Rule, ctx, doc, path, cfg, rr.Config, e.Registry)
			if err != nil {
				ruleErrors[rr.Rule.ID()] = err
				continue
			}

			for i := range warnings {
				w := warnings[i]
				if directives.Suppressed(w.RuleID, w.StartLine) {
					continue
				}
				w.Severity = rr.Severity
				if w.FilePath == "" {
					w.FilePath = path
				}
				if w.RuleName == "" {
					w.RuleName = rr.Rule.Name()
				}

				var edits []fix.TextEdit
				if rr.AutoFix {
					edits = w.FixEdits
				}
				findings = append(findings, fixcoord.Finding{RuleID: w.RuleID, Edits: edits, Payload: w})
			}
		}
		return findings, nil
	}

	maxIters := e.MaxFixIterations
	if maxIters <= 0 {
		maxIters = fixcoord.DefaultMaxIterations
	}

	outcome, err := fixcoord.Apply(path, content, cfg.Flavor, maxIters, run)
	if err != nil {
		return nil, fmt.Errorf("lint %s: %w", path, err)
	}

	result := &FileResult{
		Content:       outcome.Content,
		RuleErrors:    ruleErrors,
		Iterations:    outcome.Iterations,
		Converged:     outcome.Converged,
		Edits:         outcome.AppliedEdits,
		SkippedEdits:  outcome.SkippedEdits,
		EditConflicts: len(outcome.SkippedEdits) > 0,
	}
	for _, f := range outcome.Findings {
		if w, ok := f.Payload.(Warning); ok {
			result.Diagnostics = append(result.Diagnostics, w)
		}
	}
	sort.SliceStable(result.Diagnostics, func(i, j int) bool {
		a, b := result.Diagnostics[i], result.Diagnostics[j]
		if a.StartLine != b.StartLine {
			return a.StartLine < b.StartLine
		}
		return a.StartColumn < b.StartColumn
	})

	return result, nil
}

// applyRuleSafely runs a single rule, recovering from panics and turning
// them into errors so one misbehaving rule cannot abort the whole file.
func applyRuleSafely(
	rule Rule,
	ctx context.Context,
	doc *lintctx.Context,
	path string,
	cfg *config.Config,
	ruleCfg *config.RuleConfig,
	registry *Registry,
) (warnings []Warning, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rule %s panicked: %v", rule.ID(), r)
		}
	}()

	ruleCtx := NewRuleContext(ctx, doc, path, cfg, ruleCfg)
	ruleCtx.Registry = registry
	return rule.Apply(ruleCtx)
}
