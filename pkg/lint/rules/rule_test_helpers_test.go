package rules

import (
	"context"
	"testing"

	"github.com/rumdl/rumdl/pkg/config"
	"github.com/rumdl/rumdl/pkg/fix"
	"github.com/rumdl/rumdl/pkg/lint"
	"github.com/rumdl/rumdl/pkg/lintctx"
)

// runRule applies rule to input once and returns the resulting warnings and
// the content after applying every proposed fix edit in one pass. It does
// not iterate to convergence like the Fix Coordinator (pkg/fixcoord) does;
// most rules in this package only ever need a single pass to settle.
func runRule(t *testing.T, rule lint.Rule, input string, opts map[string]any) ([]lint.Warning, string) {
	t.Helper()

	doc := lintctx.Build("test.md", []byte(input), config.FlavorCommonMark)
	cfg := config.NewConfig()
	var ruleCfg *config.RuleConfig
	if opts != nil {
		ruleCfg = &config.RuleConfig{Options: opts}
	}

	ruleCtx := lint.NewRuleContext(context.Background(), doc, "test.md", cfg, ruleCfg)
	warnings, err := rule.Apply(ruleCtx)
	if err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	var edits []fix.TextEdit
	for _, w := range warnings {
		edits = append(edits, w.FixEdits...)
	}
	if len(edits) == 0 {
		return warnings, input
	}

	prepared, err := fix.PrepareEdits(edits, len(input))
	if err != nil {
		t.Fatalf("PrepareEdits: %v", err)
	}
	return warnings, string(fix.ApplyEdits([]byte(input), prepared))
}
