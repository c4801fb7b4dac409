package lint

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/rumdl/rumdl/pkg/config"
)

// ResolvedRule pairs a Rule with its resolved per-rule configuration. It
// does not carry an Enabled flag: ActiveRules only ever returns rules that
// survived the filter.
type ResolvedRule struct {
	Rule     Rule
	Severity config.Severity
	AutoFix  bool
	Config   *config.RuleConfig
}

// Filter derives, for a given file path, the set of rules that should run
// against it from a validated configuration. A Filter is built once per
// lint invocation and reused across files; the per-file ignore globs are
// compiled once, in NewFilter.
type Filter struct {
	cfg      *config.Config
	registry *Registry

	perFileGlobs []compiledIgnore
}

type compiledIgnore struct {
	pattern glob.Glob
	ruleIDs map[string]bool // empty map means "all rules"
}

// NewFilter builds a Filter from a flattened, validated configuration and
// the rule registry used to canonicalize rule IDs. Malformed per-file-
// ignore glob patterns are skipped; callers that want to surface them as
// warnings should validate patterns separately before calling this.
func NewFilter(cfg *config.Config, registry *Registry) *Filter {
	f := &Filter{cfg: cfg, registry: registry}

	for pattern, ids := range cfg.PerFileIgnores {
		g, err := glob.Compile(pattern)
		if err != nil {
			continue
		}
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			canonical, ok := registry.ResolveID(id)
			if !ok {
				canonical = strings.ToUpper(id)
			}
			set[canonical] = true
		}
		f.perFileGlobs = append(f.perFileGlobs, compiledIgnore{pattern: g, ruleIDs: set})
	}

	return f
}

// ActiveRules returns the rules enabled for path, each paired with its
// resolved severity, auto-fix eligibility, and rule-specific options.
//
// Precedence, per rule:
//  1. Start from the registry's full rule list; a rule starts admitted
//     when its DefaultEnabled() is true.
//  2. EnableRules (--enable), if non-empty, restricts to exactly those ids.
//  3. ExtendEnable re-admits ids removed by steps 1 and 2.
//  4. A rule's own Rules[id].Enabled, when set, admits or removes it.
//  5. DisableRules and ExtendDisable remove ids.
//  6. PerFileIgnores glob-matched against path removes additional ids.
func (f *Filter) ActiveRules(path string) []ResolvedRule {
	cfg := f.cfg
	var out []ResolvedRule

	enableSet, restrictToEnable := f.enableSet()
	disableSet := f.disableSet()
	pathDisabled := f.perFileDisabled(path)

	for _, rule := range f.registry.Rules() {
		id := rule.ID()

		enabled := rule.DefaultEnabled()
		if restrictToEnable {
			enabled = enableSet[id]
		}
		if f.extendEnableSet()[id] {
			enabled = true
		}
		ruleCfg, hasCfg := cfg.Rules[id]
		if hasCfg && ruleCfg.Enabled != nil {
			enabled = *ruleCfg.Enabled
		}
		if disableSet[id] {
			enabled = false
		}
		if pathDisabled[id] {
			enabled = false
		}

		if !enabled {
			continue
		}

		rr := ResolvedRule{
			Rule:     rule,
			Severity: rule.DefaultSeverity(),
			AutoFix:  CanFix(rule) && cfg.Fix,
		}
		if cfg.SeverityDefault != "" {
			rr.Severity = config.Severity(cfg.SeverityDefault)
		}
		if hasCfg {
			rr.Config = &ruleCfg
			if ruleCfg.Severity != nil {
				rr.Severity = config.Severity(*ruleCfg.Severity)
			}
			if ruleCfg.AutoFix != nil {
				rr.AutoFix = *ruleCfg.AutoFix && CanFix(rule) && cfg.Fix
			}
		}

		if len(cfg.FixRules) > 0 {
			rr.AutoFix = cfg.Fix && CanFix(rule) && contains(cfg.FixRules, id)
		}

		out = append(out, rr)
	}

	return out
}

func (f *Filter) enableSet() (set map[string]bool, restrict bool) {
	ids := f.cfg.EnableRules
	if len(ids) == 0 {
		return nil, false
	}
	set = make(map[string]bool, len(ids))
	for _, id := range ids {
		set[f.canonical(id)] = true
	}
	return set, true
}

func (f *Filter) extendEnableSet() map[string]bool {
	set := make(map[string]bool, len(f.cfg.ExtendEnable))
	for _, id := range f.cfg.ExtendEnable {
		set[f.canonical(id)] = true
	}
	return set
}

func (f *Filter) disableSet() map[string]bool {
	set := make(map[string]bool, len(f.cfg.DisableRules)+len(f.cfg.ExtendDisable))
	for _, id := range f.cfg.DisableRules {
		set[f.canonical(id)] = true
	}
	for _, id := range f.cfg.ExtendDisable {
		set[f.canonical(id)] = true
	}
	return set
}

func (f *Filter) perFileDisabled(path string) map[string]bool {
	disabled := make(map[string]bool)
	for _, ci := range f.perFileGlobs {
		if !ci.pattern.Match(path) {
			continue
		}
		if len(ci.ruleIDs) == 0 {
			// Empty id list means "all rules" for this path.
			for _, rule := range f.registry.Rules() {
				disabled[rule.ID()] = true
			}
			continue
		}
		for id := range ci.ruleIDs {
			disabled[id] = true
		}
	}
	return disabled
}

func (f *Filter) canonical(id string) string {
	if canonical, ok := f.registry.ResolveID(id); ok {
		return canonical
	}
	return strings.ToUpper(id)
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
