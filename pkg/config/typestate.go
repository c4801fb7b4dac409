package config

import "fmt"

// RuleIDResolver answers "does this rule ID/name/alias exist, and what is
// its canonical ID". The config package depends only on this narrow
// interface (implemented by lint.Registry) so that config never imports
// the lint package, avoiding an import cycle.
type RuleIDResolver interface {
	ResolveID(idOrNameOrAlias string) (canonicalID string, ok bool)
}

// SourcedGlobalConfig is Config's fields individually wrapped in Sourced,
// so every setting remembers which layer (default/user/project/extends/
// CLI/inline) produced its final value.
type SourcedGlobalConfig struct {
	Flavor          Sourced[Flavor]
	SeverityDefault Sourced[string]
	Rules           map[string]Sourced[RuleConfig]
	Ignore          Sourced[[]string]
	Include         Sourced[[]string]
	PerFileIgnores  Sourced[map[string][]string]
	ExtendEnable    Sourced[[]string]
	ExtendDisable   Sourced[[]string]
	Backups         Sourced[BackupsConfig]
}

// DefaultSourcedGlobalConfig returns the hard-coded defaults, each sourced
// as SourceDefault.
func DefaultSourcedGlobalConfig() SourcedGlobalConfig {
	d := NewConfig()
	return SourcedGlobalConfig{
		Flavor:          NewSourced(d.Flavor, SourceDefault),
		SeverityDefault: NewSourced(d.SeverityDefault, SourceDefault),
		Rules:           map[string]Sourced[RuleConfig]{},
		Ignore:          NewSourced[[]string](nil, SourceDefault),
		Include:         NewSourced[[]string](nil, SourceDefault),
		PerFileIgnores:  NewSourced(map[string][]string{}, SourceDefault),
		ExtendEnable:    NewSourced[[]string](nil, SourceDefault),
		ExtendDisable:   NewSourced[[]string](nil, SourceDefault),
		Backups:         NewSourced(d.Backups, SourceDefault),
	}
}

// Loaded is a SourcedGlobalConfig that has been merged from all layers but
// not yet checked against a rule registry. It is a distinct Go type (not
// an alias) so that a caller cannot accidentally run the resolver or
// fix coordinator against an unvalidated config: the compiler enforces the
// Loaded -> Validated transition (see Validate).
type Loaded struct {
	cfg SourcedGlobalConfig
}

// NewLoaded wraps a merged SourcedGlobalConfig as Loaded.
func NewLoaded(cfg SourcedGlobalConfig) Loaded {
	return Loaded{cfg: cfg}
}

// ValidationWarning describes a non-fatal problem found while validating a
// Loaded config (e.g. an unknown rule ID or flavor).
type ValidationWarning struct {
	Key     string
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Key, w.Message)
}

// Validated is a SourcedGlobalConfig known to reference only real rule IDs
// and well-formed values. Only a Validated config may be handed to the
// rule filter and fix coordinator.
type Validated struct {
	cfg SourcedGlobalConfig
}

// Validate checks rule keys against resolver and the flavor value (severity
// values are not checked), producing warnings for anything questionable
// rather than failing outright (an unknown rule key is surfaced to the
// user, not fatal - config keeps flowing in S3-style scenarios where a
// typo'd rule key shouldn't block linting the rest of the file).
func (l Loaded) Validate(resolver RuleIDResolver) (Validated, []ValidationWarning) {
	var warnings []ValidationWarning

	switch l.cfg.Flavor.Value {
	case FlavorCommonMark, FlavorGFM, FlavorMkDocs, "":
	default:
		warnings = append(warnings, ValidationWarning{
			Key:     "flavor",
			Message: fmt.Sprintf("unknown flavor %q, falling back to commonmark", l.cfg.Flavor.Value),
		})
		l.cfg.Flavor.Value = FlavorCommonMark
	}

	normalized := make(map[string]Sourced[RuleConfig], len(l.cfg.Rules))
	keyFor := make(map[string]string, len(l.cfg.Rules))
	for key, rc := range l.cfg.Rules {
		canonical, ok := resolver.ResolveID(key)
		if !ok {
			warnings = append(warnings, ValidationWarning{
				Key:     key,
				Message: "unknown rule id, name, or alias",
			})
			continue
		}
		if _, dup := normalized[canonical]; dup {
			warnings = append(warnings, ValidationWarning{
				Key:     key,
				Message: fmt.Sprintf("duplicate configuration for rule %s (also configured as %q)", canonical, keyFor[canonical]),
			})
		}
		normalized[canonical] = rc
		keyFor[canonical] = key
	}
	l.cfg.Rules = normalized

	return Validated{cfg: l.cfg}, warnings
}

// Flatten produces a plain Config for consumers (the fix coordinator, rule
// filter, CLI output) that don't need provenance, just values.
func (v Validated) Flatten() *Config {
	rules := make(map[string]RuleConfig, len(v.cfg.Rules))
	for id, sc := range v.cfg.Rules {
		rules[id] = sc.Value
	}
	return &Config{
		Flavor:          v.cfg.Flavor.Value,
		SeverityDefault: v.cfg.SeverityDefault.Value,
		Rules:           rules,
		Ignore:          v.cfg.Ignore.Value,
		Include:         v.cfg.Include.Value,
		PerFileIgnores:  v.cfg.PerFileIgnores.Value,
		ExtendEnable:    v.cfg.ExtendEnable.Value,
		ExtendDisable:   v.cfg.ExtendDisable.Value,
		Backups:         v.cfg.Backups.Value,
	}
}

// Sourced exposes the underlying per-field provenance for "config --explain"
// style introspection.
func (v Validated) Sourced() SourcedGlobalConfig {
	return v.cfg
}
