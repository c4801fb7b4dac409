package lint

import "github.com/rumdl/rumdl/pkg/config"

// BaseRule provides a default implementation of the Rule interface.
// Embed this in rule implementations and override methods as needed.
//
// Fields are unexported to avoid stutter and name collisions with interface methods.
// Use the New* constructors or struct literal with field names.
type BaseRule struct {
	id     string        // Unique identifier (e.g., "MD018")
	name   string        // Human-readable name
	desc   string        // Detailed description
	tags   []string      // Categorization tags
	fixCap FixCapability // How (if at all) this rule's violations can be fixed
}

// NewBaseRule creates a BaseRule with the given properties.
func NewBaseRule(id, name, desc string, tags []string, fixCap FixCapability) BaseRule {
	return BaseRule{
		id:     id,
		name:   name,
		desc:   desc,
		tags:   tags,
		fixCap: fixCap,
	}
}

// ID returns the unique identifier for this rule.
func (r *BaseRule) ID() string {
	return r.id
}

// Name returns the human-readable name of the rule.
func (r *BaseRule) Name() string {
	return r.name
}

// Description returns a detailed description of what the rule checks.
func (r *BaseRule) Description() string {
	return r.desc
}

// DefaultEnabled returns whether the rule is enabled by default.
// Override this method to change the default.
func (r *BaseRule) DefaultEnabled() bool {
	return true
}

// DefaultSeverity returns the default severity for this rule.
// Override this method to change the default.
func (r *BaseRule) DefaultSeverity() config.Severity {
	return config.SeverityWarning
}

// Tags returns categorization tags for this rule.
func (r *BaseRule) Tags() []string {
	return r.tags
}

// FixCapability reports how this rule's violations can be fixed.
func (r *BaseRule) FixCapability() FixCapability {
	return r.fixCap
}

// Apply must be overridden by concrete rule implementations.
// The default implementation returns no warnings.
func (r *BaseRule) Apply(_ *RuleContext) ([]Warning, error) {
	return nil, nil
}
