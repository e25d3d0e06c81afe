package transform

import (
	"fmt"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
)

// Registry is an ordered list of rules. Registration order is application
// order. Freeze it before sharing it between requests.
type Registry struct {
	rules  []Rule
	frozen bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make([]Rule, 0)}
}

// DefaultRegistry creates a registry holding the built-in rules.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, rule := range DefaultRules() {
		// built-ins are valid and uniquely named
		_ = r.Register(rule)
	}
	return r
}

// Register appends a rule.
func (r *Registry) Register(rule Rule) error {
	if r.frozen {
		return fmt.Errorf("cannot register rule %s: registry is frozen", rule.Name)
	}
	if err := rule.validate(); err != nil {
		return err
	}
	for _, existing := range r.rules {
		if existing.Name == rule.Name {
			return fmt.Errorf("rule %s is already registered", rule.Name)
		}
	}
	r.rules = append(r.rules, rule)
	return nil
}

// Freeze makes the registry read-only and returns it.
func (r *Registry) Freeze() *Registry {
	r.frozen = true
	return r
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool { return r.frozen }

// Rules returns the registered rules in order.
func (r *Registry) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// For returns the rules that run for fw, in application order.
func (r *Registry) For(fw framework.Framework) []Rule {
	var out []Rule
	for _, rule := range r.rules {
		if rule.AppliesTo(fw) {
			out = append(out, rule)
		}
	}
	return out
}
