// Package genctx holds the per-request state threaded through the pipeline
// stages. A Context is created for one Generate call and discarded with it.
package genctx

import (
	"github.com/simonhull/firebird-suite/plume/internal/framework"
)

// Optimization selects the enhancement passes and analyzers to run.
type Optimization struct {
	Performance   bool `json:"performance" yaml:"performance" mapstructure:"performance"`
	Accessibility bool `json:"accessibility" yaml:"accessibility" mapstructure:"accessibility"`
	BundleSize    bool `json:"bundleSize" yaml:"bundle_size" mapstructure:"bundle_size"`
}

// Any reports whether at least one flag is set.
func (o Optimization) Any() bool {
	return o.Performance || o.Accessibility || o.BundleSize
}

// Context is the mutable state of one generation request.
type Context struct {
	Framework     framework.Framework
	TypeScript    bool
	ComponentName string
	// Imports are names the rewrite stages need imported from the motion
	// module. Dependencies are the modules the output depends on.
	Imports      OrderedSet
	Dependencies OrderedSet
	Optimization Optimization
}

// New creates a context for one request.
func New(fw framework.Framework, typescript bool) *Context {
	return &Context{Framework: fw, TypeScript: typescript}
}

// Clone copies the context, sets included.
func (c *Context) Clone() *Context {
	cp := *c
	cp.Imports = c.Imports.Clone()
	cp.Dependencies = c.Dependencies.Clone()
	return &cp
}

// OrderedSet is a string set that remembers insertion order, so anything
// derived from it is deterministic. The zero value is ready to use.
type OrderedSet struct {
	items []string
	index map[string]struct{}
}

// Add inserts v and reports whether it was new.
func (s *OrderedSet) Add(v string) bool {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Has reports membership.
func (s *OrderedSet) Has(v string) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of members.
func (s *OrderedSet) Len() int { return len(s.items) }

// Values returns the members in insertion order.
func (s *OrderedSet) Values() []string {
	return append([]string(nil), s.items...)
}

// Clone copies the set.
func (s OrderedSet) Clone() OrderedSet {
	var cp OrderedSet
	for _, v := range s.items {
		cp.Add(v)
	}
	return cp
}
