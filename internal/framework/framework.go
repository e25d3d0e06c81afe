// Package framework describes the closed set of component ecosystems Plume
// can parse and emit, and bundles everything a pipeline stage needs to know
// about one of them into a single Capability value.
package framework

import (
	"fmt"
	"sort"
	"strings"
)

// Framework identifies a target component ecosystem.
type Framework string

const (
	React Framework = "react"
	Vue   Framework = "vue"
	JS    Framework = "js"
)

// All returns every supported framework in stable order.
func All() []Framework {
	return []Framework{React, Vue, JS}
}

// Parse resolves a user supplied identifier. Aliases such as "jsx" or
// "vanilla" are accepted; anything else yields an *UnsupportedError.
func Parse(id string) (Framework, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "react", "jsx", "tsx", "a":
		return React, nil
	case "vue", "b":
		return Vue, nil
	case "js", "javascript", "vanilla", "ts", "c":
		return JS, nil
	default:
		return "", &UnsupportedError{Requested: id}
	}
}

// Valid reports whether f is one of the supported frameworks.
func (f Framework) Valid() bool {
	switch f {
	case React, Vue, JS:
		return true
	}
	return false
}

func (f Framework) String() string { return string(f) }

// Form is the native markup form a framework authors components in.
type Form int

const (
	// FormJSX is tag-like markup embedded in script expressions.
	FormJSX Form = iota
	// FormTemplate is a single-file component with a <template> block.
	FormTemplate
	// FormScript is plain script with imperative animate() calls.
	FormScript
)

func (f Form) String() string {
	switch f {
	case FormJSX:
		return "jsx"
	case FormTemplate:
		return "template"
	case FormScript:
		return "script"
	default:
		return "unknown"
	}
}

// Set is a set of frameworks, used to scope rewrite rules.
type Set uint8

// SetOf builds a Set from its members.
func SetOf(fws ...Framework) Set {
	var s Set
	for _, fw := range fws {
		s |= bit(fw)
	}
	return s
}

// Has reports whether fw is in the set. The empty set contains nothing;
// callers treat an empty scope as "all frameworks".
func (s Set) Has(fw Framework) bool {
	return s&bit(fw) != 0
}

// Empty reports whether the set has no members.
func (s Set) Empty() bool { return s == 0 }

func (s Set) String() string {
	var names []string
	for _, fw := range All() {
		if s.Has(fw) {
			names = append(names, string(fw))
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}

func bit(fw Framework) Set {
	switch fw {
	case React:
		return 1
	case Vue:
		return 2
	case JS:
		return 4
	}
	return 0
}

// ImportKind says how a reserved identifier must be imported.
type ImportKind int

const (
	ImportNamed ImportKind = iota
	ImportDefault
)

// ReservedIdentifier is an identifier that, when referenced by emitted code,
// requires an import line.
type ReservedIdentifier struct {
	Name   string
	Source string
	Kind   ImportKind
	// Member means the identifier is only reserved when used as
	// "Name." (e.g. React.useState).
	Member bool
}

// FeatureCost is one row of the bundle cost table, in kilobytes.
type FeatureCost struct {
	Feature string
	Cost    int
}

// Capability is everything the pipeline needs to know about one framework.
// Values are built once per pipeline and never mutated afterwards.
type Capability struct {
	Framework      Framework
	DisplayName    string
	NativeForm     Form
	ComponentStyle bool

	// Extensions are the parser extension flags enabled by default.
	Extensions []string

	// MotionModule is the package animated elements are imported from.
	MotionModule string
	// ElementBinding is the import that provides <motion.*> elements.
	ElementBinding string
	// CallBinding is the import that provides the animate() invocation.
	CallBinding string

	Reserved []ReservedIdentifier
	Costs    []FeatureCost

	// indexed by typescript (0 = js, 1 = ts)
	fileExt   [2]string
	parserArg [2]string
}

// FileExt returns the source file extension for the typing mode.
func (c *Capability) FileExt(typescript bool) string {
	if typescript {
		return c.fileExt[1]
	}
	return c.fileExt[0]
}

// FormatterParser returns the pretty-printer parser name for the typing mode.
func (c *Capability) FormatterParser(typescript bool) string {
	if typescript {
		return c.parserArg[1]
	}
	return c.parserArg[0]
}

// Cost looks up a feature in the cost table.
func (c *Capability) Cost(feature string) (int, bool) {
	for _, fc := range c.Costs {
		if fc.Feature == feature {
			return fc.Cost, true
		}
	}
	return 0, false
}

// HasExtension reports whether a parser extension is on by default.
func (c *Capability) HasExtension(name string) bool {
	for _, ext := range c.Extensions {
		if ext == name {
			return true
		}
	}
	return false
}

func (c *Capability) clone() *Capability {
	cp := *c
	cp.Extensions = append([]string(nil), c.Extensions...)
	cp.Reserved = append([]ReservedIdentifier(nil), c.Reserved...)
	cp.Costs = append([]FeatureCost(nil), c.Costs...)
	return &cp
}

// builtin holds the capability table. Costs are a heuristic ranking signal,
// not measurements.
var builtin = map[Framework]*Capability{
	React: {
		Framework:      React,
		DisplayName:    "React",
		NativeForm:     FormJSX,
		ComponentStyle: true,
		Extensions:     []string{"jsx"},
		MotionModule:   "motion/react",
		ElementBinding: "motion",
		CallBinding:    "animate",
		Reserved: []ReservedIdentifier{
			{Name: "React", Source: "react", Kind: ImportDefault, Member: true},
		},
		Costs: []FeatureCost{
			{"motion", 34},
			{"AnimatePresence", 6},
			{"LayoutGroup", 3},
			{"layout", 12},
			{"layoutId", 4},
			{"drag", 8},
			{"Reorder", 7},
			{"useScroll", 3},
			{"useSpring", 2},
			{"useAnimate", 5},
			{"useInView", 1},
		},
		fileExt:   [2]string{".jsx", ".tsx"},
		parserArg: [2]string{"babel", "babel-ts"},
	},
	Vue: {
		Framework:      Vue,
		DisplayName:    "Vue",
		NativeForm:     FormTemplate,
		ComponentStyle: true,
		Extensions:     []string{"sfc", "jsx"},
		MotionModule:   "motion-v",
		ElementBinding: "motion",
		CallBinding:    "animate",
		Reserved: []ReservedIdentifier{
			{Name: "ref", Source: "vue"},
			{Name: "computed", Source: "vue"},
			{Name: "reactive", Source: "vue"},
			{Name: "watch", Source: "vue"},
			{Name: "onMounted", Source: "vue"},
			{Name: "onUnmounted", Source: "vue"},
			{Name: "defineComponent", Source: "vue"},
		},
		Costs: []FeatureCost{
			{"motion", 30},
			{"AnimatePresence", 6},
			{"LayoutGroup", 3},
			{"layout", 12},
			{"layoutId", 4},
			{"drag", 8},
			{"useScroll", 3},
			{"useSpring", 2},
			{"useAnimate", 5},
			{"useInView", 1},
		},
		fileExt:   [2]string{".vue", ".vue"},
		parserArg: [2]string{"vue", "vue"},
	},
	JS: {
		Framework:      JS,
		DisplayName:    "JavaScript",
		NativeForm:     FormScript,
		ComponentStyle: false,
		Extensions:     []string{"jsx"},
		MotionModule:   "motion",
		ElementBinding: "motion",
		CallBinding:    "animate",
		Reserved: []ReservedIdentifier{
			{Name: "animate", Source: "motion"},
			{Name: "scroll", Source: "motion"},
			{Name: "inView", Source: "motion"},
			{Name: "stagger", Source: "motion"},
			{Name: "timeline", Source: "motion"},
		},
		Costs: []FeatureCost{
			{"animate", 4},
			{"scroll", 2},
			{"inView", 1},
			{"timeline", 3},
			{"stagger", 1},
			{"spring", 2},
		},
		fileExt:   [2]string{".js", ".ts"},
		parserArg: [2]string{"babel", "typescript"},
	},
}

// Capabilities is the per-pipeline capability table. Build it at startup,
// then share it read-only between requests.
type Capabilities struct {
	byFramework map[Framework]*Capability
}

// Defaults returns a fresh table with the built-in descriptors.
func Defaults() *Capabilities {
	c := &Capabilities{byFramework: make(map[Framework]*Capability, len(builtin))}
	for fw, capability := range builtin {
		c.byFramework[fw] = capability.clone()
	}
	return c
}

// WithMotionModule returns a copy of the table where fw imports animated
// elements from module (e.g. "framer-motion" instead of "motion/react").
func (c *Capabilities) WithMotionModule(fw Framework, module string) *Capabilities {
	out := &Capabilities{byFramework: make(map[Framework]*Capability, len(c.byFramework))}
	for k, v := range c.byFramework {
		out.byFramework[k] = v.clone()
	}
	if capability, ok := out.byFramework[fw]; ok && module != "" {
		// Reserved identifiers that pointed at the old module follow it.
		for i := range capability.Reserved {
			if capability.Reserved[i].Source == capability.MotionModule {
				capability.Reserved[i].Source = module
			}
		}
		capability.MotionModule = module
	}
	return out
}

// Get returns the descriptor for fw or an *UnsupportedError.
func (c *Capabilities) Get(fw Framework) (*Capability, error) {
	if capability, ok := c.byFramework[fw]; ok {
		return capability, nil
	}
	return nil, &UnsupportedError{Requested: string(fw)}
}

// MustGet is Get for frameworks already validated by the caller.
func (c *Capabilities) MustGet(fw Framework) *Capability {
	capability, err := c.Get(fw)
	if err != nil {
		panic(err)
	}
	return capability
}

// MotionModules lists every module the table treats as an animation library,
// sorted and deduplicated.
func (c *Capabilities) MotionModules() []string {
	seen := map[string]bool{}
	var mods []string
	for _, capability := range c.byFramework {
		if !seen[capability.MotionModule] {
			seen[capability.MotionModule] = true
			mods = append(mods, capability.MotionModule)
		}
	}
	sort.Strings(mods)
	return mods
}

// UnsupportedError is returned for any framework outside the closed set.
type UnsupportedError struct {
	Requested string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported framework %q (supported: react, vue, js)", e.Requested)
}

// Code is the stable error code used in response envelopes.
func (e *UnsupportedError) Code() string { return "unsupported_framework" }
