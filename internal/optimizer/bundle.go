package optimizer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
)

// HeavyFeatures are animation features that pull large chunks of the
// runtime into the bundle.
var HeavyFeatures = []string{
	"AnimatePresence", "LayoutGroup", "layoutId", "Reorder", "useScroll",
	"drag", "layout", "timeline", "scroll",
}

// legacyModules are animation packages tracked even though no framework
// imports from them by default.
var legacyModules = []string{"framer-motion", "motion", "motion/react", "motion/mini", "motion-v"}

// knownExports are names the animation modules export under the same name a
// default import would usually bind.
var knownExports = map[string]bool{
	"motion": true, "m": true, "animate": true, "scroll": true, "inView": true,
	"stagger": true, "timeline": true, "AnimatePresence": true,
}

func trackedModules(caps *framework.Capabilities) map[string]bool {
	out := map[string]bool{}
	for _, m := range legacyModules {
		out[m] = true
	}
	for _, m := range caps.MotionModules() {
		out[m] = true
	}
	return out
}

// Cost is a heuristic bundle weight.
type Cost struct {
	Total     int            `json:"total"`
	Breakdown map[string]int `json:"breakdown"`
}

// BundleSize flags import shapes and features that inflate the bundle.
type BundleSize struct {
	caps *framework.Capabilities
}

// NewBundleSize creates the bundle size analyzer.
func NewBundleSize(caps *framework.Capabilities) *BundleSize {
	if caps == nil {
		caps = framework.Defaults()
	}
	return &BundleSize{caps: caps}
}

// Kind implements Analyzer.
func (b *BundleSize) Kind() Kind { return KindBundleSize }

// Analyze implements Analyzer.
func (b *BundleSize) Analyze(code string, _ framework.Framework) []Suggestion {
	tracked := trackedModules(b.caps)
	imports := findImports(code)
	body := withoutImports(code, imports)

	var out []Suggestion
	for _, st := range imports {
		if !tracked[st.Module] || st.TypeOnly {
			continue
		}
		if st.Default != "" || st.Namespace != "" {
			local := st.Default
			if local == "" {
				local = "* as " + st.Namespace
			}
			out = append(out, Suggestion{
				Kind:     KindBundleSize,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("%s imports all of %s", local, st.Module),
				Fix:      "Import only the names you use: import { ... } from \"" + st.Module + "\"",
				Line:     lineAt(code, st.start),
			})
		}
	}
	for _, st := range imports {
		if !tracked[st.Module] || st.TypeOnly {
			continue
		}
		for _, sp := range st.Named {
			if sp.Type || uses(body, sp.Local) {
				continue
			}
			out = append(out, Suggestion{
				Kind:     KindBundleSize,
				Severity: SeverityLow,
				Message:  fmt.Sprintf("%s is imported from %s but never used", sp.Local, st.Module),
				Fix:      "Remove the unused import",
				Line:     lineAt(code, st.start),
			})
		}
	}
	for _, feature := range HeavyFeatures {
		at := firstUse(body, feature)
		if at < 0 {
			continue
		}
		out = append(out, Suggestion{
			Kind:     KindBundleSize,
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("%s adds a large feature to the bundle", feature),
			Fix:      "Load it lazily or drop it where a simpler animation will do",
			Line:     lineAt(code, at),
		})
	}
	return out
}

// Optimize turns default imports into named ones, unwraps AnimatePresence
// around children that never exit, removes unused specifiers and merges
// what is left into one sorted import per module.
func (b *BundleSize) Optimize(code string, _ framework.Framework) string {
	tracked := trackedModules(b.caps)
	code = namedDefaults(code, tracked)
	code = unwrapPresence(code)
	code = stripUnused(code, tracked)
	return mergeImports(code, tracked)
}

func namedDefaults(code string, tracked map[string]bool) string {
	var edits []edit
	for _, st := range findImports(code) {
		if !tracked[st.Module] || st.TypeOnly || st.Default == "" || st.Namespace != "" {
			continue
		}
		imported := st.Default
		if !knownExports[imported] {
			imported = "motion"
			if st.Module == "motion" || st.Module == "motion/mini" {
				imported = "animate"
			}
		}
		sp := specifier{Imported: imported, Local: st.Default}
		st.Default = ""
		st.Named = append([]specifier{sp}, st.Named...)
		edits = append(edits, edit{start: st.start, end: st.end, text: st.String()})
	}
	return applyEdits(code, edits)
}

const (
	presenceOpen  = "<AnimatePresence>"
	presenceClose = "</AnimatePresence>"
)

// unwrapPresence replaces <AnimatePresence>{cond && <X/>}</AnimatePresence>
// with a fragment when nothing inside declares an exit animation.
func unwrapPresence(code string) string {
	var edits []edit
	from := 0
	for {
		open := strings.Index(code[from:], presenceOpen)
		if open < 0 {
			break
		}
		open += from
		inner := open + len(presenceOpen)
		close := strings.Index(code[inner:], presenceClose)
		if close < 0 {
			break
		}
		close += inner
		from = close + len(presenceClose)

		body := code[inner:close]
		trimmed := strings.TrimSpace(body)
		if !strings.HasPrefix(trimmed, "{") || !strings.HasSuffix(trimmed, "}") ||
			!strings.Contains(trimmed, "&&") || strings.Contains(body, "exit") ||
			strings.Contains(body, "<AnimatePresence") {
			continue
		}
		start := inner + strings.Index(body, "{")
		if balanced(code, start) != inner+strings.LastIndex(body, "}")+1 {
			continue
		}
		edits = append(edits, edit{start: open, end: inner, text: "<>"}, edit{start: close, end: from, text: "</>"})
	}
	return applyEdits(code, edits)
}

func stripUnused(code string, tracked map[string]bool) string {
	imports := findImports(code)
	body := withoutImports(code, imports)
	var edits []edit
	for _, st := range imports {
		if !tracked[st.Module] || st.TypeOnly || len(st.Named) == 0 {
			continue
		}
		kept := st.Named[:0:0]
		for _, sp := range st.Named {
			if sp.Type || uses(body, sp.Local) {
				kept = append(kept, sp)
			}
		}
		if len(kept) == len(st.Named) {
			continue
		}
		st.Named = kept
		text := st.String()
		if len(kept) == 0 && st.Default == "" && st.Namespace == "" {
			text = ""
		}
		edits = append(edits, edit{start: st.start, end: st.end, text: text})
	}
	return applyEdits(code, edits)
}

// mergeImports folds named-only imports from the same tracked module into
// the first of them, with specifiers sorted and deduplicated.
func mergeImports(code string, tracked map[string]bool) string {
	groups := map[string][]importStmt{}
	var order []string
	for _, st := range findImports(code) {
		if !tracked[st.Module] || st.TypeOnly || st.Default != "" || st.Namespace != "" || len(st.Named) == 0 {
			continue
		}
		if _, ok := groups[st.Module]; !ok {
			order = append(order, st.Module)
		}
		groups[st.Module] = append(groups[st.Module], st)
	}

	var edits []edit
	for _, module := range order {
		group := groups[module]
		seen := map[string]bool{}
		var merged []specifier
		for _, st := range group {
			for _, sp := range st.Named {
				if key := sp.String(); !seen[key] {
					seen[key] = true
					merged = append(merged, sp)
				}
			}
		}
		sort.SliceStable(merged, func(i, j int) bool { return merged[i].Local < merged[j].Local })

		first := group[0]
		first.Named = merged
		if text := first.String(); text != first.source(code) {
			edits = append(edits, edit{start: first.start, end: first.end, text: text})
		}
		for _, st := range group[1:] {
			edits = append(edits, edit{start: st.start, end: st.end})
		}
	}
	return applyEdits(code, edits)
}

func (st importStmt) source(code string) string {
	return code[st.start:st.end]
}

// EstimateCost sums the cost table entries for every feature the code uses.
// Features outside fw's table are ignored.
func (b *BundleSize) EstimateCost(code string, fw framework.Framework) (Cost, error) {
	capability, err := b.caps.Get(fw)
	if err != nil {
		return Cost{}, err
	}
	body := withoutImports(code, findImports(code))
	cost := Cost{Breakdown: map[string]int{}}
	for _, fc := range capability.Costs {
		if uses(body, fc.Feature) {
			cost.Breakdown[fc.Feature] = fc.Cost
			cost.Total += fc.Cost
		}
	}
	return cost, nil
}
