package optimizer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
)

// DefaultLabel is the accessible name added to unlabeled triggers.
const DefaultLabel = "Interactive element"

var (
	animationPattern = regexp.MustCompile(`<(?:motion|m)\.[\w-]+|(^|[^\w$.])animate\s*\(|(^|[\s:])(?:animate|initial|whileHover|whileTap|whileInView|while-hover|while-tap)\s*=`)
	reducedPattern   = regexp.MustCompile(`useReducedMotion|prefers-reduced-motion|reducedMotion`)
	componentPattern = regexp.MustCompile(`(?m)(?:function\s+[A-Z][\w$]*\s*(?:<[^<>()]*>)?\s*\([^()]*\)\s*(?::\s*[^{=]+)?\{|(?:const|let)\s+[A-Z][\w$]*\s*(?::[^=]+)?=\s*(?:\([^()]*\)|[\w$]+)\s*(?::\s*[^=]+?)?=>\s*\{)[ \t]*\n?`)
	setupPattern     = regexp.MustCompile(`<script\b[^>]*\bsetup\b[^>]*>[ \t]*\n?`)
	templatePattern  = regexp.MustCompile(`<template\b[^>]*>`)
	callPattern      = regexp.MustCompile(`(^|[^\w$.])(animate)\s*\(`)
)

// reducedTransition is the transition used while reduced motion is on.
const reducedTransition = "{ duration: 0 }"

var (
	triggerAttrs = []string{"whileHover", "whileTap", "while-hover", "while-tap"}
	hoverAttrs   = []string{"whileHover", "while-hover"}
	labelAttrs   = []string{"aria-label", "aria-labelledby", "ariaLabel"}
	focusAttrs   = []string{"whileFocus", "while-focus", "onFocus", "@focus", "v-on:focus"}
)

// Accessibility flags animations that ignore reduced-motion preferences and
// interactive elements without accessible names or focus treatment.
type Accessibility struct {
	caps *framework.Capabilities
}

// NewAccessibility creates the accessibility analyzer.
func NewAccessibility(caps *framework.Capabilities) *Accessibility {
	if caps == nil {
		caps = framework.Defaults()
	}
	return &Accessibility{caps: caps}
}

// Kind implements Analyzer.
func (a *Accessibility) Kind() Kind { return KindAccessibility }

// Analyze implements Analyzer.
func (a *Accessibility) Analyze(code string, fw framework.Framework) []Suggestion {
	var out []Suggestion
	if loc := animationPattern.FindStringIndex(code); loc != nil && !reducedPattern.MatchString(code) {
		fix := "Call useReducedMotion() and skip motion when it returns true"
		if fw == framework.JS {
			fix = `Check window.matchMedia("(prefers-reduced-motion: reduce)") before animating`
		}
		out = append(out, Suggestion{
			Kind:     KindAccessibility,
			Severity: SeverityHigh,
			Message:  "Animations ignore the reduced-motion preference",
			Fix:      fix,
			Line:     lineAt(code, loc[0]),
		})
	}

	for _, t := range scanTags(code) {
		list := attrs(code, t)
		if _, ok := findAttr(list, triggerAttrs...); !ok {
			continue
		}
		if _, ok := findAttr(list, labelAttrs...); !ok {
			out = append(out, Suggestion{
				Kind:     KindAccessibility,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("<%s> reacts to hover or tap but has no accessible name", t.name),
				Fix:      fmt.Sprintf(`Add aria-label="%s" or a descriptive label`, DefaultLabel),
				Line:     lineAt(code, t.start),
			})
		}
		if _, ok := findAttr(list, hoverAttrs...); ok && !hasFocus(code, t, list) {
			out = append(out, Suggestion{
				Kind:     KindAccessibility,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("<%s> animates on hover but not on keyboard focus", t.name),
				Fix:      "Mirror the hover animation in whileFocus",
				Line:     lineAt(code, t.start),
			})
		}
	}
	return out
}

func hasFocus(code string, t tag, list []attr) bool {
	if _, ok := findAttr(list, focusAttrs...); ok {
		return true
	}
	return strings.Contains(code[t.start:t.end], "focus-visible")
}

// Optimize adds a reduced-motion guard, labels unlabeled triggers and
// mirrors hover animations into focus animations.
func (a *Accessibility) Optimize(code string, fw framework.Framework) string {
	if animationPattern.MatchString(code) && !reducedPattern.MatchString(code) {
		code = a.guard(code, fw)
	}

	var edits []edit
	for _, t := range scanTags(code) {
		list := attrs(code, t)
		if _, ok := findAttr(list, triggerAttrs...); !ok {
			continue
		}
		if _, ok := findAttr(list, labelAttrs...); !ok {
			edits = append(edits, edit{start: t.nameEnd, end: t.nameEnd, text: fmt.Sprintf(` aria-label="%s"`, DefaultLabel)})
		}
		if hover, ok := findAttr(list, hoverAttrs...); ok && !hasFocus(code, t, list) && hover.Value != "" {
			name := "whileFocus"
			if hover.base() == "while-hover" {
				name = "while-focus"
			}
			edits = append(edits, edit{start: hover.end, end: hover.end, text: " " + hover.prefix() + name + "=" + hover.Value})
		}
	}
	return applyEdits(code, edits)
}

// guard injects the reduced-motion check for fw and gates the animations
// on it. Code with no place to put the check is returned unchanged.
func (a *Accessibility) guard(code string, fw framework.Framework) string {
	capability, err := a.caps.Get(fw)
	if err != nil {
		return code
	}
	switch {
	case fw == framework.React:
		loc := componentPattern.FindStringIndex(code)
		if loc == nil {
			return code
		}
		brace := loc[0] + strings.LastIndexByte(code[loc[0]:loc[1]], '{')
		g := gate{from: loc[1], to: balanced(code, brace), cond: "shouldReduceMotion", callCond: "shouldReduceMotion"}
		edits := append(g.edits(code), edit{start: loc[1], end: loc[1], text: "  const shouldReduceMotion = useReducedMotion();\n"})
		code = applyEdits(code, edits)
		return ensureNamed(code, a.motionModule(code, capability), "useReducedMotion", true)

	case fw == framework.Vue && isSFCCode(code):
		// the setup binding is a ref: templates unwrap it, scripts read .value
		markup := gate{cond: "shouldReduceMotion", template: true}
		markup.from, markup.to = templateRange(code)
		edits := markup.edits(code)
		if loc := setupPattern.FindStringIndex(code); loc != nil {
			if end := strings.Index(code[loc[1]:], "</script>"); end >= 0 {
				script := gate{from: loc[1], to: loc[1] + end, callCond: "shouldReduceMotion.value"}
				edits = append(edits, script.edits(code)...)
			}
		}
		code = applyEdits(code, edits)

		if !setupPattern.MatchString(code) {
			block := "<script setup>\n" +
				`import { useReducedMotion } from "` + capability.MotionModule + `"` + "\n\n" +
				"const shouldReduceMotion = useReducedMotion()\n</script>\n\n"
			return block + code
		}
		code = ensureNamed(code, a.motionModule(code, capability), "useReducedMotion", false)
		at := setupPattern.FindStringIndex(code)[1]
		if end := lastImportEnd(findImports(code)); end > at {
			at = end
		}
		return code[:at] + "const shouldReduceMotion = useReducedMotion()\n" + code[at:]

	default:
		// plain scripts, including Vue output that is not a single-file
		// component, check the media query once at module level
		line := `const prefersReducedMotion = window.matchMedia("(prefers-reduced-motion: reduce)").matches;` + "\n"
		at := lastImportEnd(findImports(code))
		if at < 0 {
			at = 0
		}
		g := gate{from: at, to: len(code), cond: "prefersReducedMotion", callCond: "prefersReducedMotion"}
		edits := append(g.edits(code), edit{start: at, end: at, text: line})
		return applyEdits(code, edits)
	}
}

// isSFCCode reports whether code is a single-file component.
func isSFCCode(code string) bool {
	return strings.HasPrefix(strings.TrimSpace(code), "<")
}

// templateRange returns the content offsets of the template block.
func templateRange(code string) (int, int) {
	loc := templatePattern.FindStringIndex(code)
	end := strings.LastIndex(code, "</template>")
	if loc == nil || end < loc[1] {
		return 0, 0
	}
	return loc[1], end
}

// gate skips the animations between from and to while a reduced-motion
// condition holds. Motion elements get a zero-duration transition when cond
// is set; animate calls get zero-duration options when callCond is set.
type gate struct {
	from, to int
	cond     string
	callCond string
	template bool
}

func (g gate) edits(code string) []edit {
	inert := inertMask(code)
	var out []edit
	if g.cond != "" {
		for _, t := range scanTags(code) {
			if t.start < g.from || t.start >= g.to || inert[t.start] || !isMotionTag(t.name) {
				continue
			}
			if e, ok := g.transition(code, t); ok {
				out = append(out, e)
			}
		}
	}
	if g.callCond != "" {
		for _, m := range callPattern.FindAllStringSubmatchIndex(code, -1) {
			start := m[4]
			if start < g.from || start >= g.to || inert[start] || declared(code, start) {
				continue
			}
			if e, ok := g.call(code, m[1]-1); ok {
				out = append(out, e)
			}
		}
	}

	// an animate call nested in another call's options is covered by the
	// outer edit
	sort.SliceStable(out, func(i, j int) bool { return out[i].start < out[j].start })
	kept := out[:0]
	end := -1
	for _, e := range out {
		if e.start < end {
			continue
		}
		kept = append(kept, e)
		if e.end > end {
			end = e.end
		}
	}
	return kept
}

func isMotionTag(name string) bool {
	return strings.HasPrefix(name, "motion.") || strings.HasPrefix(name, "m.")
}

// declared reports whether the identifier at pos is a function name being
// declared.
func declared(code string, pos int) bool {
	return strings.HasSuffix(strings.TrimRight(code[:pos], " \t"), "function")
}

// transition wraps the element's transition in the condition, or adds one.
func (g gate) transition(code string, t tag) (edit, bool) {
	if a, ok := findAttr(attrs(code, t), "transition"); ok {
		if len(a.Value) < 2 {
			return edit{}, false
		}
		inner := strings.TrimSpace(a.Value[1 : len(a.Value)-1])
		switch {
		case g.template && a.prefix() != "" && a.Value[0] == '"':
			return edit{start: a.start, end: a.end, text: a.Name + `="` + g.cond + " ? " + reducedTransition + " : " + inner + `"`}, true
		case !g.template && a.Value[0] == '{':
			return edit{start: a.start, end: a.end, text: a.Name + "={" + g.cond + " ? " + reducedTransition + " : " + inner + "}"}, true
		}
		return edit{}, false
	}

	at := t.end - 1
	if code[at-1] == '/' {
		at--
	}
	for at > t.nameEnd && isSpace(code[at-1]) {
		at--
	}
	if g.template {
		return edit{start: at, end: at, text: ` :transition="` + g.cond + " ? " + reducedTransition + ` : undefined"`}, true
	}
	return edit{start: at, end: at, text: " transition={" + g.cond + " ? " + reducedTransition + " : undefined}"}, true
}

// call wraps the options argument of the animate call whose parenthesis
// opens at open, or adds one. Sequences take options second, everything
// else third.
func (g gate) call(code string, open int) (edit, bool) {
	end := balanced(code, open)
	if end > len(code) || code[end-1] != ')' {
		return edit{}, false
	}
	args := splitArgs(code, open+1, end-1)
	slot := 2
	if len(args) > 0 && strings.HasPrefix(code[args[0][0]:args[0][1]], "[") {
		slot = 1
	}
	switch {
	case len(args) > slot:
		a := args[slot]
		return edit{start: a[0], end: a[1], text: g.callCond + " ? " + reducedTransition + " : " + code[a[0]:a[1]]}, true
	case len(args) == slot:
		at := args[slot-1][1]
		return edit{start: at, end: at, text: ", " + g.callCond + " ? " + reducedTransition + " : undefined"}, true
	}
	return edit{}, false
}

// splitArgs returns the trimmed ranges of the top-level comma separated
// arguments in code[from:to]. A trailing comma adds no argument.
func splitArgs(code string, from, to int) [][2]int {
	var out [][2]int
	start := from
	add := func(end int) {
		s, e := start, end
		for s < e && isSpace(code[s]) {
			s++
		}
		for e > s && isSpace(code[e-1]) {
			e--
		}
		out = append(out, [2]int{s, e})
	}

	depth := 0
	var quote byte
	for k := from; k < to; k++ {
		c := code[k]
		switch {
		case quote != 0:
			if c == '\\' {
				k++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		case c == ',' && depth == 0:
			add(k)
			start = k + 1
		}
	}
	add(to)
	if n := len(out); out[n-1][0] == out[n-1][1] {
		out = out[:n-1]
	}
	return out
}

// motionModule returns the animation module the code already imports from,
// falling back to the capability's module.
func (a *Accessibility) motionModule(code string, capability *framework.Capability) string {
	tracked := trackedModules(a.caps)
	for _, st := range findImports(code) {
		if tracked[st.Module] && !st.TypeOnly && st.Namespace == "" {
			return st.Module
		}
	}
	return capability.MotionModule
}

// ensureNamed makes sure name is imported from module, extending an
// existing named import before adding a new statement.
func ensureNamed(code, module, name string, semi bool) string {
	imports := findImports(code)
	for _, st := range imports {
		if st.Module != module || st.TypeOnly || st.Namespace != "" {
			continue
		}
		for _, sp := range st.Named {
			if sp.Local == name {
				return code
			}
		}
		st.Named = append(st.Named, specifier{Imported: name, Local: name})
		return code[:st.start] + st.String() + code[st.end:]
	}

	st := importStmt{quote: `"`, Module: module, semi: semi, Named: []specifier{{Imported: name, Local: name}}}
	at := lastImportEnd(imports)
	if at < 0 {
		if loc := setupPattern.FindStringIndex(code); loc != nil {
			at = loc[1]
		} else {
			at = 0
		}
	} else if len(imports) > 0 {
		st.indent = imports[len(imports)-1].indent
	}
	return code[:at] + st.String() + code[at:]
}
