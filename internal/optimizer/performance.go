package optimizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
)

// UsageThreshold is the number of animation usages above which a component
// is flagged as animation-heavy.
const UsageThreshold = 10

var (
	// layoutPattern matches a layout property assigned a literal:
	// width: "100px", left: 20. layoutMatches keeps the object keys.
	layoutPattern = regexp.MustCompile(`(^|[^\w$.-])(width|height|top|left|right|bottom)(\s*:\s*)("[^"\n]*"|'[^'\n]*'|-?\d+(?:\.\d+)?)`)
	// transformPattern matches a transform key in an object.
	transformPattern = regexp.MustCompile(`(^|[^\w$.-])(x|y|z|scale|scaleX|scaleY|rotate|rotateX|rotateY|rotateZ|skew|skewX|skewY|translateX|translateY)\s*:\s*[^\s:]`)
	willChange       = regexp.MustCompile(`willChange|will-change`)
	usagePattern     = regexp.MustCompile(`<(?:motion|m)\.[\w-]+|(^|[^\w$.])animate\s*\(`)
	durationPattern  = regexp.MustCompile(`(^|[^\w$])(duration\s*:\s*)(\d+(?:\.\d+)?)`)
)

var layoutTarget = map[string]string{
	"width":  "scaleX",
	"height": "scaleY",
	"left":   "x",
	"right":  "x",
	"top":    "y",
	"bottom": "y",
}

// Performance flags animations that force layout and oversize workloads.
type Performance struct{}

// NewPerformance creates the performance analyzer.
func NewPerformance() *Performance { return &Performance{} }

// Kind implements Analyzer.
func (p *Performance) Kind() Kind { return KindPerformance }

// Analyze implements Analyzer.
func (p *Performance) Analyze(code string, _ framework.Framework) []Suggestion {
	var out []Suggestion
	inert := inertMask(code)
	for _, m := range layoutMatches(code, inert) {
		prop := code[m[4]:m[5]]
		out = append(out, Suggestion{
			Kind:     KindPerformance,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("Animating %s triggers layout on every frame", prop),
			Fix:      fmt.Sprintf("Animate %s instead of %s", layoutTarget[prop], prop),
			Line:     lineAt(code, m[4]),
		})
	}

	if loc := firstLive(transformPattern.FindAllStringSubmatchIndex(code, -1), inert, 4); loc != nil && !willChange.MatchString(code) {
		out = append(out, Suggestion{
			Kind:     KindPerformance,
			Severity: SeverityMedium,
			Message:  "Transform animations have no willChange hint",
			Fix:      `Add style={{ willChange: "transform" }} to the animated element`,
			Line:     lineAt(code, loc[4]),
		})
	}

	if n := len(usagePattern.FindAllStringIndex(code, -1)); n > UsageThreshold {
		out = append(out, Suggestion{
			Kind:     KindPerformance,
			Severity: SeverityMedium,
			Message:  fmt.Sprintf("Component runs %d animations", n),
			Fix:      "Split the component or share variants between elements",
		})
	}
	return out
}

// Optimize rewrites literal layout animations as transforms and caps
// durations at one second. Layout properties whose transform key is already
// set in the same object are left alone.
func (p *Performance) Optimize(code string, _ framework.Framework) string {
	var edits []edit
	claimed := map[[2]int]map[string]bool{}
	for _, m := range layoutMatches(code, inertMask(code)) {
		prop := code[m[4]:m[5]]
		target := layoutTarget[prop]
		start, end := objectBounds(code, m[4])
		if start < 0 {
			continue
		}
		key := [2]int{start, end}
		if claimed[key] == nil {
			claimed[key] = map[string]bool{}
		}
		if claimed[key][target] || hasKey(code[start:end], target) {
			continue
		}
		claimed[key][target] = true

		value := layoutValue(prop, code[m[8]:m[9]])
		edits = append(edits, edit{start: m[4], end: m[9], text: target + code[m[6]:m[7]] + value})
	}
	code = applyEdits(code, edits)

	edits = edits[:0]
	inert := inertMask(code)
	for _, m := range durationPattern.FindAllStringSubmatchIndex(code, -1) {
		if inert[m[4]] {
			continue
		}
		v, err := strconv.ParseFloat(code[m[6]:m[7]], 64)
		if err != nil || v <= 1 {
			continue
		}
		edits = append(edits, edit{start: m[6], end: m[7], text: "1"})
	}
	return applyEdits(code, edits)
}

// layoutMatches returns the layout properties set to a literal as keys of
// an object literal. Matches in inert text are dropped, and so are ternary
// branches, labels and values followed by more expression.
func layoutMatches(code string, inert []bool) [][]int {
	var out [][]int
	for _, m := range layoutPattern.FindAllStringSubmatchIndex(code, -1) {
		if inert[m[4]] || !objectKeyAt(code, m[4]) || !valueEnds(code, m[9]) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// firstLive returns the first match whose group starting at index group
// lies outside inert text.
func firstLive(matches [][]int, inert []bool, group int) []int {
	for _, m := range matches {
		if !inert[m[group]] {
			return m
		}
	}
	return nil
}

// objectKeyAt reports whether the identifier at pos directly follows '{'
// or ','.
func objectKeyAt(code string, pos int) bool {
	k := pos - 1
	for k >= 0 && isSpace(code[k]) {
		k--
	}
	return k >= 0 && (code[k] == '{' || code[k] == ',')
}

// valueEnds reports whether the value ending at pos is the whole value of
// its key.
func valueEnds(code string, pos int) bool {
	for k := pos; k < len(code); k++ {
		switch code[k] {
		case ' ', '\t', '\r':
			continue
		case ',', '}', '\n':
			return true
		}
		return false
	}
	return true
}

func hasKey(object, key string) bool {
	re := regexp.MustCompile(`(^|[^\w$.-])` + regexp.QuoteMeta(key) + `\s*:`)
	return re.MatchString(object)
}

// layoutValue converts a layout literal to the matching transform value.
// Sizes become scale ratios; offsets keep their magnitude, negated for
// right and bottom.
func layoutValue(prop, literal string) string {
	raw := literal
	quote := ""
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') {
		quote = raw[:1]
		raw = raw[1 : len(raw)-1]
	}
	raw = strings.TrimSpace(raw)

	switch prop {
	case "width", "height":
		if strings.HasSuffix(raw, "%") {
			if v, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64); err == nil {
				return strconv.FormatFloat(v/100, 'f', -1, 64)
			}
		}
		return "1"
	}

	negate := prop == "right" || prop == "bottom"
	if n, err := strconv.ParseFloat(strings.TrimSuffix(raw, "px"), 64); err == nil {
		if negate {
			n = -n
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	if negate {
		if strings.HasPrefix(raw, "-") {
			raw = raw[1:]
		} else {
			raw = "-" + raw
		}
	}
	if quote == "" {
		quote = `"`
	}
	return quote + raw + quote
}
