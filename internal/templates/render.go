package templates

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"unicode"
)

// Delimiters used by catalog code. JSX and Vue both claim {{ }}.
const (
	leftDelim  = "[["
	rightDelim = "]]"
)

// Renderer parses and renders template code, caching parsed templates.
type Renderer struct {
	funcMap template.FuncMap
	cache   map[string]*template.Template
	mu      sync.RWMutex
}

// NewRenderer creates a renderer with the built-in helpers.
func NewRenderer() *Renderer {
	return &Renderer{
		funcMap: defaultFuncMap(),
		cache:   make(map[string]*template.Template),
	}
}

// RenderString renders text under name. The name keys the cache.
func (r *Renderer) RenderString(name, text string, data any) (string, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[name]
	r.mu.RUnlock()

	if !ok {
		var err error
		tmpl, err = template.New(name).Delims(leftDelim, rightDelim).Funcs(r.funcMap).Option("missingkey=error").Parse(text)
		if err != nil {
			return "", fmt.Errorf("failed to parse template '%s': %w", name, err)
		}
		r.mu.Lock()
		r.cache[name] = tmpl
		r.mu.Unlock()
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render template '%s': %w", name, err)
	}
	return buf.String(), nil
}

// ClearCache drops every parsed template.
func (r *Renderer) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*template.Template)
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"pascalCase": PascalCase, // fade-in → FadeIn
		"camelCase":  CamelCase,  // FadeIn → fadeIn
		"kebabCase":  KebabCase,  // FadeIn → fade-in
		"quote":      Quote,
		"upper":      strings.ToUpper,
		"lower":      strings.ToLower,
		"trim":       strings.TrimSpace,
		"default":    defaultValue,
	}
}

// words splits s on separators and lower-to-upper case changes.
func words(s string) []string {
	var out []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && i > 0 && (unicode.IsLower(runes[i-1]) ||
			i+1 < len(runes) && unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1])):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return out
}

// PascalCase converts fade-in, fade_in or fadeIn to FadeIn.
func PascalCase(s string) string {
	var b strings.Builder
	for _, w := range words(s) {
		r := []rune(w)
		b.WriteString(strings.ToUpper(string(r[0])) + string(r[1:]))
	}
	return b.String()
}

// CamelCase converts to fadeIn.
func CamelCase(s string) string {
	p := PascalCase(s)
	if p == "" {
		return ""
	}
	r := []rune(p)
	return strings.ToLower(string(r[0])) + string(r[1:])
}

// KebabCase converts to fade-in.
func KebabCase(s string) string {
	ws := words(s)
	for i, w := range ws {
		ws[i] = strings.ToLower(w)
	}
	return strings.Join(ws, "-")
}

// Quote wraps s in double quotes.
func Quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// defaultValue returns val, or def when val is nil or empty.
func defaultValue(def, val any) any {
	if val == nil {
		return def
	}
	if s, ok := val.(string); ok && s == "" {
		return def
	}
	return val
}
