// Package templates serves the starter component catalog. The catalog is
// embedded YAML; each entry carries one code variant per framework, and
// rendered code is ordinary parser input.
package templates

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
)

//go:embed catalog.yaml
var catalog []byte

// DefaultName is used when a template is rendered without a name.
const DefaultName = "AnimatedComponent"

// Template is one catalog entry in one framework.
type Template struct {
	ID          string              `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description" yaml:"description"`
	Category    string              `json:"category" yaml:"category"`
	Complexity  string              `json:"complexity" yaml:"complexity"`
	Tags        []string            `json:"tags,omitempty" yaml:"tags"`
	Framework   framework.Framework `json:"framework" yaml:"-"`
	Code        string              `json:"code" yaml:"-"`
}

type entry struct {
	Template `yaml:",inline"`
	Variants map[string]string `yaml:"variants"`
}

type catalogFile struct {
	Templates []entry `yaml:"templates"`
}

// Filter narrows Search. Empty fields match everything; Query matches id,
// name, description and tags case-insensitively.
type Filter struct {
	Framework  framework.Framework
	Category   string
	Complexity string
	Query      string
}

// Store is a read-only template catalog.
type Store struct {
	templates []Template
	renderer  *Renderer
}

// Default loads the embedded catalog.
func Default() (*Store, error) {
	return Load(catalog)
}

// Load parses a catalog document. Variants for unknown frameworks and
// duplicate ids are rejected.
func Load(data []byte) (*Store, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}

	s := &Store{renderer: NewRenderer()}
	seen := map[string]bool{}
	for _, e := range file.Templates {
		if e.ID == "" {
			return nil, fmt.Errorf("template %q has no id", e.Name)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("duplicate template id %q", e.ID)
		}
		seen[e.ID] = true

		variants := make(map[framework.Framework]string, len(e.Variants))
		for name, code := range e.Variants {
			fw, err := framework.Parse(name)
			if err != nil {
				return nil, fmt.Errorf("template %s: %w", e.ID, err)
			}
			variants[fw] = code
		}
		for _, fw := range framework.All() {
			code, ok := variants[fw]
			if !ok {
				continue
			}
			t := e.Template
			t.Tags = append([]string(nil), e.Tags...)
			t.Framework = fw
			t.Code = code
			s.templates = append(s.templates, t)
		}
	}

	sort.SliceStable(s.templates, func(i, j int) bool { return s.templates[i].ID < s.templates[j].ID })
	return s, nil
}

// Len returns the number of (template, framework) variants.
func (s *Store) Len() int { return len(s.templates) }

// Get returns template id for fw. With an empty fw the first available
// framework wins.
func (s *Store) Get(id string, fw framework.Framework) (Template, bool) {
	for _, t := range s.templates {
		if t.ID == id && (fw == "" || t.Framework == fw) {
			return t, true
		}
	}
	return Template{}, false
}

// Search returns the variants matching f, ordered by id then framework.
func (s *Store) Search(f Filter) []Template {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Template, 0)
	for _, t := range s.templates {
		if f.Framework != "" && t.Framework != f.Framework {
			continue
		}
		if f.Category != "" && !strings.EqualFold(t.Category, f.Category) {
			continue
		}
		if f.Complexity != "" && !strings.EqualFold(t.Complexity, f.Complexity) {
			continue
		}
		if query != "" && !t.matches(query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (t Template) matches(query string) bool {
	fields := append([]string{t.ID, t.Name, t.Description}, t.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// Categories lists the distinct categories, sorted.
func (s *Store) Categories() []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range s.templates {
		if !seen[t.Category] {
			seen[t.Category] = true
			out = append(out, t.Category)
		}
	}
	sort.Strings(out)
	return out
}

// Frameworks lists the frameworks id has variants for.
func (s *Store) Frameworks(id string) []framework.Framework {
	var out []framework.Framework
	for _, t := range s.templates {
		if t.ID == id {
			out = append(out, t.Framework)
		}
	}
	return out
}

// Render renders t with componentName converted to PascalCase.
func (s *Store) Render(t Template, componentName string) (string, error) {
	name := PascalCase(componentName)
	if name == "" {
		name = DefaultName
	}
	return s.renderer.RenderString(t.ID+"."+string(t.Framework), t.Code, struct{ Name string }{name})
}
