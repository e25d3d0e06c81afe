package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/plume"
	"github.com/simonhull/firebird-suite/plume/internal/pipeline"
	"github.com/simonhull/firebird-suite/plume/pkg/output"
)

const card = "import { motion } from \"motion/react\";\n\nexport default function Card() {\n  return <motion.div animate={{ opacity: 1 }} />;\n}\n"

// workspace isolates a test from the user's config and working directory.
func workspace(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Cleanup(func() { output.SetWriter(os.Stdout) })
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := RootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	workspace(t)
	stdout, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "Plume v"+plume.Version+"\n", stdout)
}

func TestGenerate_Stdin(t *testing.T) {
	workspace(t)

	stdout, stderr, err := run(t, card, "generate", "--framework", "react")
	require.NoError(t, err)
	assert.Contains(t, stdout, "export default function Card()")
	assert.Contains(t, stdout, "<motion.div animate={{ opacity: 1 }}")
	assert.Contains(t, stderr, "Estimated animation cost: 34")
}

func TestGenerate_ConvertsFile(t *testing.T) {
	dir := workspace(t)
	src := filepath.Join(dir, "Card.jsx")
	require.NoError(t, os.WriteFile(src, []byte(card), 0644))

	stdout, _, err := run(t, "", "generate", src, "-f", "vue", "--bundle=false", "--perf=false", "--a11y=false")
	require.NoError(t, err)
	assert.Contains(t, stdout, "<template>")
	assert.Contains(t, stdout, "motion-v")
}

func TestGenerate_JSON(t *testing.T) {
	workspace(t)

	stdout, _, err := run(t, card, "generate", "--json", "--perf")
	require.NoError(t, err)

	var resp pipeline.Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Card", resp.Component)
	assert.Nil(t, resp.Cost, "only the performance analyzer was selected")
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"unsupported target", card, []string{"generate", "-f", "svelte"}, `unsupported framework "svelte"`},
		{"unsupported source", card, []string{"generate", "--from", "angular"}, `unsupported framework "angular"`},
		{"parse error", "export default function Broken() {\n  return <div>\n}\n", []string{"generate"}, "parse_error"},
		{"conflicting flags", card, []string{"generate", "--force", "--skip"}, "cannot be combined"},
		{"unknown template", "", []string{"generate", "--template", "nope"}, `unknown template "nope"`},
		{"template and file", "", []string{"generate", "x.jsx", "--template", "fade-in"}, "cannot be combined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			workspace(t)
			_, _, err := run(t, tt.stdin, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGenerate_JSONFailureEnvelope(t *testing.T) {
	workspace(t)

	stdout, _, err := run(t, "export default function Broken() {\n  return <div>\n}\n", "generate", "--json")
	require.Error(t, err)

	var resp pipeline.Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "parse_error", resp.Error.Code)
	assert.Positive(t, resp.Error.Line)
}

func TestGenerate_TemplateToDirectory(t *testing.T) {
	dir := workspace(t)
	out := filepath.Join(dir, "components") + string(filepath.Separator)

	_, stderr, err := run(t, "", "generate", "--template", "fade-in", "--name", "hero banner", "-f", "react", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Create ")

	written, err := os.ReadFile(filepath.Join(dir, "components", "HeroBanner.jsx"))
	require.NoError(t, err)
	assert.Contains(t, string(written), "function HeroBanner(")

	// the same output again is left alone without asking
	_, stderr, err = run(t, "", "generate", "--template", "fade-in", "--name", "hero banner", "-f", "react", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Unchanged")
}

func TestGenerate_ExistingFile(t *testing.T) {
	dir := workspace(t)
	target := filepath.Join(dir, "Card.jsx")
	require.NoError(t, os.WriteFile(target, []byte("old\n"), 0644))

	_, _, err := run(t, card, "generate", "--out", target, "--skip")
	require.NoError(t, err)
	data, _ := os.ReadFile(target)
	assert.Equal(t, "old\n", string(data))

	_, stderr, err := run(t, card, "generate", "--out", target, "--force")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Overwrite")
	data, _ = os.ReadFile(target)
	assert.Contains(t, string(data), "function Card()")
}

func TestGenerate_ConfigDefaults(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plume.yaml"), []byte(`framework: js
optimization:
  performance: false
  accessibility: false
  bundle_size: false
`), 0644))

	stdout, stderr, err := run(t, card, "generate", "--from", "react", "--json")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "Estimated animation cost")

	var resp pipeline.Response
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "js", string(resp.Framework))
	assert.Empty(t, resp.Suggestions)
	require.NotEmpty(t, resp.Imports)
	assert.Equal(t, "motion", resp.Imports[0].Source)
}

func TestAnalyze(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "node_modules"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "Card.jsx"), []byte("export default function Card() {\n  return <motion.button whileHover={{ scale: 1.1 }} />;\n}\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "intro.js"), []byte("import { animate } from \"motion\";\n\nanimate(\"h1\", { opacity: 1 });\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "node_modules", "dep.js"), []byte("x"), 0644))

	stdout, _, err := run(t, "", "analyze", "src", "--json", "--workers", "2")
	require.NoError(t, err)

	var reports []jsonReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 2)
	for _, r := range reports {
		assert.Empty(t, r.Error)
	}

	_, stderr, err := run(t, "", "analyze", "src")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Analyzed 2 files")
}

func TestAnalyze_ReportsBrokenFiles(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Broken.jsx"), []byte("export default function Broken() {\n  return <div>\n}\n"), 0644))

	stdout, _, err := run(t, "", "analyze", "--json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 files could not be analyzed")

	var reports []jsonReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &reports))
	require.Len(t, reports, 1)
	assert.NotEmpty(t, reports[0].Error)
}

func TestOptimize(t *testing.T) {
	workspace(t)
	src := "import { motion } from \"motion/react\";\n\nexport default function Bar() {\n  return <motion.div animate={{ width: \"100px\" }} />;\n}\n"

	stdout, _, err := run(t, src, "optimize", "-f", "react", "--perf")
	require.NoError(t, err)
	assert.Contains(t, stdout, "scaleX: 1")

	again, _, err := run(t, stdout, "optimize", "-f", "react", "--perf")
	require.NoError(t, err)
	assert.Equal(t, stdout, again)

	diff, _, err := run(t, src, "optimize", "-f", "react", "--perf", "--diff")
	require.NoError(t, err)
	assert.Contains(t, diff, "+++ stdin (optimized)")
	assert.Contains(t, diff, "scaleX")
}

func TestOptimize_WritesFile(t *testing.T) {
	dir := workspace(t)
	path := filepath.Join(dir, "Bar.jsx")
	require.NoError(t, os.WriteFile(path, []byte("export default function Bar() {\n  return <motion.div animate={{ height: \"50%\" }} />;\n}\n"), 0644))

	_, _, err := run(t, "", "optimize", path, "--perf", "--out", path, "--force")
	require.NoError(t, err)
	data, _ := os.ReadFile(path)
	assert.Contains(t, string(data), "scaleY: 0.5")
}

func TestTemplates(t *testing.T) {
	workspace(t)

	stdout, _, err := run(t, "", "templates", "list", "--json")
	require.NoError(t, err)
	var rows []templateRow
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	assert.Len(t, rows, 6)

	stdout, _, err = run(t, "", "templates", "list", "--framework", "js", "--category", "scroll")
	require.NoError(t, err)
	assert.Contains(t, stdout, "scroll-reveal")
	assert.NotContains(t, stdout, "fade-in")

	stdout, _, err = run(t, "", "templates", "show", "fade-in", "-f", "react", "--name", "HeroCard")
	require.NoError(t, err)
	assert.Contains(t, stdout, "export default function HeroCard(")

	_, _, err = run(t, "", "templates", "show", "shared-underline", "-f", "js")
	assert.ErrorContains(t, err, "has no js variant")

	_, _, err = run(t, "", "templates", "show", "nope")
	assert.ErrorContains(t, err, "unknown template")
}

func TestConfigInitAndShow(t *testing.T) {
	dir := workspace(t)

	_, stderr, err := run(t, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Created plume.yaml")
	assert.FileExists(t, filepath.Join(dir, "plume.yaml"))

	_, _, err = run(t, "", "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, _, err = run(t, "", "config", "init", "--force")
	require.NoError(t, err)

	t.Setenv("PLUME_FRAMEWORK", "vue")
	stdout, stderr, err := run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "framework: vue")
	assert.Contains(t, stderr, "Loaded from")
}

func TestConfigInitNextToBrokenConfig(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plume.yaml"), []byte("framework: svelte\n"), 0644))

	_, _, err := run(t, card, "generate")
	assert.ErrorContains(t, err, "unsupported framework")

	_, _, err = run(t, "", "config", "init", "--force")
	require.NoError(t, err)

	_, _, err = run(t, card, "generate")
	assert.NoError(t, err)
}
