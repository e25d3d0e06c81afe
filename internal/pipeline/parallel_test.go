package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestAnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "Card.jsx", "export default function Card() {\n  return <motion.button whileHover={{ scale: 1.1 }} />;\n}\n"),
		writeFile(t, dir, "Broken.jsx", "export default function Broken() {\n  return <div>\n}\n"),
		writeFile(t, dir, "intro.js", "import { animate } from \"motion\";\n\nanimate(\"h1\", { opacity: 1 });\n"),
		writeFile(t, dir, "notes.txt", "hello"),
		filepath.Join(dir, "Missing.vue"),
	}

	opt := Optimization{Performance: true, Accessibility: true, BundleSize: true}
	reports, err := New(Config{}).AnalyzeFiles(context.Background(), files, "", opt, 2)
	require.NoError(t, err)
	require.Len(t, reports, len(files))

	for i, r := range reports {
		assert.Equal(t, files[i], r.Path)
	}

	card := reports[0]
	require.NoError(t, card.Err)
	assert.Equal(t, framework.React, card.Framework)
	assert.Equal(t, "Card", card.Component)
	assert.Equal(t, 1, card.Animations)
	assert.NotEmpty(t, card.Suggestions)
	assert.Equal(t, 34, card.Cost.Total)

	assert.Error(t, reports[1].Err)

	intro := reports[2]
	require.NoError(t, intro.Err)
	assert.Equal(t, framework.JS, intro.Framework)
	assert.Equal(t, 1, intro.Animations)
	assert.Equal(t, 4, intro.Cost.Breakdown["animate"])

	assert.ErrorContains(t, reports[3].Err, "cannot detect framework")
	assert.ErrorContains(t, reports[4].Err, "failed to read")
}

func TestAnalyzeFiles_ExplicitFramework(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "widget.txt", "<motion.div animate={{ opacity: 1 }} />")

	reports, err := New(Config{}).AnalyzeFiles(context.Background(), []string{path}, framework.React, Optimization{}, 0)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.NoError(t, reports[0].Err)
	assert.Equal(t, framework.React, reports[0].Framework)
	assert.Empty(t, reports[0].Suggestions)

	_, err = New(Config{}).AnalyzeFiles(context.Background(), []string{path}, "svelte", Optimization{}, 1)
	var unsupported *framework.UnsupportedError
	assert.ErrorAs(t, err, &unsupported)
}

func TestAnalyzeFiles_Cancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "Card.jsx", "export default function Card() { return null }\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{}).AnalyzeFiles(ctx, []string{path, path}, "", Optimization{}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeFiles_Empty(t *testing.T) {
	reports, err := New(Config{}).AnalyzeFiles(context.Background(), nil, "", Optimization{}, 4)
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "src/Card.tsx", "")
	writeFile(t, dir, "src/Panel.vue", "")
	writeFile(t, dir, "src/types.d.ts", "")
	writeFile(t, dir, "src/readme.md", "")
	writeFile(t, dir, "node_modules/pkg/index.js", "")
	explicit := writeFile(t, dir, "extra.txt", "")

	files, err := CollectFiles([]string{dir, explicit, filepath.Join(dir, "src")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "src", "Card.tsx"),
		filepath.Join(dir, "src", "Panel.vue"),
		explicit,
	}, files)

	_, err = CollectFiles([]string{filepath.Join(dir, "nope")})
	assert.Error(t, err)
}

func TestDetectFramework(t *testing.T) {
	tests := []struct {
		path string
		want framework.Framework
		ok   bool
	}{
		{"Card.tsx", framework.React, true},
		{"Card.JSX", framework.React, true},
		{"Panel.vue", framework.Vue, true},
		{"intro.ts", framework.JS, true},
		{"styles.css", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := DetectFramework(tt.path)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
