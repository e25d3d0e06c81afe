package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simonhull/firebird-suite/plume/internal/optimizer"
)

func capture(t *testing.T, f func()) string {
	t.Helper()
	var buf bytes.Buffer
	prev := SetWriter(&buf)
	t.Cleanup(func() { SetWriter(prev) })
	f()
	return buf.String()
}

func TestMessages(t *testing.T) {
	tests := []struct {
		name  string
		print func(string)
		mark  string
	}{
		{"success", Success, "✨"},
		{"error", Error, "❌"},
		{"warn", Warn, "⚠️"},
		{"info", Info, "ℹ️"},
		{"step", Step, "   "},
		{"header", Header, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := capture(t, func() { tt.print("hello there") })
			assert.Contains(t, got, "hello there")
			assert.Contains(t, got, tt.mark)
		})
	}
}

func TestVerbose(t *testing.T) {
	assert.Empty(t, capture(t, func() { Verbose("hidden") }))

	SetVerbose(true)
	defer SetVerbose(false)
	assert.Contains(t, capture(t, func() { Verbose("shown") }), "shown")
}

func TestFormatSuggestion(t *testing.T) {
	got := FormatSuggestion(optimizer.Suggestion{
		Kind:     optimizer.KindPerformance,
		Severity: optimizer.SeverityHigh,
		Message:  "Animating width triggers layout on every frame",
		Fix:      "Animate scaleX instead of width",
		Line:     4,
	})
	assert.Contains(t, got, "[HIGH]")
	assert.Contains(t, got, "performance (line 4): Animating width")
	assert.Contains(t, got, "fix: Animate scaleX instead of width")

	bare := FormatSuggestion(optimizer.Suggestion{Kind: optimizer.KindBundleSize, Severity: optimizer.SeverityLow, Message: "unused"})
	assert.NotContains(t, bare, "line")
	assert.NotContains(t, bare, "fix:")
}

func TestSuggestions(t *testing.T) {
	assert.Contains(t, capture(t, func() { Suggestions(nil) }), "No suggestions")

	got := capture(t, func() {
		Suggestions([]optimizer.Suggestion{
			{Kind: optimizer.KindAccessibility, Severity: optimizer.SeverityMedium, Message: "first"},
			{Kind: optimizer.KindAccessibility, Severity: optimizer.SeverityLow, Message: "second"},
		})
	})
	assert.Less(t, bytes.Index([]byte(got), []byte("first")), bytes.Index([]byte(got), []byte("second")))
}

func TestCost(t *testing.T) {
	got := capture(t, func() {
		Cost(optimizer.Cost{Total: 10, Breakdown: map[string]int{"AnimatePresence": 6, "layoutId": 4}}, []string{"motion", "AnimatePresence", "layoutId"})
	})
	assert.Contains(t, got, "Estimated animation cost: 10")
	assert.Contains(t, got, "AnimatePresence")
	assert.NotContains(t, got, "motion ")
}
