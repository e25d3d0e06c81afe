// Package output prints styled terminal messages for the plume CLI.
// Styling is done with lipgloss; callers only pick the message kind.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/simonhull/firebird-suite/plume/internal/optimizer"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("green")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)

	severityStyles = map[optimizer.Severity]lipgloss.Style{
		optimizer.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("white")).Background(lipgloss.Color("red")).Bold(true),
		optimizer.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("red")).Bold(true),
		optimizer.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")),
		optimizer.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
)

var (
	mu          sync.Mutex
	out         io.Writer = os.Stdout
	verboseMode bool
)

// SetWriter redirects all output. It returns the previous writer.
func SetWriter(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

// SetVerbose enables Verbose messages.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verboseMode = v
}

func println(s string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, s)
}

// Success reports a completed operation.
//
//	output.Success("Generated Card.tsx")
func Success(msg string) {
	println(successStyle.Render("✨ " + msg))
}

// Error reports a failure.
func Error(msg string) {
	println(errorStyle.Render("❌ " + msg))
}

// Warn reports something the user should look at.
func Warn(msg string) {
	println(warnStyle.Render("⚠️  " + msg))
}

// Info prints a status line.
func Info(msg string) {
	println(infoStyle.Render("ℹ️  " + msg))
}

// Step prints an indented sub-item.
func Step(msg string) {
	println(stepStyle.Render("   " + msg))
}

// Verbose prints msg only in verbose mode.
func Verbose(msg string) {
	mu.Lock()
	v := verboseMode
	mu.Unlock()
	if v {
		println(stepStyle.Render("🔍 " + msg))
	}
}

// Header prints a section title.
func Header(msg string) {
	println(headerStyle.Render(msg))
}

// Suggestions prints analyzer findings, one block per suggestion.
func Suggestions(list []optimizer.Suggestion) {
	if len(list) == 0 {
		Success("No suggestions")
		return
	}
	for _, s := range list {
		println(FormatSuggestion(s))
	}
}

// FormatSuggestion renders one suggestion as styled text.
func FormatSuggestion(s optimizer.Suggestion) string {
	style, ok := severityStyles[s.Severity]
	if !ok {
		style = stepStyle
	}

	var b strings.Builder
	b.WriteString(style.Render(fmt.Sprintf("[%s]", strings.ToUpper(string(s.Severity)))))
	b.WriteString(" ")
	b.WriteString(string(s.Kind))
	if s.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", s.Line)
	}
	b.WriteString(": ")
	b.WriteString(s.Message)
	if s.Fix != "" {
		b.WriteString("\n")
		b.WriteString(stepStyle.Render("   fix: " + s.Fix))
	}
	return b.String()
}

// Cost prints a bundle cost estimate, features in the given order.
func Cost(c optimizer.Cost, features []string) {
	Info(fmt.Sprintf("Estimated animation cost: %d", c.Total))
	for _, f := range features {
		if v, ok := c.Breakdown[f]; ok {
			Step(fmt.Sprintf("%-16s %d", f, v))
		}
	}
}
