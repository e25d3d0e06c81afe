package files

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// MaxDiffLines is the largest input, in lines per side, that gets a real
// diff.
const MaxDiffLines = 10000

// DiffOptions configures diff output. Zero values select the defaults.
type DiffOptions struct {
	// Context is the number of unchanged lines kept around each change.
	// Default: 3
	Context int
	// TabWidth expands tabs. Default: 4
	TabWidth int
	// Width truncates long lines. Default: the terminal width, or 80.
	Width int
	// LineNumbers prefixes lines with their old line number.
	LineNumbers bool
}

var (
	diffHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	hunkStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	insertStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("22"))
	deleteStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("52"))
	lineNumStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Faint(true)
)

type editKind int

const (
	editEqual editKind = iota
	editInsert
	editDelete
)

// edit is one line of an edit script. oldLine and newLine count from 1; 0
// means the line does not exist on that side.
type edit struct {
	kind    editKind
	oldLine int
	newLine int
	text    string
}

// Diff renders a colored unified diff of two versions of a file. Identical
// inputs give an empty string.
func Diff(oldName, newName string, old, newer []byte, opts *DiffOptions) string {
	o := DiffOptions{}
	if opts != nil {
		o = *opts
	}
	if o.Context <= 0 {
		o.Context = 3
	}
	if o.TabWidth <= 0 {
		o.TabWidth = 4
	}
	if o.Width <= 0 {
		o.Width = terminalWidth()
	}

	if bytes.Equal(old, newer) {
		return ""
	}
	if isBinary(old) || isBinary(newer) {
		return "Binary files differ\n"
	}

	a, b := splitLines(string(old)), splitLines(string(newer))
	if len(a) > MaxDiffLines || len(b) > MaxDiffLines {
		return fmt.Sprintf("Files too large for diff (%d and %d lines)\n", len(a), len(b))
	}

	script := editScript(a, b)
	hunks := groupHunks(script, o.Context)
	if len(hunks) == 0 {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(diffHeaderStyle.Render("--- "+oldName) + "\n")
	buf.WriteString(diffHeaderStyle.Render("+++ "+newName) + "\n")
	for _, h := range hunks {
		writeHunk(&buf, script[h.from:h.to], o)
	}
	return buf.String()
}

// DiffStats counts inserted and deleted lines between two versions.
func DiffStats(old, newer []byte) (inserted, deleted int) {
	if bytes.Equal(old, newer) {
		return 0, 0
	}
	a, b := splitLines(string(old)), splitLines(string(newer))
	if len(a) > MaxDiffLines || len(b) > MaxDiffLines {
		return len(b), len(a)
	}
	for _, e := range editScript(a, b) {
		switch e.kind {
		case editInsert:
			inserted++
		case editDelete:
			deleted++
		}
	}
	return inserted, deleted
}

// editScript computes a shortest edit script with the greedy forward
// Myers algorithm, then walks the saved frontiers backwards.
func editScript(a, b []string) []edit {
	n, m := len(a), len(b)
	limit := n + m
	offset := limit + 1
	v := make([]int, 2*limit+3)
	var trace [][]int

search:
	for d := 0; d <= limit; d++ {
		trace = append(trace, append([]int(nil), v...))
		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				break search
			}
		}
	}

	var rev []edit
	x, y := n, m
	for d := len(trace) - 1; d >= 0; d-- {
		frontier := trace[d]
		k := x - y
		prevK := k - 1
		if k == -d || (k != d && frontier[offset+k-1] < frontier[offset+k+1]) {
			prevK = k + 1
		}
		prevX := frontier[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			x--
			y--
			rev = append(rev, edit{kind: editEqual, oldLine: x + 1, newLine: y + 1, text: a[x]})
		}
		if d == 0 {
			break
		}
		if x == prevX {
			y--
			rev = append(rev, edit{kind: editInsert, newLine: y + 1, text: b[y]})
		} else {
			x--
			rev = append(rev, edit{kind: editDelete, oldLine: x + 1, text: a[x]})
		}
	}

	script := make([]edit, len(rev))
	for i, e := range rev {
		script[len(rev)-1-i] = e
	}
	return script
}

// span is a half-open range of an edit script.
type span struct{ from, to int }

// groupHunks returns the ranges to print: every change plus up to context
// equal lines on either side, with ranges that touch merged.
func groupHunks(script []edit, context int) []span {
	var spans []span
	for i, e := range script {
		if e.kind == editEqual {
			continue
		}
		from := max(0, i-context)
		to := min(len(script), i+context+1)
		if n := len(spans); n > 0 && from <= spans[n-1].to {
			spans[n-1].to = to
			continue
		}
		spans = append(spans, span{from, to})
	}
	return spans
}

func writeHunk(buf *strings.Builder, lines []edit, o DiffOptions) {
	oldStart, newStart, oldCount, newCount := 0, 0, 0, 0
	for _, e := range lines {
		if e.oldLine > 0 {
			if oldStart == 0 {
				oldStart = e.oldLine
			}
			oldCount++
		}
		if e.newLine > 0 {
			if newStart == 0 {
				newStart = e.newLine
			}
			newCount++
		}
	}
	buf.WriteString(hunkStyle.Render(fmt.Sprintf("@@ -%d,%d +%d,%d @@", oldStart, oldCount, newStart, newCount)) + "\n")

	for _, e := range lines {
		text := truncate(expandTabs(e.text, o.TabWidth), o.Width-10)
		var line string
		switch e.kind {
		case editInsert:
			line = insertStyle.Render("+" + text)
		case editDelete:
			line = deleteStyle.Render("-" + text)
		default:
			line = " " + text
		}
		if o.LineNumbers {
			num := "    "
			if e.oldLine > 0 {
				num = fmt.Sprintf("%4d", e.oldLine)
			}
			line = lineNumStyle.Render(num) + " " + line
		}
		buf.WriteString(line + "\n")
	}
}

func isBinary(data []byte) bool {
	return bytes.IndexByte(data[:min(len(data), 8192)], 0) >= 0
}

// splitLines splits on newlines, ignoring one trailing newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func expandTabs(s string, width int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var buf strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := width - col%width
			buf.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		buf.WriteRune(r)
		col++
	}
	return buf.String()
}

func truncate(s string, width int) string {
	if width <= 3 {
		width = 70
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width-3]) + "..."
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
