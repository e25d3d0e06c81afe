package files

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Resolution is the decision for a file that already exists.
type Resolution int

const (
	Skip Resolution = iota
	Overwrite
	ShowDiff
	Cancel
)

func (r Resolution) String() string {
	switch r {
	case Skip:
		return "skip"
	case Overwrite:
		return "overwrite"
	case ShowDiff:
		return "diff"
	case Cancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// PagerThreshold is the diff length, in lines, above which a terminal
// shows the diff in a scrollable viewer instead of printing it.
const PagerThreshold = 20

// Strategy decides what happens to an existing file.
type Strategy interface {
	Resolve(path string, existing, newer []byte) (Resolution, error)
}

// PromptFunc asks the user about a conflicting file.
type PromptFunc func(path string) (Resolution, error)

// Resolver turns conflicts into decisions. A ShowDiff decision prints the
// diff and asks again, until the answer is something else.
type Resolver struct {
	strategy Strategy
	prompt   PromptFunc
	out      io.Writer
	pager    bool
}

var (
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("yellow")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("cyan")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("white")).Bold(true)
)

// NewResolver creates a resolver from the CLI flags. --force cannot be
// combined with --skip or --diff.
func NewResolver(force, skip, diff bool) (*Resolver, error) {
	if force && (skip || diff) {
		return nil, fmt.Errorf("--force cannot be combined with --skip or --diff")
	}

	r := &Resolver{
		prompt: runMenu,
		out:    os.Stdout,
		pager:  term.IsTerminal(int(os.Stdout.Fd())),
	}
	switch {
	case force:
		r.strategy = ForceStrategy{}
	case skip:
		r.strategy = SkipStrategy{}
	case diff:
		r.strategy = DiffStrategy{}
	default:
		r.strategy = InteractiveStrategy{resolver: r}
	}
	return r, nil
}

// WithOutput prints diffs to w instead of stdout and disables the pager.
func (r *Resolver) WithOutput(w io.Writer) *Resolver {
	r.out = w
	r.pager = false
	return r
}

// WithPrompt replaces the interactive menu.
func (r *Resolver) WithPrompt(p PromptFunc) *Resolver {
	r.prompt = p
	return r
}

// Strategy returns the strategy selected by the flags.
func (r *Resolver) Strategy() Strategy { return r.strategy }

// Resolve decides what to do with path. The result is never ShowDiff.
func (r *Resolver) Resolve(path string, existing, newer []byte) (Resolution, error) {
	res, err := r.strategy.Resolve(path, existing, newer)
	for err == nil && res == ShowDiff {
		if err = r.showDiff(path, existing, newer); err != nil {
			return Cancel, err
		}
		res, err = r.prompt(path)
	}
	if err != nil {
		return Cancel, err
	}
	return res, nil
}

func (r *Resolver) showDiff(path string, existing, newer []byte) error {
	diff := Diff(path, path, existing, newer, nil)
	if diff == "" {
		fmt.Fprintln(r.out, mutedStyle.Render("    (no changes)"))
		return nil
	}
	if !r.pager || strings.Count(diff, "\n") <= PagerThreshold {
		fmt.Fprint(r.out, diff)
		return nil
	}

	if _, err := tea.NewProgram(newDiffViewer(path, diff), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to show diff: %w", err)
	}
	return nil
}

// ForceStrategy overwrites without asking.
type ForceStrategy struct{}

func (ForceStrategy) Resolve(string, []byte, []byte) (Resolution, error) { return Overwrite, nil }

// SkipStrategy keeps every existing file.
type SkipStrategy struct{}

func (SkipStrategy) Resolve(string, []byte, []byte) (Resolution, error) { return Skip, nil }

// DiffStrategy shows the diff before asking.
type DiffStrategy struct{}

func (DiffStrategy) Resolve(string, []byte, []byte) (Resolution, error) { return ShowDiff, nil }

// InteractiveStrategy asks through the resolver's prompt.
type InteractiveStrategy struct {
	resolver *Resolver
}

func (s InteractiveStrategy) Resolve(path string, _, _ []byte) (Resolution, error) {
	return s.resolver.prompt(path)
}

var menuChoices = []struct {
	label string
	res   Resolution
}{
	{"Show diff and decide", ShowDiff},
	{"Skip (keep the existing component)", Skip},
	{"Overwrite (replace with generated code)", Overwrite},
	{"Cancel", Cancel},
}

// runMenu shows the conflict menu on the terminal. Quitting cancels.
func runMenu(path string) (Resolution, error) {
	info, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return Cancel, fmt.Errorf("failed to stat file: %w", err)
	}

	final, err := tea.NewProgram(menuModel{path: path, info: info}).Run()
	if err != nil {
		return Cancel, fmt.Errorf("failed to show menu: %w", err)
	}
	m := final.(menuModel)
	if !m.chosen {
		return Cancel, nil
	}
	return menuChoices[m.cursor].res, nil
}

type menuModel struct {
	path   string
	info   os.FileInfo
	cursor int
	chosen bool
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(menuChoices)-1 {
			m.cursor++
		}
	case "d":
		m.cursor, m.chosen = 0, true
		return m, tea.Quit
	case "s":
		m.cursor, m.chosen = 1, true
		return m, tea.Quit
	case "o":
		m.cursor, m.chosen = 2, true
		return m, tea.Quit
	case "enter":
		m.chosen = true
		return m, tea.Quit
	}
	return m, nil
}

func (m menuModel) View() string {
	var b strings.Builder
	b.WriteString(warningStyle.Render("⚠️  Component already exists: ") + titleStyle.Render(m.path) + "\n")
	if m.info != nil {
		b.WriteString(mutedStyle.Render("    Modified: ") + relativeTime(time.Since(m.info.ModTime())) + "\n")
		b.WriteString(mutedStyle.Render("    Size: ") + byteSize(m.info.Size()) + "\n")
	}
	b.WriteString("\n" + mutedStyle.Render("    [↑/↓] Move    [Enter] Select    [d/s/o] Shortcut    [q] Cancel") + "\n\n")
	for i, c := range menuChoices {
		if i == m.cursor {
			b.WriteString("    " + selectedStyle.Render("> "+c.label) + "\n")
		} else {
			b.WriteString("      " + c.label + "\n")
		}
	}
	return b.String()
}

// diffViewer pages a long diff in the alternate screen.
type diffViewer struct {
	path     string
	diff     string
	viewport viewport.Model
	ready    bool
}

func newDiffViewer(path, diff string) diffViewer {
	return diffViewer{path: path, diff: diff}
}

func (m diffViewer) Init() tea.Cmd { return nil }

func (m diffViewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc", "enter":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		height := max(1, msg.Height-4)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.viewport.SetContent(m.diff)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m diffViewer) View() string {
	if !m.ready {
		return "Loading diff..."
	}
	rule := borderStyle.Render(strings.Repeat("─", max(0, m.viewport.Width)))
	title := titleStyle.Render("Diff: "+m.path) + mutedStyle.Render(fmt.Sprintf("  %3.f%%", m.viewport.ScrollPercent()*100))
	footer := mutedStyle.Render("[↑/↓/pgup/pgdn] Scroll    [q] Back to menu")
	return title + "\n" + rule + "\n" + m.viewport.View() + "\n" + rule + "\n" + footer
}

func relativeTime(d time.Duration) string {
	unit := func(n int, name string) string {
		if n == 1 {
			return "1 " + name + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, name)
	}
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return unit(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return unit(int(d.Hours()), "hour")
	case d < 30*24*time.Hour:
		return unit(int(d.Hours()/24), "day")
	case d < 365*24*time.Hour:
		return unit(int(d.Hours()/24/30), "month")
	default:
		return unit(int(d.Hours()/24/365), "year")
	}
}

func byteSize(n int64) string {
	const k = 1024
	if n < k {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(k), 0
	for v := n / k; v >= k; v /= k {
		div *= k
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
