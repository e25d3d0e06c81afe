package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/templates"
	"github.com/simonhull/firebird-suite/plume/pkg/output"
)

var headerCell = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cell = lipgloss.NewStyle().Padding(0, 1)

// templatesCmd creates the 'templates' command group
func templatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Browse the built-in animation templates",
	}
	cmd.AddCommand(templatesListCmd())
	cmd.AddCommand(templatesShowCmd())
	return cmd
}

// templateRow is one catalog entry with every framework it ships for.
type templateRow struct {
	templates.Template
	Frameworks []framework.Framework `json:"frameworks"`
}

func templatesListCmd() *cobra.Command {
	var (
		fw, category, complexity, query string
		jsonOut                         bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Long: `List templates, optionally filtered.

Examples:
  plume templates list
  plume templates list --framework vue --category hover
  plume templates list -q stagger`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := templates.Default()
			if err != nil {
				return err
			}
			filter := templates.Filter{Category: category, Complexity: complexity, Query: query}
			if fw != "" {
				if filter.Framework, err = framework.Parse(fw); err != nil {
					return err
				}
			}

			var rows []templateRow
			index := map[string]int{}
			for _, t := range store.Search(filter) {
				if i, ok := index[t.ID]; ok {
					rows[i].Frameworks = append(rows[i].Frameworks, t.Framework)
					continue
				}
				index[t.ID] = len(rows)
				t.Code = ""
				rows = append(rows, templateRow{Template: t, Frameworks: []framework.Framework{t.Framework}})
			}

			if jsonOut {
				if rows == nil {
					rows = []templateRow{}
				}
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				output.Info("No templates match")
				return nil
			}

			tbl := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerCell
					}
					return cell
				}).
				Headers("ID", "NAME", "CATEGORY", "COMPLEXITY", "FRAMEWORKS")
			for _, r := range rows {
				names := make([]string, len(r.Frameworks))
				for i, f := range r.Frameworks {
					names[i] = string(f)
				}
				tbl.Row(r.ID, r.Name, r.Category, r.Complexity, strings.Join(names, ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), tbl.String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&fw, "framework", "f", "", "Only templates available for this framework")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category ("+strings.Join(mustCategories(), ", ")+")")
	cmd.Flags().StringVar(&complexity, "complexity", "", "Filter by complexity (simple, intermediate, advanced)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Search id, name, description and tags")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print templates as JSON")

	return cmd
}

func templatesShowCmd() *cobra.Command {
	var (
		fw, name string
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a template rendered for a component name",
		Long: `Print a template's code. Without --framework the first variant is shown.

Examples:
  plume templates show fade-in --framework vue
  plume templates show stagger-list --name TodoList`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := templates.Default()
			if err != nil {
				return err
			}
			var target framework.Framework
			if fw != "" {
				if target, err = framework.Parse(fw); err != nil {
					return err
				}
			}
			t, ok := store.Get(args[0], target)
			if !ok {
				if _, exists := store.Get(args[0], ""); exists {
					return fmt.Errorf("template %q has no %s variant (available: %s)", args[0], target, joinFrameworks(store.Frameworks(args[0])))
				}
				return fmt.Errorf("unknown template %q (see 'plume templates list')", args[0])
			}

			code, err := store.Render(t, name)
			if err != nil {
				return err
			}
			if jsonOut {
				t.Code = code
				return writeJSON(cmd.OutOrStdout(), t)
			}

			output.Header(fmt.Sprintf("%s (%s, %s)", t.Name, t.Framework, t.Complexity))
			output.Step(t.Description)
			fmt.Fprint(cmd.OutOrStdout(), code)
			if !strings.HasSuffix(code, "\n") {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fw, "framework", "f", "", "Framework variant to show")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Component name (default "+templates.DefaultName+")")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the template as JSON")

	return cmd
}

func joinFrameworks(list []framework.Framework) string {
	names := make([]string, len(list))
	for i, f := range list {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// mustCategories lists the catalog categories for help text.
func mustCategories() []string {
	store, err := templates.Default()
	if err != nil {
		return nil
	}
	return store.Categories()
}
