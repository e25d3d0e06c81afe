package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/plume/internal/optimizer"
	"github.com/simonhull/firebird-suite/plume/internal/pipeline"
	"github.com/simonhull/firebird-suite/plume/pkg/files"
	"github.com/simonhull/firebird-suite/plume/pkg/output"
)

type optimizeResult struct {
	Code        string                 `json:"code"`
	Changed     bool                   `json:"changed"`
	Suggestions []optimizer.Suggestion `json:"suggestions"`
}

// optimizeCmd creates the 'optimize' command
func optimizeCmd(a *app) *cobra.Command {
	var (
		target, out                  string
		showDiff, jsonOut            bool
		force, skip, confirmWithDiff bool
		opt                          optimizationFlags
	)

	cmd := &cobra.Command{
		Use:   "optimize [file]",
		Short: "Apply performance, accessibility and bundle size fixes to a component",
		Long: `Rewrite a component with the analyzers' fixes. Running optimize on its own
output changes nothing.

Examples:
  plume optimize Card.jsx --diff
  plume optimize Card.vue --a11y --out Card.vue --force
  cat widget.js | plume optimize -f js`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			resolver, err := files.NewResolver(force, skip, confirmWithDiff)
			if err != nil {
				return err
			}

			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			code, err := readSource(cmd, path)
			if err != nil {
				return err
			}
			fw, err := sourceFramework(target, path, a.cfg.DefaultFramework())
			if err != nil {
				return err
			}
			o := opt.resolve(cmd, a.cfg)
			if !o.Any() {
				o = pipeline.Optimization{Performance: true, Accessibility: true, BundleSize: true}
			}

			optimized, remaining, err := a.pipeline.Optimize(code, fw, o)
			if err != nil {
				return err
			}

			switch {
			case jsonOut:
				return writeJSON(cmd.OutOrStdout(), optimizeResult{Code: optimized, Changed: optimized != code, Suggestions: remaining})
			case showDiff:
				name := path
				if name == "" {
					name = "stdin"
				}
				d := files.Diff(name, name+" (optimized)", []byte(code), []byte(optimized), nil)
				if d == "" {
					output.Info("Nothing to optimize")
				}
				fmt.Fprint(cmd.OutOrStdout(), d)
			case out != "":
				if _, err := files.Write(cmd.Context(), []files.File{{Path: out, Content: []byte(optimized)}}, files.Options{
					Resolver: resolver,
					Out:      cmd.ErrOrStderr(),
				}); err != nil {
					return err
				}
				output.Success(fmt.Sprintf("Optimized %s", filepath.Base(out)))
			default:
				fmt.Fprint(cmd.OutOrStdout(), optimized)
			}

			if !jsonOut && len(remaining) > 0 {
				output.Warn(fmt.Sprintf("%d suggestions need manual attention", len(remaining)))
				output.Suggestions(remaining)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "framework", "f", "", "Framework of the input (default: detected from the file extension)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the optimized component to this file")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Print a diff instead of the optimized code")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite --out without asking")
	cmd.Flags().BoolVar(&skip, "skip", false, "Keep an existing --out file")
	cmd.Flags().BoolVar(&confirmWithDiff, "confirm-diff", false, "Show a diff before overwriting --out")
	opt.register(cmd)

	return cmd
}
