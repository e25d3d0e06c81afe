package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/optimizer"
	"github.com/simonhull/firebird-suite/plume/internal/pipeline"
	"github.com/simonhull/firebird-suite/plume/pkg/exec"
	"github.com/simonhull/firebird-suite/plume/pkg/output"
)

// jsonReport adds the error message that FileReport keeps out of JSON.
type jsonReport struct {
	pipeline.FileReport
	Error string `json:"error,omitempty"`
}

// analyzeCmd creates the 'analyze' command
func analyzeCmd(a *app) *cobra.Command {
	var (
		target  string
		jsonOut bool
		workers int
		opt     optimizationFlags
	)

	cmd := &cobra.Command{
		Use:   "analyze [path...]",
		Short: "Review animation components for performance, accessibility and bundle size",
		Long: `Analyze component files and directories in parallel.

Each file's framework is detected from its extension (.jsx/.tsx react,
.vue vue, .js/.ts js) unless --framework is given. node_modules, dist and
similar directories are skipped.

Examples:
  plume analyze src/components
  plume analyze Card.jsx Modal.vue --a11y
  plume analyze . --json --workers 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}

			var fw framework.Framework
			if target != "" {
				var err error
				if fw, err = framework.Parse(target); err != nil {
					return err
				}
			}
			paths := args
			if len(paths) == 0 {
				paths = []string{"."}
			}
			files, err := pipeline.CollectFiles(paths)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				output.Info("No component files found")
				return nil
			}

			o := opt.resolve(cmd, a.cfg)
			if !o.Any() {
				o = pipeline.Optimization{Performance: true, Accessibility: true, BundleSize: true}
			}
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Workers
			}

			var reports []pipeline.FileReport
			run := func(ctx context.Context) error {
				var err error
				reports, err = a.pipeline.AnalyzeFiles(ctx, files, fw, o, workers)
				return err
			}
			if !jsonOut && cmd.ErrOrStderr() == os.Stderr && term.IsTerminal(int(os.Stderr.Fd())) {
				executor := exec.NewExecutor(nil)
				err = executor.Spin(cmd.Context(), fmt.Sprintf("Analyzing %d files", len(files)), run)
			} else {
				err = run(cmd.Context())
			}
			if err != nil {
				return err
			}

			if jsonOut {
				out := make([]jsonReport, len(reports))
				for i, r := range reports {
					out[i] = jsonReport{FileReport: r}
					if r.Err != nil {
						out[i].Error = r.Err.Error()
					}
				}
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else {
				printReports(reports)
			}

			failed := 0
			for _, r := range reports {
				if r.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be analyzed", failed, len(reports))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "framework", "f", "", "Treat every file as this framework")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print reports as JSON")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of parallel workers (default from config)")
	opt.register(cmd)

	return cmd
}

func printReports(reports []pipeline.FileReport) {
	bySeverity := map[optimizer.Severity]int{}
	total := 0
	for _, r := range reports {
		output.Header(fmt.Sprintf("%s (%s)", r.Path, r.Framework))
		if r.Err != nil {
			output.Error(r.Err.Error())
			continue
		}
		name := r.Component
		if name == "" {
			name = "anonymous component"
		}
		output.Step(fmt.Sprintf("%s: %d animated elements, cost %d", name, r.Animations, r.Cost.Total))
		output.Suggestions(r.Suggestions)
		for _, s := range r.Suggestions {
			bySeverity[s.Severity]++
			total++
		}
	}

	output.Info(fmt.Sprintf("Analyzed %d files: %d suggestions (%d critical, %d high, %d medium, %d low)",
		len(reports), total,
		bySeverity[optimizer.SeverityCritical], bySeverity[optimizer.SeverityHigh],
		bySeverity[optimizer.SeverityMedium], bySeverity[optimizer.SeverityLow]))
}
