package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/pipeline"
	"github.com/simonhull/firebird-suite/plume/internal/templates"
	"github.com/simonhull/firebird-suite/plume/pkg/files"
	"github.com/simonhull/firebird-suite/plume/pkg/logger"
	"github.com/simonhull/firebird-suite/plume/pkg/output"
)

// generateCmd creates the 'generate' command
func generateCmd(a *app) *cobra.Command {
	var (
		target, from, templateID, name, out               string
		typescript, optimize, jsonOut                     bool
		format, useFormatter, comments, minify, sourceMap bool
		force, skip, diff, dryRun                         bool
		opt                                               optimizationFlags
	)

	cmd := &cobra.Command{
		Use:   "generate [file]",
		Short: "Generate an animation component for a framework",
		Long: `Generate an animation component from a source file, stdin or a template.

The source framework is taken from --from, then the file extension. The
target defaults to the configured framework.

Examples:
  plume generate Card.jsx --framework vue
  plume generate --template fade-in --name HeroBanner --out src/components/
  cat Card.tsx | plume generate --framework js --typescript --optimize
  plume generate Card.jsx -f react --a11y --perf --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			resolver, err := files.NewResolver(force, skip, diff)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			req := pipeline.Request{
				Framework:    a.cfg.DefaultFramework(),
				TypeScript:   a.cfg.TypeScript,
				Options:      a.cfg.Generate,
				Optimization: opt.resolve(cmd, a.cfg),
				Optimize:     optimize,
			}
			req.Options.UseFormatter = a.cfg.Formatter.Enabled
			if target != "" {
				if req.Framework, err = framework.Parse(target); err != nil {
					return err
				}
			}
			if flags.Changed("typescript") {
				req.TypeScript = typescript
			}
			for flag, field := range map[string]*bool{
				"format":     &req.Options.Format,
				"formatter":  &req.Options.UseFormatter,
				"comments":   &req.Options.Comments,
				"minify":     &req.Options.Minify,
				"source-map": &req.Options.SourceMap,
			} {
				if flags.Changed(flag) {
					v, _ := flags.GetBool(flag)
					*field = v
				}
			}

			if templateID != "" {
				if len(args) > 0 {
					return fmt.Errorf("--template cannot be combined with a source file")
				}
				if err := templateSource(&req, templateID, name); err != nil {
					return err
				}
			} else {
				path := ""
				if len(args) > 0 {
					path = args[0]
				}
				if req.Source, err = readSource(cmd, path); err != nil {
					return err
				}
				if req.SourceFramework, err = sourceFramework(from, path, req.Framework); err != nil {
					return err
				}
				if !flags.Changed("typescript") && pipeline.IsTypeScript(path) {
					req.TypeScript = true
				}
			}

			output.Verbose(fmt.Sprintf("Generating %s component (source: %s, typescript: %t)", req.Framework, req.SourceFramework, req.TypeScript))
			resp := a.generator.Generate(cmd.Context(), req)
			if a.memo != nil {
				s := a.memo.Stats()
				a.log.Debug("cache", logger.F("hits", s.Hits), logger.F("misses", s.Misses))
			}

			if jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
				return resp.Err()
			}
			if !resp.Success {
				return failure(resp.Error)
			}

			if out == "" {
				code := resp.Code
				if !strings.HasSuffix(code, "\n") {
					code += "\n"
				}
				fmt.Fprint(cmd.OutOrStdout(), code)
			} else {
				capability := a.pipeline.Capabilities().MustGet(resp.Framework)
				path := outputPath(out, resp.Component, capability, resp.TypeScript)
				list := []files.File{{Path: path, Content: []byte(resp.Code)}}
				if resp.Map != "" {
					list = append(list, files.File{Path: path + ".map", Content: []byte(resp.Map)})
				}
				if _, err := files.Write(cmd.Context(), list, files.Options{
					Resolver: resolver,
					DryRun:   dryRun,
					Out:      cmd.ErrOrStderr(),
				}); err != nil {
					return err
				}
				output.Success(fmt.Sprintf("Generated %s component %s", resp.Framework, resp.Component))
			}

			report(a, resp, req.Optimization)
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "framework", "f", "", "Target framework: react, vue or js (default from config)")
	cmd.Flags().StringVar(&from, "from", "", "Framework the source is written for (default: detected from the file extension)")
	cmd.Flags().StringVarP(&templateID, "template", "t", "", "Start from a built-in template (see 'plume templates list')")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Component name for --template")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file or directory instead of stdout")
	cmd.Flags().BoolVar(&typescript, "typescript", false, "Emit TypeScript")
	cmd.Flags().BoolVar(&optimize, "optimize", false, "Apply the selected analyzers' fixes to the output")
	cmd.Flags().BoolVar(&format, "format", true, "Normalize whitespace of the output")
	cmd.Flags().BoolVar(&useFormatter, "formatter", false, "Run the configured external formatter")
	cmd.Flags().BoolVar(&comments, "comments", true, "Keep comments")
	cmd.Flags().BoolVar(&minify, "minify", false, "Minify the output")
	cmd.Flags().BoolVar(&sourceMap, "source-map", false, "Emit a source map (written next to --out)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the JSON response envelope")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files without asking")
	cmd.Flags().BoolVar(&skip, "skip", false, "Keep existing files")
	cmd.Flags().BoolVar(&diff, "diff", false, "Show a diff before deciding on existing files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be written")
	opt.register(cmd)

	return cmd
}

// templateSource renders a catalog template into req. The variant for the
// target framework is preferred; any other variant is converted.
func templateSource(req *pipeline.Request, id, name string) error {
	store, err := templates.Default()
	if err != nil {
		return err
	}
	t, ok := store.Get(id, req.Framework)
	if !ok {
		if t, ok = store.Get(id, ""); !ok {
			return fmt.Errorf("unknown template %q (see 'plume templates list')", id)
		}
	}
	code, err := store.Render(t, name)
	if err != nil {
		return err
	}
	req.Source = code
	req.SourceFramework = t.Framework
	return nil
}

// report prints suggestions and the cost estimate of a response.
func report(a *app, resp *pipeline.Response, opt pipeline.Optimization) {
	if !opt.Any() {
		return
	}
	output.Suggestions(resp.Suggestions)
	if resp.Cost != nil {
		output.Cost(*resp.Cost, costFeatures(a.pipeline.Capabilities().MustGet(resp.Framework)))
	}
}

func costFeatures(capability *framework.Capability) []string {
	names := make([]string, len(capability.Costs))
	for i, c := range capability.Costs {
		names[i] = c.Feature
	}
	return names
}

// failure turns an error envelope into a readable error.
func failure(info *pipeline.ErrorInfo) error {
	if info == nil {
		return fmt.Errorf("generation failed")
	}
	if info.Line > 0 {
		msg := fmt.Sprintf("%s at line %d, column %d", info.Message, info.Line, info.Column)
		if info.Snippet != "" {
			msg += "\n" + info.Snippet
		}
		return fmt.Errorf("%s: %s", info.Code, msg)
	}
	return fmt.Errorf("%s: %s", info.Code, info.Message)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
