package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/plume"
	"github.com/simonhull/firebird-suite/plume/internal/cache"
	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/pipeline"
	"github.com/simonhull/firebird-suite/plume/pkg/config"
	"github.com/simonhull/firebird-suite/plume/pkg/exec"
	"github.com/simonhull/firebird-suite/plume/pkg/logger"
	"github.com/simonhull/firebird-suite/plume/pkg/output"
)

// app is the state shared by the commands of one invocation. It is built
// lazily so "config init" works next to a broken plume.yaml.
type app struct {
	configPath string
	verbose    bool

	cfg       *config.Config
	log       logger.Logger
	pipeline  *pipeline.Pipeline
	generator cache.Generator
	memo      *cache.Memo
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.pipeline != nil {
		return nil
	}
	if err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	level := cfg.Level()
	if a.verbose {
		level = logger.LevelDebug
	}
	log := logger.NewLogger(level, cmd.ErrOrStderr())
	logger.SetDefault(log)

	caps, err := cfg.Capabilities()
	if err != nil {
		return err
	}
	executor := exec.NewExecutor(&exec.Options{Stdout: io.Discard, Stderr: cmd.ErrOrStderr()})

	a.cfg = cfg
	a.log = log
	a.pipeline = pipeline.New(pipeline.Config{
		Capabilities: caps,
		Formatter:    cfg.NewFormatter(executor),
		Logger:       log,
	})
	a.generator = a.pipeline
	if cfg.Cache.Size > 0 {
		memo, err := cache.New(a.pipeline, cfg.Cache.Size, log)
		if err != nil {
			return err
		}
		a.memo = memo
		a.generator = memo
	}

	if cfg.Source != "" {
		log.Debug("loaded config", logger.F("path", cfg.Source))
	}
	return nil
}

// RootCmd creates and returns the root command for the Plume CLI
func RootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "plume",
		Short: "Framework-aware animation component generator",
		Long: `Plume turns animation components into idiomatic React, Vue or vanilla JS.

It parses a component, rewrites it for the target framework, and reviews
the result for performance, accessibility and bundle size:
• Generate components from source files or the built-in templates
• Convert components between frameworks
• Analyze whole directories in parallel`,
		Version:       plume.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetWriter(cmd.ErrOrStderr())
			output.SetVerbose(a.verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to plume.yaml (default: ./plume.yaml, then ~/.config/plume)")

	cmd.AddCommand(generateCmd(a))
	cmd.AddCommand(analyzeCmd(a))
	cmd.AddCommand(optimizeCmd(a))
	cmd.AddCommand(templatesCmd())
	cmd.AddCommand(configCmd(a))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Plume v%s\n", plume.Version)
		},
	})

	return cmd
}

// Execute runs the root command
func Execute() error {
	err := RootCmd().Execute()
	if err != nil {
		output.Error(err.Error())
	}
	return err
}

// optimizationFlags are the --perf, --a11y and --bundle switches. When none
// is given the config decides.
type optimizationFlags struct {
	perf, a11y, bundle bool
}

func (f *optimizationFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.perf, "perf", false, "Run the performance analyzer")
	cmd.Flags().BoolVar(&f.a11y, "a11y", false, "Run the accessibility analyzer")
	cmd.Flags().BoolVar(&f.bundle, "bundle", false, "Run the bundle size analyzer")
}

func (f *optimizationFlags) resolve(cmd *cobra.Command, cfg *config.Config) pipeline.Optimization {
	flags := cmd.Flags()
	if !flags.Changed("perf") && !flags.Changed("a11y") && !flags.Changed("bundle") {
		return cfg.Optimizations()
	}
	return pipeline.Optimization{Performance: f.perf, Accessibility: f.a11y, BundleSize: f.bundle}
}

// readSource reads a file, or stdin when path is empty or "-".
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// sourceFramework picks the framework a source is written in: the flag,
// then the file extension, then fallback.
func sourceFramework(flag, path string, fallback framework.Framework) (framework.Framework, error) {
	if flag != "" {
		return framework.Parse(flag)
	}
	if fw, ok := pipeline.DetectFramework(path); ok {
		return fw, nil
	}
	return fallback, nil
}

// outputPath resolves --out. A directory (existing, or written with a
// trailing separator) receives <Component><ext>.
func outputPath(out, component string, capability *framework.Capability, typescript bool) string {
	isDir := strings.HasSuffix(out, "/") || strings.HasSuffix(out, string(filepath.Separator))
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		isDir = true
	}
	if !isDir {
		return out
	}
	if component == "" {
		component = "AnimatedComponent"
	}
	return filepath.Join(out, component+capability.FileExt(typescript))
}
