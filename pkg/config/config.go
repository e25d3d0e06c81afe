// Package config loads plume.yaml. Values come from, in increasing
// priority: built-in defaults, the config file, then PLUME_* environment
// variables (a .env file in the working directory is read first).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/simonhull/firebird-suite/plume/internal/emitter"
	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/genctx"
	"github.com/simonhull/firebird-suite/plume/pkg/exec"
	"github.com/simonhull/firebird-suite/plume/pkg/logger"
)

// FileName is the config file written by "plume config init".
const FileName = "plume.yaml"

// EnvPrefix prefixes environment overrides, e.g. PLUME_FRAMEWORK=vue or
// PLUME_OPTIMIZATION_PERFORMANCE=true.
const EnvPrefix = "PLUME"

// Config represents plume.yaml
type Config struct {
	Framework    string             `yaml:"framework" mapstructure:"framework"`
	TypeScript   bool               `yaml:"typescript" mapstructure:"typescript"`
	Optimization OptimizationConfig `yaml:"optimization" mapstructure:"optimization"`
	Generate     emitter.Options    `yaml:"generate" mapstructure:"generate"`
	Formatter    FormatterConfig    `yaml:"formatter" mapstructure:"formatter"`
	// MotionModules overrides the animation package per framework,
	// e.g. {js: motion/mini}.
	MotionModules map[string]string `yaml:"motion_modules,omitempty" mapstructure:"motion_modules"`
	Cache         CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Workers       int               `yaml:"workers" mapstructure:"workers"`
	LogLevel      string            `yaml:"log_level" mapstructure:"log_level"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-" mapstructure:"-"`
}

// OptimizationConfig selects the analyzers run after generation.
type OptimizationConfig struct {
	Performance   bool `yaml:"performance" mapstructure:"performance"`
	Accessibility bool `yaml:"accessibility" mapstructure:"accessibility"`
	BundleSize    bool `yaml:"bundle_size" mapstructure:"bundle_size"`
}

// FormatterConfig describes the external code formatter.
type FormatterConfig struct {
	Enabled bool     `yaml:"enabled" mapstructure:"enabled"`
	Command string   `yaml:"command" mapstructure:"command"`
	Args    []string `yaml:"args,omitempty" mapstructure:"args"`
}

// CacheConfig sizes the generation result cache. Size 0 disables it.
type CacheConfig struct {
	Size int `yaml:"size" mapstructure:"size"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Framework: string(framework.React),
		Optimization: OptimizationConfig{
			Performance:   true,
			Accessibility: true,
			BundleSize:    true,
		},
		Generate: emitter.Options{
			Format:   true,
			Comments: true,
		},
		Formatter: FormatterConfig{
			Command: "prettier",
		},
		MotionModules: map[string]string{},
		Cache:         CacheConfig{Size: 256},
		Workers:       4,
		LogLevel:      "info",
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("framework", d.Framework)
	v.SetDefault("typescript", d.TypeScript)
	v.SetDefault("optimization.performance", d.Optimization.Performance)
	v.SetDefault("optimization.accessibility", d.Optimization.Accessibility)
	v.SetDefault("optimization.bundle_size", d.Optimization.BundleSize)
	v.SetDefault("generate.format", d.Generate.Format)
	v.SetDefault("generate.use_formatter", d.Generate.UseFormatter)
	v.SetDefault("generate.comments", d.Generate.Comments)
	v.SetDefault("generate.source_map", d.Generate.SourceMap)
	v.SetDefault("generate.minify", d.Generate.Minify)
	v.SetDefault("formatter.enabled", d.Formatter.Enabled)
	v.SetDefault("formatter.command", d.Formatter.Command)
	v.SetDefault("formatter.args", d.Formatter.Args)
	v.SetDefault("motion_modules", d.MotionModules)
	v.SetDefault("cache.size", d.Cache.Size)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("log_level", d.LogLevel)
}

// SearchPaths lists the directories searched for plume.yaml when no
// explicit path is given.
func SearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "plume"))
	}
	return paths
}

// Load reads the config. An explicit path must exist; with an empty path
// the search paths are tried and defaults are used when nothing is found.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
		v.SetConfigType("yaml")
		for _, p := range SearchPaths() {
			v.AddConfigPath(p)
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()
	if cfg.MotionModules == nil {
		cfg.MotionModules = map[string]string{}
	}

	if err := cfg.Validate(); err != nil {
		if cfg.Source != "" {
			return nil, fmt.Errorf("%s: %w", cfg.Source, err)
		}
		return nil, err
	}
	return &cfg, nil
}

// LoadEnv reads .env style files into the process environment. Missing
// files are skipped and variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks every enumerated value.
func (c *Config) Validate() error {
	if c.Framework != "" {
		if _, err := framework.Parse(c.Framework); err != nil {
			return err
		}
	}
	for key, module := range c.MotionModules {
		if _, err := framework.Parse(key); err != nil {
			return fmt.Errorf("motion_modules: %w", err)
		}
		if strings.TrimSpace(module) == "" {
			return fmt.Errorf("motion_modules: empty module for %s", key)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative, got %d", c.Cache.Size)
	}
	if c.Formatter.Enabled && c.Formatter.Command == "" {
		return fmt.Errorf("formatter.command is required when the formatter is enabled")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// DefaultFramework returns the configured framework, React when unset.
func (c *Config) DefaultFramework() framework.Framework {
	fw, err := framework.Parse(c.Framework)
	if err != nil {
		return framework.React
	}
	return fw
}

// Capabilities returns the built-in capability table with the configured
// motion module overrides applied.
func (c *Config) Capabilities() (*framework.Capabilities, error) {
	caps := framework.Defaults()
	keys := make([]string, 0, len(c.MotionModules))
	for k := range c.MotionModules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fw, err := framework.Parse(k)
		if err != nil {
			return nil, err
		}
		caps = caps.WithMotionModule(fw, c.MotionModules[k])
	}
	return caps, nil
}

// NewFormatter returns the configured external formatter, or nil when it
// is disabled.
func (c *Config) NewFormatter(executor *exec.Executor) emitter.Formatter {
	if !c.Formatter.Enabled {
		return nil
	}
	return emitter.NewCommandFormatter(executor, emitter.FormatterCommands(c.Formatter.Command, c.Formatter.Args...))
}

// Optimizations converts the optimization section.
func (c *Config) Optimizations() genctx.Optimization {
	return genctx.Optimization{
		Performance:   c.Optimization.Performance,
		Accessibility: c.Optimization.Accessibility,
		BundleSize:    c.Optimization.BundleSize,
	}
}

// Level returns the configured log level.
func (c *Config) Level() logger.Level {
	level, _ := logger.ParseLevel(c.LogLevel)
	return level
}

// Save writes configuration to a YAML file
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
