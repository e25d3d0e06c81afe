package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/simonhull/firebird-suite/plume/internal/framework"
	"github.com/simonhull/firebird-suite/plume/internal/optimizer"
	"github.com/simonhull/firebird-suite/plume/internal/parser"
	"github.com/simonhull/firebird-suite/plume/pkg/logger"
)

// FileReport is the analysis of one source file.
type FileReport struct {
	Path        string                 `json:"path"`
	Framework   framework.Framework    `json:"framework"`
	Component   string                 `json:"component,omitempty"`
	Animations  int                    `json:"animations"`
	Suggestions []optimizer.Suggestion `json:"suggestions"`
	Cost        optimizer.Cost         `json:"cost"`
	Err         error                  `json:"-"`
}

// fileJob is one file queued for analysis. index keeps reports in input
// order.
type fileJob struct {
	index int
	path  string
}

type fileResult struct {
	index  int
	report FileReport
}

// AnalyzeFiles analyzes files with a pool of workers. A zero framework is
// detected from each file's extension. Files that cannot be read or parsed
// get a report with Err set; the batch only fails when ctx is done.
func (p *Pipeline) AnalyzeFiles(ctx context.Context, files []string, fw framework.Framework, opt Optimization, workers int) ([]FileReport, error) {
	if fw != "" {
		if _, err := p.caps.Get(fw); err != nil {
			return nil, err
		}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	p.log.Info("analyzing files",
		logger.F("files", len(files)),
		logger.F("workers", workers))

	jobs := make(chan fileJob, len(files))
	results := make(chan fileResult, len(files))
	var wg sync.WaitGroup

	suite := optimizer.NewSuite(p.caps, opt)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go p.analyzeWorker(ctx, suite, fw, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for i, path := range files {
			select {
			case <-ctx.Done():
				return
			case jobs <- fileJob{index: i, path: path}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]fileResult, 0, len(files))
	for r := range results {
		if r.report.Err != nil {
			p.log.Warn("failed to analyze file",
				logger.F("path", r.report.Path),
				logger.Err(r.report.Err))
		}
		collected = append(collected, r)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].index < collected[j].index })
	reports := make([]FileReport, len(collected))
	for i, r := range collected {
		reports[i] = r.report
	}

	p.log.Info("analysis complete", logger.F("files", len(reports)))
	return reports, nil
}

func (p *Pipeline) analyzeWorker(ctx context.Context, suite *optimizer.Suite, fw framework.Framework, jobs <-chan fileJob, results chan<- fileResult, wg *sync.WaitGroup) {
	defer wg.Done()
	bundle := optimizer.NewBundleSize(p.caps)

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		results <- fileResult{index: job.index, report: p.analyzeFile(suite, bundle, fw, job.path)}
	}
}

func (p *Pipeline) analyzeFile(suite *optimizer.Suite, bundle *optimizer.BundleSize, fw framework.Framework, path string) FileReport {
	report := FileReport{Path: path, Framework: fw, Suggestions: make([]optimizer.Suggestion, 0)}
	if report.Framework == "" {
		detected, ok := DetectFramework(path)
		if !ok {
			report.Err = fmt.Errorf("cannot detect framework for %s", path)
			return report
		}
		report.Framework = detected
	}

	data, err := os.ReadFile(path)
	if err != nil {
		report.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return report
	}
	code := string(data)

	opts := parser.Options{Framework: report.Framework, TypeScript: IsTypeScript(path)}
	comp, err := p.parser.Parse(code, opts)
	if err != nil {
		report.Err = fmt.Errorf("%s: %w", path, err)
		return report
	}
	report.Component = comp.ComponentName
	report.Animations = len(parser.ExtractAnimatedElements(comp))
	report.Suggestions = suite.Analyze(code, report.Framework)
	// the framework was validated above
	report.Cost, _ = bundle.EstimateCost(code, report.Framework)
	return report
}

// DetectFramework maps a file extension to the framework that owns it.
func DetectFramework(path string) (framework.Framework, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vue":
		return framework.Vue, true
	case ".jsx", ".tsx":
		return framework.React, true
	case ".js", ".ts", ".mjs", ".mts":
		return framework.JS, true
	}
	return "", false
}

// IsTypeScript reports whether path has a TypeScript extension.
func IsTypeScript(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".mts":
		return true
	}
	return false
}

// ignoreDirs are never descended into by CollectFiles.
var ignoreDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	".git":         true,
	".svn":         true,
	"dist":         true,
	"build":        true,
	".next":        true,
	".nuxt":        true,
	"coverage":     true,
	".idea":        true,
	".vscode":      true,
}

// CollectFiles expands paths into the component files beneath them. Files
// named explicitly are kept even when their extension is unknown.
func CollectFiles(paths []string) ([]string, error) {
	var files []string
	seen := map[string]bool{}
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil // skip unreadable entries
			}
			if d.IsDir() {
				if path != root && ignoreDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".d.ts") {
				return nil
			}
			if _, ok := DetectFramework(path); ok {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}
