package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrCancelled is returned when the user cancels at a conflict prompt.
// Nothing has been written when it is returned.
var ErrCancelled = errors.New("cancelled")

// File is one generated file.
type File struct {
	Path    string
	Content []byte
	// Mode defaults to 0644.
	Mode fs.FileMode
}

// Outcome is what happened to a file.
type Outcome int

const (
	Created Outcome = iota
	Overwritten
	Skipped
	Unchanged
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "create"
	case Overwritten:
		return "overwrite"
	case Skipped:
		return "skip"
	case Unchanged:
		return "unchanged"
	default:
		return "unknown"
	}
}

// Result reports one file.
type Result struct {
	Path     string
	Outcome  Outcome
	Size     int
	Inserted int
	Deleted  int
}

// Description is a one-line summary, e.g. "Create src/Card.tsx (234 bytes)".
func (r Result) Description() string {
	switch r.Outcome {
	case Created:
		return fmt.Sprintf("Create %s (%d bytes)", r.Path, r.Size)
	case Overwritten:
		return fmt.Sprintf("Overwrite %s (+%d -%d)", r.Path, r.Inserted, r.Deleted)
	case Skipped:
		return fmt.Sprintf("Skip %s", r.Path)
	default:
		return fmt.Sprintf("Unchanged %s", r.Path)
	}
}

// Options configures Write.
type Options struct {
	// Resolver decides conflicts. Nil makes any conflict an error.
	Resolver *Resolver
	// DryRun plans and reports without writing.
	DryRun bool
	// Out receives one line per file. Nil discards.
	Out io.Writer
}

type plan struct {
	file     File
	result   Result
	previous []byte
	existed  bool
}

// Write plans every file, then applies the plan. If a write fails the
// files already written are restored to their previous contents.
func Write(ctx context.Context, files []File, opts Options) ([]Result, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	plans := make([]plan, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := planFile(f, opts.Resolver)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	results := make([]Result, len(plans))
	for i, p := range plans {
		results[i] = p.result
	}

	if opts.DryRun {
		for _, r := range results {
			fmt.Fprintf(out, "✓ [DRY RUN] %s\n", r.Description())
		}
		return results, nil
	}

	if err := apply(ctx, plans); err != nil {
		return nil, err
	}
	for _, r := range results {
		fmt.Fprintf(out, "✓ %s\n", r.Description())
	}
	return results, nil
}

func planFile(f File, resolver *Resolver) (plan, error) {
	if f.Path == "" {
		return plan{}, fmt.Errorf("file path is empty")
	}
	if f.Content == nil {
		return plan{}, fmt.Errorf("content is nil for file: %s", f.Path)
	}
	if f.Mode == 0 {
		f.Mode = 0644
	}

	p := plan{file: f, result: Result{Path: f.Path, Outcome: Created, Size: len(f.Content)}}

	info, err := os.Stat(f.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return p, nil
	case err != nil:
		return plan{}, fmt.Errorf("cannot stat %s: %w", f.Path, err)
	case info.IsDir():
		return plan{}, fmt.Errorf("%s is a directory", f.Path)
	}

	existing, err := os.ReadFile(f.Path)
	if err != nil {
		return plan{}, fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	p.existed = true
	p.previous = existing

	if bytes.Equal(existing, f.Content) {
		p.result.Outcome = Unchanged
		return p, nil
	}
	if resolver == nil {
		return plan{}, fmt.Errorf("file already exists: %s", f.Path)
	}

	res, err := resolver.Resolve(f.Path, existing, f.Content)
	if err != nil {
		return plan{}, err
	}
	switch res {
	case Overwrite:
		p.result.Outcome = Overwritten
		p.result.Inserted, p.result.Deleted = DiffStats(existing, f.Content)
	case Skip:
		p.result.Outcome = Skipped
	default:
		return plan{}, fmt.Errorf("%s: %w", f.Path, ErrCancelled)
	}
	return p, nil
}

// apply writes the planned files, undoing earlier writes on failure.
func apply(ctx context.Context, plans []plan) error {
	var done []plan
	for _, p := range plans {
		if p.result.Outcome != Created && p.result.Outcome != Overwritten {
			continue
		}
		if err := ctx.Err(); err != nil {
			rollback(done)
			return err
		}
		if err := writeFile(p.file); err != nil {
			rollback(done)
			return err
		}
		done = append(done, p)
	}
	return nil
}

func writeFile(f File) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	if err := os.WriteFile(f.Path, f.Content, f.Mode); err != nil {
		return fmt.Errorf("failed to write file %s: %w", f.Path, err)
	}
	return nil
}

// rollback is best effort: new files are removed and overwritten files get
// their previous contents back.
func rollback(done []plan) {
	for i := len(done) - 1; i >= 0; i-- {
		p := done[i]
		if p.existed {
			_ = os.WriteFile(p.file.Path, p.previous, p.file.Mode)
		} else {
			_ = os.Remove(p.file.Path)
		}
	}
}
