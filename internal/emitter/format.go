package emitter

import (
	"context"

	"github.com/simonhull/firebird-suite/plume/pkg/exec"
)

// Formatter pretty-prints generated code. parser names the syntax
// (babel, babel-ts, vue, typescript).
type Formatter interface {
	Format(ctx context.Context, code, parser string) (string, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(ctx context.Context, code, parser string) (string, error)

func (f FormatterFunc) Format(ctx context.Context, code, parser string) (string, error) {
	return f(ctx, code, parser)
}

// FormatCommandName is the registry name of the formatter for parser.
func FormatCommandName(parser string) string {
	return "format:" + parser
}

// FormatterParsers lists every parser name a built-in capability asks for.
var FormatterParsers = []string{"babel", "babel-ts", "typescript", "vue"}

// FormatterCommands registers program as the formatter for every parser,
// passing args followed by "--parser <name>".
func FormatterCommands(program string, args ...string) *exec.CommandRegistry {
	reg := exec.NewCommandRegistry()
	for _, p := range FormatterParsers {
		cmd := exec.NewCommand(FormatCommandName(p), program).
			WithArgs(args...).
			WithArgs("--parser", p).
			WithDescription("format " + p + " sources with " + program)
		// names are unique per parser
		_ = reg.Register(cmd)
	}
	return reg
}

// CommandFormatter runs the registered external formatter for a parser,
// feeding code on stdin.
type CommandFormatter struct {
	executor *exec.Executor
	commands *exec.CommandRegistry
}

// NewCommandFormatter creates a formatter. A nil registry selects prettier.
func NewCommandFormatter(executor *exec.Executor, commands *exec.CommandRegistry) *CommandFormatter {
	if executor == nil {
		executor = exec.NewExecutor(nil)
	}
	if commands == nil {
		commands = FormatterCommands("prettier")
	}
	return &CommandFormatter{executor: executor, commands: commands}
}

func (f *CommandFormatter) Format(ctx context.Context, code, parser string) (string, error) {
	return f.commands.Execute(ctx, FormatCommandName(parser), f.executor, code)
}
