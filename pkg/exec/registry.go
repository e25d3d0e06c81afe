package exec

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// CommandWrapper is a named external tool that transforms text: it receives
// input on stdin and answers on stdout.
type CommandWrapper interface {
	// Name returns the command name for registry lookup
	Name() string
	// Description returns a brief description of what the command does
	Description() string
	// Execute runs the command with the given context and executor
	Execute(ctx context.Context, exec *Executor, input string) (string, error)
}

// CommandRegistry manages registered command wrappers
type CommandRegistry struct {
	mu       sync.RWMutex
	commands map[string]CommandWrapper
}

// NewCommandRegistry creates a new command registry instance
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{
		commands: make(map[string]CommandWrapper),
	}
}

// Register adds a command wrapper to the registry
func (r *CommandRegistry) Register(cmd CommandWrapper) error {
	if cmd == nil {
		return fmt.Errorf("cannot register nil command")
	}

	name := cmd.Name()
	if name == "" {
		return fmt.Errorf("cannot register command with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[name]; exists {
		return fmt.Errorf("command '%s' is already registered", name)
	}

	r.commands[name] = cmd
	return nil
}

// Get retrieves a command wrapper by name
func (r *CommandRegistry) Get(name string) (CommandWrapper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.commands[name]
	return cmd, ok
}

// List returns all registered command names in sorted order
func (r *CommandRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Has checks if a command is registered
func (r *CommandRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.commands[name]
	return exists
}

// Execute runs a command by name if it exists
func (r *CommandRegistry) Execute(ctx context.Context, name string, exec *Executor, input string) (string, error) {
	cmd, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("command '%s' not found in registry", name)
	}
	return cmd.Execute(ctx, exec, input)
}

// Command is a CommandWrapper built with a fluent API.
type Command struct {
	name        string
	description string
	program     string
	args        []string
}

// NewCommand creates a command registered as name that runs program.
func NewCommand(name, program string) *Command {
	return &Command{name: name, program: program, args: []string{}}
}

// WithArgs adds arguments to the command
func (c *Command) WithArgs(args ...string) *Command {
	c.args = append(c.args, args...)
	return c
}

// WithDescription sets the registry description
func (c *Command) WithDescription(description string) *Command {
	c.description = description
	return c
}

func (c *Command) Name() string { return c.name }

func (c *Command) Description() string {
	if c.description != "" {
		return c.description
	}
	return c.String()
}

// Execute pipes input through the program.
func (c *Command) Execute(ctx context.Context, exec *Executor, input string) (string, error) {
	return exec.Output(ctx, input, c.program, c.args...)
}

// String returns the command line for debugging
func (c *Command) String() string {
	parts := []string{c.program}
	parts = append(parts, c.args...)
	return strings.Join(parts, " ")
}
