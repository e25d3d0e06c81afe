// Package exec runs external tools for Plume.
//
// It provides two components:
//
// 1. Executor - Runs system commands with context support, stdin piping and spinners
// 2. CommandRegistry - Named command wrappers, such as one formatter per framework
//
// # Basic Usage
//
//	executor := exec.NewExecutor(nil)
//	out, err := executor.Output(ctx, code, "prettier", "--parser", "babel")
//
// # Command Registry Pattern
//
// Commands receive an Executor at execution time (not construction), so
// tests can swap the executor without touching the registry:
//
//	reg := exec.NewCommandRegistry()
//	reg.Register(exec.NewCommand("format:react", "prettier").WithArgs("--parser", "babel"))
//	out, err := reg.Execute(ctx, "format:react", executor, code)
package exec
