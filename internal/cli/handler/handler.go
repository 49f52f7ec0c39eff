// Package handler provides command execution abstraction to reduce boilerplate
package handler

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/thenoetrevino/circles/internal/cli"
)

// Handler defines the interface for command execution
type Handler interface {
	// Execute runs the command against the CLI's App with parsed arguments
	Execute(ctx context.Context, c *cli.CLI, args *Arguments) (any, error)
}

// HandlerFunc adapts a function to Handler
type HandlerFunc func(ctx context.Context, c *cli.CLI, args *Arguments) (any, error)

// Execute calls f
func (f HandlerFunc) Execute(ctx context.Context, c *cli.CLI, args *Arguments) (any, error) {
	return f(ctx, c, args)
}

// Arguments captures parsed CLI arguments and flags
type Arguments struct {
	Flags map[string]any
	Args  []string
	cmd   *cobra.Command
}

// GetCmd returns the cobra command for access to flag parsing utilities
func (a *Arguments) GetCmd() *cobra.Command {
	return a.cmd
}

// Command wraps common command execution logic: it builds (or borrows) the
// CLI, runs the handler, closes the CLI and formats the result or the error.
// Returns a cobra RunE compatible function
func Command(handler Handler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		formatter := cli.NewFormatter(cmd)

		c, err := cli.GetCLIFromContext(ctx)
		if err != nil {
			return formatter.Fail(err)
		}

		arguments := &Arguments{
			Flags: parseFlagsToMap(cmd),
			Args:  args,
			cmd:   cmd,
		}

		result, err := handler.Execute(ctx, c, arguments)
		if closeErr := c.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			return formatter.Fail(err)
		}

		// Common output formatting
		return formatter.Success(result)
	}
}

// Func is Command for a plain function
func Func(fn func(ctx context.Context, c *cli.CLI, args *Arguments) (any, error)) func(*cobra.Command, []string) error {
	return Command(HandlerFunc(fn))
}

// parseFlagsToMap converts cobra command flags to a map
func parseFlagsToMap(cmd *cobra.Command) map[string]any {
	flags := make(map[string]any)

	// Visit all flags that were explicitly set
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Value.Type() {
		case "string":
			if v, err := cmd.Flags().GetString(f.Name); err == nil {
				flags[f.Name] = v
			}
		case "int":
			if v, err := cmd.Flags().GetInt(f.Name); err == nil {
				flags[f.Name] = v
			}
		case "bool":
			if v, err := cmd.Flags().GetBool(f.Name); err == nil {
				flags[f.Name] = v
			}
		default:
			slog.Debug("unsupported flag type", "flag", f.Name, "type", f.Value.Type())
		}
	})

	return flags
}

// GetString retrieves a string flag with default
func (a *Arguments) GetString(name string, defaultVal string) string {
	v, ok := a.Flags[name]
	if !ok {
		return defaultVal
	}
	val, ok := v.(string)
	if !ok {
		return defaultVal
	}
	return val
}

// GetBool retrieves a bool flag
func (a *Arguments) GetBool(name string) bool {
	v, ok := a.Flags[name]
	if !ok {
		return false
	}
	val, ok := v.(bool)
	if !ok {
		return false
	}
	return val
}

// Has reports whether a flag was set explicitly
func (a *Arguments) Has(name string) bool {
	_, ok := a.Flags[name]
	return ok
}
