package cli

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	// Use for: Normal, successful command execution.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: Store errors, daemon errors, unexpected failures,
	// or any error that doesn't fit the specific categories below.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing required flags, invalid flag combinations,
	// or a command that needs a signed-in session.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Use for: Board not found (or not visible), note not found, action not
	// found, or any case where a resource ID doesn't exist.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: Board content that breaks note invariants or cannot be decoded.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: Invalid zone names, bad credentials, malformed emails or share
	// links, or any case where input fails validation rules.
	ExitValidation = 5
)
