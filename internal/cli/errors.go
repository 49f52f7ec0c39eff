package cli

import (
	"errors"
	"fmt"

	"github.com/thenoetrevino/circles/internal/auth"
	"github.com/thenoetrevino/circles/internal/models"
	"github.com/thenoetrevino/circles/internal/share"
)

var (
	// ErrNoteNotFound is returned when a note id is not on the active board
	ErrNoteNotFound = errors.New("note not found on this board")
	// ErrActionNotFound is returned when an action id is not on the note
	ErrActionNotFound = errors.New("action not found on this note")
	// ErrRemoteOnly is returned for commands that need a signed-in session
	ErrRemoteOnly = errors.New("this needs a signed-in session; local boards cannot be shared")
)

// CommandError carries the process exit code for a failed command
type CommandError struct {
	Code int
	Err  error
}

func (e *CommandError) Error() string { return e.Err.Error() }

func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode returns the exit code for an error returned by a command
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *CommandError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return Classify(err).Exit
}

// Classification is how an error is reported to the user
type Classification struct {
	Code       string
	Exit       int
	Suggestion string
}

// Classify maps domain errors to an error code, an exit code and a hint
func Classify(err error) Classification {
	switch {
	case errors.Is(err, models.ErrBoardNotFound):
		return Classification{"BOARD_NOT_FOUND", ExitNotFound, "Use 'circles board list' to see available boards"}
	case errors.Is(err, ErrNoteNotFound):
		return Classification{"NOTE_NOT_FOUND", ExitNotFound, "Use 'circles board show' to see note IDs"}
	case errors.Is(err, ErrActionNotFound):
		return Classification{"ACTION_NOT_FOUND", ExitNotFound, "Use 'circles board show' to see action IDs"}
	case errors.Is(err, models.ErrBoardExists):
		return Classification{"BOARD_EXISTS", ExitValidation, "Pick another title, or open it with 'circles board use <id>'"}
	case errors.Is(err, models.ErrNotAuthenticated), errors.Is(err, ErrRemoteOnly):
		return Classification{"NOT_SIGNED_IN", ExitUsage, "Sign in with 'circles auth login <email>'"}
	case errors.Is(err, auth.ErrInvalidCredentials):
		return Classification{"INVALID_CREDENTIALS", ExitValidation, ""}
	case errors.Is(err, auth.ErrEmailTaken):
		return Classification{"EMAIL_TAKEN", ExitValidation, "Sign in with 'circles auth login <email>' instead"}
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
		return Classification{"INVALID_INPUT", ExitValidation, ""}
	case errors.Is(err, models.ErrInvalidZone):
		return Classification{"INVALID_ZONE", ExitValidation, fmt.Sprintf("Zones are: %s, %s, %s", models.ZoneConfused, models.ZonePartial, models.ZoneClear)}
	case errors.Is(err, share.ErrInvalidLink):
		return Classification{"INVALID_LINK", ExitValidation, "Links look like <base>/board/share/<id>"}
	case errors.Is(err, models.ErrInvalidNote):
		return Classification{"INVALID_DATA", ExitDataErr, ""}
	default:
		return Classification{"ERROR", ExitError, ""}
	}
}
