package events

import (
	"context"
	"errors"
	"os"
	"syscall"
)

// ErrorCode says why live board updates are unavailable
type ErrorCode int

const (
	ErrSocketNotFound ErrorCode = iota
	ErrSocketPermission
	ErrDaemonNotRunning
	ErrConnectionRefused
	ErrConnectTimeout
	ErrClientUnusable
)

func (c ErrorCode) String() string {
	switch c {
	case ErrSocketNotFound:
		return "socket_not_found"
	case ErrSocketPermission:
		return "socket_permission"
	case ErrDaemonNotRunning:
		return "daemon_not_running"
	case ErrConnectionRefused:
		return "connection_refused"
	case ErrConnectTimeout:
		return "connect_timeout"
	case ErrClientUnusable:
		return "client_unusable"
	default:
		return "unknown"
	}
}

// DaemonError explains a failed daemon connection. Boards still save; only
// changes made by other processes stop showing up live.
type DaemonError struct {
	Code    ErrorCode
	Message string
	Hint    string
	Err     error
}

func (e *DaemonError) Error() string {
	if e.Hint != "" {
		return e.Message + ". " + e.Hint
	}
	return e.Message
}

func (e *DaemonError) Unwrap() error { return e.Err }

// Retryable reports whether reconnecting later may succeed without the
// user changing anything
func (e *DaemonError) Retryable() bool {
	return e.Code == ErrConnectionRefused || e.Code == ErrConnectTimeout
}

type daemonErrorRule struct {
	match   func(error) bool
	code    ErrorCode
	message string
	hint    string
}

const startHint = "Start it with circles-daemon to see other sessions' board edits live"

var daemonErrorRules = []daemonErrorRule{
	{
		match:   func(err error) bool { return errors.Is(err, ErrNilClient) || errors.Is(err, ErrClientClosed) },
		code:    ErrClientUnusable,
		message: "Live update client is not available",
	},
	{
		match:   func(err error) bool { return errors.Is(err, os.ErrNotExist) },
		code:    ErrSocketNotFound,
		message: "No board relay socket",
		hint:    startHint,
	},
	{
		match:   func(err error) bool { return errors.Is(err, os.ErrPermission) },
		code:    ErrSocketPermission,
		message: "Board relay socket is not accessible",
		hint:    "Check the permissions of the socket directory (chmod 700 ~/.circles/)",
	},
	{
		match:   func(err error) bool { return errors.Is(err, syscall.ECONNREFUSED) },
		code:    ErrConnectionRefused,
		message: "Board relay refused the connection",
		hint:    "It may have crashed. " + startHint,
	},
	{
		match:   func(err error) bool { return errors.Is(err, context.DeadlineExceeded) },
		code:    ErrConnectTimeout,
		message: "Board relay did not answer in time",
		hint:    "Edits are saved; live updates resume on the next command",
	},
}

// ClassifyDaemonError maps a connect failure to a DaemonError
func ClassifyDaemonError(err error) *DaemonError {
	if err == nil {
		return nil
	}
	for _, rule := range daemonErrorRules {
		if rule.match(err) {
			return &DaemonError{Code: rule.code, Message: rule.message, Hint: rule.hint, Err: err}
		}
	}
	return &DaemonError{
		Code:    ErrDaemonNotRunning,
		Message: "Board relay not running",
		Hint:    startHint,
		Err:     err,
	}
}
