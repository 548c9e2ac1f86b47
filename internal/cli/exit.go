package cli

import (
	"context"
	"errors"
	"fmt"

	"cogsync/internal/discord/command"
	"cogsync/internal/governor"
	customError "cogsync/pkg/errors"
)

// Process exit codes
const (
	ExitOK         = 0
	ExitFailed     = 1
	ExitConfig     = 2
	ExitFrozenTree = 70
	ExitDeadline   = 124
	ExitAborted    = 130
)

// ExitError carries the process exit code for an error.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func configError(err error) error {
	return &ExitError{Code: ExitConfig, Err: err}
}

func configErrorf(format string, args ...interface{}) error {
	return configError(fmt.Errorf(format, args...))
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	var frozenErr *command.FrozenTreeError
	var missingErr customError.MissingEnvErr
	var invalidErr customError.InvalidEnvErr
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code
	case errors.As(err, &frozenErr):
		return ExitFrozenTree
	case governor.IsAuthRejected(err):
		return ExitFailed
	case errors.Is(err, context.DeadlineExceeded):
		return ExitDeadline
	case errors.Is(err, context.Canceled):
		return ExitAborted
	case errors.As(err, &missingErr), errors.As(err, &invalidErr):
		return ExitConfig
	default:
		return ExitFailed
	}
}
