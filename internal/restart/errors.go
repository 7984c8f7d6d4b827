package restart

import (
	"errors"
	"fmt"

	"github.com/snek5000/snekctl/internal/simdir"
)

// Kind classifies restart failures.
type Kind int

const (
	// KindConfiguration reports contradictory options.
	KindConfiguration Kind = iota + 1
	// KindRestartState reports a directory whose status forbids a restart.
	KindRestartState
	// KindRestartSource reports a missing or invalid restart source.
	KindRestartSource
	// KindResolution reports parameters or a solver that could not be resolved.
	KindResolution
)

// Sentinels matching each kind with errors.Is.
var (
	ErrConfiguration = errors.New("invalid restart configuration")
	ErrRestartState  = errors.New("simulation cannot be restarted")
	ErrRestartSource = errors.New("restart source unavailable")
	ErrResolution    = errors.New("simulation could not be resolved")
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindRestartState:
		return "restart-state"
	case KindRestartSource:
		return "restart-source"
	case KindResolution:
		return "resolution"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindRestartState:
		return ErrRestartState
	case KindRestartSource:
		return ErrRestartSource
	case KindResolution:
		return ErrResolution
	default:
		return nil
	}
}

// Error is returned by Loader.Load. Status is only meaningful for
// KindRestartState.
type Error struct {
	Kind   Kind
	Status simdir.Status
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func configurationError(msg string) error {
	return &Error{Kind: KindConfiguration, Msg: msg}
}

func stateError(status simdir.Status) error {
	return &Error{Kind: KindRestartState, Status: status, Msg: status.Summary()}
}

func sourceError(format string, args ...any) error {
	return &Error{Kind: KindRestartSource, Msg: fmt.Sprintf(format, args...)}
}

func resolutionError(msg string, err error) error {
	return &Error{Kind: KindResolution, Msg: msg, Err: err}
}
