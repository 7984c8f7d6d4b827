// Package simdir classifies simulation directories by how safe they are to
// restart.
package simdir

import (
	"fmt"
	"strings"
)

// Status is the restart readiness of a simulation directory.
type Status int

const (
	StatusOK Status = iota
	StatusResetContent
	StatusPartialContent
	StatusNotFound
	StatusLocked
	StatusTooEarly
)

// Statuses lists every status in detection priority order, lowest first.
var Statuses = []Status{
	StatusOK,
	StatusResetContent,
	StatusPartialContent,
	StatusNotFound,
	StatusLocked,
	StatusTooEarly,
}

// Code returns the HTTP-like numeric code of the status.
func (s Status) Code() int {
	switch s {
	case StatusOK:
		return 200
	case StatusResetContent:
		return 205
	case StatusPartialContent:
		return 206
	case StatusNotFound:
		return 404
	case StatusLocked:
		return 423
	case StatusTooEarly:
		return 425
	default:
		return 0
	}
}

// Message returns the fixed human readable explanation. Downstream scripts
// match on these strings, keep them stable.
func (s Status) Message() string {
	switch s {
	case StatusOK:
		return "OK: All prerequisities satisfied to restart."
	case StatusResetContent:
		return "Reset Content: Multi-file restart found. Some field files exist. " +
			"Restarting in the same session would overwrite files. " +
			"Ensure current session is archived or restart in a new session."
	case StatusPartialContent:
		return "Partial Content: No multi-file restart found. Some field files exist." +
			"Ensure current session is archived or restart in a new session."
	case StatusNotFound:
		return "Not Found: SIZE and/or nek5000 is missing."
	case StatusLocked:
		return "Locked: The path is currently locked by snakemake. " +
			"Execute `snakemake --unlock` function snek5000.make.unlock."
	case StatusTooEarly:
		return "Too Early: Seems like snakemake was never executed."
	default:
		return "Unknown status"
	}
}

// String returns the canonical upper case token.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusResetContent:
		return "RESET_CONTENT"
	case StatusPartialContent:
		return "PARTIAL_CONTENT"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusLocked:
		return "LOCKED"
	case StatusTooEarly:
		return "TOO_EARLY"
	default:
		return "UNKNOWN"
	}
}

// IsBlocking reports whether the status forbids a restart.
func (s Status) IsBlocking() bool {
	return s.Code() >= 400
}

// Summary renders "<code>: <message>".
func (s Status) Summary() string {
	return fmt.Sprintf("%d: %s", s.Code(), s.Message())
}

// ParseStatus maps a token produced by String back to its status.
func ParseStatus(token string) (Status, error) {
	for _, s := range Statuses {
		if strings.EqualFold(s.String(), token) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", token)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
