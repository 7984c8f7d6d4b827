// Package output renders simulation directory statuses for the terminal.
package output

import (
	"github.com/fatih/color"

	"github.com/snek5000/snekctl/internal/simdir"
)

// Status symbols using Unicode characters for visual clarity.
const (
	SymbolOK       = "✓"
	SymbolReset    = "↺"
	SymbolPartial  = "◐"
	SymbolNotFound = "✗"
	SymbolLocked   = "●"
	SymbolTooEarly = "○"
)

// StatusSymbol returns the Unicode symbol for a simulation status.
func StatusSymbol(status simdir.Status) string {
	switch status {
	case simdir.StatusOK:
		return SymbolOK
	case simdir.StatusResetContent:
		return SymbolReset
	case simdir.StatusPartialContent:
		return SymbolPartial
	case simdir.StatusNotFound:
		return SymbolNotFound
	case simdir.StatusLocked:
		return SymbolLocked
	case simdir.StatusTooEarly:
		return SymbolTooEarly
	default:
		return SymbolTooEarly
	}
}

// StatusColorize applies color formatting to a string based on the status.
// Blocking statuses are red or yellow, restartable ones green or cyan.
func StatusColorize(s string, status simdir.Status) string {
	switch status {
	case simdir.StatusOK:
		return color.GreenString(s)
	case simdir.StatusResetContent:
		return color.CyanString(s)
	case simdir.StatusPartialContent:
		return color.New(color.FgYellow).Sprint(s)
	case simdir.StatusNotFound:
		return color.RedString(s)
	case simdir.StatusLocked:
		return color.New(color.FgHiRed).Sprint(s)
	case simdir.StatusTooEarly:
		return color.New(color.Faint).Sprint(s)
	default:
		return s
	}
}
