package restart

import (
	"github.com/snek5000/snekctl/internal/params"
)

// TimeStepping overrides the [GENERAL] time stepping of a restart. Nil fields
// are left untouched.
type TimeStepping struct {
	EndTime      *float64
	AddToEndTime *float64
	NumSteps     *int
}

// Validate rejects contradictory or negative overrides.
func (ts TimeStepping) Validate() error {
	if ts.EndTime != nil && ts.AddToEndTime != nil {
		return configurationError("options end-time and add-to-end-time are mutually exclusive")
	}
	if ts.EndTime != nil && *ts.EndTime < 0 {
		return configurationError("end-time must not be negative")
	}
	if ts.NumSteps != nil && *ts.NumSteps < 0 {
		return configurationError("num-steps must not be negative")
	}
	return nil
}

// Apply writes the overrides into p.
func (ts TimeStepping) Apply(p *params.Parameters) error {
	if err := ts.Validate(); err != nil {
		return err
	}
	general := &p.Nek.General
	switch {
	case ts.EndTime != nil:
		general.EndTime = *ts.EndTime
	case ts.AddToEndTime != nil:
		general.EndTime += *ts.AddToEndTime
	}
	if ts.NumSteps != nil {
		general.NumSteps = *ts.NumSteps
	}
	return nil
}

// IsZero reports whether no override is set.
func (ts TimeStepping) IsZero() bool {
	return ts.EndTime == nil && ts.AddToEndTime == nil && ts.NumSteps == nil
}
