// Package dynamics models the physical stages between the controller and
// the plant: actuator inertia and the stochastic turbulence process.
package dynamics

import "errors"

// Parameters used to request an actuator. These map onto the private
// fields of Actuator.
type ActuatorParams struct {
	Tau  float64 `yaml:"tau"`  // first-order lag time constant in steps, default 0.3
	UMax float64 `yaml:"umax"` // symmetric saturation limit, default 2.0
	Rate float64 `yaml:"rate"` // maximum output change per unit time, default 0.5
	Dt   float64 `yaml:"dt"`   // step interval, default 1.0
}

// Actuator converts a commanded control value into an effective output
// subject to rate limiting, first-order lag and saturation. Its state
// models physical inertia and is never reset mid-episode.
type Actuator struct {
	tau  float64
	umax float64
	rate float64
	dt   float64

	u float64 // current effective output
}

// Returns an Actuator pointer with the requested parameters, checking for
// invalid values. Zero-valued parameters take the defaults.
func NewActuator(params ActuatorParams) (*Actuator, error) {
	if params.Tau == 0 {
		params.Tau = 0.3
	}
	if params.UMax == 0 {
		params.UMax = 2.0
	}
	if params.Rate == 0 {
		params.Rate = 0.5
	}
	if params.Dt == 0 {
		params.Dt = 1.0
	}

	if params.Tau < 0 {
		return nil, errors.New("tau must be greater than 0")
	}
	if params.UMax < 0 {
		return nil, errors.New("umax must be greater than 0")
	}
	if params.Rate < 0 {
		return nil, errors.New("rate must be greater than 0")
	}
	if params.Dt < 0 {
		return nil, errors.New("dt must be greater than 0")
	}

	return &Actuator{
		tau:  params.Tau,
		umax: params.UMax,
		rate: params.Rate,
		dt:   params.Dt,
	}, nil
}

// Step applies one commanded control value and returns the effective
// output under the configured saturation limit.
func (a *Actuator) Step(uCmd float64) float64 {
	return a.StepLimited(uCmd, a.umax)
}

// StepLimited applies one commanded control value under a tightened
// saturation limit (an actuator fault). Limits wider than the configured
// umax have no effect. Stages, in order: input clamp, rate limit of the
// per-step change, first-order lag toward the rate-limited command,
// output clamp.
func (a *Actuator) StepLimited(uCmd, limit float64) float64 {
	if limit <= 0 || limit > a.umax {
		limit = a.umax
	}

	uCmd = clamp(uCmd, -limit, limit)

	du := clamp(uCmd-a.u, -a.rate*a.dt, a.rate*a.dt)
	target := a.u + du

	// Lag factor capped at 1 so small time constants degrade to tracking
	// the rate-limited command rather than an unstable filter.
	alpha := a.dt / a.tau
	if alpha > 1 {
		alpha = 1
	}
	a.u += (target - a.u) * alpha

	a.u = clamp(a.u, -limit, limit)
	return a.u
}

// Returns the current effective output.
func (a *Actuator) Output() float64 {
	return a.u
}

// Returns the configured saturation limit.
func (a *Actuator) UMax() float64 {
	return a.umax
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
