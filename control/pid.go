// Package control implements the tracking controllers used to close the
// attitude loop around the grid plant.
package control

import "errors"

// Gains holds the proportional, integral and derivative terms of a PID
// controller. A zero value for a term disables it.
type Gains struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

// Parameters used to request a PID controller. These map onto the private
// fields of PID.
type PIDParams struct {
	Gains Gains `yaml:"gains"`

	UMin float64 `yaml:"umin"` // lower output clamp, default -2.0
	UMax float64 `yaml:"umax"` // upper output clamp, default +2.0

	// Decay factor applied to the integral accumulator whenever the output
	// is clamped. Must lie in (0, 1]; 1 disables anti-windup. Default 0.95.
	AntiWindup float64 `yaml:"antiwindup"`
}

// PID is a discrete-time PID controller with output clamping and
// anti-windup decay on the integral accumulator. One instance owns its
// state exclusively; it is not safe for concurrent use.
type PID struct {
	gains      Gains
	umin       float64
	umax       float64
	antiwindup float64

	// internal state
	i     float64 // integral accumulator
	prevE float64 // previous error, for the derivative term
}

// Returns a PID pointer with the requested parameters, checking for
// invalid values. Zero-valued limits and anti-windup take the defaults.
func NewPID(params PIDParams) (*PID, error) {
	p := &PID{gains: params.Gains}

	if params.UMin == 0 && params.UMax == 0 {
		params.UMin, params.UMax = -2.0, 2.0
	}
	if params.AntiWindup == 0 {
		params.AntiWindup = 0.95
	}

	if err := p.SetLimits(params.UMin, params.UMax); err != nil {
		return nil, err
	}
	if err := p.SetAntiWindup(params.AntiWindup); err != nil {
		return nil, err
	}

	return p, nil
}

// Sets the output clamp range if umin < umax.
func (p *PID) SetLimits(umin, umax float64) error {
	if umin >= umax {
		return errors.New("umin must be less than umax")
	}
	p.umin = umin
	p.umax = umax
	return nil
}

// Sets the anti-windup decay factor if it lies in (0, 1].
func (p *PID) SetAntiWindup(factor float64) error {
	if factor <= 0 || factor > 1 {
		return errors.New("antiwindup factor must be in (0, 1]")
	}
	p.antiwindup = factor
	return nil
}

// Step advances the controller by one error sample using the configured
// gains and returns the clamped control command.
func (p *PID) Step(e float64) float64 {
	return p.StepWith(e, p.gains)
}

// StepWith advances the controller by one error sample using override
// gains for this step only. The integral accumulator and previous-error
// memory are updated exactly as in Step, so a gain-suppression fault
// leaves the accumulated state intact rather than resetting it.
func (p *PID) StepWith(e float64, g Gains) float64 {
	p.i += e
	d := e - p.prevE
	p.prevE = e

	u := g.Kp*e + g.Ki*p.i + g.Kd*d
	switch {
	case u > p.umax:
		u = p.umax
		p.i *= p.antiwindup
	case u < p.umin:
		u = p.umin
		p.i *= p.antiwindup
	}
	return u
}

// Reset clears the integral accumulator and previous-error memory.
func (p *PID) Reset() {
	p.i = 0
	p.prevE = 0
}

// Returns the configured gains.
func (p *PID) Gains() Gains {
	return p.gains
}

// Returns the current value of the integral accumulator.
func (p *PID) Integral() float64 {
	return p.i
}

// Returns the configured output clamp range.
func (p *PID) Limits() (umin, umax float64) {
	return p.umin, p.umax
}
