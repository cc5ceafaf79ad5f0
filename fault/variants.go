package fault

import (
	"errors"
	"math/rand/v2"

	"github.com/skyfieldlabs/attsim/control"
)

// Parameters used to request a gain-suppression fault.
type GainSuppressionParams struct {
	Start int `yaml:"start" mapstructure:"start"`
	End   int `yaml:"end" mapstructure:"end"`

	// Which gains to zero while the window is active. If neither is set,
	// both are suppressed.
	SuppressIntegral   bool `yaml:"suppress_integral" mapstructure:"suppress_integral"`
	SuppressDerivative bool `yaml:"suppress_derivative" mapstructure:"suppress_derivative"`
}

// GainSuppression zeroes the controller's integral and/or derivative
// gains during the failure window. The controller's accumulated state is
// untouched: this is a partial-state fault, not a reset.
type GainSuppression struct {
	Base

	suppressI bool
	suppressD bool
}

// Returns a GainSuppression pointer with the requested parameters,
// checking for invalid values.
func NewGainSuppression(params GainSuppressionParams) (*GainSuppression, error) {
	f := &GainSuppression{
		suppressI: params.SuppressIntegral,
		suppressD: params.SuppressDerivative,
	}
	if !f.suppressI && !f.suppressD {
		f.suppressI = true
		f.suppressD = true
	}
	if err := f.setWindow(params.Start, params.End); err != nil {
		return nil, err
	}
	f.typeName = "gain_suppression"
	return f, nil
}

// Gains returns the configured gains with the suppressed terms zeroed
// while the window is active.
func (f *GainSuppression) Gains(t int, g control.Gains) control.Gains {
	if !f.Active(t) {
		return g
	}
	if f.suppressI {
		g.Ki = 0
	}
	if f.suppressD {
		g.Kd = 0
	}
	return g
}

// Parameters used to request a sensor-bias fault.
type SensorBiasParams struct {
	Start int `yaml:"start" mapstructure:"start"`
	End   int `yaml:"end" mapstructure:"end"`

	Magnitude float64 `yaml:"magnitude" mapstructure:"magnitude"` // absolute bias added to the measured error
}

// SensorBias injects a constant bias of random sign into the measured
// error during the failure window. The sign is drawn once in Prepare so
// the bias is constant across the window and reproducible per episode.
type SensorBias struct {
	Base

	magnitude float64
	sign      float64
}

// Returns a SensorBias pointer with the requested parameters, checking
// for invalid values.
func NewSensorBias(params SensorBiasParams) (*SensorBias, error) {
	if params.Magnitude < 0 {
		return nil, errors.New("sensor bias magnitude must be greater than or equal to 0")
	}
	f := &SensorBias{magnitude: params.Magnitude, sign: 1.0}
	if err := f.setWindow(params.Start, params.End); err != nil {
		return nil, err
	}
	f.typeName = "sensor_bias"
	return f, nil
}

// Prepare draws the bias sign, +1 or -1 with equal probability.
func (f *SensorBias) Prepare(r *rand.Rand) {
	if r.Float64() < 0.5 {
		f.sign = -1.0
	} else {
		f.sign = 1.0
	}
}

// MeasuredError adds the signed bias while the window is active.
func (f *SensorBias) MeasuredError(t int, e float64) float64 {
	if !f.Active(t) {
		return e
	}
	return e + f.sign*f.magnitude
}

// Returns the resolved bias, signed. Zero until Prepare has run only if
// the magnitude itself is zero.
func (f *SensorBias) Bias() float64 {
	return f.sign * f.magnitude
}

// Parameters used to request an actuator-saturation fault.
type ActuatorSaturationParams struct {
	Start int `yaml:"start" mapstructure:"start"`
	End   int `yaml:"end" mapstructure:"end"`

	Limit float64 `yaml:"limit" mapstructure:"limit"` // tightened symmetric saturation limit
}

// ActuatorSaturation tightens the actuator's saturation limit during the
// failure window.
type ActuatorSaturation struct {
	Base

	limit float64
}

// Returns an ActuatorSaturation pointer with the requested parameters,
// checking for invalid values.
func NewActuatorSaturation(params ActuatorSaturationParams) (*ActuatorSaturation, error) {
	if params.Limit <= 0 {
		return nil, errors.New("actuator saturation limit must be greater than 0")
	}
	f := &ActuatorSaturation{limit: params.Limit}
	if err := f.setWindow(params.Start, params.End); err != nil {
		return nil, err
	}
	f.typeName = "actuator_sat"
	return f, nil
}

// ActuatorLimit returns the tighter of the configured fault limit and the
// nominal limit while the window is active.
func (f *ActuatorSaturation) ActuatorLimit(t int, limit float64) float64 {
	if !f.Active(t) {
		return limit
	}
	if f.limit < limit {
		return f.limit
	}
	return limit
}
