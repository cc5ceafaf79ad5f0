// Package fault implements the episode fault variants. Exactly one fault
// value is selected per episode and applied functionally each step: the
// orchestrator asks the fault for the effective controller gains,
// measured error and actuator limit, so no component state is mutated
// and restored around a call.
package fault

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/skyfieldlabs/attsim/control"
)

// Fault is the interface for all fault kinds.
type Fault interface {
	TypeAsString() string // Returns the fault type as a string
	Active(t int) bool    // Returns whether the fault window covers step t
	Prepare(r *rand.Rand) // Resolves any random draws once, before the episode begins

	// Per-step applications; each returns its input unchanged when the
	// fault is inactive at t or does not target that stage.
	Gains(t int, g control.Gains) control.Gains
	MeasuredError(t int, e float64) float64
	ActuatorLimit(t int, limit float64) float64
}

// Spec describes a fault in configuration. Type selects the variant; the
// remaining fields are interpreted by the selected variant.
type Spec struct {
	Type  string `yaml:"type" mapstructure:"type"`
	Start int    `yaml:"start" mapstructure:"start"`
	End   int    `yaml:"end" mapstructure:"end"`

	Magnitude float64 `yaml:"magnitude" mapstructure:"magnitude"` // sensor_bias
	Limit     float64 `yaml:"limit" mapstructure:"limit"`         // actuator_sat

	SuppressIntegral   bool `yaml:"suppress_integral" mapstructure:"suppress_integral"`     // gain_suppression
	SuppressDerivative bool `yaml:"suppress_derivative" mapstructure:"suppress_derivative"` // gain_suppression
}

// FromSpec resolves a fault spec into a Fault value. An empty or "none"
// type yields the no-op fault; an unknown type is a configuration error.
func FromSpec(s Spec) (Fault, error) {
	switch s.Type {
	case "", "none":
		return &None{}, nil
	case "gain_suppression":
		return NewGainSuppression(GainSuppressionParams{
			Start:              s.Start,
			End:                s.End,
			SuppressIntegral:   s.SuppressIntegral,
			SuppressDerivative: s.SuppressDerivative,
		})
	case "sensor_bias":
		return NewSensorBias(SensorBiasParams{
			Start:     s.Start,
			End:       s.End,
			Magnitude: s.Magnitude,
		})
	case "actuator_sat":
		return NewActuatorSaturation(ActuatorSaturationParams{
			Start: s.Start,
			End:   s.End,
			Limit: s.Limit,
		})
	default:
		return nil, fmt.Errorf("unknown failure mode: %s", s.Type)
	}
}

// Base carries the failure window shared by all fault kinds and provides
// the passthrough behaviour for stages a variant does not target.
type Base struct {
	typeName  string
	startStep int
	endStep   int
}

// Returns the fault type as a string.
func (b *Base) TypeAsString() string {
	return b.typeName
}

// Active reports whether step t falls within the failure window.
func (b *Base) Active(t int) bool {
	return t >= b.startStep && t < b.endStep
}

// Returns the failure window as [start, end) step indices.
func (b *Base) Window() (start, end int) {
	return b.startStep, b.endStep
}

// Prepare is a no-op for faults with no random draws.
func (b *Base) Prepare(_ *rand.Rand) {}

// Gains passes the configured gains through unchanged.
func (b *Base) Gains(_ int, g control.Gains) control.Gains { return g }

// MeasuredError passes the measured error through unchanged.
func (b *Base) MeasuredError(_ int, e float64) float64 { return e }

// ActuatorLimit passes the actuator limit through unchanged.
func (b *Base) ActuatorLimit(_ int, limit float64) float64 { return limit }

// setWindow validates and stores the failure window.
func (b *Base) setWindow(start, end int) error {
	if start < 0 {
		return errors.New("failure window start must be greater than or equal to 0")
	}
	if end <= start {
		return errors.New("failure window must satisfy start < end")
	}
	b.startStep = start
	b.endStep = end
	return nil
}

// None is the no-fault variant: every stage passes through.
type None struct {
	Base
}

// TypeAsString returns "none".
func (*None) TypeAsString() string { return "none" }
