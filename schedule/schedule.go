// Package schedule provides turbulence schedules: functions from step
// index to disturbance intensity level, representing time-varying
// environmental stress.
package schedule

import (
	"errors"
	"fmt"
)

// Func returns the scheduled disturbance intensity for step t. Returned
// levels are always >= 0.
type Func func(t int) float64

// Spec describes a schedule in configuration. Name selects the builder;
// the remaining fields are interpreted by the selected builder and
// ignored otherwise.
type Spec struct {
	Name string `yaml:"name" mapstructure:"name"`

	// constant
	Level float64 `yaml:"level" mapstructure:"level"`

	// tiers
	Low  float64 `yaml:"low" mapstructure:"low"`
	Mid  float64 `yaml:"mid" mapstructure:"mid"`
	Late float64 `yaml:"late" mapstructure:"late"`
	T1   int     `yaml:"t1" mapstructure:"t1"`
	T2   int     `yaml:"t2" mapstructure:"t2"`

	// ramp and pulse
	From  float64 `yaml:"from" mapstructure:"from"`
	To    float64 `yaml:"to" mapstructure:"to"`
	Peak  float64 `yaml:"peak" mapstructure:"peak"`
	Start int     `yaml:"start" mapstructure:"start"`
	End   int     `yaml:"end" mapstructure:"end"`
}

// A map between string names and schedule builders.
var builders = map[string]func(Spec) (Func, error){
	"constant": func(s Spec) (Func, error) { return Constant(s.Level) },
	"tiers":    func(s Spec) (Func, error) { return Tiers(s.Low, s.Mid, s.Late, s.T1, s.T2) },
	"ramp":     func(s Spec) (Func, error) { return Ramp(s.From, s.To, s.Start, s.End) },
	"pulse":    func(s Spec) (Func, error) { return Pulse(s.Level, s.Peak, s.Start, s.End) },
}

// Returns the names of all registered schedule builders.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	return names
}

// FromSpec resolves a schedule spec into a Func. An empty name defaults
// to a constant zero schedule; an unknown name is a configuration error.
func FromSpec(s Spec) (Func, error) {
	if s.Name == "" {
		return Constant(0)
	}
	builder, ok := builders[s.Name]
	if !ok {
		return nil, fmt.Errorf("unknown turbulence schedule: %s", s.Name)
	}
	return builder(s)
}

// Constant returns a schedule holding one level at every step.
func Constant(level float64) (Func, error) {
	if level < 0 {
		return nil, errors.New("level must be greater than or equal to 0")
	}
	return func(int) float64 { return level }, nil
}

// Tiers returns a three-tier schedule: low before t1, mid from t1 up to
// t2, late afterwards.
func Tiers(low, mid, late float64, t1, t2 int) (Func, error) {
	if low < 0 || mid < 0 || late < 0 {
		return nil, errors.New("tier levels must be greater than or equal to 0")
	}
	if t1 > t2 {
		return nil, errors.New("tier boundaries must satisfy t1 <= t2")
	}
	return func(t int) float64 {
		if t < t1 {
			return low
		}
		if t < t2 {
			return mid
		}
		return late
	}, nil
}

// Ramp returns a schedule interpolating linearly from one level to
// another across [start, end), holding the endpoints outside the window.
func Ramp(from, to float64, start, end int) (Func, error) {
	if from < 0 || to < 0 {
		return nil, errors.New("ramp levels must be greater than or equal to 0")
	}
	if end <= start {
		return nil, errors.New("ramp window must satisfy start < end")
	}
	span := float64(end - start)
	return func(t int) float64 {
		if t < start {
			return from
		}
		if t >= end {
			return to
		}
		return from + (to-from)*float64(t-start)/span
	}, nil
}

// Pulse returns a schedule at a base level with a raised peak across
// [start, end).
func Pulse(base, peak float64, start, end int) (Func, error) {
	if base < 0 || peak < 0 {
		return nil, errors.New("pulse levels must be greater than or equal to 0")
	}
	if end <= start {
		return nil, errors.New("pulse window must satisfy start < end")
	}
	return func(t int) float64 {
		if t >= start && t < end {
			return peak
		}
		return base
	}, nil
}
