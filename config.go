// Package attsim simulates episodes of a UAV attitude-control loop acting
// over a grid of coupled cells. An episode wires a PID controller, an
// actuator model, a turbulence process and the grid plant into a
// discrete-time loop under configurable disturbance and fault conditions,
// and records a per-step log for downstream metrics extraction.
package attsim

import (
	"errors"
	"fmt"

	"github.com/skyfieldlabs/attsim/control"
	"github.com/skyfieldlabs/attsim/dynamics"
	"github.com/skyfieldlabs/attsim/fault"
	"github.com/skyfieldlabs/attsim/schedule"
)

// ReferenceSpec describes the attitude reference: a base value plus a
// step command held from the trigger step onwards.
type ReferenceSpec struct {
	Base      float64 `yaml:"base" mapstructure:"base"`
	StepDelta float64 `yaml:"step_delta" mapstructure:"step_delta"`
	StepAt    int     `yaml:"step_at" mapstructure:"step_at"`
}

// DivergenceSpec describes the episode termination rails. Zero values
// take the defaults.
type DivergenceSpec struct {
	AttitudeLimit  float64 `yaml:"attitude_limit" mapstructure:"attitude_limit"`   // default 6.0
	StabilityFloor float64 `yaml:"stability_floor" mapstructure:"stability_floor"` // default 0.18
	Hold           int     `yaml:"hold" mapstructure:"hold"`                       // consecutive divergent steps before termination, default 3
}

// EpisodeConfig is the immutable input of one episode. It is constructed
// once, validated before simulation begins and consumed read-only by the
// orchestrator.
type EpisodeConfig struct {
	Controller string        `yaml:"controller" mapstructure:"controller"` // one of ControllerNames()
	Gains      control.Gains `yaml:"gains" mapstructure:"gains"`

	GridH int `yaml:"grid_h" mapstructure:"grid_h"`
	GridW int `yaml:"grid_w" mapstructure:"grid_w"`

	Horizon int    `yaml:"horizon" mapstructure:"horizon"`
	Seed    uint64 `yaml:"seed" mapstructure:"seed"`

	Reference  ReferenceSpec `yaml:"reference" mapstructure:"reference"`
	Turbulence schedule.Spec `yaml:"turbulence" mapstructure:"turbulence"`
	Failure    fault.Spec    `yaml:"failure" mapstructure:"failure"`

	// Optional component overrides; zero values take the component
	// defaults.
	PID        control.PIDParams         `yaml:"pid" mapstructure:"pid"`
	Actuator   dynamics.ActuatorParams   `yaml:"actuator" mapstructure:"actuator"`
	Process    dynamics.TurbulenceParams `yaml:"process" mapstructure:"process"`
	Divergence DivergenceSpec            `yaml:"divergence" mapstructure:"divergence"`
}

// A map between controller names and the gain mask each applies. Masked
// terms are zeroed so a "pd" controller never integrates even when an
// integral gain is configured.
var controllers = map[string]func(control.Gains) control.Gains{
	"p":   func(g control.Gains) control.Gains { return control.Gains{Kp: g.Kp} },
	"pi":  func(g control.Gains) control.Gains { return control.Gains{Kp: g.Kp, Ki: g.Ki} },
	"pd":  func(g control.Gains) control.Gains { return control.Gains{Kp: g.Kp, Kd: g.Kd} },
	"pid": func(g control.Gains) control.Gains { return g },
}

// Returns the names of all registered controllers.
func ControllerNames() []string {
	names := make([]string, 0, len(controllers))
	for name := range controllers {
		names = append(names, name)
	}
	return names
}

// Validate rejects a configuration that cannot produce a meaningful
// episode. All checks run before any simulation state is built.
func (c EpisodeConfig) Validate() error {
	if _, ok := controllers[c.Controller]; !ok {
		return fmt.Errorf("unknown controller: %q", c.Controller)
	}
	if c.Horizon <= 0 {
		return errors.New("horizon must be a positive number of steps")
	}
	if c.GridH <= 0 || c.GridW <= 0 {
		return errors.New("grid dimensions must be greater than 0")
	}
	if c.Reference.StepAt < 0 {
		return errors.New("reference step trigger must be greater than or equal to 0")
	}
	if _, err := schedule.FromSpec(c.Turbulence); err != nil {
		return err
	}
	if _, err := fault.FromSpec(c.Failure); err != nil {
		return err
	}
	return nil
}

// maskedGains applies the configured controller's gain mask.
func (c EpisodeConfig) maskedGains() control.Gains {
	return controllers[c.Controller](c.Gains)
}
