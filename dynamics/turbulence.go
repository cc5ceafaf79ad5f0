package dynamics

import (
	"errors"
	"math"
	"math/rand/v2"
)

// Parameters used to request a turbulence process. These map onto the
// private fields of Turbulence.
type TurbulenceParams struct {
	Theta float64 `yaml:"theta"` // mean-reversion rate, default 0.3
	Sigma float64 `yaml:"sigma"` // base volatility, default 0.2
	Dt    float64 `yaml:"dt"`    // step interval, default 1.0
}

// Turbulence is a discrete-time Ornstein-Uhlenbeck process reverting to
// zero. The externally scheduled intensity scales the diffusion term each
// step, so one process instance represents time-varying disturbance
// magnitude without re-seeding. The process draws from the episode's RNG
// on every call, including calls with zero intensity, so the stream
// position stays aligned across schedule variants.
type Turbulence struct {
	theta float64
	sigma float64
	dt    float64
	sqdt  float64

	x float64 // current process value
	r *rand.Rand
}

// Returns a Turbulence pointer drawing from r, checking for invalid
// parameter values. Zero-valued parameters take the defaults.
func NewTurbulence(params TurbulenceParams, r *rand.Rand) (*Turbulence, error) {
	if r == nil {
		return nil, errors.New("turbulence requires a random source")
	}
	if params.Theta == 0 {
		params.Theta = 0.3
	}
	if params.Sigma == 0 {
		params.Sigma = 0.2
	}
	if params.Dt == 0 {
		params.Dt = 1.0
	}

	if params.Theta < 0 || params.Theta > 1 {
		return nil, errors.New("theta must be in (0, 1]")
	}
	if params.Sigma < 0 {
		return nil, errors.New("sigma must be greater than 0")
	}
	if params.Dt < 0 {
		return nil, errors.New("dt must be greater than 0")
	}

	return &Turbulence{
		theta: params.Theta,
		sigma: params.Sigma,
		dt:    params.Dt,
		sqdt:  math.Sqrt(params.Dt),
		r:     r,
	}, nil
}

// Step advances the process by one interval and returns the new value.
// Reversion toward zero applies at every step; the Gaussian increment is
// scaled by the supplied intensity.
func (tb *Turbulence) Step(intensity float64) float64 {
	if intensity < 0 {
		intensity = 0
	}
	dw := tb.r.NormFloat64() * tb.sqdt
	tb.x += tb.theta*(0-tb.x)*tb.dt + tb.sigma*intensity*dw
	return tb.x
}

// Returns the current process value without advancing it.
func (tb *Turbulence) Value() float64 {
	return tb.x
}
