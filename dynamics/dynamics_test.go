package dynamics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActuatorRateLimit(t *testing.T) {
	act, err := NewActuator(ActuatorParams{})
	assert.NoError(t, err)

	// A full-scale command is realised at no more than rate*dt per step.
	u := act.Step(2.0)
	assert.InDelta(t, 0.5, u, 1e-12)
	u = act.Step(2.0)
	assert.InDelta(t, 1.0, u, 1e-12)

	for i := 0; i < 10; i++ {
		u = act.Step(2.0)
	}
	assert.InDelta(t, 2.0, u, 1e-12, "output settles at the command")
}

func TestActuatorSaturation(t *testing.T) {
	act, err := NewActuator(ActuatorParams{Rate: 100.0})
	assert.NoError(t, err)

	u := act.Step(50.0)
	assert.InDelta(t, 2.0, u, 1e-12)
	u = act.Step(-50.0)
	assert.InDelta(t, -2.0, u, 1e-12)
}

func TestActuatorTightenedLimit(t *testing.T) {
	act, err := NewActuator(ActuatorParams{Rate: 100.0})
	assert.NoError(t, err)

	u := act.StepLimited(2.0, 0.8)
	assert.InDelta(t, 0.8, u, 1e-12)

	// Limits wider than umax fall back to umax.
	u = act.StepLimited(50.0, 10.0)
	assert.InDelta(t, 2.0, u, 1e-12)
}

func TestActuatorLag(t *testing.T) {
	act, err := NewActuator(ActuatorParams{Tau: 4.0, Rate: 100.0, UMax: 10.0})
	assert.NoError(t, err)

	// alpha = dt/tau = 0.25, so one step covers a quarter of the command.
	u := act.Step(1.0)
	assert.InDelta(t, 0.25, u, 1e-12)
	u = act.Step(1.0)
	assert.InDelta(t, 0.25+0.25*0.75, u, 1e-12)
}

func TestNewActuatorInvalidParams(t *testing.T) {
	for _, params := range []ActuatorParams{
		{Tau: -1.0},
		{UMax: -2.0},
		{Rate: -0.5},
		{Dt: -1.0},
	} {
		_, err := NewActuator(params)
		assert.Error(t, err)
	}
}

func TestTurbulenceDeterminism(t *testing.T) {
	run := func() []float64 {
		r := rand.New(rand.NewPCG(42, 42))
		tb, err := NewTurbulence(TurbulenceParams{}, r)
		assert.NoError(t, err)

		out := make([]float64, 100)
		for i := range out {
			out[i] = tb.Step(0.4)
		}
		return out
	}

	assert.Equal(t, run(), run(), "identical seeds must give identical trajectories")
}

func TestTurbulenceRevertsAtZeroIntensity(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	tb, err := NewTurbulence(TurbulenceParams{Theta: 0.3}, r)
	assert.NoError(t, err)

	// Build up some process value, then watch it decay with no diffusion.
	for i := 0; i < 50; i++ {
		tb.Step(1.0)
	}
	x := math.Abs(tb.Value())
	if x == 0 {
		t.Skip("process landed exactly on zero")
	}

	for i := 0; i < 30; i++ {
		tb.Step(0.0)
	}
	assert.Less(t, math.Abs(tb.Value()), x, "reversion must pull the state toward zero")
	assert.InDelta(t, x*math.Pow(0.7, 30), math.Abs(tb.Value()), 1e-9,
		"with zero intensity the update is a pure geometric decay")
}

func TestTurbulenceAdvancesRNGEveryStep(t *testing.T) {
	r1 := rand.New(rand.NewPCG(9, 9))
	r2 := rand.New(rand.NewPCG(9, 9))

	tb1, _ := NewTurbulence(TurbulenceParams{}, r1)
	tb2, _ := NewTurbulence(TurbulenceParams{}, r2)

	// tb1 idles at zero intensity; tb2 runs hot. Both must consume the
	// same number of draws.
	for i := 0; i < 25; i++ {
		tb1.Step(0.0)
		tb2.Step(1.0)
	}
	assert.Equal(t, r1.Float64(), r2.Float64(), "stream positions must stay aligned")
}

func TestNewTurbulenceRequiresRNG(t *testing.T) {
	_, err := NewTurbulence(TurbulenceParams{}, nil)
	assert.Error(t, err)
}
