package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTiersBoundaries(t *testing.T) {
	f, err := Tiers(0.0, 0.35, 0.1, 50, 100)
	assert.NoError(t, err)

	assert.Equal(t, 0.0, f(0))
	assert.Equal(t, 0.0, f(49))
	assert.Equal(t, 0.35, f(50))
	assert.Equal(t, 0.35, f(99))
	assert.Equal(t, 0.1, f(100))
	assert.Equal(t, 0.1, f(500))
}

func TestRamp(t *testing.T) {
	f, err := Ramp(0.0, 1.0, 10, 20)
	assert.NoError(t, err)

	assert.Equal(t, 0.0, f(0))
	assert.InDelta(t, 0.5, f(15), 1e-12)
	assert.Equal(t, 1.0, f(20))
}

func TestPulse(t *testing.T) {
	f, err := Pulse(0.1, 0.9, 30, 40)
	assert.NoError(t, err)

	assert.Equal(t, 0.1, f(29))
	assert.Equal(t, 0.9, f(30))
	assert.Equal(t, 0.9, f(39))
	assert.Equal(t, 0.1, f(40))
}

func TestFromSpec(t *testing.T) {
	f, err := FromSpec(Spec{Name: "tiers", Low: 0, Mid: 0.4, Late: 0.1, T1: 60, T2: 120})
	assert.NoError(t, err)
	assert.Equal(t, 0.4, f(60))

	// Empty name defaults to constant zero.
	f, err = FromSpec(Spec{})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, f(0))

	_, err = FromSpec(Spec{Name: "hurricane"})
	assert.Error(t, err)
}

func TestInvalidLevels(t *testing.T) {
	_, err := Constant(-0.1)
	assert.Error(t, err)

	_, err = Tiers(-1, 0, 0, 10, 20)
	assert.Error(t, err)

	_, err = Ramp(0, 1, 20, 10)
	assert.Error(t, err)

	_, err = Pulse(0, 1, 5, 5)
	assert.Error(t, err)
}
