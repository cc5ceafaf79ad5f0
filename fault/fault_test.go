package fault_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"

	"github.com/skyfieldlabs/attsim/control"
	"github.com/skyfieldlabs/attsim/fault"
)

func TestFromSpecDispatch(t *testing.T) {
	f, err := fault.FromSpec(fault.Spec{})
	assert.NoError(t, err)
	assert.Equal(t, "none", f.TypeAsString())

	f, err = fault.FromSpec(fault.Spec{Type: "gain_suppression", Start: 10, End: 20})
	assert.NoError(t, err)
	assert.Equal(t, "gain_suppression", f.TypeAsString())

	f, err = fault.FromSpec(fault.Spec{Type: "sensor_bias", Start: 10, End: 20, Magnitude: 0.2})
	assert.NoError(t, err)
	assert.Equal(t, "sensor_bias", f.TypeAsString())

	f, err = fault.FromSpec(fault.Spec{Type: "actuator_sat", Start: 10, End: 20, Limit: 0.5})
	assert.NoError(t, err)
	assert.Equal(t, "actuator_sat", f.TypeAsString())

	_, err = fault.FromSpec(fault.Spec{Type: "engine_fire"})
	assert.Error(t, err)
}

func TestWindowValidation(t *testing.T) {
	_, err := fault.FromSpec(fault.Spec{Type: "gain_suppression", Start: -1, End: 5})
	assert.Error(t, err)

	_, err = fault.FromSpec(fault.Spec{Type: "sensor_bias", Start: 20, End: 10})
	assert.Error(t, err)

	_, err = fault.FromSpec(fault.Spec{Type: "actuator_sat", Start: 0, End: 10})
	assert.Error(t, err, "zero saturation limit must be rejected")
}

func TestGainSuppressionWindow(t *testing.T) {
	f, err := fault.NewGainSuppression(fault.GainSuppressionParams{Start: 10, End: 20})
	assert.NoError(t, err)

	g := control.Gains{Kp: 0.8, Ki: 0.05, Kd: 0.12}

	assert.Equal(t, g, f.Gains(9, g), "inactive before the window")
	assert.Equal(t, control.Gains{Kp: 0.8}, f.Gains(10, g), "integral and derivative zeroed inside")
	assert.Equal(t, control.Gains{Kp: 0.8}, f.Gains(19, g))
	assert.Equal(t, g, f.Gains(20, g), "window end is exclusive")
}

func TestGainSuppressionPartial(t *testing.T) {
	f, err := fault.NewGainSuppression(fault.GainSuppressionParams{
		Start: 0, End: 10, SuppressIntegral: true,
	})
	assert.NoError(t, err)

	g := control.Gains{Kp: 0.8, Ki: 0.05, Kd: 0.12}
	assert.Equal(t, control.Gains{Kp: 0.8, Kd: 0.12}, f.Gains(0, g))
}

func TestSensorBiasSign(t *testing.T) {
	f, err := fault.NewSensorBias(fault.SensorBiasParams{Start: 0, End: 10, Magnitude: 0.25})
	assert.NoError(t, err)

	f.Prepare(rand.New(rand.NewPCG(7, 7)))
	bias := f.Bias()
	assert.InDelta(t, 0.25, mathAbs(bias), 1e-12)

	assert.InDelta(t, 1.0+bias, f.MeasuredError(5, 1.0), 1e-12)
	assert.InDelta(t, 1.0, f.MeasuredError(10, 1.0), 1e-12, "inactive outside the window")

	// Same RNG seed resolves the same sign.
	f2, _ := fault.NewSensorBias(fault.SensorBiasParams{Start: 0, End: 10, Magnitude: 0.25})
	f2.Prepare(rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, bias, f2.Bias())
}

func TestActuatorSaturationTightensOnly(t *testing.T) {
	f, err := fault.NewActuatorSaturation(fault.ActuatorSaturationParams{Start: 0, End: 10, Limit: 0.5})
	assert.NoError(t, err)

	assert.Equal(t, 0.5, f.ActuatorLimit(0, 2.0))
	assert.Equal(t, 2.0, f.ActuatorLimit(10, 2.0))

	// A fault limit looser than the nominal one has no effect.
	wide, err := fault.NewActuatorSaturation(fault.ActuatorSaturationParams{Start: 0, End: 10, Limit: 5.0})
	assert.NoError(t, err)
	assert.Equal(t, 2.0, wide.ActuatorLimit(0, 2.0))
}

func TestSpecUnmarshalYAML(t *testing.T) {
	yamlStr := `
type: sensor_bias
start: 40
end: 60
magnitude: 0.3
`
	var spec fault.Spec
	err := yaml.Unmarshal([]byte(yamlStr), &spec)
	assert.NoError(t, err)

	f, err := fault.FromSpec(spec)
	assert.NoError(t, err)
	assert.Equal(t, "sensor_bias", f.TypeAsString())
	assert.True(t, f.Active(40))
	assert.False(t, f.Active(60))
}

func TestFromConfigEntry(t *testing.T) {
	entry := map[string]interface{}{
		"type":  "actuator_sat",
		"start": 10,
		"end":   30,
		"limit": 0.8,
	}
	f, err := fault.FromConfigEntry(entry)
	assert.NoError(t, err)
	assert.Equal(t, "actuator_sat", f.TypeAsString())
	assert.Equal(t, 0.8, f.ActuatorLimit(15, 2.0))

	_, err = fault.FromConfigEntry("not a map")
	assert.Error(t, err)
}

func mathAbs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
