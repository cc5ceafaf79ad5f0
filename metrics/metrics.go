// Package metrics derives scalar performance metrics from a recorded
// episode log. Extraction is a pure function over the series: no
// mutation, no randomness, and no failure on truncated or empty logs.
package metrics

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/skyfieldlabs/attsim"
)

// RecoveryStatus disambiguates the time-to-recover value. A plain zero
// would conflate "the error never left the band" with "the error never
// settled back inside it".
type RecoveryStatus int

const (
	// RecoveryNotTriggered: the error never exceeded the trigger
	// threshold, so there was nothing to recover from.
	RecoveryNotTriggered RecoveryStatus = iota
	// Recovered: the error re-entered the hysteresis band and held for
	// the dwell period; TimeToRecover is the step index where the hold
	// began.
	Recovered
	// RecoveryNotReached: the error exceeded the threshold but no
	// qualifying hold window exists before the series ends.
	RecoveryNotReached
)

func (s RecoveryStatus) String() string {
	switch s {
	case RecoveryNotTriggered:
		return "not_triggered"
	case Recovered:
		return "recovered"
	case RecoveryNotReached:
		return "not_reached"
	default:
		return "unknown"
	}
}

// Options are the extraction constants. Zero values take the defaults.
type Options struct {
	Threshold  float64 // error magnitude that arms recovery detection, default 0.1
	Hysteresis float64 // re-entry band, default 0.05; must be tighter than Threshold
	MinHold    int     // dwell steps required inside the band, default 10

	OvershootCap float64 // default 10.0
	EffortCap    float64 // default 5.0

	MeanAbsErrorLimit  float64 // chronic-error crash threshold, default 0.75
	SaturationFraction float64 // chronic-saturation crash threshold, default 0.6
	SaturationLimit    float64 // actuator limit used to count saturated steps, default 2.0
}

// DefaultOptions returns the extraction defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:          0.1,
		Hysteresis:         0.05,
		MinHold:            10,
		OvershootCap:       10.0,
		EffortCap:          5.0,
		MeanAbsErrorLimit:  0.75,
		SaturationFraction: 0.6,
		SaturationLimit:    2.0,
	}
}

// Validate checks the extraction constants. Recovery must be a stricter
// band than the trigger, otherwise oscillation at the boundary toggles
// recovery state.
func (o Options) Validate() error {
	if o.Hysteresis <= 0 || o.Threshold <= 0 {
		return errors.New("threshold and hysteresis must be greater than 0")
	}
	if o.Hysteresis >= o.Threshold {
		return errors.New("hysteresis must be less than threshold")
	}
	if o.MinHold <= 0 {
		return errors.New("min hold must be greater than 0")
	}
	if o.OvershootCap <= 0 || o.EffortCap <= 0 {
		return errors.New("overshoot and effort caps must be greater than 0")
	}
	if o.MeanAbsErrorLimit <= 0 || o.SaturationLimit <= 0 {
		return errors.New("crash thresholds must be greater than 0")
	}
	if o.SaturationFraction <= 0 || o.SaturationFraction > 1 {
		return errors.New("saturation fraction must be in (0, 1]")
	}
	return nil
}

// withDefaults fills each zero-valued field with its default, leaving
// set fields untouched.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Threshold == 0 {
		o.Threshold = def.Threshold
	}
	if o.Hysteresis == 0 {
		o.Hysteresis = def.Hysteresis
	}
	if o.MinHold == 0 {
		o.MinHold = def.MinHold
	}
	if o.OvershootCap == 0 {
		o.OvershootCap = def.OvershootCap
	}
	if o.EffortCap == 0 {
		o.EffortCap = def.EffortCap
	}
	if o.MeanAbsErrorLimit == 0 {
		o.MeanAbsErrorLimit = def.MeanAbsErrorLimit
	}
	if o.SaturationFraction == 0 {
		o.SaturationFraction = def.SaturationFraction
	}
	if o.SaturationLimit == 0 {
		o.SaturationLimit = def.SaturationLimit
	}
	return o
}

// EpisodeMetrics is the scalar summary of one episode, immutable once
// produced.
type EpisodeMetrics struct {
	Overshoot         float64
	TimeToRecover     float64
	Recovery          RecoveryStatus
	Crash             bool
	ControlEffort     float64
	StabilityVariance float64
}

// Extract derives metrics from a recorded log using opts; zero-valued
// option fields take their individual defaults, and the filled options
// are validated so a hysteresis band at or above the trigger threshold
// is rejected before any series is inspected. The log itself never
// causes an error: series shorter than the configured horizon, including
// empty ones, are handled.
func Extract(log *attsim.EpisodeLog, opts Options) (EpisodeMetrics, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return EpisodeMetrics{}, err
	}

	var m EpisodeMetrics
	if log == nil || log.Len() == 0 {
		m.Crash = log != nil && log.Crashed
		return m, nil
	}

	absErr := log.Errors()
	for k := range absErr {
		absErr[k] = math.Abs(absErr[k])
	}

	m.Overshoot = clip(floats.Max(absErr), 0, opts.OvershootCap)
	m.TimeToRecover, m.Recovery = timeToRecover(absErr, opts)

	absEff := make([]float64, log.Len())
	saturated := 0
	for k, rec := range log.Records {
		absEff[k] = math.Abs(rec.UEff)
		if absEff[k] >= opts.SaturationLimit-1e-9 {
			saturated++
		}
	}
	m.ControlEffort = clip(stat.Mean(absEff, nil), 0, opts.EffortCap)

	satFrac := float64(saturated) / float64(log.Len())
	m.Crash = log.Crashed ||
		stat.Mean(absErr, nil) > opts.MeanAbsErrorLimit ||
		satFrac > opts.SaturationFraction

	if log.Len() > 1 {
		stability := make([]float64, log.Len())
		for k, rec := range log.Records {
			stability[k] = rec.StabilityMean
		}
		m.StabilityVariance = stat.Variance(stability, nil)
	}

	return m, nil
}

// timeToRecover finds the earliest step index from which MinHold
// consecutive errors all sit inside the hysteresis band, searching from
// the first step that exceeded the trigger threshold.
func timeToRecover(absErr []float64, opts Options) (float64, RecoveryStatus) {
	trigger := -1
	for k, e := range absErr {
		if e > opts.Threshold {
			trigger = k
			break
		}
	}
	if trigger < 0 {
		return 0.0, RecoveryNotTriggered
	}

	run := 0
	for k := trigger; k < len(absErr); k++ {
		if absErr[k] < opts.Hysteresis {
			run++
			if run == opts.MinHold {
				return float64(k - opts.MinHold + 1), Recovered
			}
		} else {
			run = 0
		}
	}
	return 0.0, RecoveryNotReached
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
