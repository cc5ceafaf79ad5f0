package metrics

import (
	"fmt"
	"strconv"

	"github.com/skyfieldlabs/attsim"
)

// Row is the per-episode output record consumed by the downstream
// grouping and statistics pass. The field set and order form the contract
// with that collaborator and must not change without updating it.
type Row struct {
	Controller    string
	Grid          string
	Turbulence    string
	Failure       string
	Seed          uint64
	Overshoot     float64
	TimeToRecover float64
	Crash         bool
	ControlEffort float64
}

// NewRow assembles the contract row for one episode.
func NewRow(cfg attsim.EpisodeConfig, m EpisodeMetrics) Row {
	turbulence := cfg.Turbulence.Name
	if turbulence == "" {
		turbulence = "constant"
	}
	failure := cfg.Failure.Type
	if failure == "" {
		failure = "none"
	}
	return Row{
		Controller:    cfg.Controller,
		Grid:          fmt.Sprintf("%dx%d", cfg.GridH, cfg.GridW),
		Turbulence:    turbulence,
		Failure:       failure,
		Seed:          cfg.Seed,
		Overshoot:     m.Overshoot,
		TimeToRecover: m.TimeToRecover,
		Crash:         m.Crash,
		ControlEffort: m.ControlEffort,
	}
}

// Header returns the CSV header matching Strings.
func Header() []string {
	return []string{
		"controller", "grid", "turbulence", "failure", "seed",
		"overshoot", "time_to_recover", "crash", "control_effort",
	}
}

// Strings renders the row as CSV fields in contract order.
func (r Row) Strings() []string {
	return []string{
		r.Controller,
		r.Grid,
		r.Turbulence,
		r.Failure,
		strconv.FormatUint(r.Seed, 10),
		strconv.FormatFloat(r.Overshoot, 'g', -1, 64),
		strconv.FormatFloat(r.TimeToRecover, 'g', -1, 64),
		strconv.FormatBool(r.Crash),
		strconv.FormatFloat(r.ControlEffort, 'g', -1, 64),
	}
}
