package attsim

// Record is one per-step entry of an episode log.
type Record struct {
	T                int
	AttitudeMean     float64
	StabilityMean    float64
	SpeedMean        float64
	UCmd             float64
	UEff             float64
	DisturbanceLevel float64
	// Crashed reports the full divergence condition at this step: attitude
	// magnitude over the limit or stability below the floor. It is wider
	// than the attitude-only counter that terminates the episode, so a
	// record can be marked crashed in a log that runs to its horizon.
	Crashed   bool
	Reference float64
}

// EpisodeLog is the append-only time series recorded by the orchestrator.
// A log shorter than the configured horizon means the episode terminated
// early on sustained divergence.
type EpisodeLog struct {
	Records []Record
	Crashed bool // the consecutive-divergence counter reached its hold threshold
}

// Returns the number of recorded steps.
func (l *EpisodeLog) Len() int {
	return len(l.Records)
}

// Errors returns the tracking error series, attitude mean minus
// reference, one value per recorded step.
func (l *EpisodeLog) Errors() []float64 {
	errs := make([]float64, len(l.Records))
	for k, rec := range l.Records {
		errs[k] = rec.AttitudeMean - rec.Reference
	}
	return errs
}
