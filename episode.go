package attsim

import (
	"math"
	"math/rand/v2"

	"github.com/skyfieldlabs/attsim/control"
	"github.com/skyfieldlabs/attsim/dynamics"
	"github.com/skyfieldlabs/attsim/fault"
	"github.com/skyfieldlabs/attsim/plant"
	"github.com/skyfieldlabs/attsim/schedule"
)

// Default divergence rails. Divergence is a first-class recorded outcome,
// not a simulation failure.
const (
	DefaultAttitudeLimit  = 6.0
	DefaultStabilityFloor = 0.18
	DefaultDivergeHold    = 3
)

// Episode orchestrator run states.
type runState int

const (
	stateRunning runState = iota
	stateDiverging
	stateTerminated
)

// Episode owns one independent set of component instances and one
// pseudo-random stream derived from the episode seed. Instances are not
// shared: different episodes may run concurrently with no
// synchronisation.
type Episode struct {
	cfg   EpisodeConfig
	gains control.Gains
	div   DivergenceSpec

	r     *rand.Rand
	pid   *control.PID
	act   *dynamics.Actuator
	turb  *dynamics.Turbulence
	grid  *plant.Grid
	flt   fault.Fault
	sched schedule.Func
}

// NewEpisode validates the configuration and builds the episode's
// components, all drawing from one PCG stream seeded from the episode
// seed. Draw order is fixed (grid initialisation, fault preparation,
// then the step loop) so runs are bit-reproducible.
func NewEpisode(cfg EpisodeConfig) (*Episode, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	div := cfg.Divergence
	if div.AttitudeLimit == 0 {
		div.AttitudeLimit = DefaultAttitudeLimit
	}
	if div.StabilityFloor == 0 {
		div.StabilityFloor = DefaultStabilityFloor
	}
	if div.Hold == 0 {
		div.Hold = DefaultDivergeHold
	}

	pidParams := cfg.PID
	pidParams.Gains = cfg.maskedGains()
	pid, err := control.NewPID(pidParams)
	if err != nil {
		return nil, err
	}

	act, err := dynamics.NewActuator(cfg.Actuator)
	if err != nil {
		return nil, err
	}

	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))

	grid, err := plant.NewGrid(cfg.GridH, cfg.GridW, r)
	if err != nil {
		return nil, err
	}

	turb, err := dynamics.NewTurbulence(cfg.Process, r)
	if err != nil {
		return nil, err
	}

	flt, err := fault.FromSpec(cfg.Failure)
	if err != nil {
		return nil, err
	}
	flt.Prepare(r)

	sched, err := schedule.FromSpec(cfg.Turbulence)
	if err != nil {
		return nil, err
	}

	return &Episode{
		cfg:   cfg,
		gains: pidParams.Gains,
		div:   div,
		r:     r,
		pid:   pid,
		act:   act,
		turb:  turb,
		grid:  grid,
		flt:   flt,
		sched: sched,
	}, nil
}

// reference returns the attitude reference at step t: the base value,
// plus the step delta held from the trigger step onwards.
func (ep *Episode) reference(t int) float64 {
	ref := ep.cfg.Reference.Base
	if ep.cfg.Reference.StepDelta != 0 && t >= ep.cfg.Reference.StepAt {
		ref += ep.cfg.Reference.StepDelta
	}
	return ref
}

// Run drives the per-step loop to natural or divergence-triggered
// termination and returns the recorded log. An Episode is single-use:
// its component state is consumed by the run.
func (ep *Episode) Run() *EpisodeLog {
	log := &EpisodeLog{Records: make([]Record, 0, ep.cfg.Horizon)}

	state := stateRunning
	divergeCount := 0
	meanAtt := ep.grid.MeanAttitude()

	for t := 0; t < ep.cfg.Horizon; t++ {
		ref := ep.reference(t)

		// One-step control delay: the error uses the plant state left by
		// the previous step, modeling sensor and processing latency.
		e := ref - meanAtt
		e = ep.flt.MeasuredError(t, e)

		uCmd := ep.pid.StepWith(e, ep.flt.Gains(t, ep.gains))
		uEff := ep.act.StepLimited(uCmd, ep.flt.ActuatorLimit(t, ep.act.UMax()))

		level := ep.sched(t)
		noise := ep.turb.Step(level)

		ep.grid.Step(uEff+noise, level)

		// Field means are O(H*W); compute each once per step.
		meanAtt = ep.grid.MeanAttitude()
		meanStab := ep.grid.MeanStability()

		// The termination counter tracks the attitude limit alone; the
		// recorded per-step flag is the broader divergence condition.
		diverged := math.Abs(meanAtt) > ep.div.AttitudeLimit || meanStab < ep.div.StabilityFloor
		if math.Abs(meanAtt) > ep.div.AttitudeLimit {
			divergeCount++
			state = stateDiverging
		} else {
			divergeCount = 0
			state = stateRunning
		}
		if divergeCount >= ep.div.Hold {
			state = stateTerminated
			log.Crashed = true
		}

		log.Records = append(log.Records, Record{
			T:                t,
			AttitudeMean:     meanAtt,
			StabilityMean:    meanStab,
			SpeedMean:        ep.grid.MeanSpeed(),
			UCmd:             uCmd,
			UEff:             uEff,
			DisturbanceLevel: level,
			Crashed:          diverged,
			Reference:        ref,
		})

		if state == stateTerminated {
			break
		}
	}

	return log
}

// Run validates cfg, simulates one episode and returns its log.
func Run(cfg EpisodeConfig) (*EpisodeLog, error) {
	ep, err := NewEpisode(cfg)
	if err != nil {
		return nil, err
	}
	return ep.Run(), nil
}
