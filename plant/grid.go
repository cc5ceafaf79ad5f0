// Package plant implements the grid plant model: a 2-D field of locally
// coupled cells, each holding attitude, stability and speed, advanced by
// neighborhood diffusion, control coupling and disturbance injection.
package plant

import (
	"errors"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
)

// Grid owns the three H×W fields of the plant. Fields are stored as flat
// row-major slices. Dimensions are fixed for the grid's lifetime and all
// mutation happens in place through Step.
type Grid struct {
	h, w int

	att  []float64 // attitude, unbounded
	stab []float64 // stability, clipped to [0, 1]
	spd  []float64 // speed

	// scratch buffers reused across steps
	attN, stabN, spdN []float64 // Moore-neighborhood means
	attX, stabX, spdX []float64 // next-step fields
	rowSum            []float64

	r *rand.Rand
}

// Returns a Grid of h by w cells seeded from r, checking for invalid
// dimensions. Initial conditions: attitude ~ N(0, 0.03), stability
// ~ U(0.6, 0.9), speed ~ N(1, 0.02), drawn field by field in row-major
// order so the stream layout is reproducible.
func NewGrid(h, w int, r *rand.Rand) (*Grid, error) {
	if h <= 0 || w <= 0 {
		return nil, errors.New("grid dimensions must be greater than 0")
	}
	if r == nil {
		return nil, errors.New("grid requires a random source")
	}

	n := h * w
	g := &Grid{
		h:      h,
		w:      w,
		att:    make([]float64, n),
		stab:   make([]float64, n),
		spd:    make([]float64, n),
		attN:   make([]float64, n),
		stabN:  make([]float64, n),
		spdN:   make([]float64, n),
		attX:   make([]float64, n),
		stabX:  make([]float64, n),
		spdX:   make([]float64, n),
		rowSum: make([]float64, n),
		r:      r,
	}

	for k := range g.att {
		g.att[k] = r.NormFloat64() * 0.03
	}
	for k := range g.stab {
		g.stab[k] = 0.6 + 0.3*r.Float64()
	}
	for k := range g.spd {
		g.spd[k] = 1.0 + r.NormFloat64()*0.02
	}

	return g, nil
}

// Returns the grid dimensions.
func (g *Grid) Dims() (h, w int) {
	return g.h, g.w
}

// Returns the mean attitude across all cells.
func (g *Grid) MeanAttitude() float64 {
	return stat.Mean(g.att, nil)
}

// Returns the mean stability across all cells.
func (g *Grid) MeanStability() float64 {
	return stat.Mean(g.stab, nil)
}

// Returns the mean speed across all cells.
func (g *Grid) MeanSpeed() float64 {
	return stat.Mean(g.spd, nil)
}

// IsDiverged reports whether the mean attitude magnitude exceeds attLim
// or the mean stability has fallen below stabFloor.
func (g *Grid) IsDiverged(attLim, stabFloor float64) bool {
	return math.Abs(g.MeanAttitude()) > attLim || g.MeanStability() < stabFloor
}

// Step advances every cell by one time interval under the given control
// bias and disturbance level. Cell noise is drawn row-major from the
// grid's RNG, one normal deviate per cell, so trajectories are
// reproducible for a fixed seed.
func (g *Grid) Step(controlBias, disturbanceLevel float64) {
	g.neighborMeans(g.att, g.attN)
	g.neighborMeans(g.stab, g.stabN)
	g.neighborMeans(g.spd, g.spdN)
	g.apply(controlBias, disturbanceLevel)
}

// apply writes the next-step fields from the current fields and the
// precomputed neighborhood means, then swaps the buffers in.
func (g *Grid) apply(controlBias, disturbanceLevel float64) {
	noiseSigma := 0.02 + 0.15*disturbanceLevel
	decay := 0.003 + 0.03*disturbanceLevel
	// Aggressive control actuation suppresses stability recovery.
	recovery := 0.012 + 0.015*math.Max(0, 1-math.Abs(controlBias))

	for k := range g.att {
		// Cells with higher local stability respond more strongly to
		// control input.
		responsiveness := 0.25 + 0.75*g.stabN[k]

		g.attX[k] = 0.6*g.att[k] + 0.35*g.attN[k] +
			responsiveness*controlBias + g.r.NormFloat64()*noiseSigma

		g.stabX[k] = clip01((1-decay)*g.stab[k] + 0.05*g.stabN[k] + recovery)

		g.spdX[k] = 0.9*g.spd[k] + 0.1*g.spdN[k] + 0.01*(g.stabN[k]-0.5)
	}

	g.att, g.attX = g.attX, g.att
	g.stab, g.stabX = g.stabX, g.stab
	g.spd, g.spdX = g.spdX, g.spd
}

func clip01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
