package plant

// Moore (8-connected) neighborhood means with symmetric boundary
// reflection, so edge cells see a full-weight neighborhood rather than a
// shrunken one.
//
// Two formulations are kept: a separable windowed-sum form used by Step,
// and a naive per-cell loop retained as the reference for equivalence
// testing. Both must produce the same values for the same field.

// reflect maps an out-of-range index back into [0, n) by reflecting it
// about the nearest edge. Only single-step excursions occur here.
func reflect(i, n int) int {
	if i < 0 {
		return -i - 1
	}
	if i >= n {
		return 2*n - i - 1
	}
	return i
}

// neighborMeans fills dst with the Moore-neighborhood mean of src for
// every cell using a separable 3×3 windowed sum: horizontal triple sums
// first, then vertical, then the center value is removed so only the
// eight neighbors contribute.
func (g *Grid) neighborMeans(src, dst []float64) {
	h, w := g.h, g.w

	for i := 0; i < h; i++ {
		row := src[i*w : (i+1)*w]
		out := g.rowSum[i*w : (i+1)*w]
		for j := 0; j < w; j++ {
			out[j] = row[reflect(j-1, w)] + row[j] + row[reflect(j+1, w)]
		}
	}

	for i := 0; i < h; i++ {
		up := g.rowSum[reflect(i-1, h)*w : (reflect(i-1, h)+1)*w]
		mid := g.rowSum[i*w : (i+1)*w]
		down := g.rowSum[reflect(i+1, h)*w : (reflect(i+1, h)+1)*w]
		for j := 0; j < w; j++ {
			win := up[j] + mid[j] + down[j]
			dst[i*w+j] = (win - src[i*w+j]) / 8.0
		}
	}
}

// neighborMeansNaive is the direct 8-offset formulation of neighborMeans,
// kept as the reference implementation for equivalence tests.
func (g *Grid) neighborMeansNaive(src, dst []float64) {
	h, w := g.h, g.w
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			acc := 0.0
			for di := -1; di <= 1; di++ {
				for dj := -1; dj <= 1; dj++ {
					if di == 0 && dj == 0 {
						continue
					}
					acc += src[reflect(i+di, h)*w+reflect(j+dj, w)]
				}
			}
			dst[i*w+j] = acc / 8.0
		}
	}
}
