package main

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/skyfieldlabs/attsim"
)

// plotAttitude renders the mean attitude against the reference over the
// episode and saves it as a PNG.
func plotAttitude(path string, episodeLog *attsim.EpisodeLog) error {
	att := make(plotter.XYs, episodeLog.Len())
	ref := make(plotter.XYs, episodeLog.Len())
	for k, rec := range episodeLog.Records {
		att[k].X = float64(rec.T)
		att[k].Y = rec.AttitudeMean
		ref[k].X = float64(rec.T)
		ref[k].Y = rec.Reference
	}

	p := plot.New()
	p.Title.Text = "Episode attitude response"
	p.X.Label.Text = "step"
	p.Y.Label.Text = "mean attitude"

	attLine, err := plotter.NewLine(att)
	if err != nil {
		return err
	}
	refLine, err := plotter.NewLine(ref)
	if err != nil {
		return err
	}
	refLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(attLine, refLine)
	p.Legend.Add("attitude", attLine)
	p.Legend.Add("reference", refLine)
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
