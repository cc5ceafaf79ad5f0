// Command attsim runs one configured episode of the grid-plant attitude
// loop and writes its result row, and optionally the per-step series and
// a plot of the attitude response, to an output directory.
//
// With no -config flag it runs the built-in reference scenario: a +0.3
// pitch-up command at t=35 under tiered turbulence.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gopkg.in/yaml.v2"

	"github.com/skyfieldlabs/attsim"
	"github.com/skyfieldlabs/attsim/control"
	"github.com/skyfieldlabs/attsim/metrics"
	"github.com/skyfieldlabs/attsim/schedule"
)

func main() {
	configPath := flag.String("config", "", "YAML episode configuration; empty runs the built-in scenario")
	outDir := flag.String("out", filepath.Join("output", "attsim"), "output directory")
	series := flag.Bool("series", false, "also write the per-step {t, error, control_output} series")
	plotOut := flag.Bool("plot", false, "also render the attitude response as a PNG")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ep, err := attsim.NewEpisode(cfg)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	episodeLog := ep.Run()

	m, err := metrics.Extract(episodeLog, metrics.DefaultOptions())
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}
	row := metrics.NewRow(cfg, m)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("output: %v", err)
	}
	if err := writeResultRow(filepath.Join(*outDir, "results.csv"), row); err != nil {
		log.Fatalf("output: %v", err)
	}

	// Artifact files for this episode share one identifier.
	id := uuid.New()
	if *series {
		path := filepath.Join(*outDir, fmt.Sprintf("series_%s.csv", id))
		if err := writeSeries(path, episodeLog); err != nil {
			log.Fatalf("series: %v", err)
		}
		log.Printf("series written to %s", path)
	}
	if *plotOut {
		path := filepath.Join(*outDir, fmt.Sprintf("attitude_%s.png", id))
		if err := plotAttitude(path, episodeLog); err != nil {
			log.Fatalf("plot: %v", err)
		}
		log.Printf("plot written to %s", path)
	}

	fmt.Printf("steps=%d crash=%v overshoot=%.4f time_to_recover=%.0f (%s) control_effort=%.4f\n",
		episodeLog.Len(), m.Crash, m.Overshoot, m.TimeToRecover, m.Recovery, m.ControlEffort)
}

// loadConfig reads an episode configuration from a YAML file, or returns
// the built-in reference scenario when path is empty.
func loadConfig(path string) (attsim.EpisodeConfig, error) {
	if path == "" {
		return attsim.EpisodeConfig{
			Controller: "pid",
			Gains:      control.Gains{Kp: 0.8, Ki: 0.05, Kd: 0.12},
			GridH:      30,
			GridW:      30,
			Horizon:    140,
			Seed:       7,
			Reference:  attsim.ReferenceSpec{StepDelta: 0.3, StepAt: 35},
			Turbulence: schedule.Spec{Name: "tiers", Low: 0.0, Mid: 0.35, Late: 0.1, T1: 50, T2: 100},
		}, nil
	}

	var cfg attsim.EpisodeConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// writeResultRow appends one contract row to the results file, writing
// the header first when the file is new.
func writeResultRow(path string, row metrics.Row) error {
	info, err := os.Stat(path)
	newFile := err != nil || info.Size() == 0

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if newFile {
		if err := w.Write(metrics.Header()); err != nil {
			return err
		}
	}
	return w.Write(row.Strings())
}

// writeSeries saves the {t, error, control_output} series consumed by
// visualization collaborators.
func writeSeries(path string, episodeLog *attsim.EpisodeLog) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"t", "error", "control_output"}); err != nil {
		return err
	}
	for _, rec := range episodeLog.Records {
		row := []string{
			fmt.Sprintf("%d", rec.T),
			fmt.Sprintf("%.15g", rec.AttitudeMean-rec.Reference),
			fmt.Sprintf("%.15g", rec.UEff),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
