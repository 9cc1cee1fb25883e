// layoutprobe uploads a spawned particle buffer to a real GPU adapter, runs
// the probe kernels and checks every record that comes back.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/gekko3d/particles"
	"github.com/gekko3d/particles/rt/inspect"
)

func main() {
	configPath := flag.String("config", "", "gcfg config file (defaults are used when empty)")
	pngPath := flag.String("png", "", "Write the device output of the particle probe to this PNG")
	count := flag.Int("n", 0, "Override simulation.particles")
	preset := flag.String("preset", "", "Override simulation.preset")
	debug := flag.Bool("debug", false, "Enable debug logging")
	timeout := flag.Duration("timeout", 30*time.Second, "Give up after this long")
	flag.Parse()

	cfg := particles.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = particles.LoadConfig(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "layoutprobe: %v\n", err)
			os.Exit(2)
		}
	}
	if *count > 0 {
		cfg.Simulation.Particles = *count
	}
	if *preset != "" {
		cfg.Simulation.Preset = *preset
	}
	if *debug {
		cfg.Log.Debug = true
	}
	log := particles.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	os.Exit(run(ctx, cfg, log, *pngPath))
}

func run(ctx context.Context, cfg particles.Config, log particles.Logger, pngPath string) int {
	host, err := particles.NewHost(cfg, log)
	if err != nil {
		log.Errorf("%v", err)
		return 2
	}
	defer host.Close()

	report, err := host.Probe(ctx)
	if report.Result != nil {
		s := inspect.Summarize(report.Result.Elements())
		kinds := make([]int, 0, len(s.Kinds))
		for k := range s.Kinds {
			kinds = append(kinds, int(k))
		}
		sort.Ints(kinds)
		log.Infof("device output: %d particles, kinds %v, bounds %v..%v, mean speed %.3f",
			s.Count, kinds, s.Min, s.Max, s.MeanSpeed)
		if pngPath != "" {
			if werr := writePNG(pngPath, report); werr != nil {
				log.Warnf("%v", werr)
			}
		}
	}
	if err != nil {
		if errors.Is(err, particles.ErrLayoutMismatch) {
			log.Errorf("host and device disagree on the record layout: %v", err)
		} else {
			log.Errorf("%v", err)
		}
		return 1
	}
	log.Infof("layouts agree (step %d, slot %d -> %d, %s)",
		report.Frame.Index, report.Frame.Read, report.Frame.Write, report.Elapsed)
	return 0
}

func writePNG(path string, report particles.ProbeReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	img := inspect.Render(report.Result.Elements(), inspect.DefaultOptions())
	if err := inspect.WritePNG(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
