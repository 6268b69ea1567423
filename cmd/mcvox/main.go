// Command mcvox is a thin host for the transport engine: it loads a
// YAML simulation description, runs it for a fixed wall-clock budget,
// and writes the resulting tallies to disk. It exists for local runs
// and manual verification (§1.1); it is not part of the engine's
// contract and an embedding application can ignore it entirely.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ahewitt/mcvox/pkg/config"
	"github.com/ahewitt/mcvox/pkg/core"
	"github.com/ahewitt/mcvox/pkg/sim"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mcvox",
		Short: "Monte Carlo photon-transport engine for biomedical optics",
	}
	root.AddCommand(newRunCmd())
	return root
}

type runFlags struct {
	configPath string
	time       float64
	workers    int
	allCPUs    bool
	silent     bool
	out        string
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation from a YAML config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "path to the YAML simulation config (required)")
	cmd.Flags().Float64Var(&flags.time, "time", 0, "simulation time budget in minutes (overrides the config file's value if > 0)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "number of worker goroutines (0 = auto)")
	cmd.Flags().BoolVar(&flags.allCPUs, "all-cpus", false, "use every hardware core instead of leaving one free")
	cmd.Flags().BoolVar(&flags.silent, "silent", false, "suppress progress logging")
	cmd.Flags().StringVar(&flags.out, "out", "out", "output directory for F/Image tallies")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runSimulation(ctx context.Context, flags *runFlags) error {
	in, err := config.Load(flags.configPath)
	if err != nil {
		return err
	}
	if flags.time > 0 {
		in.SimulationTime = flags.time
	}
	if flags.allCPUs {
		in.UseAllCPUs = true
	}
	if flags.silent {
		in.SilentMode = true
	}

	logger := core.NewLogrusLogger()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := sim.Options{
		NumWorkers: flags.workers,
	}
	if !in.SilentMode {
		opts.Logger = logger
		opts.OnProgress = func(frac float64) {
			logger.Printf("progress: %.1f%%\n", frac*100)
		}
	}

	out, err := sim.Run(ctx, in, opts)
	if err != nil {
		return fmt.Errorf("mcvox: run failed: %w", err)
	}

	if !in.SilentMode {
		logger.Printf("done: %d photons across %d workers\n", out.NPhotons, out.NThreads)
	}

	return writeOutput(flags.out, in, out)
}

// writeOutput writes F and, if present, Image as raw little-endian
// float64 binary planes alongside a small YAML manifest describing
// their shapes — deliberately not a standardized medical imaging
// format, since tissue-geometry construction and optical-property
// table I/O are out of scope for this engine (§1).
func writeOutput(dir string, in sim.Input, out sim.Output) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mcvox: creating output directory: %w", err)
	}

	if err := writeFloat64Plane(filepath.Join(dir, "F.bin"), out.F); err != nil {
		return err
	}
	manifest := map[string]any{
		"nPhotons": out.NPhotons,
		"nThreads": out.NThreads,
		"f": map[string]any{
			"nx": in.Grid.Nx, "ny": in.Grid.Ny, "nz": in.Grid.Nz,
		},
	}
	if out.Image != nil {
		if err := writeFloat64Plane(filepath.Join(dir, "Image.bin"), out.Image); err != nil {
			return err
		}
		resT := 1
		if in.Collector != nil {
			resT = in.Collector.ResT
		}
		manifest["image"] = map[string]any{
			"resX": in.Collector.ResX, "resY": in.Collector.ResY, "resT": resT,
		}
	}

	raw, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("mcvox: encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "manifest.yaml"), raw, 0o644); err != nil {
		return fmt.Errorf("mcvox: writing manifest: %w", err)
	}
	return nil
}

func writeFloat64Plane(path string, data []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mcvox: creating %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, 8*len(data))
	for i, v := range data {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("mcvox: writing %s: %w", path, err)
	}
	return nil
}
