// Package config loads a YAML simulation description into the engine's
// sim.Input record, independent of any particular host's native
// configuration format.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ahewitt/mcvox/pkg/beam"
	"github.com/ahewitt/mcvox/pkg/collector"
	"github.com/ahewitt/mcvox/pkg/core"
	"github.com/ahewitt/mcvox/pkg/geometry"
	"github.com/ahewitt/mcvox/pkg/sim"
	"github.com/ahewitt/mcvox/pkg/validate"
)

func vec3(a [3]float64) core.Vec3 {
	return core.NewVec3(a[0], a[1], a[2])
}

// document mirrors the on-disk YAML shape. Field names are lowerCamel
// in the file, matching the spec's own Input field names (§6) rather
// than Go's exported-field convention, so a config file reads like the
// spec it implements.
type document struct {
	SilentMode     bool    `yaml:"silentMode"`
	UseAllCPUs     bool    `yaml:"useAllCPUs"`
	SimulationTime float64 `yaml:"simulationTime"`

	Grid gridDoc `yaml:"grid"`
	Beam beamDoc `yaml:"beam"`

	UseLightCollector bool          `yaml:"useLightCollector"`
	LightCollector    *collectorDoc `yaml:"lightCollector"`
}

type gridDoc struct {
	Dx            float64   `yaml:"dx"`
	Dy            float64   `yaml:"dy"`
	Dz            float64   `yaml:"dz"`
	Nx            int       `yaml:"nx"`
	Ny            int       `yaml:"ny"`
	Nz            int       `yaml:"nz"`
	Boundary      int       `yaml:"boundaryType"`
	Materials     []int     `yaml:"materials"`
	Properties    []matDoc  `yaml:"mediaProperties"`
	RefractiveIdx []float64 `yaml:"ri"`
}

type matDoc struct {
	Mua float64 `yaml:"mua"`
	Mus float64 `yaml:"mus"`
	G   float64 `yaml:"g"`
}

type beamDoc struct {
	Kind       string    `yaml:"beamType"`
	Focus      [3]float64 `yaml:"focus"`
	U          [3]float64 `yaml:"u"`
	V          [3]float64 `yaml:"v"`
	Waist      float64    `yaml:"waist"`
	Divergence float64    `yaml:"divergence"`
	Power      float64    `yaml:"power"`

	Source   []float64 `yaml:"sourceDistribution"`
	SourceNx int       `yaml:"sourceNx"`
	SourceNy int       `yaml:"sourceNy"`
	SourceNz int       `yaml:"sourceNz"`
}

type collectorDoc struct {
	Center    [3]float64 `yaml:"center"`
	Theta     float64    `yaml:"theta"`
	Phi       float64    `yaml:"phi"`
	F         float64    `yaml:"f"`
	Fiber     bool       `yaml:"fiber"`
	Diameter  float64    `yaml:"diameter"`
	FieldSize float64    `yaml:"fieldSize"`
	NA        float64    `yaml:"na"`
	ResX      int        `yaml:"resX"`
	ResY      int        `yaml:"resY"`
	NTimeBins int        `yaml:"nTimeBins"`
	TStart    float64    `yaml:"tStart"`
	TEnd      float64    `yaml:"tEnd"`
}

var beamKinds = map[string]beam.Kind{
	"pencil":                      beam.Pencil,
	"isotropic-point":             beam.IsotropicPoint,
	"plane-wave":                  beam.PlaneWave,
	"gaussian-focus/gaussian-far": beam.GaussianFocusGaussianFar,
	"gaussian-focus/tophat-far":   beam.GaussianFocusTophatFar,
	"tophat-focus/gaussian-far":   beam.TophatFocusGaussianFar,
	"tophat-focus/tophat-far":     beam.TophatFocusTophatFar,
	"LG01":                        beam.LG01,
	"volumetric-source":           beam.VolumetricSource,
}

// Load reads and parses the YAML file at path into a sim.Input, then
// validates it via validate.Config before returning. A parse error and
// a validation error are both returned as plain errors; callers that
// need to distinguish them can use errors.As against *validate.Error.
func Load(path string) (sim.Input, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return sim.Input{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return sim.Input{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	in, err := doc.toInput()
	if err != nil {
		return sim.Input{}, fmt.Errorf("config: %s: %w", path, err)
	}

	if err := validate.Config(in.Grid, in.Beam, in.UseLightCollector, in.Collector); err != nil {
		return sim.Input{}, err
	}
	return in, nil
}

func (d document) toInput() (sim.Input, error) {
	kind, ok := beamKinds[d.Beam.Kind]
	if !ok {
		return sim.Input{}, fmt.Errorf("unknown beamType %q", d.Beam.Kind)
	}

	g := &geometry.Grid{
		Dx: d.Grid.Dx, Dy: d.Grid.Dy, Dz: d.Grid.Dz,
		Nx: d.Grid.Nx, Ny: d.Grid.Ny, Nz: d.Grid.Nz,
		Boundary:      geometry.Boundary(d.Grid.Boundary),
		Materials:     d.Grid.Materials,
		RefractiveIdx: d.Grid.RefractiveIdx,
	}
	g.Properties = make([]geometry.Material, len(d.Grid.Properties))
	for i, m := range d.Grid.Properties {
		g.Properties[i] = geometry.Material{Mua: m.Mua, Mus: m.Mus, G: m.G}
	}

	b := &beam.Beam{
		Kind:       kind,
		Focus:      vec3(d.Beam.Focus),
		U:          vec3(d.Beam.U),
		V:          vec3(d.Beam.V),
		Waist:      d.Beam.Waist,
		Divergence: d.Beam.Divergence,
		Power:      d.Beam.Power,
		Source:     d.Beam.Source,
		SourceNx:   d.Beam.SourceNx,
		SourceNy:   d.Beam.SourceNy,
		SourceNz:   d.Beam.SourceNz,
	}

	in := sim.Input{
		SilentMode:        d.SilentMode,
		UseAllCPUs:        d.UseAllCPUs,
		SimulationTime:    d.SimulationTime,
		Grid:              g,
		Beam:              b,
		UseLightCollector: d.UseLightCollector,
	}

	if d.UseLightCollector {
		if d.LightCollector == nil {
			return sim.Input{}, fmt.Errorf("useLightCollector is set but lightCollector is missing")
		}
		lc := d.LightCollector
		resT := lc.NTimeBins + 2
		if lc.NTimeBins == 0 {
			resT = 1
		}
		f := lc.F
		if lc.Fiber {
			f = collector.Infinite
		}
		in.Collector = &collector.Collector{
			Center:    vec3(lc.Center),
			Theta:     lc.Theta,
			Phi:       lc.Phi,
			F:         f,
			Diameter:  lc.Diameter,
			FieldSize: lc.FieldSize,
			NA:        lc.NA,
			ResX:      lc.ResX,
			ResY:      lc.ResY,
			ResT:      resT,
			TStart:    lc.TStart,
			TEnd:      lc.TEnd,
		}
	}

	return in, nil
}
