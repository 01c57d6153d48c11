// Package config loads sortbench profiles. A profile is a YAML file with
// optional simulation, server and output sections; anything it leaves
// out keeps its default.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/weiihann/sortbench/server"
	"github.com/weiihann/sortbench/workload"
)

// Config is the full set of sortbench settings.
type Config struct {
	Simulation workload.Config `yaml:"simulation"`
	Server     server.Config   `yaml:"server"`
	Output     Output          `yaml:"output"`
}

// Output names the files written by a batch run.
type Output struct {
	Dir         string `yaml:"dir"`
	DatasetFile string `yaml:"dataset_file"`
	ResultsFile string `yaml:"results_file"`
	ChartsFile  string `yaml:"charts_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Simulation: workload.DefaultConfig(),
		Server:     server.DefaultConfig(),
		Output: Output{
			Dir:         "results",
			DatasetFile: "array_data.json",
			ResultsFile: "results.json",
			ChartsFile:  "benchmark.html",
		},
	}
}

// DatasetPath returns the dataset file joined with the output dir.
func (o Output) DatasetPath() string {
	return filepath.Join(o.Dir, o.DatasetFile)
}

// ResultsPath returns the results file joined with the output dir.
func (o Output) ResultsPath() string {
	return filepath.Join(o.Dir, o.ResultsFile)
}

// ChartsPath returns the charts file joined with the output dir.
func (o Output) ChartsPath() string {
	return filepath.Join(o.Dir, o.ChartsFile)
}

// Load reads the profile at path over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes a YAML profile from r over the defaults. Unknown keys
// are rejected.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode YAML: %w", err)
	}

	if err := cfg.Simulation.Validate(); err != nil {
		return Config{}, fmt.Errorf("simulation: %w", err)
	}

	return cfg, nil
}
