// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// EncodingConfig is settings for the QUBO encoder
type EncodingConfig struct {
	// the objective weight rewarding each selected overlap edge
	Objective float64 `mapstructure:"objective"`

	// the requested constraint penalty; raised to the computed
	// dominance floor when it is too small
	Penalty float64 `mapstructure:"penalty"`

	// whether to weight edges by the bases their target adds to the
	// contig instead of uniformly
	LengthWeighted bool `mapstructure:"length-weighted"`

	// the hard ceiling on variables per encoded problem
	MaxVariables int `mapstructure:"max-vars"`
}

// SolverConfig is settings for the solver backends
type SolverConfig struct {
	// the backend name: "anneal" or "exhaustive"
	Backend string `mapstructure:"backend"`

	// search depth per sample (the quantum path's ansatz layers p)
	Depth int `mapstructure:"depth"`

	// number of samples to draw (the quantum path's repetitions s)
	Shots int `mapstructure:"shots"`

	// seed for stochastic backends
	Seed int64 `mapstructure:"seed"`

	// per-cluster solver time limit in seconds; 0 disables it
	TimeoutSeconds int `mapstructure:"timeout-seconds"`

	// number of clusters solved concurrently
	Workers int `mapstructure:"workers"`
}

// Timeout is the per-cluster solver time limit
func (s SolverConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Config is the root-level settings struct, a mix of settings.yaml
// values and command line flags bound through Viper
type Config struct {
	// Encoding settings for the QUBO encoder
	Encoding EncodingConfig `mapstructure:"encoding"`
	// Solver settings for the solving stage
	Solver SolverConfig `mapstructure:"solver"`
}

// setDefaults registers every setting's default with Viper
func setDefaults() {
	viper.SetDefault("encoding.objective", 1.0)
	viper.SetDefault("encoding.penalty", 0.0)
	viper.SetDefault("encoding.length-weighted", false)
	viper.SetDefault("encoding.max-vars", 64)
	viper.SetDefault("solver.backend", "anneal")
	viper.SetDefault("solver.depth", 3)
	viper.SetDefault("solver.shots", 20)
	viper.SetDefault("solver.seed", 1)
	viper.SetDefault("solver.timeout-seconds", 60)
	viper.SetDefault("solver.workers", 4)
}

// New returns a new Config struct populated by Viper settings, either
// from a settings file or from bound command line flags
func New() Config {
	setDefaults()

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		log.Fatalf("unable to decode settings into struct, %v", err)
	}
	return c
}
