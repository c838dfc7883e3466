// Package config loads SBVH build options from configuration files and the
// environment.
package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/janm31415/fcpw/pkg/accel"
)

// Config mirrors accel.BuildOptions in file form
type Config struct {
	Heuristic  string  `mapstructure:"heuristic"`
	SplitAlpha float64 `mapstructure:"split_alpha"`
	LeafSize   int     `mapstructure:"leaf_size"`
	NBuckets   int     `mapstructure:"n_buckets"`
	NBins      int     `mapstructure:"n_bins"`
	PackLeaves bool    `mapstructure:"pack_leaves"`
	PrintStats bool    `mapstructure:"print_stats"`
}

// envPrefix namespaces environment overrides, e.g. FCPW_LEAF_SIZE=8
const envPrefix = "FCPW"

// Load reads build options from the specified file path. A missing file is
// not an error; defaults and environment overrides still apply.
func Load(configPath string) (accel.BuildOptions, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("fcpw")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return accel.BuildOptions{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	return unmarshal(v)
}

// LoadFromReader loads build options from raw config content (useful for
// testing and embedding)
func LoadFromReader(configType string, content []byte) (accel.BuildOptions, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return accel.BuildOptions{}, fmt.Errorf("failed to read config: %w", err)
	}

	return unmarshal(v)
}

func setDefaults(v *viper.Viper) {
	defaults := accel.DefaultBuildOptions()
	v.SetDefault("heuristic", defaults.Heuristic.String())
	v.SetDefault("split_alpha", defaults.SplitAlpha)
	v.SetDefault("leaf_size", defaults.LeafSize)
	v.SetDefault("n_buckets", defaults.NBuckets)
	v.SetDefault("n_bins", defaults.NBins)
	v.SetDefault("pack_leaves", defaults.PackLeaves)
	v.SetDefault("print_stats", defaults.PrintStats)
}

func unmarshal(v *viper.Viper) (accel.BuildOptions, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return accel.BuildOptions{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg.BuildOptions()
}

// BuildOptions converts the file form into validated accel.BuildOptions
func (c Config) BuildOptions() (accel.BuildOptions, error) {
	heuristic, err := accel.ParseCostHeuristic(c.Heuristic)
	if err != nil {
		return accel.BuildOptions{}, fmt.Errorf("%w: %v", accel.ErrInvalidOptions, err)
	}

	opts := accel.BuildOptions{
		Heuristic:  heuristic,
		SplitAlpha: c.SplitAlpha,
		LeafSize:   c.LeafSize,
		NBuckets:   c.NBuckets,
		NBins:      c.NBins,
		PackLeaves: c.PackLeaves,
		PrintStats: c.PrintStats,
	}
	if err := opts.Validate(); err != nil {
		return accel.BuildOptions{}, err
	}
	return opts, nil
}
