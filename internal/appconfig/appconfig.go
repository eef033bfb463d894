// Package appconfig manages loading and interpreting harness configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mwiater/kernbench/internal/errs"
	"github.com/mwiater/kernbench/internal/external"
	"github.com/mwiater/kernbench/internal/oracle"
)

const (
	// DefaultConfigPath is where the CLI looks for a configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is checked when DefaultConfigPath does not exist.
	legacyConfigPath = "kernbench.json"
	// defaultTimeout bounds each external benchmark process.
	defaultTimeout = 60 * time.Second
	defaultLogFile = "kernbench.log"
)

// Config represents the top-level harness configuration.
type Config struct {
	Profile            string                       `json:"profile,omitempty" mapstructure:"profile"`
	Warmup             *int                         `json:"warmup,omitempty" mapstructure:"warmup"`
	Runs               int                          `json:"runs,omitempty" mapstructure:"runs"`
	TimeoutSeconds     int                          `json:"timeout,omitempty" mapstructure:"timeout"`
	Seed               *uint64                      `json:"seed,omitempty" mapstructure:"seed"`
	Kernels            []string                     `json:"kernels,omitempty" mapstructure:"kernels"`
	LogFile            string                       `json:"logFile,omitempty" mapstructure:"logFile"`
	Debug              bool                         `json:"debug" mapstructure:"debug"`
	JSONMode           bool                         `json:"jsonMode" mapstructure:"jsonMode"`
	Styled             bool                         `json:"styled" mapstructure:"styled"`
	ExportPath         string                       `json:"export,omitempty" mapstructure:"export"`
	ExportMarkdownPath string                       `json:"exportMarkdown,omitempty" mapstructure:"exportMarkdown"`
	Tolerances         map[string]ToleranceOverride `json:"tolerances,omitempty" mapstructure:"tolerances"`
	External           []ExternalBenchmark          `json:"external,omitempty" mapstructure:"external"`
	ConfigPath         string                       `json:"-" mapstructure:"-"`
}

// ToleranceOverride replaces the built-in comparison policy for a kernel
// or a whole family.
type ToleranceOverride struct {
	Absolute float64 `json:"abs,omitempty" mapstructure:"abs"`
	Relative float64 `json:"rel,omitempty" mapstructure:"rel"`
	Exact    bool    `json:"exact,omitempty" mapstructure:"exact"`
}

// Tolerance converts the override to the oracle's policy type.
func (o ToleranceOverride) Tolerance() oracle.Tolerance {
	if o.Exact {
		return oracle.ExactTolerance
	}
	return oracle.Tolerance{Absolute: o.Absolute, Relative: o.Relative}
}

// ExternalBenchmark describes a separately built benchmark binary that is
// run as an additional kernel.
type ExternalBenchmark struct {
	Name           string   `json:"name" mapstructure:"name"`
	Binary         string   `json:"binary" mapstructure:"binary"`
	Args           []string `json:"args,omitempty" mapstructure:"args"`
	Size           int      `json:"size" mapstructure:"size"`
	BlockSize      int      `json:"blockSize,omitempty" mapstructure:"blockSize"`
	TimeoutSeconds int      `json:"timeout,omitempty" mapstructure:"timeout"`
}

// Runner builds the process runner for e, falling back to fallback when e
// sets no timeout of its own.
func (e ExternalBenchmark) Runner(fallback time.Duration) external.Runner {
	timeout := fallback
	if e.TimeoutSeconds > 0 {
		timeout = time.Duration(e.TimeoutSeconds) * time.Second
	}
	return external.Runner{Binary: e.Binary, ExtraArgs: e.Args, Timeout: timeout}
}

// Request returns the size flags for e. Warm-up and run counts come from
// the harness at execution time.
func (e ExternalBenchmark) Request() external.Request {
	return external.Request{Size: e.Size, BlockSize: e.BlockSize, Runs: 1}
}

// WarmupCount returns the number of discarded warm-up runs per kernel.
func (c Config) WarmupCount() int {
	if c.Warmup != nil {
		return *c.Warmup
	}
	return ProfileFor(c.Profile).Warmup
}

// RunCount returns the number of measured runs per kernel.
func (c Config) RunCount() int {
	if c.Runs != 0 {
		return c.Runs
	}
	return ProfileFor(c.Profile).Runs
}

// SeedValue returns the configured seed, or the profile's seed when none is
// set. The result is never nil.
func (c Config) SeedValue() *uint64 {
	if c.Seed != nil {
		seed := *c.Seed
		return &seed
	}
	seed := ProfileFor(c.Profile).Seed
	return &seed
}

// Timeout returns the per-process deadline for external benchmarks.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the harness log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return defaultLogFile
}

// ToleranceMap returns the configured overrides keyed by kernel or family.
func (c Config) ToleranceMap() map[string]oracle.Tolerance {
	if len(c.Tolerances) == 0 {
		return nil
	}
	out := make(map[string]oracle.Tolerance, len(c.Tolerances))
	for key, o := range c.Tolerances {
		out[key] = o.Tolerance()
	}
	return out
}

// Validate rejects settings the harness cannot honor.
func (c Config) Validate() error {
	if c.Profile != "" && !KnownProfile(c.Profile) {
		return errs.InvalidConfig("unknown profile %q (want one of %s)", c.Profile, strings.Join(ProfileNames(), ", "))
	}
	if w := c.WarmupCount(); w < 0 {
		return errs.InvalidConfig("warmup must be >= 0, got %d", w)
	}
	if r := c.RunCount(); r <= 0 {
		return errs.InvalidConfig("runs must be > 0, got %d", r)
	}
	if c.TimeoutSeconds < 0 {
		return errs.InvalidConfig("timeout must be >= 0, got %d", c.TimeoutSeconds)
	}
	for key, o := range c.Tolerances {
		if o.Absolute < 0 || o.Relative < 0 {
			return errs.InvalidConfig("tolerance %q must be non-negative", key)
		}
	}
	seen := make(map[string]bool, len(c.External))
	for i, e := range c.External {
		switch {
		case strings.TrimSpace(e.Name) == "":
			return errs.InvalidConfig("external benchmark %d has no name", i)
		case strings.TrimSpace(e.Binary) == "":
			return errs.InvalidConfig("external benchmark %q has no binary", e.Name)
		case e.Size < 1:
			return errs.InvalidConfig("external benchmark %q: size must be >= 1, got %d", e.Name, e.Size)
		case seen[e.Name]:
			return errs.InvalidConfig("external benchmark %q is configured twice", e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// Load reads the configuration from path, with fallback to a legacy path
// when path is empty.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		config.ConfigPath = path
		return config, config.Validate()
	}

	if errors.Is(err, os.ErrNotExist) {
		if !explicit {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				config.ConfigPath = legacyConfigPath
				return config, config.Validate()
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("no configuration file found (searched %q and %q)", DefaultConfigPath, legacyConfigPath)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q", path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	dec := json.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}
