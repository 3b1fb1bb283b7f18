package impact

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/knowbase/faqprov/pkg/faqerrors"
)

// Thresholds holds the score cutoffs that drive the affected decision
// and the severity staircase. All values are fractions in [0, 1].
type Thresholds struct {
	// Affected is the minimum overall score at which a pairing is
	// marked affected and its provenance links become candidates for
	// invalidation.
	Affected float64 `yaml:"affected"`

	// High, Medium and Low bound the severity buckets: a score at or
	// above High is high, at or above Medium is medium, strictly above
	// Low is low, and anything else is none.
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
	Low    float64 `yaml:"low"`
}

// DefaultThresholds returns the stock cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Affected: 0.5,
		High:     0.7,
		Medium:   0.4,
		Low:      0.1,
	}
}

// Validate checks range and ordering of the cutoffs.
func (t Thresholds) Validate() error {
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"affected", t.Affected},
		{"high", t.High},
		{"medium", t.Medium},
		{"low", t.Low},
	} {
		if c.v < 0 || c.v > 1 {
			return faqerrors.Validationf(c.name, "threshold %v outside [0, 1]", c.v)
		}
	}
	if !(t.Low < t.Medium && t.Medium < t.High) {
		return faqerrors.Validationf("thresholds", "require low < medium < high, got %v < %v < %v",
			t.Low, t.Medium, t.High)
	}
	// The affected cutoff must sit inside the staircase. Above High it
	// would yield high-severity records that are not affected; at or below
	// Low it would mark none-severity records affected, and those drive
	// provenance invalidation.
	if !(t.Low < t.Affected && t.Affected <= t.High) {
		return faqerrors.Validationf("affected", "cutoff %v must satisfy low < affected <= high (low=%v, high=%v)",
			t.Affected, t.Low, t.High)
	}
	return nil
}

// LevelFor maps an overall score onto the severity staircase.
func (t Thresholds) LevelFor(overall float64) Level {
	switch {
	case overall >= t.High:
		return LevelHigh
	case overall >= t.Medium:
		return LevelMedium
	case overall > t.Low:
		return LevelLow
	}
	return LevelNone
}

// Affects reports whether a score crosses the affected cutoff.
// The comparison is inclusive: a score exactly at the cutoff affects.
func (t Thresholds) Affects(overall float64) bool {
	return overall >= t.Affected
}

// Config is the analyzer's tunable surface, loadable from YAML.
type Config struct {
	Thresholds Thresholds `yaml:"thresholds"`
	Weights    Weights    `yaml:"weights"`

	// Version is recorded on every analysis row so results can be
	// traced back to the configuration that produced them.
	Version string `yaml:"version"`
}

// DefaultConfig returns the stock analyzer configuration.
func DefaultConfig() Config {
	return Config{
		Thresholds: DefaultThresholds(),
		Weights:    DefaultWeights(),
		Version:    "1.0",
	}
}

// LoadConfig reads an analyzer configuration from a YAML file.
// Missing fields fall back to the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading impact config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing impact config %s: %w", path, err)
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return cfg, err
	}
	if err := cfg.Weights.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
