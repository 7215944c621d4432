package rentab

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds are the business parameters behind the decision classifier.
// They live in one table so tuning and test fixtures never touch the
// classification logic itself.
type Thresholds struct {
	// Resale: below MarginPctNoGo the deal is NO_GO; at or above
	// MarginPctTarget (with the IRR target also met) it is GO.
	MarginPctNoGo   float64 `yaml:"margin_pct_no_go"`
	MarginPctTarget float64 `yaml:"margin_pct_target"`
	IrrPctTarget    float64 `yaml:"irr_pct_target"`

	// Rental: negative cashflow is NO_GO; yield below the floor is NO_GO,
	// between floor and target is GO_WITH_RESERVES.
	GrossYieldPctFloor  float64 `yaml:"gross_yield_pct_floor"`
	GrossYieldPctTarget float64 `yaml:"gross_yield_pct_target"`
}

// MultiplierSet transforms the strategy-relevant input fields before the
// formulas run. 1.0 everywhere is the identity (base scenario).
type MultiplierSet struct {
	ResalePrice float64 `yaml:"resale_price"`
	WorksBudget float64 `yaml:"works_budget"`
	MonthlyRent float64 `yaml:"monthly_rent"`
	Duration    float64 `yaml:"duration"`
}

type Multipliers struct {
	Optimistic  MultiplierSet `yaml:"optimistic"`
	Pessimistic MultiplierSet `yaml:"pessimistic"`
}

// Shocks are the stress-test magnitudes, expressed as fractions.
type Shocks struct {
	ResaleDrop   float64 `yaml:"resale_drop"`
	WorksOverrun float64 `yaml:"works_overrun"`
}

type Config struct {
	Thresholds  Thresholds  `yaml:"thresholds"`
	Multipliers Multipliers `yaml:"multipliers"`
	Shocks      Shocks      `yaml:"shocks"`
}

func DefaultConfig() Config {
	return Config{
		Thresholds: Thresholds{
			MarginPctNoGo:       2,
			MarginPctTarget:     10,
			IrrPctTarget:        12,
			GrossYieldPctFloor:  4,
			GrossYieldPctTarget: 6,
		},
		Multipliers: Multipliers{
			Optimistic:  MultiplierSet{ResalePrice: 1.05, WorksBudget: 0.90, MonthlyRent: 1.05, Duration: 1.0},
			Pessimistic: MultiplierSet{ResalePrice: 0.92, WorksBudget: 1.15, MonthlyRent: 0.95, Duration: 1.2},
		},
		Shocks: Shocks{ResaleDrop: 0.05, WorksOverrun: 0.10},
	}
}

// LoadConfig reads a YAML override file on top of the defaults. Fields the
// file omits keep their default value; fields it sets are taken as written,
// including explicit zeros such as gross_yield_pct_floor: 0.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	blob, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(blob, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects multiplier sets that would break the scenario ordering:
// optimistic must be favorable and pessimistic unfavorable on every metric
// the classifier reads.
func (c Config) Validate() error {
	o, p := c.Multipliers.Optimistic, c.Multipliers.Pessimistic
	if o.ResalePrice < 1 || o.WorksBudget > 1 || o.MonthlyRent < 1 || o.Duration <= 0 || o.Duration > 1 {
		return fmt.Errorf("optimistic multipliers must not be unfavorable (resale>=1, works<=1, rent>=1, 0<duration<=1)")
	}
	if p.ResalePrice > 1 || p.WorksBudget < 1 || p.MonthlyRent > 1 || p.Duration < 1 {
		return fmt.Errorf("pessimistic multipliers must not be favorable (resale<=1, works>=1, rent<=1, duration>=1)")
	}
	if c.Shocks.ResaleDrop < 0 || c.Shocks.ResaleDrop >= 1 || c.Shocks.WorksOverrun < 0 {
		return fmt.Errorf("shocks out of range")
	}
	if c.Thresholds.MarginPctTarget < c.Thresholds.MarginPctNoGo {
		return fmt.Errorf("margin_pct_target below margin_pct_no_go")
	}
	if c.Thresholds.GrossYieldPctTarget < c.Thresholds.GrossYieldPctFloor {
		return fmt.Errorf("gross_yield_pct_target below gross_yield_pct_floor")
	}
	return nil
}
