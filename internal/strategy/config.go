package strategy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"paper-core/internal/market"
)

// File is the parsed assets configuration: which instruments to track and how
// each strategy is tuned.
type File struct {
	Assets  []market.Asset
	Params  map[Kind]Params
	Enabled map[Kind]bool
}

type fileYAML struct {
	Assets     []market.Asset          `yaml:"assets"`
	Strategies map[string]strategyYAML `yaml:"strategies"`
}

type strategyYAML struct {
	Period        *int     `yaml:"period"`
	BuyThreshold  *float64 `yaml:"buy_threshold"`
	SellThreshold *float64 `yaml:"sell_threshold"`
	Enabled       *bool    `yaml:"enabled"`
}

// LoadFile reads and validates the assets YAML file. Strategies not listed in
// the file keep their defaults and start enabled.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assets file: %w", err)
	}

	var raw fileYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse assets file: %w", err)
	}

	if len(raw.Assets) == 0 {
		return nil, fmt.Errorf("assets file %s lists no assets", path)
	}
	seen := make(map[string]bool, len(raw.Assets))
	for _, a := range raw.Assets {
		if a.ID == "" || a.Symbol == "" {
			return nil, fmt.Errorf("asset entry missing id or symbol: %+v", a)
		}
		if seen[a.ID] {
			return nil, fmt.Errorf("duplicate asset id %q", a.ID)
		}
		seen[a.ID] = true
	}

	f := &File{
		Assets:  raw.Assets,
		Params:  DefaultParams(),
		Enabled: make(map[Kind]bool, NumKinds()),
	}
	for _, k := range Priority {
		f.Enabled[k] = true
	}

	for name, s := range raw.Strategies {
		kind, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		p := f.Params[kind]
		if s.Period != nil {
			p.Period = *s.Period
		}
		if s.BuyThreshold != nil {
			p.BuyThreshold = *s.BuyThreshold
		}
		if s.SellThreshold != nil {
			p.SellThreshold = *s.SellThreshold
		}
		if p.Period <= 0 {
			return nil, fmt.Errorf("strategy %s: period must be positive", name)
		}
		if p.BuyThreshold >= p.SellThreshold {
			return nil, fmt.Errorf("strategy %s: buy threshold %.2f must be below sell threshold %.2f",
				name, p.BuyThreshold, p.SellThreshold)
		}
		f.Params[kind] = p
		if s.Enabled != nil {
			f.Enabled[kind] = *s.Enabled
		}
	}

	return f, nil
}
