// Package strategy enumerates the indicator strategies the engine evaluates
// and loads their tuning from the assets file.
package strategy

import (
	"errors"
	"fmt"

	"paper-core/internal/indicators"
)

// ErrUnknownStrategy is returned when an external name maps to no Kind.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Kind identifies one indicator strategy.
type Kind int

const (
	KindPTSI Kind = iota
	KindPTSIA
	KindPTSIM
	KindPTSIV
	numKinds
)

// Priority is the fixed order strategies are evaluated in when looking for an
// entry. The first strategy whose reading crosses its buy threshold wins the
// tick for that asset.
var Priority = [...]Kind{KindPTSI, KindPTSIA, KindPTSIM, KindPTSIV}

// NumKinds reports how many strategy kinds exist.
func NumKinds() int { return int(numKinds) }

func (k Kind) String() string {
	switch k {
	case KindPTSI:
		return "ptsi"
	case KindPTSIA:
		return "ptsia"
	case KindPTSIM:
		return "ptsim"
	case KindPTSIV:
		return "ptsiv"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps an external strategy name to its Kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "ptsi":
		return KindPTSI, nil
	case "ptsia":
		return KindPTSIA, nil
	case "ptsim":
		return KindPTSIM, nil
	case "ptsiv":
		return KindPTSIV, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Params tunes one strategy kind.
type Params struct {
	Period        int     `yaml:"period"`
	BuyThreshold  float64 `yaml:"buy_threshold"`
	SellThreshold float64 `yaml:"sell_threshold"`
}

// DefaultParams returns the built-in tuning used when the assets file does
// not override a strategy.
func DefaultParams() map[Kind]Params {
	return map[Kind]Params{
		KindPTSI:  {Period: 20, BuyThreshold: 20, SellThreshold: 80},
		KindPTSIA: {Period: 25, BuyThreshold: 25, SellThreshold: 75},
		KindPTSIM: {Period: 20, BuyThreshold: 22, SellThreshold: 78},
		KindPTSIV: {Period: 20, BuyThreshold: 24, SellThreshold: 76},
	}
}

// Evaluate computes the indicator reading for kind over the given windows.
// The second result is false when the windows are too short for the kind.
func Evaluate(k Kind, prices, volumes []float64, p Params) (float64, bool) {
	switch k {
	case KindPTSI:
		return indicators.PTSI(prices, p.Period)
	case KindPTSIA:
		return indicators.PTSIAdaptive(prices)
	case KindPTSIM:
		return indicators.PTSIMomentum(prices)
	case KindPTSIV:
		return indicators.PTSIVolume(prices, volumes)
	}
	return 0, false
}
