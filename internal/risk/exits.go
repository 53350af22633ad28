// Package risk evaluates exit rules on open positions.
package risk

import "paper-core/internal/ledger"

// Default thresholds on the entry-price-relative profit figure.
const (
	DefaultStopLoss   = -0.03
	DefaultTakeProfit = 0.08
)

// Exit reasons recorded on closed trades.
const (
	ReasonStopLoss   = "STOP_LOSS"
	ReasonTakeProfit = "TAKE_PROFIT"
	ReasonSignal     = "SIGNAL"
	ReasonReset      = "RESET"
)

// Rules holds the exit thresholds checked on every mark.
type Rules struct {
	StopLoss   float64
	TakeProfit float64
}

func DefaultRules() Rules {
	return Rules{StopLoss: DefaultStopLoss, TakeProfit: DefaultTakeProfit}
}

// Check returns the exit reason the position has triggered at its current
// mark, or "" when it should stay open. Stop loss is checked before take
// profit.
func (r Rules) Check(p ledger.Position) string {
	pct := p.PnLPercent()
	if pct <= r.StopLoss {
		return ReasonStopLoss
	}
	if pct >= r.TakeProfit {
		return ReasonTakeProfit
	}
	return ""
}
