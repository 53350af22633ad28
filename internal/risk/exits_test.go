package risk

import (
	"testing"

	"paper-core/internal/ledger"
)

func position(entry, mark, qty, leverage float64) ledger.Position {
	return ledger.Position{EntryPrice: entry, MarkPrice: mark, Quantity: qty, Leverage: leverage}
}

func TestCheck(t *testing.T) {
	r := DefaultRules()

	// With qty=1 and leverage=10, pct = (mark-entry)*10/entry.
	tests := []struct {
		name string
		pos  ledger.Position
		want string
	}{
		{"deep loss", position(100, 99, 1, 10), ReasonStopLoss},         // -0.10
		{"exact stop", position(100, 99.7, 1, 10), ReasonStopLoss},      // -0.03
		{"exact target", position(100, 100.8, 1, 10), ReasonTakeProfit}, // +0.08
		{"big win", position(100, 110, 1, 10), ReasonTakeProfit},        // +1.00
		{"inside band", position(100, 100.1, 1, 10), ""},                // +0.01
		{"flat", position(100, 100, 1, 10), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Check(tt.pos); got != tt.want {
				t.Fatalf("Check(%+v) = %q, want %q", tt.pos, got, tt.want)
			}
		})
	}
}

func TestStopLossCheckedFirst(t *testing.T) {
	// Custom rules where both thresholds trigger at the same mark.
	r := Rules{StopLoss: 0.01, TakeProfit: 0.005}
	p := position(100, 100.2, 1, 10) // pct = +0.02
	if got := r.Check(p); got != ReasonStopLoss {
		t.Fatalf("stop loss must be evaluated first, got %q", got)
	}
}
