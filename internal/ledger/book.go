// Package ledger tracks the simulator's open positions and the immutable
// record of completed trades.
package ledger

import (
	"errors"
	"time"
)

var (
	// ErrPositionExists is returned when opening against an asset that
	// already carries a position.
	ErrPositionExists = errors.New("position already open for asset")
	// ErrNoPosition is returned when closing an asset with nothing open.
	ErrNoPosition = errors.New("no open position for asset")
)

// Position is one open leveraged long.
type Position struct {
	TradeID    int64     `json:"trade_id"`
	AssetID    string    `json:"asset_id"`
	Symbol     string    `json:"symbol"`
	Strategy   string    `json:"strategy"`
	Side       string    `json:"side"`
	EntryPrice float64   `json:"entry_price"`
	MarkPrice  float64   `json:"mark_price"`
	Quantity   float64   `json:"quantity"`
	Leverage   float64   `json:"leverage"`
	EntryTime  time.Time `json:"entry_time"`
}

// UnrealizedPnL is the leveraged paper profit at the current mark.
func (p Position) UnrealizedPnL() float64 {
	return (p.MarkPrice - p.EntryPrice) * p.Quantity * p.Leverage
}

// PnLPercent expresses the unrealized profit relative to the entry price.
// The exit rules read this figure, not profit over notional.
func (p Position) PnLPercent() float64 {
	if p.EntryPrice == 0 {
		return 0
	}
	return p.UnrealizedPnL() / p.EntryPrice
}

// Trade is one completed round trip. Records are append-only.
type Trade struct {
	ID         int64     `json:"id"`
	AssetID    string    `json:"asset_id"`
	Symbol     string    `json:"symbol"`
	Strategy   string    `json:"strategy"`
	Side       string    `json:"side"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Quantity   float64   `json:"quantity"`
	Leverage   float64   `json:"leverage"`
	PnL        float64   `json:"pnl"`
	Reason     string    `json:"reason"`
	EntryTime  time.Time `json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`
}

// Book holds at most one open position per asset plus the trade log. It is
// not safe for concurrent use; the engine serializes access under its own
// lock.
type Book struct {
	positions map[string]*Position
	trades    []Trade
	nextID    int64
}

func NewBook() *Book {
	return &Book{positions: make(map[string]*Position), nextID: 1}
}

// Open records a new long position for the asset.
func (b *Book) Open(assetID, symbol, strategy string, price, qty, leverage float64, at time.Time) (*Position, error) {
	if _, ok := b.positions[assetID]; ok {
		return nil, ErrPositionExists
	}
	p := &Position{
		TradeID:    b.nextID,
		AssetID:    assetID,
		Symbol:     symbol,
		Strategy:   strategy,
		Side:       "LONG",
		EntryPrice: price,
		MarkPrice:  price,
		Quantity:   qty,
		Leverage:   leverage,
		EntryTime:  at,
	}
	b.nextID++
	b.positions[assetID] = p
	return p, nil
}

// Mark updates the position's mark price and returns it.
func (b *Book) Mark(assetID string, price float64) (*Position, error) {
	p, ok := b.positions[assetID]
	if !ok {
		return nil, ErrNoPosition
	}
	p.MarkPrice = price
	return p, nil
}

// Close settles the asset's position at the exit price, appends the completed
// trade and removes the position.
func (b *Book) Close(assetID string, exitPrice float64, reason string, at time.Time) (Trade, error) {
	p, ok := b.positions[assetID]
	if !ok {
		return Trade{}, ErrNoPosition
	}
	tr := Trade{
		ID:         p.TradeID,
		AssetID:    p.AssetID,
		Symbol:     p.Symbol,
		Strategy:   p.Strategy,
		Side:       p.Side,
		EntryPrice: p.EntryPrice,
		ExitPrice:  exitPrice,
		Quantity:   p.Quantity,
		Leverage:   p.Leverage,
		PnL:        (exitPrice - p.EntryPrice) * p.Quantity * p.Leverage,
		Reason:     reason,
		EntryTime:  p.EntryTime,
		ExitTime:   at,
	}
	b.trades = append(b.trades, tr)
	delete(b.positions, assetID)
	return tr, nil
}

// Position returns the open position for the asset, if any.
func (b *Book) Position(assetID string) (*Position, bool) {
	p, ok := b.positions[assetID]
	return p, ok
}

// Positions returns a copy of all open positions keyed by asset id.
func (b *Book) Positions() map[string]Position {
	out := make(map[string]Position, len(b.positions))
	for id, p := range b.positions {
		out[id] = *p
	}
	return out
}

// Trades returns a copy of the completed-trade log, oldest first.
func (b *Book) Trades() []Trade {
	out := make([]Trade, len(b.trades))
	copy(out, b.trades)
	return out
}

// NextID reports the next trade id to be assigned.
func (b *Book) NextID() int64 { return b.nextID }

// Restore replaces the book's contents from a persisted snapshot.
func (b *Book) Restore(positions []Position, trades []Trade, nextID int64) {
	b.positions = make(map[string]*Position, len(positions))
	for i := range positions {
		p := positions[i]
		b.positions[p.AssetID] = &p
	}
	b.trades = make([]Trade, len(trades))
	copy(b.trades, trades)
	if nextID < 1 {
		nextID = 1
	}
	b.nextID = nextID
}

// Reset clears all positions and trades.
func (b *Book) Reset() {
	b.positions = make(map[string]*Position)
	b.trades = nil
	b.nextID = 1
}
