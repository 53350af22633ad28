package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"paper-core/internal/ledger"
	"paper-core/internal/strategy"
	"paper-core/pkg/db"
)

// Save writes the current session to the store so a restart resumes where
// the simulation left off.
func (e *Engine) Save(ctx context.Context, store *db.Store) error {
	e.mu.Lock()
	snap, err := e.snapshotLocked()
	e.mu.Unlock()
	if err != nil {
		return err
	}
	return store.SaveSnapshot(ctx, snap)
}

// Load restores a previously saved session. A db.ErrNotFound from the store
// is passed through so callers can start fresh.
func (e *Engine) Load(ctx context.Context, store *db.Store) error {
	snap, err := store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.restoreLocked(snap)
}

func (e *Engine) snapshotLocked() (db.Snapshot, error) {
	var snap db.Snapshot

	for _, p := range e.book.Positions() {
		snap.Positions = append(snap.Positions, db.Position{
			TradeID:    p.TradeID,
			AssetID:    p.AssetID,
			Symbol:     p.Symbol,
			Strategy:   p.Strategy,
			Side:       p.Side,
			EntryPrice: p.EntryPrice,
			MarkPrice:  p.MarkPrice,
			Qty:        p.Quantity,
			Leverage:   p.Leverage,
			EntryTime:  p.EntryTime,
		})
	}
	for _, t := range e.book.Trades() {
		snap.Trades = append(snap.Trades, db.Trade{
			ID:         t.ID,
			AssetID:    t.AssetID,
			Symbol:     t.Symbol,
			Strategy:   t.Strategy,
			Side:       t.Side,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			Qty:        t.Quantity,
			Leverage:   t.Leverage,
			PnL:        t.PnL,
			Reason:     t.Reason,
			EntryTime:  t.EntryTime,
			ExitTime:   t.ExitTime,
		})
	}

	prices, volumes := e.history.Snapshot()
	for id, w := range prices {
		pJSON, err := json.Marshal(w)
		if err != nil {
			return db.Snapshot{}, fmt.Errorf("marshal prices for %s: %w", id, err)
		}
		vJSON, err := json.Marshal(volumes[id])
		if err != nil {
			return db.Snapshot{}, fmt.Errorf("marshal volumes for %s: %w", id, err)
		}
		snap.History = append(snap.History, db.PriceHistory{
			AssetID:     id,
			PricesJSON:  string(pJSON),
			VolumesJSON: string(vJSON),
		})
	}

	enabled := make(map[string]bool, len(e.enabled))
	for k, v := range e.enabled {
		enabled[k.String()] = v
	}
	enabledJSON, err := json.Marshal(enabled)
	if err != nil {
		return db.Snapshot{}, fmt.Errorf("marshal enabled map: %w", err)
	}
	noticesJSON, err := json.Marshal(e.notices.list())
	if err != nil {
		return db.Snapshot{}, fmt.Errorf("marshal notices: %w", err)
	}

	snap.Session = db.Session{
		Balance:        e.balance.Balance(),
		InitialBalance: e.balance.Initial(),
		NextTradeID:    e.book.NextID(),
		Paused:         e.paused,
		EnabledJSON:    string(enabledJSON),
		NoticesJSON:    string(noticesJSON),
	}
	return snap, nil
}

func (e *Engine) restoreLocked(snap db.Snapshot) error {
	positions := make([]ledger.Position, 0, len(snap.Positions))
	for _, p := range snap.Positions {
		positions = append(positions, ledger.Position{
			TradeID:    p.TradeID,
			AssetID:    p.AssetID,
			Symbol:     p.Symbol,
			Strategy:   p.Strategy,
			Side:       p.Side,
			EntryPrice: p.EntryPrice,
			MarkPrice:  p.MarkPrice,
			Quantity:   p.Qty,
			Leverage:   p.Leverage,
			EntryTime:  p.EntryTime,
		})
	}
	trades := make([]ledger.Trade, 0, len(snap.Trades))
	for _, t := range snap.Trades {
		trades = append(trades, ledger.Trade{
			ID:         t.ID,
			AssetID:    t.AssetID,
			Symbol:     t.Symbol,
			Strategy:   t.Strategy,
			Side:       t.Side,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			Quantity:   t.Qty,
			Leverage:   t.Leverage,
			PnL:        t.PnL,
			Reason:     t.Reason,
			EntryTime:  t.EntryTime,
			ExitTime:   t.ExitTime,
		})
	}
	e.book.Restore(positions, trades, snap.Session.NextTradeID)

	prices := make(map[string][]float64, len(snap.History))
	volumes := make(map[string][]float64, len(snap.History))
	for _, h := range snap.History {
		var p, v []float64
		if err := json.Unmarshal([]byte(h.PricesJSON), &p); err != nil {
			return fmt.Errorf("unmarshal prices for %s: %w", h.AssetID, err)
		}
		if err := json.Unmarshal([]byte(h.VolumesJSON), &v); err != nil {
			return fmt.Errorf("unmarshal volumes for %s: %w", h.AssetID, err)
		}
		prices[h.AssetID] = p
		volumes[h.AssetID] = v
	}
	e.history.Restore(prices, volumes)

	if snap.Session.EnabledJSON != "" {
		enabled := make(map[string]bool)
		if err := json.Unmarshal([]byte(snap.Session.EnabledJSON), &enabled); err != nil {
			return fmt.Errorf("unmarshal enabled map: %w", err)
		}
		for name, v := range enabled {
			if kind, err := strategy.ParseKind(name); err == nil {
				e.enabled[kind] = v
			}
		}
	}
	if snap.Session.NoticesJSON != "" {
		var notices []Notice
		if err := json.Unmarshal([]byte(snap.Session.NoticesJSON), &notices); err != nil {
			return fmt.Errorf("unmarshal notices: %w", err)
		}
		e.notices.restore(notices)
	}

	e.balance.Restore(snap.Session.Balance, snap.Session.InitialBalance)
	e.paused = snap.Session.Paused
	return nil
}
