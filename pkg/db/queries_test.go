package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	if err := ApplyMigrations(database); err != nil {
		t.Fatal(err)
	}
	return NewStore(database.DB)
}

func TestLoadSnapshotEmpty(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.LoadSnapshot(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on fresh database, got %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	snap := Snapshot{
		Session: Session{
			Balance:        9700,
			InitialBalance: 10000,
			NextTradeID:    3,
			Paused:         true,
			EnabledJSON:    `{"ptsi":true,"ptsia":false}`,
			NoticesJSON:    `[{"type":"info","message":"started"}]`,
		},
		Positions: []Position{{
			TradeID: 2, AssetID: "bitcoin", Symbol: "BTC", Strategy: "ptsi", Side: "LONG",
			EntryPrice: 64000, MarkPrice: 64100, Qty: 0.0046875, Leverage: 10, EntryTime: now,
		}},
		Trades: []Trade{{
			ID: 1, AssetID: "ethereum", Symbol: "ETH", Strategy: "ptsim", Side: "LONG",
			EntryPrice: 3000, ExitPrice: 3024, Qty: 0.1, Leverage: 10, PnL: 24,
			Reason: "TAKE_PROFIT", EntryTime: now.Add(-time.Hour), ExitTime: now,
		}},
		History: []PriceHistory{{AssetID: "bitcoin", PricesJSON: "[64000,64100]", VolumesJSON: "[1,2]"}},
	}

	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.LoadSnapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Session.Balance != 9700 || !loaded.Session.Paused || loaded.Session.NextTradeID != 3 {
		t.Fatalf("session mismatch: %+v", loaded.Session)
	}
	if len(loaded.Positions) != 1 || loaded.Positions[0].AssetID != "bitcoin" {
		t.Fatalf("positions mismatch: %+v", loaded.Positions)
	}
	if len(loaded.Trades) != 1 || loaded.Trades[0].Reason != "TAKE_PROFIT" {
		t.Fatalf("trades mismatch: %+v", loaded.Trades)
	}
	if len(loaded.History) != 1 || loaded.History[0].PricesJSON != "[64000,64100]" {
		t.Fatalf("history mismatch: %+v", loaded.History)
	}
}

func TestSaveSnapshotReplacesPositionsKeepsTrades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	first := Snapshot{
		Session:   Session{Balance: 10000, InitialBalance: 10000, NextTradeID: 2, EnabledJSON: "{}", NoticesJSON: "[]"},
		Positions: []Position{{TradeID: 1, AssetID: "bitcoin", Symbol: "BTC", Strategy: "ptsi", Side: "LONG", EntryPrice: 1, MarkPrice: 1, Qty: 1, Leverage: 10, EntryTime: now}},
		Trades:    []Trade{{ID: 1, AssetID: "solana", Symbol: "SOL", Strategy: "ptsi", Side: "LONG", EntryPrice: 1, ExitPrice: 2, Qty: 1, Leverage: 10, PnL: 10, Reason: "TAKE_PROFIT", EntryTime: now, ExitTime: now}},
	}
	if err := s.SaveSnapshot(ctx, first); err != nil {
		t.Fatal(err)
	}

	// Position closed, same trade log re-saved plus one new trade.
	second := first
	second.Positions = nil
	second.Trades = append(second.Trades, Trade{ID: 2, AssetID: "bitcoin", Symbol: "BTC", Strategy: "ptsi", Side: "LONG", EntryPrice: 1, ExitPrice: 0.9, Qty: 1, Leverage: 10, PnL: -1, Reason: "STOP_LOSS", EntryTime: now, ExitTime: now})
	if err := s.SaveSnapshot(ctx, second); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.LoadSnapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Positions) != 0 {
		t.Fatalf("positions should be replaced, got %+v", loaded.Positions)
	}
	if len(loaded.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(loaded.Trades))
	}
}

func TestClearTrades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	snap := Snapshot{
		Session: Session{Balance: 10000, InitialBalance: 10000, NextTradeID: 2, EnabledJSON: "{}", NoticesJSON: "[]"},
		Trades:  []Trade{{ID: 1, AssetID: "bitcoin", Symbol: "BTC", Strategy: "ptsi", Side: "LONG", EntryPrice: 1, ExitPrice: 2, Qty: 1, Leverage: 10, PnL: 10, Reason: "TAKE_PROFIT", EntryTime: now, ExitTime: now}},
	}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatal(err)
	}
	if err := s.ClearTrades(ctx); err != nil {
		t.Fatal(err)
	}
	loaded, err := s.LoadSnapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Trades) != 0 {
		t.Fatalf("expected empty trade log, got %+v", loaded.Trades)
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	u := User{ID: "u-1", Email: "trader@example.com", PasswordHash: "hash"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetUserByEmail(ctx, "trader@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "u-1" || got.PasswordHash != "hash" {
		t.Fatalf("user mismatch: %+v", got)
	}

	if err := s.CreateUser(ctx, User{ID: "u-2", Email: "trader@example.com", PasswordHash: "x"}); err == nil {
		t.Fatal("expected unique email violation")
	}
}
