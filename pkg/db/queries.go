// Package db persists the simulator session and registered users in SQLite.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store provides the persistence queries used by the engine and the API.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Snapshot bundles everything needed to resume a session after restart.
type Snapshot struct {
	Session   Session
	Positions []Position
	Trades    []Trade
	History   []PriceHistory
}

// SaveSnapshot replaces the persisted session state in one transaction.
// Trades are upserted by id so the log stays append-only across saves.
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sim_positions`); err != nil {
		return fmt.Errorf("clear positions: %w", err)
	}
	for _, p := range snap.Positions {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sim_positions (asset_id, trade_id, symbol, strategy, side, entry_price, mark_price, qty, leverage, entry_time)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.AssetID, p.TradeID, p.Symbol, p.Strategy, p.Side, p.EntryPrice, p.MarkPrice, p.Qty, p.Leverage, p.EntryTime); err != nil {
			return fmt.Errorf("insert position %s: %w", p.AssetID, err)
		}
	}

	for _, t := range snap.Trades {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sim_trades (id, asset_id, symbol, strategy, side, entry_price, exit_price, qty, leverage, pnl, reason, entry_time, exit_time)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, t.ID, t.AssetID, t.Symbol, t.Strategy, t.Side, t.EntryPrice, t.ExitPrice, t.Qty, t.Leverage, t.PnL, t.Reason, t.EntryTime, t.ExitTime); err != nil {
			return fmt.Errorf("insert trade %d: %w", t.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM price_history`); err != nil {
		return fmt.Errorf("clear price history: %w", err)
	}
	for _, h := range snap.History {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO price_history (asset_id, prices, volumes) VALUES (?, ?, ?)
		`, h.AssetID, h.PricesJSON, h.VolumesJSON); err != nil {
			return fmt.Errorf("insert price history %s: %w", h.AssetID, err)
		}
	}

	sess := snap.Session
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO session (id, balance, initial_balance, next_trade_id, paused, enabled, notices, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			balance = excluded.balance,
			initial_balance = excluded.initial_balance,
			next_trade_id = excluded.next_trade_id,
			paused = excluded.paused,
			enabled = excluded.enabled,
			notices = excluded.notices,
			updated_at = CURRENT_TIMESTAMP
	`, sess.Balance, sess.InitialBalance, sess.NextTradeID, sess.Paused, sess.EnabledJSON, sess.NoticesJSON); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	return tx.Commit()
}

// LoadSnapshot restores the persisted session. Returns ErrNotFound when no
// session row has ever been written.
func (s *Store) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot

	row := s.db.QueryRowContext(ctx, `
		SELECT balance, initial_balance, next_trade_id, paused, enabled, notices, updated_at
		FROM session WHERE id = 1
	`)
	err := row.Scan(&snap.Session.Balance, &snap.Session.InitialBalance, &snap.Session.NextTradeID,
		&snap.Session.Paused, &snap.Session.EnabledJSON, &snap.Session.NoticesJSON, &snap.Session.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("load session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT asset_id, trade_id, symbol, strategy, side, entry_price, mark_price, qty, leverage, entry_time
		FROM sim_positions
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.AssetID, &p.TradeID, &p.Symbol, &p.Strategy, &p.Side,
			&p.EntryPrice, &p.MarkPrice, &p.Qty, &p.Leverage, &p.EntryTime); err != nil {
			return Snapshot{}, fmt.Errorf("scan position: %w", err)
		}
		snap.Positions = append(snap.Positions, p)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, err
	}

	tradeRows, err := s.db.QueryContext(ctx, `
		SELECT id, asset_id, symbol, strategy, side, entry_price, exit_price, qty, leverage, pnl, reason, entry_time, exit_time
		FROM sim_trades ORDER BY id
	`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query trades: %w", err)
	}
	defer tradeRows.Close()
	for tradeRows.Next() {
		var t Trade
		if err := tradeRows.Scan(&t.ID, &t.AssetID, &t.Symbol, &t.Strategy, &t.Side,
			&t.EntryPrice, &t.ExitPrice, &t.Qty, &t.Leverage, &t.PnL, &t.Reason, &t.EntryTime, &t.ExitTime); err != nil {
			return Snapshot{}, fmt.Errorf("scan trade: %w", err)
		}
		snap.Trades = append(snap.Trades, t)
	}
	if err := tradeRows.Err(); err != nil {
		return Snapshot{}, err
	}

	histRows, err := s.db.QueryContext(ctx, `SELECT asset_id, prices, volumes FROM price_history`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query price history: %w", err)
	}
	defer histRows.Close()
	for histRows.Next() {
		var h PriceHistory
		if err := histRows.Scan(&h.AssetID, &h.PricesJSON, &h.VolumesJSON); err != nil {
			return Snapshot{}, fmt.Errorf("scan price history: %w", err)
		}
		snap.History = append(snap.History, h)
	}
	if err := histRows.Err(); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}

// ClearTrades drops the completed-trade log, used on session reset.
func (s *Store) ClearTrades(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sim_trades`)
	return err
}

// ----------------------------------------
// User queries
// ----------------------------------------

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)
	`, u.ID, u.Email, u.PasswordHash)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUserByEmail looks a user up by email. Returns ErrNotFound when absent.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	var u User
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = ?
	`, email)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}
