package engine

import (
	"time"

	"paper-core/internal/ledger"
)

// StrategyView is the API-facing view of one strategy's configuration.
type StrategyView struct {
	Enabled       bool    `json:"enabled"`
	Period        int     `json:"period"`
	BuyThreshold  float64 `json:"buy_threshold"`
	SellThreshold float64 `json:"sell_threshold"`
}

// PriceIndicator is the per-asset price summary shown by the state endpoint.
type PriceIndicator struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	PrevPrice float64 `json:"prev_price"`
	ChangePct float64 `json:"change_pct"`
}

// State is a consistent point-in-time view of the whole simulation.
type State struct {
	Balance         float64                   `json:"balance"`
	InitialBalance  float64                   `json:"initial_balance"`
	Paused          bool                      `json:"paused"`
	LastTick        time.Time                 `json:"last_tick"`
	NextTradeID     int64                     `json:"next_trade_id"`
	Positions       []ledger.Position         `json:"positions"`
	Trades          []ledger.Trade            `json:"trades"`
	Strategies      map[string]StrategyView   `json:"strategies"`
	PriceIndicators map[string]PriceIndicator `json:"price_indicators"`
	Notices         []Notice                  `json:"notices"`
}

// Status is the lightweight health view.
type Status struct {
	Status        string    `json:"status"`
	Paused        bool      `json:"paused"`
	LastTick      time.Time `json:"last_tick"`
	Assets        int       `json:"assets"`
	Balance       float64   `json:"balance"`
	OpenPositions int       `json:"open_positions"`
	ClosedTrades  int       `json:"closed_trades"`
}

// TradeOpened is published on the bus when a position is opened.
type TradeOpened struct {
	Position ledger.Position `json:"position"`
	Reading  float64         `json:"reading"`
}

// TradeClosed is published on the bus when a position is settled.
type TradeClosed struct {
	Trade ledger.Trade `json:"trade"`
}
