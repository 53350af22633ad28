package db

import "time"

// Position is one persisted open position row.
type Position struct {
	TradeID    int64
	AssetID    string
	Symbol     string
	Strategy   string
	Side       string
	EntryPrice float64
	MarkPrice  float64
	Qty        float64
	Leverage   float64
	EntryTime  time.Time
}

// Trade is one persisted completed trade row.
type Trade struct {
	ID         int64
	AssetID    string
	Symbol     string
	Strategy   string
	Side       string
	EntryPrice float64
	ExitPrice  float64
	Qty        float64
	Leverage   float64
	PnL        float64
	Reason     string
	EntryTime  time.Time
	ExitTime   time.Time
}

// Session is the single persisted simulator session row. Enabled and Notices
// are stored as JSON blobs since their shapes evolve with the engine.
type Session struct {
	Balance        float64
	InitialBalance float64
	NextTradeID    int64
	Paused         bool
	EnabledJSON    string
	NoticesJSON    string
	UpdatedAt      time.Time
}

// PriceHistory is the persisted indicator window for one asset.
type PriceHistory struct {
	AssetID     string
	PricesJSON  string
	VolumesJSON string
}

// User is one registered API user.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
