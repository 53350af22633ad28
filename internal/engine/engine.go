// Package engine runs the paper-trading decision loop: it folds quotes into
// the indicator windows, applies exit rules to the open positions and opens
// new ones when a strategy signals an entry.
package engine

import (
	"fmt"
	"sync"
	"time"

	"paper-core/internal/balance"
	"paper-core/internal/events"
	"paper-core/internal/history"
	"paper-core/internal/ledger"
	"paper-core/internal/market"
	"paper-core/internal/monitor"
	"paper-core/internal/risk"
	"paper-core/internal/strategy"
	"paper-core/pkg/cache"
	"paper-core/pkg/i18n"
)

// Position sizing: each entry commits this fraction of the current balance
// as margin, amplified by the fixed leverage.
const (
	riskFraction = 0.03
	leverage     = 10.0
)

// stateNoticeLimit caps how many notices the state endpoint returns; the
// full ring stays available for persistence.
const stateNoticeLimit = 100

// Config wires the engine's static inputs.
type Config struct {
	Assets         []market.Asset
	Params         map[strategy.Kind]strategy.Params
	Enabled        map[strategy.Kind]bool
	InitialBalance float64
	Rules          risk.Rules
	HistoryLimit   int
}

// Engine owns all mutable simulation state behind a single lock.
type Engine struct {
	mu sync.Mutex

	assets         []market.Asset
	params         map[strategy.Kind]strategy.Params
	enabled        map[strategy.Kind]bool
	defaultEnabled map[strategy.Kind]bool
	rules          risk.Rules

	book     *ledger.Book
	balance  *balance.Manager
	history  *history.Store
	notices  noticeRing
	paused   bool
	lastTick time.Time

	quotes  *cache.ShardedQuoteCache
	bus     *events.Bus
	metrics *monitor.SystemMetrics

	now func() time.Time
}

func New(cfg Config, bus *events.Bus, metrics *monitor.SystemMetrics, quotes *cache.ShardedQuoteCache) *Engine {
	if bus == nil {
		bus = events.NewBus()
	}
	if metrics == nil {
		metrics = monitor.NewSystemMetrics()
	}
	if quotes == nil {
		quotes = cache.NewShardedQuoteCache()
	}
	if cfg.Params == nil {
		cfg.Params = strategy.DefaultParams()
	}
	enabled := make(map[strategy.Kind]bool, strategy.NumKinds())
	for _, k := range strategy.Priority {
		enabled[k] = true
	}
	for k, v := range cfg.Enabled {
		enabled[k] = v
	}
	// Reset restores the flags as configured, not as last toggled.
	defaultEnabled := make(map[strategy.Kind]bool, len(enabled))
	for k, v := range enabled {
		defaultEnabled[k] = v
	}
	if cfg.Rules == (risk.Rules{}) {
		cfg.Rules = risk.DefaultRules()
	}

	return &Engine{
		assets:         cfg.Assets,
		params:         cfg.Params,
		enabled:        enabled,
		defaultEnabled: defaultEnabled,
		rules:          cfg.Rules,
		book:           ledger.NewBook(),
		balance:        balance.NewManager(cfg.InitialBalance),
		history:        history.NewStore(cfg.HistoryLimit),
		quotes:         quotes,
		bus:            bus,
		metrics:        metrics,
		now:            time.Now,
	}
}

// AssetIDs returns the tracked asset ids in configuration order.
func (e *Engine) AssetIDs() []string {
	ids := make([]string, len(e.assets))
	for i, a := range e.assets {
		ids[i] = a.ID
	}
	return ids
}

// Tick processes one round of quotes: positions are marked and checked for
// exits first, then flat assets are evaluated for entries. Assets missing
// from the quote map are skipped, their windows untouched.
func (e *Engine) Tick(quotes map[string]market.Quote) {
	e.mu.Lock()
	defer e.mu.Unlock()

	timer := monitor.NewTimer(e.metrics.TickLatency)
	defer timer.Stop()

	now := e.now()
	for _, asset := range e.assets {
		quote, ok := quotes[asset.ID]
		if !ok {
			continue
		}

		e.history.Append(asset.ID, quote.Price, quote.Volume)
		e.quotes.Set(asset.ID, quote)

		if _, open := e.book.Position(asset.ID); open {
			e.manageOpenPosition(asset, quote.Price, now)
			continue
		}
		e.evaluateEntry(asset, quote, now)
	}
	e.lastTick = now
	e.metrics.IncrementTicks()
	e.bus.Publish(events.EventQuoteTick, quotes)
}

// manageOpenPosition marks the position at the new price and closes it when
// an exit rule fires. An asset holding a position is never considered for a
// new entry on the same tick.
func (e *Engine) manageOpenPosition(asset market.Asset, price float64, now time.Time) {
	pos, err := e.book.Mark(asset.ID, price)
	if err != nil {
		return
	}
	reason := e.rules.Check(*pos)
	if reason == "" {
		return
	}
	e.closePosition(asset.ID, price, reason, now)
}

// evaluateEntry walks the strategies in priority order and opens a long on
// the first reading below its buy threshold.
func (e *Engine) evaluateEntry(asset market.Asset, quote market.Quote, now time.Time) {
	prices, volumes := e.history.Window(asset.ID)

	for _, kind := range strategy.Priority {
		if !e.enabled[kind] {
			continue
		}
		params := e.params[kind]
		reading, ok := strategy.Evaluate(kind, prices, volumes, params)
		if !ok {
			continue
		}

		if reading < params.BuyThreshold {
			if e.openPosition(asset, kind, quote.Price, reading, now) {
				return
			}
			continue
		}
		if reading > params.SellThreshold {
			if _, open := e.book.Position(asset.ID); open {
				e.closePosition(asset.ID, quote.Price, risk.ReasonSignal, now)
				return
			}
		}
	}
}

func (e *Engine) openPosition(asset market.Asset, kind strategy.Kind, price, reading float64, now time.Time) bool {
	notional := e.balance.Balance() * riskFraction
	if notional <= 0 || price <= 0 {
		return false
	}
	qty := notional / price

	if err := e.balance.Debit(notional); err != nil {
		e.addNotice(NoticeError, fmt.Sprintf(i18n.M().InsufficientBalance, notional, e.balance.Balance()), now)
		return false
	}
	pos, err := e.book.Open(asset.ID, asset.Symbol, kind.String(), price, qty, leverage, now)
	if err != nil {
		e.balance.Credit(notional)
		return false
	}

	e.metrics.IncrementTradesOpened()
	e.addNotice(NoticeBuy, fmt.Sprintf(i18n.M().PositionOpened, asset.Symbol, kind.String(), price, reading), now)
	e.bus.Publish(events.EventTradeOpened, TradeOpened{Position: *pos, Reading: reading})
	return true
}

func (e *Engine) closePosition(assetID string, price float64, reason string, now time.Time) {
	trade, err := e.book.Close(assetID, price, reason, now)
	if err != nil {
		return
	}
	// Settlement credits the leveraged exit notional.
	e.balance.Credit(trade.Quantity * price * trade.Leverage)

	e.metrics.IncrementTradesClosed()
	e.addNotice(NoticeSell, fmt.Sprintf(i18n.M().PositionClosed, trade.Symbol, price, trade.PnL, reason), now)
	e.bus.Publish(events.EventTradeClosed, TradeClosed{Trade: trade})
}

func (e *Engine) addNotice(typ, message string, now time.Time) {
	n := Notice{Time: now, Type: typ, Message: message}
	e.notices.add(n)
	e.bus.Publish(events.EventNotice, n)
}

// ----------------------------------------
// Control surface
// ----------------------------------------

// Pause stops the loop from processing further ticks.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return
	}
	e.paused = true
	e.addNotice(NoticeInfo, i18n.M().TradingPaused, e.now())
}

// Resume re-enables tick processing.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.paused {
		return
	}
	e.paused = false
	e.addNotice(NoticeInfo, i18n.M().TradingResumed, e.now())
}

// Paused reports whether the engine is paused.
func (e *Engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

// Reset restores the initial balance and drops positions, trades, windows
// and notices. The pause flag is cleared and the enabled-strategy flags
// return to their configured defaults.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.balance.Reset()
	e.book.Reset()
	e.history.Reset()
	e.quotes.Clear()
	e.notices.clear()
	e.paused = false
	for k, v := range e.defaultEnabled {
		e.enabled[k] = v
	}
	e.addNotice(NoticeInfo, i18n.M().EngineReset, e.now())
}

// SetStrategyEnabled toggles one strategy by its external name.
func (e *Engine) SetStrategyEnabled(name string, enabled bool) (strategy.Kind, error) {
	kind, err := strategy.ParseKind(name)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled[kind] = enabled

	msg := i18n.M().StrategyDisabled
	if enabled {
		msg = i18n.M().StrategyEnabled
	}
	e.addNotice(NoticeInfo, fmt.Sprintf(msg, kind.String()), e.now())
	return kind, nil
}

// StrategyEnabled reports whether a strategy currently participates in
// entry evaluation.
func (e *Engine) StrategyEnabled(kind strategy.Kind) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled[kind]
}

// ClearNotices empties the activity feed.
func (e *Engine) ClearNotices() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notices.clear()
}

// State assembles a consistent snapshot of everything the API exposes.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	positions := make([]ledger.Position, 0)
	for _, p := range e.book.Positions() {
		positions = append(positions, p)
	}

	strategies := make(map[string]StrategyView, strategy.NumKinds())
	for _, k := range strategy.Priority {
		p := e.params[k]
		strategies[k.String()] = StrategyView{
			Enabled:       e.enabled[k],
			Period:        p.Period,
			BuyThreshold:  p.BuyThreshold,
			SellThreshold: p.SellThreshold,
		}
	}

	indicators := make(map[string]PriceIndicator, len(e.assets))
	for _, a := range e.assets {
		prices, _ := e.history.Window(a.ID)
		if len(prices) == 0 {
			continue
		}
		ind := PriceIndicator{Symbol: a.Symbol, Name: a.Name, Price: prices[len(prices)-1]}
		if len(prices) > 1 {
			ind.PrevPrice = prices[len(prices)-2]
			if ind.PrevPrice != 0 {
				ind.ChangePct = (ind.Price - ind.PrevPrice) / ind.PrevPrice * 100
			}
		}
		indicators[a.ID] = ind
	}

	notices := e.notices.list()
	if len(notices) > stateNoticeLimit {
		notices = notices[:stateNoticeLimit]
	}

	return State{
		Balance:         e.balance.Balance(),
		InitialBalance:  e.balance.Initial(),
		Paused:          e.paused,
		LastTick:        e.lastTick,
		NextTradeID:     e.book.NextID(),
		Positions:       positions,
		Trades:          e.book.Trades(),
		Strategies:      strategies,
		PriceIndicators: indicators,
		Notices:         notices,
	}
}

// Status returns the lightweight health view.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Status:        "ok",
		Paused:        e.paused,
		LastTick:      e.lastTick,
		Assets:        len(e.assets),
		Balance:       e.balance.Balance(),
		OpenPositions: len(e.book.Positions()),
		ClosedTrades:  len(e.book.Trades()),
	}
}
