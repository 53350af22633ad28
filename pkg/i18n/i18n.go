package i18n

import (
	"reflect"
	"sync"
)

// Language type
type Language string

const (
	LangEN Language = "en"
	LangZH Language = "zh"
)

// Messages holds all translatable strings
type Messages struct {
	// System
	Starting           string
	ConfigLoaded       string
	UsingDBPath        string
	ConfigLoadFailed   string
	AssetsLoadFailed   string
	DBInitFailed       string
	DBMigrationsFailed string
	SnapshotRestored   string
	SnapshotLoadFailed string
	SnapshotSaveFailed string
	APIServerError     string
	ShuttingDown       string
	EngineInit         string
	MetricsInit        string

	// Quotes
	MockQuotesEnabled string
	CoinGeckoEnabled  string
	QuoteFetchFailed  string

	// Trading
	BalanceInitialized  string
	PositionOpened      string
	PositionClosed      string
	InsufficientBalance string
	TickFailed          string

	// Control surface
	TradingPaused    string
	TradingResumed   string
	EngineReset      string
	StrategyEnabled  string
	StrategyDisabled string
	UnknownStrategy  string
	LogsCleared      string
}

var (
	currentLang Language = LangEN
	mu          sync.RWMutex
	messages    *Messages
)

// English messages
var messagesEN = Messages{
	// System
	Starting:           "Starting paper-trading simulator...",
	ConfigLoaded:       "Config loaded (Port: %s)",
	UsingDBPath:        "Using DB path: %s",
	ConfigLoadFailed:   "Failed to load config: %v",
	AssetsLoadFailed:   "Failed to load assets file: %v",
	DBInitFailed:       "Failed to init database: %v",
	DBMigrationsFailed: "Failed to apply migrations: %v",
	SnapshotRestored:   "Session restored: balance=%.2f positions=%d trades=%d",
	SnapshotLoadFailed: "Failed to restore session, starting fresh: %v",
	SnapshotSaveFailed: "Failed to persist session: %v",
	APIServerError:     "API server error: %v",
	ShuttingDown:       "Shutting down gracefully...",
	EngineInit:         "Decision engine initialized (%d assets, %d strategies)",
	MetricsInit:        "System metrics initialized",

	// Quotes
	MockQuotesEnabled: "Mock quote source enabled",
	CoinGeckoEnabled:  "CoinGecko quote source enabled",
	QuoteFetchFailed:  "Quote fetch failed, skipping tick: %v",

	// Trading
	BalanceInitialized:  "Simulated balance initialized: %.2f",
	PositionOpened:      "BUY %s | %s @ $%.2f | indicator: %.2f",
	PositionClosed:      "SELL %s @ $%.2f | P&L: %+.2f | reason: %s",
	InsufficientBalance: "Insufficient balance: need %.2f, have %.2f",
	TickFailed:          "Tick error: %v",

	// Control surface
	TradingPaused:    "Trading paused",
	TradingResumed:   "Trading resumed",
	EngineReset:      "All state reset to defaults",
	StrategyEnabled:  "Strategy %s enabled",
	StrategyDisabled: "Strategy %s disabled",
	UnknownStrategy:  "Unknown strategy: %s",
	LogsCleared:      "Notice log cleared",
}

// Chinese messages
var messagesZH = Messages{
	// System
	Starting:           "啟動模擬交易系統...",
	ConfigLoaded:       "設定已載入（埠號：%s）",
	UsingDBPath:        "使用資料庫路徑：%s",
	ConfigLoadFailed:   "讀取設定失敗：%v",
	AssetsLoadFailed:   "讀取資產設定失敗：%v",
	DBInitFailed:       "初始化資料庫失敗：%v",
	DBMigrationsFailed: "套用資料庫遷移失敗：%v",
	SnapshotRestored:   "交易狀態已恢復：餘額=%.2f 持倉=%d 成交=%d",
	SnapshotLoadFailed: "恢復狀態失敗，使用初始狀態：%v",
	SnapshotSaveFailed: "狀態保存失敗：%v",
	APIServerError:     "API 伺服器錯誤：%v",
	ShuttingDown:       "正在優雅關閉...",
	EngineInit:         "決策引擎初始化完成（%d 項資產、%d 個策略）",
	MetricsInit:        "系統指標初始化完成",

	// Quotes
	MockQuotesEnabled: "模擬行情來源已啟用",
	CoinGeckoEnabled:  "CoinGecko 行情來源已啟用",
	QuoteFetchFailed:  "行情取得失敗，跳過本輪：%v",

	// Trading
	BalanceInitialized:  "模擬資金已初始化：%.2f",
	PositionOpened:      "買入 %s | %s @ $%.2f | 指標：%.2f",
	PositionClosed:      "賣出 %s @ $%.2f | 損益：%+.2f | 原因：%s",
	InsufficientBalance: "餘額不足：需求 %.2f，現有 %.2f",
	TickFailed:          "交易循環錯誤：%v",

	// Control surface
	TradingPaused:    "交易已暫停",
	TradingResumed:   "交易已恢復",
	EngineReset:      "所有數據已重置",
	StrategyEnabled:  "策略 %s 已啟用",
	StrategyDisabled: "策略 %s 已禁用",
	UnknownStrategy:  "未知的策略：%s",
	LogsCleared:      "日誌已清除",
}

func init() {
	messages = &messagesEN
}

// SetLanguage sets the current language
func SetLanguage(lang Language) {
	mu.Lock()
	defer mu.Unlock()

	currentLang = lang
	switch lang {
	case LangZH:
		messages = &messagesZH
	default:
		messages = &messagesEN
	}
}

// GetLanguage returns the current language
func GetLanguage() Language {
	mu.RLock()
	defer mu.RUnlock()
	return currentLang
}

// M returns the current messages
func M() *Messages {
	mu.RLock()
	defer mu.RUnlock()
	return messages
}

// Get returns specific message by key dynamically using reflection
func Get(key string) string {
	msg := M()
	v := reflect.ValueOf(msg).Elem()
	f := v.FieldByName(key)
	if f.IsValid() && f.Kind() == reflect.String {
		return f.String()
	}
	return key
}
