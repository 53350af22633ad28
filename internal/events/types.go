package events

// Event enumerates high-level topics inside the simulator core.
type Event string

const (
	EventQuoteTick   Event = "quote.tick"
	EventTradeOpened Event = "trade.opened"
	EventTradeClosed Event = "trade.closed"
	EventNotice      Event = "notice"
)
