// Package market defines the quote-source contract the engine consumes and a
// synthetic source for local development.
package market

import "context"

// Asset is a static descriptor for one tracked instrument, loaded from the
// assets file at startup and immutable afterwards.
type Asset struct {
	ID     string `yaml:"id" json:"id"`
	Symbol string `yaml:"symbol" json:"symbol"`
	Name   string `yaml:"name" json:"name"`
}

// Quote is one observed price (and 24h volume) for an asset.
type Quote struct {
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
}

// QuoteSource supplies current quotes for a set of asset ids. Assets with no
// quote available this round are simply absent from the returned map; a
// non-nil error means the whole fetch failed.
type QuoteSource interface {
	Quotes(ctx context.Context, ids []string) (map[string]Quote, error)
}
