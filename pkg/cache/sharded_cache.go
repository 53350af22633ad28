package cache

import (
	"hash/fnv"
	"sync"
	"time"

	"paper-core/internal/market"
)

const numShards = 16

// ShardedQuoteCache holds the latest quote per asset with sharding so API
// reads never contend with the tick loop's writes.
type ShardedQuoteCache struct {
	shards [numShards]*quoteShard
}

type quoteShard struct {
	mu    sync.RWMutex
	items map[string]quoteEntry
}

type quoteEntry struct {
	quote     market.Quote
	updatedAt time.Time
}

func NewShardedQuoteCache() *ShardedQuoteCache {
	c := &ShardedQuoteCache{}
	for i := 0; i < numShards; i++ {
		c.shards[i] = &quoteShard{items: make(map[string]quoteEntry)}
	}
	return c
}

func (c *ShardedQuoteCache) getShard(key string) *quoteShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%numShards]
}

// Set stores the latest quote for an asset id.
func (c *ShardedQuoteCache) Set(assetID string, q market.Quote) {
	shard := c.getShard(assetID)
	shard.mu.Lock()
	shard.items[assetID] = quoteEntry{quote: q, updatedAt: time.Now()}
	shard.mu.Unlock()
}

// Get retrieves the latest quote for an asset id.
func (c *ShardedQuoteCache) Get(assetID string) (market.Quote, bool) {
	shard := c.getShard(assetID)
	shard.mu.RLock()
	entry, ok := shard.items[assetID]
	shard.mu.RUnlock()
	return entry.quote, ok
}

// GetWithAge retrieves the quote and how long ago it was written.
func (c *ShardedQuoteCache) GetWithAge(assetID string) (market.Quote, time.Duration, bool) {
	shard := c.getShard(assetID)
	shard.mu.RLock()
	entry, ok := shard.items[assetID]
	shard.mu.RUnlock()
	if !ok {
		return market.Quote{}, 0, false
	}
	return entry.quote, time.Since(entry.updatedAt), true
}

// GetAll returns all cached quotes keyed by asset id.
func (c *ShardedQuoteCache) GetAll() map[string]market.Quote {
	result := make(map[string]market.Quote)
	for _, shard := range c.shards {
		shard.mu.RLock()
		for id, entry := range shard.items {
			result[id] = entry.quote
		}
		shard.mu.RUnlock()
	}
	return result
}

// Len returns total items across all shards.
func (c *ShardedQuoteCache) Len() int {
	total := 0
	for _, shard := range c.shards {
		shard.mu.RLock()
		total += len(shard.items)
		shard.mu.RUnlock()
	}
	return total
}

// Clear drops every cached quote.
func (c *ShardedQuoteCache) Clear() {
	for _, shard := range c.shards {
		shard.mu.Lock()
		shard.items = make(map[string]quoteEntry)
		shard.mu.Unlock()
	}
}
