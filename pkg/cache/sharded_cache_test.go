package cache

import (
	"fmt"
	"sync"
	"testing"

	"paper-core/internal/market"
)

func TestSetGet(t *testing.T) {
	c := NewShardedQuoteCache()
	c.Set("bitcoin", market.Quote{Price: 64000, Volume: 1e9})

	q, ok := c.Get("bitcoin")
	if !ok || q.Price != 64000 {
		t.Fatalf("Get = %+v, %v", q, ok)
	}
	if _, ok := c.Get("ethereum"); ok {
		t.Fatal("unexpected hit for missing asset")
	}
}

func TestGetAllAndClear(t *testing.T) {
	c := NewShardedQuoteCache()
	for i := 0; i < 40; i++ {
		c.Set(fmt.Sprintf("asset-%d", i), market.Quote{Price: float64(i)})
	}
	if c.Len() != 40 {
		t.Fatalf("Len = %d, want 40", c.Len())
	}
	all := c.GetAll()
	if len(all) != 40 || all["asset-7"].Price != 7 {
		t.Fatalf("GetAll mismatch: %d entries", len(all))
	}

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len after Clear = %d", c.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := NewShardedQuoteCache()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("asset-%d", i%20)
				c.Set(id, market.Quote{Price: float64(g*1000 + i)})
				c.Get(id)
			}
		}(g)
	}
	wg.Wait()
	if c.Len() != 20 {
		t.Fatalf("Len = %d, want 20", c.Len())
	}
}
