// Package history keeps the bounded per-asset price and volume windows the
// indicator strategies read from.
package history

import "sync"

// DefaultLimit is how many trailing observations are kept per asset.
const DefaultLimit = 100

// Store holds trailing price and volume windows keyed by asset id. Appends
// beyond the limit drop the oldest observation first.
type Store struct {
	mu      sync.Mutex
	limit   int
	prices  map[string][]float64
	volumes map[string][]float64
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		limit:   limit,
		prices:  make(map[string][]float64),
		volumes: make(map[string][]float64),
	}
}

// Append records one observation for the asset, trimming both windows to the
// configured limit.
func (s *Store) Append(assetID string, price, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prices[assetID] = trim(append(s.prices[assetID], price), s.limit)
	s.volumes[assetID] = trim(append(s.volumes[assetID], volume), s.limit)
}

// Window returns copies of the asset's price and volume windows, oldest
// first. Both are nil when the asset has never been observed.
func (s *Store) Window(assetID string) (prices, volumes []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return copySlice(s.prices[assetID]), copySlice(s.volumes[assetID])
}

// Len reports how many observations are held for the asset.
func (s *Store) Len(assetID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.prices[assetID])
}

// Snapshot returns deep copies of all windows for persistence.
func (s *Store) Snapshot() (prices, volumes map[string][]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prices = make(map[string][]float64, len(s.prices))
	volumes = make(map[string][]float64, len(s.volumes))
	for id, w := range s.prices {
		prices[id] = copySlice(w)
	}
	for id, w := range s.volumes {
		volumes[id] = copySlice(w)
	}
	return prices, volumes
}

// Restore replaces all windows with the given snapshot, re-trimming to the
// limit in case it shrank between runs.
func (s *Store) Restore(prices, volumes map[string][]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prices = make(map[string][]float64, len(prices))
	s.volumes = make(map[string][]float64, len(volumes))
	for id, w := range prices {
		s.prices[id] = trim(copySlice(w), s.limit)
	}
	for id, w := range volumes {
		s.volumes[id] = trim(copySlice(w), s.limit)
	}
}

// Reset drops every window.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prices = make(map[string][]float64)
	s.volumes = make(map[string][]float64)
}

func trim(w []float64, limit int) []float64 {
	if len(w) > limit {
		w = w[len(w)-limit:]
	}
	return w
}

func copySlice(w []float64) []float64 {
	if w == nil {
		return nil
	}
	out := make([]float64, len(w))
	copy(out, w)
	return out
}
