package market

import (
	"context"
	"math/rand"
	"sync"
)

// MockSource generates random-walk quotes for local development.
type MockSource struct {
	StartPrice float64
	Step       float64

	mu     sync.Mutex
	prices map[string]float64
}

func (m *MockSource) Quotes(_ context.Context, ids []string) (map[string]Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.prices == nil {
		m.prices = make(map[string]float64)
	}
	start := m.StartPrice
	if start == 0 {
		start = 100.0
	}
	step := m.Step
	if step == 0 {
		step = 0.8
	}

	out := make(map[string]Quote, len(ids))
	for _, id := range ids {
		price, ok := m.prices[id]
		if !ok {
			price = start
		}
		// simple random walk
		price += (rand.Float64()*2 - 1) * step
		if price <= 0 {
			price = start
		}
		m.prices[id] = price
		out[id] = Quote{Price: price, Volume: 1000 + rand.Float64()*9000}
	}
	return out, nil
}
