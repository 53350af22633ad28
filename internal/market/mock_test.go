package market

import (
	"context"
	"testing"
)

func TestMockSourceCoversAllIDs(t *testing.T) {
	src := &MockSource{StartPrice: 100, Step: 0.8}
	ids := []string{"bitcoin", "ethereum", "solana"}

	quotes, err := src.Quotes(context.Background(), ids)
	if err != nil {
		t.Fatal(err)
	}
	if len(quotes) != len(ids) {
		t.Fatalf("got %d quotes, want %d", len(quotes), len(ids))
	}
	for _, id := range ids {
		q, ok := quotes[id]
		if !ok {
			t.Fatalf("missing quote for %s", id)
		}
		if q.Price <= 0 || q.Volume <= 0 {
			t.Fatalf("quote for %s not positive: %+v", id, q)
		}
	}
}

func TestMockSourceWalksFromLastPrice(t *testing.T) {
	src := &MockSource{StartPrice: 100, Step: 0.5}
	ids := []string{"bitcoin"}

	first, err := src.Quotes(context.Background(), ids)
	if err != nil {
		t.Fatal(err)
	}
	second, err := src.Quotes(context.Background(), ids)
	if err != nil {
		t.Fatal(err)
	}

	diff := second["bitcoin"].Price - first["bitcoin"].Price
	if diff > 0.5 || diff < -0.5 {
		t.Fatalf("step size exceeded: %v -> %v", first["bitcoin"].Price, second["bitcoin"].Price)
	}
}
