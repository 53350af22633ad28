package balance

import (
	"errors"
	"testing"
)

func TestDebitCredit(t *testing.T) {
	m := NewManager(10000)

	if err := m.Debit(300); err != nil {
		t.Fatal(err)
	}
	if got := m.Balance(); got != 9700 {
		t.Fatalf("balance = %v, want 9700", got)
	}

	m.Credit(450)
	if got := m.Balance(); got != 10150 {
		t.Fatalf("balance = %v, want 10150", got)
	}
}

func TestDebitRejectsOverdraft(t *testing.T) {
	m := NewManager(100)
	if err := m.Debit(100.01); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if got := m.Balance(); got != 100 {
		t.Fatalf("failed debit must not change balance, got %v", got)
	}
}

func TestReset(t *testing.T) {
	m := NewManager(10000)
	if err := m.Debit(5000); err != nil {
		t.Fatal(err)
	}
	m.Reset()
	if got := m.Balance(); got != 10000 {
		t.Fatalf("balance = %v, want 10000 after reset", got)
	}
	if m.Initial() != 10000 {
		t.Fatal("initial balance should be immutable")
	}
}
