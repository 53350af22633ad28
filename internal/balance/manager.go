// Package balance manages the simulator's virtual cash account.
package balance

import (
	"errors"
	"sync"
)

// ErrInsufficientBalance is returned when a debit would take the account
// below zero.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Manager guards the virtual account balance. All amounts are USD.
type Manager struct {
	mu      sync.Mutex
	balance float64
	initial float64
}

func NewManager(initial float64) *Manager {
	return &Manager{balance: initial, initial: initial}
}

// Balance returns the current cash balance.
func (m *Manager) Balance() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance
}

// Initial returns the configured starting balance.
func (m *Manager) Initial() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initial
}

// Debit withdraws amount from the account.
func (m *Manager) Debit(amount float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if amount > m.balance {
		return ErrInsufficientBalance
	}
	m.balance -= amount
	return nil
}

// Credit deposits amount into the account.
func (m *Manager) Credit(amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance += amount
}

// Set overwrites the balance, used when restoring a persisted session.
func (m *Manager) Set(balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = balance
}

// Restore overwrites both the balance and the recorded initial value when
// resuming a persisted session.
func (m *Manager) Restore(balance, initial float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = balance
	if initial > 0 {
		m.initial = initial
	}
}

// Reset restores the balance to its initial value.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = m.initial
}
