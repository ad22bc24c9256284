// Package wallet holds the client's spendable balance in cents.
package wallet

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
)

// DefaultOpeningBalance is $54.00.
const DefaultOpeningBalance int64 = 5_400

var (
	// ErrInvalidAmount indicates a non-positive or unparseable amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds indicates the balance does not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient balance")
	// ErrBalanceOverflow indicates a credit the balance cannot represent.
	ErrBalanceOverflow = errors.New("balance limit exceeded")
)

// maxDollars is the largest whole-dollar part ParseUSD accepts.
const maxDollars = (math.MaxInt64 - 99) / 100

// Wallet is an in-memory, last-write-wins balance.
type Wallet struct {
	mu      sync.RWMutex
	balance int64
}

// New creates a wallet with the given opening balance in cents.
func New(opening int64) *Wallet {
	if opening < 0 {
		opening = 0
	}
	return &Wallet{balance: opening}
}

// Balance returns the current balance in cents.
func (w *Wallet) Balance() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.balance
}

// Add credits amount and returns the new balance.
func (w *Wallet) Add(amount int64) (int64, error) {
	if amount <= 0 {
		return w.Balance(), ErrInvalidAmount
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balance > math.MaxInt64-amount {
		return w.balance, ErrBalanceOverflow
	}
	w.balance += amount
	return w.balance, nil
}

// Deduct debits amount, never going below zero, and returns the new balance.
func (w *Wallet) Deduct(amount int64) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	if amount <= 0 {
		return w.balance
	}
	w.balance -= amount
	if w.balance < 0 {
		w.balance = 0
	}
	return w.balance
}

// Spend debits amount only if the balance covers it.
func (w *Wallet) Spend(amount int64) (int64, error) {
	if amount <= 0 {
		return w.Balance(), ErrInvalidAmount
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if amount > w.balance {
		return w.balance, ErrInsufficientFunds
	}
	w.balance -= amount
	return w.balance, nil
}

// FormatUSD renders cents as "$12.34". Negative amounts render as "-$12.34".
func FormatUSD(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// ParseUSD reads a dollar amount such as "12", "12.5" or "$12.50" into cents.
// More than two decimal places, or an amount that does not fit in int64
// cents, is rejected.
func ParseUSD(text string) (int64, error) {
	s := strings.TrimPrefix(strings.TrimSpace(text), "$")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 || (whole == "" && frac == "") {
		return 0, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}
	for len(frac) < 2 {
		frac += "0"
	}
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || dollars < 0 || dollars > maxDollars {
		return 0, ErrInvalidAmount
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || cents < 0 {
		return 0, ErrInvalidAmount
	}
	total := dollars*100 + cents
	if total <= 0 {
		return 0, ErrInvalidAmount
	}
	return total, nil
}
