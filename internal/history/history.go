// Package history keeps the client's list of tips and top-ups, newest first.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes tips from top-ups.
type Kind string

const (
	KindTip  Kind = "tip"
	KindFund Kind = "fund"
)

// DateLayout renders dates the way the history list shows them.
const DateLayout = "1/2/2006"

// Transaction is one history row. Amount is signed cents: negative for tips,
// positive for funds added.
type Transaction struct {
	ID       string
	Name     string
	Username string
	Amount   int64
	Date     time.Time
	Avatar   string
	Kind     Kind
}

// Entry is what callers supply; the book assigns ID and Date.
type Entry struct {
	Name     string
	Username string
	Amount   int64
	Avatar   string
	Kind     Kind
}

// Book is an in-memory, newest-first transaction list.
type Book struct {
	mu    sync.RWMutex
	items []Transaction
	now   func() time.Time
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{now: time.Now}
}

// Add records entry at the head of the list.
func (b *Book) Add(entry Entry) Transaction {
	tx := Transaction{
		ID:       uuid.NewString(),
		Name:     entry.Name,
		Username: entry.Username,
		Amount:   entry.Amount,
		Date:     b.now(),
		Avatar:   entry.Avatar,
		Kind:     entry.Kind,
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append([]Transaction{tx}, b.items...)
	return tx
}

// List returns a copy of every transaction, newest first.
func (b *Book) List() []Transaction {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Transaction(nil), b.items...)
}

// Len returns the number of transactions.
func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.items)
}

// SeedDemo appends the sample tips shown on a fresh demo install.
func (b *Book) SeedDemo() {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 12, 0, 0, 0, time.UTC) }
	demo := []Transaction{
		{Name: "Chris Brendler", Username: "@cbrendler", Amount: -500, Date: day(2026, time.January, 4), Kind: KindTip},
		{Name: "James Gallow", Username: "@jgallow", Amount: -2_000, Date: day(2025, time.May, 23), Kind: KindTip},
		{Name: "Stacy Menken", Username: "@stacy", Amount: -500, Date: day(2025, time.April, 27), Kind: KindTip},
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, tx := range demo {
		tx.ID = uuid.NewString()
		b.items = append(b.items, tx)
	}
}
