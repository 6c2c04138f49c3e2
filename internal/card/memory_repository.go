package card

import (
	"context"
	"sync"
)

// NewMemoryDirectory constructs an in-memory card directory for tests and
// dev mode.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{byNum: make(map[string]Card)}
}

// MemoryDirectory stores cards in a map keyed by number.
type MemoryDirectory struct {
	mu    sync.RWMutex
	byNum map[string]Card
}

// Put registers a card.
func (d *MemoryDirectory) Put(c Card) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byNum[c.Number] = c
}

// ByNumber fetches a card by its number.
func (d *MemoryDirectory) ByNumber(_ context.Context, number string) (Card, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.byNum[number]
	if !ok {
		return Card{}, ErrNotFound
	}
	return c, nil
}
