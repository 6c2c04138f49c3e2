package merchant

import (
	"context"
	"sync"
)

// MemoryDirectory stores merchant records in a map keyed by MCC.
type MemoryDirectory struct {
	mu    sync.RWMutex
	byMCC map[string]Merchant
}

// NewMemoryDirectory constructs an in-memory merchant directory for tests
// and dev mode.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{byMCC: make(map[string]Merchant)}
}

// Put registers a merchant. Later entries with the same MCC win, which is
// fine for an informational lookup.
func (d *MemoryDirectory) Put(m Merchant) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byMCC[m.MCC] = m
}

// ByMCC fetches the merchant registered under the given MCC.
func (d *MemoryDirectory) ByMCC(_ context.Context, mcc string) (Merchant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.byMCC[mcc]
	if !ok {
		return Merchant{}, ErrNotFound
	}
	return m, nil
}
