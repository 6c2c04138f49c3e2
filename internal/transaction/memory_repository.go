package transaction

import (
	"context"
	"sort"
	"sync"
)

// MemoryLog keeps transaction records in memory. Used by tests and dev mode.
type MemoryLog struct {
	mu       sync.RWMutex
	records  []Transaction
	failNext error
}

// NewMemoryLog constructs an empty in-memory log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// FailNext makes the next Append return err. Lets tests exercise the
// commit failure path.
func (l *MemoryLog) FailNext(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failNext = err
}

// Append stores one transaction record.
func (l *MemoryLog) Append(_ context.Context, tx Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failNext != nil {
		err := l.failNext
		l.failNext = nil
		return err
	}
	l.records = append(l.records, tx)
	return nil
}

// ListByAccount returns the recorded transactions of one account, newest
// first.
func (l *MemoryLog) ListByAccount(_ context.Context, accountID string) ([]Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Transaction
	for _, tx := range l.records {
		if tx.AccountID == accountID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AuthorizedAt.After(out[j].AuthorizedAt) })
	return out, nil
}

// Len reports how many records the log holds.
func (l *MemoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
