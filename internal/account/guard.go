package account

import "sync"

// Guard serialises mutations per account: at most one read-check-mutate-
// persist sequence runs against a given account at a time, while distinct
// accounts proceed in parallel. Entries are reference counted and evicted
// once the last holder unlocks, so the registry does not grow with the
// number of account IDs ever seen.
type Guard struct {
	mu    sync.Mutex
	locks map[string]*guardEntry
}

type guardEntry struct {
	mu   sync.Mutex
	refs int
}

// NewGuard builds an empty lock registry.
func NewGuard() *Guard {
	return &Guard{locks: make(map[string]*guardEntry)}
}

func (g *Guard) acquire(id string) *guardEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.locks[id]
	if !ok {
		e = &guardEntry{}
		g.locks[id] = e
	}
	e.refs++
	return e
}

func (g *Guard) release(id string, e *guardEntry) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(g.locks, id)
	}
}

// Lock acquires the exclusive lock for one account and returns the unlock
// function.
func (g *Guard) Lock(id string) func() {
	e := g.acquire(id)
	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		g.release(id, e)
	}
}

// LockPair acquires the locks for two accounts in a stable order so that
// concurrent transfers between the same pair cannot deadlock.
func (g *Guard) LockPair(a, b string) func() {
	if a == b {
		return g.Lock(a)
	}
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	unlockFirst := g.Lock(first)
	unlockSecond := g.Lock(second)
	return func() {
		unlockSecond()
		unlockFirst()
	}
}
