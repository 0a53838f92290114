package reconciler

import "sync"

// seriesLocks serializes work on the same series across concurrent groups
// and calls. Entries are dropped once no one holds or waits for them.
type seriesLocks struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

func newSeriesLocks() *seriesLocks {
	return &seriesLocks{locks: make(map[string]*refLock)}
}

// lock acquires the series lock and returns its release func.
func (l *seriesLocks) lock(series string) func() {
	l.mu.Lock()
	rl, ok := l.locks[series]
	if !ok {
		rl = &refLock{}
		l.locks[series] = rl
	}
	rl.refs++
	l.mu.Unlock()

	rl.mu.Lock()
	return func() {
		rl.mu.Unlock()
		l.mu.Lock()
		rl.refs--
		if rl.refs == 0 {
			delete(l.locks, series)
		}
		l.mu.Unlock()
	}
}
