package results

import "sync"

// treeLocks provides advisory locking over the artifact tree.
// Category-scoped operations hold the root lock shared plus their
// category lock (shared for reads, exclusive for mutations).
// All-scope operations hold the root lock exclusively, which excludes
// every category operation at once. The filesystem stays the source of
// truth; the locks only stop a multi-file pass from interleaving with
// a concurrent mutation of the same scope.
type treeLocks struct {
	root sync.RWMutex

	mu   sync.Mutex
	cats map[string]*sync.RWMutex
}

func newTreeLocks() *treeLocks {
	return &treeLocks{cats: make(map[string]*sync.RWMutex)}
}

func (l *treeLocks) category(name string) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.cats[name]
	if !ok {
		m = &sync.RWMutex{}
		l.cats[name] = m
	}
	return m
}

// lockCategory acquires the category scope and returns its release
// function. Category locks are never removed from the map; the set of
// categories is small and bounded by user-chosen labels.
func (l *treeLocks) lockCategory(name string, write bool) func() {
	l.root.RLock()
	m := l.category(name)
	if write {
		m.Lock()
		return func() {
			m.Unlock()
			l.root.RUnlock()
		}
	}
	m.RLock()
	return func() {
		m.RUnlock()
		l.root.RUnlock()
	}
}

// lockAll acquires the whole-tree scope exclusively. All-scope reads
// take it too: they touch every category, and serializing them against
// each other is cheaper than tracking the full category set.
func (l *treeLocks) lockAll() func() {
	l.root.Lock()
	return func() { l.root.Unlock() }
}
