package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/finsight/chartpipe/model"
)

type entry struct {
	key      string
	artifact *model.Artifact
	cachedAt time.Time
	ttl      time.Duration
	el       *list.Element
}

func (e *entry) expired(now time.Time) bool {
	return e.ttl > 0 && now.After(e.cachedAt.Add(e.ttl))
}

// Local is the bounded in-process tier. One mutex guards the index map and
// the recency list; entries past their TTL are evicted lazily on lookup.
// Artifacts are copied on the way in and out, so no caller ever holds a
// reference into the tier.
type Local struct {
	mu         sync.Mutex
	maxEntries int
	clock      clock.Clock
	items      map[string]*entry
	lru        *list.List // front = most recently used
}

func NewLocal(maxEntries int, clk clock.Clock) *Local {
	if maxEntries < 1 {
		maxEntries = 1
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Local{
		maxEntries: maxEntries,
		clock:      clk,
		items:      make(map[string]*entry, maxEntries),
		lru:        list.New(),
	}
}

func (l *Local) Get(key string) (*model.Artifact, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.items[key]
	if !ok {
		return nil, false
	}
	if e.expired(l.clock.Now()) {
		l.removeLocked(e)
		return nil, false
	}
	l.lru.MoveToFront(e.el)
	return e.artifact.Clone(), true
}

func (l *Local) Put(key string, art *model.Artifact, ttl time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.items[key]; ok {
		e.artifact = art.Clone()
		e.cachedAt = l.clock.Now()
		e.ttl = ttl
		l.lru.MoveToFront(e.el)
		return
	}

	for len(l.items) >= l.maxEntries {
		back := l.lru.Back()
		if back == nil {
			break
		}
		l.removeLocked(back.Value.(*entry))
	}

	e := &entry{key: key, artifact: art.Clone(), cachedAt: l.clock.Now(), ttl: ttl}
	e.el = l.lru.PushFront(e)
	l.items[key] = e
}

func (l *Local) Del(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.items[key]
	if ok {
		l.removeLocked(e)
	}
	return ok
}

func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// removeLocked - is unsafe without l.mu due to it mutates the list.
func (l *Local) removeLocked(e *entry) {
	l.lru.Remove(e.el)
	delete(l.items, e.key)
}
